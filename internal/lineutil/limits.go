package lineutil

// LINE API character and count limits (rune count).
// References: https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // Text message max content length
	MaxAltTextLength     = 400  // Template/Flex message alt text length

	// Template message limits
	MaxTemplateTitleLength  = 40 // Carousel column title
	MaxCarouselTemplateText = 60 // Carousel column text (with image)
	MaxCarouselColumnCount  = 10 // Max columns in a carousel template
	MaxCarouselActionCount  = 3  // Max actions per carousel column

	// Action limits
	MaxActionLabelLength = 20  // Message/URI action label
	MaxActionTextLength  = 300 // Message action text

	// Flex message limits
	MaxBubblesPerCarousel = 10 // Bubbles per flex carousel we send (API allows 12)

	// Reply limits
	MaxMessagesPerReply = 5 // Messages in one reply call

	// Quick reply limits
	MaxQuickReplyItemCount = 13 // Max items in a quick reply
)

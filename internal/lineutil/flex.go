package lineutil

import (
	"fmt"
	"math"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/lumnam/lumnam-linebot-go/internal/sliceutil"
)

// FlexBubble wrapper
type FlexBubble struct {
	*messaging_api.FlexBubble
}

// NewFlexBubble creates a new Flex Bubble container.
// Note: body and footer must be FlexBox or nil.
func NewFlexBubble(hero messaging_api.FlexComponentInterface, body *FlexBox, footer *FlexBox) *FlexBubble {
	bubble := &messaging_api.FlexBubble{}
	if hero != nil {
		bubble.Hero = hero
	}
	if body != nil {
		bubble.Body = body.FlexBox
	}
	if footer != nil {
		bubble.Footer = footer.FlexBox
	}
	return &FlexBubble{bubble}
}

// NewFlexCarousel creates a Flex Carousel from a slice of bubbles.
// Use BuildCarouselMessages for sets larger than MaxBubblesPerCarousel.
func NewFlexCarousel(bubbles []messaging_api.FlexBubble) *messaging_api.FlexCarousel {
	return &messaging_api.FlexCarousel{
		Contents: bubbles,
	}
}

// PageLabel controls the " (i/n)" suffix added to paged alt texts.
type PageLabel int

const (
	// PageLabelAuto numbers pages only when the set is split.
	PageLabelAuto PageLabel = iota
	// PageLabelAlways numbers every page, including a single one.
	PageLabelAlways
)

// PageAltText appends " (page/total)" to altText according to label.
func PageAltText(altText string, page, total int, label PageLabel) string {
	if label == PageLabelAuto && total <= 1 {
		return altText
	}
	return fmt.Sprintf("%s (%d/%d)", altText, page, total)
}

// BuildCarouselMessages creates Flex Messages from bubbles, splitting them into
// ceil(len/MaxBubblesPerCarousel) carousels.
//
// Example:
//
//	bubbles := []messaging_api.FlexBubble{...}
//	messages := lineutil.BuildCarouselMessages("เทศกาล/งานประเพณี", bubbles, lineutil.PageLabelAlways)
func BuildCarouselMessages(altText string, bubbles []messaging_api.FlexBubble, label PageLabel) []messaging_api.MessageInterface {
	pages := sliceutil.Chunk(bubbles, MaxBubblesPerCarousel)
	if len(pages) == 0 {
		return nil
	}

	messages := make([]messaging_api.MessageInterface, 0, len(pages))
	for i, page := range pages {
		msgAltText := PageAltText(altText, i+1, len(pages), label)
		messages = append(messages, NewFlexMessage(msgAltText, NewFlexCarousel(page)))
	}
	return messages
}

// FlexBox wrapper for messaging_api.FlexBox with fluent API.
type FlexBox struct {
	*messaging_api.FlexBox
}

// NewFlexBox creates a new FlexBox with the specified layout and contents.
func NewFlexBox(layout string, contents ...messaging_api.FlexComponentInterface) *FlexBox {
	return &FlexBox{&messaging_api.FlexBox{
		Layout:   messaging_api.FlexBoxLAYOUT(layout),
		Contents: contents,
	}}
}

// WithSpacing sets the spacing between components.
func (b *FlexBox) WithSpacing(spacing string) *FlexBox {
	b.Spacing = spacing
	return b
}

// WithMargin sets the margin of the box.
func (b *FlexBox) WithMargin(margin string) *FlexBox {
	b.Margin = margin
	return b
}

// WithPaddingAll sets the padding for all sides of the box.
func (b *FlexBox) WithPaddingAll(padding string) *FlexBox {
	b.PaddingAll = padding
	return b
}

// FlexText wrapper for messaging_api.FlexText with fluent API.
type FlexText struct {
	*messaging_api.FlexText
}

// NewFlexText creates a new FlexText with the specified text.
// LINE rejects empty text components, so callers must not pass "".
func NewFlexText(text string) *FlexText {
	return &FlexText{&messaging_api.FlexText{
		Text: text,
	}}
}

// WithWeight sets the font weight (regular/bold).
func (t *FlexText) WithWeight(weight string) *FlexText {
	t.Weight = messaging_api.FlexTextWEIGHT(weight)
	return t
}

// WithSize sets the font size.
func (t *FlexText) WithSize(size string) *FlexText {
	t.Size = size
	return t
}

// WithColor sets the text color.
func (t *FlexText) WithColor(color string) *FlexText {
	t.Color = color
	return t
}

// WithWrap enables or disables text wrapping.
func (t *FlexText) WithWrap(wrap bool) *FlexText {
	t.Wrap = wrap
	return t
}

// WithFlex sets the flex factor for the text component.
func (t *FlexText) WithFlex(flex int) *FlexText {
	t.Flex = clampInt32(flex)
	return t
}

// WithMargin sets the margin of the text component.
func (t *FlexText) WithMargin(margin string) *FlexText {
	t.Margin = margin
	return t
}

// WithMaxLines sets the maximum number of lines to display.
func (t *FlexText) WithMaxLines(lines int) *FlexText {
	t.MaxLines = clampInt32(lines)
	return t
}

// FlexImage wrapper for messaging_api.FlexImage with fluent API.
type FlexImage struct {
	*messaging_api.FlexImage
}

// NewFlexImage creates a new FlexImage for url. The URL must be HTTPS.
func NewFlexImage(url string) *FlexImage {
	return &FlexImage{&messaging_api.FlexImage{
		Url: url,
	}}
}

// WithSize sets the image width keyword (e.g. "full").
func (i *FlexImage) WithSize(size string) *FlexImage {
	i.Size = size
	return i
}

// WithAspectRatio sets the "width:height" ratio.
func (i *FlexImage) WithAspectRatio(ratio string) *FlexImage {
	i.AspectRatio = ratio
	return i
}

// WithAspectMode sets how the image fills its area (cover/fit).
func (i *FlexImage) WithAspectMode(mode string) *FlexImage {
	i.AspectMode = messaging_api.FlexImageASPECT_MODE(mode)
	return i
}

// WithMargin sets the margin of the image.
func (i *FlexImage) WithMargin(margin string) *FlexImage {
	i.Margin = margin
	return i
}

// NewHeroImage creates the full-width 20:13 cover image used by every card.
func NewHeroImage(url string) *FlexImage {
	return NewFlexImage(url).
		WithSize(HeroSize).
		WithAspectRatio(HeroAspectRatio).
		WithAspectMode(HeroAspectMode)
}

// FlexButton wrapper for messaging_api.FlexButton with fluent API.
type FlexButton struct {
	*messaging_api.FlexButton
}

// NewFlexButton creates a new FlexButton with the specified action.
func NewFlexButton(action messaging_api.ActionInterface) *FlexButton {
	return &FlexButton{&messaging_api.FlexButton{
		Action: action,
	}}
}

// WithStyle sets the button style (link/primary/secondary).
func (b *FlexButton) WithStyle(style string) *FlexButton {
	b.Style = messaging_api.FlexButtonSTYLE(style)
	return b
}

// WithColor sets the button color.
func (b *FlexButton) WithColor(color string) *FlexButton {
	b.Color = color
	return b
}

// WithHeight sets the button height (sm/md).
func (b *FlexButton) WithHeight(height string) *FlexButton {
	b.Height = messaging_api.FlexButtonHEIGHT(height)
	return b
}

// WithMargin sets the margin of the button.
func (b *FlexButton) WithMargin(margin string) *FlexButton {
	b.Margin = margin
	return b
}

// NewPrimaryButton creates the green call-to-action button.
func NewPrimaryButton(action messaging_api.ActionInterface) *FlexButton {
	return NewFlexButton(action).WithStyle("primary").WithColor(ColorButtonPrimary).WithHeight("sm")
}

// NewSecondaryButton creates the muted secondary button.
func NewSecondaryButton(action messaging_api.ActionInterface) *FlexButton {
	return NewFlexButton(action).WithStyle("secondary").WithColor(ColorButtonSecondary).WithHeight("sm")
}

// FlexSeparator wrapper for messaging_api.FlexSeparator with fluent API.
type FlexSeparator struct {
	*messaging_api.FlexSeparator
}

// NewFlexSeparator creates a new FlexSeparator.
func NewFlexSeparator() *FlexSeparator {
	return &FlexSeparator{&messaging_api.FlexSeparator{}}
}

// WithMargin sets the margin of the separator.
func (s *FlexSeparator) WithMargin(margin string) *FlexSeparator {
	s.Margin = margin
	return s
}

// NewLabeledRow creates a baseline row with a small gray label and a value,
// e.g. "โทร 081-234-5678".
func NewLabeledRow(label, value string) *FlexBox {
	return NewFlexBox("baseline",
		NewFlexText(label).WithSize("sm").WithColor(ColorLabel).WithFlex(1).FlexText,
		NewFlexText(value).WithSize("sm").WithColor(ColorValue).WithWrap(true).WithFlex(4).FlexText,
	).WithSpacing("sm")
}

// NewButtonFooter stacks buttons vertically, skipping nil entries.
func NewButtonFooter(buttons ...*FlexButton) *FlexBox {
	contents := make([]messaging_api.FlexComponentInterface, 0, len(buttons))
	for _, btn := range buttons {
		if btn != nil {
			contents = append(contents, btn.FlexButton)
		}
	}
	return NewFlexBox("vertical", contents...).WithSpacing("sm")
}

// TruncateRunes truncates text by rune count (not byte count) to properly handle UTF-8.
// Returns truncated string with "..." if exceeds maxRunes.
func TruncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:max(maxRunes, 0)])
	}
	return string(runes[:maxRunes-3]) + "..."
}

func clampInt32(n int) int32 {
	if n < 0 {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}

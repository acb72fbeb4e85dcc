// Package lineutil provides LINE message building utilities.
package lineutil

// Spacing follows the 4-point grid.
const (
	SpacingNone = "none"
	SpacingXS   = "4px"
	SpacingS    = "8px"
	SpacingM    = "12px"
	SpacingL    = "16px"
)

// Palette used by the tourism cards.
const (
	ColorButtonPrimary   = "#32ca32ff" // Primary action (ดูเพิ่มเติม, นำทาง)
	ColorButtonSecondary = "#c4c9c694" // Secondary action (โทรเลย)
	ColorDescription     = "#555555"   // Body descriptions
	ColorLabel           = "#888888"   // Small labels and date ranges
	ColorValue           = "#333333"   // Label values such as phone numbers
	ColorRouteType       = "#2f3e5c"   // Route type caption
)

// Hero image geometry shared by every card.
const (
	HeroAspectRatio = "20:13"
	HeroAspectMode  = "cover"
	HeroSize        = "full"
)

package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ThemeEnv overrides terminal background detection when --theme is unset.
const ThemeEnv = "KOBO_MCP_THEME"

// TermTheme holds the palette the setup wizard renders with.
type TermTheme struct {
	Name string

	Accent    lipgloss.Color
	AccentDim lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Dim       lipgloss.Color

	Border       lipgloss.Color
	ActiveBorder lipgloss.Color
}

// DarkTheme is used unless a light background is requested or detected.
var DarkTheme = TermTheme{
	Name:         "dark",
	Accent:       lipgloss.Color("#38bdf8"),
	AccentDim:    lipgloss.Color("#0369a1"),
	Success:      lipgloss.Color("#22c55e"),
	Warning:      lipgloss.Color("#eab308"),
	Error:        lipgloss.Color("#ef4444"),
	Primary:      lipgloss.Color("#e5e7eb"),
	Secondary:    lipgloss.Color("#9ca3af"),
	Dim:          lipgloss.Color("#4b5563"),
	Border:       lipgloss.Color("#1f2937"),
	ActiveBorder: lipgloss.Color("#38bdf8"),
}

// LightTheme targets terminals with a light background.
var LightTheme = TermTheme{
	Name:         "light",
	Accent:       lipgloss.Color("#0369a1"),
	AccentDim:    lipgloss.Color("#0c4a6e"),
	Success:      lipgloss.Color("#15803d"),
	Warning:      lipgloss.Color("#a16207"),
	Error:        lipgloss.Color("#b91c1c"),
	Primary:      lipgloss.Color("#111827"),
	Secondary:    lipgloss.Color("#374151"),
	Dim:          lipgloss.Color("#6b7280"),
	Border:       lipgloss.Color("#d1d5db"),
	ActiveBorder: lipgloss.Color("#0369a1"),
}

func themeByName(name string) (TermTheme, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dark":
		return DarkTheme, true
	case "light":
		return LightTheme, true
	}
	return TermTheme{}, false
}

// DetectTheme picks a theme from the flag value, then $KOBO_MCP_THEME, then
// the COLORFGBG hint some terminals export. Dark is the fallback.
func DetectTheme(flagVal string) TermTheme {
	if t, ok := themeByName(flagVal); ok {
		return t
	}
	if t, ok := themeByName(os.Getenv(ThemeEnv)); ok {
		return t
	}

	// COLORFGBG is "fg;bg"; 7 and 15 are the light backgrounds.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) >= 2 {
		switch parts[len(parts)-1] {
		case "7", "15":
			return LightTheme
		}
	}
	return DarkTheme
}

// StyleSet caches the lipgloss styles derived from a theme.
type StyleSet struct {
	Theme TermTheme

	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	AccentTxt    lipgloss.Style
	DimTxt       lipgloss.Style
	SuccessTxt   lipgloss.Style
	WarningTxt   lipgloss.Style
	ErrorTxt     lipgloss.Style
	PrimaryTxt   lipgloss.Style
	SecondaryTxt lipgloss.Style

	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style

	KbdKey  lipgloss.Style
	KbdDesc lipgloss.Style

	Banner      lipgloss.Style
	VersionPill lipgloss.Style

	SummaryKey   lipgloss.Style
	SummaryValue lipgloss.Style
	BorderedBox  lipgloss.Style

	StepBadgeComplete lipgloss.Style
	StepBadgeActive   lipgloss.Style
}

// NewStyleSet builds every style from theme.
func NewStyleSet(theme TermTheme) *StyleSet {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	rounded := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c)
	}
	badge := func(bg lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true).
			Padding(0, 1)
	}

	return &StyleSet{
		Theme: theme,

		Title:        fg(theme.Accent).Bold(true),
		Subtitle:     fg(theme.Secondary),
		AccentTxt:    fg(theme.Accent),
		DimTxt:       fg(theme.Dim),
		SuccessTxt:   fg(theme.Success),
		WarningTxt:   fg(theme.Warning),
		ErrorTxt:     fg(theme.Error),
		PrimaryTxt:   fg(theme.Primary),
		SecondaryTxt: fg(theme.Secondary),

		ActiveBorder:   rounded(theme.ActiveBorder),
		InactiveBorder: rounded(theme.Border),

		KbdKey:  fg(theme.Primary).Background(theme.Dim).Padding(0, 1),
		KbdDesc: fg(theme.Dim),

		Banner:      fg(theme.Accent).Bold(true),
		VersionPill: badge(theme.Accent),

		SummaryKey:   fg(theme.Secondary).Width(14),
		SummaryValue: fg(theme.Primary).Bold(true),
		BorderedBox:  rounded(theme.Border).Padding(0, 1),

		StepBadgeComplete: badge(theme.Success),
		StepBadgeActive:   badge(theme.Accent),
	}
}

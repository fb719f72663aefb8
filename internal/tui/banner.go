package tui

import (
	"fmt"
	"strings"
)

// RenderBanner returns the header shown above the wizard steps.
func RenderBanner(styles *StyleSet, version string, width int) string {
	if version == "" {
		version = "dev"
	}

	title := styles.Banner.Render("◆  K O B O  M C P") + "  " + styles.VersionPill.Render("v"+version)
	subtitle := styles.Subtitle.Render("Connect an MCP client to your KoboToolbox forms and data.")

	n := min(max(width-4, 20), 60)
	divider := styles.DimTxt.Render(strings.Repeat("─", n))

	return fmt.Sprintf("  %s\n  %s\n  %s\n\n", title, subtitle, divider)
}

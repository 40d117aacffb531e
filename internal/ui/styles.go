// Package ui renders the interactive terminal surface: the banner, the
// selection menus, the live per-worker progress display and the run summary.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette shared by all terminal output. Tuned for dark backgrounds.
const (
	// ColorMenu is cyan, used for menu boxes and prompts.
	ColorMenu = lipgloss.Color("#22D3EE")

	// ColorBanner is blue, used for the application banner.
	ColorBanner = lipgloss.Color("#3B82F6")

	// ColorWarn is amber, used for warnings and invalid-input notices.
	ColorWarn = lipgloss.Color("#F59E0B")

	// ColorSuccess is green, used for completed work and positive outcomes.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red, used for failures.
	ColorError = lipgloss.Color("#EF4444")

	// ColorAccent is purple, used for counters and rates.
	ColorAccent = lipgloss.Color("#A78BFA")

	// ColorMuted is gray, used for secondary detail lines.
	ColorMuted = lipgloss.Color("#6B7280")
)

var (
	// MenuStyle colors menu boxes and their prompts.
	MenuStyle = lipgloss.NewStyle().Foreground(ColorMenu)

	// BannerStyle colors the application banner.
	BannerStyle = lipgloss.NewStyle().Foreground(ColorBanner)

	// WarnStyle colors warnings and retry notices.
	WarnStyle = lipgloss.NewStyle().Foreground(ColorWarn)

	// SuccessStyle colors success messages.
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	// ErrorStyle colors failure messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorError)

	// AccentStyle colors counters, rates and other emphasized values.
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	// MutedStyle colors secondary details.
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// progressColor maps a completion ratio in [0, 1] onto a red-yellow-green
// gradient. Bars start red, turn yellow at the halfway mark and finish green.
func progressColor(progress float64) lipgloss.Color {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	var r, g int
	if progress < 0.5 {
		r = 255
		g = int(255 * progress * 2)
	} else {
		r = int(255 * (1 - progress) * 2)
		g = 255
	}
	return lipgloss.Color(fmt.Sprintf("#%02X%02X00", clampChannel(r), clampChannel(g)))
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/headlines/internal/news"
)

// renderTopBar draws the app name and title on the left and the "Sign in"
// link on the right.
func renderTopBar(title string, width int) string {
	left := LogoStyle.Render(CompactLogo)
	if title != "" {
		left += " " + TitleStyle.Render(truncateEnd(title, width-lipgloss.Width(left)-14))
	}
	right := SignInStyle.Render("Sign in")
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderTabs draws the category bar with the selected category highlighted.
func renderTabs(selected news.Category, width int) string {
	var tabs []string
	for i, c := range news.Categories() {
		label := fmt.Sprintf("%d %s", i+1, c.Label())
		if c == selected {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if width > 0 && lipgloss.Width(bar) > width {
		return lipgloss.NewStyle().MaxWidth(width).Render(bar)
	}
	return bar
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

func renderSeparator(width int) string {
	if width < 1 {
		width = 1
	}
	return SeparatorStyle.Render(strings.Repeat("─", width))
}

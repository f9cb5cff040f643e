package tui

import (
	"charm.land/lipgloss/v2"

	"tasnim.dev/aws-netdoc/internal/tui/theme"
)

var (
	// Checklist styles that compose from the shared theme
	titleStyle = theme.TitleStyle

	headerStyle = theme.HeaderStyle

	labelStyle = theme.MutedStyle

	doneStyle = theme.SuccessStyle

	failedStyle = theme.ErrorStyle

	pendingStyle = theme.MutedStyle

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary)

	unchangedStyle = lipgloss.NewStyle().
			Foreground(theme.Warning)

	helpStyle = theme.HelpStyle

	checklistStyle = theme.ChecklistBoxStyle

	dashboardStyle = theme.DashboardStyle
)

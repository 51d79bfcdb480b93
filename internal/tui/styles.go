package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Amna-05/quadro/pkg/models"
)

// Style definitions shared by the board and matrix views.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)

	staleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("240")).
			Padding(0, 1)

	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	columnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	// columnActiveStyle marks the drop target under the pointer mid-drag.
	columnActiveStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	columnHeaderStyle = lipgloss.NewStyle().Bold(true)

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62"))

	doneCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	// heldCardStyle flashes a just-completed card during the grace period.
	heldCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	quadrantColors = map[models.Quadrant]lipgloss.Color{
		models.QuadrantDoFirst:   lipgloss.Color("196"),
		models.QuadrantSchedule:  lipgloss.Color("39"),
		models.QuadrantDelegate:  lipgloss.Color("214"),
		models.QuadrantEliminate: lipgloss.Color("245"),
	}

	statusColors = map[models.Status]lipgloss.Color{
		models.StatusTodo:       lipgloss.Color("245"),
		models.StatusInProgress: lipgloss.Color("226"),
		models.StatusDone:       lipgloss.Color("46"),
	}
)

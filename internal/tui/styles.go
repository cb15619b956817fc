package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColumnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Width(28)

	FocusedColumnStyle = ColumnStyle.
				BorderForeground(lipgloss.Color("170"))

	DropTargetColumnStyle = ColumnStyle.
				BorderForeground(lipgloss.Color("214"))

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	TaskStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	SelectedTaskStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("170"))
	DraggedTaskStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	MetaStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	OverdueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	FormStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 2)
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)
)

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskpad/internal/task"
)

// CategoryStyle is the presentation of a category.
type CategoryStyle struct {
	Label string
	Icon  string
	// From and To are the ends of the category gradient. From is used for
	// text accents.
	From lipgloss.Color
	To   lipgloss.Color
}

var categoryStyles = map[task.Category]CategoryStyle{
	task.CategoryHome:     {Label: "Home", Icon: "⌂", From: "#4158D0", To: "#C850C0"},
	task.CategoryWork:     {Label: "Work", Icon: "▣", From: "#0093E9", To: "#80D0C7"},
	task.CategorySchool:   {Label: "School", Icon: "✎", From: "#8EC5FC", To: "#E0C3FC"},
	task.CategoryPersonal: {Label: "Personal", Icon: "☺", From: "#FF9A8B", To: "#FF6A88"},
	task.CategoryShopping: {Label: "Shopping", Icon: "⛁", From: "#FBAB7E", To: "#F7CE68"},
}

// CategoryStyleOf returns the presentation of c. Unknown categories get a
// plain label.
func CategoryStyleOf(c task.Category) CategoryStyle {
	if s, ok := categoryStyles[c]; ok {
		return s
	}
	return CategoryStyle{Label: string(c), Icon: "•", From: "#888888", To: "#888888"}
}

// PriorityStyle is the presentation of a priority.
type PriorityStyle struct {
	Label string
	Color lipgloss.Color
}

var priorityStyles = map[task.Priority]PriorityStyle{
	task.PriorityLow:    {Label: "Low", Color: "#2E7D32"},
	task.PriorityMedium: {Label: "Medium", Color: "#EF6C00"},
	task.PriorityHigh:   {Label: "High", Color: "#C62828"},
}

// PriorityStyleOf returns the presentation of p.
func PriorityStyleOf(p task.Priority) PriorityStyle {
	if s, ok := priorityStyles[p]; ok {
		return s
	}
	return PriorityStyle{Label: p.String(), Color: "#888888"}
}

// Theme holds the styles for one color scheme.
type Theme struct {
	Dark     bool
	Title    lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Done     lipgloss.Style
	Selected lipgloss.Style
	Overdue  lipgloss.Style
	Banner   lipgloss.Style
	Error    lipgloss.Style
	Border   lipgloss.Style
}

// NewTheme returns the light or dark theme.
func NewTheme(dark bool) Theme {
	fg, muted, sel, border := lipgloss.Color("#1C1C1E"), lipgloss.Color("#6E6E73"), lipgloss.Color("#E5E5EA"), lipgloss.Color("#C7C7CC")
	if dark {
		fg, muted, sel, border = "#F2F2F7", "#98989D", "#2C2C2E", "#48484A"
	}
	return Theme{
		Dark:     dark,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(fg),
		Text:     lipgloss.NewStyle().Foreground(fg),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Done:     lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
		Selected: lipgloss.NewStyle().Background(sel),
		Overdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3B30")).Bold(true),
		Banner:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#0A84FF")).Padding(0, 1),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3B30")),
		Border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
	}
}

// Category renders a category label in its accent color.
func (t Theme) Category(c task.Category) string {
	s := CategoryStyleOf(c)
	return lipgloss.NewStyle().Foreground(s.From).Render(s.Icon + " " + s.Label)
}

// CategoryChip renders a category bar entry. Active chips are filled.
func (t Theme) CategoryChip(c task.Category, active bool) string {
	s := CategoryStyleOf(c)
	style := lipgloss.NewStyle().Padding(0, 1)
	if active {
		style = style.Foreground(lipgloss.Color("#FFFFFF")).Background(s.From).Bold(true)
	} else {
		style = style.Foreground(s.From)
	}
	return style.Render(s.Icon + " " + s.Label)
}

// Priority renders a priority label in its color.
func (t Theme) Priority(p task.Priority) string {
	s := PriorityStyleOf(p)
	return lipgloss.NewStyle().Foreground(s.Color).Render(s.Label)
}

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Palette
	Primary   = lipgloss.Color("#0EA5E9") // sky
	Secondary = lipgloss.Color("#14B8A6") // teal
	Muted     = lipgloss.Color("#6B7280") // gray
	Text      = lipgloss.Color("#E5E7EB") // light gray
	Panel     = lipgloss.Color("#1F2937") // slate

	// Data origin colors
	Remote   = lipgloss.Color("#22C55E") // green
	Fallback = lipgloss.Color("#F59E0B") // amber
	Demo     = lipgloss.Color("#EF4444") // red

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)

	Label = lipgloss.NewStyle().
		Foreground(Muted).
		Width(14)

	Value = lipgloss.NewStyle().
		Foreground(Text)

	ActiveItem = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	InactiveItem = lipgloss.NewStyle().
			Foreground(Muted)

	Checked = lipgloss.NewStyle().
		Foreground(Remote)

	StatusBar = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1)

	// MapFrame wraps the braille map; DetailCard the clicked-region card.
	MapFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted)

	DetailCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	Tooltip = lipgloss.NewStyle().
		Foreground(Text).
		Background(Panel).
		Padding(0, 1)
)

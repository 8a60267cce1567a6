package output

import "github.com/charmbracelet/lipgloss"

var (
	Feint  = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#666666"}
	Green  = lipgloss.Color("#2EBD59")
	Orange = lipgloss.Color("#F5A623")
	Red    = lipgloss.Color("#EF4444")

	TextStyle  = lipgloss.NewStyle()
	BoldStyle  = TextStyle.Copy().Bold(true)
	FeintStyle = TextStyle.Copy().Foreground(Feint)
	ErrorStyle = TextStyle.Copy().Foreground(Red).Bold(true)
	OKStyle    = TextStyle.Copy().Foreground(Green)
	WarnStyle  = TextStyle.Copy().Foreground(Orange)
)

func RenderError(msg string) string {
	return ErrorStyle.Render("Error: ") + TextStyle.Render(msg)
}

func RenderWarning(msg string) string {
	return WarnStyle.Render(msg)
}

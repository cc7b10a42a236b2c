package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/haivivi/midjourney-go/pkg/midjourney"
)

// Theme defines the terminal colors.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds the styles derived from a theme.
type Styles struct {
	Label lipgloss.Style
	Bar   lipgloss.Style
	Track lipgloss.Style
	Help  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Label: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Bar:   lipgloss.NewStyle().Foreground(t.Primary),
		Track: lipgloss.NewStyle().Foreground(t.Dim),
		Help:  lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Progress renders outcome lines for a terminal.
type Progress struct {
	Styles Styles
	// Width is the bar width in cells.
	Width int
}

// NewProgress returns a Progress with the default theme.
func NewProgress() *Progress {
	return &Progress{Styles: NewStyles(DefaultTheme), Width: 30}
}

// Line renders one outcome: a bar with the percentage for progress, the
// image URI for a finished job.
func (p *Progress) Line(o *midjourney.Outcome) string {
	if o.Finished() {
		return p.Styles.Label.Render("done") + " " + o.URI
	}

	width := max(p.Width, 1)
	filled := min(width, max(0, o.Percent*width/100))
	bar := p.Styles.Bar.Render(strings.Repeat("█", filled)) +
		p.Styles.Track.Render(strings.Repeat("░", width-filled))
	line := fmt.Sprintf("%s %s %3d%%", p.Styles.Label.Render("wait"), bar, o.Percent)
	if o.Percent == 0 {
		line += " " + p.Styles.Help.Render("waiting to start")
	}
	return line
}

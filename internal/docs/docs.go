// Package docs embeds the branch naming guide.
package docs

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
)

//go:embed guide.md
var guide string

// Guide returns the guide as markdown.
func Guide() string {
	return guide
}

// RenderGuide renders the guide for a terminal of the given width. With
// color off the output uses glamour's plain style.
func RenderGuide(width int, color bool) (string, error) {
	style := "notty"
	if color {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating guide renderer: %w", err)
	}
	out, err := r.Render(guide)
	if err != nil {
		return "", fmt.Errorf("rendering guide: %w", err)
	}
	return out, nil
}

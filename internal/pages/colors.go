package pages

import (
	"context"
	"strings"

	"github.com/linkmeta/metasite/internal/site/components"
	"github.com/linkmeta/metasite/internal/site/layout"
	"github.com/linkmeta/metasite/internal/theme"
	"github.com/linkmeta/metasite/pkg/core"
)

// Colors shows the theme palette. It has no events, so it renders without
// the live runtime.
type Colors struct {
	core.BaseComponent

	deps Deps
}

// NewColors creates the colors page.
func NewColors(deps Deps) *Colors {
	return &Colors{deps: deps}
}

func (c *Colors) Name() string { return "colors" }

func (c *Colors) Render(ctx context.Context) core.Renderer {
	return core.HTML(layout.Render(ctx, layout.Options{
		Path:        "/colors",
		Title:       "Colors",
		Description: "The palette of the Microlink design system.",
		BaseURL:     c.deps.BaseURL,
	}, colorsBody))
}

var colorsBody = func() string {
	var sb strings.Builder
	sb.WriteString(`<section class="section"><div class="container container-normal">`)
	sb.WriteString(`<h1>Colors</h1>`)
	sb.WriteString(components.RenderPalette("Other colors", components.OtherColors()))
	for _, name := range theme.RangeNames() {
		sb.WriteString(components.RenderPalette(name, components.RangeColors(name)))
	}
	sb.WriteString(`</div></section>`)
	return sb.String()
}()

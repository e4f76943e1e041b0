package pages

import (
	"context"
	"fmt"

	"github.com/linkmeta/metasite/internal/site"
	"github.com/linkmeta/metasite/internal/site/components"
	"github.com/linkmeta/metasite/internal/site/layout"
	"github.com/linkmeta/metasite/pkg/core"
)

// Home page events.
const (
	EventMQLMode     = "mql:mode"
	EventMQLType     = "mql:type"
	EventMQLLanguage = "mql:language"
)

// Home is the live view of /: a hero and the MQL editor demo.
type Home struct {
	core.BaseComponent

	deps   Deps
	editor *components.MQLEditor
}

// NewHome creates the home page.
func NewHome(deps Deps) *Home {
	return &Home{deps: deps}
}

func (c *Home) Name() string { return "home" }

// Mount selects the editor state from the mode and type query parameters.
// Unknown values keep the defaults.
func (c *Home) Mount(ctx context.Context, params core.Params, session core.Session) error {
	c.editor = components.NewMQLEditor(EventMQLMode, EventMQLType, EventMQLLanguage)
	if v := params.Get("type"); v != "" {
		_ = c.editor.SetType(v)
	}
	if v := params.Get("mode"); v != "" {
		_ = c.editor.SetMode(v)
	}
	return nil
}

func (c *Home) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	switch event {
	case EventMQLMode:
		v, _ := payload["value"].(string)
		return c.editor.SetMode(v)
	case EventMQLType:
		v, _ := payload["value"].(string)
		return c.editor.SetType(v)
	case EventMQLLanguage:
		v, _ := payload["language"].(string)
		c.editor.SetLanguage(v)
		return nil
	}
	return fmt.Errorf("home: unknown event %q", event)
}

func (c *Home) Render(ctx context.Context) core.Renderer {
	body := components.RenderHero(components.HeroOptions{
		Title:   site.Tagline,
		Caption: "Enter a URL, receive information. Screenshots, PDFs, performance reports and metadata from a single API.",
		PrimaryButton: components.HeroButton{
			Text: "Get Started",
			URL:  site.DocsURL,
		},
		SecondaryButton: components.HeroButton{
			Text: "See more",
			URL:  "/meta",
		},
		Content: `<div class="container-normal" style="margin:var(--space-5) auto 0" data-slot="mql">` + c.editor.Render() + `</div>`,
	})

	return core.HTML(layout.Render(ctx, layout.Options{
		View:    c.Name(),
		Path:    "/",
		BaseURL: c.deps.BaseURL,
	}, body))
}

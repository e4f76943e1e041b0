// Package layout wraps page content in the shared document: head tags,
// navbar, the live view root and footer.
package layout

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/linkmeta/metasite/internal/site"
	"github.com/linkmeta/metasite/internal/site/components"
	"github.com/linkmeta/metasite/pkg/router"
)

// ScriptPath is where the live runtime is served.
const ScriptPath = "/_live/live.js"

// Options configures a page.
type Options struct {
	// View names the live view root. Pages without one are static.
	View string
	// Path is the route, used for the canonical URL and the active link
	Path        string
	Title       string
	Description string
	// BaseURL is the public origin, without a trailing slash
	BaseURL string
	// CustomCSS is appended to the shared stylesheet
	CustomCSS string
}

// Render builds the full document around body. The CSP nonce is read
// from ctx so inline tags pass the policy on the first HTTP render.
func Render(ctx context.Context, opts Options, body string) string {
	cfg := site.DefaultPageConfig(opts.BaseURL, opts.Path)
	if opts.Title != "" {
		cfg.Title = opts.Title + " | " + site.ProductName
	}
	if opts.Description != "" {
		cfg.Description = opts.Description
	}
	cfg.Nonce = router.GetCSPNonce(ctx)

	var sb strings.Builder

	sb.WriteString(components.RenderNavbar(components.NavbarOptions{
		Logo:    site.ProductName,
		LogoURL: site.CDNURL + "/logo/trim.png",
		Links:   site.MainLinks(),
		Active:  opts.Path,
	}))

	sb.WriteString(`<main id="main-content"`)
	if opts.View != "" {
		sb.WriteString(fmt.Sprintf(` data-live-view="%s"`, html.EscapeString(opts.View)))
	}
	sb.WriteString(">\n")
	sb.WriteString(body)
	sb.WriteString("\n</main>\n")

	sb.WriteString(components.RenderFooter(components.DefaultFooter()))

	if opts.View != "" {
		sb.WriteString(scriptTag(cfg.Nonce))
	}

	return site.RenderDocument(cfg, opts.CustomCSS, sb.String())
}

func scriptTag(nonce string) string {
	if nonce == "" {
		return fmt.Sprintf(`<script src="%s" defer></script>`, ScriptPath)
	}
	return fmt.Sprintf(`<script src="%s" nonce="%s" defer></script>`, ScriptPath, html.EscapeString(nonce))
}

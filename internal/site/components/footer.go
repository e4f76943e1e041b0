package components

import (
	"html"
	"strings"

	"github.com/linkmeta/metasite/internal/site"
)

// FooterOptions configures the footer component.
type FooterOptions struct {
	Config site.FooterConfig
	// Tagline is shown above the links
	Tagline string
}

// RenderFooter generates the page footer.
func RenderFooter(opts FooterOptions) string {
	var sb strings.Builder

	sb.WriteString(`<footer class="footer" role="contentinfo">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")

	if opts.Tagline != "" {
		sb.WriteString(`<p class="caption">`)
		sb.WriteString(html.EscapeString(opts.Tagline))
		sb.WriteString(`</p>`)
		sb.WriteString("\n")
	}

	if len(opts.Config.Links) > 0 {
		sb.WriteString(`<nav aria-label="Footer navigation">`)
		for _, link := range opts.Config.Links {
			sb.WriteString(renderNavLink(link, false))
		}
		sb.WriteString(`</nav>`)
		sb.WriteString("\n")
	}

	if opts.Config.Copyright != "" {
		sb.WriteString(`<p class="caps">`)
		sb.WriteString(html.EscapeString(opts.Config.Copyright))
		sb.WriteString(`</p>`)
		sb.WriteString("\n")
	}

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</footer>`)
	sb.WriteString("\n")

	return sb.String()
}

// DefaultFooter returns the footer shown on every page.
func DefaultFooter() FooterOptions {
	return FooterOptions{
		Tagline: site.Tagline,
		Config: site.FooterConfig{
			Copyright: "© Microlink",
			Links: []site.NavLink{
				{Label: "Docs", URL: site.DocsURL},
				{Label: "Pricing", URL: "/pricing"},
				{Label: "Colors", URL: "/colors"},
				{Label: "GitHub", URL: site.GitHubURL, External: true},
				{Label: "hello@microlink.io", URL: "mailto:hello@microlink.io"},
			},
		},
	}
}

// Package components provides the UI pieces the pages are built from.
// Every component renders to an HTML string; interactive ones keep their
// state in a struct owned by the page.
package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/linkmeta/metasite/internal/site"
)

// NavbarOptions configures the navbar component.
type NavbarOptions struct {
	// Logo is the logo text (usually the product name)
	Logo string
	// LogoURL is an optional logo image before the text
	LogoURL string
	// Links are the navigation links
	Links []site.NavLink
	// Active is the path of the current page
	Active string
}

// RenderNavbar generates a sticky navigation bar.
func RenderNavbar(opts NavbarOptions) string {
	var sb strings.Builder

	sb.WriteString(`<a href="#main-content" class="skip-link">Skip to main content</a>`)
	sb.WriteString("\n")

	sb.WriteString(`<nav class="nav" role="navigation" aria-label="Main navigation">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container nav-inner">`)
	sb.WriteString("\n")

	sb.WriteString(`<a href="/" class="logo" aria-label="Home">`)
	if opts.LogoURL != "" {
		sb.WriteString(fmt.Sprintf(`<img src="%s" alt="" width="24" height="24"> `, html.EscapeString(opts.LogoURL)))
	}
	sb.WriteString(html.EscapeString(opts.Logo))
	sb.WriteString(`</a>`)
	sb.WriteString("\n")

	sb.WriteString(`<div class="nav-links">`)
	sb.WriteString("\n")
	for _, link := range opts.Links {
		sb.WriteString(renderNavLink(link, link.URL == opts.Active))
		sb.WriteString("\n")
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</nav>`)
	sb.WriteString("\n")

	return sb.String()
}

func renderNavLink(link site.NavLink, active bool) string {
	attrs := ""
	if link.External {
		attrs = ` target="_blank" rel="noopener noreferrer"`
	}
	if active {
		attrs += ` class="active" aria-current="page"`
	}
	return fmt.Sprintf(`<a href="%s"%s>%s</a>`,
		html.EscapeString(link.URL), attrs, html.EscapeString(link.Label))
}

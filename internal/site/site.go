// Package site holds the page shell shared by every route: head tags,
// the stylesheet built from the theme, and the content types components
// are configured with.
package site

// PageConfig defines the head metadata of one page.
type PageConfig struct {
	// Title is the page title (shown in browser tab and search results)
	Title string
	// Description is the meta description for SEO
	Description string
	// URL is the canonical URL of the page
	URL string
	// Keywords are SEO keywords for the page
	Keywords []string
	// OGImage is the Open Graph image URL (for social sharing)
	OGImage string
	// Language is the page language (default: "en")
	Language string
	// ThemeColor is the mobile browser theme color
	ThemeColor string
	// Favicon is the path to the favicon
	Favicon string
	// Nonce is the CSP nonce put on inline scripts
	Nonce string
}

// Feature is one cell of a feature grid.
type Feature struct {
	Title       string
	Description string
}

// NavLink represents a navigation link.
type NavLink struct {
	// Label is the link text
	Label string
	// URL is the link destination
	URL string
	// External indicates if the link opens in a new tab
	External bool
}

// FooterConfig configures the footer section.
type FooterConfig struct {
	Copyright string
	Links     []NavLink
}

// Product constants used in head tags and the navbar.
const (
	ProductName = "Microlink"
	Tagline     = "Turns websites into data"
	DocsURL     = "/docs/sdk/getting-started/overview/"
	GitHubURL   = "https://github.com/microlinkhq"
	CDNURL      = "https://cdn.microlink.io"
)

// DefaultPageConfig returns a PageConfig for a route of baseURL.
func DefaultPageConfig(baseURL, path string) PageConfig {
	return PageConfig{
		Title:       ProductName,
		Description: "Extract structured data from any website.",
		URL:         baseURL + path,
		OGImage:     CDNURL + "/banner/meta.jpeg",
		Language:    "en",
	}
}

// MainLinks are the navbar entries.
func MainLinks() []NavLink {
	return []NavLink{
		{Label: "Meta", URL: "/meta"},
		{Label: "Pricing", URL: "/pricing"},
		{Label: "Colors", URL: "/colors"},
		{Label: "Docs", URL: DocsURL},
		{Label: "GitHub", URL: GitHubURL, External: true},
	}
}

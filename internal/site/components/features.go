package components

import (
	"fmt"
	"html"
	"strings"

	"github.com/linkmeta/metasite/internal/site"
)

// FeaturesOptions configures the features section.
type FeaturesOptions struct {
	// ID anchors the section
	ID string
	// TitleHTML is the section title. It is trusted markup so lines can
	// be colored separately.
	TitleHTML string
	// Caption is the text under the title
	Caption string
	// Features is the list of features to display
	Features []site.Feature
	// Columns is the number of columns (default: 3)
	Columns int
}

// RenderFeatures generates a feature grid section.
func RenderFeatures(opts FeaturesOptions) string {
	var sb strings.Builder

	gridClass := "grid-3"
	switch opts.Columns {
	case 2:
		gridClass = "grid-2"
	}

	id := opts.ID
	if id == "" {
		id = "features"
	}

	sb.WriteString(fmt.Sprintf(`<section id="%s" class="section" aria-labelledby="%s-title">`,
		html.EscapeString(id), html.EscapeString(id)))
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")

	if opts.TitleHTML != "" {
		sb.WriteString(fmt.Sprintf(`<h2 id="%s-title">%s</h2>`, html.EscapeString(id), opts.TitleHTML))
		sb.WriteString("\n")
	}
	if opts.Caption != "" {
		sb.WriteString(fmt.Sprintf(`<p class="caption">%s</p>`, html.EscapeString(opts.Caption)))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf(`<div class="grid %s">`, gridClass))
	sb.WriteString("\n")
	for i, f := range opts.Features {
		sb.WriteString(renderFeature(f, i))
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

func renderFeature(f site.Feature, index int) string {
	return fmt.Sprintf(`<article class="feature fade-in" style="animation-delay:%dms">
<h3 class="subhead">%s</h3>
<p>%s</p>
</article>
`, (index%4)*100, html.EscapeString(f.Title), html.EscapeString(f.Description))
}

package components

import (
	"fmt"
	"html"
	"strings"
)

// Block is an illustrated paragraph. Consecutive blocks alternate sides.
type Block struct {
	Title string
	// Text is trusted markup so it can carry links.
	Text  string
	Image string
}

// RenderBlocks renders blocks, flipping every second one.
func RenderBlocks(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		class := "block"
		if i%2 == 1 {
			class += " reverse"
		}
		sb.WriteString(fmt.Sprintf(`<div class="%s">`, class))
		sb.WriteString(fmt.Sprintf(`<img src="%s" alt="%s" loading="lazy">`,
			html.EscapeString(b.Image), html.EscapeString(b.Title)))
		sb.WriteString(`<div class="block-text">`)
		sb.WriteString(fmt.Sprintf(`<h3 class="subhead">%s</h3>`, html.EscapeString(b.Title)))
		sb.WriteString(fmt.Sprintf(`<p>%s</p>`, b.Text))
		sb.WriteString(`</div></div>`)
		sb.WriteString("\n")
	}
	return sb.String()
}

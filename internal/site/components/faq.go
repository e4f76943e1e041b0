package components

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/linkmeta/metasite/internal/theme"
)

// FAQEntry is a question with its answer paragraphs. Answers are trusted
// HTML.
type FAQEntry struct {
	Question string
	Answer   []string
}

// FAQOptions configures the FAQ section.
type FAQOptions struct {
	// ID is the section anchor (default: "faq")
	ID        string
	Title     string
	Caption   string
	Questions []FAQEntry
	// Background and Border are theme color names or CSS colors
	Background string
	Border     string
}

// RenderFAQ generates a FAQ section. Every question is linkable through
// an anchor derived from its text.
func RenderFAQ(opts FAQOptions) string {
	var sb strings.Builder

	id := opts.ID
	if id == "" {
		id = "faq"
	}

	style := ""
	if opts.Background != "" {
		style += "background:" + colorValue(opts.Background) + ";"
	}
	if opts.Border != "" {
		b := colorValue(opts.Border)
		style += fmt.Sprintf("border-top:1px solid %s;border-bottom:1px solid %s;", b, b)
	}

	sb.WriteString(fmt.Sprintf(`<section class="faq" id="%s"`, html.EscapeString(id)))
	if style != "" {
		sb.WriteString(fmt.Sprintf(` style="%s"`, html.EscapeString(style)))
	}
	sb.WriteString(`>`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container container-normal">`)
	sb.WriteString("\n")

	sb.WriteString(`<div class="text-center">`)
	sb.WriteString(fmt.Sprintf(`<h2>%s</h2>`, html.EscapeString(opts.Title)))
	if opts.Caption != "" {
		sb.WriteString(fmt.Sprintf(`<p class="caption" style="padding-bottom:var(--space-5)">%s</p>`, html.EscapeString(opts.Caption)))
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	for i, q := range opts.Questions {
		pad := 5
		if i == 0 {
			pad = 0
		}
		slug := Slug(q.Question)
		sb.WriteString(fmt.Sprintf(`<div class="faq-question" style="padding-top:var(--space-%d)">`, pad))
		sb.WriteString(fmt.Sprintf(`<h3 id="%s"><a href="#%s">%s</a></h3>`,
			slug, slug, html.EscapeString(q.Question)))
		sb.WriteString(`<div class="faq-answer">`)
		for _, p := range q.Answer {
			sb.WriteString(fmt.Sprintf(`<p style="color:%s">%s</p>`, theme.Color("black80"), p))
		}
		sb.WriteString(`</div></div>`)
		sb.WriteString("\n")
	}

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

// Slug turns text into an anchor id: diacritics are stripped, letters
// lowercased and everything else collapsed into single dashes.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return sb.String()
}

func colorValue(name string) string {
	if v := theme.Color(name); v != "" {
		return v
	}
	return name
}

package components

import (
	"fmt"
	"html"
	"strings"
)

// HeroOptions configures the hero section.
type HeroOptions struct {
	// Title is the main headline
	Title string
	// Caption is the description below the title
	Caption string
	// PrimaryButton is the primary CTA
	PrimaryButton HeroButton
	// SecondaryButton is rendered as an arrow link
	SecondaryButton HeroButton
	// Content is trusted markup placed under the buttons
	Content string
}

// HeroButton represents a hero section button.
type HeroButton struct {
	Text string
	URL  string
}

func (b HeroButton) target() string {
	if strings.HasPrefix(b.URL, "http") {
		return ` target="_blank" rel="noopener noreferrer"`
	}
	return ""
}

// RenderHero generates the hero section with title, caption and CTAs.
func RenderHero(opts HeroOptions) string {
	var sb strings.Builder

	sb.WriteString(`<section class="hero section" aria-labelledby="hero-title">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container">`)
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf(`<h1 id="hero-title">%s</h1>`, html.EscapeString(opts.Title)))
	sb.WriteString("\n")

	if opts.Caption != "" {
		sb.WriteString(fmt.Sprintf(`<p class="caption">%s</p>`, html.EscapeString(opts.Caption)))
		sb.WriteString("\n")
	}

	if opts.PrimaryButton.Text != "" || opts.SecondaryButton.Text != "" {
		sb.WriteString(`<div class="hero-actions">`)
		if b := opts.PrimaryButton; b.Text != "" {
			sb.WriteString(fmt.Sprintf(`<a href="%s" class="btn"%s>%s</a>`,
				html.EscapeString(b.URL), b.target(), html.EscapeString(b.Text)))
		}
		if b := opts.SecondaryButton; b.Text != "" {
			sb.WriteString(fmt.Sprintf(`<a href="%s" class="arrow-link"%s>%s <span aria-hidden="true">→</span></a>`,
				html.EscapeString(b.URL), b.target(), html.EscapeString(b.Text)))
		}
		sb.WriteString(`</div>`)
		sb.WriteString("\n")
	}

	sb.WriteString(opts.Content)

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"What is it?", "what-is-it"},
		{"Why not run my own solution?", "why-not-run-my-own-solution"},
		{"  Crème brûlée  ", "creme-brulee"},
		{"A -- B", "a-b"},
		{"?!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "Slug(%q)", tt.in)
	}
}

func TestRenderFAQ(t *testing.T) {
	out := RenderFAQ(FAQOptions{
		ID:         "information",
		Title:      "Product Information",
		Caption:    "All the details.",
		Background: "pinky",
		Border:     "pinkest",
		Questions: []FAQEntry{
			{Question: "What is it?", Answer: []string{"<b>Microlink</b> is a service."}},
			{Question: "Other questions?", Answer: []string{"Ask.", "Anytime."}},
		},
	})

	assert.Contains(t, out, `<section class="faq" id="information" style="background:#fdf6fa;border-top:1px solid #f8e1ee;border-bottom:1px solid #f8e1ee;">`)
	assert.Contains(t, out, "<h2>Product Information</h2>")
	assert.Contains(t, out, `<div class="faq-question" style="padding-top:var(--space-0)"><h3 id="what-is-it"><a href="#what-is-it">What is it?</a></h3>`)
	assert.Contains(t, out, `style="padding-top:var(--space-5)"><h3 id="other-questions">`)
	assert.Contains(t, out, "<b>Microlink</b> is a service.")
	assert.Equal(t, 3, strings.Count(out, `<p style="color:rgba(0, 0, 0, 0.8)">`))
}

func TestRenderFAQDefaults(t *testing.T) {
	out := RenderFAQ(FAQOptions{Title: "FAQ"})
	assert.Contains(t, out, `<section class="faq" id="faq">`)
	assert.NotContains(t, out, "caption")
}

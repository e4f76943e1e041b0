package components

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/linkmeta/metasite/internal/theme"
)

// NamedColor is one swatch of a palette.
type NamedColor struct {
	Name  string
	Value string
}

var rgbRe = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*[\d.]+\s*)?\)$`)

// ToHex lowercases a color and converts rgb() and rgba() notation to
// #rrggbb. The alpha channel is dropped.
func ToHex(color string) string {
	c := strings.ToLower(strings.TrimSpace(color))
	m := rgbRe.FindStringSubmatch(c)
	if m == nil {
		return c
	}
	var rgb [3]int
	for i := range rgb {
		v, _ := strconv.Atoi(m[i+1])
		rgb[i] = min(v, 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

// ContrastColor returns "black" for light backgrounds and "white" for
// dark ones, by YIQ brightness.
func ContrastColor(color string) string {
	r, g, b, ok := theme.ParseHex(ToHex(color))
	if !ok {
		return "black"
	}
	yiq := (int(r)*299 + int(g)*587 + int(b)*114) / 1000
	if yiq >= 128 {
		return "black"
	}
	return "white"
}

// OtherColors is the palette of brand colors.
func OtherColors() []NamedColor {
	names := theme.OtherNames()
	out := make([]NamedColor, 0, len(names))
	for _, name := range names {
		out = append(out, NamedColor{Name: name, Value: theme.Color(name)})
	}
	return out
}

// RangeColors is the palette of one graded range, named gray0..gray8.
func RangeColors(name string) []NamedColor {
	shades := theme.Range(name)
	out := make([]NamedColor, 0, len(shades))
	for i, v := range shades {
		out = append(out, NamedColor{Name: fmt.Sprintf("%s%d", name, i), Value: v})
	}
	return out
}

// RenderPalette renders a titled list of swatches. Labels use the
// contrast color of their swatch.
func RenderPalette(title string, colors []NamedColor) string {
	var sb strings.Builder

	sb.WriteString(`<section class="palette">`)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`<h3>%s</h3>`, html.EscapeString(title)))
	sb.WriteString("\n")
	sb.WriteString(`<div class="swatches">`)
	sb.WriteString("\n")

	for _, c := range colors {
		hex := ToHex(c.Value)
		fg := theme.Color(ContrastColor(c.Value))
		sb.WriteString(fmt.Sprintf(`<div class="swatch" style="background:%s;color:%s"><span>%s</span><span class="mono">%s</span></div>`,
			html.EscapeString(c.Value),
			fg,
			html.EscapeString(c.Name),
			html.EscapeString(hex)))
		sb.WriteString("\n")
	}

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

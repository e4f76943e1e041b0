// Package theme holds the design tokens shared by every component: colors,
// spacing, type scale, breakpoints and layout widths.
package theme

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// RangeSize is the number of shades in every graded color range.
const RangeSize = 9

// ranges are open-color shades 0..8.
var ranges = map[string][RangeSize]string{
	"gray":    {"#f8f9fa", "#f1f3f5", "#e9ecef", "#dee2e6", "#ced4da", "#adb5bd", "#868e96", "#495057", "#343a40"},
	"blue":    {"#e7f5ff", "#d0ebff", "#a5d8ff", "#74c0fc", "#4dabf7", "#339af0", "#228be6", "#1c7ed6", "#1971c2"},
	"cyan":    {"#e3fafc", "#c5f6fa", "#99e9f2", "#66d9e8", "#3bc9db", "#22b8cf", "#15aabf", "#1098ad", "#0c8599"},
	"indigo":  {"#edf2ff", "#dbe4ff", "#bac8ff", "#91a7ff", "#748ffc", "#5c7cfa", "#4c6ef5", "#4263eb", "#3b5bdb"},
	"violet":  {"#f3f0ff", "#e5dbff", "#d0bfff", "#b197fc", "#9775fa", "#845ef7", "#7950f2", "#7048e8", "#6741d9"},
	"fuschia": {"#f8f0fc", "#f3d9fa", "#eebefa", "#e599f7", "#da77f2", "#cc5de8", "#be4bdb", "#ae3ec9", "#9c36b5"},
	"pink":    {"#fff0f6", "#ffdeeb", "#fcc2d7", "#faa2c1", "#f783ac", "#f06595", "#e64980", "#d6336c", "#c2255c"},
	"red":     {"#fff5f5", "#ffe3e3", "#ffc9c9", "#ffa8a8", "#ff8787", "#ff6b6b", "#fa5252", "#f03e3e", "#e03131"},
	"orange":  {"#fff4e6", "#ffe8cc", "#ffd8a8", "#ffc078", "#ffa94d", "#ff922b", "#fd7e14", "#f76707", "#e8590c"},
	"yellow":  {"#fff9db", "#fff3bf", "#ffec99", "#ffe066", "#ffd43b", "#fcc419", "#fab005", "#f59f00", "#f08c00"},
	"lime":    {"#f4fce3", "#e9fac8", "#d8f5a2", "#c0eb75", "#a9e34b", "#94d82d", "#82c91e", "#74b816", "#66a80f"},
	"green":   {"#ebfbee", "#d3f9d8", "#b2f2bb", "#8ce99a", "#69db7c", "#51cf66", "#40c057", "#37b24d", "#2f9e44"},
	"teal":    {"#e6fcf5", "#c3fae8", "#96f2d7", "#63e6be", "#38d9a9", "#20c997", "#12b886", "#0ca678", "#099268"},
}

// rangeOrder is the display order of the graded ranges.
var rangeOrder = []string{
	"gray", "blue", "cyan", "indigo", "violet", "fuschia", "pink",
	"red", "orange", "yellow", "lime", "green", "teal",
}

// named are the brand and text colors. Some are rgba on purpose: they are
// overlays and keep their alpha in CSS.
var named = map[string]string{
	"link":      "#067df7",
	"secondary": "#ea407b",
	"primary":   "#000000",
	"pinky":     "#fdf6fa",
	"pinkest":   "#f8e1ee",
	"border":    "rgb(234, 234, 234)",
	"black":     "#000000",
	"black80":   "rgba(0, 0, 0, 0.8)",
	"black50":   "rgba(0, 0, 0, 0.5)",
	"white":     "#ffffff",
	"white80":   "rgba(255, 255, 255, 0.8)",

	// code editor window buttons
	"close":      "#ff5f56",
	"minimize":   "#ffbd2e",
	"fullscreen": "#27c93f",
}

// otherNames are the brand colors shown in the palette viewer.
var otherNames = []string{"link", "secondary", "primary", "pinky", "pinkest", "border"}

// Color returns the value of a named color or a range shade such as
// "gray5". Unknown names return "".
func Color(name string) string {
	if v, ok := named[name]; ok {
		return v
	}
	if len(name) < 2 {
		return ""
	}
	idx, err := strconv.Atoi(name[len(name)-1:])
	if err != nil {
		return ""
	}
	r, ok := ranges[name[:len(name)-1]]
	if !ok || idx >= RangeSize {
		return ""
	}
	return r[idx]
}

// Range returns the shades of a graded range, lightest first.
func Range(name string) []string {
	r, ok := ranges[name]
	if !ok {
		return nil
	}
	return r[:]
}

// RangeNames returns the graded ranges in display order.
func RangeNames() []string {
	return slices.Clone(rangeOrder)
}

// OtherNames returns the brand colors shown before the ranges.
func OtherNames() []string {
	return slices.Clone(otherNames)
}

// Space is the spacing scale in pixels, indexed 0..7.
var Space = [8]int{0, 4, 8, 16, 32, 64, 128, 256}

// FontSizes is the type scale in pixels.
var FontSizes = [9]int{12, 14, 16, 20, 24, 32, 48, 64, 72}

// Breakpoints are min-widths for the responsive steps.
var Breakpoints = [3]string{"600px", "960px", "1280px"}

// Layout widths for content columns.
var Layout = struct {
	Small  string
	Normal string
	Large  string
}{
	Small:  "500px",
	Normal: "650px",
	Large:  "960px",
}

// Fonts.
const (
	FontSans = `Inter, system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif`
	FontMono = `'SF Mono', SFMono-Regular, ui-monospace, 'DejaVu Sans Mono', Menlo, Consolas, monospace`
)

// CSSVariables returns a :root block with --color-*, --space-* and
// --font-size-* custom properties.
func CSSVariables() string {
	var sb strings.Builder
	sb.WriteString(":root {\n")

	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "  --color-%s: %s;\n", name, named[name])
	}
	for _, name := range rangeOrder {
		for i, v := range ranges[name] {
			fmt.Fprintf(&sb, "  --color-%s%d: %s;\n", name, i, v)
		}
	}
	for i, v := range Space {
		fmt.Fprintf(&sb, "  --space-%d: %dpx;\n", i, v)
	}
	for i, v := range FontSizes {
		fmt.Fprintf(&sb, "  --font-size-%d: %dpx;\n", i, v)
	}
	fmt.Fprintf(&sb, "  --layout-small: %s;\n  --layout-normal: %s;\n  --layout-large: %s;\n",
		Layout.Small, Layout.Normal, Layout.Large)

	sb.WriteString("}\n")
	return sb.String()
}

// Lighten raises the HSL lightness of a #rrggbb color by amount (0..1).
// Values that do not parse are returned unchanged.
func Lighten(amount float64, hex string) string {
	r, g, b, ok := ParseHex(hex)
	if !ok {
		return hex
	}
	h, s, l := rgbToHSL(r, g, b)
	l = math.Min(1, math.Max(0, l+amount))
	r, g, b = hslToRGB(h, s, l)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// ParseHex parses #rgb and #rrggbb colors.
func ParseHex(hex string) (r, g, b uint8, ok bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func rgbToHSL(r8, g8, b8 uint8) (h, s, l float64) {
	r, g, b := float64(r8)/255, float64(g8)/255, float64(b8)/255
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l = (maxC + minC) / 2
	if maxC == minC {
		return 0, 0, l
	}

	d := maxC - minC
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6, s, l
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return v, v, v
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	conv := func(t float64) uint8 {
		return uint8(math.Round(hueToRGB(p, q, t) * 255))
	}
	return conv(h + 1.0/3), conv(h), conv(h - 1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

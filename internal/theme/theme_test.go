package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColor(t *testing.T) {
	assert.Equal(t, "#067df7", Color("link"))
	assert.Equal(t, "#f8f9fa", Color("gray0"))
	assert.Equal(t, "#c2255c", Color("pink8"))
	assert.Equal(t, "", Color("gray9"))
	assert.Equal(t, "", Color("mauve1"))
	assert.Equal(t, "", Color(""))
}

func TestRanges(t *testing.T) {
	names := RangeNames()
	assert.Len(t, names, 13)
	assert.Equal(t, "gray", names[0])
	assert.Equal(t, "teal", names[12])

	for _, name := range names {
		shades := Range(name)
		assert.Len(t, shades, RangeSize, name)
		for i, v := range shades {
			assert.Equal(t, v, Color(name+string(rune('0'+i))))
		}
	}
	assert.Nil(t, Range("mauve"))

	names[0] = "changed"
	assert.Equal(t, "gray", RangeNames()[0], "RangeNames must return a copy")
}

func TestOtherNames(t *testing.T) {
	assert.Equal(t, []string{"link", "secondary", "primary", "pinky", "pinkest", "border"}, OtherNames())
	for _, name := range OtherNames() {
		assert.NotEmpty(t, Color(name), name)
	}
}

func TestCSSVariables(t *testing.T) {
	css := CSSVariables()
	assert.True(t, strings.HasPrefix(css, ":root {"))
	assert.Contains(t, css, "--color-link: #067df7;")
	assert.Contains(t, css, "--color-teal8: #099268;")
	assert.Contains(t, css, "--space-3: 16px;")
	assert.Contains(t, css, "--font-size-0: 12px;")
	assert.Contains(t, css, "--layout-large: 960px;")
}

func TestLighten(t *testing.T) {
	assert.Equal(t, "#067df7", Lighten(0, "#067df7"))
	assert.Equal(t, "#ffffff", Lighten(1, "#067df7"))
	assert.Equal(t, "#808080", Lighten(0.5, "#000"))
	assert.Equal(t, "not-a-color", Lighten(0.2, "not-a-color"))

	r0, g0, b0, _ := ParseHex(Color("link"))
	r1, g1, b1, ok := ParseHex(Lighten(0.15, Color("link")))
	assert.True(t, ok)
	assert.Greater(t, int(r1)+int(g1)+int(b1), int(r0)+int(g0)+int(b0))
}

func TestParseHex(t *testing.T) {
	r, g, b, ok := ParseHex("#0af")
	assert.True(t, ok)
	assert.Equal(t, [3]uint8{0x00, 0xaa, 0xff}, [3]uint8{r, g, b})

	_, _, _, ok = ParseHex("#12345")
	assert.False(t, ok)
	_, _, _, ok = ParseHex("#zzzzzz")
	assert.False(t, ok)
}

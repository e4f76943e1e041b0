package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputFocus(t *testing.T) {
	var focused, blurred int
	in := NewInput(InputProps{ID: "url", AutoFocus: true})
	in.OnFocus = func() { focused++ }
	in.OnBlur = func() { blurred++ }

	assert.True(t, in.Focus)
	assert.Contains(t, in.Render(), `class="input-box focus"`)

	in.HandleBlur()
	assert.False(t, in.Focus)
	assert.Contains(t, in.Render(), `class="input-box"`)

	in.HandleFocus()
	assert.True(t, in.Focus)
	assert.Equal(t, 1, focused)
	assert.Equal(t, 1, blurred)
}

func TestInputSuggestions(t *testing.T) {
	in := NewInput(InputProps{ID: "demo", Suggestions: []string{"youtube.com", "<b>"}})

	assert.Equal(t, "demo-suggestions", in.SuggestionsID())
	assert.Equal(t, "demo-suggestions", in.ListID())

	out := in.Render()
	assert.Contains(t, out, `list="demo-suggestions"`)
	assert.Contains(t, out, `<datalist id="demo-suggestions"><option value="youtube.com"></option><option value="&lt;b&gt;"></option></datalist>`)

	in.Value = "example.com"
	assert.Empty(t, in.ListID())
	assert.NotContains(t, in.Render(), `list=`)
}

func TestInputEvents(t *testing.T) {
	in := NewInput(InputProps{
		ID:          "q",
		Value:       `"quoted"`,
		ChangeEvent: "change",
		FocusEvent:  "focus",
		BlurEvent:   "blur",
		Debounce:    300,
		Icon:        SearchIcon,
	})
	out := in.Render()

	assert.Contains(t, out, `type="text"`)
	assert.Contains(t, out, `value="&#34;quoted&#34;"`)
	assert.Contains(t, out, `lv-change="change" lv-debounce="300" lv-focus="focus" lv-blur="blur"`)
	assert.Contains(t, out, `<span class="input-icon"><svg`)
	assert.NotContains(t, out, "autofocus")
}

func TestFaviconIcon(t *testing.T) {
	assert.Equal(t, SearchIcon, FaviconIcon(""))
	assert.Contains(t, FaviconIcon("youtube.com"), `src="https://logo.clearbit.com/youtube.com"`)
}

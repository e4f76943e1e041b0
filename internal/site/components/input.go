package components

import (
	"fmt"
	"html"
	"strings"
)

// InputProps configures an Input.
type InputProps struct {
	ID          string
	Name        string
	Type        string
	Value       string
	Placeholder string
	AutoFocus   bool

	// Suggestions are offered through a datalist.
	Suggestions []string

	// Icon is trusted HTML shown before the field.
	Icon string

	// Event names sent by the client. Empty names are not bound.
	ChangeEvent string
	FocusEvent  string
	BlurEvent   string

	// Debounce delays change events, in milliseconds.
	Debounce int
}

// Input is a text field with an optional icon and suggestions. Its focus
// state is kept on the server so the box can be styled around it.
type Input struct {
	InputProps

	Focus   bool
	OnFocus func()
	OnBlur  func()
}

// NewInput creates an input focused when AutoFocus is set.
func NewInput(props InputProps) *Input {
	if props.Type == "" {
		props.Type = "text"
	}
	return &Input{
		InputProps: props,
		Focus:      props.AutoFocus,
		OnFocus:    func() {},
		OnBlur:     func() {},
	}
}

// HandleFocus marks the input focused.
func (in *Input) HandleFocus() {
	in.Focus = true
	if in.OnFocus != nil {
		in.OnFocus()
	}
}

// HandleBlur marks the input blurred.
func (in *Input) HandleBlur() {
	in.Focus = false
	if in.OnBlur != nil {
		in.OnBlur()
	}
}

// SuggestionsID is the id of the datalist.
func (in *Input) SuggestionsID() string {
	return in.ID + "-suggestions"
}

// ListID is the list attribute. Suggestions are only offered while the
// field is empty so they do not compete with browser autocomplete.
func (in *Input) ListID() string {
	if in.Value != "" || len(in.Suggestions) == 0 {
		return ""
	}
	return in.SuggestionsID()
}

// Render generates the input box.
func (in *Input) Render() string {
	var sb strings.Builder

	class := "input-box"
	if in.Focus {
		class += " focus"
	}
	sb.WriteString(fmt.Sprintf(`<div class="%s">`, class))

	if in.Icon != "" {
		sb.WriteString(`<span class="input-icon">`)
		sb.WriteString(in.Icon)
		sb.WriteString(`</span>`)
	}

	sb.WriteString(fmt.Sprintf(`<input id="%s" type="%s"`, html.EscapeString(in.ID), html.EscapeString(in.Type)))
	if in.Name != "" {
		sb.WriteString(fmt.Sprintf(` name="%s"`, html.EscapeString(in.Name)))
	}
	sb.WriteString(fmt.Sprintf(` value="%s"`, html.EscapeString(in.Value)))
	if in.Placeholder != "" {
		sb.WriteString(fmt.Sprintf(` placeholder="%s"`, html.EscapeString(in.Placeholder)))
	}
	if list := in.ListID(); list != "" {
		sb.WriteString(fmt.Sprintf(` list="%s"`, html.EscapeString(list)))
	}
	if in.AutoFocus {
		sb.WriteString(` autofocus`)
	}
	if in.ChangeEvent != "" {
		sb.WriteString(fmt.Sprintf(` lv-change="%s"`, html.EscapeString(in.ChangeEvent)))
		if in.Debounce > 0 {
			sb.WriteString(fmt.Sprintf(` lv-debounce="%d"`, in.Debounce))
		}
	}
	if in.FocusEvent != "" {
		sb.WriteString(fmt.Sprintf(` lv-focus="%s"`, html.EscapeString(in.FocusEvent)))
	}
	if in.BlurEvent != "" {
		sb.WriteString(fmt.Sprintf(` lv-blur="%s"`, html.EscapeString(in.BlurEvent)))
	}
	sb.WriteString(` autocomplete="off" spellcheck="false">`)

	if len(in.Suggestions) > 0 {
		sb.WriteString(fmt.Sprintf(`<datalist id="%s">`, html.EscapeString(in.SuggestionsID())))
		for _, s := range in.Suggestions {
			sb.WriteString(fmt.Sprintf(`<option value="%s"></option>`, html.EscapeString(s)))
		}
		sb.WriteString(`</datalist>`)
	}

	sb.WriteString(`</div>`)
	return sb.String()
}

// SearchIcon is the default input icon.
const SearchIcon = `<svg width="16" height="16" viewBox="0 0 24 24" fill="none" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true"><circle cx="11" cy="11" r="8"></circle><line x1="21" y1="21" x2="16.65" y2="16.65"></line></svg>`

// FaviconIcon shows the favicon of domain, or the search icon when there
// is no domain yet.
func FaviconIcon(domain string) string {
	if domain == "" {
		return SearchIcon
	}
	return fmt.Sprintf(`<img src="https://logo.clearbit.com/%s" alt="" width="16" height="16" loading="lazy">`,
		html.EscapeString(domain))
}

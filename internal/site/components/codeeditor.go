package components

import (
	"fmt"
	"html"
	"slices"
	"strings"
)

// CodeEditorProps configures a code editor window.
type CodeEditorProps struct {
	// Language selects syntax highlighting and the default title
	Language string
	// Title is shown in the window header
	Title string
	// Code is the source code
	Code string
}

// RenderCodeEditor generates a mac-style window with highlighted code.
func RenderCodeEditor(props CodeEditorProps) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<div class="code-editor" data-language="%s">`, html.EscapeString(props.Language)))
	sb.WriteString(renderCodeHeader(editorTitle(props)))
	sb.WriteString(renderCodeContent(props))
	sb.WriteString(`</div>`)

	return sb.String()
}

func editorTitle(props CodeEditorProps) string {
	if props.Title != "" {
		return props.Title
	}
	return LanguageLabel(props.Language)
}

func renderCodeHeader(title string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="code-header">`)
	sb.WriteString(`<span class="code-dot code-dot-close" aria-hidden="true"></span>`)
	sb.WriteString(`<span class="code-dot code-dot-minimize" aria-hidden="true"></span>`)
	sb.WriteString(`<span class="code-dot code-dot-fullscreen" aria-hidden="true"></span>`)
	if title != "" {
		sb.WriteString(fmt.Sprintf(`<span class="code-title">%s</span>`, html.EscapeString(title)))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func renderCodeContent(props CodeEditorProps) string {
	return fmt.Sprintf(`<div class="code-content"><pre><code class="language-%s">%s</code></pre></div>`,
		html.EscapeString(props.Language), Highlight(strings.TrimRight(props.Code, "\n"), props.Language))
}

// languageOrder is the tab order of the multi language editor.
var languageOrder = []string{"bash", "js", "jsx", "python", "go", "html", "json"}

// LanguageLabel is the display name of a language.
func LanguageLabel(language string) string {
	switch language {
	case "bash":
		return "Shell"
	case "js":
		return "Node.js"
	case "jsx":
		return "React"
	case "python":
		return "Python"
	case "go":
		return "Go"
	case "html":
		return "HTML"
	case "json":
		return "JSON"
	}
	return language
}

// SortLanguages returns the keys of languages in tab order. Unknown
// languages go last, alphabetically.
func SortLanguages(languages map[string]string) []string {
	keys := make([]string, 0, len(languages))
	for k := range languages {
		keys = append(keys, k)
	}
	rank := func(k string) int {
		if i := slices.Index(languageOrder, k); i >= 0 {
			return i
		}
		return len(languageOrder)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})
	return keys
}

// RenderMultiCodeEditor renders one editor with a tab per language.
// Clicking a tab sends event with a "language" value. An unknown selected
// language falls back to the first tab.
func RenderMultiCodeEditor(languages map[string]string, selected, event string) string {
	keys := SortLanguages(languages)
	if len(keys) == 0 {
		return RenderCodeEditor(CodeEditorProps{})
	}
	if _, ok := languages[selected]; !ok {
		selected = keys[0]
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<div class="code-editor" data-language="%s">`, html.EscapeString(selected)))
	sb.WriteString(renderCodeHeader(""))

	sb.WriteString(`<div class="code-tabs" role="tablist">`)
	for _, lang := range keys {
		class := "code-tab"
		aria := "false"
		if lang == selected {
			class += " active"
			aria = "true"
		}
		sb.WriteString(fmt.Sprintf(`<button type="button" class="%s" role="tab" aria-selected="%s"`, class, aria))
		if event != "" {
			sb.WriteString(fmt.Sprintf(` lv-click="%s" lv-value-language="%s"`, html.EscapeString(event), html.EscapeString(lang)))
		}
		sb.WriteString(fmt.Sprintf(`>%s</button>`, html.EscapeString(LanguageLabel(lang))))
	}
	sb.WriteString(`</div>`)

	sb.WriteString(renderCodeContent(CodeEditorProps{Language: selected, Code: languages[selected]}))
	sb.WriteString(`</div>`)

	return sb.String()
}

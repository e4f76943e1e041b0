package components

import (
	"errors"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/linkmeta/metasite/internal/metadata"
	"github.com/linkmeta/metasite/pkg/forms"
)

// Editor modes and types, in display order.
var (
	Modes = []string{"preview", "html", "json", "code"}
	Types = []string{"meta", "iframe", "screenshot", "pdf", "insights"}
)

// Errors returned when selecting an editor mode or type.
var (
	ErrUnknownMode = errors.New("unknown mode")
	ErrUnknownType = errors.New("unknown type")
)

// MQLEditor shows what the API returns for each type of query, as a
// preview, the embed HTML, the JSON payload or client code.
type MQLEditor struct {
	Mode     string
	Type     string
	Language string

	// Events sent by the option buttons. Each carries a "value".
	ModeEvent     string
	TypeEvent     string
	LanguageEvent string
}

// NewMQLEditor returns an editor on the preview of the meta type.
func NewMQLEditor(modeEvent, typeEvent, languageEvent string) *MQLEditor {
	return &MQLEditor{
		Mode:          Modes[0],
		Type:          Types[0],
		ModeEvent:     modeEvent,
		TypeEvent:     typeEvent,
		LanguageEvent: languageEvent,
	}
}

// SetMode switches the mode.
func (e *MQLEditor) SetMode(v string) error {
	if !slices.Contains(Modes, v) {
		return fmt.Errorf("%w: %q", ErrUnknownMode, v)
	}
	e.Mode = v
	return nil
}

// SetType switches the type.
func (e *MQLEditor) SetType(v string) error {
	if !slices.Contains(Types, v) {
		return fmt.Errorf("%w: %q", ErrUnknownType, v)
	}
	e.Type = v
	return nil
}

// SetLanguage selects the tab of the code mode.
func (e *MQLEditor) SetLanguage(v string) {
	e.Language = v
}

// Render generates the card and its option buttons.
func (e *MQLEditor) Render() string {
	var sb strings.Builder

	q := mqlQueries[e.Type]

	class := "mql-card card"
	style := ""
	if e.Mode == "preview" {
		switch e.Type {
		case "screenshot":
			class += " screenshot"
			style = fmt.Sprintf(` style="background-image:url('%s')"`, html.EscapeString(screenshotURL))
		case "iframe":
			class += " embed"
		}
	}

	sb.WriteString(`<div class="mql-editor">`)
	sb.WriteString(fmt.Sprintf(`<div class="%s" data-mode="%s" data-type="%s"%s>`,
		class, html.EscapeString(e.Mode), html.EscapeString(e.Type), style))

	switch e.Mode {
	case "preview":
		switch e.Type {
		case "pdf":
			sb.WriteString(renderIframe(pdfURL, "PDF preview"))
		case "insights":
			sb.WriteString(renderIframe(insightsURL, "Insights report"))
		case "meta":
			sb.WriteString(RenderPreviewCard(q.data, "video"))
		case "iframe":
			sb.WriteString(RenderPreviewCard(q.data, "iframe"))
		}
	case "json":
		sb.WriteString(RenderCodeEditor(CodeEditorProps{Language: "json", Code: q.jsonCode()}))
	case "html":
		sb.WriteString(RenderCodeEditor(CodeEditorProps{Language: "html", Code: q.htmlCode(e.Type)}))
	case "code":
		sb.WriteString(RenderMultiCodeEditor(q.codeSnippets(), e.Language, e.LanguageEvent))
	}

	sb.WriteString(`</div>`)

	sb.WriteString(`<div class="mql-options">`)
	sb.WriteString(renderOptions(Modes, e.Mode, e.ModeEvent))
	sb.WriteString(renderOptions(Types, e.Type, e.TypeEvent))
	sb.WriteString(`</div>`)

	sb.WriteString(`</div>`)
	return sb.String()
}

func renderOptions(values []string, current, event string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="card-options">`)
	for _, v := range values {
		class := "card-option"
		if v == current {
			class += " active"
		}
		sb.WriteString(fmt.Sprintf(`<button type="button" class="%s"`, class))
		if event != "" {
			sb.WriteString(fmt.Sprintf(` lv-click="%s" lv-value-value="%s"`, html.EscapeString(event), html.EscapeString(v)))
		}
		sb.WriteString(fmt.Sprintf(`>%s</button>`, html.EscapeString(v)))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func renderIframe(src, title string) string {
	return fmt.Sprintf(`<iframe src="%s" title="%s" loading="lazy"></iframe>`,
		html.EscapeString(src), html.EscapeString(title))
}

// RenderPreviewCard renders a large link preview of data. media picks what
// fills the card: "iframe" uses the embed HTML, "video" the video. Both
// fall back to the image.
func RenderPreviewCard(data metadata.Data, media string) string {
	var sb strings.Builder

	target := data.String("url")
	sb.WriteString(fmt.Sprintf(`<a class="preview-card" href="%s" target="_blank" rel="noopener noreferrer">`,
		html.EscapeString(target)))

	image := data.URLOf("image")
	switch {
	case media == "iframe" && embedHTML(data) != "":
		sb.WriteString(`<div class="media">`)
		sb.WriteString(embedHTML(data))
		sb.WriteString(`</div>`)
	case media == "video" && data.URLOf("video") != "":
		sb.WriteString(fmt.Sprintf(`<div class="media"><video src="%s" poster="%s" muted playsinline controls preload="none"></video></div>`,
			html.EscapeString(data.URLOf("video")), html.EscapeString(image)))
	default:
		sb.WriteString(fmt.Sprintf(`<div class="media" style="background-image:url('%s')"></div>`, html.EscapeString(image)))
	}

	if media != "iframe" {
		sb.WriteString(`<div class="content">`)
		sb.WriteString(fmt.Sprintf(`<p class="title">%s</p>`, html.EscapeString(data.String("title"))))
		if d := data.String("description"); d != "" {
			sb.WriteString(fmt.Sprintf(`<p class="description">%s</p>`, html.EscapeString(d)))
		}
		sb.WriteString(fmt.Sprintf(`<p class="url">%s</p>`, html.EscapeString(forms.Domain(target))))
		sb.WriteString(`</div>`)
	}

	sb.WriteString(`</a>`)
	return sb.String()
}

// embedHTML is the provider embed markup extracted by the API. It comes
// from the demo data set, not from visitors.
func embedHTML(data metadata.Data) string {
	m, ok := data["iframe"].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["html"].(string)
	return s
}

package components

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmeta/metasite/internal/metadata"
)

func TestMQLEditorDefaults(t *testing.T) {
	e := NewMQLEditor("mode", "type", "lang")

	assert.Equal(t, "preview", e.Mode)
	assert.Equal(t, "meta", e.Type)

	out := e.Render()
	assert.Contains(t, out, `data-mode="preview" data-type="meta"`)
	assert.Contains(t, out, `<video src=`)
	assert.Contains(t, out, `class="card-option active" lv-click="mode" lv-value-value="preview">preview</button>`)
	assert.Contains(t, out, `class="card-option active" lv-click="type" lv-value-value="meta">meta</button>`)
	assert.Equal(t, len(Modes)+len(Types), strings.Count(out, `<button type="button" class="card-option`))
	assert.Equal(t, 2, strings.Count(out, `<div class="card-options">`))
}

func TestMQLEditorRejectsUnknownValues(t *testing.T) {
	e := NewMQLEditor("", "", "")

	assert.ErrorIs(t, e.SetMode("xml"), ErrUnknownMode)
	assert.ErrorIs(t, e.SetType("video"), ErrUnknownType)
	assert.Equal(t, "preview", e.Mode)
	assert.Equal(t, "meta", e.Type)
	assert.NotContains(t, e.Render(), "lv-click")
}

func TestMQLEditorEveryCombination(t *testing.T) {
	e := NewMQLEditor("mode", "type", "lang")
	for _, typ := range Types {
		for _, mode := range Modes {
			require.NoError(t, e.SetType(typ))
			require.NoError(t, e.SetMode(mode))

			out := e.Render()
			assert.Contains(t, out, `data-mode="`+mode+`" data-type="`+typ+`"`, "%s/%s", mode, typ)

			switch mode {
			case "json":
				assert.Contains(t, out, `data-language="json"`, typ)
			case "html":
				assert.Contains(t, out, `data-language="html"`, typ)
			case "code":
				assert.Contains(t, out, `lv-value-language="bash"`, typ)
				assert.Contains(t, out, `lv-value-language="python"`, typ)
			}
		}
	}
}

func TestMQLEditorPreviews(t *testing.T) {
	e := NewMQLEditor("", "", "")

	require.NoError(t, e.SetType("screenshot"))
	assert.Contains(t, e.Render(), `class="mql-card card screenshot"`)
	assert.Contains(t, e.Render(), screenshotURL)

	require.NoError(t, e.SetType("pdf"))
	assert.Contains(t, e.Render(), `<iframe src="`+pdfURL+`"`)

	require.NoError(t, e.SetType("insights"))
	assert.Contains(t, e.Render(), `<iframe src="`+insightsURL+`"`)

	require.NoError(t, e.SetType("iframe"))
	out := e.Render()
	assert.Contains(t, out, `class="mql-card card embed"`)
	assert.Contains(t, out, "<iframe")
	assert.NotContains(t, out, `class="title"`)
}

func TestMQLEditorCodeLanguage(t *testing.T) {
	e := NewMQLEditor("", "", "lang")
	require.NoError(t, e.SetMode("code"))

	e.SetLanguage("python")
	out := e.Render()
	assert.Contains(t, out, `data-language="python"`)
	assert.Contains(t, out, "requests")

	e.SetLanguage("cobol")
	assert.Contains(t, e.Render(), `data-language="bash"`)
}

func TestMQLQueriesJSON(t *testing.T) {
	for _, typ := range Types {
		q, ok := mqlQueries[typ]
		require.True(t, ok, typ)

		var payload struct {
			Status string         `json:"status"`
			Data   map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(q.jsonCode()), &payload), typ)
		assert.Equal(t, "success", payload.Status)
		assert.NotEmpty(t, payload.Data, typ)
		assert.True(t, strings.HasPrefix(q.apiURL(), apiEndpoint+"/?"), typ)
	}
}

func TestRenderPreviewCard(t *testing.T) {
	data := metadata.Data{
		"url":         "https://www.theverge.com/a",
		"title":       "A <title>",
		"description": "Desc",
		"image":       map[string]any{"url": "https://cdn.example.com/a.png"},
	}

	out := RenderPreviewCard(data, "video")
	assert.Contains(t, out, `href="https://www.theverge.com/a"`)
	assert.Contains(t, out, `background-image:url('https://cdn.example.com/a.png')`)
	assert.Contains(t, out, `<p class="title">A &lt;title&gt;</p>`)
	assert.Contains(t, out, `<p class="url">theverge.com</p>`)

	out = RenderPreviewCard(metadata.Data{"url": "https://x.com"}, "iframe")
	assert.Contains(t, out, `<div class="media" style="background-image:url('')"></div>`)
}

package components

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/linkmeta/metasite/internal/demolinks"
	"github.com/linkmeta/metasite/internal/metadata"
)

// Sample resources shown by the editor previews.
const (
	screenshotURL = "https://cdn.microlink.io/website/browser/light/netflix.png"
	pdfURL        = "https://cdn.microlink.io/demo/microlink-pdf.pdf"
	insightsURL   = "https://cdn.microlink.io/demo/lighthouse-report.html"

	apiEndpoint = "https://api.microlink.io"
	sdkScript   = "https://cdn.jsdelivr.net/npm/@microlink/vanilla@latest/dist/microlink.min.js"
)

// mqlQuery holds what each type needs: the target, the API flags and the
// demo payload.
type mqlQuery struct {
	target string
	flags  map[string]string
	data   metadata.Data
}

var mqlQueries = buildQueries()

func buildQueries() map[string]mqlQuery {
	meta, _ := demolinks.Find("youtube")
	iframe, _ := demolinks.Find("spotify")

	return map[string]mqlQuery{
		"meta": {
			target: meta.URL(),
			flags:  map[string]string{"video": "true"},
			data:   meta.Data,
		},
		"iframe": {
			target: iframe.URL(),
			flags:  map[string]string{"iframe": "true"},
			data:   iframe.Data,
		},
		"screenshot": {
			target: "https://www.netflix.com/title/80057281",
			flags:  map[string]string{"screenshot": "true", "meta": "false"},
			data: metadata.Data{
				"url": "https://www.netflix.com/title/80057281",
				"screenshot": map[string]any{
					"url":         screenshotURL,
					"type":        "png",
					"size":        1021453,
					"height":      800,
					"width":       1280,
					"size_pretty": "1.02 MB",
				},
			},
		},
		"pdf": {
			target: "https://microlink.io/meta",
			flags:  map[string]string{"pdf": "true", "meta": "false"},
			data: metadata.Data{
				"url": "https://microlink.io/meta",
				"pdf": map[string]any{
					"url":         pdfURL,
					"type":        "pdf",
					"size":        289231,
					"size_pretty": "289 kB",
				},
			},
		},
		"insights": {
			target: "https://microlink.io",
			flags:  map[string]string{"insights": "true", "meta": "false"},
			data: metadata.Data{
				"url": "https://microlink.io",
				"insights": map[string]any{
					"lighthouse": map[string]any{
						"url":         insightsURL,
						"performance": 0.96,
						"seo":         1,
					},
					"technologies": []any{
						map[string]any{"name": "React", "categories": []any{"JavaScript Frameworks"}},
						map[string]any{"name": "Gatsby", "categories": []any{"Static Site Generator"}},
					},
				},
			},
		},
	}
}

// PrettyJSON encodes v with two space indentation and without escaping
// HTML characters.
func PrettyJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// apiURL is the request URL of q.
func (q mqlQuery) apiURL() string {
	v := url.Values{}
	v.Set("url", q.target)
	for k, val := range q.flags {
		v.Set(k, val)
	}
	return apiEndpoint + "/?" + v.Encode()
}

func (q mqlQuery) jsonCode() string {
	return PrettyJSON(map[string]any{"status": "success", "data": q.data})
}

func (q mqlQuery) htmlCode(typ string) string {
	switch typ {
	case "meta", "iframe":
		media := "video"
		if typ == "iframe" {
			media = "iframe"
		}
		return fmt.Sprintf(`<a class="link-preview" href="%s">%s</a>

<script src="%s"></script>
<script>
  microlink('.link-preview', { media: '%s' })
</script>`, q.target, q.target, sdkScript, media)
	case "screenshot":
		return fmt.Sprintf(`<img src="%s&embed=screenshot.url" alt="screenshot">`, q.apiURL())
	case "pdf":
		return fmt.Sprintf(`<a href="%s&embed=pdf.url">Download PDF</a>`, q.apiURL())
	case "insights":
		return fmt.Sprintf(`<iframe src="%s&embed=insights.lighthouse.url"></iframe>`, q.apiURL())
	}
	return ""
}

func (q mqlQuery) codeSnippets() map[string]string {
	flags := make([]string, 0, len(q.flags))
	for _, k := range sortedKeys(q.flags) {
		flags = append(flags, fmt.Sprintf("  %s: %s", k, q.flags[k]))
	}

	return map[string]string{
		"bash": fmt.Sprintf(`curl -sL "%s"`, q.apiURL()),
		"js": fmt.Sprintf(`const mql = require('@microlink/mql')

const { status, data } = await mql('%s', {
%s
})

console.log(status, data)`, q.target, strings.Join(flags, ",\n")),
		"python": fmt.Sprintf(`import requests

params = %s
response = requests.get("%s/", params)

print(response.json())`, pythonDict(q.target, q.flags), apiEndpoint),
	}
}

func pythonDict(target string, flags map[string]string) string {
	parts := []string{fmt.Sprintf(`"url": "%s"`, target)}
	for _, k := range sortedKeys(flags) {
		parts = append(parts, fmt.Sprintf(`"%s": "%s"`, k, flags[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

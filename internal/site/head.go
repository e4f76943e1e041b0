package site

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/linkmeta/metasite/internal/theme"
)

// RenderHead generates the <head> section with SEO, Open Graph, Twitter
// and JSON-LD tags.
func RenderHead(cfg PageConfig, customCSS string) string {
	var sb strings.Builder

	themeColor := cfg.ThemeColor
	if themeColor == "" {
		themeColor = theme.Color("link")
	}

	sb.WriteString("<head>\n")

	sb.WriteString(`<meta charset="UTF-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")

	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(cfg.Title)))

	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if len(cfg.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf(`<meta name="keywords" content="%s">`+"\n", html.EscapeString(strings.Join(cfg.Keywords, ", "))))
	}
	if cfg.URL != "" {
		sb.WriteString(fmt.Sprintf(`<link rel="canonical" href="%s">`+"\n", html.EscapeString(cfg.URL)))
	}

	sb.WriteString(fmt.Sprintf(`<meta name="theme-color" content="%s">`+"\n", html.EscapeString(themeColor)))
	sb.WriteString(`<meta name="robots" content="index, follow">` + "\n")

	sb.WriteString(renderOpenGraph(cfg))
	sb.WriteString(renderTwitterCard(cfg))
	sb.WriteString(renderJSONLD(cfg))

	favicon := cfg.Favicon
	if favicon == "" {
		favicon = CDNURL + "/logo/favicon.ico"
	}
	sb.WriteString(fmt.Sprintf(`<link rel="icon" href="%s">`+"\n", html.EscapeString(favicon)))

	sb.WriteString(styleOpen(cfg.Nonce))
	sb.WriteString(RenderStyles())
	if customCSS != "" {
		sb.WriteString("\n")
		sb.WriteString(customCSS)
	}
	sb.WriteString("\n</style>\n")

	sb.WriteString("</head>\n")

	return sb.String()
}

func styleOpen(nonce string) string {
	if nonce == "" {
		return "<style>\n"
	}
	return fmt.Sprintf(`<style nonce="%s">`+"\n", html.EscapeString(nonce))
}

func renderOpenGraph(cfg PageConfig) string {
	var sb strings.Builder

	sb.WriteString(`<meta property="og:type" content="website">` + "\n")
	sb.WriteString(fmt.Sprintf(`<meta property="og:site_name" content="%s">`+"\n", ProductName))

	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:title" content="%s">`+"\n", html.EscapeString(cfg.Title)))
	}
	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if cfg.URL != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:url" content="%s">`+"\n", html.EscapeString(cfg.URL)))
	}
	if cfg.OGImage != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:image" content="%s">`+"\n", html.EscapeString(cfg.OGImage)))
	}

	return sb.String()
}

func renderTwitterCard(cfg PageConfig) string {
	var sb strings.Builder

	sb.WriteString(`<meta name="twitter:card" content="summary_large_image">` + "\n")
	sb.WriteString(`<meta name="twitter:site" content="@microlinkhq">` + "\n")

	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="twitter:title" content="%s">`+"\n", html.EscapeString(cfg.Title)))
	}
	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="twitter:description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if cfg.OGImage != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="twitter:image" content="%s">`+"\n", html.EscapeString(cfg.OGImage)))
	}

	return sb.String()
}

func renderJSONLD(cfg PageConfig) string {
	doc := map[string]any{
		"@context":            "https://schema.org",
		"@type":               "WebApplication",
		"name":                cfg.Title,
		"description":         cfg.Description,
		"url":                 cfg.URL,
		"applicationCategory": "DeveloperApplication",
		"offers": map[string]any{
			"@type":         "Offer",
			"priceCurrency": "EUR",
			"price":         "0",
		},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return ""
	}

	nonceAttr := ""
	if cfg.Nonce != "" {
		nonceAttr = fmt.Sprintf(` nonce="%s"`, html.EscapeString(cfg.Nonce))
	}
	return fmt.Sprintf(`<script type="application/ld+json"%s>%s</script>`+"\n", nonceAttr, b)
}

// RenderDocument wraps content in a complete HTML document.
func RenderDocument(cfg PageConfig, customCSS, bodyContent string) string {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="%s">
%s<body>
%s
</body>
</html>`, html.EscapeString(lang), RenderHead(cfg, customCSS), bodyContent)
}

package components

import (
	"html"
	"strings"
)

// lexer describes the tokens of a C-like or shell-like language.
type lexer struct {
	keywords     map[string]bool
	lineComments []string
	blockComment [2]string
	quotes       string
}

func words(s string) map[string]bool {
	m := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		m[w] = true
	}
	return m
}

var lexers = map[string]*lexer{
	"js": {
		keywords: words(`async await break case catch class const continue default delete else export
			extends false finally for from function if import in instanceof let new null return
			switch this throw true try typeof undefined var void while yield`),
		lineComments: []string{"//"},
		blockComment: [2]string{"/*", "*/"},
		quotes:       "\"'`",
	},
	"go": {
		keywords: words(`break case chan const continue default defer else fallthrough false for func
			go goto if import interface map nil package range return select struct switch true type var`),
		lineComments: []string{"//"},
		blockComment: [2]string{"/*", "*/"},
		quotes:       "\"`",
	},
	"python": {
		keywords: words(`and as assert async await break class continue def del elif else except
			False finally for from global if import in is lambda None nonlocal not or pass raise
			return True try while with yield`),
		lineComments: []string{"#"},
		quotes:       `"'`,
	},
	"bash": {
		keywords: words(`case do done echo elif else esac export fi for function if in local
			return then until while curl npm npx`),
		lineComments: []string{"#"},
		quotes:       `"'`,
	},
}

// Highlight returns code as escaped HTML with token spans for json, html,
// js, go, python and bash. Other languages are only escaped.
func Highlight(code, language string) string {
	switch language {
	case "json":
		return highlightJSON(code)
	case "html":
		return highlightHTML(code)
	case "javascript", "node", "jsx":
		language = "js"
	case "golang":
		language = "go"
	case "sh", "shell":
		language = "bash"
	}
	lx, ok := lexers[language]
	if !ok {
		return html.EscapeString(code)
	}
	return lx.highlight(code)
}

func span(sb *strings.Builder, class, text string) {
	sb.WriteString(`<span class="token-`)
	sb.WriteString(class)
	sb.WriteString(`">`)
	sb.WriteString(html.EscapeString(text))
	sb.WriteString(`</span>`)
}

func (lx *lexer) highlight(code string) string {
	var sb strings.Builder
	sb.Grow(len(code) * 2)

	i := 0
	for i < len(code) {
		rest := code[i:]
		c := code[i]

		if open := lx.blockComment[0]; open != "" && strings.HasPrefix(rest, open) {
			n := len(rest)
			if end := strings.Index(rest[len(open):], lx.blockComment[1]); end >= 0 {
				n = len(open) + end + len(lx.blockComment[1])
			}
			span(&sb, "comment", rest[:n])
			i += n
			continue
		}

		if lx.lineCommentAt(code, i) {
			n := strings.IndexByte(rest, '\n')
			if n < 0 {
				n = len(rest)
			}
			span(&sb, "comment", rest[:n])
			i += n
			continue
		}

		if strings.IndexByte(lx.quotes, c) >= 0 {
			n := scanString(rest, c)
			span(&sb, "string", rest[:n])
			i += n
			continue
		}

		if isDigit(c) && (i == 0 || !isWordChar(code[i-1])) {
			n := scanNumber(rest)
			span(&sb, "number", rest[:n])
			i += n
			continue
		}

		if isWordChar(c) {
			n := scanWord(rest)
			if w := rest[:n]; lx.keywords[w] {
				span(&sb, "keyword", w)
			} else {
				sb.WriteString(html.EscapeString(w))
			}
			i += n
			continue
		}

		sb.WriteString(html.EscapeString(rest[:1]))
		i++
	}

	return sb.String()
}

// lineCommentAt reports whether a line comment starts at i. A shell style
// "#" only starts a comment at the beginning of a word.
func (lx *lexer) lineCommentAt(code string, i int) bool {
	for _, p := range lx.lineComments {
		if !strings.HasPrefix(code[i:], p) {
			continue
		}
		if p == "#" && i > 0 && !isSpace(code[i-1]) {
			return false
		}
		return true
	}
	return false
}

// scanString returns the length of the quoted string at the start of s.
// Unterminated strings end at the line break, except backtick strings.
func scanString(s string, quote byte) int {
	j := 1
	for j < len(s) {
		switch s[j] {
		case '\\':
			j += 2
			continue
		case quote:
			return j + 1
		case '\n':
			if quote != '`' {
				return j
			}
		}
		j++
	}
	return len(s)
}

func scanNumber(s string) int {
	j := 0
	for j < len(s) && (isDigit(s[j]) || s[j] == '.' || s[j] == 'e' || s[j] == 'E' || s[j] == '_' ||
		((s[j] == '-' || s[j] == '+') && j > 0 && (s[j-1] == 'e' || s[j-1] == 'E'))) {
		j++
	}
	return j
}

func scanWord(s string) int {
	j := 0
	for j < len(s) && isWordChar(s[j]) {
		j++
	}
	return j
}

func highlightJSON(code string) string {
	var sb strings.Builder
	sb.Grow(len(code) * 2)

	i := 0
	for i < len(code) {
		rest := code[i:]
		c := code[i]

		switch {
		case c == '"':
			n := scanString(rest, '"')
			class := "string"
			if isPropertyKey(rest[n:]) {
				class = "property"
			}
			span(&sb, class, rest[:n])
			i += n
		case isDigit(c) || (c == '-' && len(rest) > 1 && isDigit(rest[1])):
			n := 1 + scanNumber(rest[1:])
			span(&sb, "number", rest[:n])
			i += n
		case isWordChar(c):
			n := scanWord(rest)
			if w := rest[:n]; w == "true" || w == "false" || w == "null" {
				span(&sb, "keyword", w)
			} else {
				sb.WriteString(html.EscapeString(w))
			}
			i += n
		case strings.IndexByte("{}[]:,", c) >= 0:
			span(&sb, "punctuation", rest[:1])
			i++
		default:
			sb.WriteString(html.EscapeString(rest[:1]))
			i++
		}
	}

	return sb.String()
}

func isPropertyKey(after string) bool {
	return strings.HasPrefix(strings.TrimLeft(after, " \t\r\n"), ":")
}

func highlightHTML(code string) string {
	var sb strings.Builder
	sb.Grow(len(code) * 2)

	i := 0
	for i < len(code) {
		rest := code[i:]

		if strings.HasPrefix(rest, "<!--") {
			n := len(rest)
			if end := strings.Index(rest, "-->"); end >= 0 {
				n = end + 3
			}
			span(&sb, "comment", rest[:n])
			i += n
			continue
		}

		if rest[0] == '<' && len(rest) > 1 && (isWordChar(rest[1]) || rest[1] == '/' || rest[1] == '!') {
			n := tagEnd(rest)
			highlightTag(&sb, rest[:n])
			i += n
			continue
		}

		sb.WriteString(html.EscapeString(rest[:1]))
		i++
	}

	return sb.String()
}

// tagEnd returns the length of the tag at the start of s, skipping '>'
// inside quoted attribute values.
func tagEnd(s string) int {
	j := 1
	for j < len(s) {
		switch s[j] {
		case '"', '\'':
			j += scanString(s[j:], s[j])
			continue
		case '>':
			return j + 1
		}
		j++
	}
	return len(s)
}

func highlightTag(sb *strings.Builder, tag string) {
	j := 1
	sb.WriteString("&lt;")
	if j < len(tag) && (tag[j] == '/' || tag[j] == '!') {
		sb.WriteString(html.EscapeString(tag[j : j+1]))
		j++
	}
	name := j
	for j < len(tag) && (isWordChar(tag[j]) || tag[j] == '-') {
		j++
	}
	if j > name {
		span(sb, "tag", tag[name:j])
	}

	for j < len(tag) {
		c := tag[j]
		switch {
		case c == '"' || c == '\'':
			n := scanString(tag[j:], c)
			span(sb, "string", tag[j:j+n])
			j += n
		case isWordChar(c):
			k := j
			for k < len(tag) && (isWordChar(tag[k]) || tag[k] == '-' || tag[k] == ':') {
				k++
			}
			span(sb, "attr", tag[j:k])
			j = k
		default:
			sb.WriteString(html.EscapeString(tag[j : j+1]))
			j++
		}
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) || c == '_' || c == '$'
}

package forms

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// PrependHTTP adds http:// to input that has no scheme. Relative paths and
// values that already carry a scheme are returned trimmed but unchanged.
// localhost:port is treated as a host, not as a scheme.
func PrependHTTP(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	if strings.HasPrefix(strings.TrimLeft(s, "."), "/") {
		return s
	}
	if hasScheme(s) {
		return s
	}
	return "http://" + s
}

// hasScheme reports whether s starts with word characters followed by a
// colon, as in mailto: or https:. A leading "localhost" never counts.
func hasScheme(s string) bool {
	if strings.HasPrefix(s, "localhost") {
		return false
	}
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return false
	}
	for _, c := range s[:i] {
		if !isWordRune(c) {
			return false
		}
	}
	return true
}

func isWordRune(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// IsURL reports whether raw is an absolute http or https URL with a host.
func IsURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}

// NormalizeURL prepends a scheme when missing and validates the result.
func NormalizeURL(raw string) (string, bool) {
	u := PrependHTTP(raw)
	return u, IsURL(u)
}

// Domain returns the registrable domain of raw ("www.youtube.com/watch"
// gives "youtube.com"). It returns "" for IPs, bare suffixes and anything
// that does not parse.
func Domain(raw string) string {
	u, err := url.Parse(PrependHTTP(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return domain
}

// Humanize strips the scheme, a leading www. and the trailing slash so a
// URL reads well in suggestions.
func Humanize(raw string) string {
	u, err := url.Parse(PrependHTTP(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimPrefix(strings.ToLower(u.Host), "www."))
	sb.WriteString(strings.TrimSuffix(u.EscapedPath(), "/"))
	if u.RawQuery != "" {
		sb.WriteByte('?')
		sb.WriteString(u.RawQuery)
	}
	return sb.String()
}

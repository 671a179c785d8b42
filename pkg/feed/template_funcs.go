package feed

import (
	"html"
	"strings"
	"text/template"
	"time"
)

// TemplateFuncs returns a map of template helper functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"xmlEscape":   xmlEscape,
		"cdata":       cdata,
		"rssDate":     RSSDate,
		"formatTime":  formatTime,
		"joinStrings": strings.Join,
	}
}

// xmlEscape escapes s as XML character data. Input is treated as plain text,
// so existing entities are escaped again rather than decoded.
func xmlEscape(s string) string {
	return html.EscapeString(xmlText(s))
}

// cdata wraps s in a CDATA section. A literal "]]>" inside s is split across
// two sections so the result stays well-formed.
func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(xmlText(s), "]]>", "]]]]><![CDATA[>") + "]]>"
}

// xmlText replaces invalid UTF-8 with U+FFFD and drops characters outside
// the XML 1.0 Char production
func xmlText(s string) string {
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, strings.ToValidUTF8(s, "\uFFFD"))
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	default:
		return r >= 0x10000 && r <= 0x10FFFF
	}
}

// RSSDate formats t the way RSS 2.0 expects pubDate values (RFC 822, GMT)
func RSSDate(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}

// formatTime formats time in RFC3339 format
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

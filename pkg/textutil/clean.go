// Package textutil turns HTML fragments into short plain-text strings.
package textutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const ellipsis = "..."

// blockElements are treated as word breaks when markup is stripped.
var blockElements = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.Li:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Blockquote: true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Tr:         true,
	atom.Td:         true,
	atom.Th:         true,
}

// skippedElements have their text content dropped entirely.
var skippedElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

// Cleaner implements the feed renderer's text cleaning collaborator.
type Cleaner struct{}

// Clean delegates to the package level Clean.
func (Cleaner) Clean(text string, maxLength int) string {
	return Clean(text, maxLength)
}

// Clean strips markup from text, collapses whitespace and truncates the result
// to at most maxLength runes. maxLength <= 0 disables truncation.
func Clean(text string, maxLength int) string {
	plain := strings.Join(strings.Fields(StripTags(text)), " ")
	return Truncate(plain, maxLength)
}

// StripTags returns the text content of an HTML fragment with entities decoded.
func StripTags(fragment string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was collected
			return b.String()

		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedElements[a] && tt == html.StartTagToken {
				skipDepth++
			}
			if blockElements[a] {
				b.WriteByte(' ')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedElements[a] && skipDepth > 0 {
				skipDepth--
			}
			if blockElements[a] {
				b.WriteByte(' ')
			}
		}
	}
}

// Truncate shortens s to at most maxLen runes. When cut, the result ends in "..."
// and breaks on the last space that keeps the text within the limit.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	if maxLen <= len(ellipsis) {
		return string(runes[:maxLen])
	}

	keep := maxLen - len(ellipsis)
	cut := string(runes[:keep])
	if runes[keep] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ") + ellipsis
}

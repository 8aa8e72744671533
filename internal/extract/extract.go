// Package extract pulls query-relevant visible text out of raw HTML.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

const maxLines = 50

// Subtrees that never contain answer text.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"noscript": true,
	"iframe":   true,
	"head":     true,
}

// VisibleLines parses HTML and returns the trimmed, non-empty visible text
// lines in document order. Malformed HTML is handled best-effort; the
// parser never fails on real-world pages.
func VisibleLines(rawHTML string) []string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte('\n')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// RelevantContent extracts the lines of an HTML page that mention any of
// the query terms, keeping two lines of surrounding context per hit,
// deduplicated in first-seen order and capped at 50 lines.
func RelevantContent(rawHTML string, queryTerms []string) string {
	lines := VisibleLines(rawHTML)
	if len(lines) == 0 {
		return ""
	}

	terms := make([]string, 0, len(queryTerms))
	for _, t := range queryTerms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return ""
	}

	var relevant []string
	for i, line := range lines {
		lower := strings.ToLower(line)
		hit := false
		for _, term := range terms {
			if strings.Contains(lower, term) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		start := i - 2
		if start < 0 {
			start = 0
		}
		end := i + 3
		if end > len(lines) {
			end = len(lines)
		}
		relevant = append(relevant, lines[start:end]...)
	}

	return strings.Join(Dedup(relevant, maxLines), "\n")
}

// Dedup removes exact duplicate lines while preserving first-seen order,
// keeping at most limit lines. A limit of 0 means no cap.
func Dedup(lines []string, limit int) []string {
	seen := make(map[string]bool, len(lines))
	var out []string
	for _, line := range lines {
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

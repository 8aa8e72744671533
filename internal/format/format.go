// Package format renders gathered live data into short, human-readable
// text blocks for inclusion in a chat reply.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/liliang-cn/askweb/internal/extract"
	"github.com/liliang-cn/askweb/internal/search"
)

// Bounds on rendered output so live data never overwhelms the reply.
const (
	maxGames        = 3
	maxStandings    = 5
	maxNews         = 3
	maxShopping     = 3
	maxOrganic      = 3
	maxSectionChars = 500
	maxScrapedLines = 30
)

// SearchResults renders the structured search payload, category blocks in a
// fixed order, each under an emoji section marker, with a source and
// timestamp footer.
func SearchResults(r *search.Results, now time.Time) string {
	if r.Empty() {
		return ""
	}

	var sections []string

	if r.AnswerBox != nil {
		sections = append(sections, answerBoxSection(r.AnswerBox))
	}
	if r.SportsResults != nil {
		sections = append(sections, sportsSection(r.SportsResults))
	}
	if r.Weather != nil {
		sections = append(sections, weatherSection(r.Weather))
	}
	if len(r.Markets) > 0 {
		sections = append(sections, marketsSection(r.Markets))
	}
	if len(r.NewsResults) > 0 {
		sections = append(sections, newsSection(r.NewsResults))
	}
	if len(r.ShoppingResults) > 0 {
		sections = append(sections, shoppingSection(r.ShoppingResults))
	}
	if r.KnowledgeGraph != nil {
		sections = append(sections, knowledgeSection(r.KnowledgeGraph))
	}
	if len(r.OrganicResults) > 0 {
		sections = append(sections, organicSection(r.OrganicResults))
	}

	var out []string
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, capSection(s))
		}
	}
	if len(out) == 0 {
		return ""
	}

	return strings.Join(out, "\n\n") + "\n\n" + footer("Google Search", now)
}

// ScrapedContent renders extracted page text under a web marker with the
// same footer convention, capped at 30 lines.
func ScrapedContent(content, sourceHost string, now time.Time) string {
	lines := extract.Dedup(strings.Split(strings.TrimSpace(content), "\n"), maxScrapedLines)
	if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
		return ""
	}
	return "🌐 **Web Results**\n" + strings.Join(lines, "\n") + "\n\n" + footer(sourceHost, now)
}

func footer(source string, now time.Time) string {
	return fmt.Sprintf("Source: %s · retrieved %s", source, now.UTC().Format(time.RFC3339))
}

func capSection(s string) string {
	if len(s) <= maxSectionChars {
		return s
	}
	// Back up to a rune boundary so the cut never splits a multibyte
	// sequence into invalid UTF-8.
	cut := maxSectionChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func answerBoxSection(a *search.AnswerBox) string {
	var b strings.Builder
	b.WriteString("📊 **Answer**\n")
	if a.Title != "" {
		fmt.Fprintf(&b, "%s\n", a.Title)
	}
	if a.Answer != "" {
		fmt.Fprintf(&b, "%s\n", a.Answer)
	} else if a.Snippet != "" {
		fmt.Fprintf(&b, "%s\n", a.Snippet)
	}
	return b.String()
}

func sportsSection(s *search.SportsResults) string {
	var b strings.Builder
	b.WriteString("🏀 **Sports**\n")
	if s.Title != "" {
		fmt.Fprintf(&b, "%s\n", s.Title)
	}
	for i, g := range s.Games {
		if i == maxGames {
			break
		}
		var sides []string
		for _, t := range g.Teams {
			if t.Score != "" {
				sides = append(sides, fmt.Sprintf("%s %s", t.Name, t.Score))
			} else {
				sides = append(sides, t.Name)
			}
		}
		line := strings.Join(sides, " vs ")
		if g.Status != "" {
			line += " (" + g.Status + ")"
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	for i, row := range s.Rankings {
		if i == maxStandings {
			break
		}
		if row.Position > 0 {
			fmt.Fprintf(&b, "%d. %s %s\n", row.Position, row.Team, row.Record)
		} else {
			fmt.Fprintf(&b, "- %s %s\n", row.Team, row.Record)
		}
	}
	return b.String()
}

func weatherSection(w *search.WeatherResult) string {
	var b strings.Builder
	b.WriteString("🌤️ **Weather**\n")
	if w.Location != "" {
		fmt.Fprintf(&b, "%s: ", w.Location)
	}
	if w.Temperature != "" {
		fmt.Fprintf(&b, "%s°%s", w.Temperature, w.Unit)
	}
	var details []string
	if w.Precipitation != "" {
		details = append(details, "precipitation "+w.Precipitation)
	}
	if w.Humidity != "" {
		details = append(details, "humidity "+w.Humidity)
	}
	if w.Wind != "" {
		details = append(details, "wind "+w.Wind)
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
	}
	b.WriteByte('\n')
	for i, f := range w.Forecast {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "- %s: %s/%s %s\n", f.Day, f.High, f.Low, f.Weather)
	}
	return b.String()
}

func marketsSection(markets []search.MarketResult) string {
	var b strings.Builder
	b.WriteString("💰 **Markets**\n")
	for i, m := range markets {
		if i == maxStandings {
			break
		}
		line := m.Name
		if m.Price != 0 {
			line += fmt.Sprintf(": %.2f", m.Price)
		}
		if m.PriceMovement != nil && m.PriceMovement.Percentage != 0 {
			arrow := "▲"
			if strings.EqualFold(m.PriceMovement.Movement, "down") {
				arrow = "▼"
			}
			line += fmt.Sprintf(" %s%.2f%%", arrow, m.PriceMovement.Percentage)
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

func newsSection(news []search.NewsResult) string {
	var b strings.Builder
	b.WriteString("📰 **News**\n")
	for i, n := range news {
		if i == maxNews {
			break
		}
		line := n.Title
		if n.Source != "" {
			line += " — " + n.Source
		}
		if n.Date != "" {
			line += " (" + n.Date + ")"
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

func shoppingSection(items []search.ShoppingResult) string {
	var b strings.Builder
	b.WriteString("🛒 **Shopping**\n")
	for i, item := range items {
		if i == maxShopping {
			break
		}
		line := item.Title
		if item.Price != "" {
			line += " — " + item.Price
		}
		if item.Source != "" {
			line += " (" + item.Source + ")"
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

func knowledgeSection(k *search.KnowledgeGraph) string {
	var b strings.Builder
	b.WriteString("📊 **Knowledge Panel**\n")
	if k.Title != "" {
		line := k.Title
		if k.Type != "" {
			line += " (" + k.Type + ")"
		}
		fmt.Fprintf(&b, "%s\n", line)
	}
	if k.Description != "" {
		fmt.Fprintf(&b, "%s\n", k.Description)
	}
	return b.String()
}

func organicSection(results []search.OrganicResult) string {
	var b strings.Builder
	b.WriteString("🔍 **Top Results**\n")
	for i, r := range results {
		if i == maxOrganic {
			break
		}
		line := r.Title
		if r.Snippet != "" {
			line += ": " + r.Snippet
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

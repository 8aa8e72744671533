package format

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/liliang-cn/askweb/internal/search"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestSearchResultsWeatherSection(t *testing.T) {
	r := &search.Results{
		Weather: &search.WeatherResult{
			Location:    "Paris, France",
			Temperature: "18",
			Unit:        "C",
			Humidity:    "60%",
			Wind:        "12 km/h",
		},
	}

	out := SearchResults(r, testTime)

	assert.Contains(t, out, "🌤️ **Weather**")
	assert.Contains(t, out, "Paris, France: 18°C")
	assert.Contains(t, out, "humidity 60%")
	assert.Contains(t, out, "Source: Google Search · retrieved 2025-06-01T12:00:00Z")
}

func TestSearchResultsSportsBounded(t *testing.T) {
	sports := &search.SportsResults{Title: "NBA results"}
	for i := 0; i < 6; i++ {
		sports.Games = append(sports.Games, search.Game{
			Teams:  []search.Team{{Name: "Home", Score: "100"}, {Name: "Away", Score: "98"}},
			Status: "Final",
		})
	}
	for i := 0; i < 8; i++ {
		sports.Rankings = append(sports.Rankings, search.StandingsRow{Position: i + 1, Team: "Team", Record: "10-2"})
	}

	out := SearchResults(&search.Results{SportsResults: sports}, testTime)

	assert.Contains(t, out, "🏀 **Sports**")
	assert.Equal(t, 3, strings.Count(out, "Home 100 vs Away 98"))
	assert.Equal(t, 5, strings.Count(out, "10-2"))
}

func TestSearchResultsNewsBounded(t *testing.T) {
	var news []search.NewsResult
	for i := 0; i < 10; i++ {
		news = append(news, search.NewsResult{Title: "Headline", Source: "Wire"})
	}

	out := SearchResults(&search.Results{NewsResults: news}, testTime)

	assert.Contains(t, out, "📰 **News**")
	assert.Equal(t, 3, strings.Count(out, "Headline — Wire"))
}

func TestSearchResultsEmpty(t *testing.T) {
	assert.Empty(t, SearchResults(&search.Results{}, testTime))
}

func TestSearchResultsAnswerBoxFirst(t *testing.T) {
	r := &search.Results{
		AnswerBox:      &search.AnswerBox{Title: "Population of France", Answer: "68 million"},
		OrganicResults: []search.OrganicResult{{Title: "France", Snippet: "a country"}},
	}

	out := SearchResults(r, testTime)

	answerAt := strings.Index(out, "📊 **Answer**")
	organicAt := strings.Index(out, "🔍 **Top Results**")
	assert.GreaterOrEqual(t, answerAt, 0)
	assert.Greater(t, organicAt, answerAt)
	assert.Contains(t, out, "68 million")
}

func TestCapSectionKeepsValidUTF8(t *testing.T) {
	// The leading "x" shifts every two-byte rune onto an odd offset, so the
	// byte cap lands mid-rune.
	s := "x" + strings.Repeat("é", 400)

	out := capSection(s)

	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "…"))
	assert.LessOrEqual(t, len(out), maxSectionChars+len("…"))
}

func TestScrapedContentCapped(t *testing.T) {
	var lines []string
	for i := 0; i < 60; i++ {
		lines = append(lines, strings.Repeat("x", 5)+string(rune('a'+i%26))+strings.Repeat("y", i/26))
	}
	out := ScrapedContent(strings.Join(lines, "\n"), "www.espn.com", testTime)

	assert.Contains(t, out, "🌐 **Web Results**")
	assert.Contains(t, out, "Source: www.espn.com")
	body := strings.Split(out, "\n\n")[0]
	// Marker line plus at most 30 content lines
	assert.LessOrEqual(t, len(strings.Split(body, "\n")), 31)
}

func TestScrapedContentEmpty(t *testing.T) {
	assert.Empty(t, ScrapedContent("", "example.com", testTime))
	assert.Empty(t, ScrapedContent("   \n  ", "example.com", testTime))
}

package search

import (
	"strings"

	"github.com/liliang-cn/askweb/internal/domain"
)

// categoryRule binds a result category to the substrings that select it.
// Rules are evaluated in order; the first hit wins.
type categoryRule struct {
	category domain.Category
	keywords []string
}

var categoryRules = []categoryRule{
	{domain.CategorySports, []string{
		"score", "scores", "game", "match", "standings", "playoffs",
		"nba", "nfl", "mlb", "nhl", "basketball", "football", "baseball",
		"soccer", "thunder", "okc", "lakers", "warriors", "yankees",
	}},
	{domain.CategoryWeather, []string{
		"weather", "forecast", "temperature", "rain", "snow", "humidity",
	}},
	{domain.CategoryFinance, []string{
		"stock", "stocks", "share price", "ticker", "nasdaq", "dow jones",
		"s&p", "market cap", "crypto", "bitcoin", "exchange rate",
	}},
	{domain.CategoryNews, []string{
		"news", "headline", "headlines", "breaking", "latest on",
	}},
	{domain.CategoryShopping, []string{
		"buy", "price of", "cheapest", "deal on", "in stock", "reviews",
	}},
}

// Phrasings that read like questions but want general knowledge, not live
// data. Checked before the interrogative heuristic.
var generalKnowledgePhrases = []string{
	"how to", "explain", "define", "what is the meaning",
	"what does", "why do", "why does", "why is",
	"history of", "difference between", "in simple terms",
}

var interrogativeOpeners = []string{
	"who", "what", "where", "when", "which", "how many", "how much",
}

var currencyTerms = []string{
	"current", "latest", "today", "tonight", "right now",
	"price", "score",
}

// Too short for substring matching ("now" would hit "know"), these must
// appear as whole words.
var currencyWords = []string{"now", "live"}

// Classify decides whether a query needs live web data and, if so, which
// result category it belongs to. This is a lossy substring heuristic, not a
// grammar; false positives and negatives are accepted.
func Classify(query string) (domain.Category, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return domain.CategoryGeneric, false
	}

	for _, phrase := range generalKnowledgePhrases {
		if strings.Contains(q, phrase) {
			return domain.CategoryGeneric, false
		}
	}

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.category, true
			}
		}
	}

	// Interrogative queries asking about "current"/"latest" things want
	// live data even without a category keyword.
	for _, opener := range interrogativeOpeners {
		if strings.HasPrefix(q, opener) {
			if hasCurrencyTerm(q) {
				return domain.CategoryGeneric, true
			}
			break
		}
	}

	return domain.CategoryGeneric, false
}

func hasCurrencyTerm(q string) bool {
	for _, term := range currencyTerms {
		if strings.Contains(q, term) {
			return true
		}
	}
	for _, word := range strings.Fields(q) {
		word = strings.Trim(word, "?!.,")
		for _, cw := range currencyWords {
			if word == cw {
				return true
			}
		}
	}
	return false
}

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/liliang-cn/askweb/internal/config"
)

// Results is the structured payload returned by the search API. Only the
// category blocks present for a given query are populated.
type Results struct {
	SportsResults   *SportsResults   `json:"sports_results,omitempty"`
	AnswerBox       *AnswerBox       `json:"answer_box,omitempty"`
	KnowledgeGraph  *KnowledgeGraph  `json:"knowledge_graph,omitempty"`
	Markets         []MarketResult   `json:"markets,omitempty"`
	Weather         *WeatherResult   `json:"weather,omitempty"`
	NewsResults     []NewsResult     `json:"news_results,omitempty"`
	ShoppingResults []ShoppingResult `json:"shopping_results,omitempty"`
	OrganicResults  []OrganicResult  `json:"organic_results,omitempty"`
}

// Empty reports whether no category block carried any data.
func (r *Results) Empty() bool {
	return r == nil || (r.SportsResults == nil && r.AnswerBox == nil &&
		r.KnowledgeGraph == nil && len(r.Markets) == 0 && r.Weather == nil &&
		len(r.NewsResults) == 0 && len(r.ShoppingResults) == 0 &&
		len(r.OrganicResults) == 0)
}

// SportsResults carries live game and standings data.
type SportsResults struct {
	Title    string         `json:"title"`
	Games    []Game         `json:"game_spotlight,omitempty"`
	Rankings []StandingsRow `json:"rankings,omitempty"`
	League   string         `json:"league,omitempty"`
}

// Game is one scheduled or completed game.
type Game struct {
	Teams      []Team `json:"teams"`
	Date       string `json:"date,omitempty"`
	Status     string `json:"status,omitempty"`
	Tournament string `json:"tournament,omitempty"`
}

// Team is one side of a game.
type Team struct {
	Name  string `json:"name"`
	Score string `json:"score,omitempty"`
}

// StandingsRow is one row of a league table.
type StandingsRow struct {
	Position int    `json:"position,omitempty"`
	Team     string `json:"team"`
	Record   string `json:"record,omitempty"`
}

// AnswerBox is the direct-answer panel.
type AnswerBox struct {
	Type    string `json:"type,omitempty"`
	Title   string `json:"title,omitempty"`
	Answer  string `json:"answer,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Link    string `json:"link,omitempty"`
}

// KnowledgeGraph is the knowledge panel.
type KnowledgeGraph struct {
	Title       string `json:"title,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
}

// MarketResult is one quoted instrument.
type MarketResult struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price,omitempty"`
	PriceMovement *struct {
		Percentage float64 `json:"percentage,omitempty"`
		Movement   string  `json:"movement,omitempty"`
	} `json:"price_movement,omitempty"`
}

// WeatherResult is the weather panel.
type WeatherResult struct {
	Location      string            `json:"location,omitempty"`
	Temperature   string            `json:"temperature,omitempty"`
	Unit          string            `json:"unit,omitempty"`
	Precipitation string            `json:"precipitation,omitempty"`
	Humidity      string            `json:"humidity,omitempty"`
	Wind          string            `json:"wind,omitempty"`
	Forecast      []WeatherForecast `json:"forecast,omitempty"`
}

// WeatherForecast is one day of the forecast strip.
type WeatherForecast struct {
	Day     string `json:"day"`
	High    string `json:"high,omitempty"`
	Low     string `json:"low,omitempty"`
	Weather string `json:"weather,omitempty"`
}

// NewsResult is one news listing.
type NewsResult struct {
	Title   string `json:"title"`
	Source  string `json:"source,omitempty"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Link    string `json:"link,omitempty"`
}

// ShoppingResult is one shopping listing.
type ShoppingResult struct {
	Title  string  `json:"title"`
	Price  string  `json:"price,omitempty"`
	Source string  `json:"source,omitempty"`
	Link   string  `json:"link,omitempty"`
	Rating float64 `json:"rating,omitempty"`
}

// OrganicResult is one organic listing.
type OrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Source  string `json:"source,omitempty"`
}

// APIClient calls the third-party search API. Failures of any kind are
// returned as errors; callers treat absence of data as non-fatal.
type APIClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewAPIClient creates a search API client.
func NewAPIClient(cfg config.SearchConfig, httpClient *http.Client) *APIClient {
	return &APIClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     httpClient,
	}
}

// Search runs a free-text query and decodes the structured results.
func (c *APIClient) Search(ctx context.Context, query string) (*Results, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("engine", "google")
	params.Set("num", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	var results Results
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return &results, nil
}

// Ping checks that the search API host answers HTTP at all. Any response,
// including an auth error, counts as reachable; quota is not spent on a
// real query.
func (c *APIClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("search API unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

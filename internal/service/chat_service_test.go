package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/liliang-cn/askweb/internal/config"
	"github.com/liliang-cn/askweb/internal/domain"
	"github.com/liliang-cn/askweb/internal/scrape"
	"github.com/liliang-cn/askweb/internal/search"
)

type fakeLLM struct {
	text    string
	err     error
	calls   int
	gotUser string
}

func (f *fakeLLM) Chat(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.gotUser = user
	return f.text, f.err
}

type fakeSearcher struct {
	results *search.Results
	err     error
	calls   int
}

func (f *fakeSearcher) Search(context.Context, string) (*search.Results, error) {
	f.calls++
	return f.results, f.err
}

type fakeScraper struct {
	result scrape.Result
	err    error
	calls  int
	gotURL string
}

func (f *fakeScraper) Fetch(_ context.Context, targetURL, _ string) (scrape.Result, error) {
	f.calls++
	f.gotURL = targetURL
	return f.result, f.err
}

func testConfig(provider string) *config.Config {
	return &config.Config{
		Search: config.SearchConfig{Provider: provider, Timeout: time.Second},
		Chat:   config.ChatConfig{ResponseTimeout: 5 * time.Second, MinResponseLength: 20},
	}
}

func newService(cfg *config.Config, llm LLMClient, searcher Searcher, scraper Scraper) *ChatService {
	return NewChatService(cfg, llm, searcher, scraper, nil, zap.NewNop())
}

func TestRespondMissingQuery(t *testing.T) {
	s := newService(testConfig("serpapi"), &fakeLLM{}, nil, nil)

	_, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "   "})
	assert.ErrorIs(t, err, domain.ErrNoQuery)
}

func TestRespondAgentNotReady(t *testing.T) {
	s := newService(testConfig("serpapi"), nil, nil, nil)

	_, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "hello"})
	assert.ErrorIs(t, err, domain.ErrAgentNotReady)
}

func TestRespondDirectAnswerSkipsSearch(t *testing.T) {
	llm := &fakeLLM{text: "2+2 equals 4, a basic arithmetic fact."}
	searcher := &fakeSearcher{}
	s := newService(testConfig("serpapi"), llm, searcher, nil)

	resp, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "What is 2+2?"})
	require.NoError(t, err)

	assert.Equal(t, 0, searcher.calls, "no live-data keyword, search must not run")
	assert.Equal(t, "2+2 equals 4, a basic arithmetic fact.", resp.Response)
	assert.False(t, resp.Metadata.WebSearchPerformed)
	assert.Empty(t, resp.Metadata.Sources)
	assert.Equal(t, "What is 2+2?", llm.gotUser)
}

func TestRespondWeatherSearchSuccess(t *testing.T) {
	llm := &fakeLLM{text: "It's a mild spring day in Paris with light winds expected."}
	searcher := &fakeSearcher{results: &search.Results{
		Weather: &search.WeatherResult{Location: "Paris", Temperature: "18", Unit: "C"},
	}}
	s := newService(testConfig("serpapi"), llm, searcher, nil)

	resp, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "current weather in Paris"})
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.calls)
	assert.True(t, resp.Metadata.WebSearchPerformed)
	assert.Equal(t, []string{"google-search"}, resp.Metadata.Sources)
	assert.Contains(t, resp.Response, "🌤️ **Weather**")
	assert.Contains(t, resp.Response, "Source: Google Search · retrieved")
	assert.Contains(t, resp.Response, "Searched multiple sources")
	assert.Contains(t, llm.gotUser, "LIVE WEB DATA:")
}

func TestRespondSearchFailureFallsBackToOfficialSources(t *testing.T) {
	llm := &fakeLLM{text: "ok"} // under minimum length
	searcher := &fakeSearcher{err: errors.New("quota exceeded")}
	s := newService(testConfig("serpapi"), llm, searcher, nil)

	resp, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "current weather in Paris"})
	require.NoError(t, err)

	assert.Equal(t, fallbackSearch, resp.Response)
	assert.Contains(t, resp.Response, "official sources")
	assert.True(t, resp.Metadata.WebSearchPerformed)
}

func TestRespondSearchFailureKeepsGoodLLMText(t *testing.T) {
	llm := &fakeLLM{text: "Paris is typically mild in June; check a forecast service for today's details."}
	searcher := &fakeSearcher{err: errors.New("timeout")}
	s := newService(testConfig("serpapi"), llm, searcher, nil)

	resp, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "current weather in Paris"})
	require.NoError(t, err)

	assert.Equal(t, llm.text, resp.Response)
	assert.NotContains(t, resp.Response, "Source:")
}

func TestRespondShortTextWithLiveDataFallsBack(t *testing.T) {
	llm := &fakeLLM{text: "ok"} // under minimum length
	searcher := &fakeSearcher{results: &search.Results{
		Weather: &search.WeatherResult{Location: "Paris", Temperature: "18", Unit: "C"},
	}}
	s := newService(testConfig("serpapi"), llm, searcher, nil)

	resp, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "current weather in Paris"})
	require.NoError(t, err)

	// Live data was gathered, so the canned text names the sources and the
	// live block still rides along with its provenance footer.
	assert.True(t, strings.HasPrefix(resp.Response, fallbackGathered))
	assert.Contains(t, resp.Response, "🌤️ **Weather**")
	assert.Contains(t, resp.Response, "Searched multiple sources")
	assert.True(t, resp.Metadata.WebSearchPerformed)
}

func TestRespondShortTextWithoutSearchFallsBackGeneric(t *testing.T) {
	llm := &fakeLLM{text: "ok"} // under minimum length
	s := newService(testConfig("serpapi"), llm, nil, nil)

	resp, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "tell me about Go modules"})
	require.NoError(t, err)

	assert.Equal(t, fallbackGeneric, resp.Response)
	assert.False(t, resp.Metadata.WebSearchPerformed)
}

func TestRespondGenerationError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	s := newService(testConfig("serpapi"), llm, nil, nil)

	resp, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "tell me a story about Go"})
	require.NoError(t, err)

	assert.Equal(t, fallbackError, resp.Response)
	assert.NotEmpty(t, resp.Response)
}

func TestRespondScrapeProviderUsesCategoryTarget(t *testing.T) {
	llm := &fakeLLM{text: "The Thunder won last night's game by seven points."}
	scraper := &fakeScraper{result: scrape.Result{
		HTML: "<html><body><div>Thunder 112 - Lakers 105</div><p>Final</p></body></html>",
	}}
	s := newService(testConfig("playwright"), llm, nil, scraper)

	resp, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "thunder score tonight"})
	require.NoError(t, err)

	assert.Equal(t, 1, scraper.calls)
	assert.Equal(t, "https://www.espn.com/nba/scoreboard", scraper.gotURL)
	assert.Contains(t, resp.Response, "🌐 **Web Results**")
	assert.Contains(t, resp.Response, "Thunder 112 - Lakers 105")
	assert.Contains(t, resp.Response, "Retrieved current information from web sources")
	assert.Equal(t, []string{"www.espn.com"}, resp.Metadata.Sources)
}

func TestRespondScrapeFailureIsNonFatal(t *testing.T) {
	llm := &fakeLLM{text: "I don't have live scores, but the Thunder played the Lakers yesterday."}
	scraper := &fakeScraper{err: errors.New("both paths failed")}
	s := newService(testConfig("playwright"), llm, nil, scraper)

	resp, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "thunder score tonight"})
	require.NoError(t, err)

	assert.Equal(t, llm.text, resp.Response)
	assert.True(t, resp.Metadata.WebSearchPerformed)
}

func TestFinalizeDedupsDuplicateLines(t *testing.T) {
	llm := &fakeLLM{text: "The answer is clear and well documented.\nThe answer is clear and well documented.\nSee the manual for more."}
	s := newService(testConfig("serpapi"), llm, nil, nil)

	resp, err := s.Respond(context.Background(), &domain.ChatRequest{Query: "tell me about Go modules"})
	require.NoError(t, err)

	assert.Equal(t, "The answer is clear and well documented.\nSee the manual for more.", resp.Response)
}

func TestDedupLinesCollapsesBlankRuns(t *testing.T) {
	in := "First paragraph here.\n\nRepeated paragraph.\n\nRepeated paragraph.\n\nLast paragraph."
	assert.Equal(t, "First paragraph here.\n\nRepeated paragraph.\n\nLast paragraph.", dedupLines(in))

	// Leading and trailing blanks drop entirely
	assert.Equal(t, "only line", dedupLines("\n\nonly line\n\n"))
}

func TestDedupSentences(t *testing.T) {
	in := "Paris is the capital of France. Paris is the capital of France. It is lovely"
	assert.Equal(t, "Paris is the capital of France. It is lovely.", dedupSentences(in))

	assert.Equal(t, "", dedupSentences("   "))
	assert.Equal(t, "Done!", dedupSentences("Done!"))
}

func TestDropErrorChunks(t *testing.T) {
	in := "Here is your answer.\n\nTraceback (most recent call last):\n  boom\n\nAnd a closing thought."
	out := dropErrorChunks(in)

	assert.Contains(t, out, "Here is your answer.")
	assert.Contains(t, out, "And a closing thought.")
	assert.NotContains(t, out, "Traceback")
}

func TestHistoryWithoutRepo(t *testing.T) {
	s := newService(testConfig("serpapi"), &fakeLLM{}, nil, nil)

	_, err := s.History("some-session")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

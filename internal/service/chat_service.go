package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/liliang-cn/askweb/internal/config"
	"github.com/liliang-cn/askweb/internal/domain"
	"github.com/liliang-cn/askweb/internal/extract"
	"github.com/liliang-cn/askweb/internal/format"
	"github.com/liliang-cn/askweb/internal/repository"
	"github.com/liliang-cn/askweb/internal/scrape"
	"github.com/liliang-cn/askweb/internal/search"
)

// LLMClient generates assistant text.
type LLMClient interface {
	Chat(ctx context.Context, systemPrompt, userQuery string) (string, error)
}

// Searcher returns structured results from the search API.
type Searcher interface {
	Search(ctx context.Context, query string) (*search.Results, error)
}

// Scraper fetches rendered page content.
type Scraper interface {
	Fetch(ctx context.Context, targetURL, action string) (scrape.Result, error)
}

const systemPrompt = "You are a helpful AI assistant. Answer the user's question accurately and concisely. " +
	"When a LIVE WEB DATA block is included with the question, treat it as current factual context, " +
	"use it in your answer, and do not contradict it. If the question needs up-to-date information " +
	"and no live data is available, say so and suggest checking official sources."

// Assistant chunks containing these terms are leaked tool noise, not
// answer text, and are dropped.
var errorTerms = []string{
	"The code encountered an error",
	"Traceback",
	"NameError:",
	"Exception:",
	"KeyError:",
	"TypeError:",
	"AttributeError:",
}

// Canned degraded replies. The user-facing text is always non-empty prose;
// these substitute for empty or too-short generations.
const (
	fallbackError    = "I attempted to process your request but encountered some technical issues. Please try asking your question in a different way."
	fallbackSearch   = "I couldn't retrieve live results for your question right now. Please check official sources directly for the most current information."
	fallbackGathered = "I attempted to search for the information but encountered some technical issues. Please try asking your question in a different way, or check the sources directly."
	fallbackGeneric  = "I couldn't generate a proper response. Please try rephrasing your question."
)

const (
	provenanceSearched = "\n\n*Searched multiple sources for current information*"
	provenanceScraped  = "\n\n*Retrieved current information from web sources*"
)

// Category-specific scrape targets for the playwright backend. Anything
// without an entry goes through a Google search page scrape.
var categoryTargets = map[domain.Category]string{
	domain.CategorySports: "https://www.espn.com/nba/scoreboard",
	domain.CategoryNews:   "https://news.google.com/",
}

// ChatService assembles one reply per request: classify, gather live data,
// generate, merge, deduplicate, fall back.
type ChatService struct {
	cfg      *config.Config
	llm      LLMClient
	searcher Searcher
	scraper  Scraper
	convRepo *repository.ConversationRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewChatService creates a new chat service. searcher and scraper may each
// be nil when the corresponding backend is not configured.
func NewChatService(
	cfg *config.Config,
	llm LLMClient,
	searcher Searcher,
	scraper Scraper,
	convRepo *repository.ConversationRepository,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:      cfg,
		llm:      llm,
		searcher: searcher,
		scraper:  scraper,
		convRepo: convRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// Respond runs the full pipeline for one query and always returns a
// non-empty reply. Only a missing query is a request error; upstream
// failures degrade into canned prose.
func (s *ChatService) Respond(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrNoQuery
	}
	if s.llm == nil {
		return nil, domain.ErrAgentNotReady
	}

	start := s.now()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Chat.ResponseTimeout)
	defer cancel()

	s.logger.Info("received query", zap.String("query", query))

	category, needsLive := search.Classify(query)

	var (
		liveBlock       string
		sources         []string
		searchAttempted bool
		liveGathered    bool
	)
	if needsLive {
		searchAttempted = true
		liveBlock, sources = s.gatherLiveData(ctx, query, category)
		liveGathered = liveBlock != ""
		s.logger.Info("live data dispatch",
			zap.String("category", string(category)),
			zap.String("provider", s.cfg.Search.Provider),
			zap.Bool("gathered", liveGathered),
		)
	}

	userContent := query
	if liveGathered {
		userContent = query + "\n\nLIVE WEB DATA:\n" + liveBlock
	}

	var errSeen bool
	text, err := s.llm.Chat(ctx, systemPrompt, userContent)
	if err != nil {
		errSeen = true
		s.logger.Error("generation failed", zap.Error(err))
	}

	final := s.finalize(text, liveBlock, errSeen, searchAttempted, liveGathered)

	elapsed := s.now().Sub(start)
	s.logger.Info("response assembled",
		zap.Duration("processing_time", elapsed),
		zap.Int("length", len(final)),
		zap.Bool("web_search_performed", searchAttempted),
	)

	resp := &domain.ChatResponse{
		Response: final,
		Metadata: domain.Metadata{
			ProcessingTime:     elapsed.Seconds(),
			WebSearchPerformed: searchAttempted,
			Sources:            sources,
			Timestamp:          s.now(),
		},
	}
	resp.SessionID = s.logConversation(req.SessionID, query, resp)

	return resp, nil
}

// gatherLiveData dispatches to the configured backend. It never fails the
// request; on any upstream problem it returns an empty block.
func (s *ChatService) gatherLiveData(ctx context.Context, query string, category domain.Category) (string, []string) {
	switch s.cfg.Search.Provider {
	case "serpapi":
		if s.searcher == nil {
			return "", nil
		}
		sctx, cancel := context.WithTimeout(ctx, s.cfg.Search.Timeout)
		defer cancel()
		results, err := s.searcher.Search(sctx, query)
		if err != nil {
			s.logger.Warn("search API failed", zap.Error(err))
			return "", nil
		}
		block := format.SearchResults(results, s.now())
		if block == "" {
			return "", nil
		}
		return block, []string{"google-search"}

	default: // playwright
		if s.scraper == nil {
			return "", nil
		}
		target, ok := categoryTargets[category]
		if !ok {
			target = "https://www.google.com/search?q=" + url.QueryEscape(query)
		}
		result, err := s.scraper.Fetch(ctx, target, scrape.ActionContent)
		if err != nil {
			s.logger.Warn("scrape failed", zap.String("url", target), zap.Error(err))
			return "", nil
		}
		content := extract.RelevantContent(result.HTML, strings.Fields(query))
		if content == "" {
			return "", nil
		}
		host := hostOf(target)
		block := format.ScrapedContent(content, host, s.now())
		return block, []string{host}
	}
}

// finalize filters, deduplicates and bounds the assistant text, merges the
// live data block, and substitutes a canned reply when what remains is too
// short. Precedence: generation error, then failed search, then gathered
// data with no usable text, then generic.
func (s *ChatService) finalize(text, liveBlock string, errSeen, searchAttempted, liveGathered bool) string {
	text = dropErrorChunks(text)
	text = dedupLines(text)
	// Sentence-level dedup would flatten list formatting, so it only runs
	// on single-paragraph prose.
	if !strings.Contains(text, "\n") {
		text = dedupSentences(text)
	}

	if len(text) < s.cfg.Chat.MinResponseLength {
		switch {
		case errSeen:
			text = fallbackError
		case searchAttempted && !liveGathered:
			text = fallbackSearch
		case liveGathered:
			text = fallbackGathered
		default:
			text = fallbackGeneric
		}
	}

	if liveGathered {
		text += "\n\n" + liveBlock
		if s.cfg.Search.Provider == "serpapi" {
			text += provenanceSearched
		} else {
			text += provenanceScraped
		}
	}

	return text
}

// logConversation records the exchange. The chat log is best-effort:
// failures are logged and the user still gets their reply.
func (s *ChatService) logConversation(sessionID, query string, resp *domain.ChatResponse) string {
	if s.convRepo == nil {
		return sessionID
	}

	if sessionID != "" {
		existing, err := s.convRepo.GetSession(sessionID)
		if err != nil || existing == nil {
			sessionID = ""
		}
	}
	if sessionID == "" {
		session := &domain.Session{}
		if err := s.convRepo.CreateSession(session); err != nil {
			s.logger.Warn("failed to create chat log session", zap.Error(err))
			return ""
		}
		sessionID = session.ID
	}

	userMsg := &domain.Message{SessionID: sessionID, Role: "user", Content: query}
	if err := s.convRepo.CreateMessage(userMsg); err != nil {
		s.logger.Warn("failed to log user message", zap.Error(err))
	}
	md := resp.Metadata
	assistantMsg := &domain.Message{
		SessionID: sessionID,
		Role:      "assistant",
		Content:   resp.Response,
		Metadata:  &md,
	}
	if err := s.convRepo.CreateMessage(assistantMsg); err != nil {
		s.logger.Warn("failed to log assistant message", zap.Error(err))
	}
	if err := s.convRepo.TouchSession(sessionID); err != nil {
		s.logger.Warn("failed to touch chat log session", zap.Error(err))
	}

	return sessionID
}

// History returns the logged messages for a session.
func (s *ChatService) History(sessionID string) ([]*domain.Message, error) {
	if s.convRepo == nil {
		return nil, domain.ErrNotFound
	}
	session, err := s.convRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return s.convRepo.GetMessages(sessionID)
}

// dropErrorChunks removes paragraphs of leaked tool noise.
func dropErrorChunks(text string) string {
	if text == "" {
		return ""
	}
	paragraphs := strings.Split(text, "\n\n")
	var kept []string
	for _, p := range paragraphs {
		noisy := false
		for _, term := range errorTerms {
			if strings.Contains(p, term) {
				noisy = true
				break
			}
		}
		if !noisy {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n\n"))
}

// dedupLines removes exact duplicate non-blank lines while preserving
// first-seen order. Paragraph breaks survive, but runs of blank lines
// left behind by removed duplicates collapse to a single break.
func dedupLines(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	seen := make(map[string]bool, len(lines))
	var out []string
	blankPending := false
	for _, line := range lines {
		key := strings.TrimSpace(line)
		if key == "" {
			blankPending = true
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		if blankPending && len(out) > 0 {
			out = append(out, "")
		}
		blankPending = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// dedupSentences removes exact duplicate sentences while preserving
// first-seen order, restoring the terminal period.
func dedupSentences(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	sentences := strings.Split(text, ". ")
	seen := make(map[string]bool, len(sentences))
	var unique []string
	for _, sentence := range sentences {
		sentence = strings.TrimSuffix(strings.TrimSpace(sentence), ".")
		if sentence == "" || seen[sentence] {
			continue
		}
		seen[sentence] = true
		unique = append(unique, sentence)
	}

	out := strings.Join(unique, ". ")
	if out != "" && !strings.HasSuffix(out, ".") && !strings.HasSuffix(out, "!") && !strings.HasSuffix(out, "?") {
		out += "."
	}
	return out
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/liliang-cn/askweb/internal/config"
	"github.com/liliang-cn/askweb/internal/domain"
)

const probeTimeout = 10 * time.Second

// LLMProber probes the LLM endpoint via its models listing.
type LLMProber interface {
	ListModels(ctx context.Context) ([]string, error)
}

// BackendProber probes the configured live-data backend.
type BackendProber interface {
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a plain function to BackendProber.
type ProbeFunc func(ctx context.Context) error

// Probe implements BackendProber.
func (f ProbeFunc) Probe(ctx context.Context) error { return f(ctx) }

// HealthService derives a reachability snapshot of the LLM endpoint and the
// live-data backend on every call.
type HealthService struct {
	cfg     *config.Config
	llm     LLMProber
	backend BackendProber
	logger  *zap.Logger
}

// NewHealthService creates a new health service. llm may be nil when the
// LLM client failed to initialize; backend may be nil when no live-data
// backend is configured.
func NewHealthService(cfg *config.Config, llm LLMProber, backend BackendProber, logger *zap.Logger) *HealthService {
	return &HealthService{cfg: cfg, llm: llm, backend: backend, logger: logger}
}

// Check probes both upstreams concurrently and returns the combined status.
// Healthy requires the LLM probe and the backend probe to both succeed.
func (s *HealthService) Check(ctx context.Context) *domain.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var (
		wg               sync.WaitGroup
		llmErr, probeErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if s.llm == nil {
			llmErr = domain.ErrAgentNotReady
			return
		}
		_, llmErr = s.llm.ListModels(ctx)
	}()
	go func() {
		defer wg.Done()
		if s.backend == nil {
			probeErr = fmt.Errorf("no live-data backend configured")
			return
		}
		probeErr = s.backend.Probe(ctx)
	}()
	wg.Wait()

	llmOK := llmErr == nil
	backendOK := probeErr == nil
	if !llmOK {
		s.logger.Warn("LLM health probe failed", zap.Error(llmErr))
	}
	if !backendOK {
		s.logger.Warn("backend health probe failed", zap.Error(probeErr))
	}

	backendName := "scraper"
	if s.cfg.Search.Provider == "serpapi" {
		backendName = "search"
	}

	status := "unhealthy"
	if llmOK && backendOK {
		status = "healthy"
	}

	return &domain.HealthStatus{
		Status: status,
		Services: map[string]string{
			"llm":       connState(llmOK),
			backendName: connState(backendOK),
		},
		Capabilities: map[string]bool{
			"llm_chat":     llmOK,
			"web_search":   backendOK,
			"web_scraping": s.cfg.Search.Provider != "serpapi" && backendOK,
		},
		Configuration: map[string]string{
			"model":      s.cfg.LLM.Model,
			"provider":   s.cfg.Search.Provider,
			"verify_ssl": fmt.Sprintf("%t", s.cfg.LLM.VerifySSL),
		},
		Timestamp: time.Now(),
	}
}

func connState(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}

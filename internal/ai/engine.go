package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamgilwell/hemat/internal/power"
)

// Options tunes an Engine.
type Options struct {
	MaxTokens        int64
	ArticleMaxTokens int64
	Timeout          time.Duration
	HistorySize      int
}

// Engine is the energy advisor and article writer.
type Engine struct {
	gen    Generator
	cache  *Cache
	opts   Options
	logger *zap.Logger

	mu         sync.RWMutex
	history    []*Analysis
	maxHistory int
}

// NewEngine wires a generator and cache into an Engine. A nil cache
// disables caching and a nil generator behaves like Offline.
func NewEngine(gen Generator, cache *Cache, opts Options, logger *zap.Logger) *Engine {
	if gen == nil {
		gen = Offline{}
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.ArticleMaxTokens <= 0 {
		opts.ArticleMaxTokens = 4096
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 100
	}
	if cache == nil {
		cache = NewCache(0, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		gen:        gen,
		cache:      cache,
		opts:       opts,
		logger:     logger,
		maxHistory: opts.HistorySize,
	}
}

// Analyze asks for energy saving and environmental tips for a calculation.
// Generator or parse failures yield the built-in tips with Fallback set;
// they are never returned as errors.
func (e *Engine) Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error) {
	monthlyCost := power.EstimateMonthlyCost(req.MonthlyTotalKWh, req.Rate)

	sig := Signature(req)
	if cached, ok := e.cache.Get(sig); ok {
		e.addToHistory(cached)
		return cached, nil
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	text, err := e.gen.Generate(ctx, advisorSystem, buildAnalysisPrompt(req, monthlyCost), e.opts.MaxTokens)
	if err != nil {
		e.logger.Warn("advisor unavailable, using built-in tips", zap.Error(err))
		return e.fallbackAnalysis(monthlyCost), nil
	}

	energy, environmental, err := parseAnalysis(text)
	if err != nil {
		e.logger.Warn("advisor response not usable, using built-in tips",
			zap.Error(err), zap.String("raw", truncate(text, 200)))
		return e.fallbackAnalysis(monthlyCost), nil
	}

	analysis := &Analysis{
		MonthlyCost:       monthlyCost,
		EnergySavingTips:  energy,
		EnvironmentalTips: environmental,
		Timestamp:         time.Now(),
	}

	e.cache.Put(sig, analysis)
	e.addToHistory(analysis)
	return analysis, nil
}

// DraftArticle generates an educational article for the given topic.
func (e *Engine) DraftArticle(ctx context.Context, req DraftRequest) (*Draft, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return nil, ErrTopicRequired
	}
	if req.Category == "" {
		req.Category = defaultCategory
	}
	if req.Style == "" {
		req.Style = defaultStyle
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	text, err := e.gen.Generate(ctx, writerSystem, buildDraftPrompt(req), e.opts.ArticleMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("generating article: %w", err)
	}

	draft := parseDraft(text, req)
	e.logger.Info("article drafted", zap.String("topic", req.Topic), zap.String("title", draft.Title))
	return draft, nil
}

// History returns recent analyses, oldest first.
func (e *Engine) History() []*Analysis {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result := make([]*Analysis, len(e.history))
	copy(result, e.history)
	return result
}

func (e *Engine) addToHistory(a *Analysis) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, a)
	if len(e.history) > e.maxHistory {
		e.history = e.history[len(e.history)-e.maxHistory:]
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.Timeout)
}

func (e *Engine) fallbackAnalysis(monthlyCost float64) *Analysis {
	return &Analysis{
		MonthlyCost:       monthlyCost,
		EnergySavingTips:  append([]string(nil), fallbackEnergyTips...),
		EnvironmentalTips: append([]string(nil), fallbackEnvironmentalTips...),
		Fallback:          true,
		Timestamp:         time.Now(),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

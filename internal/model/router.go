package model

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/harunnryd/listingai/internal/config"
	llmErrors "github.com/harunnryd/listingai/internal/errors"
	"github.com/harunnryd/listingai/internal/logger"
	"github.com/harunnryd/listingai/internal/model/contract"
)

// DefaultModelRouter resolves registry names to adapters. It is read-only
// after construction.
type DefaultModelRouter struct {
	defaultModel string
	adapters     map[string]Adapter
	infos        map[string]ModelInfo
}

// NewModelRouter builds every registry entry. Entries that fail to build are
// logged and skipped; it is an error only when none succeed.
func NewModelRouter(cfg config.ModelsConfig) (*DefaultModelRouter, error) {
	router := &DefaultModelRouter{
		defaultModel: cfg.Default,
		adapters:     make(map[string]Adapter),
		infos:        make(map[string]ModelInfo),
	}

	for _, entry := range cfg.Registry {
		if entry.RequestTimeout == "" {
			entry.RequestTimeout = cfg.RequestTimeout
		}
		adapter, err := NewAdapter(entry)
		if err != nil {
			slog.Warn("Failed to create adapter", "provider", entry.Provider, "model", entry.Name, "error", err)
			continue
		}

		router.adapters[entry.Name] = adapter
		router.infos[entry.Name] = ModelInfo{
			Name:     entry.Name,
			Provider: adapter.Type(),
			Model:    entry.Model,
			BaseURL:  entry.BaseURL,
			Strict:   entry.StrictJSON,
		}
		slog.Debug("Adapter initialized", "name", entry.Name, "type", adapter.Type())
	}

	if len(router.adapters) == 0 && len(cfg.Registry) > 0 {
		return nil, llmErrors.Internal("no adapters initialized")
	}

	return router, nil
}

// Adapter resolves a name; the empty name selects the configured default.
func (r *DefaultModelRouter) Adapter(model string) (Adapter, error) {
	if model == "" {
		model = r.defaultModel
	}
	adapter, ok := r.adapters[model]
	if !ok {
		return nil, llmErrors.NotFound(fmt.Sprintf("model %s not found", model))
	}
	return adapter, nil
}

func (r *DefaultModelRouter) CallText(ctx context.Context, model string, messages []contract.Message) (string, error) {
	adapter, err := r.Adapter(model)
	if err != nil {
		return "", err
	}

	ctx = logger.EnsureTraceID(ctx)
	traceID := logger.GetTraceID(ctx)
	start := time.Now()

	slog.Info("Routing text call", "model", adapter.Name(), "type", adapter.Type(), "messages", len(messages), "trace_id", traceID)

	text, err := adapter.CallText(ctx, messages)
	if err != nil {
		slog.Error("Text call failed", "model", adapter.Name(), "category", llmErrors.Category(err), "error", err, "trace_id", traceID)
		return "", err
	}

	slog.Info("Text call completed", "model", adapter.Name(), "chars", len(text), "duration", time.Since(start), "trace_id", traceID)
	return text, nil
}

func (r *DefaultModelRouter) CallStructured(ctx context.Context, model string, messages []contract.Message, schema contract.Schema) (any, error) {
	adapter, err := r.Adapter(model)
	if err != nil {
		return nil, err
	}

	ctx = logger.EnsureTraceID(ctx)
	traceID := logger.GetTraceID(ctx)
	start := time.Now()

	slog.Info("Routing structured call", "model", adapter.Name(), "type", adapter.Type(), "messages", len(messages), "trace_id", traceID)

	result, err := adapter.CallStructured(ctx, messages, schema)
	if err != nil {
		slog.Error("Structured call failed", "model", adapter.Name(), "category", llmErrors.Category(err), "error", err, "trace_id", traceID)
		return nil, err
	}

	if isEmptyMapping(result) {
		slog.Warn("Structured call returned an empty mapping", "model", adapter.Name(), "trace_id", traceID)
	}
	slog.Info("Structured call completed", "model", adapter.Name(), "duration", time.Since(start), "trace_id", traceID)
	return result, nil
}

// ListModels returns registered adapters sorted by name.
func (r *DefaultModelRouter) ListModels() []ModelInfo {
	out := make([]ModelInfo, 0, len(r.infos))
	for _, info := range r.infos {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func isEmptyMapping(v any) bool {
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}

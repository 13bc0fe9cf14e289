// Package batch fans a list of model calls out over a bounded number of
// goroutines and collects their outcomes in input order.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harunnryd/listingai/internal/concurrency"
	llmErrors "github.com/harunnryd/listingai/internal/errors"
	"github.com/harunnryd/listingai/internal/logger"
	"github.com/harunnryd/listingai/internal/model/contract"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	KindText       = "text"
	KindStructured = "structured"

	DefaultConcurrency = 4
)

// Caller is the subset of the model router a batch needs.
type Caller interface {
	CallText(ctx context.Context, model string, messages []contract.Message) (string, error)
	CallStructured(ctx context.Context, model string, messages []contract.Message, schema contract.Schema) (any, error)
}

type Job struct {
	ID       string             `json:"id" yaml:"id"`
	Model    string             `json:"model,omitempty" yaml:"model,omitempty"`
	Kind     string             `json:"kind" yaml:"kind"`
	Messages []contract.Message `json:"messages" yaml:"messages"`
	Schema   contract.Schema    `json:"schema,omitempty" yaml:"schema,omitempty"`
}

type Result struct {
	ID       string        `json:"id" yaml:"id"`
	Model    string        `json:"model,omitempty" yaml:"model,omitempty"`
	Text     string        `json:"text,omitempty" yaml:"text,omitempty"`
	Data     any           `json:"data,omitempty" yaml:"data,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`

	Err error `json:"-" yaml:"-"`
}

// ParseJobs decodes a YAML or JSON list of jobs. Jobs without a kind are text
// jobs; jobs without an id are numbered.
func ParseJobs(data []byte) ([]Job, error) {
	var jobs []Job
	if err := yaml.Unmarshal(data, &jobs); err != nil {
		return nil, llmErrors.InvalidInput(fmt.Sprintf("parse jobs: %v", err))
	}
	for i := range jobs {
		if jobs[i].ID == "" {
			jobs[i].ID = fmt.Sprintf("job-%d", i+1)
		}
		if jobs[i].Kind == "" {
			jobs[i].Kind = KindText
		}
		if jobs[i].Kind != KindText && jobs[i].Kind != KindStructured {
			return nil, llmErrors.InvalidInput(fmt.Sprintf("job %s: unknown kind %q", jobs[i].ID, jobs[i].Kind))
		}
	}
	return jobs, nil
}

// Run executes every job and returns one Result per job in input order.
// A failing job is recorded in its Result and never cancels the others.
func Run(ctx context.Context, caller Caller, jobs []Job, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(jobs))
	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	start := time.Now()
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = runOne(ctx, caller, job)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	slog.Info("Batch finished", "jobs", len(jobs), "failed", failed, "concurrency", concurrency, "duration", time.Since(start))

	return results
}

func runOne(ctx context.Context, caller Caller, job Job) Result {
	result := Result{ID: job.ID, Model: job.Model}
	start := time.Now()

	jobCtx := logger.WithTraceID(ctx, job.ID)
	err := concurrency.Guard(job.ID, func() error {
		if err := jobCtx.Err(); err != nil {
			return err
		}
		switch job.Kind {
		case KindStructured:
			data, err := caller.CallStructured(jobCtx, job.Model, job.Messages, job.Schema)
			result.Data = data
			return err
		default:
			text, err := caller.CallText(jobCtx, job.Model, job.Messages)
			result.Text = text
			return err
		}
	})

	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		slog.Warn("Batch job failed", "job", job.ID, "category", llmErrors.Category(err), "error", err)
	}
	return result
}

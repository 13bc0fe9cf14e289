package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	llmErrors "github.com/harunnryd/listingai/internal/errors"
	"github.com/harunnryd/listingai/internal/model/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCaller struct {
	inflight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration

	mu    sync.Mutex
	calls []string
}

func (f *fakeCaller) enter(model string) func() {
	n := f.inflight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, model)
	f.mu.Unlock()
	time.Sleep(f.delay)
	return func() { f.inflight.Add(-1) }
}

func (f *fakeCaller) CallText(_ context.Context, model string, messages []contract.Message) (string, error) {
	defer f.enter(model)()
	switch model {
	case "down":
		return "", &llmErrors.APIError{Provider: "openai", StatusCode: 503, Message: "overloaded"}
	case "panic":
		panic("adapter bug")
	}
	return model + ":" + messages[len(messages)-1].Content, nil
}

func (f *fakeCaller) CallStructured(_ context.Context, model string, _ []contract.Message, schema contract.Schema) (any, error) {
	defer f.enter(model)()
	return map[string]any{"model": model, "schema_type": schema["type"]}, nil
}

func TestRun_KeepsOrderAndIsolatesFailures(t *testing.T) {
	caller := &fakeCaller{delay: 5 * time.Millisecond}
	jobs := []Job{
		{ID: "a", Model: "claude", Kind: KindText, Messages: []contract.Message{contract.User("one")}},
		{ID: "b", Model: "down", Kind: KindText, Messages: []contract.Message{contract.User("two")}},
		{ID: "c", Model: "gpt", Kind: KindStructured, Messages: []contract.Message{contract.User("three")}, Schema: contract.Schema{"type": "object"}},
		{ID: "d", Model: "panic", Kind: KindText, Messages: []contract.Message{contract.User("four")}},
		{ID: "e", Model: "local", Kind: KindText, Messages: []contract.Message{contract.User("five")}},
	}

	results := Run(context.Background(), caller, jobs, 2)
	require.Len(t, results, len(jobs))

	for i, r := range results {
		assert.Equal(t, jobs[i].ID, r.ID)
	}

	assert.Equal(t, "claude:one", results[0].Text)
	assert.NoError(t, results[0].Err)

	var apiErr *llmErrors.APIError
	require.True(t, errors.As(results[1].Err, &apiErr))
	assert.Equal(t, "overloaded", apiErr.Message)
	assert.NotEmpty(t, results[1].Error)

	assert.Equal(t, map[string]any{"model": "gpt", "schema_type": "object"}, results[2].Data)

	assert.True(t, errors.Is(results[3].Err, llmErrors.ErrInternal))

	assert.Equal(t, "local:five", results[4].Text)
}

func TestRun_RespectsConcurrencyLimit(t *testing.T) {
	caller := &fakeCaller{delay: 10 * time.Millisecond}
	jobs := make([]Job, 12)
	for i := range jobs {
		jobs[i] = Job{ID: "j", Model: "m", Kind: KindText, Messages: []contract.Message{contract.User("x")}}
	}

	Run(context.Background(), caller, jobs, 3)

	assert.LessOrEqual(t, caller.peak.Load(), int32(3))
	assert.Len(t, caller.calls, 12)
}

func TestRun_CanceledContext(t *testing.T) {
	caller := &fakeCaller{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, caller, []Job{{ID: "a", Model: "m", Kind: KindText}}, 1)
	require.Len(t, results, 1)
	assert.True(t, errors.Is(results[0].Err, context.Canceled))
	assert.Empty(t, caller.calls)
}

func TestRun_Empty(t *testing.T) {
	assert.Empty(t, Run(context.Background(), &fakeCaller{}, nil, 0))
}

func TestParseJobs(t *testing.T) {
	jobs, err := ParseJobs([]byte(`
- model: claude
  messages:
    - role: user
      content: Describe a loft.
- id: title
  kind: structured
  messages:
    - role: user
      content: Title please.
  schema:
    type: object
`))
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, KindText, jobs[0].Kind)
	assert.Equal(t, []contract.Message{contract.User("Describe a loft.")}, jobs[0].Messages)

	assert.Equal(t, "title", jobs[1].ID)
	assert.Equal(t, KindStructured, jobs[1].Kind)
	assert.Equal(t, contract.Schema{"type": "object"}, jobs[1].Schema)
}

func TestParseJobs_UnknownKind(t *testing.T) {
	_, err := ParseJobs([]byte(`[{id: x, kind: image}]`))
	assert.True(t, errors.Is(err, llmErrors.ErrInvalidInput))
}

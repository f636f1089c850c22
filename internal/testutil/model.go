package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/erraggy/oasmend/llm"
)

// CountingModel is an llm.Model double that records every prompt.
//
// Call i returns Errors[i] when it is non-nil, otherwise Responses[i]. When
// i is past the end of Responses the last response is repeated; with no
// responses at all an empty PlainText is returned. Delay blocks each call
// until it elapses or the context is done.
type CountingModel struct {
	Responses []llm.Response
	Errors    []error
	Delay     time.Duration

	mu      sync.Mutex
	prompts []string
}

var _ llm.Model = (*CountingModel)(nil)

// NewCountingModel returns a CountingModel that answers every call with text.
func NewCountingModel(text string) *CountingModel {
	return &CountingModel{Responses: []llm.Response{llm.PlainText(text)}}
}

// Invoke implements llm.Model.
func (m *CountingModel) Invoke(ctx context.Context, prompt string) (llm.Response, error) {
	m.mu.Lock()
	call := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if call < len(m.Errors) && m.Errors[call] != nil {
		return nil, m.Errors[call]
	}
	switch {
	case len(m.Responses) == 0:
		return llm.PlainText(""), nil
	case call < len(m.Responses):
		return m.Responses[call], nil
	default:
		return m.Responses[len(m.Responses)-1], nil
	}
}

// Calls returns the number of Invoke calls so far.
func (m *CountingModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of the prompts received so far.
func (m *CountingModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

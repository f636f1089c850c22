// Package llm defines the model capability used by the correction pipeline
// and an OpenAI-compatible chat-completions client that implements it.
//
// A model answers a prompt with a [Response]. Response is a closed sum type:
// it is either [PlainText] or [WrappedText], and [Text] unwraps either one.
// Callers never need to probe the value for a content field.
package llm

import "context"

// Response is the answer a model gives to a prompt.
//
// The set of implementations is closed: only PlainText and WrappedText
// satisfy it.
type Response interface {
	isResponse()
}

// PlainText is a bare text answer.
type PlainText string

func (PlainText) isResponse() {}

// WrappedText is an answer delivered inside a chat message envelope.
type WrappedText struct {
	// Content is the message text
	Content string
	// Role is the message author, usually "assistant"
	Role string
	// Model identifies the model that produced the message, if known
	Model string
}

func (WrappedText) isResponse() {}

// Text returns the text carried by r. A nil Response yields "".
func Text(r Response) string {
	switch v := r.(type) {
	case PlainText:
		return string(v)
	case WrappedText:
		return v.Content
	case *WrappedText:
		if v == nil {
			return ""
		}
		return v.Content
	default:
		return ""
	}
}

// Model is a single-shot text completion capability.
//
// Invoke must honor ctx cancellation. Transport failures should be reported
// as *oaserrors.TransportError so that callers can decide whether to retry.
type Model interface {
	Invoke(ctx context.Context, prompt string) (Response, error)
}

// ModelFunc adapts an ordinary function to the Model interface.
type ModelFunc func(ctx context.Context, prompt string) (Response, error)

// Invoke calls f(ctx, prompt).
func (f ModelFunc) Invoke(ctx context.Context, prompt string) (Response, error) {
	return f(ctx, prompt)
}

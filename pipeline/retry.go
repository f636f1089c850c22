package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erraggy/oasmend/llm"
	"github.com/erraggy/oasmend/oaserrors"
)

// invoke calls the model, retrying retryable failures with backoff.
func (p *Pipeline) invoke(ctx context.Context, prompt string) (llm.Response, error) {
	backoff := p.backoff
	var lastErr error

	attempt := 0
	for attempt < p.attempts {
		attempt++
		start := time.Now()
		resp, err := p.invokeOnce(ctx, prompt)
		if err == nil {
			p.logger.Debug("model invocation succeeded", "attempt", attempt, "elapsed", time.Since(start))
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, &oaserrors.TransportError{
				Attempts: attempt,
				Message:  "model invocation canceled",
				Cause:    ctx.Err(),
			}
		}
		if !retryable(err) || attempt == p.attempts {
			break
		}

		p.logger.Warn("model invocation failed; retrying",
			"attempt", attempt, "max_attempts", p.attempts, "backoff", backoff, "error", err)
		if err := sleep(ctx, backoff); err != nil {
			return nil, &oaserrors.TransportError{
				Attempts: attempt,
				Message:  "model invocation canceled",
				Cause:    err,
			}
		}
		backoff = min(backoff*2, p.maxBackoff)
	}

	failure := transportFailure(lastErr, attempt)
	p.logger.Error("model invocation failed", "attempts", attempt, "error", lastErr)
	return nil, failure
}

// invokeOnce runs one attempt bounded by the per-attempt timeout. A model
// that ignores its context is abandoned when the timeout fires.
func (p *Pipeline) invokeOnce(ctx context.Context, prompt string) (llm.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type outcome struct {
		resp llm.Response
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("model panicked: %v", r)}
			}
		}()
		resp, err := p.model.Invoke(attemptCtx, prompt)
		done <- outcome{resp: resp, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, timeoutError(p.timeout, o.err)
		}
		return o.resp, o.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, timeoutError(p.timeout, attemptCtx.Err())
	}
}

func timeoutError(d time.Duration, cause error) error {
	return &oaserrors.TransportError{
		Retryable: true,
		Message:   fmt.Sprintf("model invocation timed out after %s", d),
		Cause:     cause,
	}
}

// retryable reports whether another attempt could succeed after err.
func retryable(err error) bool {
	var te *oaserrors.TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// transportFailure describes the last error of an exhausted invocation.
func transportFailure(err error, attempts int) *oaserrors.TransportError {
	var te *oaserrors.TransportError
	if errors.As(err, &te) {
		out := *te
		out.Attempts = attempts
		return &out
	}
	return &oaserrors.TransportError{
		Attempts: attempts,
		Message:  "model invocation failed",
		Cause:    err,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

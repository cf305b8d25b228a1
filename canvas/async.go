package canvas

import (
	"context"
	"net/http"
	"net/url"
)

// Outcome is delivered on the channel returned by the async calls.
type Outcome struct {
	Result *Result
	Err    error
}

// Async runs r on the session's worker pool and delivers its outcome on the
// returned channel, which receives exactly one value. Calls issued
// concurrently complete in no particular order.
func (s *Session) Async(ctx context.Context, r *Request) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		if err := s.workers.Acquire(ctx, 1); err != nil {
			out <- Outcome{Err: err}
			return
		}
		defer s.workers.Release(1)
		res, err := s.Execute(ctx, r)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

func (s *Session) AsyncGet(ctx context.Context, path string, params url.Values, opts ...RequestOption) <-chan Outcome {
	return s.Async(ctx, NewRequest(http.MethodGet, path, params, opts...))
}

func (s *Session) AsyncPost(ctx context.Context, path string, data url.Values, opts ...RequestOption) <-chan Outcome {
	return s.Async(ctx, NewRequest(http.MethodPost, path, data, opts...))
}

func (s *Session) AsyncPut(ctx context.Context, path string, data url.Values, opts ...RequestOption) <-chan Outcome {
	return s.Async(ctx, NewRequest(http.MethodPut, path, data, opts...))
}

func (s *Session) AsyncDelete(ctx context.Context, path string, params url.Values, opts ...RequestOption) <-chan Outcome {
	return s.Async(ctx, NewRequest(http.MethodDelete, path, params, opts...))
}

// Failed returns a channel already holding err, for async callers that fail
// before dispatching a request.
func Failed(err error) <-chan Outcome {
	out := make(chan Outcome, 1)
	out <- Outcome{Err: err}
	close(out)
	return out
}

package canvas_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tylerclair/canopy/canvas"
)

func TestAsync(t *testing.T) {
	var inFlight, peak atomic.Int32
	_, s := newServerWith(t, func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	}, canvas.WithWorkers(2))

	ctx := context.Background()
	chans := []<-chan canvas.Outcome{
		s.AsyncGet(ctx, "/a", nil),
		s.AsyncPost(ctx, "/b", nil),
		s.AsyncPut(ctx, "/c", nil),
		s.AsyncDelete(ctx, "/d", nil),
	}
	var paths []string
	for _, ch := range chans {
		out := <-ch
		require.NoError(t, out.Err)
		paths = append(paths, out.Result.Value.(map[string]any)["path"].(string))
	}
	assert.Equal(t, []string{"/a", "/b", "/c", "/d"}, paths)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestAsyncReportsErrors(t *testing.T) {
	_, s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Invalid access token."}]}`))
	})
	out := <-s.AsyncGet(context.Background(), "/api/v1/courses", nil)
	var apiErr *canvas.APIError
	require.ErrorAs(t, out.Err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestFailed(t *testing.T) {
	ch := canvas.Failed(context.Canceled)
	out, ok := <-ch
	require.True(t, ok)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Nil(t, out.Result)
	_, ok = <-ch
	assert.False(t, ok)
}

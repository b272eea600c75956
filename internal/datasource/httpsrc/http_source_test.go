package httpsrc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"healthetl/internal/etlerr"
)

func fastOptions() Options {
	return Options{Retries: 2, Backoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		statuses  []int
		wantBody  string
		wantCalls int32
		wantErr   error
		anyErr    bool
	}{
		{name: "ok", statuses: []int{200}, wantBody: "Name,Age\n", wantCalls: 1},
		{name: "retries 503", statuses: []int{503, 429, 200}, wantBody: "Name,Age\n", wantCalls: 3},
		{name: "gives up", statuses: []int{500, 500, 500}, wantCalls: 3, anyErr: true},
		{name: "not found", statuses: []int{404}, wantCalls: 1, wantErr: etlerr.ErrNotFound},
		{name: "forbidden is final", statuses: []int{403, 200}, wantCalls: 1, anyErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				i := int(calls.Add(1)) - 1
				code := tt.statuses[min(i, len(tt.statuses)-1)]
				w.WriteHeader(code)
				if code == 200 {
					io.WriteString(w, "Name,Age\n")
				}
			}))
			defer srv.Close()

			rc, err := New(srv.URL+"/healthcare.csv", fastOptions()).Open(context.Background())
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.anyErr:
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			case err != nil:
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			if string(b) != tt.wantBody {
				t.Fatalf("body = %q", b)
			}
		})
	}
}

func TestOpen_CanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL, Options{Retries: 5, Backoff: time.Second}).Open(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{10, time.Second},
	}
	for _, tt := range tests {
		if got := backoff(100*time.Millisecond, tt.n, time.Second); got != tt.want {
			t.Errorf("backoff(n=%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

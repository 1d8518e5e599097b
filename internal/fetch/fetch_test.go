package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// recorder collects retry events and the delays the client asked to sleep.
type recorder struct {
	events []RetryEvent
	sleeps []time.Duration
}

func (r *recorder) AttemptFailed(ev RetryEvent) { r.events = append(r.events, ev) }

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.sleeps = append(r.sleeps, d)
	return nil
}

func newTestClient(rec *recorder) *Client {
	c := &Client{UserAgent: "goscrape-test", Observer: rec}
	c.sleep = rec.sleep
	return c
}

// failingServer answers 503 for the first n requests and 200 afterwards.
func failingServer(t *testing.T, n int32, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(calls, 1) <= n {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "goscrape-test" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("X-Trace") != "abc" {
			t.Errorf("missing request header, got %q", r.Header.Get("X-Trace"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	rec := &recorder{}
	resp, err := newTestClient(rec).Get(context.Background(), Request{URL: srv.URL, Headers: map[string]string{"X-Trace": "abc"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 || resp.ContentType != "text/html; charset=utf-8" {
		t.Fatalf("unexpected response: %d %q", resp.StatusCode, resp.ContentType)
	}
	if string(resp.Body) != "<html><body>ok</body></html>" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
	if len(rec.events) != 0 {
		t.Fatalf("expected no retry events, got %d", len(rec.events))
	}
}

func TestGet_RetriesThenSucceeds(t *testing.T) {
	for _, failures := range []int32{0, 1, 2} {
		var calls int32
		srv := failingServer(t, failures, &calls)
		rec := &recorder{}
		resp, err := newTestClient(rec).Get(context.Background(), Request{URL: srv.URL})
		if err != nil {
			t.Fatalf("failures=%d: expected success, got %v", failures, err)
		}
		if string(resp.Body) != "ok" {
			t.Fatalf("failures=%d: unexpected body %q", failures, resp.Body)
		}
		if calls != failures+1 {
			t.Fatalf("failures=%d: expected %d attempts, got %d", failures, failures+1, calls)
		}
		if len(rec.events) != int(failures) {
			t.Fatalf("failures=%d: expected %d retry events, got %d", failures, failures, len(rec.events))
		}
		for i, d := range rec.sleeps {
			if d != DefaultRetryDelay {
				t.Fatalf("sleep %d = %v, want %v", i, d, DefaultRetryDelay)
			}
		}
	}
}

func TestGet_ExhaustsAfterThreeAttempts(t *testing.T) {
	for _, failures := range []int32{3, 5} {
		var calls int32
		srv := failingServer(t, failures, &calls)
		rec := &recorder{}
		_, err := newTestClient(rec).Get(context.Background(), Request{URL: srv.URL})
		if !errors.Is(err, ErrMaxRetries) {
			t.Fatalf("failures=%d: expected ErrMaxRetries, got %v", failures, err)
		}
		if calls != 3 {
			t.Fatalf("failures=%d: expected exactly 3 attempts, got %d", failures, calls)
		}
		if len(rec.events) != 3 || !rec.events[2].Final || rec.events[1].Final {
			t.Fatalf("failures=%d: unexpected events %+v", failures, rec.events)
		}
		if len(rec.sleeps) != 2 {
			t.Fatalf("failures=%d: expected 2 sleeps, got %d", failures, len(rec.sleeps))
		}
		var ae *AttemptError
		if !errors.As(err, &ae) || ae.Kind != KindHTTPStatus || ae.StatusCode != 503 {
			t.Fatalf("expected wrapped status error, got %v", err)
		}
	}
}

func TestGet_StatusReasons(t *testing.T) {
	cases := map[int]string{404: "page not found", 500: "server error", 418: "http error"}
	for code, want := range cases {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(code)
		}))
		rec := &recorder{}
		_, err := newTestClient(rec).Get(context.Background(), Request{URL: srv.URL})
		srv.Close()
		var ae *AttemptError
		if !errors.As(err, &ae) {
			t.Fatalf("status %d: expected AttemptError, got %v", code, err)
		}
		if ae.Reason() != want {
			t.Fatalf("status %d: reason %q, want %q", code, ae.Reason(), want)
		}
		// Status-specific reasons do not suppress retrying
		if calls != DefaultMaxAttempts {
			t.Fatalf("status %d: expected %d attempts, got %d", code, DefaultMaxAttempts, calls)
		}
	}
}

func TestGet_ConnectionFailureClassified(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	rec := &recorder{}
	c := newTestClient(rec)
	c.MaxAttempts = 2
	_, err := c.Get(context.Background(), Request{URL: addr})
	if !errors.Is(err, ErrMaxRetries) {
		t.Fatalf("expected ErrMaxRetries, got %v", err)
	}
	var ae *AttemptError
	if !errors.As(err, &ae) || ae.Kind != KindConnection {
		t.Fatalf("expected connection failure, got %v", err)
	}
	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rec.events))
	}
}

func TestGet_TimeoutClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	rec := &recorder{}
	c := newTestClient(rec)
	c.MaxAttempts = 1
	c.PerRequestTimeout = 50 * time.Millisecond
	_, err := c.Get(context.Background(), Request{URL: srv.URL})
	var ae *AttemptError
	if !errors.As(err, &ae) || ae.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestGet_ProxyApplied(t *testing.T) {
	var seenHost string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenHost = r.Host
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("via proxy"))
	}))
	defer proxy.Close()

	rec := &recorder{}
	resp, err := newTestClient(rec).Get(context.Background(), Request{URL: "http://origin.invalid/page", Proxy: proxy.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenHost != "origin.invalid" {
		t.Fatalf("proxy saw host %q", seenHost)
	}
	if string(resp.Body) != "via proxy" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
}

func TestGet_InvalidProxyIsTerminal(t *testing.T) {
	rec := &recorder{}
	_, err := newTestClient(rec).Get(context.Background(), Request{URL: "http://example.com", Proxy: "::not a url"})
	if err == nil {
		t.Fatalf("expected error for invalid proxy")
	}
	if len(rec.events) != 0 {
		t.Fatalf("expected no attempts, got %d events", len(rec.events))
	}
}

func TestGet_RejectsNonHTTP(t *testing.T) {
	rec := &recorder{}
	_, err := newTestClient(rec).Get(context.Background(), Request{URL: "file:///etc/hosts"})
	if err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
	if errors.Is(err, ErrMaxRetries) || len(rec.events) != 0 {
		t.Fatalf("scheme rejection must not retry: %v", err)
	}
}

func TestGet_RedirectLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/next", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	rec := &recorder{}
	c := newTestClient(rec)
	c.MaxAttempts = 1
	c.RedirectMaxHops = 1
	if _, err := c.Get(context.Background(), Request{URL: srv.URL}); err == nil {
		t.Fatalf("expected redirect limit error")
	}
}

func TestGet_CancelStopsRetrySleep(t *testing.T) {
	var calls int32
	srv := failingServer(t, 10, &calls)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := &Client{
		RetryDelay: time.Hour,
		Observer:   ObserverFunc(func(RetryEvent) { cancel() }),
	}
	_, err := c.Get(ctx, Request{URL: srv.URL})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
}

func TestRetryState_Ceiling(t *testing.T) {
	s := newRetryState(0, 0)
	if s.ceiling != DefaultMaxAttempts || s.delay != DefaultRetryDelay {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	for i := 1; i <= 3; i++ {
		attempt, retry := s.fail()
		if attempt != i {
			t.Fatalf("attempt = %d, want %d", attempt, i)
		}
		if retry != (i < 3) {
			t.Fatalf("attempt %d: retry = %t", i, retry)
		}
	}
}

func TestGet_InvalidHeaderNotRetried(t *testing.T) {
	var calls int32
	srv := failingServer(t, 0, &calls)
	rec := &recorder{}
	c := newTestClient(rec)

	_, err := c.Get(context.Background(), Request{URL: srv.URL, Headers: map[string]string{"X-Bad": "a\nb"}})
	var ae *AttemptError
	if !errors.As(err, &ae) || ae.Kind != KindInvalidRequest {
		t.Fatalf("expected invalid request error, got %v", err)
	}
	if errors.Is(err, ErrMaxRetries) {
		t.Fatalf("non-retryable failure must not report exhaustion: %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("request should never reach the server, got %d calls", calls)
	}
	if len(rec.events) != 1 || !rec.events[0].Final || len(rec.sleeps) != 0 {
		t.Fatalf("expected one final event and no sleeps, got events=%d sleeps=%d", len(rec.events), len(rec.sleeps))
	}
}

func TestAttemptError_IsRetryable(t *testing.T) {
	for _, k := range []Kind{KindTimeout, KindConnection, KindRequest, KindHTTPStatus} {
		if !(&AttemptError{Kind: k}).IsRetryable() {
			t.Fatalf("%s should be retryable", k)
		}
	}
	if (&AttemptError{Kind: KindInvalidRequest}).IsRetryable() {
		t.Fatalf("invalid request should not be retryable")
	}
}

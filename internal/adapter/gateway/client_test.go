package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/polkiloo/homecare/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestIssueVirtualAccount(t *testing.T) {
	var received issueRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/gw/api/virtual-accounts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number":"8808-1234","provider":"bca"}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL+"/gw", testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	va, err := client.IssueVirtualAccount(context.Background(), "s1", 15000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if va.Number != "8808-1234" || va.Provider != "bca" {
		t.Fatalf("unexpected virtual account %+v", va)
	}
	if received.Reference != "s1" || received.Amount != 15000 {
		t.Fatalf("unexpected request body %+v", received)
	}
}

func TestIssueVirtualAccountFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		header  http.Header
		checkFn func(t *testing.T, err error)
	}{
		{
			name:   "too many requests",
			status: http.StatusTooManyRequests,
			header: http.Header{"Retry-After": []string{"5"}},
			checkFn: func(t *testing.T, err error) {
				var tm TooManyRequestsError
				if !errors.As(err, &tm) || tm.RetryAfter != 5*time.Second {
					t.Fatalf("expected TooManyRequestsError with 5s, got %v", err)
				}
			},
		},
		{
			name:   "empty number",
			status: http.StatusOK,
			body:   `{"number":""}`,
			checkFn: func(t *testing.T, err error) {
				if err == nil {
					t.Fatal("expected error for empty number")
				}
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   "upstream",
			checkFn: func(t *testing.T, err error) {
				if err == nil {
					t.Fatal("expected error")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for key, values := range tt.header {
					for _, v := range values {
						w.Header().Add(key, v)
					}
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := NewHTTPClient(srv.URL, testLogger())
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}
			_, err = client.IssueVirtualAccount(context.Background(), "s1", 1)
			tt.checkFn(t, err)
		})
	}
}

func TestStaticClient(t *testing.T) {
	va, err := StaticClient{}.IssueVirtualAccount(context.Background(), "s1", 1)
	if err != nil || va.Number != model.StaticVirtualAccount {
		t.Fatalf("unexpected static account %+v err=%v", va, err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	httpTime := time.Now().Add(2 * time.Second).UTC().Format(http.TimeFormat)

	cases := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "empty", header: "", want: 5 * time.Second},
		{name: "seconds", header: "7", want: 7 * time.Second},
		{name: "fallback", header: "bad", want: 5 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseRetryAfter(tc.header); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if got := parseRetryAfter(httpTime); got <= 0 || got > 3*time.Second {
		t.Fatalf("unexpected retry duration %v", got)
	}
}

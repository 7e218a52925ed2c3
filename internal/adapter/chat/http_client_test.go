package chat

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGroup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Basic Zm9vOmJhcg==" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("include_custom_profile_fields") != "true" {
			http.Error(w, "missing fields flag", http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/api/v1/users/a@miem.hse.ru":
			_, _ = w.Write([]byte(`{"user":{"profile_data":{"1":{"value":"БИВ-201"}}}}`))
		case "/api/v1/users/nofield@miem.hse.ru":
			_, _ = w.Write([]byte(`{"user":{"profile_data":{"2":{"value":"x"}}}}`))
		case "/api/v1/users/number@miem.hse.ru":
			_, _ = w.Write([]byte(`{"user":{"profile_data":{"1":{"value":17}}}}`))
		case "/api/v1/users/garbage@miem.hse.ru":
			_, _ = w.Write([]byte(`not json`))
		case "/api/v1/users/nouser@miem.hse.ru":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "Zm9vOmJhcg==", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		email  string
		want   string
		wantOK bool
	}{
		{"a@miem.hse.ru", "БИВ-201", true},
		{"nofield@miem.hse.ru", "", false},
		{"number@miem.hse.ru", "", false},
		{"garbage@miem.hse.ru", "", false},
		{"nouser@miem.hse.ru", "", false},
		{"missing@miem.hse.ru", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got, ok := c.Group(context.Background(), tt.email)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("Group(%q) = %q, %v; want %q, %v", tt.email, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGroup_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if g, ok := c.Group(context.Background(), "a@miem.hse.ru"); ok || g != "" {
		t.Fatalf("expected absent group, got %q", g)
	}
}

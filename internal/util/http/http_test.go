package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if !strings.HasPrefix(r.UserAgent(), UserAgentName+"/") {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Write([]byte("wallpaper"))
		case "/big":
			w.Write([]byte(strings.Repeat("x", 32)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		path    string
		opts    FetchOptions
		want    string
		wantErr func(error) bool
	}{
		{name: "ok", path: "/ok", want: "wallpaper"},
		{
			name: "not found",
			path: "/missing",
			wantErr: func(err error) bool {
				var se *StatusError
				return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
			},
		},
		{
			name:    "too large",
			path:    "/big",
			opts:    FetchOptions{MaxBytes: 16},
			wantErr: func(err error) bool { return errors.Is(err, ErrTooLarge) },
		},
		{name: "exact limit", path: "/big", opts: FetchOptions{MaxBytes: 32}, want: strings.Repeat("x", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fetch(context.Background(), srv.URL+tt.path, tt.opts)
			if tt.wantErr != nil {
				if err == nil || !tt.wantErr(err) {
					t.Fatalf("Fetch() error = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Fetch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Fetch(ctx, srv.URL, FetchOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

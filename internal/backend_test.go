package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPBackend_Chat(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != ChatEndpoint {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success":true,"response":"A vector has magnitude and direction."}`))
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL+"/", time.Second)
	resp, err := b.Chat(context.Background(), ChatRequest{
		Message: "What is a vector?",
		Module:  "vectors",
		Context: ChatContext{Module: "vectors", PageTitle: "Vector Spaces", Params: map[string]string{"dim": "2"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !resp.Success || resp.Response != "A vector has magnitude and direction." {
		t.Errorf("Chat() = %+v", resp)
	}

	if got["message"] != "What is a vector?" || got["module"] != "vectors" {
		t.Errorf("request body = %v", got)
	}
	if history, ok := got["history"].([]interface{}); !ok || len(history) != 0 {
		t.Errorf("history = %v, want empty array", got["history"])
	}
	ctx, _ := got["context"].(map[string]interface{})
	if ctx["page_title"] != "Vector Spaces" || ctx["dim"] != "2" {
		t.Errorf("context = %v", ctx)
	}
}

func TestHTTPBackend_Suggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SuggestRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if r.URL.Path != SuggestEndpoint || req.Module != "pca" || req.RecentMessages == nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"suggestions":["Why center the data?"]}`))
	}))
	defer srv.Close()

	resp, err := NewHTTPBackend(srv.URL, time.Second).Suggest(context.Background(), SuggestRequest{Module: "pca"})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0] != "Why center the data?" {
		t.Errorf("Suggest() = %v", resp.Suggestions)
	}
}

func TestHTTPBackend_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non json body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("<html>bad gateway</html>"))
			},
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewHTTPBackend(srv.URL, 50*time.Millisecond).Chat(context.Background(), ChatRequest{Message: "hi"})
			var be *BackendError
			if !errors.As(err, &be) {
				t.Fatalf("Chat() error = %v, want *BackendError", err)
			}
			if be.Endpoint != ChatEndpoint {
				t.Errorf("BackendError.Endpoint = %q, want %q", be.Endpoint, ChatEndpoint)
			}
		})
	}
}

func TestHTTPBackend_Ping(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer up.Close()
	if err := NewHTTPBackend(up.URL, time.Second).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()
	if err := NewHTTPBackend(failing.URL, time.Second).Ping(context.Background()); err == nil {
		t.Error("Ping() error = nil for 503, want error")
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := down.URL
	down.Close()
	if err := NewHTTPBackend(url, time.Second).Ping(context.Background()); err == nil {
		t.Error("Ping() error = nil for closed server, want error")
	}
}

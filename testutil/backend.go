package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/iksnae/tutor-assistant/internal"
)

// FakeBackend is an httptest server speaking the chat and suggestion endpoints
type FakeBackend struct {
	Server *httptest.Server

	mu          sync.Mutex
	reply       string
	reject      bool
	suggestions []string
	chats       []internal.ChatRequest
	suggests    []internal.SuggestRequest
}

// NewFakeBackend starts a FakeBackend that answers every chat with reply
func NewFakeBackend(t *testing.T, reply string, suggestions ...string) *FakeBackend {
	t.Helper()
	f := &FakeBackend{reply: reply, suggestions: suggestions}

	mux := http.NewServeMux()
	mux.HandleFunc(internal.ChatEndpoint, f.handleChat)
	mux.HandleFunc(internal.SuggestEndpoint, f.handleSuggest)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server base URL
func (f *FakeBackend) URL() string {
	return f.Server.URL
}

// SetReject makes chat requests answer success=false
func (f *FakeBackend) SetReject(reject bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reject = reject
}

// ChatRequests returns the chat requests received so far
func (f *FakeBackend) ChatRequests() []internal.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]internal.ChatRequest(nil), f.chats...)
}

// SuggestRequests returns the suggestion requests received so far
func (f *FakeBackend) SuggestRequests() []internal.SuggestRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]internal.SuggestRequest(nil), f.suggests...)
}

func (f *FakeBackend) handleChat(w http.ResponseWriter, r *http.Request) {
	var req internal.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.chats = append(f.chats, req)
	resp := internal.ChatResponse{Success: !f.reject}
	if !f.reject {
		resp.Response = f.reply
	}
	f.mu.Unlock()

	writeJSON(w, resp)
}

func (f *FakeBackend) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req internal.SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.suggests = append(f.suggests, req)
	resp := internal.SuggestResponse{Suggestions: f.suggestions}
	f.mu.Unlock()

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Backend endpoint paths
const (
	ChatEndpoint    = "/api/chat"
	SuggestEndpoint = "/api/chat/suggest"
)

// ChatRequest is the body posted to the chat endpoint
type ChatRequest struct {
	Message string             `json:"message"`
	Module  string             `json:"module"`
	Context ChatContext        `json:"context"`
	History []ConversationTurn `json:"history"`
}

// ChatResponse is the chat endpoint reply
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
}

// SuggestRequest is the body posted to the suggestion endpoint
type SuggestRequest struct {
	Module          string             `json:"module"`
	RecentMessages  []ConversationTurn `json:"recent_messages"`
	LastUserMessage string             `json:"last_user_message"`
	HasConversation bool               `json:"has_conversation"`
}

// SuggestResponse is the suggestion endpoint reply
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Backend is the remote inference service
type Backend interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error)
}

// HTTPBackend talks JSON over HTTP POST to the backend
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBackend creates a backend client for baseURL
func NewHTTPBackend(baseURL string, timeout time.Duration) *HTTPBackend {
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Chat posts a chat message
func (b *HTTPBackend) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.History == nil {
		req.History = []ConversationTurn{}
	}
	var resp ChatResponse
	if err := b.post(ctx, ChatEndpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Suggest requests follow-up prompts
func (b *HTTPBackend) Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error) {
	if req.RecentMessages == nil {
		req.RecentMessages = []ConversationTurn{}
	}
	var resp SuggestResponse
	if err := b.post(ctx, SuggestEndpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks that the backend base URL answers at all
func (b *HTTPBackend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/", nil)
	if err != nil {
		return &BackendError{Endpoint: "/", Err: err}
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return &BackendError{Endpoint: "/", Err: err}
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &BackendError{Endpoint: "/", Status: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}
	return nil
}

func (b *HTTPBackend) post(ctx context.Context, endpoint string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &BackendError{Endpoint: endpoint, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return &BackendError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	LogDebug("POST %s (%d bytes)", endpoint, len(data))
	resp, err := b.client.Do(req)
	if err != nil {
		return &BackendError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &BackendError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &BackendError{Endpoint: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

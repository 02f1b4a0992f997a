package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/wire"
)

// HTTPClient implements NotehubClient using the notehub HTTP API.
// Request and response bodies are protobuf; errors come back as JSON.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Note CRUD ---

func (c *HTTPClient) CreateNote(ctx context.Context, title, body string) (*model.Note, error) {
	req := wire.EncodeCreateNoteRequest(&wire.CreateNoteRequest{Title: title, Body: body})
	respBody, err := c.doProto(ctx, http.MethodPost, "/v1/notes", req)
	if err != nil {
		return nil, err
	}
	return wire.DecodeNoteResponse(respBody)
}

func (c *HTTPClient) GetNote(ctx context.Context, id int64) (*model.Note, error) {
	respBody, err := c.doProto(ctx, http.MethodGet, notePath(id), nil)
	if err != nil {
		return nil, err
	}
	return wire.DecodeNoteResponse(respBody)
}

func (c *HTTPClient) ListNotes(ctx context.Context) ([]*model.Note, error) {
	respBody, err := c.doProto(ctx, http.MethodGet, "/v1/notes", nil)
	if err != nil {
		return nil, err
	}
	return wire.DecodeListNotesResponse(respBody)
}

func (c *HTTPClient) UpdateNote(ctx context.Context, id int64, title, body *string) (*model.Note, error) {
	req := wire.EncodeUpdateNoteRequest(&wire.UpdateNoteRequest{Title: title, Body: body})
	respBody, err := c.doProto(ctx, http.MethodPatch, notePath(id), req)
	if err != nil {
		return nil, err
	}
	return wire.DecodeNoteResponse(respBody)
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id int64) error {
	_, err := c.doProto(ctx, http.MethodDelete, notePath(id), nil)
	return err
}

func (c *HTTPClient) GetNoteEvents(ctx context.Context, id int64) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, notePath(id)+"/events", &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Chats ---

func (c *HTTPClient) CreateChat(ctx context.Context, title string) (*model.Chat, error) {
	req := wire.EncodeCreateChatRequest(&wire.CreateChatRequest{Title: title})
	respBody, err := c.doProto(ctx, http.MethodPost, "/v1/chats", req)
	if err != nil {
		return nil, err
	}
	return wire.DecodeChatResponse(respBody)
}

func (c *HTTPClient) ListChats(ctx context.Context) ([]*model.Chat, error) {
	respBody, err := c.doProto(ctx, http.MethodGet, "/v1/chats", nil)
	if err != nil {
		return nil, err
	}
	return wire.DecodeListChatsResponse(respBody)
}

func (c *HTTPClient) GetChat(ctx context.Context, id int64) (*model.Chat, []*model.ChatMessage, error) {
	respBody, err := c.doProto(ctx, http.MethodGet, chatPath(id), nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := wire.DecodeGetChatResponse(respBody)
	if err != nil {
		return nil, nil, err
	}
	return resp.Chat, resp.Messages, nil
}

func (c *HTTPClient) InteractChat(ctx context.Context, id int64, prompt string, integrations []model.Integration) (*InteractResult, error) {
	values := make([]int64, 0, len(integrations))
	for _, integration := range integrations {
		values = append(values, wire.IntegrationToWire(integration))
	}
	req := wire.EncodeInteractChatRequest(&wire.InteractChatRequest{
		Prompt:       prompt,
		Integrations: values,
	})
	respBody, err := c.doProto(ctx, http.MethodPost, chatPath(id)+"/interact", req)
	if err != nil {
		return nil, err
	}
	resp, err := wire.DecodeInteractChatResponse(respBody)
	if err != nil {
		return nil, err
	}
	return &InteractResult{
		Chat:          resp.Chat,
		PromptMessage: resp.PromptMessage,
		Responses:     resp.Responses,
	}, nil
}

// --- Service surface ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *HTTPClient) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// --- internal helpers ---

func notePath(id int64) string {
	return "/v1/notes/" + strconv.FormatInt(id, 10)
}

func chatPath(id int64) string {
	return "/v1/chats/" + strconv.FormatInt(id, 10)
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doProto performs a request with an optional protobuf body and returns
// the raw response body on success. Error responses carry JSON.
func (c *HTTPClient) doProto(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", wire.ContentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// doJSON performs a request and decodes the JSON response into result.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, respBody)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func apiError(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: string(body)}
}

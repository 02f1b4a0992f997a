package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alderlake/notehub/internal/model"
	"github.com/alderlake/notehub/internal/store"
	"github.com/alderlake/notehub/internal/wire"
)

// handleCreateChat handles POST /v1/chats.
func (s *NoteServer) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	req, err := wire.DecodeCreateChatRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid protobuf body")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeError(w, http.StatusBadRequest, "title cannot be empty")
		return
	}

	now := time.Now().UnixMilli()
	chat := &model.Chat{Title: title, CreatedAt: now, UpdatedAt: now}
	if err := s.store.CreateChat(r.Context(), chat); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeProto(w, http.StatusCreated, wire.EncodeChatResponse(chat))
}

// handleListChats handles GET /v1/chats.
func (s *NoteServer) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.store.ListChats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeProto(w, http.StatusOK, wire.EncodeListChatsResponse(chats))
}

// handleGetChat handles GET /v1/chats/{id}, returning the chat and its
// full message history.
func (s *NoteServer) handleGetChat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	chat, err := s.store.GetChat(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	messages, err := s.store.GetChatMessages(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeProto(w, http.StatusOK, wire.EncodeGetChatResponse(&wire.GetChatResponse{
		Chat:     chat,
		Messages: messages,
	}))
}

// handleInteractChat handles POST /v1/chats/{id}/interact. The prompt
// message, the synthesized responses, and the chat timestamp bump are
// committed in a single transaction.
func (s *NoteServer) handleInteractChat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	req, err := wire.DecodeInteractChatRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid protobuf body")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt cannot be empty")
		return
	}

	integrations, err := parseIntegrations(req.Integrations)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := &wire.InteractChatResponse{}
	err = s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		chat, err := tx.GetChat(r.Context(), id)
		if err != nil {
			return err
		}
		now := time.Now().UnixMilli()

		promptMsg := &model.ChatMessage{
			ChatID:    id,
			Role:      model.RoleUser,
			Content:   prompt,
			CreatedAt: now,
		}
		if err := tx.AddChatMessage(r.Context(), promptMsg); err != nil {
			return err
		}

		responses := make([]*model.ChatMessage, 0, len(integrations))
		for _, integration := range integrations {
			msg := &model.ChatMessage{
				ChatID:      id,
				Role:        model.RoleAssistant,
				Integration: integration,
				Content:     synthesizeResponse(integration, prompt),
				CreatedAt:   now,
			}
			if err := tx.AddChatMessage(r.Context(), msg); err != nil {
				return err
			}
			responses = append(responses, msg)
		}

		if err := tx.TouchChat(r.Context(), id, now); err != nil {
			return err
		}
		chat.UpdatedAt = now

		resp.Chat = chat
		resp.PromptMessage = promptMsg
		resp.Responses = responses
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeProto(w, http.StatusOK, wire.EncodeInteractChatResponse(resp))
}

// parseIntegrations validates and converts wire integration values.
// A prompt must name between 1 and MaxIntegrationsPerPrompt distinct,
// known integrations.
func parseIntegrations(values []int64) ([]model.Integration, error) {
	if len(values) == 0 {
		return nil, inputError("at least one integration is required")
	}
	if len(values) > model.MaxIntegrationsPerPrompt {
		return nil, inputError(fmt.Sprintf("at most %d integrations per prompt", model.MaxIntegrationsPerPrompt))
	}

	seen := make(map[model.Integration]struct{}, len(values))
	integrations := make([]model.Integration, 0, len(values))
	for _, v := range values {
		integration := wire.IntegrationFromWire(v)
		if !integration.IsValid() {
			return nil, inputError("unknown integration")
		}
		if _, dup := seen[integration]; dup {
			return nil, inputError("duplicate integration: " + integration.String())
		}
		seen[integration] = struct{}{}
		integrations = append(integrations, integration)
	}
	return integrations, nil
}

// synthesizeResponse produces the preview response for an integration.
// No upstream model is contacted; the content is deterministic.
func synthesizeResponse(integration model.Integration, prompt string) string {
	switch integration {
	case model.IntegrationOpenAI:
		return fmt.Sprintf("OpenAI preview response: processed prompt `%s`", prompt)
	case model.IntegrationAnthropic:
		return fmt.Sprintf("Anthropic preview response: processed prompt `%s`", prompt)
	case model.IntegrationGemini:
		return fmt.Sprintf("Gemini preview response: processed prompt `%s`", prompt)
	case model.IntegrationOllama:
		return fmt.Sprintf("Ollama preview response: processed prompt `%s`", prompt)
	}
	return ""
}

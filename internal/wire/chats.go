package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/alderlake/notehub/internal/model"
)

// Integration enum values (notes.v1.LlmIntegration).
const (
	integrationUnspecified = 0
	integrationOpenAI      = 1
	integrationAnthropic   = 2
	integrationGemini      = 3
	integrationOllama      = 4
)

// IntegrationToWire maps a model integration to its enum value.
func IntegrationToWire(i model.Integration) int64 {
	switch i {
	case model.IntegrationOpenAI:
		return integrationOpenAI
	case model.IntegrationAnthropic:
		return integrationAnthropic
	case model.IntegrationGemini:
		return integrationGemini
	case model.IntegrationOllama:
		return integrationOllama
	}
	return integrationUnspecified
}

// IntegrationFromWire maps an enum value back to a model integration.
// Unknown values map to the empty integration.
func IntegrationFromWire(v int64) model.Integration {
	switch v {
	case integrationOpenAI:
		return model.IntegrationOpenAI
	case integrationAnthropic:
		return model.IntegrationAnthropic
	case integrationGemini:
		return model.IntegrationGemini
	case integrationOllama:
		return model.IntegrationOllama
	}
	return ""
}

// Role enum values (notes.v1.ChatMessageRole).
const (
	roleUnspecified = 0
	roleUser        = 1
	roleAssistant   = 2
)

func roleToWire(r model.MessageRole) int64 {
	switch r {
	case model.RoleUser:
		return roleUser
	case model.RoleAssistant:
		return roleAssistant
	}
	return roleUnspecified
}

func roleFromWire(v int64) model.MessageRole {
	switch v {
	case roleUser:
		return model.RoleUser
	case roleAssistant:
		return model.RoleAssistant
	}
	return ""
}

// EncodeChat serializes a chat (notes.v1.Chat: 1 id, 2 title,
// 3 created_at_unix_ms, 4 updated_at_unix_ms).
func EncodeChat(c *model.Chat) []byte {
	var buf []byte
	buf = appendInt64(buf, 1, c.ID)
	buf = appendString(buf, 2, c.Title)
	buf = appendInt64(buf, 3, c.CreatedAt)
	buf = appendInt64(buf, 4, c.UpdatedAt)
	return buf
}

// DecodeChat parses a chat, skipping unknown fields.
func DecodeChat(b []byte) (*model.Chat, error) {
	var c model.Chat
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &c, nil
		}
		switch num {
		case 1:
			c.ID, err = d.int64()
		case 2:
			c.Title, err = d.string()
		case 3:
			c.CreatedAt, err = d.int64()
		case 4:
			c.UpdatedAt, err = d.int64()
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
}

// EncodeChatMessage serializes a chat message (notes.v1.ChatMessage:
// 1 id, 2 chat_id, 3 role, 4 integration, 5 content, 6 created_at_unix_ms).
func EncodeChatMessage(m *model.ChatMessage) []byte {
	var buf []byte
	buf = appendInt64(buf, 1, m.ID)
	buf = appendInt64(buf, 2, m.ChatID)
	buf = appendInt64(buf, 3, roleToWire(m.Role))
	buf = appendInt64(buf, 4, IntegrationToWire(m.Integration))
	buf = appendString(buf, 5, m.Content)
	buf = appendInt64(buf, 6, m.CreatedAt)
	return buf
}

// DecodeChatMessage parses a chat message.
func DecodeChatMessage(b []byte) (*model.ChatMessage, error) {
	var m model.ChatMessage
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &m, nil
		}
		switch num {
		case 1:
			m.ID, err = d.int64()
		case 2:
			m.ChatID, err = d.int64()
		case 3:
			var v int64
			if v, err = d.int64(); err == nil {
				m.Role = roleFromWire(v)
			}
		case 4:
			var v int64
			if v, err = d.int64(); err == nil {
				m.Integration = IntegrationFromWire(v)
			}
		case 5:
			m.Content, err = d.string()
		case 6:
			m.CreatedAt, err = d.int64()
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
}

// CreateChatRequest (notes.v1.CreateChatRequest): 1 title.
type CreateChatRequest struct {
	Title string
}

func EncodeCreateChatRequest(req *CreateChatRequest) []byte {
	return appendString(nil, 1, req.Title)
}

func DecodeCreateChatRequest(b []byte) (*CreateChatRequest, error) {
	var req CreateChatRequest
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &req, nil
		}
		switch num {
		case 1:
			req.Title, err = d.string()
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
}

// InteractChatRequest (notes.v1.InteractChatRequest): 1 prompt,
// 2 repeated integrations (accepted both packed and unpacked).
type InteractChatRequest struct {
	Prompt       string
	Integrations []int64
}

func EncodeInteractChatRequest(req *InteractChatRequest) []byte {
	var buf []byte
	buf = appendString(buf, 1, req.Prompt)
	for _, v := range req.Integrations {
		buf = appendInt64(buf, 2, v)
	}
	return buf
}

func DecodeInteractChatRequest(b []byte) (*InteractChatRequest, error) {
	var req InteractChatRequest
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &req, nil
		}
		switch num {
		case 1:
			req.Prompt, err = d.string()
		case 2:
			if typ == protowire.BytesType { // packed encoding
				var packed []byte
				if packed, err = d.bytes(); err == nil {
					p := decoder{buf: packed}
					for len(p.buf) > 0 {
						var v int64
						if v, err = p.int64(); err != nil {
							break
						}
						req.Integrations = append(req.Integrations, v)
					}
				}
			} else {
				var v int64
				if v, err = d.int64(); err == nil {
					req.Integrations = append(req.Integrations, v)
				}
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return nil, err
		}
	}
}

// EncodeChatResponse wraps a chat as {1 chat} (CreateChatResponse).
func EncodeChatResponse(c *model.Chat) []byte {
	return appendMessage(nil, 1, EncodeChat(c))
}

// DecodeChatResponse unwraps a {1 chat} response.
func DecodeChatResponse(b []byte) (*model.Chat, error) {
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("wire: response has no chat")
		}
		switch num {
		case 1:
			sub, err := d.bytes()
			if err != nil {
				return nil, err
			}
			return DecodeChat(sub)
		default:
			if err := d.skip(num, typ); err != nil {
				return nil, err
			}
		}
	}
}

// EncodeListChatsResponse serializes {1 repeated chats}.
func EncodeListChatsResponse(chats []*model.Chat) []byte {
	var buf []byte
	for _, c := range chats {
		buf = appendMessage(buf, 1, EncodeChat(c))
	}
	return buf
}

// DecodeListChatsResponse parses {1 repeated chats}.
func DecodeListChatsResponse(b []byte) ([]*model.Chat, error) {
	chats := make([]*model.Chat, 0)
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return chats, nil
		}
		switch num {
		case 1:
			sub, err := d.bytes()
			if err != nil {
				return nil, err
			}
			c, err := DecodeChat(sub)
			if err != nil {
				return nil, err
			}
			chats = append(chats, c)
		default:
			if err := d.skip(num, typ); err != nil {
				return nil, err
			}
		}
	}
}

// InteractChatResponse (notes.v1.InteractChatResponse): 1 chat,
// 2 prompt_message, 3 repeated responses.
type InteractChatResponse struct {
	Chat          *model.Chat
	PromptMessage *model.ChatMessage
	Responses     []*model.ChatMessage
}

func EncodeInteractChatResponse(resp *InteractChatResponse) []byte {
	var buf []byte
	if resp.Chat != nil {
		buf = appendMessage(buf, 1, EncodeChat(resp.Chat))
	}
	if resp.PromptMessage != nil {
		buf = appendMessage(buf, 2, EncodeChatMessage(resp.PromptMessage))
	}
	for _, m := range resp.Responses {
		buf = appendMessage(buf, 3, EncodeChatMessage(m))
	}
	return buf
}

func DecodeInteractChatResponse(b []byte) (*InteractChatResponse, error) {
	var resp InteractChatResponse
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &resp, nil
		}
		switch num {
		case 1:
			sub, err := d.bytes()
			if err != nil {
				return nil, err
			}
			if resp.Chat, err = DecodeChat(sub); err != nil {
				return nil, err
			}
		case 2:
			sub, err := d.bytes()
			if err != nil {
				return nil, err
			}
			if resp.PromptMessage, err = DecodeChatMessage(sub); err != nil {
				return nil, err
			}
		case 3:
			sub, err := d.bytes()
			if err != nil {
				return nil, err
			}
			m, err := DecodeChatMessage(sub)
			if err != nil {
				return nil, err
			}
			resp.Responses = append(resp.Responses, m)
		default:
			if err := d.skip(num, typ); err != nil {
				return nil, err
			}
		}
	}
}

// GetChatResponse (notes.v1.GetChatResponse): 1 chat, 2 repeated messages.
type GetChatResponse struct {
	Chat     *model.Chat
	Messages []*model.ChatMessage
}

func EncodeGetChatResponse(resp *GetChatResponse) []byte {
	var buf []byte
	if resp.Chat != nil {
		buf = appendMessage(buf, 1, EncodeChat(resp.Chat))
	}
	for _, m := range resp.Messages {
		buf = appendMessage(buf, 2, EncodeChatMessage(m))
	}
	return buf
}

func DecodeGetChatResponse(b []byte) (*GetChatResponse, error) {
	var resp GetChatResponse
	d := decoder{buf: b}
	for {
		num, typ, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &resp, nil
		}
		switch num {
		case 1:
			sub, err := d.bytes()
			if err != nil {
				return nil, err
			}
			if resp.Chat, err = DecodeChat(sub); err != nil {
				return nil, err
			}
		case 2:
			sub, err := d.bytes()
			if err != nil {
				return nil, err
			}
			m, err := DecodeChatMessage(sub)
			if err != nil {
				return nil, err
			}
			resp.Messages = append(resp.Messages, m)
		default:
			if err := d.skip(num, typ); err != nil {
				return nil, err
			}
		}
	}
}

package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/duochat/internal/handlers/dto"
)

// APIError — ошибка сервера с HTTP статусом.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client — HTTP клиент серверного API для цикла доставки.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchMessages забирает полный упорядоченный список сообщений диалога
func (c *Client) FetchMessages(ctx context.Context, conversationID uuid.UUID) ([]dto.MessageResponse, error) {
	endpoint := fmt.Sprintf("%s/messages?conversationId=%s", c.baseURL, url.QueryEscape(conversationID.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var body struct {
		Messages []dto.MessageResponse `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	return body.Messages, nil
}

// SendMessage отправляет сообщение с клиентским ключом идемпотентности
func (c *Client) SendMessage(ctx context.Context, conversationID uuid.UUID, content string, clientKey uuid.UUID) (*dto.MessageResponse, error) {
	payload := dto.SendMessageRequest{
		ConversationID: conversationID.String(),
		Content:        content,
		ClientKey:      clientKey.String(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeAPIError(resp)
	}

	var body struct {
		Message dto.MessageResponse `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	return &body.Message, nil
}

func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}

// Package whatsapp posts hostel announcements to a WhatsApp group through
// the Cloud API messages endpoint.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/hostel/internal/config"
)

// ErrNotConfigured is returned by NewGroupPoster without credentials.
var ErrNotConfigured = errors.New("whatsapp client is not configured")

// Poster delivers a text to a chat and returns the message id.
type Poster interface {
	Post(ctx context.Context, chatID, text string) (string, error)
}

// APIError is a non-2xx reply from the Cloud API.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp: status %d code %d: %s", e.Status, e.Code, e.Message)
}

type textBody struct {
	Body string `json:"body"`
}

type outgoing struct {
	Product string   `json:"messaging_product"`
	To      string   `json:"to"`
	Type    string   `json:"type"`
	Text    textBody `json:"text"`
}

type accepted struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type rejected struct {
	Error APIError `json:"error"`
}

// GroupPoster is the resty-backed Poster.
type GroupPoster struct {
	http     *resty.Client
	endpoint string
}

var _ Poster = (*GroupPoster)(nil)

// NewGroupPoster builds a poster sending from cfg.PhoneNumberID.
func NewGroupPoster(cfg config.WhatsAppConfig) (*GroupPoster, error) {
	if cfg.AccessToken == "" || cfg.PhoneNumberID == "" {
		return nil, ErrNotConfigured
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/") + "/" + cfg.APIVersion).
		SetAuthToken(cfg.AccessToken).
		SetTimeout(15 * time.Second).
		SetRetryCount(2)

	return &GroupPoster{http: rc, endpoint: cfg.PhoneNumberID + "/messages"}, nil
}

// Post sends text to chatID.
func (p *GroupPoster) Post(ctx context.Context, chatID, text string) (string, error) {
	if chatID == "" {
		return "", errors.New("whatsapp: chat id must not be empty")
	}

	var ok accepted
	var failed rejected
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(outgoing{Product: "whatsapp", To: chatID, Type: "text", Text: textBody{Body: text}}).
		SetResult(&ok).
		SetError(&failed).
		Post(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("whatsapp: post: %w", err)
	}
	if resp.IsError() {
		failed.Error.Status = resp.StatusCode()
		return "", &failed.Error
	}

	if len(ok.Messages) == 0 {
		return "", nil
	}
	return ok.Messages[0].ID, nil
}

package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const whisperEndpoint = "https://api.streamelements.com/kappa/v2/bot/whispers/%s"

// StreamElements delivers private whispers through the StreamElements bot
// API. With no credentials configured it degrades to logging the whisper,
// which keeps local development working.
type StreamElements struct {
	httpClient *http.Client
	jwtToken   string
	channelID  string
	logger     *slog.Logger
}

// Ensure StreamElements implements Whisperer
var _ Whisperer = (*StreamElements)(nil)

// NewStreamElements creates a whisper client. Empty token or channel ID
// enables log-only mode.
func NewStreamElements(jwtToken, channelID string, logger *slog.Logger) *StreamElements {
	return &StreamElements{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		jwtToken:   jwtToken,
		channelID:  channelID,
		logger:     logger,
	}
}

// Whisper sends a private message to the given user
func (s *StreamElements) Whisper(ctx context.Context, handle, message string) error {
	if s.jwtToken == "" || s.channelID == "" {
		s.logger.Info("whisper (log-only)",
			slog.String("handle", handle),
			slog.String("message", message),
		)
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"username": handle,
		"message":  message,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf(whisperEndpoint, s.channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.jwtToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("whisper request failed: %s", resp.Status)
	}

	s.logger.Info("whisper sent", slog.String("handle", handle))
	return nil
}

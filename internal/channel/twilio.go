package channel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bloodbridge.app/engage/common/phone"
	"bloodbridge.app/engage/core/config"
)

type twilioSender struct {
	cfg  config.ChannelConfig
	http *http.Client
}

// NewTwilioSender builds a Sender over the Twilio messages REST API.
// When the channel is not configured (no credentials), sends are logged and
// dropped so webhook processing never fails on a missing sandbox setup.
func NewTwilioSender(cfg config.ChannelConfig) Sender {
	return &twilioSender{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *twilioSender) Send(ctx context.Context, to, text string) error {
	if !s.cfg.Enabled() {
		slog.WarnContext(ctx, "channel not configured, dropping outbound message",
			"to", to)
		return nil
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", phone.ChannelAddress(to))
	form.Set("From", s.cfg.From)
	form.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building channel request: %w", err)
	}
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending channel message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("channel rejected message: status %d: %s",
			resp.StatusCode, string(body))
	}

	return nil
}

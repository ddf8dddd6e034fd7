// Package discord delivers pipeline outcomes back to the channel the rated
// message came from.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/veritaschain/pociv-backend/internal/eas"
	"github.com/veritaschain/pociv-backend/internal/platform/envutil"
	"github.com/veritaschain/pociv-backend/internal/platform/logger"
	"github.com/veritaschain/pociv-backend/internal/scoring"
)

// Notification is the payload handed to the chat platform collaborator.
type Notification struct {
	ChannelID      int64  `json:"channel_id"`
	MessageID      int64  `json:"message_id"`
	TargetUserID   int64  `json:"target_user_id"`
	Tier           string `json:"tier"`
	Emoji          string `json:"emoji"`
	AttestationURL string `json:"attestation_url"`
	Message        string `json:"message"`
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// BuildNotification assembles the user-facing payload for a completed run.
// A run without a minted credential carries the "N/A" sentinel link.
func BuildNotification(channelID, messageID, targetUserID int64, tier string, attestationUID string) Notification {
	link := "N/A"
	if attestationUID != "" {
		link = eas.ExplorerURL(attestationUID)
	}
	emoji, err := scoring.GetEmoji(scoring.Tier(tier))
	if err != nil {
		emoji = ""
	}
	return Notification{
		ChannelID:      channelID,
		MessageID:      messageID,
		TargetUserID:   targetUserID,
		Tier:           tier,
		Emoji:          emoji,
		AttestationURL: link,
		Message:        fmt.Sprintf("You earned a %s Civility Stamp! View on EAS: %s", tier, link),
	}
}

// NewNotifierFromEnv returns a webhook notifier when DISCORD_WEBHOOK_URL is
// configured, and a log-only notifier otherwise.
func NewNotifierFromEnv(log *logger.Logger) Notifier {
	if url := envutil.String("DISCORD_WEBHOOK_URL", ""); url != "" {
		return NewWebhookNotifier(url, log)
	}
	return NewLogNotifier(log)
}

type webhookNotifier struct {
	url    string
	client *http.Client
	log    *logger.Logger
}

func NewWebhookNotifier(url string, log *logger.Logger) Notifier {
	return &webhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.With("client", "DiscordWebhookNotifier"),
	}
}

func (n *webhookNotifier) Send(ctx context.Context, notification Notification) error {
	body, err := json.Marshal(map[string]string{"content": notification.Message})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	n.log.Info("Notification delivered", "channel_id", notification.ChannelID, "tier", notification.Tier)
	return nil
}

type logNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) Notifier {
	return &logNotifier{log: log.With("client", "LogNotifier")}
}

func (n *logNotifier) Send(ctx context.Context, notification Notification) error {
	n.log.Info("Notification prepared",
		"channel_id", notification.ChannelID,
		"message_id", notification.MessageID,
		"target_user_id", notification.TargetUserID,
		"tier", notification.Tier,
		"attestation_url", notification.AttestationURL,
	)
	return nil
}

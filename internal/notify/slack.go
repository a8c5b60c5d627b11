package notify

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier は失敗しても呼び出し側にエラーを返さない。
type Notifier interface {
	Notify(ctx context.Context, text string)
}

type Nop struct{}

func (Nop) Notify(context.Context, string) {}

type slackPayload struct {
	Username  string `json:"username"`
	IconEmoji string `json:"icon_emoji"`
	Text      string `json:"text"`
}

type Slack struct {
	url  string
	http *resty.Client
	log  *zap.Logger
}

func NewSlack(webhookURL string, log *zap.Logger) *Slack {
	if log == nil {
		log = zap.NewNop()
	}
	return &Slack{
		url: webhookURL,
		http: resty.New().
			SetTimeout(5 * time.Second).
			SetHeader("Content-Type", "application/json"),
		log: log,
	}
}

// Enabled: 未設定や YOUR_... のままのプレースホルダーなら送らない
func (s *Slack) Enabled() bool {
	return s.url != "" && !strings.Contains(s.url, "YOUR")
}

func (s *Slack) Notify(ctx context.Context, text string) {
	if !s.Enabled() {
		return
	}
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(slackPayload{Username: "Sent. Library Bot", IconEmoji: ":books:", Text: text}).
		Post(s.url)
	if err != nil {
		s.log.Warn("slack notify failed", zap.Error(err))
		return
	}
	if resp.IsError() {
		s.log.Warn("slack notify rejected", zap.Int("status", resp.StatusCode()), zap.String("body", resp.String()))
	}
}

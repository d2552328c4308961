package notify

import (
	"context"
	"fmt"
	"net/http"
)

// FeishuSender delivers notifications via a Feishu (Lark) custom bot
// webhook.
type FeishuSender struct {
	webhookURL string
	client     *http.Client
}

// NewFeishuSender creates a FeishuSender for the given webhook URL.
func NewFeishuSender(webhookURL string) *FeishuSender {
	return &FeishuSender{
		webhookURL: webhookURL,
		client:     newHTTPClient(),
	}
}

// feishuPayload is the custom-bot text message wire format.
type feishuPayload struct {
	MsgType string        `json:"msg_type"`
	Content feishuContent `json:"content"`
}

type feishuContent struct {
	Text string `json:"text"`
}

// Send posts a plain-text message to the Feishu webhook. Feishu has no
// markup for text messages, so the title becomes the first line.
func (f *FeishuSender) Send(ctx context.Context, title, message string) error {
	payload := feishuPayload{
		MsgType: "text",
		Content: feishuContent{
			Text: fmt.Sprintf("%s\n%s", title, message),
		},
	}
	return postJSON(ctx, f.client, "feishu", f.webhookURL, payload)
}

// Name returns the sender identifier.
func (f *FeishuSender) Name() string {
	return "feishu"
}

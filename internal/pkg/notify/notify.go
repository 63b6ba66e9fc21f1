// Package notify fans operational alerts out to a fixed list of Telegram
// chats. Delivery is fire-and-forget: every recipient is tried once,
// concurrently, and failures are logged and counted but never returned.
// Orders and reviews are recorded elsewhere; losing an alert loses nothing.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/config"
	"github.com/your-org/solar-storefront/internal/domain/upload"
	"github.com/your-org/solar-storefront/internal/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Telegram rejects captions above this length
const maxCaptionLen = 1024

// Notifier is what the domain services depend on
type Notifier interface {
	SendText(ctx context.Context, text string)
	SendPhoto(ctx context.Context, dataURI, caption string)
}

// Fanout sends notifications to every configured chat
type Fanout struct {
	token       string
	chatIDs     []string
	baseURL     string
	concurrency int
	timeout     time.Duration
	client      *http.Client
	log         *logrus.Logger
	metrics     *metrics.Metrics

	wg           sync.WaitGroup
	disabledOnce sync.Once
}

// NewFanout creates a fan-out from the Telegram configuration
func NewFanout(cfg config.TelegramConfig, log *logrus.Logger, m *metrics.Metrics) *Fanout {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = len(cfg.ChatIDs)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fanout{
		token:       cfg.BotToken,
		chatIDs:     append([]string(nil), cfg.ChatIDs...),
		baseURL:     strings.TrimRight(cfg.APIBaseURL, "/"),
		concurrency: concurrency,
		timeout:     timeout,
		client:      &http.Client{Timeout: timeout},
		log:         log,
		metrics:     m,
	}
}

// Enabled reports whether a bot token and recipients are configured
func (f *Fanout) Enabled() bool {
	return f.token != "" && len(f.chatIDs) > 0
}

// SendText sends a text message to every recipient
func (f *Fanout) SendText(ctx context.Context, text string) {
	if !f.ready() {
		return
	}
	f.dispatch(ctx, "text", func(ctx context.Context, chatID string) error {
		return f.sendMessage(ctx, chatID, text)
	})
}

// SendPhoto sends an image given as a data URI with a caption. An image that
// cannot be decoded degrades to a text message with the caption.
func (f *Fanout) SendPhoto(ctx context.Context, dataURI, caption string) {
	if !f.ready() {
		return
	}

	mimeType, data, err := upload.DecodeDataURI(dataURI)
	if err != nil {
		f.log.WithError(err).Warn("Notification image is not a valid data URI, sending caption only")
		f.SendText(ctx, caption)
		return
	}

	caption = truncate(caption, maxCaptionLen)
	f.dispatch(ctx, "photo", func(ctx context.Context, chatID string) error {
		return f.sendPhoto(ctx, chatID, mimeType, data, caption)
	})
}

// Wait blocks until every in-flight send has finished
func (f *Fanout) Wait() {
	f.wg.Wait()
}

func (f *Fanout) ready() bool {
	if f.Enabled() {
		return true
	}
	f.disabledOnce.Do(func() {
		f.log.Warn("Telegram notifications are disabled: TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_IDS not set")
	})
	return false
}

// dispatch runs send for every chat in the background. The request context
// only contributes its values; the sends outlive the request.
func (f *Fanout) dispatch(ctx context.Context, kind string, send func(ctx context.Context, chatID string) error) {
	base := context.WithoutCancel(ctx)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		ctx, cancel := context.WithTimeout(base, f.timeout)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(f.concurrency)
		for _, chatID := range f.chatIDs {
			chatID := chatID
			g.Go(func() error {
				err := send(ctx, chatID)
				f.metrics.NotificationSent(kind, err)
				if err != nil {
					f.log.WithError(err).WithFields(logrus.Fields{
						"chat_id": chatID,
						"kind":    kind,
					}).Warn("Failed to deliver notification")
				}
				// never fail the group, other recipients must still be tried
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func (f *Fanout) sendMessage(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}
	return f.post(ctx, "sendMessage", "application/json", bytes.NewReader(body))
}

func (f *Fanout) sendPhoto(ctx context.Context, chatID, mimeType string, data []byte, caption string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("chat_id", chatID); err != nil {
		return err
	}
	if err := w.WriteField("caption", caption); err != nil {
		return err
	}
	part, err := w.CreateFormFile("photo", "proof"+extension(mimeType))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return f.post(ctx, "sendPhoto", w.FormDataContentType(), &buf)
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (f *Fanout) post(ctx context.Context, method, contentType string, body io.Reader) error {
	url := fmt.Sprintf("%s/bot%s/%s", f.baseURL, f.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s failed: %w", method, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("%s returned an unreadable response: %w", method, err)
	}
	if resp.StatusCode >= 300 || !out.OK {
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, out.Description)
	}
	return nil
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ".jpg"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

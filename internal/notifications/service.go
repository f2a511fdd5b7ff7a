package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mewai/internal/config"
)

const userAgent = "MewAI-Go/0.1.0"

// Service defines the notification surface exposed to the CLI.
type Service interface {
	NotifyJobCompleted(ctx context.Context, jobID, topic string, elapsed time.Duration) error
	NotifyJobFailed(ctx context.Context, jobID, topic, message string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, jobID, topic string, elapsed time.Duration) error {
	message := fmt.Sprintf("Content ready: %s", label(jobID, topic))
	if elapsed = elapsed.Round(time.Second); elapsed > 0 {
		message = fmt.Sprintf("%s (%s)", message, elapsed)
	}
	return n.send(ctx, payload{
		title:    "MewAI - Generation Complete",
		message:  message,
		tags:     []string{"mewai", "generation", "completed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, jobID, topic, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "unknown"
	}
	return n.send(ctx, payload{
		title:    "MewAI - Generation Failed",
		message:  fmt.Sprintf("Generation failed for %s: %s", label(jobID, topic), message),
		tags:     []string{"mewai", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "MewAI - Test",
		message:  "Notification system test",
		tags:     []string{"mewai", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func label(jobID, topic string) string {
	topic = strings.TrimSpace(topic)
	jobID = strings.TrimSpace(jobID)
	switch {
	case topic != "" && jobID != "":
		return fmt.Sprintf("%s [%s]", topic, jobID)
	case topic != "":
		return topic
	case jobID != "":
		return jobID
	default:
		return "unknown job"
	}
}

type noopService struct{}

func (noopService) NotifyJobCompleted(context.Context, string, string, time.Duration) error {
	return nil
}
func (noopService) NotifyJobFailed(context.Context, string, string, string) error { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }

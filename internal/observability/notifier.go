package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Notifier sends alert notifications to external channels.
type Notifier interface {
	Notify(alerts []Alert) error
}

// webhookNotifier posts alert summaries to a JSON webhook.
type webhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier creates a Notifier that posts alerts to the given webhook URL.
// The payload is a single {"text": ...} object, which Slack-compatible hooks accept.
func NewWebhookNotifier(webhookURL string) Notifier {
	return &webhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

type webhookMessage struct {
	Text string `json:"text"`
}

// Notify sends the given alerts to the configured webhook.
// It returns nil without making a request if the alerts slice is empty.
func (n *webhookNotifier) Notify(alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	body, err := json.Marshal(webhookMessage{Text: n.buildText(alerts)})
	if err != nil {
		return fmt.Errorf("marshaling webhook message: %w", err)
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (n *webhookNotifier) buildText(alerts []Alert) string {
	lines := make([]string, 0, len(alerts)+1)
	lines = append(lines, fmt.Sprintf("quadro: %d alert(s)", len(alerts)))
	for _, alert := range alerts {
		lines = append(lines, fmt.Sprintf("%s [%s] %s (%s)",
			severityMarker(alert.Severity),
			strings.ToUpper(string(alert.Severity)),
			alert.Message,
			alert.TriggeredAt.Format("2006-01-02 15:04 UTC"),
		))
	}
	return strings.Join(lines, "\n")
}

func severityMarker(severity AlertSeverity) string {
	switch severity {
	case SeverityHigh:
		return "\U0001f534"
	case SeverityMedium:
		return "\U0001f7e1"
	case SeverityLow:
		return "\U0001f535"
	default:
		return "❓"
	}
}

// Package covcallslack forwards computed alerts and backtest summaries
// to a Slack channel. The engine itself never depends on it.
package covcallslack

import (
	"fmt"

	"github.com/slack-go/slack"

	"covcall/logging"
	"covcall/models"
)

// Notifier posts formatted messages to a single channel. A nil Notifier
// is inert, so callers can wire it unconditionally.
type Notifier struct {
	client  *slack.Client
	channel string
}

// NewNotifier returns nil when the token or channel is unset.
func NewNotifier(botToken, channel string) *Notifier {
	if botToken == "" || channel == "" {
		return nil
	}
	return &Notifier{client: slack.New(botToken), channel: channel}
}

// PostAlerts sends one message per batch of alerts; no-op on empty input.
func (n *Notifier) PostAlerts(alerts []models.Alert) error {
	if n == nil || len(alerts) == 0 {
		return nil
	}
	return n.post(FormatAlerts(alerts))
}

// PostBacktestRun sends the policy comparison table.
func (n *Notifier) PostBacktestRun(run models.BacktestRun) error {
	if n == nil {
		return nil
	}
	return n.post(FormatBacktestRun(run))
}

func (n *Notifier) post(text string) error {
	_, _, err := n.client.PostMessage(n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting to slack channel %s: %w", n.channel, err)
	}
	logging.L().Debugw("posted slack message", "channel", n.channel, "bytes", len(text))
	return nil
}

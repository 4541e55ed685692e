// Package monitoring evaluates response health against alert thresholds and
// delivers alerts to a webhook.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nps-cli/internal/config"
	"github.com/sells-group/nps-cli/internal/nps"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertLowNPS             AlertType = "low_nps"
	AlertCriticalDetractors AlertType = "critical_detractors"
	AlertOverdueTickets     AlertType = "overdue_tickets"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a MetricsSnapshot against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
// Alerts are stamped with the snapshot's collection time.
func (a *Alerter) Evaluate(snap *MetricsSnapshot) []Alert {
	var alerts []Alert
	now := snap.CollectedAt

	// The score is noisy on small samples.
	if snap.Responses >= a.cfg.MinResponses && snap.Responses > 0 && snap.Score < a.cfg.MinScore {
		alerts = append(alerts, Alert{
			Type:     AlertLowNPS,
			Severity: "high",
			Message: fmt.Sprintf(
				"NPS %d is below threshold %d (%d promoters, %d detractors of %d responses)",
				snap.Score, a.cfg.MinScore, snap.Promoters, snap.Detractors, snap.Responses,
			),
			Details: map[string]any{
				"score":      snap.Score,
				"threshold":  a.cfg.MinScore,
				"responses":  snap.Responses,
				"detractors": snap.Detractors,
			},
			Timestamp: now,
		})
	}

	if snap.CriticalOpen > a.cfg.MaxCritical {
		alerts = append(alerts, Alert{
			Type:     AlertCriticalDetractors,
			Severity: "high",
			Message: fmt.Sprintf(
				"%d critical detractor(s) awaiting follow-up (threshold %d)",
				snap.CriticalOpen, a.cfg.MaxCritical,
			),
			Details: map[string]any{
				"critical_open": snap.CriticalOpen,
				"threshold":     a.cfg.MaxCritical,
			},
			Timestamp: now,
		})
	}

	if snap.Overdue > a.cfg.MaxOverdue {
		alerts = append(alerts, Alert{
			Type:     AlertOverdueTickets,
			Severity: "medium",
			Message: fmt.Sprintf(
				"%d detractor ticket(s) open for more than %d days (threshold %d)",
				snap.Overdue, nps.UrgentAfterDays, a.cfg.MaxOverdue,
			),
			Details: map[string]any{
				"overdue":   snap.Overdue,
				"threshold": a.cfg.MaxOverdue,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Package source reads survey submissions from the hosted data service and
// writes ticket status changes back to it.
package source

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nps-cli/internal/config"
	"github.com/sells-group/nps-cli/internal/model"
)

// Source is a backend holding survey submissions.
type Source interface {
	// Fetch returns completed submissions, most recently completed first.
	Fetch(ctx context.Context) ([]model.Submission, error)
	// UpdateStatus persists the ticket status of one submission.
	UpdateStatus(ctx context.Context, id string, status model.TicketStatus) error
	Close() error
}

// ErrNotConfigured is returned by Open when the selected driver is missing
// the settings it needs to connect.
var ErrNotConfigured = eris.New("source: not configured")

// ErrNotFound is returned by UpdateStatus when no submission has the id.
var ErrNotFound = eris.New("source: submission not found")

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Open builds the Source selected by cfg.Driver.
func Open(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	if !tableName.MatchString(table) {
		return nil, eris.Errorf("source: invalid table name %q", table)
	}
	completed := cfg.CompletedStatus
	if completed == "" {
		completed = defaultCompletedStatus
	}

	switch cfg.Driver {
	case "", "rest":
		if cfg.URL == "" || cfg.APIKey == "" {
			return nil, ErrNotConfigured
		}
		opts := []RESTOption{WithTable(table), WithCompletedStatus(completed)}
		if cfg.TimeoutSecs > 0 {
			opts = append(opts, WithTimeout(cfg.TimeoutSecs))
		}
		opts = append(opts, WithWriteRateLimit(cfg.WriteRateLimit))
		return NewREST(cfg.URL, cfg.APIKey, opts...), nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, ErrNotConfigured
		}
		return NewPostgres(ctx, cfg.DatabaseURL, table, completed)
	case "sqlite":
		if cfg.DatabaseURL == "" {
			return nil, ErrNotConfigured
		}
		s, err := NewSQLite(cfg.DatabaseURL, table, completed)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close() //nolint:errcheck
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("source: unknown driver %q", cfg.Driver)
	}
}

const (
	defaultTable           = "submissions"
	defaultCompletedStatus = "completed"
)

// columns are the submission fields read from relational backends.
var columns = []string{
	"id", "status", "completed_at", "created_at", "receipt_no", "brand",
	"name", "email", "contact_number", "survey_data", "ticket_status",
}

// decodeSurveyData parses a JSON survey payload. Empty or null payloads
// yield a nil map.
func decodeSurveyData(raw []byte) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, eris.Wrap(err, "source: decode survey_data")
	}
	return data, nil
}

// decodeRow decodes one submission row. Rows that are not JSON objects are
// logged and reported as not ok so one bad row never empties a fetch.
func decodeRow(raw []byte, driver string) (model.Submission, bool) {
	var sub model.Submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		zap.L().Warn("source: skipping undecodable row",
			zap.String("driver", driver),
			zap.Int("bytes", len(raw)),
			zap.Error(err),
		)
		return model.Submission{}, false
	}
	return sub, true
}

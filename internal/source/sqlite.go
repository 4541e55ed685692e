package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/nps-cli/internal/model"
)

// SQLite stores submissions in a local file, for development and fixtures.
type SQLite struct {
	db        *sql.DB
	table     string
	completed string
}

// NewSQLite opens the database at dsn. A schema-qualified table name is
// reduced to its last segment.
func NewSQLite(dsn, table, completed string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	if table == "" {
		table = defaultTable
	}
	if i := strings.LastIndex(table, "."); i >= 0 {
		table = table[i+1:]
	}
	if completed == "" {
		completed = defaultCompletedStatus
	}
	return &SQLite{db: db, table: table, completed: completed}, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id             TEXT PRIMARY KEY,
	status         TEXT NOT NULL DEFAULT 'completed',
	completed_at   TEXT,
	created_at     TEXT,
	receipt_no     TEXT,
	brand          TEXT,
	name           TEXT,
	email          TEXT,
	contact_number TEXT,
	survey_data    TEXT,
	ticket_status  TEXT
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_completed_at ON %[1]s(completed_at);
`

// Migrate creates the submissions table if it does not exist.
func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(sqliteSchema, s.table))
	return eris.Wrap(err, "sqlite: migrate")
}

// Fetch returns completed submissions, newest completion first.
func (s *SQLite) Fetch(ctx context.Context) ([]model.Submission, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE status = ? ORDER BY completed_at DESC`,
		strings.Join(columns, ", "), s.table,
	)
	rows, err := s.db.QueryContext(ctx, query, s.completed)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: fetch")
	}
	defer rows.Close() //nolint:errcheck

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: rows")
	}
	return subs, nil
}

// UpdateStatus sets ticket_status on the row with the given id.
func (s *SQLite) UpdateStatus(ctx context.Context, id string, status model.TicketStatus) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET ticket_status = ? WHERE id = ?`, s.table),
		string(status), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update status %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: update status %s", id)
	}
	return nil
}

// Seed inserts submissions, replacing rows that share an id.
func (s *SQLite) Seed(ctx context.Context, subs []model.Submission) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	var updates []string
	for _, c := range columns[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s`,
		s.table, strings.Join(columns, ", "), placeholders, strings.Join(updates, ", "),
	))
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare seed")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, sub := range subs {
		var data any
		if sub.SurveyData != nil {
			raw, err := json.Marshal(sub.SurveyData)
			if err != nil {
				return 0, eris.Wrapf(err, "sqlite: marshal survey_data %s", sub.ID)
			}
			data = string(raw)
		}
		status := sub.Status
		if status == "" {
			status = s.completed
		}
		if _, err := stmt.ExecContext(ctx,
			sub.ID, status, nullable(sub.CompletedAt), nullable(sub.CreatedAt),
			sub.ReceiptNo, sub.Brand, sub.Name, sub.Email, sub.ContactNumber,
			data, nullable(sub.TicketStatus),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert %s", sub.ID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return n, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSubmission(row scannable) (model.Submission, error) {
	var (
		sub                                         model.Submission
		status, completedAt, createdAt, receipt     sql.NullString
		brand, name, email, contact, data, ticketSt sql.NullString
	)
	if err := row.Scan(&sub.ID, &status, &completedAt, &createdAt, &receipt,
		&brand, &name, &email, &contact, &data, &ticketSt); err != nil {
		return sub, eris.Wrap(err, "sqlite: scan submission")
	}
	sub.Status = status.String
	sub.CompletedAt = completedAt.String
	sub.CreatedAt = createdAt.String
	sub.ReceiptNo = receipt.String
	sub.Brand = brand.String
	sub.Name = name.String
	sub.Email = email.String
	sub.ContactNumber = contact.String
	sub.TicketStatus = ticketSt.String

	surveyData, err := decodeSurveyData([]byte(data.String))
	if err != nil {
		return sub, err
	}
	sub.SurveyData = surveyData
	return sub, nil
}

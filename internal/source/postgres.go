package source

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nps-cli/internal/db"
	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/normalize"
)

// Postgres reads submissions directly from the data service's database.
type Postgres struct {
	pool      db.Pool
	table     string
	completed string
}

// NewPostgres connects to connString and returns a Postgres source.
func NewPostgres(ctx context.Context, connString, table, completed string) (*Postgres, error) {
	pool, err := db.Connect(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "source: postgres connect")
	}
	return NewPostgresWithPool(pool, table, completed), nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool db.Pool, table, completed string) *Postgres {
	if table == "" {
		table = defaultTable
	}
	if completed == "" {
		completed = defaultCompletedStatus
	}
	return &Postgres{pool: pool, table: table, completed: completed}
}

// Fetch selects each row as JSON so optional columns such as ticket_status
// may be absent from the table.
func (p *Postgres) Fetch(ctx context.Context) ([]model.Submission, error) {
	query := fmt.Sprintf(
		`SELECT to_jsonb(s) FROM %s s WHERE s.status = $1 ORDER BY s.completed_at DESC NULLS LAST`,
		db.SanitizeTable(p.table),
	)
	rows, err := p.pool.Query(ctx, query, p.completed)
	if err != nil {
		return nil, eris.Wrap(err, "source: postgres fetch")
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "source: postgres scan")
		}
		if sub, ok := decodeRow(raw, "postgres"); ok {
			subs = append(subs, sub)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "source: postgres rows")
	}
	return subs, nil
}

// UpdateStatus sets ticket_status on the row with the given id.
func (p *Postgres) UpdateStatus(ctx context.Context, id string, status model.TicketStatus) error {
	query := fmt.Sprintf(
		`UPDATE %s SET ticket_status = $1 WHERE id::text = $2`,
		db.SanitizeTable(p.table),
	)
	tag, err := p.pool.Exec(ctx, query, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "source: postgres update status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "source: postgres update status %s", id)
	}
	return nil
}

// Seed upserts submissions by id.
func (p *Postgres) Seed(ctx context.Context, subs []model.Submission) (int64, error) {
	rows := make([][]any, len(subs))
	for i, s := range subs {
		rows[i] = []any{
			s.ID, s.Status,
			normalize.ParseTimestamp(s.CompletedAt), normalize.ParseTimestamp(s.CreatedAt),
			s.ReceiptNo, s.Brand, s.Name, s.Email, s.ContactNumber,
			s.SurveyData, nullable(s.TicketStatus),
		}
	}
	n, err := db.BulkUpsert(ctx, p.pool, db.UpsertConfig{
		Table:        p.table,
		Columns:      columns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "source: postgres seed")
	}
	return n, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

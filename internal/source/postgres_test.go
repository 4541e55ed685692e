package source

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nps-cli/internal/model"
)

func newMockPostgres(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock, "", ""), mock
}

func TestPostgres_Fetch(t *testing.T) {
	src, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT to_jsonb\(s\) FROM "submissions" s WHERE s.status = \$1 ORDER BY s.completed_at DESC NULLS LAST`).
		WithArgs("completed").
		WillReturnRows(pgxmock.NewRows([]string{"to_jsonb"}).
			AddRow([]byte(`{"id":"a1","status":"completed","completed_at":"2025-06-02T10:00:00+00:00","survey_data":{"q8_nps":9}}`)).
			AddRow([]byte(`{"id":"b2","status":"completed","ticket_status":"voc"}`)))

	subs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "a1", subs[0].ID)
	assert.InDelta(t, 9, subs[0].SurveyData["q8_nps"], 0)
	assert.Equal(t, "voc", subs[1].TicketStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FetchQueryError(t *testing.T) {
	src, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT to_jsonb`).WithArgs("completed").
		WillReturnError(errors.New("relation does not exist"))

	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres fetch")
}

func TestPostgres_FetchSkipsBadRow(t *testing.T) {
	src, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT to_jsonb`).WithArgs("completed").
		WillReturnRows(pgxmock.NewRows([]string{"to_jsonb"}).
			AddRow([]byte(`{broken`)).
			AddRow([]byte(`{"id":"ok","status":"completed"}`)))

	subs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "ok", subs[0].ID)
}

func TestPostgres_FetchNumericColumns(t *testing.T) {
	src, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT to_jsonb`).WithArgs("completed").
		WillReturnRows(pgxmock.NewRows([]string{"to_jsonb"}).
			AddRow([]byte(`{"id":9007199254740993,"receipt_no":12345,"contact_number":5551234,` +
				`"status":"completed","survey_data":{"q8_nps":9}}`)).
			AddRow([]byte(`{"id":"b","receipt_no":"R-2","survey_data":"{\"q8_nps\":4}"}`)))

	subs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "9007199254740993", subs[0].ID)
	assert.Equal(t, "12345", subs[0].ReceiptNo)
	assert.Equal(t, "5551234", subs[0].ContactNumber)
	assert.Equal(t, "R-2", subs[1].ReceiptNo)
	assert.InDelta(t, 4, subs[1].SurveyData["q8_nps"], 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateStatus(t *testing.T) {
	src, mock := newMockPostgres(t)

	mock.ExpectExec(`UPDATE "submissions" SET ticket_status = \$1 WHERE id::text = \$2`).
		WithArgs("in_progress", "a1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, src.UpdateStatus(context.Background(), "a1", model.StatusInProgress))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateStatusNotFound(t *testing.T) {
	src, mock := newMockPostgres(t)

	mock.ExpectExec(`UPDATE "submissions"`).
		WithArgs("resolved", "nope").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := src.UpdateStatus(context.Background(), "nope", model.StatusResolved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_Seed(t *testing.T) {
	src, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_submissions"}, columns).WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "submissions" .* ON CONFLICT \("id"\) DO UPDATE`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	n, err := src.Seed(context.Background(), []model.Submission{{
		ID: "a1", Status: "completed", CompletedAt: "2025-06-02T10:00:00Z",
		SurveyData: map[string]any{"q8_nps": 10},
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

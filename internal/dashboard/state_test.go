package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nps-cli/internal/filter"
	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/source"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context) ([]model.Submission, error) {
	args := m.Called(ctx)
	subs, _ := args.Get(0).([]model.Submission)
	return subs, args.Error(1)
}

func (m *mockSource) UpdateStatus(ctx context.Context, id string, status model.TicketStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockSource) Close() error { return nil }

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func submissions() []model.Submission {
	return []model.Submission{
		{ID: "a", CompletedAt: "2025-06-14T10:00:00Z", Name: "Ana",
			SurveyData: map[string]any{"q8_nps": 2, "q3_branch": "Downtown"}},
		{ID: "b", CompletedAt: "2025-06-10T10:00:00Z", Name: "Ben",
			SurveyData: map[string]any{"q8_nps": 9, "q3_branch": "Harbor"}},
		{ID: "c", CompletedAt: "2025-06-01T10:00:00Z",
			SurveyData: map[string]any{"q8_nps": 7}},
		{ID: "unscored", CompletedAt: "2025-06-01T10:00:00Z"},
	}
}

func loaded(t *testing.T, opts ...Option) (*State, *mockSource) {
	t.Helper()
	src := &mockSource{}
	src.On("Fetch", mock.Anything).Return(submissions(), nil).Once()
	st := Load(context.Background(), src, now, opts...)
	require.NoError(t, st.LoadErr())
	return st, src
}

func TestLoad_NormalizesAndDropsUnscored(t *testing.T) {
	st, src := loaded(t)

	assert.Equal(t, 3, st.Len())
	assert.Empty(t, st.Notice())
	assert.Equal(t, now, st.LoadedAt())

	rs := st.Responses()
	assert.Equal(t, "a", rs[0].ID)
	assert.Equal(t, model.StatusOpen, rs[0].TicketStatus)
	assert.Equal(t, model.StatusResolved, rs[1].TicketStatus)
	src.AssertExpectations(t)
}

func TestLoad_NoSource(t *testing.T) {
	st := Load(context.Background(), nil, now)

	assert.Zero(t, st.Len())
	assert.Equal(t, NoticeNotConnected, st.Notice())
	assert.ErrorIs(t, st.LoadErr(), source.ErrNotConfigured)
}

func TestLoad_FetchErrorDegradesToEmpty(t *testing.T) {
	src := &mockSource{}
	src.On("Fetch", mock.Anything).Return(nil, errors.New("connection refused"))

	st := Load(context.Background(), src, now)

	assert.Zero(t, st.Len())
	assert.Empty(t, st.Notice(), "fetch failures are silent to the user")
	assert.EqualError(t, st.LoadErr(), "connection refused")
}

func TestReload_ReplacesWorkingSet(t *testing.T) {
	st, src := loaded(t)
	src.On("Fetch", mock.Anything).Return(submissions()[:1], nil).Once()

	later := now.Add(time.Hour)
	st.Reload(context.Background(), later)

	assert.Equal(t, 1, st.Len())
	assert.Equal(t, later, st.LoadedAt())
}

func TestResponses_ReturnsCopy(t *testing.T) {
	st, _ := loaded(t)

	rs := st.Responses()
	rs[0].TicketStatus = model.StatusVOC

	got, ok := st.Find("a")
	require.True(t, ok)
	assert.Equal(t, model.StatusOpen, got.TicketStatus)
}

func TestFind(t *testing.T) {
	st, _ := loaded(t)

	r, ok := st.Find("b")
	require.True(t, ok)
	assert.Equal(t, "Ben", r.Name)

	_, ok = st.Find("unscored")
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	st, _ := loaded(t)

	got := st.Filter(filter.Criteria{Category: "detractor"})
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	assert.Len(t, st.Filter(filter.Criteria{Branch: model.UnknownBranch}), 1)
	assert.Len(t, st.Filter(filter.Criteria{}), 3)
}

func TestFilter_UnconstrainedReturnsCopy(t *testing.T) {
	st, _ := loaded(t)

	all := st.Filter(filter.Criteria{Branch: filter.All, Status: filter.All})
	require.Len(t, all, 3)
	all[0].TicketStatus = model.StatusVOC

	got, ok := st.Find(all[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, model.StatusVOC, got.TicketStatus)
}

func TestSetStatus_Persisted(t *testing.T) {
	st, src := loaded(t)
	src.On("UpdateStatus", mock.Anything, "a", model.StatusInProgress).Return(nil)

	res := st.SetStatus(context.Background(), "a", model.StatusInProgress)

	assert.True(t, res.OK())
	assert.True(t, res.Persisted)
	assert.Equal(t, model.StatusOpen, res.Previous)
	assert.Equal(t, model.StatusInProgress, res.Current)

	r, _ := st.Find("a")
	assert.Equal(t, model.StatusInProgress, r.TicketStatus)
	src.AssertExpectations(t)
}

func TestSetStatus_OptimisticKeepsLocalEdit(t *testing.T) {
	st, src := loaded(t)
	src.On("UpdateStatus", mock.Anything, "a", model.StatusVOC).Return(errors.New("timeout"))

	res := st.SetStatus(context.Background(), "a", model.StatusVOC)

	assert.False(t, res.OK())
	assert.False(t, res.Persisted)
	assert.EqualError(t, res.Err, "timeout")
	assert.Equal(t, model.StatusVOC, res.Current)

	r, _ := st.Find("a")
	assert.Equal(t, model.StatusVOC, r.TicketStatus)
}

func TestSetStatus_StrictRevertsLocalEdit(t *testing.T) {
	st, src := loaded(t, WithPolicy(PolicyStrict))
	src.On("UpdateStatus", mock.Anything, "a", model.StatusVOC).Return(errors.New("timeout"))

	res := st.SetStatus(context.Background(), "a", model.StatusVOC)

	assert.False(t, res.OK())
	assert.Equal(t, model.StatusOpen, res.Current)

	r, _ := st.Find("a")
	assert.Equal(t, model.StatusOpen, r.TicketStatus)
}

func TestSetStatus_NoSourceHasNothingToUpdate(t *testing.T) {
	st := Load(context.Background(), nil, now)
	res := st.SetStatus(context.Background(), "a", model.StatusVOC)
	assert.ErrorIs(t, res.Err, ErrUnknownResponse)
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	st, src := loaded(t)

	res := st.SetStatus(context.Background(), "a", model.TicketStatus("closed"))

	assert.ErrorIs(t, res.Err, ErrInvalidStatus)
	src.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetStatus_UnknownID(t *testing.T) {
	st, src := loaded(t)

	res := st.SetStatus(context.Background(), "zzz", model.StatusOpen)

	assert.ErrorIs(t, res.Err, ErrUnknownResponse)
	src.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetStatus_Concurrent(t *testing.T) {
	st, src := loaded(t)
	src.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c"} {
		for _, status := range model.TicketStatuses {
			wg.Add(1)
			go func(id string, status model.TicketStatus) {
				defer wg.Done()
				st.SetStatus(context.Background(), id, status)
				_ = st.Responses()
			}(id, status)
		}
	}
	wg.Wait()

	assert.Equal(t, 3, st.Len())
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyStrict, ParsePolicy("strict"))
	assert.Equal(t, PolicyOptimistic, ParsePolicy("optimistic"))
	assert.Equal(t, PolicyOptimistic, ParsePolicy(""))
	assert.Equal(t, PolicyOptimistic, ParsePolicy("bogus"))
}

package escalate

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/nps"
)

type mockNotion struct {
	mock.Mock
}

func (m *mockNotion) FindPages(ctx context.Context, dbID, property, value string) ([]notionapi.Page, error) {
	args := m.Called(ctx, dbID, property, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notionapi.Page), args.Error(1)
}

func (m *mockNotion) CreatePage(ctx context.Context, dbID string, props notionapi.Properties) (*notionapi.Page, error) {
	args := m.Called(ctx, dbID, props)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, props notionapi.Properties) (*notionapi.Page, error) {
	args := m.Called(ctx, pageID, props)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func score(n int) *int { return &n }

func daysAgo(d int) *time.Time {
	t := now.AddDate(0, 0, -d)
	return &t
}

func responses() []model.Response {
	return []model.Response{
		{ID: "normal", Name: "Nia", NPS: score(6), CompletedAt: daysAgo(1), TicketStatus: model.StatusOpen},
		{ID: "critical", Name: "Cal", Email: "cal@example.com", NPS: score(2), CompletedAt: daysAgo(2),
			NPSComment: "cold food", TicketStatus: model.StatusOpen, Branch: "Harbor", Date: "2025-06-13"},
		{ID: "voc", Name: "Vic", NPS: score(5), CompletedAt: daysAgo(9), TicketStatus: model.StatusVOC},
		{ID: "done", Name: "Dee", NPS: score(1), CompletedAt: daysAgo(3), TicketStatus: model.StatusResolved},
		{ID: "promoter", Name: "Pat", NPS: score(10), CompletedAt: daysAgo(3), TicketStatus: model.StatusResolved},
	}
}

func ids(as []nps.Assessment) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Response.ID
	}
	return out
}

func TestSelect(t *testing.T) {
	assert.Equal(t, []string{"critical", "voc", "normal"}, ids(Select(responses(), now, false)))
	assert.Equal(t, []string{"voc"}, ids(Select(responses(), now, true)))
}

func TestPush_DryRun(t *testing.T) {
	mc := new(mockNotion)
	out, err := New(mc, "db").Push(context.Background(), responses(), now, Options{DryRun: true})

	require.NoError(t, err)
	assert.Len(t, out.Planned, 3)
	assert.Zero(t, out.Created)
	mc.AssertNotCalled(t, "FindPages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPush_CreatesAndUpdates(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("FindPages", ctx, "db", PropResponseID, "critical").Return([]notionapi.Page{}, nil).Once()
	mc.On("FindPages", ctx, "db", PropResponseID, "voc").Return([]notionapi.Page{{ID: "page-voc"}}, nil).Once()
	mc.On("FindPages", ctx, "db", PropResponseID, "normal").Return(nil, nil).Once()

	mc.On("CreatePage", ctx, "db", mock.MatchedBy(func(props notionapi.Properties) bool {
		_, ok := props[PropResponseID]
		return ok
	})).Return(&notionapi.Page{ID: "new"}, nil).Twice()
	mc.On("UpdatePage", ctx, "page-voc", mock.AnythingOfType("notionapi.Properties")).
		Return(&notionapi.Page{ID: "page-voc"}, nil).Once()

	out, err := New(mc, "db").Push(ctx, responses(), now, Options{})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Created)
	assert.Equal(t, 1, out.Updated)
	mc.AssertExpectations(t)
}

func TestPush_UpdatesFirstMatch(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("FindPages", ctx, "db", PropResponseID, "voc").
		Return([]notionapi.Page{{ID: "page-1"}, {ID: "page-2"}}, nil).Once()
	mc.On("UpdatePage", ctx, "page-1", mock.MatchedBy(func(props notionapi.Properties) bool {
		sel, ok := props[PropStatus].(notionapi.SelectProperty)
		return ok && sel.Select.Name == "voc"
	})).Return(&notionapi.Page{ID: "page-1"}, nil).Once()

	out, err := New(mc, "db").Push(ctx, responses(), now, Options{VOCOnly: true})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated)
	mc.AssertExpectations(t)
	mc.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything, mock.Anything)
}

func TestPush_StopsOnError(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("FindPages", ctx, "db", PropResponseID, "critical").Return(nil, nil).Once()
	mc.On("CreatePage", ctx, "db", mock.Anything).Return(nil, assert.AnError).Once()

	out, err := New(mc, "db").Push(ctx, responses(), now, Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "escalate: create page for critical")
	assert.Zero(t, out.Created)
	mc.AssertNumberOfCalls(t, "FindPages", 1)
}

func TestPush_LookupError(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("FindPages", ctx, "db", PropResponseID, "voc").Return(nil, assert.AnError).Once()

	_, err := New(mc, "db").Push(ctx, responses(), now, Options{VOCOnly: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escalate: look up voc")
}

func TestPush_Cancelled(t *testing.T) {
	mc := new(mockNotion)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(mc, "db").Push(ctx, responses(), now, Options{})
	require.Error(t, err)
	mc.AssertNotCalled(t, "FindPages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProperties(t *testing.T) {
	a := nps.Assess(responses()[1], now)
	props := Properties(a)

	title, ok := props[PropCustomer].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Cal", title.Title[0].Text.Content)

	assert.Equal(t, "Critical", props[PropPriority].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, "open", props[PropStatus].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, float64(2), props[PropNPS].(notionapi.NumberProperty).Number)
	assert.Equal(t, float64(2), props[PropAge].(notionapi.NumberProperty).Number)
	assert.Equal(t, "cal@example.com", props[PropEmail].(notionapi.EmailProperty).Email)
	assert.Contains(t, props, PropFeedback)
}

func TestProperties_OmitsUnknowns(t *testing.T) {
	a := nps.Assess(model.Response{ID: "x", Name: "-", NPS: score(4), TicketStatus: model.StatusOpen}, now)
	props := Properties(a)

	assert.NotContains(t, props, PropAge)
	assert.NotContains(t, props, PropEmail)
	assert.NotContains(t, props, PropFeedback)
	assert.Equal(t, "Urgent", props[PropPriority].(notionapi.SelectProperty).Select.Name)
}

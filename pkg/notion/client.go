// Package notion mirrors detractor follow-ups onto a Notion database.
package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/nps-cli/internal/config"
)

// Client is the follow-up board surface used by escalation.
type Client interface {
	// FindPages returns the pages of dbID whose rich_text property equals value.
	FindPages(ctx context.Context, dbID, property, value string) ([]notionapi.Page, error)
	// CreatePage adds a page with props to dbID.
	CreatePage(ctx context.Context, dbID string, props notionapi.Properties) (*notionapi.Page, error)
	// UpdatePage overwrites props on an existing page.
	UpdatePage(ctx context.Context, pageID string, props notionapi.Properties) (*notionapi.Page, error)
}

type boardClient struct {
	api     *notionapi.Client
	limiter *rate.Limiter
}

// NewClient builds a board client from cfg. A non-positive RateLimit
// disables throttling.
func NewClient(cfg config.NotionConfig) Client {
	c := &boardClient{api: notionapi.NewClient(notionapi.Token(cfg.Token))}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(int(cfg.RateLimit), 1))
	}
	return c
}

func (c *boardClient) throttle(ctx context.Context, op string) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrapf(err, "notion: %s: rate limit", op)
	}
	return nil
}

// QueryDatabase fetches one page of query results.
func (c *boardClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if err := c.throttle(ctx, "query"); err != nil {
		return nil, err
	}
	resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
	if err != nil {
		return nil, eris.Wrapf(err, "notion: query database %s", dbID)
	}
	return resp, nil
}

func (c *boardClient) FindPages(ctx context.Context, dbID, property, value string) ([]notionapi.Page, error) {
	return FindByText(ctx, c, dbID, property, value)
}

func (c *boardClient) CreatePage(ctx context.Context, dbID string, props notionapi.Properties) (*notionapi.Page, error) {
	if err := c.throttle(ctx, "create page"); err != nil {
		return nil, err
	}
	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: props,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "notion: create page in %s", dbID)
	}
	return page, nil
}

func (c *boardClient) UpdatePage(ctx context.Context, pageID string, props notionapi.Properties) (*notionapi.Page, error) {
	if err := c.throttle(ctx, "update page"); err != nil {
		return nil, err
	}
	page, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: props})
	if err != nil {
		return nil, eris.Wrapf(err, "notion: update page %s", pageID)
	}
	return page, nil
}

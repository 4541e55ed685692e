package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Querier runs a single page of a database query.
type Querier interface {
	QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

// QueryAll fetches all pages from a Notion database, following cursors.
func QueryAll(ctx context.Context, c Querier, dbID string, query *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	if query != nil {
		req.Filter = query.Filter
		req.Sorts = query.Sorts
		req.PageSize = query.PageSize
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "notion: query all")
		}

		resp, err := c.QueryDatabase(ctx, dbID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}
		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		req = &notionapi.DatabaseQueryRequest{
			Filter:      req.Filter,
			Sorts:       req.Sorts,
			PageSize:    req.PageSize,
			StartCursor: resp.NextCursor,
		}
	}

	return all, nil
}

// FindByText returns the pages whose rich_text property equals value.
func FindByText(ctx context.Context, c Querier, dbID, property, value string) ([]notionapi.Page, error) {
	query := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: property,
			RichText: &notionapi.TextFilterCondition{
				Equals: value,
			},
		},
	}
	pages, err := QueryAll(ctx, c, dbID, query)
	if err != nil {
		return nil, eris.Wrapf(err, "notion: find %s = %q", property, value)
	}
	return pages, nil
}

package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/felixgeelhaar/framing-go/domain/framing"
	"github.com/felixgeelhaar/framing-go/domain/record"
	"github.com/felixgeelhaar/framing-go/infrastructure/logging"
)

// Keyword database columns: Keyword (title), Role (select), Weight (number).
// Rows with an unknown role are skipped; a missing weight defaults to 1.0.

// FetchKeywords reads all tagged keywords from the keyword database. The
// result feeds the pipeline's keyword-sync stage.
func (s *Store) FetchKeywords(ctx context.Context) ([]framing.Keyword, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keywords []framing.Keyword
	var cursor notionapi.Cursor

	for {
		resp, err := s.client.Database.Query(ctx, s.keywordDB, &notionapi.DatabaseQueryRequest{
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, fmt.Errorf("query keyword database: %w", err)
		}

		for _, page := range resp.Results {
			kw, ok := keywordFromPage(page)
			if !ok {
				continue
			}
			keywords = append(keywords, kw)
		}

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	logging.Debug().
		Add(logging.Count("keywords", len(keywords))).
		Msg("keyword database fetched")
	return keywords, nil
}

func keywordFromPage(page notionapi.Page) (framing.Keyword, bool) {
	term := titleValue(page.Properties["Keyword"])
	if term == "" {
		return framing.Keyword{}, false
	}

	role := framing.Orientation(selectValue(page.Properties["Role"]))
	if !role.Valid() {
		return framing.Keyword{}, false
	}

	weight := 1.0
	if p, ok := page.Properties["Weight"].(*notionapi.NumberProperty); ok && p.Number > 0 {
		weight = p.Number
	}

	return framing.Keyword{
		Term:   term,
		Role:   role,
		Weight: weight,
	}, true
}

var _ record.KeywordSource = (*Store)(nil)

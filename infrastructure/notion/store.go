// Package notion provides the Notion-backed record store and the keyword
// database reader.
package notion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/felixgeelhaar/framing-go/domain/record"
)

// Config configures the Notion adapter.
type Config struct {
	// Token is the integration token.
	Token string

	// RecordDatabaseID is the database the record store writes to.
	RecordDatabaseID string

	// KeywordDatabaseID is the database the keyword reader queries.
	KeywordDatabaseID string
}

// Store is a Notion-backed implementation of record.Store. Each record is a
// page in the record database; text values beyond record.TextLimit are
// truncated on write, so the round trip is lossy past that point.
type Store struct {
	client    *notionapi.Client
	recordDB  notionapi.DatabaseID
	keywordDB notionapi.DatabaseID
}

// NewStore creates a Notion store from the given configuration.
func NewStore(cfg Config) *Store {
	return &Store{
		client:    notionapi.NewClient(notionapi.Token(cfg.Token)),
		recordDB:  notionapi.DatabaseID(cfg.RecordDatabaseID),
		keywordDB: notionapi.DatabaseID(cfg.KeywordDatabaseID),
	}
}

// NewStoreFromClient creates a store from an existing client.
func NewStoreFromClient(client *notionapi.Client, recordDB, keywordDB string) *Store {
	return &Store{
		client:    client,
		recordDB:  notionapi.DatabaseID(recordDB),
		keywordDB: notionapi.DatabaseID(keywordDB),
	}
}

// Save creates one page in the record database.
func (s *Store) Save(ctx context.Context, rec record.Record) (record.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return record.SaveResult{}, err
	}

	page, err := s.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: s.recordDB,
		},
		Properties: recordProperties(rec),
	})
	if err != nil {
		return record.SaveResult{}, fmt.Errorf("create record page: %w", err)
	}

	return record.SaveResult{
		RecordID: page.ID.String(),
		URL:      page.URL,
	}, nil
}

// Load retrieves a record page by ID.
func (s *Store) Load(ctx context.Context, id string) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}

	if id == "" {
		return record.Record{}, record.ErrInvalidRecordID
	}

	page, err := s.client.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		if isNotFound(err) {
			return record.Record{}, record.ErrRecordNotFound
		}
		return record.Record{}, fmt.Errorf("get record page: %w", err)
	}

	return recordFromProperties(page.Properties), nil
}

// recordProperties maps the ten-field schema to Notion page properties.
// Project Name is the title column, Research Type a select, everything else
// rich text.
func recordProperties(rec record.Record) notionapi.Properties {
	props := notionapi.Properties{
		"Project Name": notionapi.TitleProperty{
			Title: richText(record.Truncate(rec.ProjectName)),
		},
	}

	if rec.ResearchType != "" {
		props["Research Type"] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: rec.ResearchType},
		}
	}

	for name, value := range map[string]string{
		"Owner":        rec.Owner,
		"Background":   rec.Background,
		"Purpose":      rec.Purpose,
		"RQ":           rec.RQ,
		"Method":       rec.Method,
		"Result":       rec.Result,
		"Contribution": rec.Contribution,
		"Year":         rec.Year,
	} {
		if value == "" {
			continue
		}
		props[name] = notionapi.RichTextProperty{
			RichText: richText(record.Truncate(value)),
		}
	}

	return props
}

// recordFromProperties maps page properties back onto the record schema.
// Absent or foreign-typed properties yield empty strings.
func recordFromProperties(props notionapi.Properties) record.Record {
	return record.Record{
		ProjectName:  titleValue(props["Project Name"]),
		Owner:        textValue(props["Owner"]),
		ResearchType: selectValue(props["Research Type"]),
		Background:   textValue(props["Background"]),
		Purpose:      textValue(props["Purpose"]),
		RQ:           textValue(props["RQ"]),
		Method:       textValue(props["Method"]),
		Result:       textValue(props["Result"]),
		Contribution: textValue(props["Contribution"]),
		Year:         textValue(props["Year"]),
	}
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: s}},
	}
}

func titleValue(prop notionapi.Property) string {
	p, ok := prop.(*notionapi.TitleProperty)
	if !ok {
		return ""
	}
	return joinRichText(p.Title)
}

func textValue(prop notionapi.Property) string {
	p, ok := prop.(*notionapi.RichTextProperty)
	if !ok {
		return ""
	}
	return joinRichText(p.RichText)
}

func selectValue(prop notionapi.Property) string {
	p, ok := prop.(*notionapi.SelectProperty)
	if !ok {
		return ""
	}
	return p.Select.Name
}

func joinRichText(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
		if part.PlainText == "" && part.Text != nil {
			b.WriteString(part.Text.Content)
		}
	}
	return b.String()
}

func isNotFound(err error) bool {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == 404
	}
	return false
}

var _ record.Store = (*Store)(nil)

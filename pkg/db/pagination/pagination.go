// Package pagination implements cursor-based paging over created_at/id
// ordered listings.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50" validate:"gte=1,lte=250"`
}

type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// Apply attaches the cursor condition and the limit (one extra row to detect
// a further page) to a listing ordered by created_at desc, id desc.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	size := p.PageSize
	if size <= 0 {
		size = 50
	}
	if p.PageToken != "" {
		if cursor, err := DecodeCursor(p.PageToken); err == nil && cursor != nil {
			if ts, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt); err == nil {
				stmt = stmt.Where("(created_at, id) < (?, ?)", ts, cursor.ID)
			}
		}
	}
	return stmt.Limit(size + 1)
}

// BuildCursorPageInfo derives paging info from a page fetched with one extra
// row.
func BuildCursorPageInfo[T any](data []*T, limit int, extractCursor func(*T) string) *PageInfo {
	if len(data) == 0 {
		return &PageInfo{HasMore: false}
	}

	hasMore := false
	if len(data) > limit {
		hasMore = true
		data = data[:limit]
	}

	return &PageInfo{
		HasMore:       hasMore,
		NextPageToken: extractCursor(data[len(data)-1]),
	}
}

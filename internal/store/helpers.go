package store

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// int64sToArgs converts []int64 to []any for use with database/sql.
func int64sToArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// marshalSegments converts a type path's segments to JSON text for storage.
// An empty path is stored as NULL.
func marshalSegments(segs []string) sql.NullString {
	if len(segs) == 0 {
		return sql.NullString{}
	}
	b, _ := json.Marshal(segs)
	return sql.NullString{String: string(b), Valid: true}
}

// unmarshalSegments converts stored JSON text back to segments.
func unmarshalSegments(s sql.NullString) []string {
	if !s.Valid || s.String == "" || s.String == "null" {
		return nil
	}
	var segs []string
	_ = json.Unmarshal([]byte(s.String), &segs)
	return segs
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

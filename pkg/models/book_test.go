package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBookRecordDecodesMixedTypes(t *testing.T) {
	var b BookRecord
	err := json.Unmarshal([]byte(`{"id": 1700000000000, "title": "채식주의자", "isbn": 9788936433598, "level": null, "genre": true}`), &b)
	require.NoError(t, err)

	require.Equal(t, "1700000000000", b.ID)
	require.Equal(t, "채식주의자", b.Title)
	require.Equal(t, "9788936433598", b.ISBN)
	require.Equal(t, "", b.Level)
	require.Equal(t, "true", b.Genre)
}

func TestBookRecordEncodesEmptyIDAsNull(t *testing.T) {
	out, err := json.Marshal(BookRecord{Title: "무제"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	v, ok := raw["id"]
	require.True(t, ok)
	require.Nil(t, v)
	require.Equal(t, "", raw["author"])
}

func TestBookRecordRoundTripKeepsID(t *testing.T) {
	in := BookRecord{ID: "42", Title: "t", CreatedAt: "2024-01-02 03:04:05"}
	out, err := json.Marshal(in)
	require.NoError(t, err)

	var back BookRecord
	require.NoError(t, json.Unmarshal(out, &back))
	require.Equal(t, in, back)
}

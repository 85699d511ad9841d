package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// BookRecord is the canonical catalog entry shared by the remote catalog,
// the local snapshot and the UI.
//
// Sources disagree on value types (the spreadsheet backend emits numeric ids
// and ISBNs), so decoding accepts strings, numbers, booleans and null for
// every field. An empty ID encodes as null.
type BookRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	ISBN        string `json:"isbn"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Division    string `json:"division"`
	Level       string `json:"level"`
	Subject     string `json:"subject"`
	Genre       string `json:"genre"`
	Translator  string `json:"translator"`
	CreatedAt   string `json:"created_at"`
}

type bookRecordJSON struct {
	ID          *string `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Publisher   string  `json:"publisher"`
	ISBN        string  `json:"isbn"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Division    string  `json:"division"`
	Level       string  `json:"level"`
	Subject     string  `json:"subject"`
	Genre       string  `json:"genre"`
	Translator  string  `json:"translator"`
	CreatedAt   string  `json:"created_at"`
}

func (b BookRecord) MarshalJSON() ([]byte, error) {
	out := bookRecordJSON{
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		ISBN:        b.ISBN,
		Image:       b.Image,
		Description: b.Description,
		Category:    b.Category,
		Division:    b.Division,
		Level:       b.Level,
		Subject:     b.Subject,
		Genre:       b.Genre,
		Translator:  b.Translator,
		CreatedAt:   b.CreatedAt,
	}
	if b.ID != "" {
		id := b.ID
		out.ID = &id
	}
	return json.Marshal(out)
}

func (b *BookRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode book record: %w", err)
	}

	*b = BookRecord{
		ID:          Stringify(raw["id"]),
		Title:       Stringify(raw["title"]),
		Author:      Stringify(raw["author"]),
		Publisher:   Stringify(raw["publisher"]),
		ISBN:        Stringify(raw["isbn"]),
		Image:       Stringify(raw["image"]),
		Description: Stringify(raw["description"]),
		Category:    Stringify(raw["category"]),
		Division:    Stringify(raw["division"]),
		Level:       Stringify(raw["level"]),
		Subject:     Stringify(raw["subject"]),
		Genre:       Stringify(raw["genre"]),
		Translator:  Stringify(raw["translator"]),
		CreatedAt:   Stringify(raw["created_at"]),
	}
	return nil
}

// Stringify renders a decoded JSON scalar as text. Objects and arrays
// become "" since no catalog field carries them.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

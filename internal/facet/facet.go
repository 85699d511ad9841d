package facet

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"bookmap/pkg/models"
)

// Type is a facet dimension, named by its UI label.
type Type string

const (
	All        Type = "전체"
	Category   Type = "카테고리"
	Level      Type = "단계"
	Author     Type = "저자"
	Translator Type = "역자"
	Subject    Type = "주제"
	Genre      Type = "장르"
	Division   Type = "구분"
)

// Types lists the selectable dimensions in display order, All excluded.
var Types = []Type{Category, Level, Author, Translator, Subject, Genre, Division}

var (
	divisionOrder = []string{"국내서", "국외서", "원서", "번역서"}
	levelOrder    = []string{"입문", "초급", "중급", "고급", "전문"}
)

const delimiters = ",/|·•、，／｜・；;"

func ParseType(s string) (Type, bool) {
	t := Type(strings.TrimSpace(s))
	if t == "" || t == All {
		return All, true
	}
	for _, known := range Types {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// CanonicalDivision maps free-text division variants onto the fixed set.
// Translation markers win over overseas markers, which win over domestic.
func CanonicalDivision(s string) string {
	v := strings.TrimSpace(s)
	switch {
	case v == "":
		return v
	case strings.Contains(v, "번역"):
		return "번역서"
	case strings.Contains(v, "원서"):
		return "원서"
	case strings.Contains(v, "국외"), strings.Contains(v, "해외"), strings.Contains(v, "외국"):
		return "국외서"
	case strings.Contains(v, "국내"):
		return "국내서"
	default:
		return v
	}
}

// Split breaks a multi-valued field into trimmed, non-empty tags.
func Split(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(delimiters, r)
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValuesOf returns the facet values a single book carries for t.
func ValuesOf(b models.BookRecord, t Type) []string {
	var raw string
	switch t {
	case Category:
		return Split(b.Category)
	case Subject:
		return Split(b.Subject)
	case Genre:
		return Split(b.Genre)
	case Division:
		raw = CanonicalDivision(b.Division)
	case Level:
		raw = b.Level
	case Author:
		raw = b.Author
	case Translator:
		raw = b.Translator
	default:
		return nil
	}
	if raw = strings.TrimSpace(raw); raw == "" {
		return nil
	}
	return []string{raw}
}

// Matches reports whether b belongs to the selection f. A nil value matches
// any book that carries at least one value of the type.
func Matches(b models.BookRecord, f models.Facet) bool {
	t, ok := ParseType(f.Type)
	if !ok {
		return false
	}
	if t == All {
		return true
	}
	vals := ValuesOf(b, t)
	if f.Value == nil {
		return len(vals) > 0
	}
	want := strings.TrimSpace(*f.Value)
	if t == Division {
		want = CanonicalDivision(want)
	}
	for _, v := range vals {
		if v == want {
			return true
		}
	}
	return false
}

// Values returns the distinct observed values of t, sorted with Korean
// collation. Division and level put their canonical scale first.
func Values(books []models.BookRecord, t Type) []string {
	seen := make(map[string]struct{})
	for _, b := range books {
		for _, v := range ValuesOf(b, t) {
			seen[v] = struct{}{}
		}
	}

	switch t {
	case Division:
		return ordered(seen, divisionOrder)
	case Level:
		return ordered(seen, levelOrder)
	default:
		return ordered(seen, nil)
	}
}

func ordered(seen map[string]struct{}, canonical []string) []string {
	out := make([]string, 0, len(seen))
	for _, v := range canonical {
		if _, ok := seen[v]; ok {
			out = append(out, v)
			delete(seen, v)
		}
	}

	rest := make([]string, 0, len(seen))
	for v := range seen {
		rest = append(rest, v)
	}
	// collators are not safe for concurrent use
	col := collate.New(language.Korean)
	sort.SliceStable(rest, func(i, j int) bool {
		if c := col.CompareString(rest[i], rest[j]); c != 0 {
			return c < 0
		}
		return rest[i] < rest[j]
	})
	return append(out, rest...)
}

// Group is one dimension's vocabulary.
type Group struct {
	Type   Type     `json:"type"`
	Values []string `json:"values"`
}

func Vocabulary(books []models.BookRecord) []Group {
	out := make([]Group, 0, len(Types))
	for _, t := range Types {
		out = append(out, Group{Type: t, Values: Values(books, t)})
	}
	return out
}

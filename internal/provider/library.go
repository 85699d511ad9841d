package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"bookmap/internal/normalize"
	"bookmap/pkg/models"
	"bookmap/pkg/utils"
)

// ErrUnknownVariant is returned for a provider name that is not one of the
// national library variants.
var ErrUnknownVariant = errors.New("unknown library provider")

// Variant selects one of the national library APIs.
type Variant string

const (
	// ISBN/CIP registry ("seoji"), upper-case field names.
	Seoji Variant = "seoji"
	// Integrated catalogue search, camel-case *Info field names.
	Kolisnet Variant = "kolisnet"
)

func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case Seoji, Kolisnet:
		return v, nil
	case "":
		return Seoji, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// LibraryQuery searches by ISBN when set, by keyword otherwise.
type LibraryQuery struct {
	ISBN    string
	Keyword string
}

// libraryVariant isolates one API's request shape and field mapping.
type libraryVariant interface {
	path() string
	params(key string, q LibraryQuery) map[string]string
	decode(body []byte) ([]models.LibraryItem, error)
}

type NationalLibrary struct {
	http *resty.Client
	keys map[Variant]string
}

func NewNationalLibrary(baseURL, seojiKey, kolisnetKey string) *NationalLibrary {
	return &NationalLibrary{
		http: newClient(baseURL),
		keys: map[Variant]string{
			Seoji:    strings.TrimSpace(seojiKey),
			Kolisnet: strings.TrimSpace(kolisnetKey),
		},
	}
}

func (n *NationalLibrary) Search(ctx context.Context, v Variant, q LibraryQuery) ([]models.LibraryItem, error) {
	op := "library " + string(v)

	var impl libraryVariant
	switch v {
	case Seoji:
		impl = seojiVariant{}
	case Kolisnet:
		impl = kolisnetVariant{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}

	key := n.keys[v]
	if key == "" {
		return nil, fmt.Errorf("%s: %w: api key", op, utils.ErrMissingConfiguration)
	}

	resp, err := n.http.R().
		SetContext(ctx).
		SetQueryParams(impl.params(key, q)).
		Get(impl.path())
	if err != nil || resp.IsError() {
		return nil, unavailable(op, resp, err)
	}

	items, err := impl.decode(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, normalize.ErrParseFailure, err)
	}
	return normalize.DropUntitled(items, func(it models.LibraryItem) string { return it.Title }), nil
}

type seojiVariant struct{}

type seojiResponse struct {
	Docs []struct {
		Title          string `json:"TITLE"`
		Author         string `json:"AUTHOR"`
		Publisher      string `json:"PUBLISHER"`
		EAISBN         string `json:"EA_ISBN"`
		SetISBN        string `json:"SET_ISBN"`
		PublishPredate string `json:"PUBLISH_PREDATE"`
		TitleURL       string `json:"TITLE_URL"`
		BookSummary    string `json:"BOOK_SUMMARY"`
	} `json:"docs"`
}

func (seojiVariant) path() string { return "/seoji/SearchApi.do" }

func (seojiVariant) params(key string, q LibraryQuery) map[string]string {
	p := map[string]string{
		"cert_key":     key,
		"result_style": "json",
		"page_no":      "1",
		"page_size":    "10",
	}
	if q.ISBN != "" {
		p["isbn"] = q.ISBN
	} else {
		p["title"] = q.Keyword
	}
	return p
}

func (seojiVariant) decode(body []byte) ([]models.LibraryItem, error) {
	var r seojiResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	out := make([]models.LibraryItem, 0, len(r.Docs))
	for _, d := range r.Docs {
		isbn := strings.TrimSpace(d.EAISBN)
		if isbn == "" {
			isbn = strings.TrimSpace(d.SetISBN)
		}
		out = append(out, models.LibraryItem{
			Title:       strings.TrimSpace(d.Title),
			Author:      strings.TrimSpace(d.Author),
			Publisher:   strings.TrimSpace(d.Publisher),
			ISBN:        isbn,
			PubYear:     yearPrefix(d.PublishPredate),
			Image:       strings.TrimSpace(d.TitleURL),
			Description: normalize.CleanText(d.BookSummary),
		})
	}
	return out, nil
}

type kolisnetVariant struct{}

type kolisnetResponse struct {
	Result []struct {
		TitleInfo   string `json:"titleInfo"`
		AuthorInfo  string `json:"authorInfo"`
		PubInfo     string `json:"pubInfo"`
		ISBN        string `json:"isbn"`
		PubYearInfo string `json:"pubYearInfo"`
		ImageURL    string `json:"imageUrl"`
		Abstract    string `json:"abstractInfo"`
	} `json:"result"`
}

func (kolisnetVariant) path() string { return "/NL/search/openApi/search.do" }

func (kolisnetVariant) params(key string, q LibraryQuery) map[string]string {
	kwd := q.Keyword
	if q.ISBN != "" {
		kwd = q.ISBN
	}
	return map[string]string{
		"key":        key,
		"apiType":    "json",
		"srchTarget": "total",
		"kwd":        kwd,
		"pageNum":    "1",
		"pageSize":   "10",
	}
}

func (kolisnetVariant) decode(body []byte) ([]models.LibraryItem, error) {
	var r kolisnetResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	out := make([]models.LibraryItem, 0, len(r.Result))
	for _, d := range r.Result {
		// titles carry search-highlight spans
		out = append(out, models.LibraryItem{
			Title:       normalize.CleanText(d.TitleInfo),
			Author:      normalize.CleanText(d.AuthorInfo),
			Publisher:   normalize.CleanText(d.PubInfo),
			ISBN:        strings.TrimSpace(d.ISBN),
			PubYear:     yearPrefix(d.PubYearInfo),
			Image:       strings.TrimSpace(d.ImageURL),
			Description: normalize.CleanText(d.Abstract),
		})
	}
	return out, nil
}

func yearPrefix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 4 {
		return s[:4]
	}
	return s
}

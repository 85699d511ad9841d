package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"bookmap/internal/normalize"
	"bookmap/pkg/models"
	"bookmap/pkg/utils"
)

const retailerAPIVersion = "20131101"

// Retailer is the book retailer's JSON API: a lookup-by-ISBN endpoint and a
// keyword search endpoint. Its "js" output is loose JSON and errors arrive
// inside 200 responses.
type Retailer struct {
	http   *resty.Client
	ttbKey string
}

func NewRetailer(baseURL, ttbKey string) *Retailer {
	return &Retailer{http: newClient(baseURL), ttbKey: strings.TrimSpace(ttbKey)}
}

// Response is one decoded retailer answer. ErrorCode/ErrorMessage are set
// when the provider reported a logical error.
type Response struct {
	Items        []models.LookupItem
	ErrorCode    string
	ErrorMessage string
}

func (r Response) HasError() bool {
	return r.ErrorCode != "" || r.ErrorMessage != ""
}

// Lookup queries ItemLookUp by ISBN-13.
func (r *Retailer) Lookup(ctx context.Context, isbn13 string) (Response, error) {
	return r.get(ctx, "retailer lookup", "/ItemLookUp.aspx", map[string]string{
		"ItemIdType": "ISBN13",
		"ItemId":     isbn13,
	})
}

// Search queries ItemSearch by keyword, books only.
func (r *Retailer) Search(ctx context.Context, query string) (Response, error) {
	return r.get(ctx, "retailer search", "/ItemSearch.aspx", map[string]string{
		"Query":        query,
		"QueryType":    "Keyword",
		"SearchTarget": "Book",
		"MaxResults":   "10",
		"start":        "1",
	})
}

func (r *Retailer) get(ctx context.Context, op, path string, params map[string]string) (Response, error) {
	if r.ttbKey == "" {
		return Response{}, fmt.Errorf("%s: %w: retailer ttb key", op, utils.ErrMissingConfiguration)
	}

	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("ttbkey", r.ttbKey).
		SetQueryParam("output", "js").
		SetQueryParam("Version", retailerAPIVersion).
		SetQueryParam("Cover", "Big").
		Get(path)
	if err != nil || resp.IsError() {
		return Response{}, unavailable(op, resp, err)
	}

	m, err := normalize.LooseJSON(resp.Body())
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", op, err)
	}
	return decodeRetailer(m), nil
}

func decodeRetailer(m map[string]any) Response {
	var out Response
	out.ErrorCode, out.ErrorMessage, _ = normalize.ProviderError(m)

	recs := normalize.Records(m, "item")
	items := make([]models.LookupItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, retailerItem(rec))
	}
	out.Items = normalize.DropUntitled(items, func(it models.LookupItem) string { return it.Title })
	return out
}

func retailerItem(rec map[string]any) models.LookupItem {
	isbn := normalize.Field(rec, "isbn13")
	if isbn == "" {
		isbn = normalize.Field(rec, "isbn")
	}
	return models.LookupItem{
		Title:       normalize.Field(rec, "title"),
		Author:      normalize.Field(rec, "author"),
		Publisher:   normalize.Field(rec, "publisher"),
		ISBN:        isbn,
		Image:       normalize.Field(rec, "cover"),
		Description: normalize.CleanText(normalize.Field(rec, "description")),
	}
}

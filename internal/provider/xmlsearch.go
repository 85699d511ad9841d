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

var searchTags = []string{
	"title", "author", "publisher", "isbn", "isbn13", "cover",
	"description", "pubDate", "link", "priceStandard", "priceSales",
}

// XMLSearch is the keyword search endpoint in its XML output mode.
type XMLSearch struct {
	http   *resty.Client
	ttbKey string
}

func NewXMLSearch(baseURL, ttbKey string) *XMLSearch {
	return &XMLSearch{http: newClient(baseURL), ttbKey: strings.TrimSpace(ttbKey)}
}

// Search returns the matching books. A provider-reported error comes back as
// *ProviderError.
func (s *XMLSearch) Search(ctx context.Context, query string, limit int) ([]models.SearchItem, error) {
	const op = "xml search"
	if s.ttbKey == "" {
		return nil, fmt.Errorf("%s: %w: retailer ttb key", op, utils.ErrMissingConfiguration)
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ttbkey":       s.ttbKey,
			"Query":        query,
			"QueryType":    "Keyword",
			"SearchTarget": "Book",
			"MaxResults":   fmt.Sprintf("%d", limit),
			"start":        "1",
			"output":       "xml",
			"Version":      retailerAPIVersion,
		}).
		Get("/ItemSearch.aspx")
	if err != nil || resp.IsError() {
		return nil, unavailable(op, resp, err)
	}

	body := resp.String()
	if code, msg, ok := normalize.XMLError(body); ok {
		return nil, &ProviderError{Code: code, Message: msg}
	}
	if !strings.Contains(body, "<") {
		return nil, fmt.Errorf("%s: %w: not xml", op, normalize.ErrParseFailure)
	}

	recs := normalize.XMLItems(body, searchTags)
	items := make([]models.SearchItem, 0, len(recs))
	for _, rec := range recs {
		isbn := rec["isbn13"]
		if isbn == "" {
			isbn = rec["isbn"]
		}
		items = append(items, models.SearchItem{
			LookupItem: models.LookupItem{
				Title:       rec["title"],
				Author:      rec["author"],
				Publisher:   rec["publisher"],
				ISBN:        isbn,
				Image:       rec["cover"],
				Description: normalize.CleanText(rec["description"]),
			},
			PubDate:       rec["pubDate"],
			Link:          rec["link"],
			PriceStandard: normalize.ParseInt(rec["priceStandard"]),
			PriceSales:    normalize.ParseInt(rec["priceSales"]),
		})
	}
	return normalize.DropUntitled(items, func(it models.SearchItem) string { return it.Title }), nil
}

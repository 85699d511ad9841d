package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmap/internal/normalize"
	"bookmap/pkg/utils"
)

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestRetailerLookupParsesLooseBody(t *testing.T) {
	var gotQuery map[string]string
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ItemLookUp.aspx", r.URL.Path)
		gotQuery = map[string]string{
			"ItemId":     r.URL.Query().Get("ItemId"),
			"ItemIdType": r.URL.Query().Get("ItemIdType"),
			"ttbkey":     r.URL.Query().Get("ttbkey"),
			"output":     r.URL.Query().Get("output"),
		}
		fmt.Fprint(w, `{"version":"20131101","item":[
			{"title":"채식주의자","author":"한강 (지은이)","publisher":"창비","isbn":"8936433598","isbn13":"9788936433598","cover":"https://img/cover.jpg","description":"<p>세 편의 &quot;연작&quot;</p>"},
			{"title":"","isbn13":"9780000000000"}
		]};`)
	})

	res, err := NewRetailer(srv.URL, "key").Lookup(context.Background(), "9788936433598")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"ItemId": "9788936433598", "ItemIdType": "ISBN13", "ttbkey": "key", "output": "js"}, gotQuery)
	require.False(t, res.HasError())
	require.Len(t, res.Items, 1)

	it := res.Items[0]
	require.Equal(t, "채식주의자", it.Title)
	require.Equal(t, "9788936433598", it.ISBN)
	require.Equal(t, "https://img/cover.jpg", it.Image)
	require.Equal(t, `세 편의 "연작"`, it.Description)
}

func TestRetailerFallsBackToISBN10Field(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"item":[{"title":"T","isbn":"8936433598"}]}`)
	})
	res, err := NewRetailer(srv.URL, "key").Search(context.Background(), "9788936433598")
	require.NoError(t, err)
	require.Equal(t, "8936433598", res.Items[0].ISBN)
	require.Equal(t, "", res.Items[0].Author)
}

func TestRetailerReportsProviderError(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{'errorCode':8,'errorMessage':'not found'}`)
	})
	res, err := NewRetailer(srv.URL, "key").Lookup(context.Background(), "9788936433598")
	require.NoError(t, err)
	require.True(t, res.HasError())
	require.Equal(t, "8", res.ErrorCode)
	require.Equal(t, "not found", res.ErrorMessage)
	require.Empty(t, res.Items)
}

func TestRetailerTransportAndParseFailures(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ItemSearch.aspx" {
			fmt.Fprint(w, "<html>maintenance</html>")
			return
		}
		http.Error(w, "boom", http.StatusBadGateway)
	})
	rt := NewRetailer(srv.URL, "key")

	_, err := rt.Lookup(context.Background(), "9788936433598")
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = rt.Search(context.Background(), "x")
	require.ErrorIs(t, err, normalize.ErrParseFailure)
}

func TestRetailerMissingKey(t *testing.T) {
	_, err := NewRetailer("http://127.0.0.1:1", " ").Lookup(context.Background(), "9788936433598")
	require.ErrorIs(t, err, utils.ErrMissingConfiguration)
}

func TestXMLSearch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "xml", r.URL.Query().Get("output"))
		assert.Equal(t, "Book", r.URL.Query().Get("SearchTarget"))
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?><object>
			<item itemId="1"><title><![CDATA[소년이 온다]]></title><author>한강</author><isbn13>9788936434120</isbn13>
			<priceStandard>15000</priceStandard><priceSales></priceSales><pubDate>2014-05-19</pubDate></item>
			<item itemId="2"><title></title></item>
		</object>`)
	})

	items, err := NewXMLSearch(srv.URL, "key").Search(context.Background(), "한강", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "소년이 온다", items[0].Title)
	require.Equal(t, "9788936434120", items[0].ISBN)
	require.Equal(t, "2014-05-19", items[0].PubDate)
	require.NotNil(t, items[0].PriceStandard)
	require.Equal(t, 15000, *items[0].PriceStandard)
	require.Nil(t, items[0].PriceSales)
}

func TestXMLSearchProviderError(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<error xmlns="http://www.aladin.co.kr/ttb/apiguide.aspx"><errorCode>100</errorCode><errorMessage>Invalid TTBKey</errorMessage></error>`)
	})
	_, err := NewXMLSearch(srv.URL, "key").Search(context.Background(), "x", 10)

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "100", perr.Code)
	require.Equal(t, "Invalid TTBKey", perr.Message)
}

func TestNationalLibraryVariants(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/seoji/SearchApi.do":
			assert.Equal(t, "seoji-key", r.URL.Query().Get("cert_key"))
			assert.Equal(t, "9788936433598", r.URL.Query().Get("isbn"))
			fmt.Fprint(w, `{"TOTAL_COUNT":"1","docs":[{"TITLE":"채식주의자","AUTHOR":"한강 지음","PUBLISHER":"창비","EA_ISBN":"9788936433598","PUBLISH_PREDATE":"20071030","TITLE_URL":"https://img/1.jpg"}]}`)
		case "/NL/search/openApi/search.do":
			assert.Equal(t, "kolis-key", r.URL.Query().Get("key"))
			assert.Equal(t, "채식주의자", r.URL.Query().Get("kwd"))
			fmt.Fprint(w, `{"total":2,"result":[{"titleInfo":"<span class=\"searching_txt\">채식주의자</span>","authorInfo":"한강","pubInfo":"창비","isbn":"9788936433598","pubYearInfo":"2007","imageUrl":""},{"titleInfo":""}]}`)
		default:
			http.NotFound(w, r)
		}
	})
	nl := NewNationalLibrary(srv.URL, "seoji-key", "kolis-key")

	items, err := nl.Search(context.Background(), Seoji, LibraryQuery{ISBN: "9788936433598"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "채식주의자", items[0].Title)
	require.Equal(t, "2007", items[0].PubYear)
	require.Equal(t, "https://img/1.jpg", items[0].Image)
	require.Equal(t, "", items[0].Description)

	items, err = nl.Search(context.Background(), Kolisnet, LibraryQuery{Keyword: "채식주의자"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "채식주의자", items[0].Title)
	require.Equal(t, "9788936433598", items[0].ISBN)
}

func TestNationalLibraryErrors(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})
	nl := NewNationalLibrary(srv.URL, "k", "")

	_, err := nl.Search(context.Background(), Seoji, LibraryQuery{ISBN: "1"})
	require.ErrorIs(t, err, normalize.ErrParseFailure)

	_, err = nl.Search(context.Background(), Kolisnet, LibraryQuery{Keyword: "x"})
	require.ErrorIs(t, err, utils.ErrMissingConfiguration)

	_, err = ParseVariant("worldcat")
	require.ErrorIs(t, err, ErrUnknownVariant)

	v, err := ParseVariant(" KOLISNET ")
	require.NoError(t, err)
	require.Equal(t, Kolisnet, v)
}

package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"bookmap/internal/lookupcache"
	"bookmap/internal/normalize"
	"bookmap/internal/provider"
	"bookmap/internal/reconcile"
	"bookmap/pkg/models"
	"bookmap/pkg/utils"
)

type fakeResolver struct {
	calls int
	res   reconcile.Result
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, raw string) (reconcile.Result, error) {
	f.calls++
	return f.res, f.err
}

type fakeSearch struct {
	items []models.SearchItem
	err   error
}

func (f fakeSearch) Search(context.Context, string, int) ([]models.SearchItem, error) {
	return f.items, f.err
}

type fakeLibrary struct {
	got   provider.LibraryQuery
	items []models.LibraryItem
	err   error
}

func (f *fakeLibrary) Search(_ context.Context, _ provider.Variant, q provider.LibraryQuery) ([]models.LibraryItem, error) {
	f.got = q
	return f.items, f.err
}

type memCache map[string]lookupcache.Entry

func (m memCache) Get(_ context.Context, code string, _ time.Duration) (*lookupcache.Entry, error) {
	if e, ok := m[code]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m memCache) Put(_ context.Context, e lookupcache.Entry) error {
	m[e.ISBN13] = e
	return nil
}

func do(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

var hit = []models.LookupItem{{Title: "채식주의자", ISBN: "9788936433598"}}

func TestBookSuccessIsCached(t *testing.T) {
	res := &fakeResolver{res: reconcile.Result{State: reconcile.Succeeded, Strategy: reconcile.StrategyLookup, Items: hit}}
	cache := memCache{}
	h := &Handler{Resolver: res, Cache: cache, CacheTTL: time.Hour}

	w := do(t, h, "/api/book?isbn=89-364-3359-8")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ISBN     string              `json:"isbn"`
		Items    []models.LookupItem `json:"items"`
		Strategy string              `json:"strategy"`
		Cached   bool                `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "9788936433598", body.ISBN)
	require.Equal(t, hit, body.Items)
	require.False(t, body.Cached)
	require.Contains(t, cache, "9788936433598")

	w = do(t, h, "/api/book?isbn=9788936433598")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Cached)
	require.Equal(t, 1, res.calls)
}

func TestBookSoftEmpty(t *testing.T) {
	res := &fakeResolver{res: reconcile.Result{
		State: reconcile.ExhaustedEmpty,
		Items: []models.LookupItem{},
		Hint:  &reconcile.Hint{Code: "8", Message: "not found"},
	}}
	w := do(t, &Handler{Resolver: res}, "/api/book?isbn=9788936433598")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"isbn":"9788936433598","items":[],"hint":{"code":"8","message":"not found"}}`, w.Body.String())
}

func TestBookErrorMapping(t *testing.T) {
	cases := []struct {
		target string
		err    error
		status int
	}{
		{"/api/book", nil, http.StatusBadRequest},
		{"/api/book?isbn=123", nil, http.StatusBadRequest},
		{"/api/book?isbn=9788936433598", fmt.Errorf("x: %w", utils.ErrMissingConfiguration), http.StatusInternalServerError},
		{"/api/book?isbn=9788936433598", fmt.Errorf("x: %w", provider.ErrUnavailable), http.StatusBadGateway},
		{"/api/book?isbn=9788936433598", fmt.Errorf("x: %w", normalize.ErrParseFailure), http.StatusBadGateway},
	}
	for _, tc := range cases {
		res := &fakeResolver{err: tc.err, res: reconcile.Result{State: reconcile.TransportFailed}}
		w := do(t, &Handler{Resolver: res}, tc.target)
		require.Equal(t, tc.status, w.Code, tc.target)
		require.Contains(t, w.Body.String(), `"error"`)
	}
}

func TestSearch(t *testing.T) {
	price := 15000
	items := []models.SearchItem{{LookupItem: models.LookupItem{Title: "소년이 온다"}, PriceStandard: &price}}

	w := do(t, &Handler{Search: fakeSearch{items: items}}, "/api/search?query=%ED%95%9C%EA%B0%95")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"price_standard":15000`)
	require.Contains(t, w.Body.String(), `"price_sales":null`)

	w = do(t, &Handler{Search: fakeSearch{}}, "/api/search?query=")
	require.Equal(t, http.StatusBadRequest, w.Code)

	perr := &provider.ProviderError{Code: "100", Message: "Invalid TTBKey"}
	w = do(t, &Handler{Search: fakeSearch{err: perr}}, "/api/search?query=x")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"items":[],"hint":{"code":"100","message":"Invalid TTBKey"}}`, w.Body.String())
}

func TestLibrary(t *testing.T) {
	lib := &fakeLibrary{items: []models.LibraryItem{{Title: "채식주의자", PubYear: "2007"}}}
	h := &Handler{Library: lib}

	w := do(t, h, "/api/library?provider=seoji&isbn=8936433598")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "9788936433598", lib.got.ISBN)
	require.Contains(t, w.Body.String(), `"pub_year":"2007"`)

	w = do(t, h, "/api/library?provider=kolisnet&query=%ED%95%9C%EA%B0%95")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "한강", lib.got.Keyword)

	require.Equal(t, http.StatusBadRequest, do(t, h, "/api/library?provider=worldcat&query=x").Code)
	require.Equal(t, http.StatusBadRequest, do(t, h, "/api/library?provider=seoji").Code)
	require.Equal(t, http.StatusBadRequest, do(t, h, "/api/library?isbn=12").Code)

	lib.err = fmt.Errorf("x: %w", utils.ErrMissingConfiguration)
	require.Equal(t, http.StatusInternalServerError, do(t, h, "/api/library?query=x").Code)
}

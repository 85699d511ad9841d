package facet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"bookmap/pkg/models"
)

func strp(s string) *string { return &s }

func sampleBooks() []models.BookRecord {
	return []models.BookRecord{
		{ID: "1", Title: "A", Author: "한강", Category: "소설/문학", Division: "국내도서", Level: "중급", Genre: "드라마"},
		{ID: "2", Title: "B", Author: "무라카미 하루키", Translator: "양억관", Category: "소설 | 일본", Division: "번역 도서", Level: "입문"},
		{ID: "3", Title: "C", Author: "한강", Category: "에세이·소설", Division: "해외원서", Level: "심화"},
		{ID: "4", Title: "D", Author: "Yuval Harari", Category: "경제，역사", Division: "해외", Level: "초급"},
		{ID: "", Title: "no id", Category: "소설"},
	}
}

func TestCanonicalDivision(t *testing.T) {
	cases := map[string]string{
		"번역서":     "번역서",
		"해외 번역":   "번역서",
		"원서(영문)":  "원서",
		"해외원서":    "원서",
		"국외도서":    "국외서",
		"외국도서":    "국외서",
		"국내":      "국내서",
		" 잡지 ":    "잡지",
		"":        "",
	}
	for in, want := range cases {
		require.Equal(t, want, CanonicalDivision(in), in)
	}
}

func TestSplit(t *testing.T) {
	got := Split(" 소설 / 문학|시·에세이•만화、역사，경제／과학｜예술・철학；종교; 여행 ,,")
	want := []string{"소설", "문학", "시", "에세이", "만화", "역사", "경제", "과학", "예술", "철학", "종교", "여행"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("split mismatch (-want +got):\n%s", diff)
	}
}

func TestValuesSortedAndCanonical(t *testing.T) {
	books := sampleBooks()

	require.Equal(t, []string{"경제", "문학", "소설", "에세이", "역사", "일본"}, Values(books, Category))
	require.Equal(t, []string{"국내서", "국외서", "원서", "번역서"}, Values(books, Division))
	require.Equal(t, []string{"입문", "초급", "중급", "심화"}, Values(books, Level))
	require.Equal(t, []string{"양억관"}, Values(books, Translator))
	require.Empty(t, Values(books, Subject))

	// whole-string fields are not split
	require.Contains(t, Values(books, Author), "무라카미 하루키")
}

func TestValuesDeterministic(t *testing.T) {
	books := sampleBooks()
	first := Vocabulary(books)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, Vocabulary(books))
	}
}

func TestLinksChainPerBucket(t *testing.T) {
	books := sampleBooks()

	got := Links(books, models.Facet{Type: string(Category)})
	want := []models.GraphLink{
		// 소설: 1, 2, 3 (first seen on book 1)
		{Source: "1", Target: "2"},
		{Source: "2", Target: "3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}

	for _, l := range got {
		require.NotEqual(t, l.Source, l.Target)
	}
}

func TestLinksSelectedValueAndAll(t *testing.T) {
	books := sampleBooks()

	got := Links(books, models.Facet{Type: string(Author), Value: strp("한강")})
	require.Equal(t, []models.GraphLink{{Source: "1", Target: "3"}}, got)

	got = Links(books, models.Facet{Type: string(Division), Value: strp("해외")})
	require.Equal(t, []models.GraphLink{}, got)

	require.Empty(t, Links(books, models.Facet{Type: string(All)}))
	require.Empty(t, Links(books, models.Facet{Type: "nope"}))
}

func TestLinksDedupWithinBucket(t *testing.T) {
	books := []models.BookRecord{
		{ID: "1", Category: "소설/소설"},
		{ID: "2", Category: "소설"},
		{ID: "1", Category: "소설"},
		{ID: "3", Category: "소설"},
	}
	got := Links(books, models.Facet{Type: string(Category)})
	require.Len(t, got, 2)
	require.Equal(t, []models.GraphLink{{Source: "1", Target: "2"}, {Source: "2", Target: "3"}}, got)
}

func TestMatches(t *testing.T) {
	b := sampleBooks()[1]
	require.True(t, Matches(b, models.Facet{Type: string(Category), Value: strp("일본")}))
	require.True(t, Matches(b, models.Facet{Type: string(Division), Value: strp("번역서")}))
	require.True(t, Matches(b, models.Facet{Type: string(Translator)}))
	require.False(t, Matches(sampleBooks()[0], models.Facet{Type: string(Translator)}))
	require.True(t, Matches(b, models.Facet{Type: string(All)}))
}

type staticBooks []models.BookRecord

func (s staticBooks) CurrentCollection() []models.BookRecord { return s }

func TestHandlerGraph(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(staticBooks(sampleBooks())).RegisterRoutes(r.Group(""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graph?type=%EC%A0%80%EC%9E%90&value=%ED%95%9C%EA%B0%95", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var g models.Graph
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	require.Len(t, g.Nodes, 4)
	require.Equal(t, []models.GraphLink{{Source: "1", Target: "3"}}, g.Links)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graph?type=bogus", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/facets", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "번역서")
}

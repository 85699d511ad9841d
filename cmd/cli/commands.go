package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"bookmap/internal/catalog"
	"bookmap/internal/facet"
	"bookmap/internal/isbn"
	"bookmap/internal/lookupcache"
	"bookmap/internal/reconcile"
	"bookmap/pkg/database"
	"bookmap/pkg/models"
)

type bookLookupResponse struct {
	ISBN     string              `json:"isbn"`
	Items    []models.LookupItem `json:"items"`
	Strategy string              `json:"strategy,omitempty"`
	Cached   bool                `json:"cached"`
	Hint     *reconcile.Hint     `json:"hint,omitempty"`
}

func newLookupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <isbn>",
		Short: "Resolve an ISBN-10 or ISBN-13 through the bibliographic providers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := isbn.ToISBN13(args[0])
			if err != nil {
				return err
			}

			var out bookLookupResponse
			status, err := newAPIClient(opts.baseURL).get(cmd.Context(), "/api/book",
				map[string]string{"isbn": code}, &out, http.StatusNotFound)
			if err != nil {
				return err
			}
			if status == http.StatusNotFound && opts.output == "table" {
				msg := "no items found"
				if out.Hint != nil && out.Hint.Message != "" {
					msg += ": " + out.Hint.Message
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
				return err
			}

			rows := make([]table.Row, 0, len(out.Items))
			for _, it := range out.Items {
				rows = append(rows, table.Row{it.ISBN, it.Title, it.Author, it.Publisher})
			}
			return render(cmd.OutOrStdout(), opts.output, out, table.Row{"isbn", "title", "author", "publisher"}, rows)
		},
	}
}

type searchResponse struct {
	Items []models.SearchItem `json:"items"`
	Hint  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"hint,omitempty"`
}

func newSearchCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Keyword search against the retailer catalogue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]string{"query": strings.Join(args, " ")}
			if limit > 0 {
				params["limit"] = strconv.Itoa(limit)
			}

			var out searchResponse
			if _, err := newAPIClient(opts.baseURL).get(cmd.Context(), "/api/search", params, &out, http.StatusNotFound); err != nil {
				return err
			}

			rows := make([]table.Row, 0, len(out.Items))
			for _, it := range out.Items {
				rows = append(rows, table.Row{it.ISBN, it.Title, it.Author, price(it.PriceSales, it.PriceStandard)})
			}
			return render(cmd.OutOrStdout(), opts.output, out, table.Row{"isbn", "title", "author", "price"}, rows)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (provider default when 0)")
	return cmd
}

func price(sales, standard *int) string {
	switch {
	case sales != nil:
		return humanize.Comma(int64(*sales)) + "원"
	case standard != nil:
		return humanize.Comma(int64(*standard)) + "원"
	default:
		return ""
	}
}

type booksResponse struct {
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
	Items  []models.BookRecord `json:"items"`
}

func newBooksCmd(opts *options) *cobra.Command {
	var facetType, value, query string
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List catalog books, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]string{
				"facet":  facetType,
				"value":  value,
				"q":      query,
				"limit":  strconv.Itoa(limit),
				"offset": strconv.Itoa(offset),
			}
			var out booksResponse
			if _, err := newAPIClient(opts.baseURL).get(cmd.Context(), "/books", params, &out); err != nil {
				return err
			}

			rows := make([]table.Row, 0, len(out.Items))
			for _, b := range out.Items {
				rows = append(rows, table.Row{b.ID, b.Title, b.Author, b.Division, added(b)})
			}
			if err := render(cmd.OutOrStdout(), opts.output, out, table.Row{"id", "title", "author", "division", "added"}, rows); err != nil {
				return err
			}
			if opts.output == "table" {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(out.Items), out.Total)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&facetType, "facet", "", "facet type (카테고리, 단계, 저자, 역자, 주제, 장르, 구분)")
	cmd.Flags().StringVar(&value, "value", "", "facet value")
	cmd.Flags().StringVarP(&query, "query", "q", "", "keyword over title/author/publisher")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "offset")
	return cmd
}

func added(b models.BookRecord) string {
	t := catalog.CreatedAt(b)
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

type facetsResponse struct {
	Facets []facet.Group `json:"facets"`
}

func newFacetsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "Show the facet vocabulary of the current catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out facetsResponse
			if _, err := newAPIClient(opts.baseURL).get(cmd.Context(), "/facets", nil, &out); err != nil {
				return err
			}
			rows := make([]table.Row, 0, len(out.Facets))
			for _, g := range out.Facets {
				rows = append(rows, table.Row{g.Type, len(g.Values), strings.Join(g.Values, ", ")})
			}
			return render(cmd.OutOrStdout(), opts.output, out, table.Row{"facet", "count", "values"}, rows)
		},
	}
}

func newGraphCmd(opts *options) *cobra.Command {
	var facetType, value string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the book graph links for a facet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out models.Graph
			params := map[string]string{"type": facetType, "value": value}
			if _, err := newAPIClient(opts.baseURL).get(cmd.Context(), "/graph", params, &out); err != nil {
				return err
			}

			titles := make(map[string]string, len(out.Nodes))
			for _, n := range out.Nodes {
				titles[n.ID] = n.Title
			}
			rows := make([]table.Row, 0, len(out.Links))
			for _, l := range out.Links {
				rows = append(rows, table.Row{l.Source, titles[l.Source], l.Target, titles[l.Target]})
			}
			if err := render(cmd.OutOrStdout(), opts.output, out, table.Row{"source", "title", "target", "title"}, rows); err != nil {
				return err
			}
			if opts.output == "table" {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d nodes, %d links\n", len(out.Nodes), len(out.Links))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&facetType, "type", string(facet.Category), "facet type")
	cmd.Flags().StringVar(&value, "value", "", "facet value (all values when empty)")
	return cmd
}

func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local lookup cache",
	}

	var olderThan time.Duration
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached lookups (all, or older than --older-than)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := database.DefaultConfig()
			if opts.dbPath != "" {
				cfg.Path = opts.dbPath
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(db); err != nil {
				return err
			}

			n, err := lookupcache.NewRepo(db).Purge(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "purged %s cached lookups from %s\n", humanize.Comma(n), cfg.Path)
			return err
		},
	}
	purge.Flags().DurationVar(&olderThan, "older-than", 0, "only purge entries older than this (e.g. 72h)")

	cmd.AddCommand(purge)
	return cmd
}

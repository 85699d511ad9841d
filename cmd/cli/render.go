package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// render writes v as json or yaml, or as a table of rows.
func render(w io.Writer, format string, v any, header table.Row, rows []table.Row) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml":
		// go through json so field names match the API
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "(no results)")
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(header)
		t.AppendRows(rows)
		t.SetColumnConfigs([]table.ColumnConfig{{Number: len(header), WidthMax: 60, Transformer: text.Transformer(truncate)}})
		t.Render()
		return nil
	}
}

func truncate(v any) string {
	s := fmt.Sprint(v)
	r := []rune(s)
	if len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return s
}

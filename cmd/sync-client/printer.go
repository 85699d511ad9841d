package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"bookmap/internal/sync"
)

type printer struct {
	raw  bool
	only string
	out  io.Writer
}

// consume prints every line until r is exhausted. It returns io.EOF when the
// server closed the connection cleanly.
func (p printer) consume(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line(sc.Bytes())
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

func (p printer) line(b []byte) {
	var ev struct {
		sync.CatalogEvent
		Transport string `json:"transport"`
		Clients   int    `json:"clients"`
	}
	if err := json.Unmarshal(b, &ev); err != nil {
		// not JSON? print raw
		fmt.Fprintln(p.out, string(b))
		return
	}
	if p.only != "" && ev.Type != p.only {
		return
	}
	if p.raw {
		fmt.Fprintln(p.out, string(b))
		return
	}

	switch ev.Type {
	case "welcome":
		fmt.Fprintf(p.out, "connected via %s (%d clients)\n", ev.Transport, ev.Clients)
	case sync.EventRegister:
		fmt.Fprintf(p.out, "[%s] registered %q (id %s), %s books total\n",
			stamp(ev.At), ev.Title, ev.BookID, humanize.Comma(int64(ev.Total)))
	case sync.EventReload:
		fmt.Fprintf(p.out, "[%s] catalog reloaded, %s books\n", stamp(ev.At), humanize.Comma(int64(ev.Total)))
	default:
		fmt.Fprintln(p.out, string(b))
	}
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("15:04:05")
}

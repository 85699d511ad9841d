package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
	raw := flag.Bool("raw", false, "print events as received JSON lines")
	only := flag.String("type", "", "only show events of this type (catalog.register, catalog.reload)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for ctx.Err() == nil {
		if err := run(ctx, *addr, printer{raw: *raw, only: *only, out: os.Stdout}); err != nil && ctx.Err() == nil {
			log.Printf("[sync-client] disconnected: %v", err)
		}
		select {
		case <-ctx.Done():
		case <-time.After(1 * time.Second): // auto reconnect
		}
	}
}

func run(ctx context.Context, addr string, p printer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	log.Printf("[sync-client] connected to %s", addr)
	return p.consume(conn)
}

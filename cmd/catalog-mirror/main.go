package main

import (
	"flag"
	"log"

	"github.com/gin-gonic/gin"
)

// catalog-mirror stands in for the remote catalog endpoint during local
// development: GET returns the rows, POST appends one.
func main() {
	var (
		addr     = flag.String("addr", ":9000", "listen address")
		dataPath = flag.String("data", "data/mirror.json", "JSON array of catalog rows")
	)
	flag.Parse()

	r := gin.Default()
	m := &Mirror{Path: *dataPath}
	m.RegisterRoutes(r.Group("/catalog"))

	log.Printf("[mirror] listening on %s (data=%s)", *addr, *dataPath)
	log.Fatal(r.Run(*addr))
}

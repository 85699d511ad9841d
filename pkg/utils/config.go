package utils

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/titanous/json5"
)

// ErrMissingConfiguration is returned when a request needs a credential or
// endpoint the server was not configured with.
var ErrMissingConfiguration = errors.New("missing server configuration")

type Config struct {
	HTTPAddr string `json:"http_addr"`
	SyncAddr string `json:"sync_addr"`
	GRPCAddr string `json:"grpc_addr"`

	// Spreadsheet-backed catalog endpoint (read + write).
	CatalogURL string `json:"catalog_url"`
	// Local read-only snapshot merged with the remote rows.
	SnapshotPath string `json:"snapshot_path"`
	// "remote" or "local": which source wins on identity key collisions.
	MergePriority string `json:"merge_priority"`

	RetailerBaseURL string `json:"retailer_base_url"`
	RetailerTTBKey  string `json:"retailer_ttb_key"`

	LibraryBaseURL  string `json:"library_base_url"`
	SeojiCertKey    string `json:"seoji_cert_key"`
	KolisnetAPIKey  string `json:"kolisnet_api_key"`
	LookupCacheHour int    `json:"lookup_cache_hours"`
}

func (c Config) LookupCacheTTL() time.Duration {
	return time.Duration(c.LookupCacheHour) * time.Hour
}

func DefaultConfig() Config {
	return Config{
		HTTPAddr:        ":8080",
		SyncAddr:        ":7070",
		GRPCAddr:        ":9090",
		SnapshotPath:    "data/books.json",
		MergePriority:   "remote",
		RetailerBaseURL: "https://www.aladin.co.kr/ttb/api",
		LibraryBaseURL:  "https://www.nl.go.kr",
		LookupCacheHour: 24,
	}
}

// LoadConfig reads path (json5), overlays <name>.local.<ext> when present,
// then applies BOOKMAP_* environment variables. Each layer is decoded onto the
// previous one, so a key present in a file wins even when it is zero or blank
// and an absent key keeps the default. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := decodeFile(&cfg, path); err != nil {
			return Config{}, err
		}

		ext := filepath.Ext(path)
		localPath := strings.TrimSuffix(path, ext) + ".local" + ext
		if err := decodeFile(&cfg, localPath); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil
	}
	if err := json5.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	log.Printf("[config] loaded %s", path)
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.HTTPAddr, "BOOKMAP_HTTP_ADDR")
	setString(&cfg.SyncAddr, "BOOKMAP_SYNC_ADDR")
	setString(&cfg.GRPCAddr, "BOOKMAP_GRPC_ADDR")
	setString(&cfg.CatalogURL, "BOOKMAP_CATALOG_URL")
	setString(&cfg.SnapshotPath, "BOOKMAP_SNAPSHOT_PATH")
	setString(&cfg.MergePriority, "BOOKMAP_MERGE_PRIORITY")
	setString(&cfg.RetailerBaseURL, "BOOKMAP_RETAILER_BASE_URL")
	setString(&cfg.RetailerTTBKey, "BOOKMAP_RETAILER_TTB_KEY")
	setString(&cfg.LibraryBaseURL, "BOOKMAP_LIBRARY_BASE_URL")
	setString(&cfg.SeojiCertKey, "BOOKMAP_SEOJI_CERT_KEY")
	setString(&cfg.KolisnetAPIKey, "BOOKMAP_KOLISNET_API_KEY")

	if v := os.Getenv("BOOKMAP_LOOKUP_CACHE_HOURS"); v != "" {
		// unparseable values keep the current setting
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.LookupCacheHour = n
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

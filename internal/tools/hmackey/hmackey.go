// Package hmackey generates grid signing keys in the env format the
// keyring loader expects.
package hmackey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Config holds configuration for HMAC key generation.
type Config struct {
	Bytes int
	KeyID string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: 32, KeyID: "v1"}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes (default: 32)")
	fs.StringVar(&cfg.KeyID, "id", cfg.KeyID, "key id to tag the generated key with (default: v1)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates the key and writes keyring exports to out.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes <= 0 {
		return errors.New("bytes must be greater than zero")
	}
	if strings.TrimSpace(cfg.KeyID) == "" {
		return errors.New("key id is required")
	}
	if strings.ContainsAny(cfg.KeyID, "=,") {
		return errors.New("key id must not contain '=' or ','")
	}
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	if _, err := fmt.Fprintf(out, "GRIDLINK_GRID_HMAC_KEYS=%s=%s\n", cfg.KeyID, hex.EncodeToString(buf)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "GRIDLINK_GRID_HMAC_KEY_ID=%s\n", cfg.KeyID)
	return err
}

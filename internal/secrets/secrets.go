// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads store credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: neo4j-user, neo4j-password, neo4j-uri.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

const (
	KeyNeo4jURI      = "neo4j-uri"
	KeyNeo4jUser     = "neo4j-user"
	KeyNeo4jPassword = "neo4j-password"
)

// Secrets maps key file names to their trimmed contents.
type Secrets map[string]string

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty set. Unreadable files produce a warning on stderr but do
// not abort.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Keys returns the loaded key names in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyStore fills connection fields that cfg leaves empty. Values set by
// config files, environment, or flags take precedence.
func (s Secrets) ApplyStore(cfg *types.StoreConfig) {
	if v, ok := s[KeyNeo4jURI]; ok && cfg.URI == "" {
		cfg.URI = v
	}
	if v, ok := s[KeyNeo4jUser]; ok && cfg.User == "" {
		cfg.User = v
	}
	if v, ok := s[KeyNeo4jPassword]; ok && cfg.Password == "" {
		cfg.Password = v
	}
}

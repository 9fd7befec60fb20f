// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key name and the trimmed
// file contents are the value.
//
// Recognized key files: naver-client-id, naver-client-secret,
// google-cse-api-key, google-cse-cx, bing-api-key, openai-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/verify-engine/pkg/types"
)

// Key file names.
const (
	NaverClientID     = "naver-client-id"
	NaverClientSecret = "naver-client-secret"
	GoogleCSEAPIKey   = "google-cse-api-key"
	GoogleCSECX       = "google-cse-cx"
	BingAPIKey        = "bing-api-key"
	OpenAIAPIKey      = "openai-api-key"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Apply copies recognized secrets into cfg. A secret only fills a field
// that config files, environment and flags left empty.
func Apply(cfg *types.Config, secrets map[string]string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = secrets[key]
		}
	}
	fill(&cfg.Adapters.Naver.ClientID, NaverClientID)
	fill(&cfg.Adapters.Naver.ClientSecret, NaverClientSecret)
	fill(&cfg.Adapters.Google.APIKey, GoogleCSEAPIKey)
	fill(&cfg.Adapters.Google.CX, GoogleCSECX)
	fill(&cfg.Adapters.Bing.APIKey, BingAPIKey)
	fill(&cfg.AI.APIKey, OpenAIAPIKey)
}

// Package secrets loads deployment secrets such as DATABASE_PASSWORD and
// REDIS_PASSWORD from a Vault KV engine into the process environment, so
// config.Load picks them up like any other variable.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// VaultConfig locates one KV secret.
type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration

	// Overwrite replaces variables that are already set.
	Overwrite bool
}

// LoadResult reports what Load applied.
type LoadResult struct {
	Enabled bool
	Path    string
	Loaded  []string
	Skipped []string
}

// ConfigFromEnv reads VAULT_* variables.
func ConfigFromEnv() VaultConfig {
	cfg := VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     os.Getenv("VAULT_MOUNT"),
		Path:      os.Getenv("VAULT_PATH"),
		KVVersion: 2,
		Timeout:   5 * time.Second,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
	}
	if cfg.Mount == "" {
		cfg.Mount = "secret"
	}
	if v, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil {
		cfg.KVVersion = v
	}
	if ms, err := strconv.Atoi(os.Getenv("VAULT_TIMEOUT_MS")); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

// URL is the read endpoint of the configured secret.
func (c VaultConfig) URL() (string, error) {
	addr := strings.TrimRight(c.Addr, "/")
	mount := strings.Trim(c.Mount, "/")
	path := strings.TrimLeft(c.Path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount and path must be set")
	}
	if c.KVVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

// Fetch reads the secret's key/value pairs.
func Fetch(ctx context.Context, client *http.Client, cfg VaultConfig) (map[string]string, error) {
	if cfg.Token == "" {
		return nil, errors.New("vault token not set")
	}
	url, err := cfg.URL()
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vault request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("vault fetch failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	// KV v2 nests the secret under data.data, v1 under data.
	var payload struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode vault response: %w", err)
	}
	raw := payload.Data
	if cfg.KVVersion != 1 {
		var inner struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("failed to decode vault response: %w", err)
		}
		raw = inner.Data
	}

	var values map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &values) != nil || values == nil {
		return nil, fmt.Errorf("vault response for %s has no data", cfg.Path)
	}

	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = stringify(v)
	}
	return out, nil
}

// Load fetches the secret and exports it into the environment.
func Load(ctx context.Context, cfg VaultConfig) (LoadResult, error) {
	result := LoadResult{Enabled: cfg.Enabled, Path: cfg.Path}
	if !cfg.Enabled {
		return result, nil
	}

	values, err := Fetch(ctx, nil, cfg)
	if err != nil {
		return result, err
	}
	for key, value := range values {
		if !cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return result, err
		}
		result.Loaded = append(result.Loaded, key)
	}
	return result, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

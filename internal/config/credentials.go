package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// OAuthCredentials is the on-disk credential file for OAuth provider kinds.
// ExpiryDate is a Unix timestamp in milliseconds.
type OAuthCredentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiryDate   int64  `json:"expiry_date"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
	Email        string `json:"email,omitempty"`
	Type         string `json:"type,omitempty"`
}

// Expiry returns the access-token expiry as a time.Time.
func (c *OAuthCredentials) Expiry() time.Time {
	return time.UnixMilli(c.ExpiryDate)
}

// ExpiresWithin reports whether the access token expires within d.
func (c *OAuthCredentials) ExpiresWithin(d time.Duration) bool {
	return time.Until(c.Expiry()) < d
}

var (
	credMu    sync.Mutex
	credLocks = make(map[string]*sync.Mutex)
)

// credLock returns the mutex guarding one credential file, keyed by its
// absolute path so different relative spellings share a lock.
func credLock(path string) *sync.Mutex {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	credMu.Lock()
	defer credMu.Unlock()
	if lock, ok := credLocks[abs]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	credLocks[abs] = lock
	return lock
}

// LoadOAuthCredentials reads and decodes a credential file.
func LoadOAuthCredentials(path string) (*OAuthCredentials, error) {
	lock := credLock(path)
	lock.Lock()
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}
	var creds OAuthCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credential file %s: %w", path, err)
	}
	return &creds, nil
}

// SaveOAuthCredentials writes the whole credential file atomically via a
// temp file and rename, so a concurrent reader never sees a partial write.
func SaveOAuthCredentials(path string, creds *OAuthCredentials) error {
	lock := credLock(path)
	lock.Lock()
	defer lock.Unlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename credential file: %w", err)
	}
	return nil
}

package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

const keychainService = "draftforge"

// Keychain abstracts the platform secret store. macOS uses the system
// Keychain via the security CLI; other platforms use a mode-0600 JSON file
// under $XDG_DATA_HOME.
type Keychain interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

type platformKeychain struct{}

func NewKeychain() Keychain {
	return platformKeychain{}
}

func (platformKeychain) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (platformKeychain) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}

// GetAPIToken returns the local API bearer token, generating and storing one
// on first use. DRAFTFORGE_API_TOKEN overrides the stored token.
func GetAPIToken(kc Keychain) (string, error) {
	if tok := os.Getenv("DRAFTFORGE_API_TOKEN"); tok != "" {
		return tok, nil
	}

	if tok, err := kc.Get(keychainService, "api_token"); err == nil && tok != "" {
		return tok, nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating api token: %w", err)
	}
	tok := hex.EncodeToString(buf)

	if err := kc.Set(keychainService, "api_token", tok); err != nil {
		return "", fmt.Errorf("storing api token: %w", err)
	}
	return tok, nil
}

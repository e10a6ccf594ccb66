package cli

import (
	"fmt"
	"os"
)

// fileCredentials keeps the bearer token in the config file. RR_TOKEN, when
// set, takes precedence over the stored token.
type fileCredentials struct{}

// Load implements session.CredentialStore.
func (fileCredentials) Load() (string, error) {
	if v := os.Getenv("RR_TOKEN"); v != "" {
		return v, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Token, nil
}

// Save implements session.CredentialStore.
func (fileCredentials) Save(token string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Token = token
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// Clear implements session.CredentialStore.
func (f fileCredentials) Clear() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		return nil
	}
	return f.Save("")
}

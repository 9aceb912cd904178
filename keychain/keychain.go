// Package keychain stores server credentials in the operating system keyring.
package keychain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keyring service credentials are stored under
const DefaultService = "umzug"

// ErrNotFound is returned when no credentials are stored for a server
var ErrNotFound = errors.New("credentials not found")

// Credentials are the stored login of one server. Either field may be empty.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Store persists credentials per server address (scheme://host:port)
type Store interface {
	Store(server, username, password string) error
	Fetch(server string) (Credentials, error)
}

// Keyring is a Store backed by the OS keyring
type Keyring struct {
	service string
}

// NewKeyring creates a keyring store. An empty service uses DefaultService.
func NewKeyring(service string) *Keyring {
	if service == "" {
		service = DefaultService
	}
	return &Keyring{service: service}
}

// Store saves the credentials for server, replacing existing ones
func (k *Keyring) Store(server, username, password string) error {
	if server == "" {
		return errors.New("server is required")
	}

	data, err := json.Marshal(Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	if err := keyring.Set(k.service, server, string(data)); err != nil {
		return fmt.Errorf("failed to store credentials for %s: %w", server, err)
	}
	return nil
}

// Fetch returns the credentials stored for server
func (k *Keyring) Fetch(server string) (Credentials, error) {
	secret, err := keyring.Get(k.service, server)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credentials{}, ErrNotFound
		}
		return Credentials{}, fmt.Errorf("failed to fetch credentials for %s: %w", server, err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(secret), &creds); err != nil {
		return Credentials{}, fmt.Errorf("unexpected keyring data for %s: %w", server, err)
	}
	return creds, nil
}

// Delete removes the credentials stored for server. Deleting missing
// credentials is not an error.
func (k *Keyring) Delete(server string) error {
	err := keyring.Delete(k.service, server)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete credentials for %s: %w", server, err)
	}
	return nil
}

// Package session ties an authenticated API client to the credential store
// and the session-wide error slot.
package session

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/s0up4200/umzug/keychain"
	"github.com/s0up4200/umzug/umzug"
)

// ErrIncompleteCredentials is returned when stored credentials lack a username or password
var ErrIncompleteCredentials = errors.New("stored credentials are incomplete")

// Session is an authenticated connection to one server
type Session struct {
	Client   *umzug.Client
	auth     umzug.Authentication
	reporter *umzug.Reporter
	logger   zerolog.Logger
}

// Login creates a session for server. Nothing is sent until the first request.
func Login(server umzug.Server, auth umzug.Authentication, logger zerolog.Logger, opts ...umzug.Option) *Session {
	reporter := &umzug.Reporter{}
	opts = append(opts, umzug.WithReporter(reporter))

	s := &Session{
		Client:   umzug.NewClient(server, auth, logger, opts...),
		auth:     auth,
		reporter: reporter,
		logger:   logger,
	}

	logger.Debug().Str("server", server.String()).Str("username", auth.Username).Msg("Logged in")
	return s
}

// Remember saves the session's credentials in store, keyed by the server
// address so servers sharing a host keep separate logins
func (s *Session) Remember(store keychain.Store) error {
	server := s.Client.Server()
	if err := store.Store(server.String(), s.auth.Username, s.auth.Password); err != nil {
		return err
	}
	s.logger.Debug().Str("server", server.String()).Msg("Stored credentials")
	return nil
}

// Reauthenticate creates a session from the credentials stored for server.
// A non-empty fallbackUsername is used when none is stored.
func Reauthenticate(server umzug.Server, store keychain.Store, fallbackUsername string, logger zerolog.Logger, opts ...umzug.Option) (*Session, error) {
	if server.Host == "" {
		return nil, fmt.Errorf("no server configured")
	}

	creds, err := store.Fetch(server.String())
	if err != nil {
		return nil, err
	}
	if creds.Username == "" {
		creds.Username = fallbackUsername
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrIncompleteCredentials
	}

	return Login(server, umzug.Authentication{Username: creds.Username, Password: creds.Password}, logger, opts...), nil
}

// Invalidated returns the first session-invalidating error reported by any
// request of this session, or nil
func (s *Session) Invalidated() *umzug.APIError {
	return s.reporter.Pending()
}

// Reset clears the reported error and returns it
func (s *Session) Reset() *umzug.APIError {
	return s.reporter.Clear()
}

// Close shuts the client down
func (s *Session) Close() {
	s.Client.Close()
}

// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package allocsession provides the Questrade OAuth session.
//
// Questrade uses the OAuth implicit flow: the user visits the authorize URL,
// and Questrade redirects back to the redirect URI with the access token and
// the API server for the user's data in the URL fragment, e.g.
//
//	http://localhost:3000/#access_token=abc&api_server=https%3A%2F%2Fapi01.iq.questrade.com%2F&token_type=Bearer&expires_in=1800
//
// The session is captured once from that fragment and persisted; later
// invocations load it from the state store.
package allocsession

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/bufdev/allocctl/internal/alloc/allocstate"
)

// authorizeURL is the Questrade OAuth authorize endpoint.
const authorizeURL = "https://login.questrade.com/oauth2/authorize"

// Session is an authenticated Questrade session.
type Session struct {
	// AccessToken is the bearer token.
	AccessToken string
	// APIServer is the base URL of the API server for this session (e.g.,
	// "https://api01.iq.questrade.com/").
	APIServer string
}

// AuthorizeURL returns the URL the user visits to authorize allocctl.
func AuthorizeURL(clientID string, redirectURI string) string {
	values := url.Values{}
	values.Set("client_id", clientID)
	values.Set("response_type", "token")
	values.Set("redirect_uri", redirectURI)
	return authorizeURL + "?" + values.Encode()
}

// ExtractToken parses a redirect fragment into a Session.
//
// The input may be the bare fragment, the fragment with its leading '#', or
// the full redirect URL. Values are percent-decoded. Returns nil if the
// fragment is empty, is a hash route (starts with '/'), or has no access token.
func ExtractToken(fragment string) *Session {
	fragment = strings.TrimSpace(fragment)
	if index := strings.IndexByte(fragment, '#'); index >= 0 {
		fragment = fragment[index+1:]
	}
	if fragment == "" || strings.HasPrefix(fragment, "/") {
		return nil
	}
	values := parseFragment(fragment)
	accessToken := values["access_token"]
	if accessToken == "" {
		return nil
	}
	return &Session{
		AccessToken: accessToken,
		APIServer:   values["api_server"],
	}
}

// Store persists the session in the state store.
type Store struct {
	logger     *slog.Logger
	stateStore *allocstate.Store
}

// NewStore returns a new Store.
func NewStore(logger *slog.Logger, stateStore *allocstate.Store) *Store {
	return &Store{
		logger:     logger,
		stateStore: stateStore,
	}
}

// Capture extracts the session from the fragment and persists it.
//
// Returns nil if the fragment holds no session, in which case the previously
// persisted session is left untouched.
func (s *Store) Capture(fragment string) *Session {
	session := ExtractToken(fragment)
	if session == nil {
		return nil
	}
	s.stateStore.Set(allocstate.KeyAccessToken, session.AccessToken)
	s.stateStore.Set(allocstate.KeyAPIServer, session.APIServer)
	s.logger.Debug("session captured", "api_server", session.APIServer)
	return session
}

// Load returns the persisted session, or nil if not authenticated.
func (s *Store) Load() *Session {
	accessToken := allocstate.GetOr(s.stateStore, allocstate.KeyAccessToken, "")
	if accessToken == "" {
		return nil
	}
	return &Session{
		AccessToken: accessToken,
		APIServer:   allocstate.GetOr(s.stateStore, allocstate.KeyAPIServer, ""),
	}
}

// Clear removes the persisted session.
func (s *Store) Clear() {
	s.stateStore.Delete(allocstate.KeyAccessToken)
	s.stateStore.Delete(allocstate.KeyAPIServer)
}

// *** PRIVATE ***

// parseFragment splits key1=val1&key2=val2 into a map, percent-decoding each
// value. Unlike url.ParseQuery, '+' is kept literally.
func parseFragment(fragment string) map[string]string {
	values := make(map[string]string)
	for pair := range strings.SplitSeq(fragment, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		decoded, err := url.PathUnescape(value)
		if err != nil {
			decoded = value
		}
		values[key] = decoded
	}
	return values
}

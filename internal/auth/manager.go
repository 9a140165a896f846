package auth

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"KiteBacktest/internal/broker"
	"KiteBacktest/internal/config"
	"KiteBacktest/internal/errors"
)

// Manager owns the broker credential. It starts Unauthenticated and moves to
// Authenticated after a stored token is loaded or a request token is exchanged.
type Manager struct {
	mu            sync.Mutex
	broker        broker.Broker
	apiSecret     string
	tokenFile     string
	accessToken   string
	authenticated bool
	log           *zap.Logger
}

// NewManager creates a Manager and immediately tries to load a stored token.
func NewManager(cfg *config.Config, b broker.Broker, log *zap.Logger) *Manager {
	m := &Manager{
		broker:    b,
		apiSecret: cfg.Kite.APISecret,
		tokenFile: cfg.Storage.TokenFile,
		log:       log,
	}
	m.LoadExistingToken()
	return m
}

// LoadExistingToken installs the stored token on the broker if the token
// file exists. It never fails loudly: problems are logged and reported as false.
func (m *Manager) LoadExistingToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := LoadToken(m.tokenFile)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("could not load access token",
				zap.String("path", m.tokenFile),
				zap.Error(errors.Wrap(errors.ErrCodeCredentialUnreadable, "read token file", err)))
		}
		return false
	}
	if token == "" {
		m.log.Warn("access token file is empty", zap.String("path", m.tokenFile))
		return false
	}

	m.accessToken = token
	m.broker.SetAccessToken(token)
	m.authenticated = true
	m.log.Info("loaded existing access token", zap.String("path", m.tokenFile))
	return true
}

// LoginURL returns the broker login URL for the manual browser step.
func (m *Manager) LoginURL() string {
	u := m.broker.LoginURL()
	m.log.Info("generated login URL", zap.String("url", u))
	return u
}

// AuthenticateWithToken exchanges a request token for an access token and
// persists it. On any failure the manager is left Unauthenticated and the
// token file is untouched.
func (m *Manager) AuthenticateWithToken(ctx context.Context, requestToken string) (broker.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	requestToken = strings.TrimSpace(requestToken)
	if requestToken == "" {
		m.authenticated = false
		return broker.Session{}, errors.New(errors.ErrCodeInvalidParameter, "request token is empty")
	}

	m.log.Info("exchanging request token for access token")
	session, err := m.broker.GenerateSession(ctx, requestToken, m.apiSecret)
	if err != nil {
		m.authenticated = false
		m.log.Error("authentication failed", zap.Error(err))
		return broker.Session{}, errors.Wrap(errors.ErrCodeAuthRejected, "token exchange failed", err)
	}
	if session.AccessToken == "" {
		m.authenticated = false
		m.log.Error("authentication failed: empty access token in session response")
		return broker.Session{}, errors.New(errors.ErrCodeAuthRejected, "session response carried no access token")
	}

	if err := SaveToken(m.tokenFile, session.AccessToken); err != nil {
		m.authenticated = false
		m.log.Error("could not persist access token", zap.String("path", m.tokenFile), zap.Error(err))
		return broker.Session{}, errors.Wrapf(errors.ErrCodeCredentialWrite, err, "write token file %s", m.tokenFile)
	}

	m.accessToken = session.AccessToken
	m.broker.SetAccessToken(session.AccessToken)
	m.authenticated = true

	userName := session.UserName
	if userName == "" {
		userName = "User"
	}
	m.log.Info("authentication successful",
		zap.String("path", m.tokenFile),
		zap.String("user", userName))
	return session, nil
}

// IsAuthenticated reports the in-memory authentication flag.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"KiteBacktest/internal/broker"
	"KiteBacktest/internal/config"
	"KiteBacktest/internal/errors"
	"KiteBacktest/mocks"
)

type ManagerTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockBroker *mocks.MockBroker
	cfg        *config.Config
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (suite *ManagerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockBroker = mocks.NewMockBroker(suite.ctrl)

	suite.cfg = &config.Config{}
	suite.cfg.Kite.APIKey = "key"
	suite.cfg.Kite.APISecret = "secret"
	suite.cfg.Storage.TokenFile = filepath.Join(suite.T().TempDir(), "access_token.txt")
}

func (suite *ManagerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ManagerTestSuite) newManager() *Manager {
	return NewManager(suite.cfg, suite.mockBroker, zap.NewNop())
}

func (suite *ManagerTestSuite) TestStartsUnauthenticatedWithoutTokenFile() {
	m := suite.newManager()
	suite.False(m.IsAuthenticated())
}

func (suite *ManagerTestSuite) TestLoadsExistingTokenAtConstruction() {
	suite.Require().NoError(os.WriteFile(suite.cfg.Storage.TokenFile, []byte("stored-token\n"), 0600))
	suite.mockBroker.EXPECT().SetAccessToken("stored-token").Times(1)

	m := suite.newManager()
	suite.True(m.IsAuthenticated())
}

func (suite *ManagerTestSuite) TestEmptyTokenFileIsNotAuthenticated() {
	suite.Require().NoError(os.WriteFile(suite.cfg.Storage.TokenFile, []byte("  \n"), 0600))

	m := suite.newManager()
	suite.False(m.IsAuthenticated())
}

func (suite *ManagerTestSuite) TestUnreadableTokenFileIsNotAuthenticated() {
	// A directory at the token path makes the read fail without being "not exist".
	suite.Require().NoError(os.Mkdir(suite.cfg.Storage.TokenFile, 0755))

	m := suite.newManager()
	suite.False(m.LoadExistingToken())
	suite.False(m.IsAuthenticated())
}

func (suite *ManagerTestSuite) TestLoginURL() {
	suite.mockBroker.EXPECT().LoginURL().Return("https://kite.zerodha.com/connect/login?api_key=key&v=3")

	m := suite.newManager()
	suite.Equal("https://kite.zerodha.com/connect/login?api_key=key&v=3", m.LoginURL())
}

func (suite *ManagerTestSuite) TestAuthenticateWithTokenSuccess() {
	suite.mockBroker.EXPECT().
		GenerateSession(gomock.Any(), "req-token", "secret").
		Return(broker.Session{AccessToken: "access-1", UserName: "Trader"}, nil)
	suite.mockBroker.EXPECT().SetAccessToken("access-1").Times(1)

	m := suite.newManager()
	session, err := m.AuthenticateWithToken(context.Background(), "req-token")
	suite.Require().NoError(err)
	suite.Equal("Trader", session.UserName)
	suite.True(m.IsAuthenticated())

	data, err := os.ReadFile(suite.cfg.Storage.TokenFile)
	suite.Require().NoError(err)
	suite.Equal("access-1", string(data))
}

func (suite *ManagerTestSuite) TestAuthenticateOverwritesExistingToken() {
	suite.Require().NoError(os.WriteFile(suite.cfg.Storage.TokenFile, []byte("old-token-that-is-longer"), 0600))
	suite.mockBroker.EXPECT().SetAccessToken("old-token-that-is-longer")
	suite.mockBroker.EXPECT().
		GenerateSession(gomock.Any(), "req", "secret").
		Return(broker.Session{AccessToken: "new"}, nil)
	suite.mockBroker.EXPECT().SetAccessToken("new")

	m := suite.newManager()
	_, err := m.AuthenticateWithToken(context.Background(), "req")
	suite.Require().NoError(err)

	data, err := os.ReadFile(suite.cfg.Storage.TokenFile)
	suite.Require().NoError(err)
	suite.Equal("new", string(data))
}

func (suite *ManagerTestSuite) TestAuthenticateRejected() {
	suite.mockBroker.EXPECT().
		GenerateSession(gomock.Any(), "bad", "secret").
		Return(broker.Session{}, fmt.Errorf("Token is invalid or has expired."))

	m := suite.newManager()
	_, err := m.AuthenticateWithToken(context.Background(), "bad")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeAuthRejected))
	suite.False(m.IsAuthenticated())

	_, statErr := os.Stat(suite.cfg.Storage.TokenFile)
	suite.True(os.IsNotExist(statErr))
}

func (suite *ManagerTestSuite) TestAuthenticateEmptyAccessToken() {
	suite.mockBroker.EXPECT().
		GenerateSession(gomock.Any(), "req", "secret").
		Return(broker.Session{UserName: "Trader"}, nil)

	m := suite.newManager()
	_, err := m.AuthenticateWithToken(context.Background(), "req")
	suite.True(errors.HasCode(err, errors.ErrCodeAuthRejected))
	suite.False(m.IsAuthenticated())
}

func (suite *ManagerTestSuite) TestAuthenticateEmptyRequestToken() {
	m := suite.newManager()
	_, err := m.AuthenticateWithToken(context.Background(), "   ")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
	suite.False(m.IsAuthenticated())
}

func (suite *ManagerTestSuite) TestFailedExchangeAfterLoadedTokenDropsAuthentication() {
	suite.Require().NoError(os.WriteFile(suite.cfg.Storage.TokenFile, []byte("stored"), 0600))
	suite.mockBroker.EXPECT().SetAccessToken("stored")
	suite.mockBroker.EXPECT().
		GenerateSession(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(broker.Session{}, fmt.Errorf("network down"))

	m := suite.newManager()
	suite.True(m.IsAuthenticated())

	_, err := m.AuthenticateWithToken(context.Background(), "req")
	suite.Error(err)
	suite.False(m.IsAuthenticated())

	data, err := os.ReadFile(suite.cfg.Storage.TokenFile)
	suite.Require().NoError(err)
	suite.Equal("stored", string(data))
}

func (suite *ManagerTestSuite) TestAuthenticateUnwritableTokenFile() {
	blocker := filepath.Join(suite.T().TempDir(), "blocker")
	suite.Require().NoError(os.WriteFile(blocker, []byte("x"), 0644))
	suite.cfg.Storage.TokenFile = filepath.Join(blocker, "access_token.txt")

	suite.mockBroker.EXPECT().
		GenerateSession(gomock.Any(), "req", "secret").
		Return(broker.Session{AccessToken: "access"}, nil)

	m := suite.newManager()
	_, err := m.AuthenticateWithToken(context.Background(), "req")
	suite.True(errors.HasCode(err, errors.ErrCodeCredentialWrite))
	suite.False(m.IsAuthenticated())
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"cryptotracker/src/api"
	"cryptotracker/src/api/controllers"
	"cryptotracker/src/config"
	"cryptotracker/src/repositories"
	"cryptotracker/src/schemas"
)

type testEnv struct {
	server     *httptest.Server
	cryptos    *repositories.MemoryCryptoRepository
	users      *repositories.MemoryUserRepository
	portfolios *repositories.MemoryPortfolioRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Service.ClientURL = "http://localhost:3000"

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	users := repositories.NewMemoryUserRepository()
	cryptos := repositories.NewMemoryCryptoRepository()
	portfolios := repositories.NewMemoryPortfolioRepository(cryptos)
	history := repositories.NewMemoryPriceHistoryRepository(cryptos)

	controller := controllers.NewControllerWithRepositories(cfg, users, cryptos, portfolios, history, nil, logger)
	server := api.NewServer(cfg, controller)

	ts := httptest.NewServer(server.Router)
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, cryptos: cryptos, users: users, portfolios: portfolios}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func decodeBody(t *testing.T, res *http.Response, out interface{}) {
	t.Helper()
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
}

// registerUser creates an account through the API and returns its token.
func (e *testEnv) registerUser(t *testing.T, name string) string {
	t.Helper()

	res := e.do(t, http.MethodPost, "/api/auth/register", "", schemas.RegisterRequest{
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var tokenRes schemas.TokenResponse
	decodeBody(t, res, &tokenRes)
	require.NotEmpty(t, tokenRes.Token)
	return tokenRes.Token
}

package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ReturnsTokenAndUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSONRequest(http.MethodPost, "/auth/register", map[string]string{
		"name":     "Alice",
		"email":    "Alice@X.com",
		"password": "pw123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.Equal(t, "alice@x.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)

	// Neither the plaintext password nor the hash may appear anywhere.
	assert.NotContains(t, rec.Body.String(), "pw123")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSONRequest(http.MethodPost, "/auth/register", map[string]string{
		"email": "alice@x.com",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register("Alice", "alice@x.com", "pw123")

	rec := env.doJSONRequest(http.MethodPost, "/auth/register", map[string]string{
		"name":     "Mallory",
		"email":    "ALICE@x.com",
		"password": "other",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	env.register("Alice", "alice@x.com", "pw123")

	rec := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    "alice@x.com",
		"password": "pw123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
}

func TestLogin_IdenticalFailureResponses(t *testing.T) {
	env := newTestEnv(t)
	env.register("Alice", "alice@x.com", "pw123")

	wrongPw := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    "alice@x.com",
		"password": "wrong",
	}, "")
	unknown := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@x.com",
		"password": "pw123",
	}, "")

	require.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	assert.Contains(t, wrongPw.Body.String(), "Invalid credentials")
}

func TestMe_ReturnsCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.register("Alice", "alice@x.com", "pw123")

	rec := env.doJSONRequest(http.MethodGet, "/auth/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, userID, resp.User.ID)
	assert.Equal(t, "alice@x.com", resp.User.Email)
}

func TestMe_WithoutToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSONRequest(http.MethodGet, "/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

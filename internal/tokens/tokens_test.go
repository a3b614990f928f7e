package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func TestCreate_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token, err := Create(userID, "alice@x.com", time.Hour, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ClaimsFromToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "alice@x.com", claims.Email)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestClaimsFromToken_ExpiredToken(t *testing.T) {
	t.Parallel()

	token, err := Create(uuid.New(), "alice@x.com", -time.Minute, testSecret)
	require.NoError(t, err)

	_, err = ClaimsFromToken(token, testSecret)
	require.Error(t, err)
}

func TestClaimsFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := Create(uuid.New(), "alice@x.com", time.Hour, testSecret)
	require.NoError(t, err)

	_, err = ClaimsFromToken(token, []byte("another-secret"))
	require.Error(t, err)
}

func TestClaimsFromToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ClaimsFromToken("not-a-jwt", testSecret)
	require.Error(t, err)
}

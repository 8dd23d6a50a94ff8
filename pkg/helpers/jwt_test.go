package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Hour, 24*time.Hour)
	sub := Subject{UserID: 42, Username: "alice", Role: "admin"}

	tok, exp, err := m.GenerateAccessToken(sub, "sid-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, "admin", claims.Role)

	_, err = m.ParseRefreshToken(tok)
	assert.Error(t, err, "access token must not verify with the refresh secret")
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	tok, _, err := m.GenerateAccessToken(Subject{UserID: 1}, "sid")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(hash, "correct horse"))
	assert.False(t, CompareHashAndPassword(hash, "battery staple"))
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateAndTime(t *testing.T) {
	d, err := ParseDate(" 2026-10-19 ")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", d)

	_, err = ParseDate("2026-02-30")
	assert.Error(t, err)

	tm, err := ParseTimeOfDay("7:05")
	require.NoError(t, err)
	assert.Equal(t, "07:05", tm)

	_, err = ParseTimeOfDay("24:00")
	assert.Error(t, err)

	m, err := MinutesOfDay("19:30")
	require.NoError(t, err)
	assert.Equal(t, 19*60+30, m)

	assert.Equal(t, "19/10/2026", FormatDisplayDate("2026-10-19"))
	assert.Equal(t, "bad", FormatDisplayDate("bad"))
}

func TestRestaurantClock(t *testing.T) {
	c, err := NewRestaurantClock("UTC")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, c.Location())
	assert.Len(t, c.Today(), 10)
	assert.Len(t, c.NowTimeOfDay(), 5)

	_, err = NewRestaurantClock("Mars/Olympus")
	assert.Error(t, err)

	fixed := &FixedClock{At: time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)}
	assert.Equal(t, "2026-10-19", fixed.Today())
	assert.Equal(t, "23:59", fixed.NowTimeOfDay())
}

func TestTokenRoundTripAndRevocation(t *testing.T) {
	SetJWTSecret("utils-test-secret")

	token, err := GenerateToken("admin", "admin", time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID)

	RevokeToken(claims.ID, claims.ExpiresAt.Time)
	assert.True(t, IsTokenRevoked(claims.ID))
	_, err = ParseToken(token)
	assert.Error(t, err)

	expired, err := GenerateToken("admin", "admin", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)

	RevokeToken("old", time.Now().Add(-time.Second))
	assert.False(t, IsTokenRevoked("old"))
}

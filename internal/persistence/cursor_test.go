package persistence

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/carbon/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := &domain.Cursor{
		CreatedAt: time.Date(2026, time.January, 2, 3, 4, 5, 123456000, time.UTC),
		ID:        "2b1f5c3e-6d0a-4a57-9f0e-5f1b2c3d4e5f",
	}

	token := EncodeCursor(cursor)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.True(t, cursor.CreatedAt.Equal(decoded.CreatedAt))
	require.Equal(t, cursor.ID, decoded.ID)
}

func TestCursorEmpty(t *testing.T) {
	require.Empty(t, EncodeCursor(nil))

	decoded, err := DecodeCursor("  ")
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, token := range []string{"%%%", "bm8tc2VwYXJhdG9y", "bm90LWEtdGltZXxhYmM"} {
		_, err := DecodeCursor(token)
		require.Errorf(t, err, "token %q", token)
	}
}

func TestDecodeCursorRejectsNonUUIDID(t *testing.T) {
	token := base64.RawURLEncoding.EncodeToString([]byte("2026-01-01T00:00:00Z|x"))

	_, err := DecodeCursor(token)
	require.ErrorContains(t, err, "invalid cursor id")
}

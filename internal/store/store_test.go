package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"example.com/carbon/internal/config"
	"example.com/carbon/internal/persistence/memory"
)

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), config.Config{StoreDriver: config.StoreDriverMemory}, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	require.IsType(t, &memory.Repository{}, s.Repository)
	require.Nil(t, s.Pool)
}

func TestOpenRejectsMalformedURL(t *testing.T) {
	_, err := Open(context.Background(), config.Config{
		StoreDriver: config.StoreDriverPostgres,
		PostgresURL: "postgres://%zz",
	}, zerolog.Nop())
	require.Error(t, err)
}

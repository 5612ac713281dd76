package sealed_test

import (
	"context"
	"os"
	"testing"

	"github.com/SscSPs/crypto_bookkeeper/internal/adapters/database/file"
	"github.com/SscSPs/crypto_bookkeeper/internal/adapters/database/sealed"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/domain"
	"github.com/SscSPs/crypto_bookkeeper/internal/utils/sealer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRepository_SealsCredentialsAtRest(t *testing.T) {
	ctx := context.Background()
	inner := file.NewStateRepository(t.TempDir(), "state")
	s, err := sealer.New("passphrase")
	require.NoError(t, err)
	repo := sealed.NewStateRepository(inner, s)

	state := domain.NewAppState()
	state.CexConfigs = []domain.CexConfig{{ID: "c1", PlatformID: "binance", APIKey: "public-key", APISecret: "top-secret", Password: "hunter2"}}
	state.AIConfig.APIKey = "sk-assistant"
	require.NoError(t, repo.SaveState(ctx, domain.PersistedState{State: state, Version: domain.StateVersion}))

	assert.Equal(t, "top-secret", state.CexConfigs[0].APISecret, "caller state is not modified")

	raw, err := os.ReadFile(inner.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "top-secret")
	assert.NotContains(t, string(raw), "hunter2")
	assert.NotContains(t, string(raw), "sk-assistant")
	assert.Contains(t, string(raw), "public-key")

	loaded, err := repo.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "top-secret", loaded.State.CexConfigs[0].APISecret)
	assert.Equal(t, "hunter2", loaded.State.CexConfigs[0].Password)
	assert.Equal(t, "sk-assistant", loaded.State.AIConfig.APIKey)
}

func TestStateRepository_WrongPassphraseFailsLoad(t *testing.T) {
	ctx := context.Background()
	inner := file.NewStateRepository(t.TempDir(), "state")
	s1, err := sealer.New("one")
	require.NoError(t, err)
	s2, err := sealer.New("two")
	require.NoError(t, err)

	state := domain.NewAppState()
	state.CexConfigs = []domain.CexConfig{{ID: "c1", APISecret: "secret"}}
	require.NoError(t, sealed.NewStateRepository(inner, s1).SaveState(ctx, domain.PersistedState{State: state}))

	_, err = sealed.NewStateRepository(inner, s2).LoadState(ctx)
	assert.ErrorIs(t, err, sealer.ErrOpen)
}

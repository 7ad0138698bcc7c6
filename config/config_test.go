package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solanatracker-go/commitment"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"rpc_list": ["https://rpc.solanatracker.io/public"],
		"debug_logging": true,
		"send": {
			"commitment": "processed",
			"confirmation_retries": 50,
			"confirmation_retry_timeout": 500
		}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://rpc.solanatracker.io/public"}, cfg.RPCList)
	assert.Equal(t, DefaultSwapAPIURL, cfg.SwapAPIURL)
	assert.True(t, cfg.DebugLogging)

	opts, err := cfg.SendOptions(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, commitment.LevelProcessed, opts.DesiredCommitment)
	assert.Equal(t, 50, opts.ConfirmationRetries)
	assert.Equal(t, 500*time.Millisecond, opts.ConfirmationRetryTimeout)
}

func TestLoadConfigEmptyRPCList(t *testing.T) {
	path := writeConfig(t, `{"rpc_list": []}`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigInvalidRPCURL(t *testing.T) {
	path := writeConfig(t, `{"rpc_list": ["ftp://bad.example.com"]}`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSendOptionsDefaults(t *testing.T) {
	cfg := &Config{}
	opts, err := cfg.SendOptions(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, commitment.LevelConfirmed, opts.DesiredCommitment)
}

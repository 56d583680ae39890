package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "networks.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	t.Run("loads entries with relay preferences", func(t *testing.T) {
		path := writeFile(t, `{
			"mainnet": {
				"name": "Ethereum",
				"rpcUrl": "https://node",
				"chainId": 1,
				"flashbotsRelay": "https://rpc.flashbots.net"
			},
			"base": {"rpcUrl": "https://base-node", "chainId": 8453}
		}`)
		reg, err := LoadRegistry(path)
		require.NoError(t, err)
		require.Len(t, reg, 2)
		assert.Equal(t, "https://rpc.flashbots.net", reg["mainnet"].FlashbotsRelay)
		assert.Equal(t, int64(8453), reg["base"].ChainID)
		assert.Equal(t, []string{"base", "mainnet"}, reg.Keys())
	})

	t.Run("rejects entries without an rpc url", func(t *testing.T) {
		path := writeFile(t, `{"bad": {"chainId": 5}}`)
		_, err := LoadRegistry(path)
		assert.ErrorContains(t, err, "no rpcUrl")
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json errors", func(t *testing.T) {
		path := writeFile(t, `{`)
		_, err := LoadRegistry(path)
		assert.Error(t, err)
	})
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, k := range []string{"NETWORKS_FILE", "ACTIVITY_FILE", "NETWORK", "FEE_MUL", "BUFFER_PCT", "CONFIRM_WAIT_SEC"} {
			t.Setenv(k, "")
		}
		st := Load()
		assert.Equal(t, "networks.json", st.NetworksFile)
		assert.Equal(t, "activity.log", st.ActivityFile)
		assert.Equal(t, "1", st.FeeMultiplier)
		assert.Equal(t, int64(5), st.GasBufferPct)
		assert.Equal(t, 60, st.ConfirmWaitSec)
	})

	t.Run("env overrides with either casing", func(t *testing.T) {
		t.Setenv("FEE_MUL", "1.25")
		t.Setenv("buffer_pct", "10")
		t.Setenv("NETWORK", "base")
		st := Load()
		assert.Equal(t, "1.25", st.FeeMultiplier)
		assert.Equal(t, int64(10), st.GasBufferPct)
		assert.Equal(t, "base", st.Network)
	})
}

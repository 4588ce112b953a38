package cli

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/config"
	"github.com/mrz1836/stationkey/internal/output"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

func TestRunConfigInit(t *testing.T) {
	t.Cleanup(func() { configForce = false })
	cc := newTestContext(t, output.FormatText)
	cmd, buf := newTestCmd(cc)

	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, buf.String(), "Configuration initialized at")

	path := config.Path(cc.Cfg.GetHome())
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().Network, loaded.Network)

	t.Run("refuses to overwrite", func(t *testing.T) {
		cmd, _ := newTestCmd(cc)
		err := runConfigInit(cmd, nil)
		require.ErrorIs(t, err, stationerr.ErrGeneral)
	})

	t.Run("force overwrites", func(t *testing.T) {
		configForce = true
		cmd, _ := newTestCmd(cc)
		require.NoError(t, runConfigInit(cmd, nil))
	})
}

func TestRunConfigShow(t *testing.T) {
	t.Run("text is yaml", func(t *testing.T) {
		cc := newTestContext(t, output.FormatText)
		cmd, buf := newTestCmd(cc)

		require.NoError(t, runConfigShow(cmd, nil))
		assert.Contains(t, buf.String(), "chains:")
		assert.Contains(t, buf.String(), "phoenix-1:")
		assert.Contains(t, buf.String(), "default_transport: usb")
		assert.NotContains(t, buf.String(), "warnings")
	})

	t.Run("json uses file keys", func(t *testing.T) {
		cc := newTestContext(t, output.FormatJSON)
		cmd, buf := newTestCmd(cc)

		require.NoError(t, runConfigShow(cmd, nil))
		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		network, ok := got["network"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 30, network["timeout_seconds"], 0)
	})
}

func TestRunConfigGet(t *testing.T) {
	cc := newTestContext(t, output.FormatText)

	tests := []struct {
		path string
		want string
	}{
		{"logging.level", "error"},
		{"network.burst", "10"},
		{"hardware.default_name", "Ledger"},
		{"chains.phoenix-1.lcd", "https://phoenix-lcd.terra.dev"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			cmd, buf := newTestCmd(cc)
			require.NoError(t, runConfigGet(cmd, []string{tc.path}))
			assert.Equal(t, tc.want+"\n", buf.String())
		})
	}

	t.Run("section prints yaml", func(t *testing.T) {
		cmd, buf := newTestCmd(cc)
		require.NoError(t, runConfigGet(cmd, []string{"network"}))
		assert.Contains(t, buf.String(), "timeout_seconds: 30")
	})

	t.Run("unknown path", func(t *testing.T) {
		cmd, _ := newTestCmd(cc)
		require.ErrorIs(t, runConfigGet(cmd, []string{"network.nope"}), stationerr.ErrNotFound)
	})

	t.Run("path through a value", func(t *testing.T) {
		cmd, _ := newTestCmd(cc)
		require.ErrorIs(t, runConfigGet(cmd, []string{"logging.level.deeper"}), stationerr.ErrNotFound)
	})
}

func TestRunConfigSet(t *testing.T) {
	cc := newTestContext(t, output.FormatText)
	path := config.Path(cc.Cfg.GetHome())

	t.Run("writes a new file", func(t *testing.T) {
		cmd, buf := newTestCmd(cc)
		require.NoError(t, runConfigSet(cmd, []string{"network.timeout_seconds", "45"}))
		assert.Equal(t, "Set network.timeout_seconds = 45\n", buf.String())

		loaded, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, 45, loaded.Network.TimeoutSeconds)
	})

	t.Run("keeps earlier values", func(t *testing.T) {
		cmd, _ := newTestCmd(cc)
		require.NoError(t, runConfigSet(cmd, []string{"chains.pisco-1.lcd", "http://127.0.0.1:1317"}))

		loaded, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, 45, loaded.Network.TimeoutSeconds)
		assert.Equal(t, "http://127.0.0.1:1317", loaded.Chains[chain.TerraTestnet].LCD)
	})

	t.Run("string that looks like a number", func(t *testing.T) {
		cmd, _ := newTestCmd(cc)
		require.NoError(t, runConfigSet(cmd, []string{"hardware.default_name", "1234"}))

		loaded, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "1234", loaded.Hardware.DefaultName)
	})

	errTests := []struct {
		name  string
		path  string
		value string
		want  error
	}{
		{"unknown key", "network.nope", "1", stationerr.ErrNotFound},
		{"section", "network", "1", stationerr.ErrInvalidInput},
		{"wrong type", "network.burst", "many", stationerr.ErrInvalidInput},
		{"fails validation", "hardware.default_transport", "serial", stationerr.ErrConfigInvalid},
		{"bad lcd scheme", "chains.phoenix-1.lcd", "ftp://lcd.example.com", stationerr.ErrConfigInvalid},
	}
	for _, tc := range errTests {
		t.Run(tc.name, func(t *testing.T) {
			before, err := os.ReadFile(path)
			require.NoError(t, err)

			cmd, _ := newTestCmd(cc)
			require.ErrorIs(t, runConfigSet(cmd, []string{tc.path, tc.value}), tc.want)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
		})
	}
}

func TestRunConfigPath(t *testing.T) {
	cc := newTestContext(t, output.FormatText)
	cmd, buf := newTestCmd(cc)

	require.NoError(t, runConfigPath(cmd, nil))
	assert.Equal(t, config.Path(cc.Cfg.GetHome()), strings.TrimSpace(buf.String()))
}

func TestRunChains(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		cc := newTestContext(t, output.FormatText)
		cmd, buf := newTestCmd(cc)

		require.NoError(t, runChains(cmd, nil))
		result := buf.String()
		assert.Contains(t, result, "CHAIN ID")
		for _, id := range []string{chain.Terra, chain.TerraClassic, chain.TerraTestnet, chain.CosmosHub, chain.Osmosis} {
			assert.Contains(t, result, id)
		}
	})

	t.Run("json includes custom chains", func(t *testing.T) {
		cc := newTestContext(t, output.FormatJSON, func(cfg *config.Config) {
			cfg.Chains["juno-1"] = config.ChainConfig{
				LCD: "https://lcd.juno.example", CoinType: 118, Prefix: "juno",
				Denom: "ujuno", GasPrice: "0.075", GasLimit: 200000,
			}
		})
		cmd, buf := newTestCmd(cc)

		require.NoError(t, runChains(cmd, nil))
		var got []chain.Info
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 6)

		var juno *chain.Info
		for i := range got {
			if got[i].ChainID == "juno-1" {
				juno = &got[i]
			}
		}
		require.NotNil(t, juno)
		assert.Equal(t, "juno", juno.Prefix)
		assert.Equal(t, 6, juno.Decimals)
	})
}

package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/output"
	walletservice "github.com/mrz1836/stationkey/internal/service/wallet"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

var testKeyHex = strings.Repeat("2b", 32)

// resetWalletFlags restores wallet flag variables after a test.
func resetWalletFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		addLegacy = false
		addIndex = 0
		addPassphrase = false
		addKeyCoinTypes = []uint{uint(wallet.CoinTypeTerra)}
	})
}

func TestRunWalletAdd(t *testing.T) {
	resetWalletFlags(t)
	withMockPrompts(t, []byte(testPassword), true, testMnemonic)
	cc := newTestContext(t, output.FormatText)
	cmd, buf := newTestCmd(cc)

	require.NoError(t, runWalletAdd(cmd, []string{"main"}))

	result := buf.String()
	assert.Contains(t, result, "Wallet imported")
	assert.Contains(t, result, "main")
	assert.Contains(t, result, "Address (330)")
	assert.Contains(t, result, "terra1")
	assert.Contains(t, result, "Address (118)")
	assert.Contains(t, result, "cosmos1")
	assert.NotContains(t, result, "abandon")
}

func TestRunWalletAdd_Legacy(t *testing.T) {
	resetWalletFlags(t)
	withMockPrompts(t, []byte(testPassword), true, testMnemonic)
	cc := newTestContext(t, output.FormatJSON)
	cmd, buf := newTestCmd(cc)

	addLegacy = true
	require.NoError(t, runWalletAdd(cmd, []string{"old"}))

	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "yes", got["legacy"])

	// A legacy Terra address shares the Cosmos key.
	terraWords := strings.TrimPrefix(got["address_330"], "terra1")
	cosmosWords := strings.TrimPrefix(got["address_118"], "cosmos1")
	assert.Equal(t, terraWords[:20], cosmosWords[:20])
}

func TestRunWalletAdd_InvalidMnemonic(t *testing.T) {
	resetWalletFlags(t)
	withMockPrompts(t, []byte(testPassword), true, "abandon abandon abandon")
	cc := newTestContext(t, output.FormatText)
	cmd, _ := newTestCmd(cc)

	err := runWalletAdd(cmd, []string{"main"})
	require.ErrorIs(t, err, stationerr.ErrInvalidMnemonic)
}

func TestRunWalletAdd_Duplicate(t *testing.T) {
	resetWalletFlags(t)
	withMockPrompts(t, []byte(testPassword), true, testMnemonic)
	cc := newTestContext(t, output.FormatText)
	cmd, _ := newTestCmd(cc)

	require.NoError(t, runWalletAdd(cmd, []string{"main"}))
	require.ErrorIs(t, runWalletAdd(cmd, []string{"main"}), stationerr.ErrWalletExists)
}

func TestRunWalletAddKey(t *testing.T) {
	resetWalletFlags(t)
	withMockPrompts(t, []byte(testPassword), true, testKeyHex)
	cc := newTestContext(t, output.FormatText)
	cmd, buf := newTestCmd(cc)

	addKeyCoinTypes = []uint{330, 118}
	require.NoError(t, runWalletAddKey(cmd, []string{"hot"}))

	result := buf.String()
	assert.Contains(t, result, "Address (330)")
	assert.Contains(t, result, "Address (118)")

	summaries, err := cc.Wallets.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, []wallet.CoinType{wallet.CoinTypeTerra, wallet.CoinTypeCosmos}, summaries[0].CoinTypes)
}

func TestRunWalletAddKey_NoCoinTypes(t *testing.T) {
	resetWalletFlags(t)
	withMockPrompts(t, []byte(testPassword), true, testKeyHex)
	cc := newTestContext(t, output.FormatText)
	cmd, _ := newTestCmd(cc)

	addKeyCoinTypes = nil
	require.ErrorIs(t, runWalletAddKey(cmd, []string{"hot"}), stationerr.ErrInvalidInput)
}

func TestRunWalletList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		cc := newTestContext(t, output.FormatText)
		cmd, buf := newTestCmd(cc)

		require.NoError(t, runWalletList(cmd, nil))
		assert.Contains(t, buf.String(), "No wallets found.")
	})

	t.Run("text", func(t *testing.T) {
		cc := newTestContext(t, output.FormatText)
		addTestWallet(t, cc, "main")
		cmd, buf := newTestCmd(cc)

		require.NoError(t, runWalletList(cmd, nil))
		result := buf.String()
		assert.Contains(t, result, "NAME")
		assert.Contains(t, result, "main")
		assert.Contains(t, result, "330,118")
	})

	t.Run("json", func(t *testing.T) {
		cc := newTestContext(t, output.FormatJSON)
		addTestWallet(t, cc, "main")
		cmd, buf := newTestCmd(cc)

		require.NoError(t, runWalletList(cmd, nil))
		var got []walletservice.Summary
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "main", got[0].Name)
		assert.False(t, got[0].Locked)
	})
}

func TestRunWalletUnlock(t *testing.T) {
	cc := newTestContext(t, output.FormatText)
	addTestWallet(t, cc, "main")
	require.NoError(t, cc.Session.Lock())

	t.Run("wrong password", func(t *testing.T) {
		withMockPrompts(t, []byte("wrong password"), true, "")
		cmd, _ := newTestCmd(cc)
		require.ErrorIs(t, runWalletUnlock(cmd, []string{"main"}), stationerr.ErrIncorrectPassword)
	})

	t.Run("correct password", func(t *testing.T) {
		withMockPrompts(t, []byte(testPassword), true, "")
		cmd, buf := newTestCmd(cc)
		require.NoError(t, runWalletUnlock(cmd, []string{"main"}))
		assert.Contains(t, buf.String(), `Wallet "main" unlocked`)
		require.NoError(t, cc.Session.Connect("main"))
	})
}

func TestPrefixFor(t *testing.T) {
	t.Parallel()

	reg := chain.DefaultRegistry()
	assert.Equal(t, "terra", prefixFor(reg, wallet.CoinTypeTerra))
	assert.Equal(t, "cosmos", prefixFor(reg, wallet.CoinTypeCosmos))
	assert.Equal(t, "terra", prefixFor(reg, wallet.CoinType(60)))
	assert.Equal(t, "terra", prefixFor(nil, wallet.CoinTypeCosmos))
}

func TestYesNo(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}

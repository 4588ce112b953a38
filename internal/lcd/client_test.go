package lcd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/tx"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

const testAddr = "terra1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnzs23v"

func terraInfo(t *testing.T) chain.Info {
	t.Helper()
	info, err := chain.DefaultRegistry().Lookup(chain.Terra)
	require.NoError(t, err)
	return info
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(terraInfo(t), &ClientOptions{BaseURL: server.URL + "/", HTTPClient: server.Client()})
	require.NoError(t, err)
	return c
}

func sendOpts(t *testing.T) *tx.Options {
	t.Helper()
	msg, err := tx.NewMsgSend(testAddr, testAddr, []tx.Coin{{Denom: "uluna", Amount: "1"}})
	require.NoError(t, err)
	return &tx.Options{ChainID: chain.Terra, Msgs: []tx.Msg{msg}}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("uses chain LCD", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(terraInfo(t), nil)
		require.NoError(t, err)
		assert.Equal(t, terraInfo(t).LCD, c.baseURL)
		assert.Equal(t, chain.Terra, c.ChainID())
		assert.NotNil(t, c.rateLimiter)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(terraInfo(t), &ClientOptions{BaseURL: "https://lcd.example/"})
		require.NoError(t, err)
		assert.Equal(t, "https://lcd.example", c.baseURL)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient(chain.Info{ChainID: "bare-1"}, nil)
		require.ErrorIs(t, err, stationerr.ErrConfigInvalid)
	})
}

func TestFetchAccount(t *testing.T) {
	t.Parallel()

	t.Run("base account", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, accountsPath+testAddr, r.URL.Path)
			_, _ = io.WriteString(w, `{"account":{"@type":"/cosmos.auth.v1beta1.BaseAccount","address":"`+testAddr+
				`","pub_key":{"@type":"/cosmos.crypto.secp256k1.PubKey","key":"AQID"},"account_number":"12","sequence":"4"}}`)
		})

		acc, err := c.FetchAccount(context.Background(), testAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(12), acc.AccountNumber)
		assert.Equal(t, uint64(4), acc.Sequence)
		assert.Equal(t, []byte{1, 2, 3}, acc.PubKey)
		assert.Equal(t, testAddr, acc.Address)
	})

	t.Run("vesting account", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"account":{"@type":"/cosmos.vesting.v1beta1.ContinuousVestingAccount",`+
				`"base_vesting_account":{"base_account":{"address":"`+testAddr+`","pub_key":null,"account_number":"7","sequence":"9"}}}}`)
		})

		acc, err := c.FetchAccount(context.Background(), testAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), acc.AccountNumber)
		assert.Equal(t, uint64(9), acc.Sequence)
		assert.Nil(t, acc.PubKey)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code":5,"message":"account not found"}`)
		})

		_, err := c.FetchAccount(context.Background(), testAddr)
		require.ErrorIs(t, err, stationerr.ErrAccountNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"code":13,"message":"internal"}`)
		})

		_, err := c.FetchAccount(context.Background(), testAddr)
		require.ErrorIs(t, err, stationerr.ErrNetworkError)
		assert.Contains(t, err.Error(), "internal")
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `not json`)
		})

		_, err := c.FetchAccount(context.Background(), testAddr)
		require.Error(t, err)
	})
}

func TestCreate(t *testing.T) {
	t.Parallel()

	accountHandler := func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"account":{"address":"`+testAddr+`","account_number":"12","sequence":"4"}}`)
	}

	t.Run("default fee", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, accountHandler)
		pub := []byte{2, 9}

		unsigned, err := c.Create(context.Background(), []tx.Signer{{Address: testAddr, PubKey: pub}}, sendOpts(t))
		require.NoError(t, err)
		assert.Equal(t, uint64(12), unsigned.AccountNumber)
		assert.Equal(t, uint64(4), unsigned.Sequence)
		assert.Equal(t, chain.Terra, unsigned.ChainID)
		require.Len(t, unsigned.AuthInfo.SignerInfos, 1)
		assert.Equal(t, pub, unsigned.AuthInfo.SignerInfos[0].PubKey)
		assert.Equal(t, uint64(4), unsigned.AuthInfo.SignerInfos[0].Sequence)

		info := terraInfo(t)
		expected, err := info.DefaultFee()
		require.NoError(t, err)
		assert.Equal(t, info.GasLimit, unsigned.AuthInfo.Fee.GasLimit)
		assert.Equal(t, []tx.Coin{{Denom: info.Denom, Amount: expected.String()}}, unsigned.AuthInfo.Fee.Amount)
	})

	t.Run("explicit fee", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, accountHandler)
		opts := sendOpts(t)
		opts.Fee = &tx.Fee{Amount: []tx.Coin{{Denom: "uluna", Amount: "1"}}, GasLimit: 99}
		opts.Memo = "memo"

		unsigned, err := c.Create(context.Background(), []tx.Signer{{Address: testAddr}}, opts)
		require.NoError(t, err)
		assert.Equal(t, *opts.Fee, unsigned.AuthInfo.Fee)
		assert.Equal(t, "memo", unsigned.Body.Memo)
	})

	t.Run("no signers", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, accountHandler)
		_, err := c.Create(context.Background(), nil, sendOpts(t))
		require.ErrorIs(t, err, stationerr.ErrInvalidTransaction)
	})
}

func TestBroadcastSync(t *testing.T) {
	t.Parallel()
	signed := &tx.SignedTx{
		Body:       tx.Body{Memo: "m"},
		Signatures: [][]byte{make([]byte, 64)},
	}

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, txsPath, r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req broadcastRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, broadcastModeSync, req.Mode)
			raw, err := base64.StdEncoding.DecodeString(req.TxBytes)
			assert.NoError(t, err)
			assert.Equal(t, signed.Bytes(), raw)

			_, _ = io.WriteString(w, `{"tx_response":{"height":"0","txhash":"ABCD","code":0,"raw_log":"[]"}}`)
		})

		res, err := c.BroadcastSync(context.Background(), signed)
		require.NoError(t, err)
		assert.Equal(t, "ABCD", res.TxHash)
		assert.False(t, res.Failed())
	})

	t.Run("rejected returns result", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"tx_response":{"height":"0","txhash":"EF","codespace":"sdk","code":32,"raw_log":"account sequence mismatch"}}`)
		})

		res, err := c.BroadcastSync(context.Background(), signed)
		require.NoError(t, err)
		assert.True(t, res.Failed())
		assert.Equal(t, uint32(32), res.Code)
		assert.Equal(t, "sdk", res.Codespace)
		assert.Equal(t, "account sequence mismatch", res.RawLog)
	})

	t.Run("http error", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, "bad")
		})

		_, err := c.BroadcastSync(context.Background(), signed)
		require.ErrorIs(t, err, stationerr.ErrNetworkError)
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"account":{"address":"`+testAddr+`","account_number":"1","sequence":"2"}}`)
	}))
	t.Cleanup(server.Close)

	info := terraInfo(t)
	info.LCD = server.URL
	router := NewRouter(chain.NewRegistry(info), &ClientOptions{HTTPClient: server.Client(), BaseURL: "ignored"})

	a, err := router.Client(chain.Terra)
	require.NoError(t, err)
	b, err := router.Client(chain.Terra)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, server.URL, a.baseURL)

	acc, err := router.FetchAccount(context.Background(), chain.Terra, testAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), acc.Sequence)

	unsigned, err := router.Create(context.Background(), []tx.Signer{{Address: testAddr}}, sendOpts(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), unsigned.AccountNumber)
	assert.Equal(t, int32(2), calls.Load())

	_, err = router.Client("unknown-9")
	require.ErrorIs(t, err, stationerr.ErrUnknownChain)

	opts := sendOpts(t)
	opts.ChainID = "unknown-9"
	_, err = router.Create(context.Background(), []tx.Signer{{Address: testAddr}}, opts)
	require.ErrorIs(t, err, stationerr.ErrUnknownChain)

	_, err = router.BroadcastSync(context.Background(), &tx.SignedTx{}, "unknown-9")
	require.ErrorIs(t, err, stationerr.ErrUnknownChain)
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// errTestRandom is used for testing non-station error handling.
var errTestRandom = stationerr.New("TEST_ERROR", "some random error")

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "all fields populated",
			info: BuildInfo{Version: "v1.2.3", Commit: "abc1234", Date: "2026-01-15"},
			want: "v1.2.3 (commit: abc1234, built: 2026-01-15)",
		},
		{
			name: "all fields empty",
			info: BuildInfo{},
			want: "dev (commit: unknown, built: unknown)",
		},
		{
			name: "only version empty",
			info: BuildInfo{Commit: "def5678", Date: "2026-02-20"},
			want: "dev (commit: def5678, built: 2026-02-20)",
		},
		{
			name: "commit and date empty",
			info: BuildInfo{Version: "v4.0.0"},
			want: "v4.0.0 (commit: unknown, built: unknown)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, formatVersion(tc.info))
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error returns success", nil, stationerr.ExitSuccess},
		{"general error", stationerr.ErrGeneral, stationerr.ExitGeneral},
		{"invalid input error", stationerr.ErrInvalidInput, stationerr.ExitInput},
		{"incorrect password", stationerr.ErrIncorrectPassword, stationerr.ExitAuth},
		{"missing coin type key looks like a bad password", stationerr.ErrNoKeyForCoinType, stationerr.ExitAuth},
		{"wallet locked", stationerr.ErrWalletLocked, stationerr.ExitAuth},
		{"wallet not found", stationerr.ErrWalletNotFound, stationerr.ExitNotFound},
		{"account not found", stationerr.ErrAccountNotFound, stationerr.ExitNotFound},
		{"unsupported operation", stationerr.ErrUnsupportedOperation, stationerr.ExitPermission},
		{"no wallet connected", stationerr.ErrNoWalletConnected, stationerr.ExitInput},
		{"broadcast rejected", stationerr.NewBroadcastError("out of gas"), stationerr.ExitGeneral},
		{"non-station error returns general", errTestRandom, stationerr.ExitGeneral},
		{
			"wrapped error preserves exit code",
			stationerr.Wrap(stationerr.ErrIncorrectPassword, "unlocking"),
			stationerr.ExitAuth,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

func TestVersionFields(t *testing.T) {
	t.Parallel()

	fields := versionFields(BuildInfo{Version: "v0.3.0"})
	got := make(map[string]string, len(fields))
	for _, f := range fields {
		got[f.Key] = f.Value
	}
	assert.Equal(t, "v0.3.0", got["version"])
	assert.Equal(t, "unknown", got["commit"])
	assert.Equal(t, "unknown", got["built"])
	assert.NotEmpty(t, got["go"])
	assert.Contains(t, got["platform"], "/")
}

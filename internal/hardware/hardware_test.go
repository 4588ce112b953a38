package hardware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/stationkey/internal/tx"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

var errDeviceBusy = errors.New("device busy")

type stubDevice struct {
	index int
}

func (d *stubDevice) PublicKey(context.Context, wallet.CoinType) ([]byte, error) { return nil, nil }
func (d *stubDevice) SignAmino(context.Context, *tx.SignDoc) ([]byte, error)     { return nil, nil }
func (d *stubDevice) Close() error                                               { return nil }

func TestMux_DispatchesByTransport(t *testing.T) {
	t.Parallel()
	m := NewMux()
	m.Register(wallet.TransportBluetooth, func(_ context.Context, index int) (Device, error) {
		return &stubDevice{index: index}, nil
	})

	dev, err := m.Open(context.Background(), wallet.TransportBluetooth, 2)
	require.NoError(t, err)
	stub, ok := dev.(*stubDevice)
	require.True(t, ok)
	assert.Equal(t, 2, stub.index)

	_, err = m.Open(context.Background(), wallet.TransportUSB, 0)
	require.ErrorIs(t, err, stationerr.ErrHardwareUnavailable)

	assert.Equal(t, []wallet.Transport{wallet.TransportBluetooth}, m.Kinds())
}

func TestMux_Validation(t *testing.T) {
	t.Parallel()
	m := NewMux()

	_, err := m.Open(context.Background(), "serial", 0)
	require.ErrorIs(t, err, stationerr.ErrInvalidInput)

	_, err = m.Open(context.Background(), wallet.TransportUSB, -1)
	require.ErrorIs(t, err, stationerr.ErrInvalidInput)
}

func TestMux_DriverError(t *testing.T) {
	t.Parallel()
	m := NewMux()
	m.Register(wallet.TransportUSB, func(context.Context, int) (Device, error) {
		return nil, errDeviceBusy
	})

	_, err := m.Open(context.Background(), wallet.TransportUSB, 0)
	require.ErrorIs(t, err, errDeviceBusy)
	assert.Contains(t, err.Error(), "opening usb device 0")
}

package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"
)

// ErrNotTerminal is returned by RenderQR when w is not a terminal.
var ErrNotTerminal = errors.New("output is not a terminal")

// QROptions controls how an address is drawn as a QR code.
type QROptions struct {
	Level      qr.Level
	QuietZone  int  // empty modules around the code in the terminal
	HalfBlocks bool // two module rows per terminal line
	Scale      int  // PNG pixels per module
}

// AddressQROptions returns the options for bech32 addresses. Addresses are
// short, so low error correction keeps the code small enough to scan from a
// terminal.
func AddressQROptions() QROptions {
	return QROptions{
		Level:      qr.L,
		QuietZone:  1,
		HalfBlocks: true,
		Scale:      8,
	}
}

// RenderQR draws data as a QR code on the terminal w.
func RenderQR(w io.Writer, data string, opts QROptions) error {
	if !IsTerminal(w) {
		return ErrNotTerminal
	}

	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:          opts.Level,
		Writer:         w,
		QuietZone:      opts.QuietZone,
		HalfBlocks:     opts.HalfBlocks,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
	return nil
}

// WriteQRPNG writes data as a PNG QR code.
func WriteQRPNG(w io.Writer, data string, opts QROptions) error {
	code, err := qr.Encode(data, opts.Level)
	if err != nil {
		return fmt.Errorf("encoding qr code: %w", err)
	}
	if opts.Scale > 0 {
		code.Scale = opts.Scale
	}
	_, err = w.Write(code.PNG())
	return err
}

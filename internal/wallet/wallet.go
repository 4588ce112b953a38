// Package wallet defines the wallet data model: the connectable wallet
// descriptor, the encrypted key record variants, BIP39 mnemonic handling,
// and BIP44 key derivation.
package wallet

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/mrz1836/go-sanitize"

	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// CoinType is a BIP44 coin type. It selects the derivation path and address
// format for a chain family. Encoded as its decimal tag ("330") in JSON map keys.
type CoinType uint32

// Well-known coin types.
const (
	CoinTypeCosmos CoinType = 118
	CoinTypeTerra  CoinType = 330

	// DefaultCoinType is the coin type requested when the caller does not specify one.
	DefaultCoinType = CoinTypeTerra

	// LegacyCoinType is the coin type historically used by single-coin-type seeds.
	LegacyCoinType = CoinTypeCosmos
)

// String returns the decimal tag for the coin type.
func (c CoinType) String() string {
	return strconv.FormatUint(uint64(c), 10)
}

// ParseCoinType parses a decimal coin type tag such as "330".
func ParseCoinType(s string) (CoinType, error) {
	v, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, fmt.Errorf("%w: coin type %q", stationerr.ErrInvalidInput, s)
	}
	return CoinType(v), nil
}

// Kind tags the backend a descriptor resolves to.
type Kind string

// Descriptor kinds.
const (
	KindLocal    Kind = "local"
	KindMultisig Kind = "multisig"
	KindHardware Kind = "hardware"
)

// Transport is the physical link to a hardware signing device.
type Transport string

// Supported hardware transports.
const (
	TransportUSB       Transport = "usb"
	TransportBluetooth Transport = "bluetooth"
)

// IsValid reports whether t is a known transport.
func (t Transport) IsValid() bool {
	return t == TransportUSB || t == TransportBluetooth
}

// DefaultHardwareName is the name given to hardware descriptors when none is provided.
const DefaultHardwareName = "Ledger"

// Words is the bech32 5-bit word representation of an address payload,
// stored so an address can be shown for any prefix without decryption.
type Words []byte

var (
	// ErrInvalidWalletName indicates the wallet name is invalid.
	ErrInvalidWalletName = stationerr.WithSuggestion(stationerr.ErrInvalidInput,
		"wallet name must be 1-64 letters, digits, spaces, underscores, or hyphens")

	// ErrInvalidDeviceIndex indicates a negative hardware device index.
	ErrInvalidDeviceIndex = stationerr.WithSuggestion(stationerr.ErrInvalidInput,
		"device index must be zero or greater")

	// ErrInvalidTransport indicates an unknown hardware transport.
	ErrInvalidTransport = stationerr.WithSuggestion(stationerr.ErrInvalidInput,
		"transport must be usb or bluetooth")

	walletNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_ -]{1,64}$`)
)

// Descriptor is the connectable identity of a wallet. It never holds
// decrypted key material.
type Descriptor struct {
	// Name is the unique identifier and the key into the key store.
	Name string `json:"name"`

	// Kind selects the key backend.
	Kind Kind `json:"kind"`

	// AddressWords maps a coin type to its address words.
	AddressWords map[CoinType]Words `json:"words"`

	// PubKey maps a coin type to the compressed public key reported by a hardware device.
	PubKey map[CoinType][]byte `json:"pubkey,omitempty"`

	// Legacy mirrors the seed record flag for display purposes.
	Legacy bool `json:"legacy,omitempty"`

	// DeviceIndex is the hardware account index.
	DeviceIndex int `json:"device_index,omitempty"`

	// Transport is the hardware link.
	Transport Transport `json:"transport,omitempty"`

	// Locked descriptors can never be connected.
	Locked bool `json:"locked,omitempty"`
}

// ValidateWalletName checks if a wallet name is valid.
func ValidateWalletName(name string) error {
	if !walletNameRegex.MatchString(name) {
		return ErrInvalidWalletName
	}
	return nil
}

// SuggestWalletName provides a sanitized version of an invalid wallet name.
// Returns empty string if the input cannot be sanitized to a valid name.
func SuggestWalletName(name string) string {
	suggested := sanitize.PathName(name)
	if len(suggested) > 64 {
		suggested = suggested[:64]
	}
	return suggested
}

// NewLocalDescriptor builds a descriptor for a password-protected wallet.
func NewLocalDescriptor(name string, words map[CoinType]Words) (*Descriptor, error) {
	if err := ValidateWalletName(name); err != nil {
		return nil, err
	}
	return &Descriptor{
		Name:         name,
		Kind:         KindLocal,
		AddressWords: copyWords(words),
	}, nil
}

// NewHardwareDescriptor builds a descriptor for a hardware signing device.
// An empty name defaults to DefaultHardwareName and an empty transport to USB.
func NewHardwareDescriptor(words map[CoinType]Words, pubKey map[CoinType][]byte, index int, transport Transport, name string) (*Descriptor, error) {
	if name == "" {
		name = DefaultHardwareName
	}
	if transport == "" {
		transport = TransportUSB
	}
	if err := ValidateWalletName(name); err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, ErrInvalidDeviceIndex
	}
	if !transport.IsValid() {
		return nil, ErrInvalidTransport
	}

	pk := make(map[CoinType][]byte, len(pubKey))
	for ct, key := range pubKey {
		pk[ct] = append([]byte(nil), key...)
	}

	return &Descriptor{
		Name:         name,
		Kind:         KindHardware,
		AddressWords: copyWords(words),
		PubKey:       pk,
		DeviceIndex:  index,
		Transport:    transport,
	}, nil
}

// IsHardware reports whether the descriptor resolves to a hardware device.
func (d *Descriptor) IsHardware() bool {
	return d.Kind == KindHardware
}

// WordsFor returns the address words stored for a coin type.
func (d *Descriptor) WordsFor(coinType CoinType) (Words, bool) {
	w, ok := d.AddressWords[coinType]
	return w, ok && len(w) > 0
}

// Clone returns a deep copy so callers cannot mutate session state.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	c := *d
	c.AddressWords = copyWords(d.AddressWords)
	if d.PubKey != nil {
		c.PubKey = make(map[CoinType][]byte, len(d.PubKey))
		for ct, key := range d.PubKey {
			c.PubKey[ct] = append([]byte(nil), key...)
		}
	}
	return &c
}

func copyWords(in map[CoinType]Words) map[CoinType]Words {
	out := make(map[CoinType]Words, len(in))
	for ct, w := range in {
		out[ct] = append(Words(nil), w...)
	}
	return out
}

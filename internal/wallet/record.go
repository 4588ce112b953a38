package wallet

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mrz1836/stationkey/internal/stationcrypto"
)

// Record type tags used in the at-rest JSON form.
const (
	recordTypeSeed = "seed"
	recordTypeRaw  = "raw"
)

var (
	// ErrUnknownRecordType indicates a decrypted record with an unrecognized shape.
	ErrUnknownRecordType = errors.New("unknown key record type")

	// ErrEmptyRecord indicates a record without key material.
	ErrEmptyRecord = errors.New("key record holds no key material")
)

// KeyRecord is the decrypted form of a stored wallet's key material.
// Exactly one of SeedRecord or RawKeyRecord is stored per wallet.
type KeyRecord interface {
	// Destroy zeros the key material held by the record.
	Destroy()

	isKeyRecord()
}

// SeedRecord holds a master seed from which per-coin-type keys are derived.
type SeedRecord struct {
	Seed HexBytes `json:"seed"`

	// Legacy selects the historical coin type when the default one is requested.
	Legacy bool `json:"legacy,omitempty"`

	// Index is the BIP44 address index.
	Index uint32 `json:"index"`
}

// RawKeyRecord holds independently stored private keys, one per coin type.
type RawKeyRecord struct {
	Keys map[CoinType]HexBytes `json:"keys"`
}

func (*SeedRecord) isKeyRecord()   {}
func (*RawKeyRecord) isKeyRecord() {}

// Destroy zeros the seed.
func (r *SeedRecord) Destroy() {
	stationcrypto.ZeroBytes(r.Seed)
	r.Seed = nil
}

// Destroy zeros every stored key.
func (r *RawKeyRecord) Destroy() {
	for ct, k := range r.Keys {
		stationcrypto.ZeroBytes(k)
		delete(r.Keys, ct)
	}
}

// HexBytes is a byte slice encoded as a hex string in JSON.
type HexBytes []byte

// MarshalJSON encodes the bytes as a lowercase hex string.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

// UnmarshalJSON decodes a hex string.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decoding hex: %w", err)
	}
	*h = b
	return nil
}

// recordEnvelope is the tagged at-rest JSON form of a KeyRecord.
type recordEnvelope struct {
	Type   string                `json:"type"`
	Seed   HexBytes              `json:"seed,omitempty"`
	Legacy bool                  `json:"legacy,omitempty"`
	Index  uint32                `json:"index,omitempty"`
	Keys   map[CoinType]HexBytes `json:"keys,omitempty"`
}

// MarshalRecord encodes a record into its tagged JSON form.
// The returned bytes contain key material and must be zeroed after use.
func MarshalRecord(rec KeyRecord) ([]byte, error) {
	var env recordEnvelope
	switch r := rec.(type) {
	case *SeedRecord:
		if len(r.Seed) == 0 {
			return nil, ErrEmptyRecord
		}
		env = recordEnvelope{Type: recordTypeSeed, Seed: r.Seed, Legacy: r.Legacy, Index: r.Index}
	case *RawKeyRecord:
		if len(r.Keys) == 0 {
			return nil, ErrEmptyRecord
		}
		env = recordEnvelope{Type: recordTypeRaw, Keys: r.Keys}
	default:
		return nil, ErrUnknownRecordType
	}
	return json.Marshal(env)
}

// UnmarshalRecord decodes a tagged JSON record. Key material that does not
// end up in the returned record is zeroed, including on failure.
func UnmarshalRecord(data []byte) (KeyRecord, error) {
	var env recordEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		zeroEnvelope(&env)
		return nil, fmt.Errorf("parsing key record: %w", err)
	}
	return recordFromEnvelope(&env)
}

// recordFromEnvelope moves the key material for env.Type into a record and
// zeroes the rest of env.
func recordFromEnvelope(env *recordEnvelope) (KeyRecord, error) {
	defer zeroEnvelope(env)

	switch env.Type {
	case recordTypeSeed:
		if len(env.Seed) == 0 {
			return nil, ErrEmptyRecord
		}
		rec := &SeedRecord{Seed: env.Seed, Legacy: env.Legacy, Index: env.Index}
		env.Seed = nil
		return rec, nil
	case recordTypeRaw:
		if len(env.Keys) == 0 {
			return nil, ErrEmptyRecord
		}
		rec := &RawKeyRecord{Keys: env.Keys}
		env.Keys = nil
		return rec, nil
	default:
		return nil, ErrUnknownRecordType
	}
}

func zeroEnvelope(env *recordEnvelope) {
	stationcrypto.ZeroBytes(env.Seed)
	for _, k := range env.Keys {
		stationcrypto.ZeroBytes(k)
	}
}

// EffectiveCoinType returns the coin type a seed record derives for the
// requested one: legacy seeds asked for the default coin type derive the
// legacy coin type; every other request passes through unchanged.
func (r *SeedRecord) EffectiveCoinType(requested CoinType) CoinType {
	if r.Legacy && requested == DefaultCoinType {
		return LegacyCoinType
	}
	return requested
}

// Package signer produces public keys, signatures and signed transactions
// from a resolved signing key, and encrypted key exports from key records.
package signer

import (
	"context"
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/mrz1836/stationkey/internal/address"
	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/keys"
	"github.com/mrz1836/stationkey/internal/metrics"
	"github.com/mrz1836/stationkey/internal/stationcrypto"
	"github.com/mrz1836/stationkey/internal/tx"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// signatureLength is the size of an R||S secp256k1 signature.
const signatureLength = 64

// TxBuilder builds an unsigned transaction, filling in account numbers and
// sequences for the given signers.
type TxBuilder interface {
	Create(ctx context.Context, signers []tx.Signer, opts *tx.Options) (*tx.UnsignedTx, error)
}

// LogWriter provides logging operations.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// BytesSignature is a recoverable signature over an arbitrary payload.
type BytesSignature struct {
	Signature  []byte `json:"signature"`
	RecoveryID byte   `json:"recovery_id"`
	PublicKey  []byte `json:"public_key"`
}

// Engine signs with resolved keys. It holds no key material between calls.
type Engine struct {
	builder  TxBuilder
	registry chain.Registry
	log      LogWriter
}

// NewEngine creates a signing engine. builder is only needed for SignAndAssembleTx.
func NewEngine(builder TxBuilder, registry chain.Registry, log LogWriter) *Engine {
	if log == nil {
		log = nopLogger{}
	}
	return &Engine{builder: builder, registry: registry, log: log}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// DerivePublicKey returns the compressed secp256k1 public key for key.
func (e *Engine) DerivePublicKey(ctx context.Context, key keys.SigningKey) ([]byte, error) {
	switch k := key.(type) {
	case *keys.SeedKey:
		priv, err := seedPrivateKey(k)
		if err != nil {
			return nil, err
		}
		defer stationcrypto.ZeroBytes(priv)
		return wallet.PublicKeyFromPrivate(priv)

	case *keys.RawKey:
		return wallet.PublicKeyFromPrivate(k.PrivateKey())

	case *keys.HardwareKey:
		return k.Device().PublicKey(ctx, k.CoinType())

	default:
		return nil, stationerr.ErrUnsupportedOperation
	}
}

// SignDocument signs doc in legacy amino JSON mode.
func (e *Engine) SignDocument(ctx context.Context, key keys.SigningKey, doc *tx.SignDoc) (*tx.SignatureV2, error) {
	sig, err := e.signDocument(ctx, key, doc)
	metrics.Global.RecordSignature(key.Variant(), err)
	return sig, err
}

func (e *Engine) signDocument(ctx context.Context, key keys.SigningKey, doc *tx.SignDoc) (*tx.SignatureV2, error) {
	pub, err := e.DerivePublicKey(ctx, key)
	if err != nil {
		return nil, err
	}

	var sig []byte
	if hw, ok := key.(*keys.HardwareKey); ok {
		sig, err = hw.Device().SignAmino(ctx, doc)
		if err != nil {
			return nil, stationerr.Wrap(err, "hardware signing")
		}
	} else {
		signBytes, err := tx.AminoSignBytes(doc)
		if err != nil {
			return nil, stationerr.Wrap(stationerr.ErrInvalidTransaction, "building amino sign bytes: %v", err)
		}
		sig, err = e.signSoftware(key, signBytes)
		if err != nil {
			return nil, err
		}
	}

	if len(sig) != signatureLength {
		return nil, stationerr.ErrSignatureUnavailable
	}
	return &tx.SignatureV2{
		PubKey:   pub,
		Data:     tx.SignatureData{Mode: tx.SignModeLegacyAminoJSON, Signature: sig},
		Sequence: doc.Sequence,
	}, nil
}

// SignDirect signs doc in protobuf direct mode. Hardware keys only support amino.
func (e *Engine) SignDirect(ctx context.Context, key keys.SigningKey, doc *tx.SignDoc) (*tx.SignatureV2, error) {
	sig, err := e.signDirect(ctx, key, doc)
	metrics.Global.RecordSignature(key.Variant(), err)
	return sig, err
}

func (e *Engine) signDirect(ctx context.Context, key keys.SigningKey, doc *tx.SignDoc) (*tx.SignatureV2, error) {
	if _, ok := key.(*keys.HardwareKey); ok {
		return nil, stationerr.WithDetails(stationerr.ErrUnsupportedOperation,
			map[string]string{"reason": "hardware device only signs in amino mode"})
	}

	pub, err := e.DerivePublicKey(ctx, key)
	if err != nil {
		return nil, err
	}
	sig, err := e.signSoftware(key, tx.DirectSignBytes(doc))
	if err != nil {
		return nil, err
	}
	return &tx.SignatureV2{
		PubKey:   pub,
		Data:     tx.SignatureData{Mode: tx.SignModeDirect, Signature: sig},
		Sequence: doc.Sequence,
	}, nil
}

// SignBytes signs sha256(payload) with a recoverable ECDSA signature.
// Hardware devices cannot sign arbitrary data.
func (e *Engine) SignBytes(ctx context.Context, key keys.SigningKey, payload []byte) (*BytesSignature, error) {
	sig, err := e.signBytes(ctx, key, payload)
	metrics.Global.RecordSignature(key.Variant(), err)
	return sig, err
}

func (e *Engine) signBytes(ctx context.Context, key keys.SigningKey, payload []byte) (*BytesSignature, error) {
	if _, ok := key.(*keys.HardwareKey); ok {
		return nil, stationerr.WithDetails(stationerr.ErrUnsupportedOperation,
			map[string]string{"reason": "hardware device cannot sign arbitrary data"})
	}

	priv, err := softwarePrivateKey(key)
	if err != nil {
		return nil, err
	}
	defer stationcrypto.ZeroBytes(priv)

	ecdsaKey, err := ethcrypto.ToECDSA(priv)
	if err != nil {
		return nil, wallet.ErrInvalidPrivateKey
	}

	hash := sha256.Sum256(payload)
	sig, err := ethcrypto.Sign(hash[:], ecdsaKey)
	if err != nil || len(sig) != signatureLength+1 {
		return nil, stationerr.ErrSignatureUnavailable
	}

	return &BytesSignature{
		Signature:  sig[:signatureLength],
		RecoveryID: sig[signatureLength],
		PublicKey:  ethcrypto.CompressPubkey(&ecdsaKey.PublicKey),
	}, nil
}

// SignAndAssembleTx builds, signs and assembles a transaction for key.
// Hardware keys always sign in amino mode; software keys default to direct.
func (e *Engine) SignAndAssembleTx(ctx context.Context, key keys.SigningKey, opts *tx.Options, mode tx.SignMode) (*tx.SignedTx, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if e.builder == nil || e.registry == nil {
		return nil, stationerr.WithDetails(stationerr.ErrGeneral,
			map[string]string{"reason": "signing engine has no transaction builder"})
	}

	if _, ok := key.(*keys.HardwareKey); ok {
		mode = tx.SignModeLegacyAminoJSON
	} else if mode == tx.SignModeUnspecified {
		mode = tx.SignModeDirect
	}

	info, err := e.registry.Lookup(opts.ChainID)
	if err != nil {
		return nil, err
	}

	pub, err := e.DerivePublicKey(ctx, key)
	if err != nil {
		return nil, err
	}
	addr, err := address.FromPubKey(pub, info.Prefix)
	if err != nil {
		return nil, err
	}

	unsigned, err := e.builder.Create(ctx, []tx.Signer{{Address: addr, PubKey: pub}}, opts)
	if err != nil {
		return nil, err
	}
	unsigned.SetSignMode(mode)
	doc := unsigned.SignDoc()

	var sig *tx.SignatureV2
	switch mode {
	case tx.SignModeLegacyAminoJSON:
		sig, err = e.SignDocument(ctx, key, doc)
	case tx.SignModeDirect:
		sig, err = e.SignDirect(ctx, key, doc)
	default:
		return nil, stationerr.WithDetails(stationerr.ErrInvalidInput,
			map[string]string{"sign_mode": mode.String()})
	}
	if err != nil {
		return nil, err
	}

	e.log.Debug("signed %s transaction for %s on %s (account %d, sequence %d)",
		mode, addr, opts.ChainID, unsigned.AccountNumber, unsigned.Sequence)

	return &tx.SignedTx{
		Body:       unsigned.Body,
		AuthInfo:   unsigned.AuthInfo,
		Signatures: [][]byte{sig.Data.Signature},
	}, nil
}

// signSoftware signs sha256(signBytes) with RFC6979 nonces, returning a
// low-S 64-byte R||S signature.
func (e *Engine) signSoftware(key keys.SigningKey, signBytes []byte) ([]byte, error) {
	priv, err := softwarePrivateKey(key)
	if err != nil {
		return nil, err
	}
	defer stationcrypto.ZeroBytes(priv)

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(priv); overflow || scalar.IsZero() {
		return nil, wallet.ErrInvalidPrivateKey
	}
	privKey := secp256k1.NewPrivateKey(&scalar)
	defer privKey.Zero()

	hash := sha256.Sum256(signBytes)
	// SignCompact returns [recovery code || R || S].
	compact := ecdsa.SignCompact(privKey, hash[:], true)
	if len(compact) != signatureLength+1 {
		return nil, stationerr.ErrSignatureUnavailable
	}
	return compact[1:], nil
}

// softwarePrivateKey returns a private key copy the caller must zero.
func softwarePrivateKey(key keys.SigningKey) ([]byte, error) {
	switch k := key.(type) {
	case *keys.SeedKey:
		return seedPrivateKey(k)
	case *keys.RawKey:
		raw := k.PrivateKey()
		if len(raw) != wallet.PrivateKeyLength {
			return nil, wallet.ErrInvalidPrivateKey
		}
		return append([]byte(nil), raw...), nil
	default:
		return nil, stationerr.ErrUnsupportedOperation
	}
}

func seedPrivateKey(k *keys.SeedKey) ([]byte, error) {
	seed := k.Seed()
	if len(seed) == 0 {
		return nil, wallet.ErrInvalidSeed
	}
	return wallet.DerivePrivateKey(seed, k.CoinType(), k.Index())
}

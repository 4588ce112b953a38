// Package tx models Cosmos-SDK transactions and produces their sign bytes
// in legacy amino JSON and protobuf direct form, plus the broadcastable
// TxRaw encoding.
package tx

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// SignMode selects how a signer's sign bytes are produced.
type SignMode int32

// Sign modes, numbered as in cosmos.tx.signing.v1beta1.SignMode.
const (
	SignModeUnspecified     SignMode = 0
	SignModeDirect          SignMode = 1
	SignModeLegacyAminoJSON SignMode = 127
)

// String returns the protobuf enum name.
func (m SignMode) String() string {
	switch m {
	case SignModeDirect:
		return "SIGN_MODE_DIRECT"
	case SignModeLegacyAminoJSON:
		return "SIGN_MODE_LEGACY_AMINO_JSON"
	default:
		return "SIGN_MODE_UNSPECIFIED"
	}
}

// ParseSignMode accepts "direct", "amino", or the protobuf enum names.
func ParseSignMode(s string) (SignMode, error) {
	switch s {
	case "", "direct", "SIGN_MODE_DIRECT":
		return SignModeDirect, nil
	case "amino", "amino-json", "SIGN_MODE_LEGACY_AMINO_JSON":
		return SignModeLegacyAminoJSON, nil
	default:
		return SignModeUnspecified, stationerr.WithDetails(stationerr.ErrInvalidInput,
			map[string]string{"sign_mode": s})
	}
}

// Coin is an amount of a single denomination. Amount is a base-10 integer string.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Fee is the fee and gas limit paid by the transaction.
type Fee struct {
	Amount   []Coin `json:"amount"`
	GasLimit uint64 `json:"gas_limit"`
	Payer    string `json:"payer,omitempty"`
	Granter  string `json:"granter,omitempty"`
}

// Msg is a transaction message carrying both its protobuf and amino forms.
type Msg struct {
	TypeURL    string          `json:"type_url"`
	Value      []byte          `json:"value"`
	AminoType  string          `json:"amino_type"`
	AminoValue json.RawMessage `json:"amino_value"`
}

// Options describes the transaction to build.
type Options struct {
	ChainID       string `json:"chain_id"`
	Msgs          []Msg  `json:"msgs"`
	Memo          string `json:"memo,omitempty"`
	Fee           *Fee   `json:"fee,omitempty"`
	TimeoutHeight uint64 `json:"timeout_height,omitempty"`
}

// Validate checks the options are complete enough to build a transaction.
func (o *Options) Validate() error {
	if o == nil || o.ChainID == "" {
		return stationerr.WithDetails(stationerr.ErrInvalidTransaction, map[string]string{"field": "chain_id"})
	}
	if len(o.Msgs) == 0 {
		return stationerr.WithDetails(stationerr.ErrInvalidTransaction, map[string]string{"field": "msgs"})
	}
	for i, m := range o.Msgs {
		if m.TypeURL == "" || m.AminoType == "" || len(m.AminoValue) == 0 {
			return stationerr.WithDetails(stationerr.ErrInvalidTransaction,
				map[string]string{"field": fmt.Sprintf("msgs[%d]", i)})
		}
	}
	return nil
}

// Signer identifies an account expected to sign.
type Signer struct {
	Address string
	PubKey  []byte
}

// AccountInfo is the on-chain account state needed for signing.
type AccountInfo struct {
	Address       string
	AccountNumber uint64
	Sequence      uint64
	PubKey        []byte
}

// Body is the signed transaction body.
type Body struct {
	Messages      []Msg
	Memo          string
	TimeoutHeight uint64
}

// SignerInfo describes one signer's public key, mode and sequence.
type SignerInfo struct {
	PubKey   []byte
	Mode     SignMode
	Sequence uint64
}

// AuthInfo carries signer metadata and the fee.
type AuthInfo struct {
	SignerInfos []SignerInfo
	Fee         Fee
}

// UnsignedTx is a built transaction awaiting a signature.
type UnsignedTx struct {
	ChainID       string
	Body          Body
	AuthInfo      AuthInfo
	AccountNumber uint64
	Sequence      uint64
}

// SignDoc is the document a signer commits to.
type SignDoc struct {
	ChainID       string
	AccountNumber uint64
	Sequence      uint64
	AuthInfo      AuthInfo
	Body          Body
}

// SignDoc returns the sign document for the transaction's first signer.
func (u *UnsignedTx) SignDoc() *SignDoc {
	return &SignDoc{
		ChainID:       u.ChainID,
		AccountNumber: u.AccountNumber,
		Sequence:      u.Sequence,
		AuthInfo:      u.AuthInfo,
		Body:          u.Body,
	}
}

// SetSignMode sets the mode on every signer info.
func (u *UnsignedTx) SetSignMode(mode SignMode) {
	infos := make([]SignerInfo, len(u.AuthInfo.SignerInfos))
	for i, si := range u.AuthInfo.SignerInfos {
		si.Mode = mode
		infos[i] = si
	}
	u.AuthInfo.SignerInfos = infos
}

// SignatureData is a signature and the mode it was made in.
type SignatureData struct {
	Mode      SignMode
	Signature []byte
}

// SignatureV2 binds a signature to the signer's public key and sequence.
type SignatureV2 struct {
	PubKey   []byte
	Data     SignatureData
	Sequence uint64
}

// SignedTx is a transaction ready for broadcast.
type SignedTx struct {
	Body       Body
	AuthInfo   AuthInfo
	Signatures [][]byte
}

// Bytes returns the protobuf TxRaw encoding.
func (s *SignedTx) Bytes() []byte {
	return EncodeTxRaw(EncodeBody(s.Body), EncodeAuthInfo(s.AuthInfo), s.Signatures)
}

// Base64 returns the TxRaw encoding as standard base64, the LCD broadcast form.
func (s *SignedTx) Base64() string {
	return base64.StdEncoding.EncodeToString(s.Bytes())
}

// BroadcastResult is the outcome of a sync broadcast.
type BroadcastResult struct {
	TxHash    string `json:"txhash"`
	Height    int64  `json:"height,omitempty"`
	Code      uint32 `json:"code"`
	Codespace string `json:"codespace,omitempty"`
	RawLog    string `json:"raw_log,omitempty"`
}

// Failed reports whether the chain rejected the transaction.
func (r *BroadcastResult) Failed() bool {
	return r.Code != 0
}

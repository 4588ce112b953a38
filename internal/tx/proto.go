package tx

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Type URL of the secp256k1 public key carried in signer infos.
const secp256k1PubKeyTypeURL = "/cosmos.crypto.secp256k1.PubKey"

// Field numbers from cosmos.tx.v1beta1.
const (
	bodyMessages      protowire.Number = 1
	bodyMemo          protowire.Number = 2
	bodyTimeoutHeight protowire.Number = 3

	authSignerInfos protowire.Number = 1
	authFee         protowire.Number = 2

	signerPublicKey protowire.Number = 1
	signerModeInfo  protowire.Number = 2
	signerSequence  protowire.Number = 3

	modeInfoSingle protowire.Number = 1
	singleMode     protowire.Number = 1

	feeAmount   protowire.Number = 1
	feeGasLimit protowire.Number = 2
	feePayer    protowire.Number = 3
	feeGranter  protowire.Number = 4

	coinDenom  protowire.Number = 1
	coinAmount protowire.Number = 2

	anyTypeURL protowire.Number = 1
	anyValue   protowire.Number = 2

	pubKeyKey protowire.Number = 1

	docBodyBytes     protowire.Number = 1
	docAuthInfoBytes protowire.Number = 2
	docChainID       protowire.Number = 3
	docAccountNumber protowire.Number = 4

	rawBodyBytes     protowire.Number = 1
	rawAuthInfoBytes protowire.Number = 2
	rawSignatures    protowire.Number = 3
)

// Proto3 scalar fields equal to their zero value are omitted.

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessage always emits the field, even for an empty submessage.
func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendUvarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func encodeAny(typeURL string, value []byte) []byte {
	var b []byte
	b = appendString(b, anyTypeURL, typeURL)
	return appendBytes(b, anyValue, value)
}

// EncodeCoin returns the cosmos.base.v1beta1.Coin encoding.
func EncodeCoin(c Coin) []byte {
	var b []byte
	b = appendString(b, coinDenom, c.Denom)
	return appendString(b, coinAmount, c.Amount)
}

// EncodeBody returns the TxBody encoding.
func EncodeBody(body Body) []byte {
	var b []byte
	for _, m := range body.Messages {
		b = appendMessage(b, bodyMessages, encodeAny(m.TypeURL, m.Value))
	}
	b = appendString(b, bodyMemo, body.Memo)
	return appendUvarint(b, bodyTimeoutHeight, body.TimeoutHeight)
}

func encodeSignerInfo(si SignerInfo) []byte {
	var pk []byte
	pk = appendBytes(pk, pubKeyKey, si.PubKey)

	var single []byte
	single = appendUvarint(single, singleMode, uint64(si.Mode)) //nolint:gosec // G115: enum values are non-negative

	var modeInfo []byte
	modeInfo = appendMessage(modeInfo, modeInfoSingle, single)

	var b []byte
	if len(si.PubKey) > 0 {
		b = appendMessage(b, signerPublicKey, encodeAny(secp256k1PubKeyTypeURL, pk))
	}
	b = appendMessage(b, signerModeInfo, modeInfo)
	return appendUvarint(b, signerSequence, si.Sequence)
}

func encodeFee(f Fee) []byte {
	var b []byte
	for _, c := range f.Amount {
		b = appendMessage(b, feeAmount, EncodeCoin(c))
	}
	b = appendUvarint(b, feeGasLimit, f.GasLimit)
	b = appendString(b, feePayer, f.Payer)
	return appendString(b, feeGranter, f.Granter)
}

// EncodeAuthInfo returns the AuthInfo encoding.
func EncodeAuthInfo(ai AuthInfo) []byte {
	var b []byte
	for _, si := range ai.SignerInfos {
		b = appendMessage(b, authSignerInfos, encodeSignerInfo(si))
	}
	return appendMessage(b, authFee, encodeFee(ai.Fee))
}

// DirectSignBytes returns the protobuf SignDoc encoding signed in direct mode.
func DirectSignBytes(doc *SignDoc) []byte {
	var b []byte
	b = appendBytes(b, docBodyBytes, EncodeBody(doc.Body))
	b = appendBytes(b, docAuthInfoBytes, EncodeAuthInfo(doc.AuthInfo))
	b = appendString(b, docChainID, doc.ChainID)
	return appendUvarint(b, docAccountNumber, doc.AccountNumber)
}

// EncodeTxRaw returns the TxRaw encoding. Every signature is emitted,
// including empty placeholders, so positions match signer infos.
func EncodeTxRaw(body, authInfo []byte, signatures [][]byte) []byte {
	var b []byte
	b = appendBytes(b, rawBodyBytes, body)
	b = appendBytes(b, rawAuthInfoBytes, authInfo)
	for _, sig := range signatures {
		b = appendMessage(b, rawSignatures, sig)
	}
	return b
}

package tx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var errMissingAmino = errors.New("missing amino encoding")

type aminoMsg struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type aminoFee struct {
	Amount  []Coin `json:"amount"`
	Gas     string `json:"gas"`
	Payer   string `json:"payer,omitempty"`
	Granter string `json:"granter,omitempty"`
}

type stdSignDoc struct {
	AccountNumber string     `json:"account_number"`
	ChainID       string     `json:"chain_id"`
	Fee           aminoFee   `json:"fee"`
	Memo          string     `json:"memo"`
	Msgs          []aminoMsg `json:"msgs"`
	Sequence      string     `json:"sequence"`
	TimeoutHeight string     `json:"timeout_height,omitempty"`
}

// AminoSignBytes returns the canonical legacy amino JSON sign bytes:
// a StdSignDoc with integers as strings and every object's keys sorted.
func AminoSignBytes(doc *SignDoc) ([]byte, error) {
	msgs := make([]aminoMsg, len(doc.Body.Messages))
	for i, m := range doc.Body.Messages {
		if len(m.AminoValue) == 0 {
			return nil, fmt.Errorf("message %d has no amino form: %w", i, errMissingAmino)
		}
		msgs[i] = aminoMsg{Type: m.AminoType, Value: m.AminoValue}
	}

	coins := doc.AuthInfo.Fee.Amount
	if coins == nil {
		coins = []Coin{}
	}

	std := stdSignDoc{
		AccountNumber: strconv.FormatUint(doc.AccountNumber, 10),
		ChainID:       doc.ChainID,
		Fee: aminoFee{
			Amount:  coins,
			Gas:     strconv.FormatUint(doc.AuthInfo.Fee.GasLimit, 10),
			Payer:   doc.AuthInfo.Fee.Payer,
			Granter: doc.AuthInfo.Fee.Granter,
		},
		Memo:     doc.Body.Memo,
		Msgs:     msgs,
		Sequence: strconv.FormatUint(doc.Sequence, 10),
	}
	if doc.Body.TimeoutHeight > 0 {
		std.TimeoutHeight = strconv.FormatUint(doc.Body.TimeoutHeight, 10)
	}

	raw, err := json.Marshal(std)
	if err != nil {
		return nil, fmt.Errorf("marshaling sign doc: %w", err)
	}
	return sortJSON(raw)
}

// sortJSON re-encodes JSON with object keys sorted at every depth.
// Numbers keep their original literal form.
func sortJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding sign doc: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding sign doc: %w", err)
	}
	return out, nil
}

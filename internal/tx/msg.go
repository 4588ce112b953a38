package tx

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Bank send message identifiers.
const (
	MsgSendTypeURL   = "/cosmos.bank.v1beta1.MsgSend"
	MsgSendAminoType = "cosmos-sdk/MsgSend"
)

const (
	msgSendFromAddress protowire.Number = 1
	msgSendToAddress   protowire.Number = 2
	msgSendAmount      protowire.Number = 3
)

type aminoMsgSend struct {
	Amount      []Coin `json:"amount"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
}

// NewMsgSend builds a bank send message in both encodings.
func NewMsgSend(from, to string, amount []Coin) (Msg, error) {
	var value []byte
	value = appendString(value, msgSendFromAddress, from)
	value = appendString(value, msgSendToAddress, to)
	for _, c := range amount {
		value = appendMessage(value, msgSendAmount, EncodeCoin(c))
	}

	if amount == nil {
		amount = []Coin{}
	}
	aminoValue, err := json.Marshal(aminoMsgSend{Amount: amount, FromAddress: from, ToAddress: to})
	if err != nil {
		return Msg{}, fmt.Errorf("marshaling amino msg: %w", err)
	}

	return Msg{
		TypeURL:    MsgSendTypeURL,
		Value:      value,
		AminoType:  MsgSendAminoType,
		AminoValue: aminoValue,
	}, nil
}

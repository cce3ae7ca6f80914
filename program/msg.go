package program

import (
	"bytes"

	bin "github.com/gagliardetto/binary"

	"github.com/blueshift-labs/escrow"
	"github.com/blueshift-labs/escrow/errors"
)

// createMsgLen is the exact byte width of the create payload:
// seed(8) + receive amount(8) + deposit amount(8).
const createMsgLen = 24

// CreateMsg is the payload of a create instruction.
type CreateMsg struct {
	Seed          uint64
	ReceiveAmount uint64
	DepositAmount uint64
}

// Validate enforces the creation-time policy: zero amounts are rejected
// rather than silently accepted.
func (m *CreateMsg) Validate() error {
	if m.ReceiveAmount == 0 {
		return errors.Wrap(errors.ErrInput, "receive amount is required")
	}
	if m.DepositAmount == 0 {
		return errors.Wrap(errors.ErrInput, "deposit amount is required")
	}
	return nil
}

// Marshal encodes the payload without the leading tag byte.
func (m *CreateMsg) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint64(m.Seed, bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteUint64(m.ReceiveAmount, bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteUint64(m.DepositAmount, bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

// parseCreateMsg decodes and validates a create payload of exact width.
func parseCreateMsg(raw []byte) (*CreateMsg, error) {
	if len(raw) != createMsgLen {
		return nil, errors.Wrapf(errors.ErrInvalidDataLength, "create payload is %d bytes, want %d", len(raw), createMsgLen)
	}
	dec := bin.NewBinDecoder(raw)
	var m CreateMsg
	var err error
	if m.Seed, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	if m.ReceiveAmount, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	if m.DepositAmount, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDataLength, err.Error())
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// checkNoPayload rejects trailing bytes on instructions that carry none.
func checkNoPayload(raw []byte) error {
	if len(raw) != 0 {
		return errors.Wrapf(errors.ErrInvalidDataLength, "instruction carries no payload, got %d bytes", len(raw))
	}
	return nil
}

// NewCreateInstruction builds the wire form of a create operation with the
// account list in the order the handler documents.
func NewCreateInstruction(programID, maker, record, assetA, assetB, source, vault escrow.Address, msg CreateMsg) (escrow.Instruction, error) {
	payload, err := msg.Marshal()
	if err != nil {
		return escrow.Instruction{}, err
	}
	return escrow.Instruction{
		Program: programID,
		Accounts: []escrow.AccountMeta{
			escrow.Meta(maker, true, true),
			escrow.Meta(record, false, true),
			escrow.Meta(assetA, false, false),
			escrow.Meta(assetB, false, false),
			escrow.Meta(source, false, true),
			escrow.Meta(vault, false, true),
		},
		Data: append([]byte{escrow.TagCreate}, payload...),
	}, nil
}

// NewFulfillInstruction builds the wire form of a fulfill operation.
func NewFulfillInstruction(programID, taker, maker, record, vault, takerHoldingA, takerHoldingB, makerHoldingB escrow.Address) escrow.Instruction {
	return escrow.Instruction{
		Program: programID,
		Accounts: []escrow.AccountMeta{
			escrow.Meta(taker, true, true),
			escrow.Meta(maker, false, true),
			escrow.Meta(record, false, true),
			escrow.Meta(vault, false, true),
			escrow.Meta(takerHoldingA, false, true),
			escrow.Meta(takerHoldingB, false, true),
			escrow.Meta(makerHoldingB, false, true),
		},
		Data: []byte{escrow.TagFulfill},
	}
}

// NewCancelInstruction builds the wire form of a cancel operation.
func NewCancelInstruction(programID, maker, record, vault, makerHoldingA escrow.Address) escrow.Instruction {
	return escrow.Instruction{
		Program: programID,
		Accounts: []escrow.AccountMeta{
			escrow.Meta(maker, true, true),
			escrow.Meta(record, false, true),
			escrow.Meta(vault, false, true),
			escrow.Meta(makerHoldingA, false, true),
		},
		Data: []byte{escrow.TagCancel},
	}
}

package escrow

// Instruction tags. The leading byte of the wire encoding selects which
// handler processes the payload that follows it.
const (
	TagCreate  byte = 0
	TagFulfill byte = 1
	TagCancel  byte = 2
)

// AccountMeta declares one entry of an instruction's ordered account list.
// Handlers document the order they expect; a caller must comply.
type AccountMeta struct {
	Address  Address
	Signer   bool
	Writable bool
}

// Instruction is the wire form of a single operation: the program to run,
// the ordered account list and the tag-prefixed, fixed-width payload.
type Instruction struct {
	Program  Address
	Accounts []AccountMeta
	Data     []byte
}

// Meta is a shorthand constructor for an account list entry.
func Meta(addr Address, signer, writable bool) AccountMeta {
	return AccountMeta{Address: addr, Signer: signer, Writable: writable}
}

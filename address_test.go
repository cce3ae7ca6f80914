package escrow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueshift-labs/escrow/errors"
)

func TestAddressValidate(t *testing.T) {
	cases := map[string]struct {
		addr    Address
		wantErr *errors.Error
	}{
		"proper address":  {addr: make(Address, AddressLength)},
		"nil address":     {addr: nil, wantErr: errors.ErrInput},
		"too short":       {addr: make(Address, 20), wantErr: errors.ErrInput},
		"one byte too":    {addr: make(Address, AddressLength+1), wantErr: errors.ErrInput},
		"empty non-nil":   {addr: Address{}, wantErr: errors.ErrInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.addr.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			}
		})
	}
}

func TestAddressBase58RoundTrip(t *testing.T) {
	addr := make(Address, AddressLength)
	for i := range addr {
		addr[i] = byte(i * 7)
	}

	enc := addr.String()
	got, err := ParseAddress(enc)
	require.NoError(t, err)
	assert.True(t, addr.Equals(got))
}

func TestParseAddressRejectsGarbage(t *testing.T) {
	_, err := ParseAddress("not-base58-%%%")
	assert.True(t, errors.ErrInput.Is(err))

	// Valid base58, wrong width.
	_, err = ParseAddress("abc")
	assert.True(t, errors.ErrInput.Is(err))
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "(nil)", Address(nil).String())

	addr := make(Address, AddressLength)
	addr[AddressLength-1] = 1
	assert.False(t, strings.Contains(addr.String(), "(nil)"))
}

func TestAddressClone(t *testing.T) {
	addr := make(Address, AddressLength)
	cp := addr.Clone()
	cp[0] = 0xff
	assert.False(t, addr.Equals(cp))
	assert.Nil(t, Address(nil).Clone())
}

func TestAccountExists(t *testing.T) {
	var acct Account
	assert.False(t, acct.Exists())

	assert.True(t, (&Account{Balance: 1}).Exists())
	assert.True(t, (&Account{Data: []byte{0}}).Exists())
	assert.True(t, (&Account{Owner: make(Address, AddressLength)}).Exists())
}

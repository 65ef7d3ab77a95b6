package types

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivateKeyToGethAddress(t *testing.T) {
	// well known hardhat account #0
	key := "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	addr, err := PrivateKeyToGethAddress(key)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", addr)

	prefixed, err := PrivateKeyToGethAddress("0x" + key)
	require.NoError(t, err)
	assert.Equal(t, addr, prefixed)

	_, err = PrivateKeyToGethAddress("zz")
	assert.Error(t, err)
}

func TestSameAddress(t *testing.T) {
	owner := "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	cases := []struct {
		name  string
		other string
		same  bool
	}{
		{"identical", owner, true},
		{"lower case", "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", true},
		{"upper case", "0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266", true},
		{"surrounding space", "  " + owner + " ", true},
		{"other account", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", false},
		{"empty", "", false},
		{"garbage", "owner", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.same, SameAddress(owner, c.other))
			assert.Equal(t, c.same, SameAddress(c.other, owner))
		})
	}
}

func TestShortAddress(t *testing.T) {
	addr := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	assert.Equal(t, "0xf39F...2266", ShortAddress(addr))
}

package admin

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goatnetwork/goat-staking/internal/types"
	"github.com/stretchr/testify/assert"
)

const owner = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func TestIsAuthorized(t *testing.T) {
	c := NewController(owner)
	assert.True(t, c.IsAuthorized(owner))
	assert.True(t, c.IsAuthorized(strings.ToLower(owner)))
	assert.True(t, c.IsAuthorized("0x"+strings.ToUpper(owner[2:])))
	assert.False(t, c.IsAuthorized("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"))
	assert.False(t, c.IsAuthorized(""))
}

func TestInjectedOwner(t *testing.T) {
	other := "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	c := NewController(other)
	assert.True(t, c.IsAuthorized(other))
	assert.False(t, c.IsAuthorized(owner))
	assert.Equal(t, other, c.Owner())
}

func TestInvalidOwnerNeverMatches(t *testing.T) {
	c := NewController("not-an-address")
	assert.False(t, c.IsAuthorized("not-an-address"))
}

func TestPanel(t *testing.T) {
	c := NewController(owner)

	ownerAddr := common.HexToAddress(owner)
	p := c.Panel(&ownerAddr)
	assert.True(t, p.Visible)
	assert.Equal(t, []types.OperationKind{types.KindSetDuration, types.KindFundEpoch}, p.Operations)

	stranger := common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	p = c.Panel(&stranger)
	assert.False(t, p.Visible)
	assert.Empty(t, p.Operations)

	p = c.Panel(nil)
	assert.False(t, p.Visible)
}

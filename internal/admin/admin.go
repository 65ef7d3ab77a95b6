package admin

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/goatnetwork/goat-staking/internal/types"
	log "github.com/sirupsen/logrus"
)

// Controller decides whether owner-only controls are offered. The pool
// enforces ownership on its own; this only hides what would revert.
type Controller struct {
	owner  string
	logger *log.Entry
}

// Panel is the owner section of a view.
type Panel struct {
	Visible    bool                  `json:"visible"`
	Operations []types.OperationKind `json:"operations"`
}

func NewController(owner string) *Controller {
	if !common.IsHexAddress(owner) {
		log.Warnf("Owner address %q is not a valid address, admin controls stay hidden", owner)
	}
	return &Controller{
		owner:  owner,
		logger: log.WithFields(log.Fields{"module": "admin"}),
	}
}

func (c *Controller) Owner() string {
	return c.owner
}

// IsAuthorized compares against the configured owner ignoring checksum casing.
func (c *Controller) IsAuthorized(account string) bool {
	ok := types.SameAddress(c.owner, account)
	c.logger.Debugf("Owner check for %q: %v", account, ok)
	return ok
}

// Panel for an optional connected account.
func (c *Controller) Panel(account *common.Address) Panel {
	if account == nil || !c.IsAuthorized(account.Hex()) {
		return Panel{Operations: []types.OperationKind{}}
	}
	return Panel{
		Visible:    true,
		Operations: append([]types.OperationKind{}, types.AdminKinds...),
	}
}

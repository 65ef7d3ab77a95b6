package orchestrator

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goatnetwork/goat-staking/internal/state"
	"github.com/goatnetwork/goat-staking/internal/types"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitted  Status = "submitted"
	StatusConfirming Status = "confirming"
	StatusConfirmed  Status = "confirmed"
	StatusFailed     Status = "failed"
)

// Operation is the single pending mutating request.
type Operation struct {
	ID      string
	Kind    types.OperationKind
	Account common.Address
	// Amount in smallest units for approve, stake, withdraw and fundEpoch.
	Amount *big.Int
	// Seconds for setDuration.
	Seconds     *big.Int
	TxHash      *common.Hash
	Status      Status
	Err         error
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

func (op *Operation) clone() Operation {
	c := *op
	if op.TxHash != nil {
		h := *op.TxHash
		c.TxHash = &h
	}
	return c
}

func (op Operation) Done() bool {
	return op.Status == StatusConfirmed || op.Status == StatusFailed
}

func (op Operation) event() state.OperationEvent {
	evt := state.OperationEvent{
		ID:      op.ID,
		Kind:    op.Kind,
		Account: op.Account,
		Amount:  op.Amount,
		Status:  string(op.Status),
		At:      op.UpdatedAt,
	}
	if op.Seconds != nil {
		evt.Amount = op.Seconds
	}
	if op.TxHash != nil {
		evt.TxHash = op.TxHash.Hex()
	}
	if op.Err != nil {
		evt.Error = op.Err.Error()
	}
	return evt
}

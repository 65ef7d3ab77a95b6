package http

import (
	"math/big"
	"time"

	"github.com/goatnetwork/goat-staking/internal/admin"
	"github.com/goatnetwork/goat-staking/internal/orchestrator"
	"github.com/goatnetwork/goat-staking/internal/types"
)

// Amounts are decimal strings in token units; null means not loaded yet.

type PoolView struct {
	TotalStaked          *string  `json:"totalStaked"`
	RewardRate           *string  `json:"rewardRate"`
	RewardPerTokenStored *string  `json:"rewardPerTokenStored"`
	Duration             *string  `json:"duration"` // seconds
	LastUpdate           string   `json:"lastUpdate"`
	APR                  string   `json:"apr"`
	EpochStart           string   `json:"epochStart"`
	EpochEnd             string   `json:"epochEnd"`
	TimeRemaining        string   `json:"timeRemaining"`
	Progress             float64  `json:"progress"`
	Stale                []string `json:"stale"`
}

type PositionView struct {
	Staked        *string `json:"staked"`
	Earned        *string `json:"earned"`
	WalletBalance *string `json:"walletBalance"`
	RewardBalance *string `json:"rewardBalance"`
	Allowance     *string `json:"allowance"`
	PoolShare     *string `json:"poolShare"`
}

type AccountView struct {
	Account      *string                   `json:"account"`
	Position     PositionView              `json:"position"`
	Inputs       orchestrator.Inputs       `json:"inputs"`
	Availability orchestrator.Availability `json:"availability"`
	Admin        admin.Panel               `json:"admin"`
	Stale        []string                  `json:"stale"`
}

type OperationView struct {
	ID          string     `json:"id,omitempty"`
	Kind        string     `json:"kind,omitempty"`
	Account     string     `json:"account,omitempty"`
	Amount      *string    `json:"amount,omitempty"`
	Seconds     *string    `json:"seconds,omitempty"`
	TxHash      string     `json:"txHash,omitempty"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// SessionRequest only touches the inputs that are present.
type SessionRequest struct {
	Tab               *string `json:"tab"`
	Amount            *string `json:"amount"`
	AdminDuration     *string `json:"adminDuration"`
	AdminRewardAmount *string `json:"adminRewardAmount"`
}

// ActionRequest carries an optional inline value written into the session first.
type ActionRequest struct {
	Amount  *string `json:"amount"`
	Seconds *string `json:"seconds"`
}

func amountView(v *big.Int, decimals int32) *string {
	if v == nil {
		return nil
	}
	s := types.FormatAmount(v, decimals)
	return &s
}

func rawView(v *big.Int) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func operationView(op orchestrator.Operation, decimals int32) OperationView {
	view := OperationView{Status: string(op.Status)}
	if op.ID == "" {
		return view
	}
	view.ID = op.ID
	view.Kind = string(op.Kind)
	view.Account = op.Account.Hex()
	view.Amount = amountView(op.Amount, decimals)
	view.Seconds = rawView(op.Seconds)
	if op.TxHash != nil {
		view.TxHash = op.TxHash.Hex()
	}
	if op.Err != nil {
		view.Error = op.Err.Error()
	}
	submitted, updated := op.SubmittedAt, op.UpdatedAt
	view.SubmittedAt = &submitted
	view.UpdatedAt = &updated
	return view
}

package state

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goatnetwork/goat-staking/internal/types"
)

// Field names one scalar read from the pool or one of its tokens.
type Field int

const (
	FieldTotalStaked Field = iota
	FieldRewardRate
	FieldRewardPerTokenStored
	FieldUpdatedAt
	FieldFinishAt
	FieldDuration
	FieldStaked
	FieldEarned
	FieldWalletBalance
	FieldRewardBalance
	FieldAllowance

	fieldCount
)

var fieldNames = [...]string{
	"totalStaked", "rewardRate", "rewardPerTokenStored", "updatedAt", "finishAt", "duration",
	"staked", "earned", "walletBalance", "rewardBalance", "allowance",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// PerAccount fields cannot be read without a connected account.
func (f Field) PerAccount() bool {
	return f >= FieldStaked && f < fieldCount
}

var (
	PoolFields    = []Field{FieldTotalStaked, FieldRewardRate, FieldRewardPerTokenStored, FieldUpdatedAt, FieldFinishAt, FieldDuration}
	AccountFields = []Field{FieldStaked, FieldEarned, FieldWalletBalance, FieldRewardBalance, FieldAllowance}
	AllFields     = append(append([]Field{}, PoolFields...), AccountFields...)
)

// Value is the last landed read of a field. A nil Amount means absent:
// never read, no account, or every read so far failed.
type Value struct {
	Amount *big.Int
	ReadAt time.Time
	Stale  bool
}

func (v Value) Present() bool {
	return v.Amount != nil
}

// PoolState mirrors the pool counters. nil members are unknown, not zero.
type PoolState struct {
	TotalStaked          *big.Int
	RewardRate           *big.Int
	RewardPerTokenStored *big.Int
	UpdatedAt            *big.Int
	FinishAt             *big.Int
	Duration             *big.Int
}

// AccountPosition mirrors the per-account reads. nil members are unknown.
type AccountPosition struct {
	Staked        *big.Int
	Earned        *big.Int
	WalletBalance *big.Int
	RewardBalance *big.Int
	Allowance     *big.Int
}

type Snapshot struct {
	Pool     PoolState
	Account  *common.Address
	Position AccountPosition
	Stale    []Field
	TakenAt  time.Time
}

// IsStale reports whether f failed its latest read.
func (s Snapshot) IsStale(f Field) bool {
	for _, x := range s.Stale {
		if x == f {
			return true
		}
	}
	return false
}

// OperationEvent is the payload of every operation lifecycle event on the bus.
type OperationEvent struct {
	ID      string
	Kind    types.OperationKind
	Account common.Address
	Amount  *big.Int
	TxHash  string
	Status  string
	Error   string
	At      time.Time
}

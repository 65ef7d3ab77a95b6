package approval

import (
	"math/big"

	"github.com/goatnetwork/goat-staking/internal/types"
)

// Step is what a stake request has to do next.
type Step int

const (
	// StepNone: the action never spends the stake-token allowance.
	StepNone Step = iota
	// StepBlocked: the amount is invalid or the allowance is not loaded yet.
	StepBlocked
	StepApprove
	StepStake
)

func (s Step) String() string {
	return [...]string{"none", "blocked", "approve", "stake"}[s]
}

// NeedsApproval is true only for a stake of a valid positive amount that
// exceeds a known allowance.
func NeedsApproval(kind types.OperationKind, amount string, decimals int32, allowance *big.Int) bool {
	return Decide(kind, amount, decimals, allowance) == StepApprove
}

func Decide(kind types.OperationKind, amount string, decimals int32, allowance *big.Int) Step {
	if kind != types.KindStake {
		return StepNone
	}
	requested, err := types.ParseAmount(amount, decimals)
	if err != nil {
		return StepBlocked
	}
	return DecideAmount(requested, allowance)
}

// DecideAmount is Decide for an amount that is already parsed.
func DecideAmount(requested, allowance *big.Int) Step {
	if requested == nil || requested.Sign() <= 0 || allowance == nil {
		return StepBlocked
	}
	if allowance.Cmp(requested) < 0 {
		return StepApprove
	}
	return StepStake
}

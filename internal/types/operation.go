package types

type OperationKind string

const (
	KindApprove     OperationKind = "approve"
	KindStake       OperationKind = "stake"
	KindWithdraw    OperationKind = "withdraw"
	KindClaim       OperationKind = "claim"
	KindExit        OperationKind = "exit"
	KindSetDuration OperationKind = "setDuration"
	KindFundEpoch   OperationKind = "fundEpoch"
)

var AdminKinds = []OperationKind{KindSetDuration, KindFundEpoch}

// OwnerOnly reports whether the pool only accepts the call from its owner.
func (k OperationKind) OwnerOnly() bool {
	return k == KindSetDuration || k == KindFundEpoch
}

func (k OperationKind) Valid() bool {
	switch k {
	case KindApprove, KindStake, KindWithdraw, KindClaim, KindExit, KindSetDuration, KindFundEpoch:
		return true
	}
	return false
}

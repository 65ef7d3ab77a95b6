package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goatnetwork/goat-staking/internal/approval"
	"github.com/goatnetwork/goat-staking/internal/state"
	"github.com/goatnetwork/goat-staking/internal/types"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoAccount         = errors.New("no account connected")
	ErrUnknownBalance    = errors.New("balance not loaded yet")
	ErrExceedsBalance    = errors.New("amount exceeds wallet balance")
	ErrExceedsStaked     = errors.New("amount exceeds staked balance")
	ErrNothingToClaim    = errors.New("no rewards to claim")
	ErrNothingStaked     = errors.New("nothing staked")
	ErrApprovalRequired  = errors.New("allowance too low, approve first")
	ErrAllowanceUnknown  = errors.New("allowance not loaded yet")
	ErrUnauthorized      = errors.New("only the pool owner may do this")
	ErrOperationInFlight = errors.New("another operation is in flight")
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrNoBound           = errors.New("max is only defined on the stake and withdraw tabs")
)

// Submitter sends one operation to the ledger and waits for its inclusion.
// Submit returns once the node accepted the transaction into its pending set.
// WaitMined returns nil for a successful receipt and an error for a revert.
type Submitter interface {
	Submit(ctx context.Context, op Operation) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) error
}

// StateReader is the cache the orchestrator validates against and refreshes.
type StateReader interface {
	Read(field state.Field) (state.Value, bool)
	OnConfirmed(ctx context.Context) error
}

type Authorizer interface {
	IsAuthorized(account string) bool
}

type Orchestrator struct {
	submitter Submitter
	state     StateReader
	auth      Authorizer
	bus       *state.EventBus
	decimals  int32
	logger    *log.Entry
	now       func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	pending *Operation
	last    *Operation
	wg      sync.WaitGroup
}

func NewOrchestrator(submitter Submitter, reader StateReader, auth Authorizer, bus *state.EventBus, decimals int32) *Orchestrator {
	return &Orchestrator{
		submitter: submitter,
		state:     reader,
		auth:      auth,
		bus:       bus,
		decimals:  decimals,
		logger:    log.WithFields(log.Fields{"module": "orchestrator"}),
		now:       time.Now,
		ctx:       context.Background(),
	}
}

// Start binds confirmation waits to ctx and blocks until it is done.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	o.ctx = ctx
	o.mu.Unlock()

	o.logger.Info("Orchestrator started.")
	<-ctx.Done()
	o.wg.Wait()
	o.logger.Info("Orchestrator stopped.")
}

// Wait blocks until no confirmation wait is running.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Current is the pending operation, or an idle one.
func (o *Orchestrator) Current() Operation {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return Operation{Status: StatusIdle}
	}
	return o.pending.clone()
}

// Last is the most recent operation that reached confirmed or failed.
func (o *Orchestrator) Last() (Operation, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return Operation{}, false
	}
	return o.last.clone(), true
}

func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

func (o *Orchestrator) Approve(ctx context.Context, s *Session) (Operation, error) {
	return o.Do(ctx, types.KindApprove, s)
}

func (o *Orchestrator) Stake(ctx context.Context, s *Session) (Operation, error) {
	return o.Do(ctx, types.KindStake, s)
}

func (o *Orchestrator) Withdraw(ctx context.Context, s *Session) (Operation, error) {
	return o.Do(ctx, types.KindWithdraw, s)
}

func (o *Orchestrator) Claim(ctx context.Context, s *Session) (Operation, error) {
	return o.Do(ctx, types.KindClaim, s)
}

// Exit withdraws everything and claims in one submission.
func (o *Orchestrator) Exit(ctx context.Context, s *Session) (Operation, error) {
	return o.Do(ctx, types.KindExit, s)
}

func (o *Orchestrator) SetEpochDuration(ctx context.Context, s *Session) (Operation, error) {
	return o.Do(ctx, types.KindSetDuration, s)
}

func (o *Orchestrator) FundEpoch(ctx context.Context, s *Session) (Operation, error) {
	return o.Do(ctx, types.KindFundEpoch, s)
}

// Do validates the session inputs for kind, takes the pending slot and
// submits. The returned operation is confirming on success; inclusion is
// awaited in the background.
func (o *Orchestrator) Do(ctx context.Context, kind types.OperationKind, s *Session) (Operation, error) {
	o.mu.Lock()
	if o.pending != nil {
		busy := o.pending.Kind
		o.mu.Unlock()
		return Operation{}, fmt.Errorf("%w: %s", ErrOperationInFlight, busy)
	}
	op, err := o.validate(kind, s)
	if err != nil {
		o.mu.Unlock()
		o.logger.Debugf("Reject %s: %v", kind, err)
		return Operation{}, fmt.Errorf("%s: %w", kind, err)
	}
	op.ID = uuid.New().String()
	op.Status = StatusSubmitted
	op.SubmittedAt = o.now()
	op.UpdatedAt = op.SubmittedAt
	o.pending = op
	submitted := op.clone()
	waitCtx := o.ctx
	o.mu.Unlock()

	o.publish(state.OperationSubmitted, submitted)
	o.logger.Infof("Submit %s, id %s, account %s", kind, op.ID, types.ShortAddress(op.Account))

	hash, err := o.submitter.Submit(ctx, submitted)
	if err != nil {
		err = fmt.Errorf("submit %s: %w", kind, err)
		o.logger.Errorf("Operation %s failed before inclusion: %v", op.ID, err)
		return o.fail(op, err), err
	}

	o.mu.Lock()
	op.TxHash = &hash
	op.Status = StatusConfirming
	op.UpdatedAt = o.now()
	confirming := op.clone()
	o.mu.Unlock()

	o.publish(state.OperationConfirming, confirming)
	o.logger.Infof("Operation %s accepted, tx %s", op.ID, hash.Hex())

	o.wg.Add(1)
	go o.await(waitCtx, s, op)

	return confirming, nil
}

func (o *Orchestrator) await(ctx context.Context, s *Session, op *Operation) {
	defer o.wg.Done()

	err := o.submitter.WaitMined(ctx, *op.TxHash)
	if ctx.Err() != nil {
		o.logger.Warnf("Stopped while operation %s is confirming, tx %s", op.ID, op.TxHash.Hex())
		return
	}
	if err != nil {
		o.logger.Errorf("Operation %s failed, tx %s: %v", op.ID, op.TxHash.Hex(), err)
		o.fail(op, err)
		return
	}
	o.confirm(ctx, s, op)
}

// confirm re-reads the ledger, then clears the inputs, then frees the slot.
func (o *Orchestrator) confirm(ctx context.Context, s *Session, op *Operation) {
	if err := o.state.OnConfirmed(ctx); err != nil {
		o.logger.Warnf("Refresh after operation %s left stale fields: %v", op.ID, err)
	}
	s.ClearInputs()

	o.mu.Lock()
	op.Status = StatusConfirmed
	op.UpdatedAt = o.now()
	o.last = op
	o.pending = nil
	done := op.clone()
	o.mu.Unlock()

	o.publish(state.OperationConfirmed, done)
	o.logger.Infof("Operation %s %s confirmed", op.ID, op.Kind)
}

// fail frees the slot and keeps the inputs for a retry.
func (o *Orchestrator) fail(op *Operation, err error) Operation {
	o.mu.Lock()
	op.Status = StatusFailed
	op.Err = err
	op.UpdatedAt = o.now()
	o.last = op
	o.pending = nil
	done := op.clone()
	o.mu.Unlock()

	o.publish(state.OperationFailed, done)
	return done
}

func (o *Orchestrator) publish(eventType state.EventType, op Operation) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(eventType, op.event())
}

func (o *Orchestrator) read(field state.Field) (*big.Int, bool) {
	v, ok := o.state.Read(field)
	if !ok {
		return nil, false
	}
	return v.Amount, true
}

func (o *Orchestrator) validate(kind types.OperationKind, s *Session) (*Operation, error) {
	account := s.Account()
	if account == nil {
		return nil, ErrNoAccount
	}
	in := s.Inputs()
	op := &Operation{Kind: kind, Account: *account}

	switch kind {
	case types.KindApprove:
		amount, err := types.ParseAmount(in.Amount, o.decimals)
		if err != nil {
			return nil, err
		}
		op.Amount = amount

	case types.KindStake:
		amount, err := types.ParseAmount(in.Amount, o.decimals)
		if err != nil {
			return nil, err
		}
		balance, ok := o.read(state.FieldWalletBalance)
		if !ok {
			return nil, ErrUnknownBalance
		}
		if amount.Cmp(balance) > 0 {
			return nil, ErrExceedsBalance
		}
		allowance, _ := o.read(state.FieldAllowance)
		switch approval.DecideAmount(amount, allowance) {
		case approval.StepBlocked:
			return nil, ErrAllowanceUnknown
		case approval.StepApprove:
			return nil, ErrApprovalRequired
		}
		op.Amount = amount

	case types.KindWithdraw:
		amount, err := types.ParseAmount(in.Amount, o.decimals)
		if err != nil {
			return nil, err
		}
		staked, ok := o.read(state.FieldStaked)
		if !ok {
			return nil, ErrUnknownBalance
		}
		if amount.Cmp(staked) > 0 {
			return nil, ErrExceedsStaked
		}
		op.Amount = amount

	case types.KindClaim:
		earned, ok := o.read(state.FieldEarned)
		if !ok || earned.Sign() <= 0 {
			return nil, ErrNothingToClaim
		}

	case types.KindExit:
		staked, ok := o.read(state.FieldStaked)
		if !ok || staked.Sign() <= 0 {
			return nil, ErrNothingStaked
		}

	case types.KindSetDuration:
		if o.auth == nil || !o.auth.IsAuthorized(account.Hex()) {
			return nil, ErrUnauthorized
		}
		seconds, err := types.ParseDuration(in.AdminDuration)
		if err != nil {
			return nil, err
		}
		op.Seconds = seconds

	case types.KindFundEpoch:
		if o.auth == nil || !o.auth.IsAuthorized(account.Hex()) {
			return nil, ErrUnauthorized
		}
		amount, err := types.ParseAmount(in.AdminRewardAmount, o.decimals)
		if err != nil {
			return nil, err
		}
		op.Amount = amount

	default:
		return nil, ErrUnknownOperation
	}
	return op, nil
}

// Availability says which actions a view may enable right now.
type Availability struct {
	Busy          bool `json:"busy"`
	CanApprove    bool `json:"canApprove"`
	CanStake      bool `json:"canStake"`
	NeedsApproval bool `json:"needsApproval"`
	CanWithdraw   bool `json:"canWithdraw"`
	CanClaim      bool `json:"canClaim"`
	CanExit       bool `json:"canExit"`
	IsOwner       bool `json:"isOwner"`
}

func (o *Orchestrator) Availability(s *Session) Availability {
	o.mu.Lock()
	defer o.mu.Unlock()

	ok := func(kind types.OperationKind) bool {
		_, err := o.validate(kind, s)
		return err == nil
	}
	a := Availability{Busy: o.pending != nil}
	if in := s.Inputs(); in.Tab == TabStake {
		allowance, _ := o.read(state.FieldAllowance)
		a.NeedsApproval = approval.NeedsApproval(types.KindStake, in.Amount, o.decimals, allowance)
	}
	if account := s.Account(); account != nil && o.auth != nil {
		a.IsOwner = o.auth.IsAuthorized(account.Hex())
	}
	if a.Busy {
		return a
	}
	a.CanApprove = ok(types.KindApprove)
	a.CanStake = ok(types.KindStake)
	a.CanWithdraw = ok(types.KindWithdraw)
	a.CanClaim = ok(types.KindClaim)
	a.CanExit = ok(types.KindExit)
	return a
}

// MaxAmount fills the amount input from the bound of the active tab.
// An unknown bound is an error, never zero.
func (o *Orchestrator) MaxAmount(s *Session) (string, error) {
	if s.Account() == nil {
		return "", ErrNoAccount
	}
	var field state.Field
	switch s.Inputs().Tab {
	case TabStake:
		field = state.FieldWalletBalance
	case TabWithdraw:
		field = state.FieldStaked
	default:
		return "", ErrNoBound
	}
	bound, ok := o.read(field)
	if !ok {
		return "", ErrUnknownBalance
	}
	amount := types.FormatAmount(bound, o.decimals)
	s.SetAmount(amount)
	return amount, nil
}

package orchestrator

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goatnetwork/goat-staking/internal/admin"
	"github.com/goatnetwork/goat-staking/internal/state"
	"github.com/goatnetwork/goat-staking/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	user  = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	owner = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

type fakeReader struct {
	mu          sync.Mutex
	values      map[state.Field]*big.Int
	refreshes   int
	onConfirmed func()
}

func newFakeReader() *fakeReader {
	return &fakeReader{values: make(map[state.Field]*big.Int)}
}

func (r *fakeReader) set(f state.Field, v *big.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[f] = v
}

func (r *fakeReader) Read(f state.Field) (state.Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[f]
	if !ok {
		return state.Value{}, false
	}
	return state.Value{Amount: v}, true
}

func (r *fakeReader) OnConfirmed(ctx context.Context) error {
	r.mu.Lock()
	r.refreshes++
	hook := r.onConfirmed
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (r *fakeReader) refreshCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshes
}

type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []Operation
	submitErr error
	results   map[common.Hash]chan error
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{results: make(map[common.Hash]chan error)}
}

func (f *fakeSubmitter) Submit(ctx context.Context, op Operation) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return common.Hash{}, f.submitErr
	}
	f.submitted = append(f.submitted, op)
	hash := common.BigToHash(big.NewInt(int64(len(f.submitted))))
	f.results[hash] = make(chan error, 1)
	return hash, nil
}

func (f *fakeSubmitter) WaitMined(ctx context.Context, hash common.Hash) error {
	f.mu.Lock()
	ch := f.results[hash]
	f.mu.Unlock()
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSubmitter) resolve(hash common.Hash, err error) {
	f.mu.Lock()
	ch := f.results[hash]
	f.mu.Unlock()
	ch <- err
}

func (f *fakeSubmitter) ops() []Operation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Operation{}, f.submitted...)
}

type fixture struct {
	orch      *Orchestrator
	reader    *fakeReader
	submitter *fakeSubmitter
	bus       *state.EventBus
	session   *Session
}

func newFixture(account common.Address) *fixture {
	reader := newFakeReader()
	submitter := newFakeSubmitter()
	bus := state.NewEventBus()
	return &fixture{
		orch:      NewOrchestrator(submitter, reader, admin.NewController(owner.Hex()), bus, types.DefaultDecimals),
		reader:    reader,
		submitter: submitter,
		bus:       bus,
		session:   NewSession(&account),
	}
}

func TestStakeConfirmedRefreshesOnceThenClears(t *testing.T) {
	f := newFixture(user)
	f.reader.set(state.FieldWalletBalance, tokens(200))
	f.reader.set(state.FieldAllowance, tokens(200))
	f.session.SetAmount("100")

	events := make(chan interface{}, 8)
	for _, et := range []state.EventType{state.OperationSubmitted, state.OperationConfirming, state.OperationConfirmed} {
		f.bus.Subscribe(et, events)
	}

	var amountAtRefresh string
	f.reader.onConfirmed = func() {
		amountAtRefresh = f.session.Inputs().Amount
	}

	op, err := f.orch.Stake(context.Background(), f.session)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirming, op.Status)
	assert.Equal(t, types.KindStake, op.Kind)
	assert.Equal(t, 0, tokens(100).Cmp(op.Amount))
	require.NotNil(t, op.TxHash)
	assert.NotEmpty(t, op.ID)
	assert.True(t, f.orch.Busy())

	f.submitter.resolve(*op.TxHash, nil)
	f.orch.Wait()

	assert.Equal(t, 1, f.reader.refreshCount())
	assert.Equal(t, "100", amountAtRefresh, "refresh must happen before inputs are cleared")
	assert.Equal(t, "", f.session.Inputs().Amount)
	assert.Equal(t, StatusIdle, f.orch.Current().Status)

	last, ok := f.orch.Last()
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, last.Status)
	assert.Equal(t, op.ID, last.ID)

	var statuses []string
	for i := 0; i < 3; i++ {
		statuses = append(statuses, (<-events).(state.OperationEvent).Status)
	}
	assert.Equal(t, []string{"submitted", "confirming", "confirmed"}, statuses)
}

func TestSecondSubmissionRejectedWhileInFlight(t *testing.T) {
	f := newFixture(user)
	f.reader.set(state.FieldEarned, tokens(1))
	f.reader.set(state.FieldStaked, tokens(5))

	op, err := f.orch.Claim(context.Background(), f.session)
	require.NoError(t, err)

	_, err = f.orch.Exit(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrOperationInFlight)
	_, err = f.orch.Claim(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrOperationInFlight)
	assert.Len(t, f.submitter.ops(), 1)
	assert.True(t, f.orch.Availability(f.session).Busy)
	assert.False(t, f.orch.Availability(f.session).CanExit)

	f.submitter.resolve(*op.TxHash, nil)
	f.orch.Wait()

	_, err = f.orch.Exit(context.Background(), f.session)
	require.NoError(t, err)
	assert.Len(t, f.submitter.ops(), 2)
}

func TestStakeRoutesThroughApproval(t *testing.T) {
	f := newFixture(user)
	f.reader.set(state.FieldWalletBalance, tokens(500))
	f.reader.set(state.FieldAllowance, tokens(50))
	f.session.SetAmount("100")

	_, err := f.orch.Stake(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrApprovalRequired)
	assert.Empty(t, f.submitter.ops())
	assert.True(t, f.orch.Availability(f.session).NeedsApproval)
	assert.False(t, f.orch.Availability(f.session).CanStake)

	op, err := f.orch.Approve(context.Background(), f.session)
	require.NoError(t, err)
	assert.Equal(t, types.KindApprove, op.Kind)
	assert.Equal(t, 0, tokens(100).Cmp(op.Amount))

	f.reader.onConfirmed = func() {
		f.reader.set(state.FieldAllowance, tokens(100))
	}
	f.submitter.resolve(*op.TxHash, nil)
	f.orch.Wait()

	// approval confirmed, amount cleared, user types it again
	f.session.SetAmount("100")
	assert.False(t, f.orch.Availability(f.session).NeedsApproval)
	op, err = f.orch.Stake(context.Background(), f.session)
	require.NoError(t, err)
	assert.Equal(t, types.KindStake, op.Kind)
}

func TestStakeValidation(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		setup  func(r *fakeReader)
		err    error
	}{
		{"empty", "", func(r *fakeReader) {}, types.ErrEmptyAmount},
		{"not a number", "ten", func(r *fakeReader) {}, types.ErrInvalidAmount},
		{"zero", "0", func(r *fakeReader) {}, types.ErrNonPositiveAmount},
		{"unknown balance", "1", func(r *fakeReader) {}, ErrUnknownBalance},
		{"exceeds balance", "11", func(r *fakeReader) {
			r.set(state.FieldWalletBalance, tokens(10))
			r.set(state.FieldAllowance, tokens(100))
		}, ErrExceedsBalance},
		{"unknown allowance", "5", func(r *fakeReader) {
			r.set(state.FieldWalletBalance, tokens(10))
		}, ErrAllowanceUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(user)
			c.setup(f.reader)
			f.session.SetAmount(c.amount)
			_, err := f.orch.Stake(context.Background(), f.session)
			assert.ErrorIs(t, err, c.err)
			assert.Empty(t, f.submitter.ops())
			assert.Equal(t, StatusIdle, f.orch.Current().Status)
		})
	}
}

func TestWithdrawValidation(t *testing.T) {
	f := newFixture(user)
	f.session.SetAmount("1")
	_, err := f.orch.Withdraw(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrUnknownBalance)

	f.reader.set(state.FieldStaked, tokens(3))
	f.session.SetAmount("4")
	_, err = f.orch.Withdraw(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrExceedsStaked)

	f.session.SetAmount("3")
	op, err := f.orch.Withdraw(context.Background(), f.session)
	require.NoError(t, err)
	assert.Equal(t, 0, tokens(3).Cmp(op.Amount))
}

func TestApprovalOnlyFlaggedOnStakeTab(t *testing.T) {
	f := newFixture(user)
	f.reader.set(state.FieldWalletBalance, tokens(500))
	f.reader.set(state.FieldStaked, tokens(500))
	f.reader.set(state.FieldAllowance, big.NewInt(0))
	f.session.SetAmount("100")
	assert.True(t, f.orch.Availability(f.session).NeedsApproval)

	f.session.SetTab(TabWithdraw)
	a := f.orch.Availability(f.session)
	assert.False(t, a.NeedsApproval)
	assert.True(t, a.CanWithdraw)

	f.session.SetTab(TabStats)
	assert.False(t, f.orch.Availability(f.session).NeedsApproval)
}

func TestClaimAndExitNeedKnownPositiveValues(t *testing.T) {
	f := newFixture(user)
	_, err := f.orch.Claim(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrNothingToClaim)
	_, err = f.orch.Exit(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrNothingStaked)

	f.reader.set(state.FieldEarned, big.NewInt(0))
	f.reader.set(state.FieldStaked, big.NewInt(0))
	_, err = f.orch.Claim(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrNothingToClaim)
	_, err = f.orch.Exit(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrNothingStaked)

	a := f.orch.Availability(f.session)
	assert.False(t, a.CanClaim)
	assert.False(t, a.CanExit)
	assert.Empty(t, f.submitter.ops())
}

func TestExitIsOneSubmission(t *testing.T) {
	f := newFixture(user)
	f.reader.set(state.FieldStaked, tokens(7))
	f.reader.set(state.FieldEarned, tokens(1))
	assert.True(t, f.orch.Availability(f.session).CanExit)

	op, err := f.orch.Exit(context.Background(), f.session)
	require.NoError(t, err)
	f.submitter.resolve(*op.TxHash, nil)
	f.orch.Wait()

	ops := f.submitter.ops()
	require.Len(t, ops, 1)
	assert.Equal(t, types.KindExit, ops[0].Kind)
	assert.Nil(t, ops[0].Amount)
	assert.Equal(t, 1, f.reader.refreshCount())
}

func TestRejectedSubmissionKeepsInput(t *testing.T) {
	f := newFixture(user)
	f.reader.set(state.FieldStaked, tokens(10))
	f.session.SetAmount("2")
	f.submitter.submitErr = errors.New("user denied transaction signature")

	failed := make(chan interface{}, 1)
	f.bus.Subscribe(state.OperationFailed, failed)

	op, err := f.orch.Withdraw(context.Background(), f.session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user denied")
	assert.Equal(t, StatusFailed, op.Status)
	assert.Nil(t, op.TxHash)

	assert.Equal(t, "2", f.session.Inputs().Amount)
	assert.Equal(t, StatusIdle, f.orch.Current().Status)
	assert.Equal(t, 0, f.reader.refreshCount())

	evt := (<-failed).(state.OperationEvent)
	assert.Equal(t, "failed", evt.Status)
	assert.Contains(t, evt.Error, "user denied")
}

func TestRevertKeepsInputAndSkipsRefresh(t *testing.T) {
	f := newFixture(owner)
	f.session.SetAdminDuration("604800")

	op, err := f.orch.SetEpochDuration(context.Background(), f.session)
	require.NoError(t, err)
	assert.Equal(t, int64(604800), op.Seconds.Int64())

	f.submitter.resolve(*op.TxHash, errors.New("execution reverted: epoch still active"))
	f.orch.Wait()

	last, ok := f.orch.Last()
	require.True(t, ok)
	assert.Equal(t, StatusFailed, last.Status)
	assert.ErrorContains(t, last.Err, "epoch still active")
	assert.Equal(t, "604800", f.session.Inputs().AdminDuration)
	assert.Equal(t, 0, f.reader.refreshCount())
	assert.False(t, f.orch.Busy())
}

func TestAdminOperationsAreGated(t *testing.T) {
	f := newFixture(user)
	f.session.SetAdminDuration("3600")
	f.session.SetAdminRewardAmount("1000")

	_, err := f.orch.SetEpochDuration(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.orch.FundEpoch(context.Background(), f.session)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.orch.Do(context.Background(), types.KindFundEpoch, f.session)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, f.submitter.ops())
	assert.False(t, f.orch.Availability(f.session).IsOwner)
}

func TestOwnerMatchIgnoresCase(t *testing.T) {
	reader := newFakeReader()
	submitter := newFakeSubmitter()
	orch := NewOrchestrator(submitter, reader, admin.NewController(strings.ToLower(owner.Hex())), nil, types.DefaultDecimals)
	session := NewSession(&owner)
	session.SetAdminRewardAmount("1000")

	assert.True(t, orch.Availability(session).IsOwner)
	op, err := orch.FundEpoch(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, types.KindFundEpoch, op.Kind)
	assert.Equal(t, 0, tokens(1000).Cmp(op.Amount))

	submitter.resolve(*op.TxHash, nil)
	orch.Wait()
	assert.Equal(t, Inputs{Tab: TabStake}, session.Inputs())
}

func TestAdminInputValidation(t *testing.T) {
	f := newFixture(owner)
	_, err := f.orch.SetEpochDuration(context.Background(), f.session)
	assert.ErrorIs(t, err, types.ErrEmptyAmount)
	f.session.SetAdminDuration("1.5")
	_, err = f.orch.SetEpochDuration(context.Background(), f.session)
	assert.ErrorIs(t, err, types.ErrInvalidDuration)
	f.session.SetAdminRewardAmount("abc")
	_, err = f.orch.FundEpoch(context.Background(), f.session)
	assert.ErrorIs(t, err, types.ErrInvalidAmount)
}

func TestNoAccount(t *testing.T) {
	orch := NewOrchestrator(newFakeSubmitter(), newFakeReader(), admin.NewController(owner.Hex()), nil, types.DefaultDecimals)
	session := NewSession(nil)
	session.SetAmount("1")
	_, err := orch.Approve(context.Background(), session)
	assert.ErrorIs(t, err, ErrNoAccount)
	_, err = orch.MaxAmount(session)
	assert.ErrorIs(t, err, ErrNoAccount)
	assert.Equal(t, Availability{}, orch.Availability(session))
}

func TestUnknownKind(t *testing.T) {
	f := newFixture(user)
	_, err := f.orch.Do(context.Background(), types.OperationKind("mint"), f.session)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestMaxAmount(t *testing.T) {
	f := newFixture(user)
	_, err := f.orch.MaxAmount(f.session)
	assert.ErrorIs(t, err, ErrUnknownBalance)

	f.reader.set(state.FieldWalletBalance, new(big.Int).Add(tokens(12), big.NewInt(5e17)))
	amount, err := f.orch.MaxAmount(f.session)
	require.NoError(t, err)
	assert.Equal(t, "12.5", amount)
	assert.Equal(t, "12.5", f.session.Inputs().Amount)

	f.session.SetTab(TabWithdraw)
	f.reader.set(state.FieldStaked, tokens(3))
	amount, err = f.orch.MaxAmount(f.session)
	require.NoError(t, err)
	assert.Equal(t, "3", amount)

	f.session.SetTab(TabStats)
	_, err = f.orch.MaxAmount(f.session)
	assert.ErrorIs(t, err, ErrNoBound)
}

func TestStartCancelsConfirmationWait(t *testing.T) {
	f := newFixture(user)
	f.reader.set(state.FieldEarned, tokens(1))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		f.orch.Start(ctx)
		close(stopped)
	}()
	require.Eventually(t, func() bool {
		f.orch.mu.Lock()
		defer f.orch.mu.Unlock()
		return f.orch.ctx == ctx
	}, time.Second, time.Millisecond)

	_, err := f.orch.Claim(context.Background(), f.session)
	require.NoError(t, err)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("orchestrator did not stop")
	}
	assert.Equal(t, 0, f.reader.refreshCount())
}

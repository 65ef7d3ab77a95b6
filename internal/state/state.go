package state

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kelindar/bitmap"
	log "github.com/sirupsen/logrus"
)

// ErrStale wraps every failed read. The previous value, if any, is kept.
var ErrStale = errors.New("stale read")

// Ledger is the remote side: the reward pool and its two tokens.
type Ledger interface {
	Read(ctx context.Context, field Field, account common.Address) (*big.Int, error)
}

// slot keeps one field. landed is the issue sequence of the read behind value,
// floor is the lowest issue sequence still accepted after an Invalidate.
type slot struct {
	value  Value
	landed uint64
	floor  uint64
}

type State struct {
	EventBus *EventBus

	ledger Ledger
	logger *log.Entry
	now    func() time.Time

	mu      sync.RWMutex
	account *common.Address
	slots   [fieldCount]slot
	dirty   bitmap.Bitmap
	seq     uint64
}

// InitializeState builds an empty cache. Every field starts absent and dirty.
func InitializeState(ledger Ledger, account *common.Address) *State {
	s := &State{
		EventBus: NewEventBus(),
		ledger:   ledger,
		logger:   log.WithFields(log.Fields{"module": "state"}),
		now:      time.Now,
		account:  copyAddress(account),
	}
	for _, f := range AllFields {
		s.dirty.Set(uint32(f))
	}
	return s
}

func copyAddress(addr *common.Address) *common.Address {
	if addr == nil {
		return nil
	}
	a := *addr
	return &a
}

func (s *State) Account() *common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAddress(s.account)
}

// Read returns the cached value of field. ok is false when the value is absent.
func (s *State) Read(field Field) (Value, bool) {
	if field < 0 || field >= fieldCount {
		return Value{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if field.PerAccount() && s.account == nil {
		return Value{}, false
	}
	v := s.slots[field].value
	if v.Amount != nil {
		v.Amount = new(big.Int).Set(v.Amount)
	}
	return v, v.Present()
}

// Invalidate marks fields for re-read. Responses to reads issued before this
// call are dropped when they land; the last known value stays visible.
func (s *State) Invalidate(fields ...Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fields {
		if f < 0 || f >= fieldCount {
			continue
		}
		s.dirty.Set(uint32(f))
		s.slots[f].floor = s.seq + 1
	}
}

// Dirty lists fields waiting for a re-read.
func (s *State) Dirty() []Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var fields []Field
	s.dirty.Range(func(x uint32) {
		fields = append(fields, Field(x))
	})
	return fields
}

// Refresh reads the given fields, or every readable field when none are given.
// Reads run concurrently. Failures come back joined, each wrapping ErrStale.
func (s *State) Refresh(ctx context.Context, fields ...Field) error {
	if len(fields) == 0 {
		fields = AllFields
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, f := range fields {
		wg.Add(1)
		go func(f Field) {
			defer wg.Done()
			if err := s.readField(ctx, f); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(f)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// RefreshDirty re-reads only what Invalidate or a failed read left marked.
func (s *State) RefreshDirty(ctx context.Context) error {
	fields := s.Dirty()
	if len(fields) == 0 {
		return nil
	}
	return s.Refresh(ctx, fields...)
}

// OnConfirmed re-reads every pool and account field exactly once after a
// confirmed operation.
func (s *State) OnConfirmed(ctx context.Context) error {
	s.Invalidate(AllFields...)
	return s.RefreshDirty(ctx)
}

func (s *State) readField(ctx context.Context, f Field) error {
	s.mu.Lock()
	if f.PerAccount() && s.account == nil {
		s.dirty.Remove(uint32(f))
		s.mu.Unlock()
		return nil
	}
	s.seq++
	issued := s.seq
	var account common.Address
	if s.account != nil {
		account = *s.account
	}
	s.mu.Unlock()

	amount, err := s.ledger.Read(ctx, f, account)

	s.mu.Lock()
	defer s.mu.Unlock()

	sl := &s.slots[f]
	if issued < sl.floor || issued < sl.landed {
		s.logger.Debugf("Discard late read of %s, issued %d, landed %d, floor %d", f, issued, sl.landed, sl.floor)
		return nil
	}
	if err != nil {
		sl.value.Stale = true
		return fmt.Errorf("%w: %s: %v", ErrStale, f, err)
	}
	if amount == nil {
		sl.value.Stale = true
		return fmt.Errorf("%w: %s: empty result", ErrStale, f)
	}
	sl.value = Value{Amount: new(big.Int).Set(amount), ReadAt: s.now(), Stale: false}
	sl.landed = issued
	s.dirty.Remove(uint32(f))
	return nil
}

// Snapshot copies the whole cache at once.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	get := func(f Field) *big.Int {
		if f.PerAccount() && s.account == nil {
			return nil
		}
		if v := s.slots[f].value.Amount; v != nil {
			return new(big.Int).Set(v)
		}
		return nil
	}

	snap := Snapshot{
		Pool: PoolState{
			TotalStaked:          get(FieldTotalStaked),
			RewardRate:           get(FieldRewardRate),
			RewardPerTokenStored: get(FieldRewardPerTokenStored),
			UpdatedAt:            get(FieldUpdatedAt),
			FinishAt:             get(FieldFinishAt),
			Duration:             get(FieldDuration),
		},
		Account: copyAddress(s.account),
		TakenAt: s.now(),
	}
	if s.account != nil {
		snap.Position = AccountPosition{
			Staked:        get(FieldStaked),
			Earned:        get(FieldEarned),
			WalletBalance: get(FieldWalletBalance),
			RewardBalance: get(FieldRewardBalance),
			Allowance:     get(FieldAllowance),
		}
	}
	for _, f := range AllFields {
		if f.PerAccount() && s.account == nil {
			continue
		}
		if s.slots[f].value.Stale {
			snap.Stale = append(snap.Stale, f)
		}
	}
	return snap
}

// Start polls every field until ctx is done.
func (s *State) Start(ctx context.Context, interval time.Duration) {
	s.logger.Infof("State poller is starting, interval %v", interval)
	s.poll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("State poller is stopping...")
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll reads every field, then gives the fields a failed read left dirty
// one more try before the next tick.
func (s *State) poll(ctx context.Context) {
	err := s.Refresh(ctx)
	if err != nil && ctx.Err() == nil {
		s.logger.Debugf("Retry dirty fields %v", s.Dirty())
		err = s.RefreshDirty(ctx)
	}
	switch {
	case ctx.Err() != nil:
	case err != nil:
		s.logger.Warnf("Poll finished with stale fields: %v", err)
	default:
		s.logger.Debug("Poll finished")
	}
}

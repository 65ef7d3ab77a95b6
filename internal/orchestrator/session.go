package orchestrator

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type Tab string

const (
	TabStake    Tab = "stake"
	TabWithdraw Tab = "withdraw"
	TabStats    Tab = "stats"
)

func (t Tab) Valid() bool {
	return t == TabStake || t == TabWithdraw || t == TabStats
}

// Inputs is what the user typed, as typed.
type Inputs struct {
	Tab               Tab    `json:"tab"`
	Amount            string `json:"amount"`
	AdminDuration     string `json:"adminDuration"`
	AdminRewardAmount string `json:"adminRewardAmount"`
}

// Session is the view state of one connected account. Views own it and pass
// it to the Orchestrator, which clears the inputs after a confirmation.
type Session struct {
	mu      sync.Mutex
	account *common.Address
	inputs  Inputs
}

func NewSession(account *common.Address) *Session {
	s := &Session{inputs: Inputs{Tab: TabStake}}
	if account != nil {
		a := *account
		s.account = &a
	}
	return s
}

func (s *Session) Account() *common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil
	}
	a := *s.account
	return &a
}

func (s *Session) Inputs() Inputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs
}

func (s *Session) SetTab(tab Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Tab = tab
}

func (s *Session) SetAmount(amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Amount = amount
}

func (s *Session) SetAdminDuration(seconds string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.AdminDuration = seconds
}

func (s *Session) SetAdminRewardAmount(amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.AdminRewardAmount = amount
}

// ClearInputs empties every typed field and keeps the tab.
func (s *Session) ClearInputs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = Inputs{Tab: s.inputs.Tab}
}

package abis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// StakingPoolMetaData describes a single-reward staking pool with fixed length epochs.
var StakingPoolMetaData = &bind.MetaData{
	ABI: "[{\"inputs\":[{\"internalType\":\"address\",\"name\":\"_stakingToken\",\"type\":\"address\"},{\"internalType\":\"address\",\"name\":\"_rewardToken\",\"type\":\"address\"}],\"stateMutability\":\"nonpayable\",\"type\":\"constructor\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"reward\",\"type\":\"uint256\"}],\"name\":\"RewardAdded\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"address\",\"name\":\"user\",\"type\":\"address\"},{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"reward\",\"type\":\"uint256\"}],\"name\":\"RewardPaid\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"newDuration\",\"type\":\"uint256\"}],\"name\":\"RewardsDurationUpdated\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"address\",\"name\":\"user\",\"type\":\"address\"},{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\"}],\"name\":\"Staked\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"address\",\"name\":\"user\",\"type\":\"address\"},{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\"}],\"name\":\"Withdrawn\",\"type\":\"event\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"account\",\"type\":\"address\"}],\"name\":\"balanceOf\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"duration\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"_account\",\"type\":\"address\"}],\"name\":\"earned\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"exit\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"finishAt\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"getReward\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"lastTimeRewardApplicable\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"_amount\",\"type\":\"uint256\"}],\"name\":\"notifyRewardAmount\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"owner\",\"outputs\":[{\"internalType\":\"address\",\"name\":\"\",\"type\":\"address\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"rewardPerToken\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"rewardPerTokenStored\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"rewardRate\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"rewardsToken\",\"outputs\":[{\"internalType\":\"address\",\"name\":\"\",\"type\":\"address\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"_duration\",\"type\":\"uint256\"}],\"name\":\"setRewardsDuration\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"_amount\",\"type\":\"uint256\"}],\"name\":\"stake\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"stakingToken\",\"outputs\":[{\"internalType\":\"address\",\"name\":\"\",\"type\":\"address\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"totalSupply\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"updatedAt\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"_amount\",\"type\":\"uint256\"}],\"name\":\"withdraw\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"}]",
}

type StakingPool struct {
	StakingPoolCaller
	StakingPoolTransactor
	StakingPoolFilterer
	abi *abi.ABI
}

type StakingPoolCaller struct {
	contract *bind.BoundContract
}

type StakingPoolTransactor struct {
	contract *bind.BoundContract
}

type StakingPoolFilterer struct {
	contract *bind.BoundContract
}

func NewStakingPool(address common.Address, backend bind.ContractBackend) (*StakingPool, error) {
	contract, parsed, err := bound(StakingPoolMetaData, address, backend)
	if err != nil {
		return nil, err
	}
	return &StakingPool{
		StakingPoolCaller:     StakingPoolCaller{contract: contract},
		StakingPoolTransactor: StakingPoolTransactor{contract: contract},
		StakingPoolFilterer:   StakingPoolFilterer{contract: contract},
		abi:                   parsed,
	}, nil
}

// ABI is the parsed interface, used for packing and error decoding.
func (p *StakingPool) ABI() *abi.ABI {
	return p.abi
}

// BalanceOf is the staked amount of account.
func (c *StakingPoolCaller) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	return callUint(c.contract, opts, "balanceOf", account)
}

func (c *StakingPoolCaller) Earned(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	return callUint(c.contract, opts, "earned", account)
}

func (c *StakingPoolCaller) FinishAt(opts *bind.CallOpts) (*big.Int, error) {
	return callUint(c.contract, opts, "finishAt")
}

func (c *StakingPoolCaller) Duration(opts *bind.CallOpts) (*big.Int, error) {
	return callUint(c.contract, opts, "duration")
}

func (c *StakingPoolCaller) TotalSupply(opts *bind.CallOpts) (*big.Int, error) {
	return callUint(c.contract, opts, "totalSupply")
}

func (c *StakingPoolCaller) RewardRate(opts *bind.CallOpts) (*big.Int, error) {
	return callUint(c.contract, opts, "rewardRate")
}

func (c *StakingPoolCaller) RewardPerTokenStored(opts *bind.CallOpts) (*big.Int, error) {
	return callUint(c.contract, opts, "rewardPerTokenStored")
}

func (c *StakingPoolCaller) UpdatedAt(opts *bind.CallOpts) (*big.Int, error) {
	return callUint(c.contract, opts, "updatedAt")
}

func (c *StakingPoolCaller) Owner(opts *bind.CallOpts) (common.Address, error) {
	return callAddress(c.contract, opts, "owner")
}

func (c *StakingPoolCaller) StakingToken(opts *bind.CallOpts) (common.Address, error) {
	return callAddress(c.contract, opts, "stakingToken")
}

func (c *StakingPoolCaller) RewardsToken(opts *bind.CallOpts) (common.Address, error) {
	return callAddress(c.contract, opts, "rewardsToken")
}

func (t *StakingPoolTransactor) Stake(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "stake", amount)
}

func (t *StakingPoolTransactor) Withdraw(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "withdraw", amount)
}

func (t *StakingPoolTransactor) GetReward(opts *bind.TransactOpts) (*types.Transaction, error) {
	return t.contract.Transact(opts, "getReward")
}

// Exit withdraws the whole stake and pays out rewards in one call.
func (t *StakingPoolTransactor) Exit(opts *bind.TransactOpts) (*types.Transaction, error) {
	return t.contract.Transact(opts, "exit")
}

// SetRewardsDuration reverts while an epoch is running. Owner only.
func (t *StakingPoolTransactor) SetRewardsDuration(opts *bind.TransactOpts, duration *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "setRewardsDuration", duration)
}

// NotifyRewardAmount funds the pool and starts a new epoch from now. Owner only.
func (t *StakingPoolTransactor) NotifyRewardAmount(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "notifyRewardAmount", amount)
}

type StakingPoolStaked struct {
	User   common.Address
	Amount *big.Int
	Raw    types.Log
}

type StakingPoolWithdrawn struct {
	User   common.Address
	Amount *big.Int
	Raw    types.Log
}

type StakingPoolRewardPaid struct {
	User   common.Address
	Reward *big.Int
	Raw    types.Log
}

type StakingPoolRewardAdded struct {
	Reward *big.Int
	Raw    types.Log
}

func (f *StakingPoolFilterer) ParseStaked(log types.Log) (*StakingPoolStaked, error) {
	event := new(StakingPoolStaked)
	if err := unpackLog(f.contract, event, "Staked", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

func (f *StakingPoolFilterer) ParseWithdrawn(log types.Log) (*StakingPoolWithdrawn, error) {
	event := new(StakingPoolWithdrawn)
	if err := unpackLog(f.contract, event, "Withdrawn", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

func (f *StakingPoolFilterer) ParseRewardPaid(log types.Log) (*StakingPoolRewardPaid, error) {
	event := new(StakingPoolRewardPaid)
	if err := unpackLog(f.contract, event, "RewardPaid", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

func (f *StakingPoolFilterer) ParseRewardAdded(log types.Log) (*StakingPoolRewardAdded, error) {
	event := new(StakingPoolRewardAdded)
	if err := unpackLog(f.contract, event, "RewardAdded", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

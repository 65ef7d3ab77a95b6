package abis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// bound parses meta once per binding and wires backend for calls, sends and logs.
func bound(meta *bind.MetaData, address common.Address, backend bind.ContractBackend) (*bind.BoundContract, *abi.ABI, error) {
	parsed, err := meta.GetAbi()
	if err != nil {
		return nil, nil, err
	}
	return bind.NewBoundContract(address, *parsed, backend, backend, backend), parsed, nil
}

func callUint(contract *bind.BoundContract, opts *bind.CallOpts, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := contract.Call(opts, &out, method, params...); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func callAddress(contract *bind.BoundContract, opts *bind.CallOpts, method string) (common.Address, error) {
	var out []interface{}
	if err := contract.Call(opts, &out, method); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func unpackLog(contract *bind.BoundContract, out interface{}, event string, log types.Log) error {
	return contract.UnpackLog(out, event, log)
}

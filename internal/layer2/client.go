package layer2

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goatnetwork/goat-staking/internal/config"
	"github.com/goatnetwork/goat-staking/internal/layer2/abis"
	"github.com/goatnetwork/goat-staking/internal/orchestrator"
	"github.com/goatnetwork/goat-staking/internal/state"
	stakingtypes "github.com/goatnetwork/goat-staking/internal/types"
	log "github.com/sirupsen/logrus"
)

var (
	ErrReverted       = errors.New("transaction reverted")
	ErrReadOnly       = errors.New("no signing key configured")
	ErrSignerMismatch = errors.New("operation account is not the signing account")
	ErrPoolMismatch   = errors.New("pool does not match configured contracts")
)

// Backend is what the client needs from a node. *ethclient.Client fits.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type receiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type Options struct {
	Pool                common.Address
	StakingToken        common.Address
	RewardToken         common.Address
	ReadTimeout         time.Duration
	ReceiptPollInterval time.Duration
}

// Client is the pool and its two tokens behind one node connection.
type Client struct {
	backend  Backend
	receipts receiptFetcher
	signer   *Signer

	pool         *abis.StakingPool
	stakingToken *abis.ERC20
	rewardToken  *abis.ERC20
	poolAddress  common.Address

	readTimeout     time.Duration
	receiptInterval time.Duration
	logger          *log.Entry
	closer          func()
}

var (
	_ state.Ledger           = (*Client)(nil)
	_ orchestrator.Submitter = (*Client)(nil)
)

// NewClient binds the contracts. signer may be nil for a read-only client.
func NewClient(backend Backend, opts Options, signer *Signer) (*Client, error) {
	pool, err := abis.NewStakingPool(opts.Pool, backend)
	if err != nil {
		return nil, fmt.Errorf("bind pool: %w", err)
	}
	stakingToken, err := abis.NewERC20(opts.StakingToken, backend)
	if err != nil {
		return nil, fmt.Errorf("bind staking token: %w", err)
	}
	rewardToken, err := abis.NewERC20(opts.RewardToken, backend)
	if err != nil {
		return nil, fmt.Errorf("bind reward token: %w", err)
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.ReceiptPollInterval <= 0 {
		opts.ReceiptPollInterval = 3 * time.Second
	}
	return &Client{
		backend:         backend,
		receipts:        backend,
		signer:          signer,
		pool:            pool,
		stakingToken:    stakingToken,
		rewardToken:     rewardToken,
		poolAddress:     opts.Pool,
		readTimeout:     opts.ReadTimeout,
		receiptInterval: opts.ReceiptPollInterval,
		logger:          log.WithFields(log.Fields{"module": "layer2"}),
	}, nil
}

// NewClientFromConfig dials L2_RPC and signs with ACCOUNT_PRIVATE_KEY if set.
func NewClientFromConfig() (*Client, error) {
	ethClient, err := DialEthClient(config.AppConfig.L2RPC, config.AppConfig.L2JwtSecret)
	if err != nil {
		return nil, err
	}
	var signer *Signer
	if config.AppConfig.AccountPriKey != "" {
		signer, err = NewSigner(config.AppConfig.AccountPriKey, config.AppConfig.L2ChainId)
		if err != nil {
			ethClient.Close()
			return nil, err
		}
	}
	client, err := NewClient(ethClient, Options{
		Pool:                common.HexToAddress(config.AppConfig.PoolContract),
		StakingToken:        common.HexToAddress(config.AppConfig.StakingTokenContract),
		RewardToken:         common.HexToAddress(config.AppConfig.RewardTokenContract),
		ReadTimeout:         config.AppConfig.ReadTimeout,
		ReceiptPollInterval: config.AppConfig.ReceiptPollInterval,
	}, signer)
	if err != nil {
		ethClient.Close()
		return nil, err
	}
	client.closer = ethClient.Close
	return client, nil
}

// Account is the signing account, nil when read-only.
func (c *Client) Account() *common.Address {
	if c.signer == nil {
		return nil
	}
	addr := c.signer.Address()
	return &addr
}

func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func (c *Client) Read(ctx context.Context, field state.Field, account common.Address) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	opts := &bind.CallOpts{
		Context: ctx,
	}

	switch field {
	case state.FieldTotalStaked:
		return c.pool.TotalSupply(opts)
	case state.FieldRewardRate:
		return c.pool.RewardRate(opts)
	case state.FieldRewardPerTokenStored:
		return c.pool.RewardPerTokenStored(opts)
	case state.FieldUpdatedAt:
		return c.pool.UpdatedAt(opts)
	case state.FieldFinishAt:
		return c.pool.FinishAt(opts)
	case state.FieldDuration:
		return c.pool.Duration(opts)
	case state.FieldStaked:
		return c.pool.BalanceOf(opts, account)
	case state.FieldEarned:
		return c.pool.Earned(opts, account)
	case state.FieldWalletBalance:
		return c.stakingToken.BalanceOf(opts, account)
	case state.FieldRewardBalance:
		return c.rewardToken.BalanceOf(opts, account)
	case state.FieldAllowance:
		return c.stakingToken.Allowance(opts, account, c.poolAddress)
	}
	return nil, fmt.Errorf("unknown field %d", field)
}

// Submit signs and sends op. It returns once the node accepted the transaction.
func (c *Client) Submit(ctx context.Context, op orchestrator.Operation) (common.Hash, error) {
	if c.signer == nil {
		return common.Hash{}, ErrReadOnly
	}
	if op.Account != c.signer.Address() {
		return common.Hash{}, ErrSignerMismatch
	}
	opts, err := c.signer.transactOpts(ctx, c.backend)
	if err != nil {
		return common.Hash{}, err
	}

	var tx *types.Transaction
	switch op.Kind {
	case stakingtypes.KindApprove:
		tx, err = c.stakingToken.Approve(opts, c.poolAddress, op.Amount)
	case stakingtypes.KindStake:
		tx, err = c.pool.Stake(opts, op.Amount)
	case stakingtypes.KindWithdraw:
		tx, err = c.pool.Withdraw(opts, op.Amount)
	case stakingtypes.KindClaim:
		tx, err = c.pool.GetReward(opts)
	case stakingtypes.KindExit:
		tx, err = c.pool.Exit(opts)
	case stakingtypes.KindSetDuration:
		tx, err = c.pool.SetRewardsDuration(opts, op.Seconds)
	case stakingtypes.KindFundEpoch:
		tx, err = c.pool.NotifyRewardAmount(opts, op.Amount)
	default:
		return common.Hash{}, fmt.Errorf("unsupported operation %q", op.Kind)
	}
	if err != nil {
		return common.Hash{}, err
	}

	c.logger.Infof("Sent %s, tx %s, nonce %d", op.Kind, tx.Hash().Hex(), tx.Nonce())
	return tx.Hash(), nil
}

// WaitMined polls for the receipt until it exists or ctx ends. There is no
// internal deadline. A failed receipt returns ErrReverted.
func (c *Client) WaitMined(ctx context.Context, hash common.Hash) error {
	ticker := time.NewTicker(c.receiptInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.receipts.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return fmt.Errorf("%w: tx %s in block %v", ErrReverted, hash.Hex(), receipt.BlockNumber)
			}
			c.logger.Debugf("Tx %s mined in block %v, gas used %d, events %v", hash.Hex(), receipt.BlockNumber, receipt.GasUsed, c.describeLogs(receipt.Logs))
			return nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			c.logger.Debugf("Receipt query for %s failed: %v", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// CheckPool compares the pool's own token and owner getters with the
// configured addresses.
func (c *Client) CheckPool(ctx context.Context, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()
	opts := &bind.CallOpts{Context: ctx}

	stakingToken, err := c.pool.StakingToken(opts)
	if err != nil {
		return err
	}
	if stakingToken != c.stakingToken.Address() {
		return fmt.Errorf("%w: staking token is %s", ErrPoolMismatch, stakingToken.Hex())
	}
	rewardsToken, err := c.pool.RewardsToken(opts)
	if err != nil {
		return err
	}
	if rewardsToken != c.rewardToken.Address() {
		return fmt.Errorf("%w: rewards token is %s", ErrPoolMismatch, rewardsToken.Hex())
	}
	poolOwner, err := c.pool.Owner(opts)
	if err != nil {
		return err
	}
	if !stakingtypes.SameAddress(poolOwner.Hex(), owner) {
		return fmt.Errorf("%w: owner is %s", ErrPoolMismatch, poolOwner.Hex())
	}
	return nil
}

// describeLogs names the pool and staking token events of a receipt.
func (c *Client) describeLogs(logs []*types.Log) []string {
	var events []string
	for _, l := range logs {
		if l == nil {
			continue
		}
		switch l.Address {
		case c.poolAddress:
			if e, err := c.pool.ParseStaked(*l); err == nil {
				events = append(events, fmt.Sprintf("Staked(%s, %s)", stakingtypes.ShortAddress(e.User), e.Amount))
			} else if e, err := c.pool.ParseWithdrawn(*l); err == nil {
				events = append(events, fmt.Sprintf("Withdrawn(%s, %s)", stakingtypes.ShortAddress(e.User), e.Amount))
			} else if e, err := c.pool.ParseRewardPaid(*l); err == nil {
				events = append(events, fmt.Sprintf("RewardPaid(%s, %s)", stakingtypes.ShortAddress(e.User), e.Reward))
			} else if e, err := c.pool.ParseRewardAdded(*l); err == nil {
				events = append(events, fmt.Sprintf("RewardAdded(%s)", e.Reward))
			}
		case c.stakingToken.Address():
			if e, err := c.stakingToken.ParseApproval(*l); err == nil {
				events = append(events, fmt.Sprintf("Approval(%s, %s)", stakingtypes.ShortAddress(e.Spender), e.Value))
			}
		}
	}
	return events
}

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/goatnetwork/goat-staking/internal/orchestrator"
	"github.com/goatnetwork/goat-staking/internal/rewards"
	"github.com/goatnetwork/goat-staking/internal/types"
	"github.com/gosuri/uitable"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const cellUnknown = "-"

type cli struct {
	out    io.Writer
	newEnv func() (*Env, error)
	env    *Env
	now    func() time.Time
}

func NewRootCmd(out io.Writer, newEnv func() (*Env, error)) *cobra.Command {
	c := &cli{out: out, newEnv: newEnv, now: time.Now}

	root := &cobra.Command{
		Use:          "stakectl",
		Short:        "Inspect and act on the staking reward pool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			env, err := c.newEnv()
			if err != nil {
				return err
			}
			c.env = env
			if err := env.State.Refresh(cmd.Context()); err != nil {
				log.Warnf("Some reads failed, values may be stale: %v", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.env != nil && c.env.Close != nil {
				c.env.Close()
			}
		},
	}
	root.SetOut(out)

	root.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show pool metrics and the connected position",
			Args:  cobra.NoArgs,
			RunE:  c.status,
		},
		&cobra.Command{
			Use:   "approve AMOUNT",
			Short: "Allow the pool to pull AMOUNT staking tokens",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c.env.Session.SetAmount(args[0])
				return c.submit(cmd, types.KindApprove)
			},
		},
		&cobra.Command{
			Use:   "stake AMOUNT",
			Short: "Stake AMOUNT tokens (approve first if the allowance is short)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c.env.Session.SetTab(orchestrator.TabStake)
				c.env.Session.SetAmount(args[0])
				return c.submit(cmd, types.KindStake)
			},
		},
		&cobra.Command{
			Use:   "withdraw AMOUNT|max",
			Short: "Withdraw staked tokens",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c.env.Session.SetTab(orchestrator.TabWithdraw)
				if args[0] == "max" {
					if _, err := c.env.Orch.MaxAmount(c.env.Session); err != nil {
						return err
					}
				} else {
					c.env.Session.SetAmount(args[0])
				}
				return c.submit(cmd, types.KindWithdraw)
			},
		},
		&cobra.Command{
			Use:   "claim",
			Short: "Claim earned rewards",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.submit(cmd, types.KindClaim)
			},
		},
		&cobra.Command{
			Use:   "exit",
			Short: "Withdraw everything and claim rewards",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.submit(cmd, types.KindExit)
			},
		},
		c.adminCmd(),
	)
	return root
}

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Owner-only epoch management",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set-duration SECONDS",
			Short: "Set the length of the next reward epoch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c.env.Session.SetAdminDuration(args[0])
				return c.submit(cmd, types.KindSetDuration)
			},
		},
		&cobra.Command{
			Use:   "fund AMOUNT",
			Short: "Fund the pool with AMOUNT reward tokens and start an epoch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c.env.Session.SetAdminRewardAmount(args[0])
				return c.submit(cmd, types.KindFundEpoch)
			},
		},
	)
	return cmd
}

// submit blocks until the operation is confirmed or failed.
func (c *cli) submit(cmd *cobra.Command, kind types.OperationKind) error {
	op, err := c.env.Orch.Do(cmd.Context(), kind, c.env.Session)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s submitted, tx %s, waiting for confirmation...\n", kind, op.TxHash.Hex())

	c.env.Orch.Wait()
	last, ok := c.env.Orch.Last()
	if !ok || last.ID != op.ID {
		return fmt.Errorf("%s: outcome unknown", kind)
	}
	if last.Status == orchestrator.StatusFailed {
		return fmt.Errorf("%s failed: %w", kind, last.Err)
	}
	fmt.Fprintf(c.out, "%s confirmed\n", kind)
	return nil
}

func knownOr(s string, known bool) string {
	if !known {
		return cellUnknown
	}
	return s
}

func (c *cli) status(cmd *cobra.Command, args []string) error {
	snap := c.env.State.Snapshot()
	pool := snap.Pool
	m := rewards.Derive(pool, snap.Position.Staked, c.now())
	d := c.env.Decimals

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("Total staked", types.FormatAmount(pool.TotalStaked, d))
	table.AddRow("Reward rate", types.FormatAmount(pool.RewardRate, d)+" / s")
	table.AddRow("APR", m.APRText()+"%")
	table.AddRow("Epoch start", m.EpochStartText())
	table.AddRow("Epoch end", m.EpochEndText())
	table.AddRow("Time remaining", m.TimeRemaining.String())
	table.AddRow("Progress", fmt.Sprintf("%.2f%%", m.Progress))
	table.AddRow("Last update", rewards.FormatTime(pool.UpdatedAt))

	if snap.Account == nil {
		table.AddRow("Account", "not connected")
	} else {
		pos := snap.Position
		table.AddRow("Account", snap.Account.Hex())
		table.AddRow("Wallet balance", types.FormatAmount(pos.WalletBalance, d))
		table.AddRow("Staked", types.FormatAmount(pos.Staked, d))
		table.AddRow("Earned", types.FormatAmount(pos.Earned, d))
		table.AddRow("Reward balance", types.FormatAmount(pos.RewardBalance, d))
		table.AddRow("Allowance", types.FormatAmount(pos.Allowance, d))
		table.AddRow("Pool share", knownOr(m.PoolShare.StringFixed(2)+"%", pos.Staked != nil && pool.TotalStaked != nil))
		if c.env.Admin.IsAuthorized(snap.Account.Hex()) {
			table.AddRow("Role", "owner")
		}
	}
	for _, f := range snap.Stale {
		table.AddRow("Stale", f.String())
	}

	fmt.Fprintln(c.out, table)
	return nil
}

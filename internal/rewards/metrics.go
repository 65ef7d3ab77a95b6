// Package rewards derives display metrics from a pool snapshot and a clock.
// Nothing here touches the network or mutates its inputs.
package rewards

import (
	"fmt"
	"math/big"
	"time"

	"github.com/goatnetwork/goat-staking/internal/state"
	"github.com/shopspring/decimal"
)

const SecondsPerYear = 31536000

const (
	NotStarted = "Not Started"
	Ended      = "Ended"
	NotSet     = "N/A"
)

var hundred = decimal.NewFromInt(100)

// Remaining is the time left in the current epoch, floored to whole minutes.
type Remaining struct {
	Started bool
	Ended   bool
	Days    int64
	Hours   int64
	Minutes int64
}

func (r Remaining) String() string {
	switch {
	case !r.Started:
		return NotStarted
	case r.Ended:
		return Ended
	}
	return fmt.Sprintf("%dd %dh %dm", r.Days, r.Hours, r.Minutes)
}

type Metrics struct {
	APR           decimal.Decimal
	EpochStart    *time.Time
	EpochEnd      *time.Time
	TimeRemaining Remaining
	Progress      float64
	PoolShare     decimal.Decimal
}

// APRText renders APR with two decimals.
func (m Metrics) APRText() string {
	return m.APR.StringFixed(2)
}

func (m Metrics) EpochStartText() string {
	if m.EpochStart == nil {
		return NotStarted
	}
	return m.EpochStart.Local().Format(time.DateTime)
}

func (m Metrics) EpochEndText() string {
	if m.EpochEnd == nil {
		return NotSet
	}
	return m.EpochEnd.Local().Format(time.DateTime)
}

// Derive computes every metric for one instant. staked may be nil.
func Derive(pool state.PoolState, staked *big.Int, now time.Time) Metrics {
	m := Metrics{
		APR:           APR(pool.RewardRate, pool.TotalStaked),
		TimeRemaining: TimeRemaining(pool.FinishAt, now),
		Progress:      Progress(pool.FinishAt, pool.Duration, now),
		PoolShare:     PoolShare(staked, pool.TotalStaked),
	}
	if start, ok := EpochStart(pool.FinishAt, pool.Duration); ok {
		m.EpochStart = &start
	}
	if isSet(pool.FinishAt) {
		end := time.Unix(pool.FinishAt.Int64(), 0)
		m.EpochEnd = &end
	}
	return m
}

func isSet(ts *big.Int) bool {
	return ts != nil && ts.Sign() > 0 && ts.IsInt64()
}

// APR annualizes the current emission rate over the current stake, in percent.
// It ignores compounding and future changes of either input.
func APR(rate, totalStaked *big.Int) decimal.Decimal {
	if rate == nil || totalStaked == nil || totalStaked.Sign() <= 0 {
		return decimal.Zero
	}
	yearly := new(big.Int).Mul(rate, big.NewInt(SecondsPerYear))
	return decimal.NewFromBigInt(yearly, 0).
		Mul(hundred).
		Div(decimal.NewFromBigInt(totalStaked, 0))
}

// EpochStart is finishAt - duration. ok is false when no epoch was ever
// started or the duration is unknown.
func EpochStart(finishAt, duration *big.Int) (time.Time, bool) {
	if !isSet(finishAt) || duration == nil {
		return time.Time{}, false
	}
	start := new(big.Int).Sub(finishAt, duration)
	if !start.IsInt64() {
		return time.Time{}, false
	}
	return time.Unix(start.Int64(), 0), true
}

func TimeRemaining(finishAt *big.Int, now time.Time) Remaining {
	if !isSet(finishAt) {
		return Remaining{}
	}
	left := finishAt.Int64() - now.Unix()
	if left <= 0 {
		return Remaining{Started: true, Ended: true}
	}
	return Remaining{
		Started: true,
		Days:    left / 86400,
		Hours:   left % 86400 / 3600,
		Minutes: left % 3600 / 60,
	}
}

// Progress is the elapsed share of the epoch in [0, 100].
func Progress(finishAt, duration *big.Int, now time.Time) float64 {
	if !isSet(finishAt) || duration == nil || duration.Sign() <= 0 {
		return 0
	}
	start, ok := EpochStart(finishAt, duration)
	if !ok {
		return 0
	}
	finish := finishAt.Int64()
	nowUnix := now.Unix()
	switch {
	case nowUnix <= start.Unix():
		return 0
	case nowUnix >= finish:
		return 100
	}
	elapsed := decimal.NewFromInt(nowUnix - start.Unix())
	total := decimal.NewFromInt(finish - start.Unix())
	p, _ := elapsed.Mul(hundred).Div(total).Float64()
	return p
}

// PoolShare is staked / totalStaked in percent.
func PoolShare(staked, totalStaked *big.Int) decimal.Decimal {
	if staked == nil || totalStaked == nil || totalStaked.Sign() <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(staked, 0).
		Mul(hundred).
		Div(decimal.NewFromBigInt(totalStaked, 0))
}

// FormatTime renders an on-chain timestamp, or N/A when it is zero or unknown.
func FormatTime(ts *big.Int) string {
	if !isSet(ts) {
		return NotSet
	}
	return time.Unix(ts.Int64(), 0).Local().Format(time.DateTime)
}

package rewards

import (
	"math/big"
	"testing"
	"time"

	"github.com/goatnetwork/goat-staking/internal/state"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}

func TestAPR(t *testing.T) {
	total := wei("1000000000000000000000")

	// 0.001 token per second over 1000 tokens is 31536 tokens a year
	apr := APR(wei("1000000000000000"), total)
	assert.True(t, apr.Equal(decimal.RequireFromString("3153.6")), apr.String())
	assert.Equal(t, "3153.60", Metrics{APR: apr}.APRText())

	apr = APR(wei("1000000000000"), total)
	assert.True(t, apr.Equal(decimal.RequireFromString("3.1536")), apr.String())
	assert.Equal(t, "3.15", Metrics{APR: apr}.APRText())
}

func TestZeroTotalStaked(t *testing.T) {
	zero := big.NewInt(0)
	for _, rate := range []*big.Int{nil, zero, wei("1000000000000000")} {
		assert.True(t, APR(rate, zero).IsZero())
		assert.True(t, APR(rate, nil).IsZero())
	}
	for _, staked := range []*big.Int{nil, zero, big.NewInt(5)} {
		assert.True(t, PoolShare(staked, zero).IsZero())
	}
}

func TestPoolShare(t *testing.T) {
	share := PoolShare(big.NewInt(25), big.NewInt(200))
	assert.True(t, share.Equal(decimal.RequireFromString("12.5")), share.String())
	assert.True(t, PoolShare(nil, big.NewInt(200)).IsZero())
}

func TestNotStarted(t *testing.T) {
	pool := state.PoolState{
		FinishAt: big.NewInt(0),
		Duration: big.NewInt(604800),
	}
	m := Derive(pool, nil, time.Unix(1_700_000_000, 0))
	assert.Equal(t, NotStarted, m.TimeRemaining.String())
	assert.Equal(t, 0.0, m.Progress)
	assert.Nil(t, m.EpochStart)
	assert.Equal(t, NotStarted, m.EpochStartText())
	assert.Equal(t, NotSet, m.EpochEndText())

	_, ok := EpochStart(big.NewInt(0), big.NewInt(604800))
	assert.False(t, ok)
}

func TestUnknownPool(t *testing.T) {
	m := Derive(state.PoolState{}, nil, time.Now())
	assert.True(t, m.APR.IsZero())
	assert.Equal(t, NotStarted, m.TimeRemaining.String())
	assert.Equal(t, 0.0, m.Progress)
	assert.True(t, m.PoolShare.IsZero())
}

func TestTimeRemaining(t *testing.T) {
	finish := int64(1_700_000_000)
	cases := []struct {
		name string
		now  int64
		want string
	}{
		{"ended exactly", finish, Ended},
		{"ended later", finish + 10, Ended},
		{"one minute", finish - 60, "0d 0h 1m"},
		{"floors seconds", finish - 119, "0d 0h 1m"},
		{"mixed", finish - (2*86400 + 3*3600 + 4*60 + 59), "2d 3h 4m"},
		{"under a minute", finish - 30, "0d 0h 0m"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := TimeRemaining(big.NewInt(finish), time.Unix(c.now, 0))
			assert.Equal(t, c.want, r.String())
		})
	}
}

func TestProgressBoundsAndMonotonic(t *testing.T) {
	duration := int64(7 * 86400)
	finish := int64(1_700_000_000)
	start := finish - duration

	assert.Equal(t, 0.0, Progress(big.NewInt(finish), big.NewInt(duration), time.Unix(start-100, 0)))
	assert.Equal(t, 0.0, Progress(big.NewInt(finish), big.NewInt(duration), time.Unix(start, 0)))
	assert.Equal(t, 100.0, Progress(big.NewInt(finish), big.NewInt(duration), time.Unix(finish, 0)))
	assert.Equal(t, 100.0, Progress(big.NewInt(finish), big.NewInt(duration), time.Unix(finish+100, 0)))
	assert.InDelta(t, 50.0, Progress(big.NewInt(finish), big.NewInt(duration), time.Unix(start+duration/2, 0)), 1e-9)

	prev := -1.0
	for now := start; now <= finish; now += 3607 {
		p := Progress(big.NewInt(finish), big.NewInt(duration), time.Unix(now, 0))
		require.GreaterOrEqual(t, p, prev)
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 100.0)
		prev = p
	}
}

func TestProgressZeroDuration(t *testing.T) {
	finish := big.NewInt(1_700_000_000)
	assert.Equal(t, 0.0, Progress(finish, big.NewInt(0), time.Unix(1_699_999_999, 0)))
	assert.Equal(t, 0.0, Progress(finish, big.NewInt(0), time.Unix(1_700_000_001, 0)))
	assert.Equal(t, 0.0, Progress(finish, nil, time.Unix(1_700_000_001, 0)))
}

func TestDeriveRunningEpoch(t *testing.T) {
	finish := int64(1_700_000_000)
	pool := state.PoolState{
		TotalStaked: wei("1000000000000000000000"),
		RewardRate:  wei("1000000000000"),
		FinishAt:    big.NewInt(finish),
		Duration:    big.NewInt(86400),
		UpdatedAt:   big.NewInt(finish - 3600),
	}
	now := time.Unix(finish-43200, 0)
	m := Derive(pool, wei("250000000000000000000"), now)

	require.NotNil(t, m.EpochStart)
	require.NotNil(t, m.EpochEnd)
	assert.Equal(t, finish-86400, m.EpochStart.Unix())
	assert.Equal(t, finish, m.EpochEnd.Unix())
	assert.InDelta(t, 50.0, m.Progress, 1e-9)
	assert.Equal(t, "0d 12h 0m", m.TimeRemaining.String())
	assert.True(t, m.PoolShare.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "3.15", m.APRText())
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, NotSet, FormatTime(nil))
	assert.Equal(t, NotSet, FormatTime(big.NewInt(0)))
	ts := int64(1_700_000_000)
	assert.Equal(t, time.Unix(ts, 0).Local().Format(time.DateTime), FormatTime(big.NewInt(ts)))
}

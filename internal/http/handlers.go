package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goatnetwork/goat-staking/internal/orchestrator"
	"github.com/goatnetwork/goat-staking/internal/rewards"
	"github.com/goatnetwork/goat-staking/internal/state"
	"github.com/goatnetwork/goat-staking/internal/types"
)

func staleNames(fields []state.Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.String())
	}
	return names
}

// statusFor maps an orchestrator rejection to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, orchestrator.ErrOperationInFlight),
		errors.Is(err, orchestrator.ErrApprovalRequired):
		return http.StatusConflict
	case errors.Is(err, orchestrator.ErrUnknownBalance),
		errors.Is(err, orchestrator.ErrAllowanceUnknown):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

func (hs *HTTPServer) handlePool(c *gin.Context) {
	snap := hs.state.Snapshot()
	pool := snap.Pool
	if pool.TotalStaked == nil && pool.RewardRate == nil && pool.FinishAt == nil && len(snap.Stale) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": state.ErrStale.Error(), "stale": staleNames(snap.Stale)})
		return
	}

	m := rewards.Derive(pool, snap.Position.Staked, hs.now())
	c.JSON(http.StatusOK, PoolView{
		TotalStaked:          amountView(pool.TotalStaked, hs.decimals),
		RewardRate:           amountView(pool.RewardRate, hs.decimals),
		RewardPerTokenStored: rawView(pool.RewardPerTokenStored),
		Duration:             rawView(pool.Duration),
		LastUpdate:           rewards.FormatTime(pool.UpdatedAt),
		APR:                  m.APRText(),
		EpochStart:           m.EpochStartText(),
		EpochEnd:             m.EpochEndText(),
		TimeRemaining:        m.TimeRemaining.String(),
		Progress:             m.Progress,
		Stale:                staleNames(snap.Stale),
	})
}

func (hs *HTTPServer) handleAccount(c *gin.Context) {
	snap := hs.state.Snapshot()
	view := AccountView{
		Inputs:       hs.session.Inputs(),
		Availability: hs.orch.Availability(hs.session),
		Admin:        hs.admin.Panel(snap.Account),
		Stale:        staleNames(snap.Stale),
	}
	if snap.Account != nil {
		addr := snap.Account.Hex()
		view.Account = &addr
		pos := snap.Position
		view.Position = PositionView{
			Staked:        amountView(pos.Staked, hs.decimals),
			Earned:        amountView(pos.Earned, hs.decimals),
			WalletBalance: amountView(pos.WalletBalance, hs.decimals),
			RewardBalance: amountView(pos.RewardBalance, hs.decimals),
			Allowance:     amountView(pos.Allowance, hs.decimals),
		}
		if pos.Staked != nil && snap.Pool.TotalStaked != nil {
			share := rewards.PoolShare(pos.Staked, snap.Pool.TotalStaked).StringFixed(2)
			view.Position.PoolShare = &share
		}
	}
	c.JSON(http.StatusOK, view)
}

func (hs *HTTPServer) handleOperation(c *gin.Context) {
	resp := gin.H{"current": operationView(hs.orch.Current(), hs.decimals)}
	if last, ok := hs.orch.Last(); ok {
		resp["last"] = operationView(last, hs.decimals)
	}
	c.JSON(http.StatusOK, resp)
}

func (hs *HTTPServer) handleOperations(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	if hs.history == nil {
		c.JSON(http.StatusOK, gin.H{"operations": []interface{}{}})
		return
	}
	records, err := hs.history.Recent(limit, c.Query("account"))
	if err != nil {
		hs.logger.Errorf("Failed to list operations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"operations": records})
}

func (hs *HTTPServer) handleSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Tab != nil {
		tab := orchestrator.Tab(*req.Tab)
		if !tab.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tab " + strconv.Quote(*req.Tab)})
			return
		}
		hs.session.SetTab(tab)
	}
	if req.Amount != nil {
		hs.session.SetAmount(*req.Amount)
	}
	if req.AdminDuration != nil {
		hs.session.SetAdminDuration(*req.AdminDuration)
	}
	if req.AdminRewardAmount != nil {
		hs.session.SetAdminRewardAmount(*req.AdminRewardAmount)
	}
	c.JSON(http.StatusOK, gin.H{"inputs": hs.session.Inputs()})
}

func (hs *HTTPServer) handleMax(c *gin.Context) {
	amount, err := hs.orch.MaxAmount(hs.session)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount, "inputs": hs.session.Inputs()})
}

func (hs *HTTPServer) handleAction(kind types.OperationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActionRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		if req.Amount != nil {
			if kind == types.KindFundEpoch {
				hs.session.SetAdminRewardAmount(*req.Amount)
			} else {
				hs.session.SetAmount(*req.Amount)
			}
		}
		if req.Seconds != nil {
			hs.session.SetAdminDuration(*req.Seconds)
		}

		op, err := hs.orch.Do(c.Request.Context(), kind, hs.session)
		if err != nil {
			if op.ID != "" {
				// accepted by validation, rejected by the node
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "operation": operationView(op, hs.decimals)})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"operation": operationView(op, hs.decimals)})
	}
}

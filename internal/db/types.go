package db

const (
	OPERATION_STATUS_SUBMITTED  = "submitted"
	OPERATION_STATUS_CONFIRMING = "confirming"
	OPERATION_STATUS_CONFIRMED  = "confirmed"
	OPERATION_STATUS_FAILED     = "failed"
	// left in flight by a previous run; the outcome was never observed
	OPERATION_STATUS_ABANDONED = "abandoned"

	DEFAULT_HISTORY_LIMIT = 20
	MAX_HISTORY_LIMIT     = 200
)

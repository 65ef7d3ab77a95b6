package db

import (
	"context"
	"errors"
	"strings"

	"github.com/goatnetwork/goat-staking/internal/state"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var recordedEvents = []state.EventType{
	state.OperationSubmitted,
	state.OperationConfirming,
	state.OperationConfirmed,
	state.OperationFailed,
}

// Recorder persists operation lifecycle events. History is informational and
// is never read back into decisions.
type Recorder struct {
	db     *gorm.DB
	bus    *state.EventBus
	ch     chan interface{}
	logger *log.Entry
}

// NewRecorder subscribes immediately so no event published before Start is lost,
// and marks operations left in flight by a previous run as abandoned.
func NewRecorder(dm *DatabaseManager, bus *state.EventBus) *Recorder {
	r := &Recorder{
		db:     dm.GetHistoryDB(),
		bus:    bus,
		ch:     make(chan interface{}, state.EVENT_CHAN_LENGTH),
		logger: log.WithFields(log.Fields{"module": "recorder"}),
	}
	if n, err := r.AbandonInFlight(); err != nil {
		r.logger.Errorf("Failed to mark in-flight operations abandoned: %v", err)
	} else if n > 0 {
		r.logger.Warnf("Marked %d operation(s) from a previous run as abandoned", n)
	}
	for _, t := range recordedEvents {
		bus.Subscribe(t, r.ch)
	}
	return r
}

func (r *Recorder) Start(ctx context.Context) {
	defer func() {
		for _, t := range recordedEvents {
			r.bus.Unsubscribe(t, r.ch)
		}
	}()
	r.logger.Info("Recorder started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Recorder stopping...")
			return
		case data := <-r.ch:
			evt, ok := data.(state.OperationEvent)
			if !ok {
				r.logger.Errorf("Unexpected event payload %T", data)
				continue
			}
			if err := r.Record(evt); err != nil {
				r.logger.Errorf("Failed to record operation %s: %v", evt.ID, err)
			}
		}
	}
}

// Record inserts the operation or moves the existing record to the event's status.
func (r *Recorder) Record(evt state.OperationEvent) error {
	var rec OperationRecord
	err := r.db.Where("operation_id = ?", evt.ID).First(&rec).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = OperationRecord{
			OperationId: evt.ID,
			Kind:        string(evt.Kind),
			Account:     strings.ToLower(evt.Account.Hex()),
			CreatedAt:   evt.At,
		}
		if evt.Amount != nil {
			rec.Amount = evt.Amount.String()
		}
	}

	rec.Status = evt.Status
	rec.Error = evt.Error
	if evt.TxHash != "" {
		rec.TxHash = evt.TxHash
	}
	rec.UpdatedAt = evt.At
	return r.db.Save(&rec).Error
}

// Recent lists the newest records first, optionally for one account.
func (r *Recorder) Recent(limit int, account string) ([]OperationRecord, error) {
	if limit <= 0 {
		limit = DEFAULT_HISTORY_LIMIT
	}
	if limit > MAX_HISTORY_LIMIT {
		limit = MAX_HISTORY_LIMIT
	}

	query := r.db.Order("created_at desc, id desc").Limit(limit)
	if account != "" {
		query = query.Where("account = ?", strings.ToLower(account))
	}
	var records []OperationRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Recorder) AbandonInFlight() (int64, error) {
	result := r.db.Model(&OperationRecord{}).
		Where("status IN ?", []string{OPERATION_STATUS_SUBMITTED, OPERATION_STATUS_CONFIRMING}).
		Update("status", OPERATION_STATUS_ABANDONED)
	return result.RowsAffected, result.Error
}

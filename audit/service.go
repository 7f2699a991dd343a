package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/lootgrid/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Inventory actions recorded by the API.
const (
	ActionAddRows  = "inventory.add_rows"
	ActionDrop     = "inventory.drop"
	ActionTransfer = "inventory.transfer"
)

const (
	queueSize     = 1024
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Entry holds one audit event to be logged.
type Entry struct {
	TraceID string
	OwnerID int64
	Action  string
	Detail  interface{}
	Error   string
	MapID   int
}

// Service logs audit entries asynchronously in batches.
type Service struct {
	db       *gorm.DB
	ch       chan *model.AuditLog
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// New creates an audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.AuditLog, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry for an async DB write. Entries are dropped when the
// queue is full.
func (svc *Service) Log(entry Entry) {
	var detail datatypes.JSON
	if entry.Detail != nil {
		if b, err := json.Marshal(entry.Detail); err == nil {
			detail = datatypes.JSON(b)
		}
	}
	record := &model.AuditLog{
		TraceID: entry.TraceID,
		OwnerID: entry.OwnerID,
		Action:  entry.Action,
		Detail:  detail,
		Error:   entry.Error,
		MapID:   entry.MapID,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit queue full, dropping entry",
			zap.String("action", entry.Action),
			zap.Int64("owner_id", entry.OwnerID))
	}
}

// Recent returns the latest limit entries for ownerID, newest first.
func (svc *Service) Recent(ctx context.Context, ownerID int64, limit int) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := svc.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// Stop flushes queued entries and waits for the worker to exit.
func (svc *Service) Stop(_ context.Context) {
	svc.stopOnce.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.AuditLog, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Int("size", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

package task

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const auditTimeout = 2 * time.Minute

// StockAuditor is satisfied by inventory.UseCase.
type StockAuditor interface {
	AuditStock(ctx context.Context) (int, error)
}

// StockTask periodically re-evaluates stock statuses against the critical
// threshold so rows written before a threshold change are corrected.
type StockTask struct {
	auditor StockAuditor
	cron    *cron.Cron
	spec    string
	logger  logger.ZapLogger
}

func NewStockTask(auditor StockAuditor, spec string, log logger.ZapLogger) *StockTask {
	return &StockTask{
		auditor: auditor,
		cron:    cron.New(cron.WithSeconds()),
		spec:    spec,
		logger:  log,
	}
}

func (t *StockTask) Start() error {
	if _, err := t.cron.AddFunc(t.spec, t.run); err != nil {
		return fmt.Errorf("schedule stock audit %q: %w", t.spec, err)
	}
	t.cron.Start()
	t.logger.Info("stock audit task started", zap.String("spec", t.spec))
	return nil
}

// Stop waits for a running audit to finish.
func (t *StockTask) Stop() {
	<-t.cron.Stop().Done()
}

func (t *StockTask) run() {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	start := time.Now()
	changed, err := t.auditor.AuditStock(ctx)
	if err != nil {
		t.logger.Error("stock audit failed", zap.Error(err))
		return
	}
	t.logger.Info("stock audit finished",
		zap.Int("changed", changed),
		zap.Duration("took", time.Since(start)),
	)
}

package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SendFunc attempts delivery to one broadcast recipient.
type SendFunc func(ctx context.Context, recipient string) error

// BroadcastSummary reports dispatch counts for one broadcast run.
type BroadcastSummary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BatchDispatcher partitions a recipient list into fixed-size batches and
// pauses between batches to bound peak connection usage on constrained
// hosting. Batches run strictly sequentially; a failed recipient is counted
// and skipped, never aborting the run. A re-run re-sends to all recipients;
// there is no mid-broadcast resume.
type BatchDispatcher struct {
	batchSize int
	delay     time.Duration
	sleep     func(time.Duration)
	logger    *zap.Logger
}

// NewBatchDispatcher constructs a dispatcher. Non-positive batchSize falls
// back to 5 and a negative delay to zero.
func NewBatchDispatcher(batchSize int, delay time.Duration, logger *zap.Logger) *BatchDispatcher {
	if batchSize <= 0 {
		batchSize = 5
	}
	if delay < 0 {
		delay = 0
	}
	return &BatchDispatcher{
		batchSize: batchSize,
		delay:     delay,
		sleep:     time.Sleep,
		logger:    logger,
	}
}

// Dispatch sends to every recipient, batch by batch, and returns the summary.
func (d *BatchDispatcher) Dispatch(ctx context.Context, recipients []string, send SendFunc) BroadcastSummary {
	summary := BroadcastSummary{}

	for start := 0; start < len(recipients); start += d.batchSize {
		end := start + d.batchSize
		if end > len(recipients) {
			end = len(recipients)
		}

		for _, recipient := range recipients[start:end] {
			summary.Attempted++
			if err := send(ctx, recipient); err != nil {
				summary.Failed++
				d.logger.Warn("broadcast send failed",
					zap.String("recipient", recipient), zap.Error(err))
				continue
			}
			summary.Succeeded++
		}

		if end < len(recipients) {
			d.sleep(d.delay)
		}
	}

	d.logger.Info("broadcast dispatch completed",
		zap.Int("attempted", summary.Attempted),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return summary
}

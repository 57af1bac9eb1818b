package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Channel delivers a moderation event somewhere outside the service.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, event ModerationEvent) error
}

// ErrSkipped is returned by a channel that had nothing to do for an event.
var ErrSkipped = errors.New("delivery skipped")

// Dispatcher fans an event out to every channel and records the outcome.
type Dispatcher struct {
	db       *gorm.DB
	channels []Channel
	logger   *zap.Logger
	timeout  time.Duration
}

func NewDispatcher(db *gorm.DB, logger *zap.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		db:       db,
		channels: channels,
		logger:   logger,
		timeout:  10 * time.Second,
	}
}

// Publish delivers event on every channel. A failing channel does not stop
// the others; the returned error joins every failure.
func (d *Dispatcher) Publish(ctx context.Context, event ModerationEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	// delivery outlives the request that triggered it
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	var errs []error
	for _, ch := range d.channels {
		err := ch.Deliver(ctx, event)

		status := DeliverySent
		entry := DeliveryLog{
			ID:        uuid.New(),
			EventID:   event.ID,
			ProjectID: event.ProjectID,
			EventType: event.Type,
			Channel:   ch.Name(),
		}
		switch {
		case errors.Is(err, ErrSkipped):
			status = DeliverySkipped
		case err != nil:
			status = DeliveryFailed
			entry.ErrorMessage = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
		entry.Status = status
		deliveries.WithLabelValues(ch.Name(), status).Inc()

		if d.db != nil {
			if err := d.db.WithContext(ctx).Create(&entry).Error; err != nil {
				d.logger.Error("Failed to record delivery", zap.String("channel", ch.Name()), zap.Error(err))
			}
		}
	}

	return errors.Join(errs...)
}

// ListDeliveries returns the delivery log for a project, newest first.
func (d *Dispatcher) ListDeliveries(ctx context.Context, projectID uuid.UUID) ([]DeliveryLog, error) {
	var logs []DeliveryLog
	err := d.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("timestamp DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	return logs, nil
}

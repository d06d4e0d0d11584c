package service

import (
	"context"
	"time"

	"tpcc-service/internal/broker"
	"tpcc-service/internal/models"
	"tpcc-service/internal/util"

	"go.uber.org/zap"
)

// Service executes the five business transactions. Every mutating operation
// runs inside exactly one store transaction obtained from the unit-of-work
// factory; on any error the transaction is rolled back and no partial writes
// survive.
type Service struct {
	uow            models.UnitOfWorkFactory
	eventPublisher *broker.EventPublisher
	defaultCarrier int
	logger         *zap.Logger
}

// NewService creates a new transaction service
func NewService(uow models.UnitOfWorkFactory, eventPublisher *broker.EventPublisher, defaultCarrier int) *Service {
	if defaultCarrier < 1 || defaultCarrier > 10 {
		defaultCarrier = 1
	}
	return &Service{
		uow:            uow,
		eventPublisher: eventPublisher,
		defaultCarrier: defaultCarrier,
		logger:         util.GetLogger(),
	}
}

// runInTx opens one transaction, runs fn against it and commits on success.
// Rollback after commit is a no-op so it can be deferred unconditionally.
func (s *Service) runInTx(ctx context.Context, operation string, fn func(r models.Repository) error) error {
	start := time.Now()
	defer func() {
		util.TransactionLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback()
	}()

	if err := fn(uow); err != nil {
		return err
	}

	return uow.Commit()
}

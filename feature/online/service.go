package online

import (
	"context"
	"errors"

	"customer-merger/core/lock"
	"customer-merger/core/storage"
	"customer-merger/feature/profile/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrBusy is returned when another process holds the merge lock.
var ErrBusy = errors.New("merge job already running")

// lockName is shared by runs and dedup passes since both rewrite profiles.
const lockName = "merge"

// Service triggers controller runs. Concurrent triggers in this process share
// one execution; across processes the lock admits one at a time.
type Service struct {
	controller *Controller
	store      Store
	locker     lock.Locker
	archiver   *storage.Archiver
	logger     *zap.Logger
	group      singleflight.Group
}

// NewService creates a new merge service. archiver may be nil.
func NewService(controller *Controller, store Store, locker lock.Locker, archiver *storage.Archiver, logger *zap.Logger) *Service {
	return &Service{
		controller: controller,
		store:      store,
		locker:     locker,
		archiver:   archiver,
		logger:     logger,
	}
}

// Run executes one incremental merge.
func (s *Service) Run(ctx context.Context) (Status, error) {
	v, err, shared := s.group.Do("run", func() (any, error) {
		var status Status
		err := s.locked(ctx, func() error {
			var err error
			status, err = s.controller.Run(ctx)
			return err
		})
		return status, err
	})
	if shared {
		s.logger.Debug("Joined running merge")
	}
	return v.(Status), err
}

// Dedup executes one dedup pass and archives its report.
func (s *Service) Dedup(ctx context.Context) (DedupReport, error) {
	v, err, _ := s.group.Do("dedup", func() (any, error) {
		var report DedupReport
		err := s.locked(ctx, func() error {
			var err error
			report, err = s.controller.Dedup(ctx)
			return err
		})
		if err == nil {
			if _, archiveErr := s.archiver.Save(ctx, "dedup-report", report); archiveErr != nil {
				s.logger.Warn("Failed to archive dedup report", zap.Error(archiveErr))
			}
		}
		return report, err
	})
	return v.(DedupReport), err
}

// Customer returns a stored profile, or nil when it does not exist.
func (s *Service) Customer(ctx context.Context, id string) (*models.Customer, error) {
	found, err := s.store.CustomersByIDs(ctx, []string{id})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (s *Service) locked(ctx context.Context, fn func() error) error {
	release, err := s.locker.Acquire(ctx, lockName)
	if errors.Is(err, lock.ErrHeld) {
		return ErrBusy
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release merge lock", zap.Error(err))
		}
	}()
	return fn()
}

package service

import (
	"context"
	"sync"

	"employee-management/internal/models"

	"go.uber.org/zap"
)

const (
	summaryKey  = "employees:summary"
	detailedKey = "employees:detailed"
)

type EmployeeService struct {
	repo   Repository
	cache  ListCache
	logger *zap.Logger

	// mu orders cache writes against invalidations; gen counts invalidations
	// so a list read that overlapped a write is not cached.
	mu  sync.Mutex
	gen uint64
}

// NewEmployeeService wires the repository with an optional list cache;
// pass a nil cache to always read from the store.
func NewEmployeeService(repo Repository, cache ListCache, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *EmployeeService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *EmployeeService) ListSummary(ctx context.Context) ([]models.EmployeeSummary, error) {
	var cached []models.EmployeeSummary
	if s.load(ctx, summaryKey, &cached) {
		return cached, nil
	}

	gen := s.generation()
	list, err := s.repo.ListSummary(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, gen, summaryKey, list)
	return list, nil
}

func (s *EmployeeService) ListDetailed(ctx context.Context) ([]models.Employee, error) {
	var cached []models.Employee
	if s.load(ctx, detailedKey, &cached) {
		return cached, nil
	}

	gen := s.generation()
	list, err := s.repo.ListDetailed(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, gen, detailedKey, list)
	return list, nil
}

// Save expects e to have passed the field validator already.
func (s *EmployeeService) Save(ctx context.Context, e models.Employee, image *string) (models.Employee, models.UpsertOutcome, error) {
	stored, outcome, err := s.repo.Upsert(ctx, e, image)
	if err != nil {
		return models.Employee{}, "", err
	}
	s.invalidate(ctx)

	s.logger.Info("employee saved",
		zap.String("id", stored.ID),
		zap.String("outcome", string(outcome)),
		zap.Bool("new_image", image != nil))
	return stored, outcome, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id string) (models.Employee, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return models.Employee{}, err
	}
	s.invalidate(ctx)

	s.logger.Info("employee deleted", zap.String("id", id))
	return removed, nil
}

// Cache trouble never fails a request; the store stays the source of truth.

func (s *EmployeeService) load(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Load(ctx, key, dest)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *EmployeeService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// store caches value unless an invalidation ran after gen was read.
func (s *EmployeeService) store(ctx context.Context, gen uint64, key string, value any) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Debug("skip caching stale list", zap.String("key", key))
		return
	}
	if err := s.cache.Store(ctx, key, value); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *EmployeeService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if err := s.cache.Invalidate(ctx, summaryKey, detailedKey); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}

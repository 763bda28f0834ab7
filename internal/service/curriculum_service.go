package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/obe-kurikulum-api/internal/dto"
	"github.com/noah-isme/obe-kurikulum-api/internal/grading"
	"github.com/noah-isme/obe-kurikulum-api/pkg/config"
	appErrors "github.com/noah-isme/obe-kurikulum-api/pkg/errors"
)

const curriculumCacheKey = "curriculum:mk"

// CourseFetcher reads the raw curriculum payload from the backend.
type CourseFetcher interface {
	FetchCourses(ctx context.Context) ([]dto.CoursePayload, error)
}

// CurriculumService loads the curriculum from the external backend, builds
// the lookup graph, and keeps the last good graph in memory. The raw payload
// is additionally cached in Redis so restarts survive a backend outage.
type CurriculumService struct {
	fetcher CourseFetcher
	cache   *CacheService
	cfg     config.CurriculumConfig
	logger  *zap.Logger

	mu    sync.RWMutex
	graph *grading.Graph
}

// NewCurriculumService constructs the service. No fetch happens until
// Refresh or Graph is called.
func NewCurriculumService(fetcher CourseFetcher, cache *CacheService, cfg config.CurriculumConfig, logger *zap.Logger) *CurriculumService {
	return &CurriculumService{fetcher: fetcher, cache: cache, cfg: cfg, logger: logger}
}

// Graph returns the loaded curriculum graph, fetching on first use. A stale
// in-memory graph is preferred over failing when the backend is down.
func (s *CurriculumService) Graph(ctx context.Context) (*grading.Graph, error) {
	s.mu.RLock()
	graph := s.graph
	s.mu.RUnlock()
	if graph != nil {
		return graph, nil
	}
	return s.Refresh(ctx)
}

// Refresh re-fetches the curriculum and rebuilds the graph. On backend
// failure it falls back to the cached payload, then to the previous graph.
func (s *CurriculumService) Refresh(ctx context.Context) (*grading.Graph, error) {
	payload, err := s.fetcher.FetchCourses(ctx)
	if err != nil {
		s.logger.Warn("curriculum fetch failed, trying cache", zap.Error(err))

		var cached []dto.CoursePayload
		if hit, cacheErr := s.cache.Get(ctx, curriculumCacheKey, &cached); cacheErr == nil && hit {
			payload = cached
		} else {
			s.mu.RLock()
			previous := s.graph
			s.mu.RUnlock()
			if previous != nil {
				return previous, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
		}
	} else {
		if cacheErr := s.cache.Set(ctx, curriculumCacheKey, payload, s.cfg.CacheTTL); cacheErr != nil {
			s.logger.Warn("curriculum cache write failed", zap.Error(cacheErr))
		}
	}

	graph := grading.BuildGraph(payload, s.logger)

	s.mu.Lock()
	s.graph = graph
	s.mu.Unlock()

	s.logger.Info("curriculum graph loaded",
		zap.Int("courses", len(graph.Courses)),
		zap.Int("cpl", len(graph.CPL)),
		zap.Int("cpmk", len(graph.CPMK)),
		zap.Int("sub_cpmk", len(graph.SubCPMK)))

	return graph, nil
}

// Courses lists all loaded courses sorted by code.
func (s *CurriculumService) Courses(ctx context.Context) ([]grading.Course, error) {
	graph, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return graph.CourseList(), nil
}

// Course returns one course by code.
func (s *CurriculumService) Course(ctx context.Context, code string) (*grading.Course, error) {
	graph, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	course, ok := graph.Courses[code]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

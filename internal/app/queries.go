package app

import (
	"context"
	"encoding/json"
	"time"

	"obras_portal/internal/domain"
)

type QueryService struct {
	repo     domain.ProjectRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ProjectRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	if ok, _ := s.cache.Get(ctx, keyProjects, &out); ok {
		return out, nil
	}

	ps, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	// copy slice to avoid aliasing the repo's backing array
	out = append([]domain.Project(nil), ps...)

	// optional size guard
	if b, _ := json.Marshal(out); len(b) < 4_000_000 {
		_ = s.cache.Set(ctx, keyProjects, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func (s *QueryService) GetProject(ctx context.Context, id string) (domain.Project, error) {
	key := keyProjectPrefix + id
	var p domain.Project
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"obras_portal/internal/adapters/observability"
	"obras_portal/internal/domain"
)

const (
	keyProjects      = "projects:all"
	keyProjectPrefix = "project:"
)

type SyncOptions struct {
	Force  bool // append a cache-busting token to the primary URLs
	DryRun bool // assemble only, do not store
}

type IngestionService struct {
	mu    sync.Mutex // one sync at a time
	pipe  *Pipeline
	repo  domain.ProjectRepository
	cache domain.Cache
}

func NewIngestionService(p *Pipeline, r domain.ProjectRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{pipe: p, repo: r, cache: cache}
}

// Sync runs the pipeline and replaces the stored snapshot with its result.
// A failed run leaves the previous snapshot untouched.
func (s *IngestionService) Sync(ctx context.Context, opts SyncOptions) (domain.SyncRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := domain.SyncRun{ID: uuid.NewString(), StartedAt: time.Now().UTC()}

	var cb int64
	if opts.Force {
		cb = run.StartedAt.UnixMilli()
	}

	ps, err := s.pipe.Run(ctx, cb)
	if err != nil {
		s.finish(ctx, &run, "failed", err)
		return run, err
	}
	run.Projects, run.Months, run.Photos = countAll(ps)

	if opts.DryRun {
		s.finish(ctx, &run, "dry-run", nil)
		return run, nil
	}

	// ids of the previous snapshot, so removed projects drop out of the cache too
	var prev []domain.Project
	if s.cache != nil {
		var lerr error
		if prev, lerr = s.repo.ListProjects(ctx); lerr != nil {
			log.Warn().Err(lerr).Str("run", run.ID).Msg("list previous snapshot failed, removed projects stay cached until their TTL")
		}
	}

	if err := s.repo.ReplaceProjects(ctx, run.ID, ps); err != nil {
		err = fmt.Errorf("replace projects for run %s: %w", run.ID, err)
		s.finish(ctx, &run, "failed", err)
		return run, err
	}

	if s.cache != nil {
		s.invalidate(ctx, prev)
		s.invalidate(ctx, ps)
	}

	s.finish(ctx, &run, "ok", nil)
	return run, nil
}

func (s *IngestionService) finish(ctx context.Context, run *domain.SyncRun, status string, err error) {
	d := time.Since(run.StartedAt)
	run.Status = status
	run.Duration = d.Round(time.Millisecond).String()
	if err != nil {
		run.Error = err.Error()
	}
	observability.ObserveSync(status, d)

	if status != "dry-run" && s.repo != nil {
		if lerr := s.repo.LogRun(ctx, *run); lerr != nil {
			log.Warn().Err(lerr).Str("run", run.ID).Msg("record sync run failed")
		}
	}

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Str("run", run.ID).
		Str("status", status).
		Int("projects", run.Projects).
		Int("months", run.Months).
		Int("photos", run.Photos).
		Dur("duration", d).
		Msg("sync finished")
}

func (s *IngestionService) invalidate(ctx context.Context, ps []domain.Project) {
	_ = s.cache.Del(ctx, keyProjects)
	for _, p := range ps {
		_ = s.cache.Del(ctx, keyProjectPrefix+p.ID)
	}
}

func countAll(ps []domain.Project) (projects, months, photos int) {
	for _, p := range ps {
		months += len(p.Meses)
		for _, m := range p.Meses {
			photos += len(m.Fotos)
		}
	}
	return len(ps), months, photos
}

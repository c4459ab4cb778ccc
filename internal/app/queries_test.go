package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"obras_portal/internal/app"
	"obras_portal/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu       sync.Mutex
	projects []domain.Project
	runs     []domain.SyncRun
	lastRun  string
	lists    int
	gets     int
	failPut  error
	failList error
}

func (f *fakeRepo) ReplaceProjects(ctx context.Context, runID string, ps []domain.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut != nil {
		return f.failPut
	}
	f.projects = append([]domain.Project(nil), ps...)
	f.lastRun = runID
	return nil
}

func (f *fakeRepo) LogRun(ctx context.Context, run domain.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRepo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.failList != nil {
		return nil, f.failList
	}
	return append([]domain.Project(nil), f.projects...), nil
}

func (f *fakeRepo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	for _, p := range f.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Project{}, domain.ErrNotFound
}

// fakeCache stores JSON like the redis adapter does.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

func sampleProject(id string) domain.Project {
	return domain.Project{
		ID: id, Titulo: "Plaza " + id, MontoAsignado: 1000,
		Meses: []domain.MonthEntry{{
			Mes: "2025-07", Avance: 55,
			Eventos: []domain.EventEntry{},
			Fotos:   []domain.Photo{{Src: "https://x.cl/a.jpg"}},
		}},
	}
}

// ---- tests ----

func TestGetProject_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{projects: []domain.Project{sampleProject("p1")}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	p, err := q.GetProject(context.Background(), "p1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p.ID != "p1" || len(p.Meses) != 1 || p.Meses[0].Avance != 55 {
		t.Fatalf("unexpected project: %+v", p)
	}
	if _, ok := cache.store["project:p1"]; !ok {
		t.Fatalf("expected project to be cached")
	}

	// Hit (repo not consulted again)
	p2, err := q.GetProject(context.Background(), "p1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p2.Titulo != p.Titulo || repo.gets != 1 {
		t.Fatalf("expected cache hit, repo gets=%d", repo.gets)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	q := app.NewQueryService(&fakeRepo{}, &fakeCache{}, time.Minute)
	if _, err := q.GetProject(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListProjects_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{projects: []domain.Project{sampleProject("a"), sampleProject("b")}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, time.Minute)

	for i := 0; i < 2; i++ {
		ps, err := q.ListProjects(context.Background())
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		if len(ps) != 2 || ps[0].ID != "a" || ps[1].ID != "b" {
			t.Fatalf("unexpected list: %+v", ps)
		}
	}
	if repo.lists != 1 {
		t.Fatalf("expected one repo call, got %d", repo.lists)
	}
	if _, ok := cache.store["projects:all"]; !ok {
		t.Fatalf("expected list to be cached")
	}
}

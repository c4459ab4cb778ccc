package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "obras_portal/internal/adapters/redis"
	"obras_portal/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var miss domain.Project
	if ok, err := c.Get(ctx, "project:p1", &miss); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	in := domain.Project{ID: "p1", Titulo: "Plaza", MontoAsignado: 1200, Meses: []domain.MonthEntry{{Mes: "2025-07", Avance: 55}}}
	if err := c.Set(ctx, "project:p1", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("obras:project:p1") {
		t.Fatalf("expected prefixed key in redis, have %v", mr.Keys())
	}

	var out domain.Project
	ok, err := c.Get(ctx, "project:p1", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.Titulo != "Plaza" || len(out.Meses) != 1 || out.Meses[0].Avance != 55 {
		t.Fatalf("unexpected cached project: %+v", out)
	}

	if err := c.Del(ctx, "project:p1"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := c.Get(ctx, "project:p1", &out); ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestCache_TTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "projects:all", []domain.Project{{ID: "p1"}}, 10); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(11 * time.Second)

	var out []domain.Project
	if ok, _ := c.Get(ctx, "projects:all", &out); ok {
		t.Fatalf("expected entry to expire")
	}
}

//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"obras_portal/internal/domain"
	mysqlrepo "obras_portal/internal/storage/mysql"
)

// ---------- small helpers ----------

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=obras",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/obras?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// ---------- the test ----------

func TestRepo_MySQL_ReplaceAndQuery(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	first := []domain.Project{
		{ID: "p2", Titulo: "Sede vecinal", Meses: []domain.MonthEntry{}},
		{ID: "p1", Titulo: "Plaza", MontoAsignado: 1234567.89, Meses: []domain.MonthEntry{{
			Mes: "2025-07", Avance: 55,
			Eventos: []domain.EventEntry{{Fecha: "2025-07-03", Texto: "Inicio de obras"}},
			Fotos:   []domain.Photo{{Src: "https://drive.google.com/uc?export=view&id=ABC123", Alt: "Vista"}},
		}}},
	}
	if err := repo.ReplaceProjects(ctx, "run-1", first); err != nil {
		t.Fatalf("ReplaceProjects: %v", err)
	}

	got, err := repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p2" || got[1].ID != "p1" {
		t.Fatalf("expected sheet order p2,p1, got %+v", got)
	}

	p1, err := repo.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p1.MontoAsignado != 1234567.89 || len(p1.Meses) != 1 || len(p1.Meses[0].Fotos) != 1 {
		t.Fatalf("unexpected project: %+v", p1)
	}

	// second snapshot drops p2
	if err := repo.ReplaceProjects(ctx, "run-2", first[1:]); err != nil {
		t.Fatalf("ReplaceProjects #2: %v", err)
	}
	if _, err := repo.GetProject(ctx, "p2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for removed project, got %v", err)
	}

	run := domain.SyncRun{ID: "run-2", StartedAt: time.Now().UTC(), Duration: "12ms", Projects: 1, Months: 1, Photos: 1, Status: "ok"}
	if err := repo.LogRun(ctx, run); err != nil {
		t.Fatalf("LogRun: %v", err)
	}
}

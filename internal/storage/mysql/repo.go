package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"obras_portal/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ReplaceProjects stores ps as the current snapshot in one transaction:
// every project is upserted stamped with runID, then rows from earlier runs
// are removed.
func (r *Repo) ReplaceProjects(ctx context.Context, runID string, ps []domain.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertProjectSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range ps {
		meses, err := json.Marshal(p.Meses)
		if err != nil {
			return fmt.Errorf("encode months of %s: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID,
			p.Slug,
			p.Titulo,
			p.Categoria,
			p.Fuente,
			p.Estado,
			p.MontoAsignado,
			p.Beneficiarios,
			p.Lat,
			p.Lng,
			p.Inicio,
			p.FinEstimada,
			p.Proveedor,
			p.Observaciones,
			string(meses),
			i,
			runID,
		); err != nil {
			return fmt.Errorf("upsert project %s: %w", p.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, deleteStaleSQL, runID); err != nil {
		return fmt.Errorf("delete stale projects: %w", err)
	}
	return tx.Commit()
}

func (r *Repo) LogRun(ctx context.Context, run domain.SyncRun) error {
	_, err := r.db.ExecContext(ctx, insertRunSQL,
		run.ID, run.StartedAt, run.Duration, run.Projects, run.Months, run.Photos, run.Status, run.Error)
	return err
}

func (r *Repo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, listProjectsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, getProjectSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, domain.ErrNotFound
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (domain.Project, error) {
	var p domain.Project
	var meses []byte
	if err := s.Scan(
		&p.ID,
		&p.Slug,
		&p.Titulo,
		&p.Categoria,
		&p.Fuente,
		&p.Estado,
		&p.MontoAsignado,
		&p.Beneficiarios,
		&p.Lat, &p.Lng,
		&p.Inicio,
		&p.FinEstimada,
		&p.Proveedor,
		&p.Observaciones,
		&meses,
	); err != nil {
		return domain.Project{}, err
	}
	if err := json.Unmarshal(meses, &p.Meses); err != nil {
		return domain.Project{}, fmt.Errorf("decode months of %s: %w", p.ID, err)
	}
	if p.Meses == nil {
		p.Meses = []domain.MonthEntry{}
	}
	return p, nil
}

package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"obras_portal/internal/domain"
)

// Pipeline loads the three tables and assembles projects. It keeps no state
// between runs.
type Pipeline struct {
	loader domain.TableLoader
	src    domain.Sources
}

func NewPipeline(l domain.TableLoader, src domain.Sources) (*Pipeline, error) {
	if missing := src.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingSource, strings.Join(missing, ", "))
	}
	return &Pipeline{loader: l, src: src}, nil
}

// Run fetches the three tables concurrently and joins them. Either all three
// load (primary or fallback) or the run fails and nothing is returned.
// A non-zero cacheBust is appended to every primary URL as cb=<token>.
func (p *Pipeline) Run(ctx context.Context, cacheBust int64) ([]domain.Project, error) {
	var proys, meses, fotos []domain.Row

	g, gctx := errgroup.WithContext(ctx)
	load := func(table string, s domain.Source, dst *[]domain.Row) {
		g.Go(func() error {
			rows, err := p.loader.Load(gctx, table, WithCacheBust(s.URL, cacheBust), s.Fallback)
			if err != nil {
				return fmt.Errorf("load %s: %w", table, err)
			}
			log.Debug().Str("table", table).Int("rows", len(rows)).Msg("table loaded")
			*dst = rows
			return nil
		})
	}
	load("proyectos", p.src.Projects, &proys)
	load("meses", p.src.Months, &meses)
	load("fotos", p.src.Photos, &fotos)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Assemble(proys, meses, fotos), nil
}

// WithCacheBust appends cb=<token> to u. A zero token leaves u untouched.
func WithCacheBust(u string, token int64) string {
	if token == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "cb=" + strconv.FormatInt(token, 10)
}

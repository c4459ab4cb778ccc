// Package sheets loads published spreadsheet tables (CSV exports) with a
// fallback to a bundled copy.
package sheets

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"obras_portal/internal/adapters/observability"
	"obras_portal/internal/domain"
)

type Loader struct {
	hc *resty.Client
	rl *rate.Limiter
}

// New returns a Loader allowing rps outbound requests per second. timeout
// bounds each request; there are no retries beyond the fallback.
func New(rps int, timeout time.Duration) *Loader {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	hc := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "obras-portal/1.0").
		SetHeader("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
	return &Loader{hc: hc, rl: rate.NewLimiter(rate.Limit(rps), rps)}
}

// SourceError is returned when both the primary and the fallback location of
// a table failed. Err is the fallback's failure.
type SourceError struct {
	Table      string
	Primary    string
	Fallback   string
	PrimaryErr error
	Err        error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("could not load %s csv (url: %s, fallback: %s): %v", e.Table, e.Primary, e.Fallback, e.Err)
}

func (e *SourceError) Unwrap() []error { return []error{e.Err, domain.ErrSourceUnavailable} }

// Load fetches primary without caching and parses it. On a network error,
// a non-2xx status or an unparsable body it loads fallback instead, which is
// either an http(s) URL or a local file path.
func (l *Loader) Load(ctx context.Context, table, primary, fallback string) ([]domain.Row, error) {
	rows, perr := l.loadOne(ctx, table, primary)
	if perr == nil {
		return rows, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	log.Warn().
		Str("table", table).
		Str("url", primary).
		Str("kind", observability.LabelErr(perr)).
		Err(perr).
		Msg("primary source failed, using fallback")
	observability.ObserveFallback(table)

	rows, ferr := l.loadOne(ctx, table, fallback)
	if ferr != nil {
		return nil, &SourceError{Table: table, Primary: primary, Fallback: fallback, PrimaryErr: perr, Err: ferr}
	}
	return rows, nil
}

func (l *Loader) loadOne(ctx context.Context, table, loc string) ([]domain.Row, error) {
	if strings.TrimSpace(loc) == "" {
		return nil, errors.New("empty location")
	}
	var (
		body []byte
		err  error
	)
	if isRemote(loc) {
		body, err = l.fetch(ctx, table, loc)
	} else {
		body, err = os.ReadFile(strings.TrimPrefix(loc, "file://"))
	}
	if err != nil {
		return nil, err
	}
	rows, err := ParseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", loc, err)
	}
	return rows, nil
}

func (l *Loader) fetch(ctx context.Context, table, url string) ([]byte, error) {
	// client-side rate limiting
	if err := l.rl.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := l.hc.R().
		SetContext(ctx).
		SetHeader("Cache-Control", "no-cache").
		SetHeader("Pragma", "no-cache").
		Get(url)
	if err != nil {
		observability.ObserveExternal("sheets", table, 0, time.Since(start))
		return nil, err
	}
	observability.ObserveExternal("sheets", table, resp.StatusCode(), time.Since(start))
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode(), url)
	}
	return resp.Body(), nil
}

func isRemote(loc string) bool {
	l := strings.ToLower(loc)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// ParseCSV reads a header-first CSV table. Header names lose a leading byte
// order mark and surrounding whitespace; short records are padded with "".
func ParseCSV(r io.Reader) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []domain.Row
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record %d: %w", n, err)
		}
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		row := make(domain.Row, len(header))
		for i, h := range header {
			row[i] = domain.Cell{Name: h}
			if i < len(rec) {
				row[i].Value = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

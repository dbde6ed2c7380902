// Package loader runs the two-pass bulk load.
//
// Pass 1 opens the source, resolves column names and samples up to
// SampleLimit rows to infer one SemanticType per column. The schema is then
// dropped and recreated outside any transaction. Pass 2 reopens the source
// and inserts every row, one statement at a time, inside a single
// transaction: either all rows are committed or none are.
package loader

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"csvload/internal/metrics"
	"csvload/internal/parser/csv"
	"csvload/internal/probe"
	"csvload/internal/sqlgen"
	"csvload/internal/storage"
)

// DefaultTable is used when Loader.Table is empty.
const DefaultTable = "csv_data"

// progressEvery controls how often row insertion logs progress.
const progressEvery = 10000

var (
	errEmptyInput = errors.New("input has no header and no rows")
	errNoColumns  = errors.New("input has no columns")
)

// Source is a restartable row source. *csv.Source implements it.
type Source interface {
	Name() string
	Open(ctx context.Context) (csv.Rows, error)
}

// Loader holds the settings of a load. The zero value is usable.
type Loader struct {
	// Table is the destination table, optionally schema-qualified
	// ("staging.people"). Empty selects DefaultTable.
	Table string

	// SampleLimit caps the number of rows read by the sampling pass.
	// Non-positive selects probe.DefaultSampleLimit.
	SampleLimit int

	// Logger receives run events; nil discards them. Every record carries
	// run_id and table.
	Logger *slog.Logger

	// NewRunID overrides run id generation (tests). Nil uses random UUIDs.
	NewRunID func() string
}

// Plan is the outcome of a dry run: what Load would create, without touching
// a database.
type Plan struct {
	RunID    string
	Table    string
	Columns  []probe.Column
	Profiles []probe.ColumnProfile
	DDL      sqlgen.DDL
	Sampled  int
}

// Result describes a finished load. It is returned for aborted runs too, with
// State set to Aborted and Rows zero.
type Result struct {
	RunID   string
	Table   string
	Columns []probe.Column
	DDL     sqlgen.DDL
	Sampled int
	Rows    int64
	State   State
	Elapsed time.Duration
}

// Load runs the full state machine against sess. sess must not be used by
// anyone else until Load returns.
//
// Errors are *LoadError values; match them with errors.Is against ErrInput,
// ErrSchemaExecution, ErrRowExecution or ErrTransaction.
func (l *Loader) Load(ctx context.Context, sess storage.Session, src Source) (*Result, error) {
	r := l.newRun()
	res := &Result{RunID: r.id, Table: l.table(), State: HeaderResolution}

	r.log.Info("load started", "source", src.Name(), "dialect", sess.Dialect().Name())
	err := l.load(ctx, r, sess, src, res)
	res.Elapsed = time.Since(r.started)

	if err != nil {
		res.State = Aborted
		res.Rows = 0
		r.log.Error("load aborted", "state", r.state.String(), "err", err)
		return res, err
	}
	res.State = Committed
	r.log.Info("load committed",
		"rows", res.Rows,
		"columns", len(res.Columns),
		"elapsed", res.Elapsed.Truncate(time.Millisecond),
	)
	return res, nil
}

func (l *Loader) load(ctx context.Context, r *run, sess storage.Session, src Source, res *Result) error {
	s, names, err := l.sample(ctx, r, src)
	if err != nil {
		return err
	}

	r.enter(SchemaEmission)
	cols := s.Classify(names)
	ddl := sqlgen.BuildSchema(sess.Dialect(), res.Table, cols)
	res.Columns, res.DDL, res.Sampled = cols, ddl, s.Rows()
	r.log.Info("schema inferred", "columns", describeColumns(cols), "sampled", s.Rows())
	r.log.Debug("schema statements", "ddl", ddl.String())

	for _, stmt := range ddl.Statements {
		if _, err := sess.Exec(ctx, stmt); err != nil {
			metrics.RecordStatement("ddl", "error")
			return r.fail(ErrSchemaExecution, 0, stmt, err)
		}
		metrics.RecordStatement("ddl", "ok")
	}
	r.done()

	r.enter(TransactionOpen)
	tx, err := sess.Begin(ctx)
	if err != nil {
		return r.fail(ErrTransaction, 0, "", err)
	}
	r.done()

	n, err := l.insertRows(ctx, r, tx, src, ddl.Table, sess.Dialect(), cols)
	if err != nil {
		r.rollback(ctx, tx)
		return err
	}

	r.enter(TransactionCommit)
	if err := tx.Commit(ctx); err != nil {
		r.rollback(ctx, tx)
		return r.fail(ErrTransaction, 0, "", err)
	}
	r.done()

	res.Rows = n
	metrics.RecordRows("inserted", n)
	return nil
}

// Plan samples src and returns the columns, profiles and DDL that Load would
// produce with dialect d. Nothing is executed.
func (l *Loader) Plan(ctx context.Context, src Source, d sqlgen.Dialect) (*Plan, error) {
	r := l.newRun()

	s, names, err := l.sample(ctx, r, src)
	if err != nil {
		r.log.Error("plan failed", "state", r.state.String(), "err", err)
		return nil, err
	}

	r.enter(SchemaEmission)
	cols := s.Classify(names)
	p := &Plan{
		RunID:    r.id,
		Table:    l.table(),
		Columns:  cols,
		Profiles: probe.Profile(s, cols),
		DDL:      sqlgen.BuildSchema(d, l.table(), cols),
		Sampled:  s.Rows(),
	}
	r.log.Info("schema inferred", "columns", describeColumns(cols), "sampled", s.Rows())
	r.done()
	return p, nil
}

// sample runs HeaderResolution and Sampling over one pass of src.
func (l *Loader) sample(ctx context.Context, r *run, src Source) (*probe.Sampler, []string, error) {
	r.enter(HeaderResolution)
	rows, err := src.Open(ctx)
	if err != nil {
		return nil, nil, r.fail(ErrInput, recordLine(err), "", err)
	}
	defer rows.Close()

	header := rows.Header()
	width := len(header)

	// Without a header the first record fixes the column count. It is also
	// the first sample; pass 2 reopens the source and inserts it.
	var first []string
	if header == nil {
		rec, err := rows.Next()
		if err == io.EOF {
			return nil, nil, r.fail(ErrInput, 0, "", errEmptyInput)
		}
		if err != nil {
			return nil, nil, r.fail(ErrInput, recordLine(err), "", err)
		}
		first = append([]string(nil), rec...)
		width = len(first)
	}
	if width == 0 {
		return nil, nil, r.fail(ErrInput, 0, "", errNoColumns)
	}

	names := probe.ResolveNames(header, width)
	r.log.Info("columns resolved",
		"source", src.Name(),
		"columns", width,
		"header", header != nil,
	)
	r.done()

	r.enter(Sampling)
	s := probe.NewSampler(width, l.SampleLimit)
	if first != nil {
		s.Add(first)
	}
	for !s.Full() {
		rec, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, r.fail(ErrInput, recordLine(err), "", err)
		}
		s.Add(rec)
	}
	metrics.RecordRows("sampled", int64(s.Rows()))
	r.done()

	return s, names, nil
}

func (l *Loader) insertRows(
	ctx context.Context,
	r *run,
	tx storage.Tx,
	src Source,
	table string,
	d sqlgen.Dialect,
	cols []probe.Column,
) (int64, error) {
	r.enter(RowInsertion)
	rows, err := src.Open(ctx)
	if err != nil {
		return 0, r.fail(ErrInput, recordLine(err), "", err)
	}
	defer rows.Close()

	ib := sqlgen.NewInsertBuilder(d, table, cols)
	var n int64
	for {
		rec, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, r.fail(ErrInput, recordLine(err), "", err)
		}

		stmt := ib.Build(rec)
		if _, err := tx.Exec(ctx, stmt); err != nil {
			metrics.RecordStatement("insert", "error")
			return n, r.fail(ErrRowExecution, rows.Line(), stmt, err)
		}
		n++
		if n%progressEvery == 0 {
			r.log.Info("rows inserted", "rows", n)
		}
	}
	metrics.IncCounter(metrics.StatementsTotal, float64(n), metrics.Labels{"kind": "insert", "status": "ok"})
	r.done()
	return n, nil
}

func (l *Loader) table() string {
	if t := strings.TrimSpace(l.Table); t != "" {
		return t
	}
	return DefaultTable
}

func (l *Loader) newRun() *run {
	id := ""
	if l.NewRunID != nil {
		id = l.NewRunID()
	} else {
		id = uuid.NewString()
	}
	log := l.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := time.Now()
	return &run{
		id:      id,
		log:     log.With("run_id", id, "table", l.table()),
		started: now,
		entered: now,
	}
}

// run tracks the current state of one Load or Plan call and times each
// state for logs and metrics.
type run struct {
	id      string
	log     *slog.Logger
	state   State
	started time.Time
	entered time.Time
}

func (r *run) enter(s State) {
	r.state = s
	r.entered = time.Now()
	r.log.Debug("state entered", "state", s.String())
}

func (r *run) done() {
	d := time.Since(r.entered)
	metrics.RecordStep(r.state.String(), "ok", d)
	r.log.Debug("state done", "state", r.state.String(), "duration", d.Truncate(time.Microsecond))
}

// fail records the current state as failed and returns the LoadError for it.
func (r *run) fail(kind error, line int, stmt string, err error) error {
	metrics.RecordStep(r.state.String(), "error", time.Since(r.entered))
	return &LoadError{State: r.state, Kind: kind, Line: line, Statement: stmt, Err: err}
}

// rollback ends tx after a failure. It runs even when ctx is cancelled; a
// rollback error is logged and does not replace the original failure.
func (r *run) rollback(ctx context.Context, tx storage.Tx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		r.log.Warn("rollback failed", "err", err)
		return
	}
	r.log.Info("transaction rolled back")
}

// recordLine returns the starting line of a malformed record, or 0 when err
// is not a parse error.
func recordLine(err error) int {
	var pe *stdcsv.ParseError
	if errors.As(err, &pe) {
		return pe.StartLine
	}
	return 0
}

func describeColumns(cols []probe.Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c.Name + ":" + c.Type.String()
	}
	return strings.Join(parts, ",")
}

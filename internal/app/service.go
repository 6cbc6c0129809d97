package app

import (
	"context"
	"errors"
	"io"

	"github.com/joacominatel/dbd/internal/bind"
	"github.com/joacominatel/dbd/internal/database"
	"github.com/joacominatel/dbd/internal/format"
	"github.com/joacominatel/dbd/internal/logger"
)

// Mode selects what a run does with its targets.
type Mode int

const (
	ModeNone Mode = iota
	ModeEscape
	ModeTable
	ModeSelect
	ModeQuery
)

func (m Mode) String() string {
	switch m {
	case ModeEscape:
		return "escape"
	case ModeTable:
		return "table"
	case ModeSelect:
		return "select"
	case ModeQuery:
		return "query"
	default:
		return "none"
	}
}

// Request describes one run.
type Request struct {
	Mode    Mode
	Driver  string
	Params  string
	Targets []string // strings to escape, table names or statements
}

// Service runs requests against a database, binding the shared argument
// list to each statement and rendering the results.
type Service struct {
	gateway database.Gateway
	args    *bind.Arguments
	opts    format.Options
	out     io.Writer
	log     logger.Logger
}

// NewService creates a new application service.
func NewService(gateway database.Gateway, args *bind.Arguments, opts format.Options, out io.Writer, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		gateway: gateway,
		args:    args,
		opts:    opts,
		out:     out,
		log:     log,
	}
}

// Run validates the request, connects and executes every target in order,
// stopping at the first failure. It returns ErrNoData when the run
// succeeded without producing any rows.
func (s *Service) Run(ctx context.Context, req Request) error {
	if err := s.validate(req); err != nil {
		return err
	}

	w, err := format.NewWriter(s.out, s.opts)
	if err != nil {
		return &ErrValidation{Cause: err}
	}

	conn, err := s.gateway.Open(ctx, req.Driver, req.Params)
	if err != nil {
		return &ErrConnection{Driver: req.Driver, Cause: err}
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.log.Warnw("close connection", "driver", req.Driver, "error", err)
		}
	}()
	s.log.Debugw("connected", "driver", req.Driver, "mode", req.Mode.String())

	switch req.Mode {
	case ModeEscape:
		err = s.escape(conn, w, req)
	case ModeQuery:
		err = s.modify(ctx, conn, w, req)
	default:
		err = s.tabular(ctx, conn, w, req)
	}
	if err != nil && !errors.Is(err, ErrNoData) {
		return err
	}

	if cerr := w.Close(); cerr != nil {
		return &ErrIO{Op: "write output", Cause: cerr}
	}
	return err
}

// validate rejects everything that can be rejected without touching the
// database.
func (s *Service) validate(req Request) error {
	if req.Driver == "" {
		return &ErrValidation{Reason: "no database driver specified"}
	}
	if req.Params == "" {
		return &ErrValidation{Reason: "no database parameters specified"}
	}
	if err := s.opts.Validate(); err != nil {
		return &ErrValidation{Cause: err}
	}

	switch req.Mode {
	case ModeEscape:
		return nil
	case ModeTable, ModeSelect:
		if len(req.Targets) == 0 {
			return &ErrValidation{Reason: "no " + req.Mode.String() + " targets specified"}
		}
	case ModeQuery:
		if len(req.Targets) != 1 {
			return &ErrValidation{Reason: "query must be specified exactly once"}
		}
	default:
		return &ErrValidation{Reason: "no mode specified"}
	}

	for _, target := range req.Targets {
		stmt := s.statement(req.Mode, target)
		if len(stmt.Params) != s.args.Len() {
			return &ErrValidation{Cause: &bind.CountError{
				Statement: stmt.Text,
				Expected:  len(stmt.Params),
				Actual:    s.args.Len(),
			}}
		}
	}
	return nil
}

func (s *Service) statement(mode Mode, target string) *bind.Statement {
	if mode == ModeTable {
		return bind.Scan("select * from " + target)
	}
	return bind.Scan(target)
}

// escape writes the escaped targets as one line. With no targets the line
// is empty.
func (s *Service) escape(conn database.Conn, w *format.Writer, req Request) error {
	escaped := make([]string, 0, len(req.Targets))
	for _, target := range req.Targets {
		v, err := conn.Escape(target)
		if err != nil {
			return &ErrQuery{Query: target, Driver: req.Driver, Cause: err}
		}
		escaped = append(escaped, v)
	}
	return s.writeErr("", w.WriteFields(escaped))
}

func (s *Service) modify(ctx context.Context, conn database.Conn, w *format.Writer, req Request) error {
	stmt := bind.Scan(req.Targets[0])

	vals, err := s.resolve(stmt)
	if err != nil {
		return err
	}

	ps, err := conn.Prepare(ctx, stmt)
	if err != nil {
		return &ErrQuery{Query: stmt.Text, Driver: req.Driver, Cause: err}
	}
	defer s.closeStmt(ps, stmt)

	n, err := ps.Exec(ctx, vals)
	if err != nil {
		return &ErrQuery{Query: stmt.Text, Driver: req.Driver, Cause: err}
	}
	s.log.Debugw("statement executed", "statement", stmt.Text, "rows_affected", n)

	if err := s.writeErr(stmt.Text, w.WriteCount(n)); err != nil {
		return err
	}
	if n == 0 {
		return ErrNoData
	}
	return nil
}

func (s *Service) tabular(ctx context.Context, conn database.Conn, w *format.Writer, req Request) error {
	for _, target := range req.Targets {
		if req.Mode == ModeTable {
			name, err := conn.Escape(target)
			if err != nil {
				return &ErrQuery{Query: target, Driver: req.Driver, Cause: err}
			}
			target = name
		}

		if err := s.selectRows(ctx, conn, w, req.Driver, s.statement(req.Mode, target)); err != nil {
			return err
		}
	}

	if w.Rows() == 0 {
		return ErrNoData
	}
	return nil
}

func (s *Service) selectRows(ctx context.Context, conn database.Conn, w *format.Writer, driver string, stmt *bind.Statement) error {
	vals, err := s.resolve(stmt)
	if err != nil {
		return err
	}

	ps, err := conn.Prepare(ctx, stmt)
	if err != nil {
		return &ErrQuery{Query: stmt.Text, Driver: driver, Cause: err}
	}
	defer s.closeStmt(ps, stmt)

	rows, err := ps.Query(ctx, vals)
	if err != nil {
		return &ErrQuery{Query: stmt.Text, Driver: driver, Cause: err}
	}
	defer rows.Close()

	if err := s.writeErr(stmt.Text, w.WriteHeader(rows.Columns())); err != nil {
		return err
	}

	count := 0
	for rows.Next() {
		row, err := rows.Values()
		if err != nil {
			return &ErrQuery{Query: stmt.Text, Driver: driver, Cause: err}
		}
		if err := s.writeErr(stmt.Text, w.WriteRow(row)); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return &ErrQuery{Query: stmt.Text, Driver: driver, Cause: err}
	}

	s.log.Debugw("statement executed", "statement", stmt.Text, "rows", count)
	return nil
}

func (s *Service) resolve(stmt *bind.Statement) ([]bind.Value, error) {
	vals, err := bind.Resolve(s.args.Sources(), stmt)
	if err != nil {
		var count *bind.CountError
		if errors.As(err, &count) {
			return nil, &ErrValidation{Cause: err}
		}
		return nil, &ErrIO{Op: "read argument", Cause: err}
	}
	return vals, nil
}

func (s *Service) closeStmt(ps database.Stmt, stmt *bind.Statement) {
	if err := ps.Close(); err != nil {
		s.log.Warnw("close statement", "statement", stmt.Text, "error", err)
	}
}

// writeErr maps formatter failures onto the run's error types.
func (s *Service) writeErr(query string, err error) error {
	if err == nil {
		return nil
	}
	var encErr *format.EncodingError
	if errors.As(err, &encErr) {
		return &ErrEncoding{Query: query, Cause: err}
	}
	return &ErrIO{Op: "write output", Cause: err}
}

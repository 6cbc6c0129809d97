package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joacominatel/dbd/internal/app"
	"github.com/joacominatel/dbd/internal/bind"
	"github.com/joacominatel/dbd/internal/config"
	"github.com/joacominatel/dbd/internal/database"
	"github.com/joacominatel/dbd/internal/database/postgres"
	"github.com/joacominatel/dbd/internal/database/sqldb"
	"github.com/joacominatel/dbd/internal/format"
	"github.com/joacominatel/dbd/internal/logger"
	"github.com/joacominatel/dbd/internal/theme"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

var version = "dev"

// env is everything a run touches outside the process arguments.
type env struct {
	fs        afero.Fs
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	gateway   database.Gateway
	drivers   []string
	configDir string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	reg := newRegistry()
	e := env{
		fs:      afero.NewOsFs(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		gateway: reg,
		drivers: reg.Drivers(),
	}
	if dir, err := config.Dir(); err == nil {
		e.configDir = dir
	}

	code := run(ctx, os.Args[1:], e)
	stop()
	os.Exit(code)
}

func newRegistry() *database.Registry {
	reg := database.NewRegistry()
	reg.Register(postgres.New(), "pgsql", "postgres")
	reg.Register(sqldb.New(sqldb.SQLite), "sqlite3")
	reg.Register(sqldb.New(sqldb.Snowflake), "snowflake")
	return reg
}

type options struct {
	output     string
	connection string
	query      bool
	escape     bool
	selects    bool
	table      bool
	help       bool
	version    bool
	args       []argSpec
}

func newFlagSet(o *options) *pflag.FlagSet {
	flags := pflag.NewFlagSet("dbd", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.SortFlags = false
	flags.SetNormalizeFunc(normalizeFlag)

	flags.BoolVarP(&o.query, "query", "q", false, "run a statement that modifies data and print the number of rows affected")
	flags.BoolVarP(&o.selects, "select", "s", false, "run select statements and print the rows")
	flags.BoolVarP(&o.table, "table", "t", false, "print every row of the named tables")
	flags.BoolVarP(&o.escape, "escape", "e", false, "escape strings for use in a statement")

	flags.StringP("driver", "d", "", "database driver (env DBD_DRIVER)")
	flags.StringP("params", "p", "", "database connection parameters (env DBD_PARAMS)")
	flags.StringVar(&o.connection, "connection", "", "connection profile from the config file")

	flags.VarP(&argFlag{specs: &o.args, kind: bind.Literal}, "argument", "a", "bind a literal argument")
	flags.VarP(&argFlag{specs: &o.args, kind: bind.Stream}, "file-argument", "f", "bind the contents of a file, '-' for standard input")
	null := flags.VarPF(&argFlag{specs: &o.args, kind: bind.Null}, "null-argument", "z", "bind a NULL argument")
	null.NoOptDefVal = "true"

	flags.StringVarP(&o.output, "file-out", "o", "", "write results to a file instead of standard output")
	flags.StringP("end-of-column", "c", format.DefaultColumnSeparator, "column separator")
	flags.StringP("end-of-line", "l", format.DefaultLineSeparator, "line separator")
	flags.BoolP("no-end-of-line", "n", false, "do not write a separator after the last line")
	flags.Bool("header", false, "write the column names before the first row")
	flags.StringP("encoding", "x", format.DefaultEncoding, "value encoding")
	flags.String("log-level", logger.DefaultLevel, "log level written to standard error")

	flags.BoolVarP(&o.help, "help", "h", false, "show this help")
	flags.BoolVarP(&o.version, "version", "v", false, "print the version")

	return flags
}

// flagAliases are accepted spellings of the long option names.
var flagAliases = map[string]string{
	"file":   "file-argument",
	"null":   "null-argument",
	"output": "file-out",
}

func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if canonical, ok := flagAliases[name]; ok {
		name = canonical
	}
	return pflag.NormalizedName(name)
}

func (o *options) mode() app.Mode {
	switch {
	case o.escape:
		return app.ModeEscape
	case o.table:
		return app.ModeTable
	case o.selects:
		return app.ModeSelect
	case o.query:
		return app.ModeQuery
	default:
		return app.ModeNone
	}
}

func run(ctx context.Context, argv []string, e env) int {
	styles := theme.New(e.stderr)
	fail := func(err error) int {
		fmt.Fprintln(e.stderr, styles.Error.Render("DBD: "+err.Error()))
		return app.ExitCode(err)
	}

	var o options
	flags := newFlagSet(&o)
	if err := flags.Parse(argv); err != nil {
		fmt.Fprintln(e.stderr, styles.Error.Render("DBD: "+err.Error()))
		fmt.Fprintln(e.stderr, styles.Muted.Render("Try 'dbd --help' for more information."))
		return app.ExitInvalid
	}

	if o.help {
		usage(e.stdout, flags, e.drivers)
		return app.ExitOK
	}
	if o.version {
		fmt.Fprintf(e.stdout, "dbd %s\n", version)
		return app.ExitOK
	}

	cfg, err := config.LoadFrom(e.fs, e.configDir, flags)
	if err != nil {
		return fail(&app.ErrValidation{Reason: "config", Cause: err})
	}

	log, err := logger.New(cfg.LogLevel, e.stderr)
	if err != nil {
		return fail(&app.ErrValidation{Cause: err})
	}

	driver, params, err := cfg.Target(o.connection)
	if err != nil {
		return fail(&app.ErrValidation{Reason: "connection", Cause: err})
	}

	if driver == "" || params == "" {
		missing := "--driver"
		if driver != "" {
			missing = "--params"
		}
		fmt.Fprintln(e.stderr, styles.Error.Render("DBD: "+missing+" must be specified."))
		usage(e.stderr, flags, e.drivers)
		return app.ExitInvalid
	}

	req := app.Request{
		Mode:    o.mode(),
		Driver:  driver,
		Params:  params,
		Targets: flags.Args(),
	}
	if req.Mode == app.ModeNone {
		fmt.Fprintln(e.stderr, styles.Error.Render("DBD: one of -q, -s, -t or -e must be specified"))
		fmt.Fprintln(e.stderr, styles.Muted.Render("Try 'dbd --help' for more information."))
		return app.ExitInvalid
	}

	args := bind.NewArguments(e.fs, e.stdin)
	defer func() {
		if err := args.Close(); err != nil {
			log.Warnw("close arguments", "error", err)
		}
	}()
	if err := register(args, o.args); err != nil {
		return fail(&app.ErrIO{Op: "argument", Cause: err})
	}

	out := e.stdout
	if o.output != "" {
		f, err := e.fs.Create(o.output)
		if err != nil {
			return fail(&app.ErrIO{Op: "could not open output " + o.output, Cause: err})
		}
		defer f.Close()
		out = f
	}
	bw := bufio.NewWriter(out)

	log.Debugw("run", "mode", req.Mode.String(), "driver", req.Driver, "targets", len(req.Targets), "arguments", args.Len())

	svc := app.NewService(e.gateway, args, cfg.FormatOptions(), bw, log)
	err = svc.Run(ctx, req)
	if ferr := bw.Flush(); ferr != nil && err == nil {
		err = &app.ErrIO{Op: "write output", Cause: ferr}
	}

	switch {
	case err == nil:
		return app.ExitOK
	case errors.Is(err, app.ErrNoData):
		log.Debugw("no data", "mode", req.Mode.String())
		return app.ExitCode(err)
	default:
		log.Debugw("run failed", "error", err)
		return fail(err)
	}
}

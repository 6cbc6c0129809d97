package app_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joacominatel/dbd/internal/app"
	"github.com/joacominatel/dbd/internal/bind"
	"github.com/joacominatel/dbd/internal/database"
	"github.com/joacominatel/dbd/internal/database/mock"
	"github.com/joacominatel/dbd/internal/format"
	"github.com/joacominatel/dbd/internal/logger"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/spf13/afero"
	"go.uber.org/mock/gomock"
)

// statementText matches a *bind.Statement by its text.
type statementText string

func (m statementText) Matches(x any) bool {
	stmt, ok := x.(*bind.Statement)
	return ok && stmt.Text == string(m)
}

func (m statementText) String() string {
	return fmt.Sprintf("statement %q", string(m))
}

func literal(s string) bind.Value {
	return bind.Value{Data: []byte(s), Len: len(s)}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("device not ready")
}

var _ = ginkgo.Describe("Service", func() {
	var (
		ctrl    *gomock.Controller
		gateway *mock.MockGateway
		conn    *mock.MockConn
		fs      afero.Fs
		args    *bind.Arguments
		opts    format.Options
		out     *bytes.Buffer
		ctx     context.Context
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		gateway = mock.NewMockGateway(ctrl)
		conn = mock.NewMockConn(ctrl)
		fs = afero.NewMemMapFs()
		args = bind.NewArguments(fs, strings.NewReader(""))
		opts = format.DefaultOptions()
		out = &bytes.Buffer{}
		ctx = context.Background()
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	run := func(mode app.Mode, targets ...string) error {
		svc := app.NewService(gateway, args, opts, out, logger.NewNop())
		return svc.Run(ctx, app.Request{
			Mode:    mode,
			Driver:  "pgsql",
			Params:  "dbname=test",
			Targets: targets,
		})
	}

	expectConnect := func() {
		gateway.EXPECT().Open(gomock.Any(), "pgsql", "dbname=test").Return(conn, nil)
		conn.EXPECT().Close().Return(nil)
	}

	expectSelect := func(text string, vals []bind.Value, set *database.ResultSet) {
		stmt := mock.NewMockStmt(ctrl)
		conn.EXPECT().Prepare(gomock.Any(), statementText(text)).Return(stmt, nil)
		stmt.EXPECT().Query(gomock.Any(), vals).Return(set.Cursor(), nil)
		stmt.EXPECT().Close().Return(nil)
	}

	ginkgo.Context("select mode", func() {
		ginkgo.It("renders a header and the bound row", func() {
			args.AddLiteral("1")
			opts.ColumnSeparator = ","
			opts.Header = true
			opts.Encoding = format.EncodingNone

			expectConnect()
			expectSelect("select id, name from users where id = %d", []bind.Value{literal("1")}, &database.ResultSet{
				Columns: []string{"id", "name"},
				Rows:    [][]string{{"1", "Alice"}},
			})

			err := run(app.ModeSelect, "select id, name from users where id = %d")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(out.String()).To(gomega.Equal("id,name\n1,Alice\n"))
		})

		ginkgo.It("binds the same arguments to every statement", func() {
			args.AddLiteral("7")

			expectConnect()
			expectSelect("select a from t where id = %d", []bind.Value{literal("7")}, &database.ResultSet{
				Columns: []string{"a"}, Rows: [][]string{{"x"}},
			})
			expectSelect("select b from u where id = %d", []bind.Value{literal("7")}, &database.ResultSet{
				Columns: []string{"b"}, Rows: [][]string{{"y"}},
			})

			err := run(app.ModeSelect, "select a from t where id = %d", "select b from u where id = %d")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(out.String()).To(gomega.Equal("x\ny\n"))
		})

		ginkgo.It("does not replay a file argument", func() {
			gomega.Expect(afero.WriteFile(fs, "body.txt", []byte("abc"), 0o644)).To(gomega.Succeed())
			gomega.Expect(args.AddFile("body.txt")).To(gomega.Succeed())

			expectConnect()
			expectSelect("select %s", []bind.Value{literal("abc")}, &database.ResultSet{
				Columns: []string{"v"}, Rows: [][]string{{"abc"}},
			})
			expectSelect("select %s as again", []bind.Value{{Data: []byte{}, Len: 0}}, &database.ResultSet{
				Columns: []string{"v"}, Rows: [][]string{{""}},
			})

			err := run(app.ModeSelect, "select %s", "select %s as again")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(out.String()).To(gomega.Equal("abc\n\n"))
		})

		ginkgo.It("reports no data when nothing matched", func() {
			expectConnect()
			expectSelect("select * from empty", []bind.Value{}, &database.ResultSet{Columns: []string{"id"}})

			err := run(app.ModeSelect, "select * from empty")

			gomega.Expect(err).To(gomega.MatchError(app.ErrNoData))
			gomega.Expect(app.ExitCode(err)).To(gomega.Equal(app.ExitFailure))
			gomega.Expect(out.String()).To(gomega.Equal("\n"))
		})

		ginkgo.It("stops at the first failing statement", func() {
			expectConnect()
			expectSelect("select 1", []bind.Value{}, &database.ResultSet{Columns: []string{"n"}, Rows: [][]string{{"1"}}})
			conn.EXPECT().Prepare(gomock.Any(), statementText("select broken")).Return(nil, errors.New("syntax error"))

			err := run(app.ModeSelect, "select 1", "select broken", "select 3")

			var queryErr *app.ErrQuery
			gomega.Expect(errors.As(err, &queryErr)).To(gomega.BeTrue())
			gomega.Expect(queryErr.Query).To(gomega.Equal("select broken"))
			gomega.Expect(app.ExitCode(err)).To(gomega.Equal(app.ExitFailure))
			gomega.Expect(out.String()).To(gomega.Equal("1"))
		})

		ginkgo.It("fails when a value cannot be encoded", func() {
			opts.Encoding = format.EncodingShell

			expectConnect()
			expectSelect("select v from t", []bind.Value{}, &database.ResultSet{Columns: []string{"v"}, Rows: [][]string{{"a\x00b"}}})

			err := run(app.ModeSelect, "select v from t")

			var encErr *app.ErrEncoding
			gomega.Expect(errors.As(err, &encErr)).To(gomega.BeTrue())
			gomega.Expect(encErr.Query).To(gomega.Equal("select v from t"))
		})

		ginkgo.It("reports a broken argument stream", func() {
			args = bind.NewArguments(fs, brokenReader{})
			gomega.Expect(args.AddFile(bind.StdinName)).To(gomega.Succeed())

			expectConnect()

			err := run(app.ModeSelect, "select %s")

			var ioErr *app.ErrIO
			gomega.Expect(errors.As(err, &ioErr)).To(gomega.BeTrue())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("device not ready"))
		})
	})

	ginkgo.Context("table mode", func() {
		ginkgo.It("writes the header once across tables", func() {
			opts.Header = true

			expectConnect()
			conn.EXPECT().Escape("a").Return("a", nil)
			conn.EXPECT().Escape("b").Return("b", nil)
			expectSelect("select * from a", []bind.Value{}, &database.ResultSet{Columns: []string{"id"}, Rows: [][]string{{"1"}}})
			expectSelect("select * from b", []bind.Value{}, &database.ResultSet{Columns: []string{"id"}, Rows: [][]string{{"2"}}})

			err := run(app.ModeTable, "a", "b")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(out.String()).To(gomega.Equal("id\n1\n2\n"))
		})

		ginkgo.It("escapes the table name", func() {
			expectConnect()
			conn.EXPECT().Escape("o'brien").Return("o''brien", nil)
			expectSelect("select * from o''brien", []bind.Value{}, &database.ResultSet{Columns: []string{"id"}, Rows: [][]string{{"1"}}})

			gomega.Expect(run(app.ModeTable, "o'brien")).To(gomega.Succeed())
		})
	})

	ginkgo.Context("query mode", func() {
		expectExec := func(text string, vals []bind.Value, n int64) {
			stmt := mock.NewMockStmt(ctrl)
			conn.EXPECT().Prepare(gomock.Any(), statementText(text)).Return(stmt, nil)
			stmt.EXPECT().Exec(gomock.Any(), vals).Return(n, nil)
			stmt.EXPECT().Close().Return(nil)
		}

		ginkgo.It("prints the affected row count", func() {
			args.AddLiteral("x")
			opts.NoEndOfLine = true

			expectConnect()
			expectExec("delete from t where v = %s", []bind.Value{literal("x")}, 3)

			err := run(app.ModeQuery, "delete from t where v = %s")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(out.String()).To(gomega.Equal("3"))
		})

		ginkgo.It("reports no data when no row was affected", func() {
			expectConnect()
			expectExec("delete from t where 1=0", []bind.Value{}, 0)

			err := run(app.ModeQuery, "delete from t where 1=0")

			gomega.Expect(err).To(gomega.MatchError(app.ErrNoData))
			gomega.Expect(out.String()).To(gomega.Equal("0\n"))
		})

		ginkgo.It("binds a null argument", func() {
			args.AddNull()

			expectConnect()
			expectExec("update t set v = %s", []bind.Value{{Null: true}}, 1)

			gomega.Expect(run(app.ModeQuery, "update t set v = %s")).To(gomega.Succeed())
			gomega.Expect(out.String()).To(gomega.Equal("1\n"))
		})

		ginkgo.It("requires exactly one statement", func() {
			err := run(app.ModeQuery, "delete from a", "delete from b")

			gomega.Expect(app.ExitCode(err)).To(gomega.Equal(app.ExitInvalid))
		})

		ginkgo.It("wraps execution failures", func() {
			stmt := mock.NewMockStmt(ctrl)
			expectConnect()
			conn.EXPECT().Prepare(gomock.Any(), statementText("delete from t")).Return(stmt, nil)
			stmt.EXPECT().Exec(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("permission denied"))
			stmt.EXPECT().Close().Return(nil)

			err := run(app.ModeQuery, "delete from t")

			gomega.Expect(err).To(gomega.MatchError("database query 'delete from t' failed (pgsql): permission denied"))
			gomega.Expect(out.String()).To(gomega.BeEmpty())
		})
	})

	ginkgo.Context("escape mode", func() {
		ginkgo.It("escapes a single string", func() {
			expectConnect()
			conn.EXPECT().Escape("john';drop table users").Return("john'';drop table users", nil)

			err := run(app.ModeEscape, "john';drop table users")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(out.String()).To(gomega.Equal("john'';drop table users\n"))
		})

		ginkgo.It("joins several strings with the column separator and does not encode them", func() {
			expectConnect()
			conn.EXPECT().Escape("it's").Return("it''s", nil)
			conn.EXPECT().Escape(`a"b`).Return(`a"b`, nil)

			gomega.Expect(run(app.ModeEscape, "it's", `a"b`)).To(gomega.Succeed())
			gomega.Expect(out.String()).To(gomega.Equal("it''s\t" + `a"b` + "\n"))
		})

		ginkgo.It("writes only the line separator when there is nothing to escape", func() {
			expectConnect()

			gomega.Expect(run(app.ModeEscape)).To(gomega.Succeed())
			gomega.Expect(out.String()).To(gomega.Equal("\n"))
		})
	})

	ginkgo.Context("validation", func() {
		ginkgo.It("never reaches the database on an argument count mismatch", func() {
			args.AddLiteral("1")
			args.AddLiteral("2")

			err := run(app.ModeSelect, "select * from t where id = %d")

			gomega.Expect(err).To(gomega.MatchError("database query 'select * from t where id = %d' expects 1 arguments, 2 provided"))
			gomega.Expect(app.ExitCode(err)).To(gomega.Equal(app.ExitInvalid))
			gomega.Expect(out.String()).To(gomega.BeEmpty())
		})

		ginkgo.It("checks every statement before connecting", func() {
			args.AddLiteral("1")

			err := run(app.ModeSelect, "select %d", "select 2")

			gomega.Expect(app.ExitCode(err)).To(gomega.Equal(app.ExitInvalid))
		})

		ginkgo.It("treats a percent escape as a literal", func() {
			err := run(app.ModeSelect, "select '100%%', %d")

			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("expects 1 arguments, 0 provided")))
		})

		ginkgo.It("requires a driver", func() {
			svc := app.NewService(gateway, args, opts, out, nil)

			err := svc.Run(ctx, app.Request{Mode: app.ModeSelect, Params: "dbname=test", Targets: []string{"select 1"}})

			gomega.Expect(err).To(gomega.MatchError("no database driver specified"))
		})

		ginkgo.It("requires a mode", func() {
			gomega.Expect(app.ExitCode(run(app.ModeNone, "select 1"))).To(gomega.Equal(app.ExitInvalid))
		})

		ginkgo.It("rejects an unknown encoding", func() {
			opts.Encoding = "rot13"

			err := run(app.ModeSelect, "select 1")

			gomega.Expect(err).To(gomega.MatchError(format.ErrUnknownEncoding))
			gomega.Expect(app.ExitCode(err)).To(gomega.Equal(app.ExitInvalid))
		})
	})

	ginkgo.It("reports connection failures", func() {
		gateway.EXPECT().Open(gomock.Any(), "pgsql", "dbname=test").Return(nil, errors.New("connection refused"))

		err := run(app.ModeSelect, "select 1")

		var connErr *app.ErrConnection
		gomega.Expect(errors.As(err, &connErr)).To(gomega.BeTrue())
		gomega.Expect(connErr.Driver).To(gomega.Equal("pgsql"))
		gomega.Expect(app.ExitCode(err)).To(gomega.Equal(app.ExitFailure))
	})
})

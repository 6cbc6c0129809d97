package app_test

import (
	"errors"
	"fmt"

	"github.com/joacominatel/dbd/internal/app"
	"github.com/joacominatel/dbd/internal/bind"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("ExitCode", func() {
	ginkgo.It("is zero on success", func() {
		gomega.Expect(app.ExitCode(nil)).To(gomega.Equal(app.ExitOK))
	})

	ginkgo.DescribeTable("maps outcomes to exit status",
		func(err error, want int) {
			gomega.Expect(app.ExitCode(err)).To(gomega.Equal(want))
		},
		ginkgo.Entry("validation", &app.ErrValidation{Reason: "no mode specified"}, app.ExitInvalid),
		ginkgo.Entry("wrapped validation", fmt.Errorf("run: %w", &app.ErrValidation{Reason: "x"}), app.ExitInvalid),
		ginkgo.Entry("no data", app.ErrNoData, app.ExitFailure),
		ginkgo.Entry("connection", &app.ErrConnection{Driver: "pgsql", Cause: errors.New("refused")}, app.ExitFailure),
		ginkgo.Entry("query", &app.ErrQuery{Query: "select 1", Driver: "pgsql", Cause: errors.New("boom")}, app.ExitFailure),
		ginkgo.Entry("io", &app.ErrIO{Op: "write output", Cause: errors.New("closed pipe")}, app.ExitFailure),
	)
})

var _ = ginkgo.Describe("error messages", func() {
	ginkgo.It("renders a count mismatch on one line", func() {
		err := &app.ErrValidation{Cause: &bind.CountError{Statement: "select %d", Expected: 1, Actual: 2}}

		gomega.Expect(err.Error()).To(gomega.Equal("database query 'select %d' expects 1 arguments, 2 provided"))
	})

	ginkgo.It("includes the driver and cause for connection errors", func() {
		err := &app.ErrConnection{Driver: "pgsql", Cause: errors.New("connection refused")}

		gomega.Expect(err.Error()).To(gomega.Equal("could not connect to database 'pgsql': connection refused"))
		gomega.Expect(errors.Unwrap(err)).To(gomega.MatchError("connection refused"))
	})

	ginkgo.It("includes the statement for query errors", func() {
		err := &app.ErrQuery{Query: "select * from nope", Driver: "sqlite3", Cause: errors.New("no such table: nope")}

		gomega.Expect(err.Error()).To(gomega.Equal("database query 'select * from nope' failed (sqlite3): no such table: nope"))
	})

	ginkgo.It("joins reason and cause", func() {
		err := &app.ErrValidation{Reason: "output", Cause: errors.New("bad")}

		gomega.Expect(err.Error()).To(gomega.Equal("output: bad"))
	})
})

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/joacominatel/dbd/internal/format"
	"github.com/joacominatel/dbd/internal/theme"
	"github.com/spf13/pflag"
)

const argumentHelp = `  Statements take printf style parameters. -a, -f and -z bind values to them
  in command line order: %d int, %u unsigned, %f float, %s string,
  %hhd %hd %ld %lld and unsigned forms, %lf double, %pDt text, %pDi time,
  %pDd date, %pDa datetime, %pDs timestamp, %pDz zoned timestamp, %pDb blob,
  %pDc clob, %pDn null. Use %% for a literal percent sign.
`

func usage(w io.Writer, flags *pflag.FlagSet, drivers []string) {
	s := theme.New(w)

	fmt.Fprintf(w, "%s\n", s.Title.Render("Usage"))
	fmt.Fprintf(w, "  dbd [options] %s statement\n", s.Flag.Render("-q"))
	fmt.Fprintf(w, "  dbd [options] %s statement [statement...]\n", s.Flag.Render("-s"))
	fmt.Fprintf(w, "  dbd [options] %s table [table...]\n", s.Flag.Render("-t"))
	fmt.Fprintf(w, "  dbd [options] %s string [string...]\n\n", s.Flag.Render("-e"))

	fmt.Fprintf(w, "%s\n%s\n", s.Title.Render("Options"), flags.FlagUsages())

	fmt.Fprintf(w, "%s\n", s.Title.Render("Arguments"))
	io.WriteString(w, argumentHelp)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n  %s\n\n", s.Title.Render("Encodings"), strings.Join(format.Encodings(), ", "))
	if len(drivers) > 0 {
		fmt.Fprintf(w, "%s\n  %s\n\n", s.Title.Render("Drivers"), strings.Join(drivers, ", "))
	}

	fmt.Fprintf(w, "%s\n", s.Title.Render("Exit status"))
	fmt.Fprintln(w, "  0 on success, 1 on invalid options or arguments, 2 when the database")
	fmt.Fprintln(w, "  returned no data or any other error occurred.")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n", s.Title.Render("Examples"))
	fmt.Fprintln(w, s.Muted.Render(`  dbd -d pgsql -p "dbname=app" -s "select id, name from users where id = %d" -a 1`))
	fmt.Fprintln(w, s.Muted.Render(`  dbd -d sqlite3 -p app.db -q "update users set photo = %pDb where id = %d" -f photo.png -a 7`))
	fmt.Fprintln(w, s.Muted.Render(`  dbd --connection prod -t users --header -c , -x none`))
}

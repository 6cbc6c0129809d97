/*
Package bind prepares positional bind values for a statement.

Statements declare their parameters with printf-style tags:

	select * from users where id = %d and name = %s
	insert into files (name, body) values (%pDt, %pDb)

A tag is a '%' followed by a letter; "%%" is a literal percent. The
characters after the '%' select the parameter type (d, u, f, hhd, hhu, hd,
hu, lld, llu, ld, lu, lf and the pD family). Any other letter is a plain
string parameter. Blob and clob parameters occupy three bind slots.

Arguments come from literals, files (or standard input) and explicit
NULLs, and are only read when a statement is resolved.
*/
package bind

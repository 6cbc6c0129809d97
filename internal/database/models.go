package database

// ResultSet holds a fully materialised query result.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

// Cursor returns a Rows iterator over the result set.
func (r *ResultSet) Cursor() Rows {
	return &resultCursor{set: r, pos: -1}
}

type resultCursor struct {
	set    *ResultSet
	pos    int
	closed bool
}

func (c *resultCursor) Columns() []string {
	return c.set.Columns
}

func (c *resultCursor) Next() bool {
	if c.closed || c.pos+1 >= len(c.set.Rows) {
		return false
	}
	c.pos++
	return true
}

func (c *resultCursor) Values() ([]string, error) {
	return c.set.Rows[c.pos], nil
}

func (c *resultCursor) Err() error {
	return nil
}

func (c *resultCursor) Close() error {
	c.closed = true
	return nil
}

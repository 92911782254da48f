package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync/atomic"
	"testing"
)

// refusingDriver hands out connections that reject every statement and
// counts how many of them get closed.
type refusingDriver struct {
	closed atomic.Int32
}

func (d *refusingDriver) Open(string) (driver.Conn, error) {
	return &refusingConn{closed: &d.closed}, nil
}

type refusingConn struct {
	closed *atomic.Int32
}

func (c *refusingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("statement refused")
}

func (c *refusingConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	return nil, errors.New("statement refused")
}

func (c *refusingConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions refused")
}

func (c *refusingConn) Close() error {
	c.closed.Add(1)
	return nil
}

var refusing = &refusingDriver{}

func init() {
	sql.Register("sqlite-refusing", refusing)
}

func TestOpen_ClosesDatabaseWhenSetupFails(t *testing.T) {
	before := refusing.closed.Load()

	db, err := open("sqlite-refusing", "")
	if err == nil {
		db.Close()
		t.Fatal("expected setup to fail")
	}

	if got := refusing.closed.Load() - before; got != 1 {
		t.Errorf("closed %d connections, want 1", got)
	}
}

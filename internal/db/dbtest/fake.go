// Package dbtest provides an in-memory stand-in for db.DBTX so the
// bootstrapper and repository can be exercised without a server.
package dbtest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Row replays a fixed set of column values, or Err.
type Row struct {
	Values []any
	Err    error
}

func (r Row) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	return assign(r.Values, dest)
}

// Rows replays Data one row at a time.
type Rows struct {
	Data   [][]any
	Fail   error
	cursor int
	closed bool
}

func (r *Rows) Close()                                       { r.closed = true }
func (r *Rows) Err() error                                   { return r.Fail }
func (r *Rows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *Rows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *Rows) RawValues() [][]byte                          { return nil }
func (r *Rows) Conn() *pgx.Conn                              { return nil }

func (r *Rows) Next() bool {
	if r.closed || r.cursor >= len(r.Data) {
		return false
	}
	r.cursor++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.cursor == 0 {
		return errors.New("dbtest: Scan called before Next")
	}
	return assign(r.Data[r.cursor-1], dest)
}

func (r *Rows) Values() ([]any, error) {
	if r.cursor == 0 {
		return nil, errors.New("dbtest: Values called before Next")
	}
	return r.Data[r.cursor-1], nil
}

// Fake records every statement and answers through the handler funcs.
// A nil handler answers with an empty result.
type Fake struct {
	mu    sync.Mutex
	Execs []string
	Calls []string

	OnExec     func(sql string, args []any) (pgconn.CommandTag, error)
	OnQuery    func(sql string, args []any) (pgx.Rows, error)
	OnQueryRow func(sql string, args []any) pgx.Row
}

func (f *Fake) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	f.Execs = append(f.Execs, sql)
	f.Calls = append(f.Calls, sql)
	f.mu.Unlock()

	if f.OnExec == nil {
		return pgconn.NewCommandTag(""), nil
	}
	return f.OnExec(sql, args)
}

func (f *Fake) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.record(sql)
	if f.OnQuery == nil {
		return &Rows{}, nil
	}
	return f.OnQuery(sql, args)
}

func (f *Fake) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.record(sql)
	if f.OnQueryRow == nil {
		return Row{Err: pgx.ErrNoRows}
	}
	return f.OnQueryRow(sql, args)
}

func (f *Fake) ExecCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Execs)
}

func (f *Fake) record(sql string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, sql)
	f.mu.Unlock()
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("dbtest: %d values for %d destinations", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("dbtest: destination %d is not a pointer", i)
		}
		elem := target.Elem()
		if v == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		value := reflect.ValueOf(v)
		if !value.Type().AssignableTo(elem.Type()) {
			return fmt.Errorf("dbtest: cannot assign %T to %s", v, elem.Type())
		}
		elem.Set(value)
	}
	return nil
}

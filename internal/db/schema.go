package db

import (
	"context"
	"fmt"
)

const EmployeesTable = "employees"

const createEmployeesTable = `
CREATE TABLE IF NOT EXISTS employees (
    id            VARCHAR(7)   PRIMARY KEY,
    name          VARCHAR(50)  NOT NULL,
    role          VARCHAR(40)  NOT NULL,
    gender        VARCHAR(10)  NOT NULL,
    dob           DATE         NOT NULL,
    location      VARCHAR(40)  NOT NULL,
    email         VARCHAR(50)  NOT NULL,
    phone         VARCHAR(10)  NOT NULL,
    join_date     DATE         NOT NULL,
    experience    INTEGER      NOT NULL,
    skills        TEXT         NOT NULL,
    achievement   TEXT         NOT NULL,
    profile_image VARCHAR(255)
);
`

const tableExistsQuery = `
SELECT EXISTS (
    SELECT 1 FROM information_schema.tables
    WHERE table_schema = current_schema() AND table_name = $1
)`

const columnExistsQuery = `
SELECT EXISTS (
    SELECT 1 FROM information_schema.columns
    WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2
)`

// lateColumns were added after the first release; tables created before
// them are brought forward with ALTER TABLE.
var lateColumns = []struct {
	name string
	ddl  string
}{
	{name: "profile_image", ddl: `ALTER TABLE employees ADD COLUMN IF NOT EXISTS profile_image VARCHAR(255)`},
}

type BootstrapResult struct {
	CreatedTable bool
	AddedColumns []string
}

func (r BootstrapResult) Changed() bool {
	return r.CreatedTable || len(r.AddedColumns) > 0
}

// Bootstrap makes sure the employees table exists with every column. It
// never drops or rewrites anything, so it is safe on every start.
func Bootstrap(ctx context.Context, db DBTX) (BootstrapResult, error) {
	var result BootstrapResult

	exists, err := tableExists(ctx, db, EmployeesTable)
	if err != nil {
		return result, err
	}
	if !exists {
		if _, err := db.Exec(ctx, createEmployeesTable); err != nil {
			return result, fmt.Errorf("create %s table: %w", EmployeesTable, err)
		}
		result.CreatedTable = true
		return result, nil
	}

	for _, col := range lateColumns {
		present, err := columnExists(ctx, db, EmployeesTable, col.name)
		if err != nil {
			return result, err
		}
		if present {
			continue
		}
		if _, err := db.Exec(ctx, col.ddl); err != nil {
			return result, fmt.Errorf("add column %s: %w", col.name, err)
		}
		result.AddedColumns = append(result.AddedColumns, col.name)
	}

	return result, nil
}

func tableExists(ctx context.Context, db DBTX, table string) (bool, error) {
	var exists bool
	if err := db.QueryRow(ctx, tableExistsQuery, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return exists, nil
}

func columnExists(ctx context.Context, db DBTX, table, column string) (bool, error) {
	var exists bool
	if err := db.QueryRow(ctx, columnExistsQuery, table, column).Scan(&exists); err != nil {
		return false, fmt.Errorf("check column %s.%s: %w", table, column, err)
	}
	return exists, nil
}

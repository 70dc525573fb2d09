package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"employee-management/internal/apperror"
	"employee-management/internal/db/dbtest"
	"employee-management/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func sampleEmployee() models.Employee {
	return models.Employee{
		ID:          "ABC1234",
		Name:        "John Doe",
		Role:        "Engineer",
		Gender:      "Male",
		DOB:         models.Date{Time: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)},
		Location:    "Pune",
		Email:       "john.doe@astrolitetech.com",
		Phone:       "9876543210",
		JoinDate:    models.Date{Time: time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)},
		Experience:  5,
		Skills:      "Go",
		Achievement: "Payroll rewrite",
	}
}

func strPtr(s string) *string { return &s }

func employeeRow(e models.Employee) []any {
	return []any{e.ID, e.Name, e.Role, e.Gender, e.DOB.Time, e.Location, e.Email, e.Phone,
		e.JoinDate.Time, e.Experience, e.Skills, e.Achievement, e.ProfileImage}
}

func TestUpsertCreatesWhenAbsent(t *testing.T) {
	fake := &dbtest.Fake{
		OnQueryRow: func(sql string, args []any) pgx.Row {
			switch {
			case strings.Contains(sql, "SELECT EXISTS"):
				return dbtest.Row{Values: []any{false}}
			case strings.Contains(sql, "INSERT INTO employees"):
				return dbtest.Row{Values: []any{args[12].(*string)}}
			}
			return dbtest.Row{Err: errors.New("unexpected query: " + sql)}
		},
	}
	repo := NewEmployeeRepository(fake)

	stored, outcome, err := repo.Upsert(context.Background(), sampleEmployee(), strPtr("uploads/1-2-a.png"))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if outcome != models.OutcomeCreated {
		t.Fatalf("expected created, got %s", outcome)
	}
	if stored.ProfileImage == nil || *stored.ProfileImage != "uploads/1-2-a.png" {
		t.Fatalf("unexpected image %v", stored.ProfileImage)
	}
}

func TestUpsertUpdateKeepsImageWhenNoneSupplied(t *testing.T) {
	var passedImage *string
	fake := &dbtest.Fake{
		OnQueryRow: func(sql string, args []any) pgx.Row {
			switch {
			case strings.Contains(sql, "SELECT EXISTS"):
				return dbtest.Row{Values: []any{true}}
			case strings.Contains(sql, "UPDATE employees"):
				passedImage = args[12].(*string)
				if !strings.Contains(sql, "COALESCE($13, profile_image)") {
					return dbtest.Row{Err: errors.New("update must keep the stored image")}
				}
				return dbtest.Row{Values: []any{strPtr("uploads/old.png")}}
			}
			return dbtest.Row{Err: errors.New("unexpected query: " + sql)}
		},
	}
	repo := NewEmployeeRepository(fake)

	stored, outcome, err := repo.Upsert(context.Background(), sampleEmployee(), nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if outcome != models.OutcomeUpdated {
		t.Fatalf("expected updated, got %s", outcome)
	}
	if passedImage != nil {
		t.Fatalf("no image was supplied, got %v", *passedImage)
	}
	if stored.ProfileImage == nil || *stored.ProfileImage != "uploads/old.png" {
		t.Fatalf("expected stored image to be echoed, got %v", stored.ProfileImage)
	}
}

func TestUpsertReportsDuplicateWhenInsertLosesRace(t *testing.T) {
	fake := &dbtest.Fake{
		OnQueryRow: func(sql string, _ []any) pgx.Row {
			if strings.Contains(sql, "SELECT EXISTS") {
				return dbtest.Row{Values: []any{false}}
			}
			return dbtest.Row{Err: &pgconn.PgError{Code: "23505", ConstraintName: "employees_pkey"}}
		},
	}
	repo := NewEmployeeRepository(fake)

	_, _, err := repo.Upsert(context.Background(), sampleEmployee(), nil)
	if apperror.KindOf(err) != apperror.KindDuplicateID {
		t.Fatalf("expected duplicate id, got %v", err)
	}
}

func TestUpsertFallsBackToInsertWhenRowVanished(t *testing.T) {
	fake := &dbtest.Fake{
		OnQueryRow: func(sql string, args []any) pgx.Row {
			switch {
			case strings.Contains(sql, "SELECT EXISTS"):
				return dbtest.Row{Values: []any{true}}
			case strings.Contains(sql, "UPDATE employees"):
				return dbtest.Row{Err: pgx.ErrNoRows}
			case strings.Contains(sql, "INSERT INTO employees"):
				return dbtest.Row{Values: []any{args[12].(*string)}}
			}
			return dbtest.Row{Err: errors.New("unexpected query")}
		},
	}
	repo := NewEmployeeRepository(fake)

	_, outcome, err := repo.Upsert(context.Background(), sampleEmployee(), nil)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if outcome != models.OutcomeCreated {
		t.Fatalf("expected created, got %s", outcome)
	}
}

func TestUpsertTranslatesStoreErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apperror.Kind
	}{
		{name: "too long", err: &pgconn.PgError{Code: "22001"}, want: apperror.KindValidation},
		{name: "bad date", err: &pgconn.PgError{Code: "22008"}, want: apperror.KindValidation},
		{name: "number out of range", err: &pgconn.PgError{Code: "22003"}, want: apperror.KindValidation},
		{name: "other", err: errors.New("connection reset"), want: apperror.KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &dbtest.Fake{
				OnQueryRow: func(sql string, _ []any) pgx.Row {
					if strings.Contains(sql, "SELECT EXISTS") {
						return dbtest.Row{Values: []any{false}}
					}
					return dbtest.Row{Err: tc.err}
				},
			}

			_, _, err := NewEmployeeRepository(fake).Upsert(context.Background(), sampleEmployee(), nil)
			if got := apperror.KindOf(err); got != tc.want {
				t.Fatalf("expected %s, got %s (%v)", tc.want, got, err)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("translated error must keep its cause")
			}
		})
	}
}

func TestDeleteReturnsSnapshot(t *testing.T) {
	removed := sampleEmployee()
	removed.ProfileImage = strPtr("uploads/x.png")
	fake := &dbtest.Fake{
		OnQueryRow: func(sql string, args []any) pgx.Row {
			if !strings.HasPrefix(sql, "DELETE FROM employees") || args[0] != "ABC1234" {
				return dbtest.Row{Err: errors.New("unexpected query")}
			}
			return dbtest.Row{Values: employeeRow(removed)}
		},
	}

	got, err := NewEmployeeRepository(fake).Delete(context.Background(), "ABC1234")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got.Name != "John Doe" || got.ProfileImage == nil || *got.ProfileImage != "uploads/x.png" {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if got.JoinDate.Format(models.DateLayout) != "2020-01-06" {
		t.Fatalf("unexpected join date %v", got.JoinDate)
	}
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	fake := &dbtest.Fake{}

	_, err := NewEmployeeRepository(fake).Delete(context.Background(), "ZZZ9999")
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListSummaryEmptyStore(t *testing.T) {
	fake := &dbtest.Fake{}

	list, err := NewEmployeeRepository(fake).ListSummary(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}

func TestListDetailedScansRows(t *testing.T) {
	first := sampleEmployee()
	second := sampleEmployee()
	second.ID = "ABC1000"
	fake := &dbtest.Fake{
		OnQuery: func(sql string, _ []any) (pgx.Rows, error) {
			if !strings.Contains(sql, "ORDER BY id DESC") {
				return nil, errors.New("list must be ordered by id descending")
			}
			return &dbtest.Rows{Data: [][]any{employeeRow(first), employeeRow(second)}}, nil
		},
	}

	list, err := NewEmployeeRepository(fake).ListDetailed(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "ABC1234" || list[1].ID != "ABC1000" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestListSummaryStoreError(t *testing.T) {
	fake := &dbtest.Fake{
		OnQuery: func(string, []any) (pgx.Rows, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, err := NewEmployeeRepository(fake).ListSummary(context.Background())
	if apperror.KindOf(err) != apperror.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"employee-management/internal/apperror"
	"employee-management/internal/db"
	"employee-management/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repository recognises.
const (
	codeUniqueViolation  = "23505"
	codeStringTooLong    = "22001"
	codeNumericRange     = "22003"
	codeInvalidDatetime  = "22007"
	codeDatetimeOverflow = "22008"
)

const employeeColumns = `id, name, role, gender, dob, location, email, phone,
       join_date, experience, skills, achievement, profile_image`

type EmployeeRepository struct {
	db db.DBTX
}

func NewEmployeeRepository(conn db.DBTX) *EmployeeRepository {
	return &EmployeeRepository{db: conn}
}

func (r *EmployeeRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) ListSummary(ctx context.Context) ([]models.EmployeeSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, profile_image
		FROM employees
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, translate("list employees", err)
	}
	defer rows.Close()

	result := make([]models.EmployeeSummary, 0)
	for rows.Next() {
		var s models.EmployeeSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.ProfileImage); err != nil {
			return nil, translate("scan employee", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list employees", err)
	}
	return result, nil
}

func (r *EmployeeRepository) ListDetailed(ctx context.Context) ([]models.Employee, error) {
	rows, err := r.db.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id DESC`)
	if err != nil {
		return nil, translate("list employees", err)
	}
	defer rows.Close()

	result := make([]models.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, translate("scan employee", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list employees", err)
	}
	return result, nil
}

// Upsert inserts e, or overwrites the twelve base fields when the id is
// already present. The stored image changes only when image is non-nil.
// A create that loses a race on the same id comes back as KindDuplicateID.
func (r *EmployeeRepository) Upsert(ctx context.Context, e models.Employee, image *string) (models.Employee, models.UpsertOutcome, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id=$1)`, e.ID).
		Scan(&exists); err != nil {
		return models.Employee{}, "", translate("lookup employee", err)
	}

	if exists {
		stored, err := r.update(ctx, e, image)
		if err == nil {
			return stored, models.OutcomeUpdated, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, "", translate("update employee", err)
		}
		// deleted between the lookup and the update; treat as a create
	}

	stored, err := r.insert(ctx, e, image)
	if err != nil {
		return models.Employee{}, "", translate("insert employee", err)
	}
	return stored, models.OutcomeCreated, nil
}

func (r *EmployeeRepository) insert(ctx context.Context, e models.Employee, image *string) (models.Employee, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO employees (id, name, role, gender, dob, location, email, phone,
		                       join_date, experience, skills, achievement, profile_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING profile_image
	`, baseArgs(e, image)...)

	if err := row.Scan(&e.ProfileImage); err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

func (r *EmployeeRepository) update(ctx context.Context, e models.Employee, image *string) (models.Employee, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE employees
		SET name=$2, role=$3, gender=$4, dob=$5, location=$6, email=$7, phone=$8,
		    join_date=$9, experience=$10, skills=$11, achievement=$12,
		    profile_image=COALESCE($13, profile_image)
		WHERE id=$1
		RETURNING profile_image
	`, baseArgs(e, image)...)

	if err := row.Scan(&e.ProfileImage); err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

// Delete removes the employee and returns the row as it was.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) (models.Employee, error) {
	row := r.db.QueryRow(ctx, `DELETE FROM employees WHERE id=$1 RETURNING `+employeeColumns, id)

	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, apperror.New(apperror.KindNotFound, "employee not found")
		}
		return models.Employee{}, translate("delete employee", err)
	}
	return e, nil
}

func baseArgs(e models.Employee, image *string) []any {
	return []any{
		e.ID, e.Name, e.Role, e.Gender, e.DOB.Time, e.Location, e.Email, e.Phone,
		e.JoinDate.Time, e.Experience, e.Skills, e.Achievement, image,
	}
}

func scanEmployee(row pgx.Row) (models.Employee, error) {
	var (
		e        models.Employee
		dob      time.Time
		joinDate time.Time
	)
	err := row.Scan(&e.ID, &e.Name, &e.Role, &e.Gender, &dob, &e.Location, &e.Email, &e.Phone,
		&joinDate, &e.Experience, &e.Skills, &e.Achievement, &e.ProfileImage)
	if err != nil {
		return models.Employee{}, err
	}
	e.DOB = models.Date{Time: dob}
	e.JoinDate = models.Date{Time: joinDate}
	return e, nil
}

// translate is the one place store errors become error kinds.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperror.Wrap(apperror.KindDuplicateID, "employee ID already exists", err)
		case codeStringTooLong:
			return apperror.Wrap(apperror.KindValidation, "a field exceeds its maximum length", err)
		case codeNumericRange:
			return apperror.Wrap(apperror.KindValidation, "a numeric field is out of range", err)
		case codeInvalidDatetime, codeDatetimeOverflow:
			return apperror.Wrap(apperror.KindValidation, "invalid date value", err)
		}
	}
	return apperror.Wrap(apperror.KindInternal, op+" failed", err)
}

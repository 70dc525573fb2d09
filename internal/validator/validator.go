// Package validator holds the field rules applied to every create/update
// request before anything touches storage.
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"employee-management/internal/apperror"
	"employee-management/internal/models"

	playground "github.com/go-playground/validator/v10"
)

// OrgDomain is the only mail domain employee addresses may use.
const OrgDomain = "astrolitetech.com"

var (
	idPattern    = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9._-]*[a-zA-Z0-9])?@` + regexp.QuoteMeta(OrgDomain) + `$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

	lengths = playground.New()

	// now is replaced in tests.
	now = time.Now
)

func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Missing returns the form names of the required fields that are empty,
// in form order.
func Missing(form models.EmployeeForm) []string {
	fields := []struct {
		name  string
		value string
	}{
		{"id", form.ID},
		{"name", form.Name},
		{"role", form.Role},
		{"gender", form.Gender},
		{"dob", form.DOB},
		{"location", form.Location},
		{"email", form.Email},
		{"phone", form.Phone},
		{"joinDate", form.JoinDate},
		{"experience", form.Experience},
		{"skills", form.Skills},
		{"achievement", form.Achievement},
	}

	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Employee checks form and converts it into a record. Rules run in a fixed
// order (presence, id, email, phone, dates, experience, lengths) and the
// first failure is returned. The id is matched untrimmed.
func Employee(form models.EmployeeForm) (models.Employee, error) {
	rawID := form.ID
	form = trim(form)

	if missing := Missing(form); len(missing) > 0 {
		return models.Employee{}, apperror.New(apperror.KindMissingField,
			"all fields are required, missing: "+strings.Join(missing, ", "))
	}
	if !ValidID(rawID) {
		return models.Employee{}, apperror.New(apperror.KindInvalidID,
			"invalid employee ID format: expected 3 uppercase letters followed by 4 digits (e.g. ABC1234)")
	}
	if !ValidEmail(form.Email) {
		return models.Employee{}, apperror.New(apperror.KindInvalidEmail,
			"invalid email format: must be a valid @"+OrgDomain+" address")
	}
	if !ValidPhone(form.Phone) {
		return models.Employee{}, apperror.New(apperror.KindInvalidPhone,
			"invalid phone number: must be exactly 10 digits")
	}

	dob, err := parseDate("dob", form.DOB)
	if err != nil {
		return models.Employee{}, err
	}
	joinDate, err := parseDate("joinDate", form.JoinDate)
	if err != nil {
		return models.Employee{}, err
	}

	if joinDate.After(today()) {
		return models.Employee{}, apperror.New(apperror.KindValidation,
			"joinDate cannot be in the future")
	}
	if joinDate.Before(dob.Time) {
		return models.Employee{}, apperror.New(apperror.KindValidation,
			"joinDate cannot be before dob")
	}

	// INTEGER column
	experience, err := strconv.ParseInt(form.Experience, 10, 32)
	if err != nil || experience < 0 {
		return models.Employee{}, apperror.New(apperror.KindValidation,
			"experience must be a non-negative whole number")
	}

	if err := checkLengths(form); err != nil {
		return models.Employee{}, err
	}

	return models.Employee{
		ID:          form.ID,
		Name:        form.Name,
		Role:        form.Role,
		Gender:      form.Gender,
		DOB:         dob,
		Location:    form.Location,
		Email:       form.Email,
		Phone:       form.Phone,
		JoinDate:    joinDate,
		Experience:  int(experience),
		Skills:      form.Skills,
		Achievement: form.Achievement,
	}, nil
}

func trim(form models.EmployeeForm) models.EmployeeForm {
	form.ID = strings.TrimSpace(form.ID)
	form.Name = strings.TrimSpace(form.Name)
	form.Role = strings.TrimSpace(form.Role)
	form.Gender = strings.TrimSpace(form.Gender)
	form.DOB = strings.TrimSpace(form.DOB)
	form.Location = strings.TrimSpace(form.Location)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.JoinDate = strings.TrimSpace(form.JoinDate)
	form.Experience = strings.TrimSpace(form.Experience)
	form.Skills = strings.TrimSpace(form.Skills)
	form.Achievement = strings.TrimSpace(form.Achievement)
	return form
}

func today() time.Time {
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(field, raw string) (models.Date, error) {
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return models.Date{}, apperror.New(apperror.KindValidation,
			field+" must be in YYYY-MM-DD format")
	}
	return models.Date{Time: t}, nil
}

func checkLengths(form models.EmployeeForm) error {
	err := lengths.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperror.New(apperror.KindValidation,
			fmt.Sprintf("%s must be at most %s characters", formName(fe.StructField()), fe.Param()))
	}
	return apperror.Wrap(apperror.KindValidation, "invalid employee fields", err)
}

func formName(structField string) string {
	switch structField {
	case "JoinDate":
		return "joinDate"
	case "DOB":
		return "dob"
	case "ID":
		return "id"
	default:
		return strings.ToLower(structField[:1]) + structField[1:]
	}
}

package apperror

import "errors"

type Kind string

const (
	KindMissingField    Kind = "missing_field"
	KindInvalidID       Kind = "invalid_id"
	KindInvalidEmail    Kind = "invalid_email"
	KindInvalidPhone    Kind = "invalid_phone"
	KindValidation      Kind = "validation"
	KindInvalidFileType Kind = "invalid_file_type"
	KindFileTooLarge    Kind = "file_too_large"
	KindTooManyFiles    Kind = "too_many_files"
	KindDuplicateID     Kind = "duplicate_id"
	KindNotFound        Kind = "not_found"
	KindInternal        Kind = "internal"
)

// Error is the error shape every layer below the handlers hands back.
// Err keeps the underlying cause for logging; it never reaches a
// production response.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindInternal
}

// MessageOf returns the client-facing message for err. Errors that are
// not *Error get a generic text.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// IsValidation reports whether the kind is a client input problem that
// maps to a bad request.
func (k Kind) IsValidation() bool {
	switch k {
	case KindMissingField, KindInvalidID, KindInvalidEmail, KindInvalidPhone, KindValidation,
		KindInvalidFileType, KindFileTooLarge, KindTooManyFiles, KindDuplicateID:
		return true
	default:
		return false
	}
}

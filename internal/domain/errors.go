package domain

import (
	"errors"
	"fmt"
)

// Kind - категория ошибки, видимая клиенту API
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindNotFound   Kind = "NotFoundError"
	KindConflict   Kind = "ConflictError"
	KindAuth       Kind = "AuthError"
	KindStore      Kind = "StoreError"
	KindInternal   Kind = "InternalError"
)

// Определение бизнес-ошибок
var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrUnknownDepartment = errors.New("department does not exist")
	ErrDuplicateEmail    = errors.New("employee with this email already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// Error - ошибка с категорией, сообщением и ошибками по полям
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт ошибку валидации со списком некорректных полей
func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields, Err: ErrInvalidInput}
}

// NewFieldError создаёт ошибку валидации одного поля
func NewFieldError(field, message string, cause error) *Error {
	if cause == nil {
		cause = ErrInvalidInput
	}
	return &Error{
		Kind:    KindValidation,
		Message: "request validation failed",
		Fields:  map[string]string{field: message},
		Err:     cause,
	}
}

// NewNotFoundError создаёт ошибку отсутствующей записи
func NewNotFoundError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...), Err: cause}
}

// NewConflictError создаёт ошибку нарушения уникальности
func NewConflictError(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...), Err: cause}
}

// NewAuthError создаёт ошибку аутентификации
func NewAuthError(message string, cause error) *Error {
	if cause == nil {
		cause = ErrUnauthorized
	}
	return &Error{Kind: KindAuth, Message: message, Err: cause}
}

// NewStoreError оборачивает сбой хранилища
func NewStoreError(op string, err error) *Error {
	return &Error{Kind: KindStore, Message: op, Err: errors.Join(ErrStoreUnavailable, err)}
}

// KindOf возвращает категорию ошибки; для неизвестных ошибок - KindInternal
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

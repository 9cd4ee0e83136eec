package usecase

import (
	"errors"
	"strings"
)

const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeLeadNotFound        = "LEAD_NOT_FOUND"
	CodeSaleNotFound        = "SALE_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeAdLinkNotFound      = "ADLINK_NOT_FOUND"
	CodePlanNotFound        = "PLAN_NOT_FOUND"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeSaleLocked          = "SALE_LOCKED"
	CodeStatusConflict      = "STATUS_CONFLICT"
	CodeSaleAlreadyExists   = "SALE_ALREADY_EXISTS"
	CodeThresholdNotMet     = "PAYMENT_THRESHOLD_NOT_MET"
	CodeAccessAlreadyActive = "ACCESS_ALREADY_GRANTED"
	CodeAccessNotGranted    = "ACCESS_NOT_GRANTED"
	CodeEmailAlreadyExists  = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUserInactive        = "USER_INACTIVE"
	CodeCannotDeleteSelf    = "CANNOT_DELETE_SELF"
	CodeSlugTaken           = "SLUG_TAKEN"

	CodeDatabase = "DATABASE_ERROR"
	CodeHashing  = "HASH_ERROR"
	CodeToken    = "TOKEN_ERROR"
)

type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// AsDomainError unwraps err into a *DomainError when it is one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func newDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func newValidationError(errs []ValidationError) *DomainError {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "datos inválidos: " + strings.Join(msgs, "; "),
		Fields:  errs,
	}
}

func databaseError(message string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: message, Err: err}
}

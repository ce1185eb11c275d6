package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError is a domain failure with a fixed code and HTTP status. The
// status travels with the error so the boundary handler never has to keep a
// separate code-to-status table in sync.
type DomainError struct {
	Code    string
	Status  int
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match wrapped copies against the predefined values.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code string, status int, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Status:  status,
		Message: message,
	}
}

// WrapError attaches an underlying cause to a predefined domain error.
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Status:  domainErr.Status,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors. This is the closed set; handlers map nothing
// outside it except the generic internal error.
var (
	// Validation / input errors
	ErrValidation         = NewDomainError("VALIDATION_ERROR", http.StatusBadRequest, "invalid input")
	ErrInvalidEmailFormat = NewDomainError("INVALID_EMAIL_FORMAT", http.StatusBadRequest, "invalid email format")
	ErrRequiredTerms      = NewDomainError("REQUIRED_TERMS", http.StatusBadRequest, "terms of service consent is required")
	ErrRequiredPrivacy    = NewDomainError("REQUIRED_PRIVACY", http.StatusBadRequest, "privacy policy consent is required")

	// Registration / verification errors
	ErrEmailAlreadyExists           = NewDomainError("EMAIL_ALREADY_EXISTS", http.StatusConflict, "email is already in use")
	ErrVerificationTokenNotFound    = NewDomainError("VERIFICATION_TOKEN_NOT_FOUND", http.StatusNotFound, "verification token not found")
	ErrVerificationTokenAlreadyUsed = NewDomainError("VERIFICATION_TOKEN_ALREADY_USED", http.StatusBadRequest, "verification token already used")
	ErrVerificationTokenExpired     = NewDomainError("VERIFICATION_TOKEN_EXPIRED", http.StatusBadRequest, "verification token expired")

	// Authentication errors
	ErrLoginFailed         = NewDomainError("LOGIN_FAILED", http.StatusUnauthorized, "email or password is incorrect")
	ErrAccountLocked       = NewDomainError("ACCOUNT_LOCKED", http.StatusLocked, "account is temporarily locked")
	ErrAccountNotActive    = NewDomainError("ACCOUNT_NOT_ACTIVE", http.StatusForbidden, "account is not active")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", http.StatusUnauthorized, "authentication required")
	ErrInvalidToken        = NewDomainError("INVALID_TOKEN", http.StatusUnauthorized, "invalid token")
	ErrTokenExpired        = NewDomainError("TOKEN_EXPIRED", http.StatusUnauthorized, "token has expired")
	ErrInvalidRefreshToken = NewDomainError("INVALID_REFRESH_TOKEN", http.StatusUnauthorized, "invalid refresh token")

	// Project / collaborator errors
	ErrForbidden               = NewDomainError("FORBIDDEN", http.StatusForbidden, "no permission for this operation")
	ErrProjectIDRequired       = NewDomainError("PROJECT_ID_REQUIRED", http.StatusBadRequest, "project id is required")
	ErrProjectNotFound         = NewDomainError("PROJECT_NOT_FOUND", http.StatusNotFound, "project not found")
	ErrUserToAddNotFound       = NewDomainError("USER_TO_ADD_NOT_FOUND", http.StatusNotFound, "user to invite not found")
	ErrUserAlreadyCollaborator = NewDomainError("USER_ALREADY_COLLABORATOR", http.StatusConflict, "user is already a collaborator")
	ErrCannotChangeOwnRole     = NewDomainError("CANNOT_CHANGE_OWN_ROLE", http.StatusBadRequest, "cannot change your own role")
	ErrCannotChangeOwnerRole   = NewDomainError("CANNOT_CHANGE_OWNER_ROLE", http.StatusBadRequest, "cannot change the project owner's role")
	ErrCannotRemoveSelf        = NewDomainError("CANNOT_REMOVE_SELF", http.StatusBadRequest, "cannot remove yourself from the project")
	ErrCollaboratorNotFound    = NewDomainError("COLLABORATOR_NOT_FOUND", http.StatusNotFound, "collaborator not found in project")

	// System errors
	ErrNotFound = NewDomainError("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrInternal = NewDomainError("INTERNAL_SERVER_ERROR", http.StatusInternalServerError, "internal server error")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps an error to its HTTP status code. Unknown errors map to
// 500; this should only be used at the handler layer.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Status
	}
	return http.StatusInternalServerError
}

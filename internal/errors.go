package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeAuthentication  ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeAccountInactive ErrorType = "ACCOUNT_INACTIVE"
	ErrorTypePermission      ErrorType = "PERMISSION_ERROR"
	ErrorTypeDataIntegrity   ErrorType = "DATA_INTEGRITY_ERROR"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal        ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidCategory  ErrorCode = "INVALID_CATEGORY"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeAccountInactive    ErrorCode = "ACCOUNT_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeProfileMissing     ErrorCode = "PROFILE_MISSING"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"

	ErrCodeProtectedIdentity    ErrorCode = "PROTECTED_IDENTITY"
	ErrCodeInsufficientRights   ErrorCode = "INSUFFICIENT_RIGHTS"
	ErrCodeIdentityNotFound     ErrorCode = "IDENTITY_NOT_FOUND"
	ErrCodeTransactionNotFound  ErrorCode = "TRANSACTION_NOT_FOUND"
	ErrCodeNoteNotFound         ErrorCode = "NOTE_NOT_FOUND"
	ErrCodeReceiptNotFound      ErrorCode = "RECEIPT_NOT_FOUND"
	ErrCodeDocumentNotFound     ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrCodeUploadFailed         ErrorCode = "UPLOAD_FAILED"
	ErrCodeExportEmptyDataset   ErrorCode = "EXPORT_EMPTY_DATASET"
	ErrCodeLocalStoreUnreadable ErrorCode = "LOCAL_STORE_UNREADABLE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Messages() string {
	msgs := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		msgs[i] = err.Message
	}
	return strings.Join(msgs, "; ")
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewAuthenticationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewAccountInactiveError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAccountInactive,
		Code:       ErrCodeAccountInactive,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewPermissionError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypePermission,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewDataIntegrityError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeDataIntegrity,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewExternalError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

var (
	ErrNotAuthenticated   = NewAuthenticationError("User not authenticated", ErrCodeNotAuthenticated)
	ErrInvalidCredentials = NewAuthenticationError("Invalid email or password. Your credentials don't match our records.", ErrCodeInvalidCredentials)
	ErrAccountInactive    = NewAccountInactiveError("Your account is not active. Please contact an administrator.")
	ErrInvalidToken       = NewAuthenticationError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewAuthenticationError("Token has expired", ErrCodeTokenExpired)
	ErrProfileMissing     = NewDataIntegrityError("User account not found. Please contact support.", ErrCodeProfileMissing)
	ErrEmailTaken         = NewConflictError("User with this email already exists", ErrCodeEmailTaken)

	ErrProtectedRoleChange = NewPermissionError("Cannot change the main admin's role", ErrCodeProtectedIdentity)
	ErrProtectedDelete     = NewPermissionError("Cannot delete the main admin account", ErrCodeProtectedIdentity)

	ErrIdentityNotFound    = NewNotFoundError("User not found", ErrCodeIdentityNotFound)
	ErrTransactionNotFound = NewNotFoundError("Transaction not found", ErrCodeTransactionNotFound)
	ErrNoteNotFound        = NewNotFoundError("Note not found", ErrCodeNoteNotFound)
	ErrReceiptNotFound     = NewNotFoundError("Receipt not found", ErrCodeReceiptNotFound)
	ErrDocumentNotFound    = NewNotFoundError("Document not found", ErrCodeDocumentNotFound)

	ErrExportEmptyDataset = NewExternalError("No data to export", ErrCodeExportEmptyDataset)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

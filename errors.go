package notionmap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeDecode         ErrorType = "decode"
	ErrorTypeSchema         ErrorType = "schema"
	ErrorTypeNotImplemented ErrorType = "not_implemented"
	ErrorTypeSession        ErrorType = "session"
	ErrorTypeConnectivity   ErrorType = "connectivity"
	ErrorTypeRemote         ErrorType = "remote"
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeInternal       ErrorType = "internal"
)

// Error codes
const (
	// Decode errors
	ErrCodeUnknownVariant   = "UNKNOWN_VARIANT"
	ErrCodeMissingTag       = "MISSING_TAG"
	ErrCodeMalformedPayload = "MALFORMED_PAYLOAD"
	ErrCodeInvalidEnum      = "INVALID_ENUM_VALUE"

	// Schema errors
	ErrCodeSchemaMismatch = "SCHEMA_MISMATCH"
	ErrCodeSchemaInvalid  = "SCHEMA_INVALID"
	ErrCodeSchemaUnbound  = "SCHEMA_UNBOUND"

	ErrCodeNotImplemented = "NOT_IMPLEMENTED"

	// Session errors
	ErrCodeSessionActive   = "SESSION_ALREADY_ACTIVE"
	ErrCodeNoActiveSession = "NO_ACTIVE_SESSION"
	ErrCodeSessionClosed   = "SESSION_CLOSED"

	// Transport errors
	ErrCodeConnectionFailed = "CONNECTION_FAILED"
	ErrCodeRemoteRejected   = "REMOTE_REJECTED"

	// Input and lookup errors
	ErrCodeMissingKey       = "MISSING_KEY"
	ErrCodeReadOnlyProperty = "READ_ONLY_PROPERTY"
	ErrCodeInvalidValue     = "INVALID_VALUE"
	ErrCodeInvalidID        = "INVALID_ID"
	ErrCodeObjectNotFound   = "OBJECT_NOT_FOUND"

	ErrCodeMissingToken  = "MISSING_TOKEN"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Error is the single structured error type surfaced by every package of the module.
type Error struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Columns []string       `json:"columns,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *Error) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("[%s:%s] columns %s: %s", e.Type, e.Code, quoteJoin(e.Columns), e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("[%s:%s] field '%s': %s", e.Type, e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetails adds details to an Error
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail adds a single detail to an Error
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause adds a cause to an Error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithField adds field context to an Error
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}

// ============================================================================
// Constructors
// ============================================================================

// NewError creates a new Error
func NewError(errorType ErrorType, code, message string) *Error {
	return &Error{
		Type:    errorType,
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
}

// NewDecodeError reports a payload that could not be decoded into a typed object.
func NewDecodeError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeDecode,
		Code:    ErrCodeMalformedPayload,
		Message: message,
		Cause:   cause,
		Details: make(map[string]any),
	}
}

// NewUnknownVariantError reports a discriminator that matches no registered variant.
func NewUnknownVariantError(kind, tag string) *Error {
	return &Error{
		Type:    ErrorTypeDecode,
		Code:    ErrCodeUnknownVariant,
		Message: fmt.Sprintf("unsupported %s '%s'", kind, tag),
		Details: map[string]any{"kind": kind, "tag": tag},
	}
}

// NewMissingTagError reports a payload without its discriminator field.
func NewMissingTagError(kind, field string) *Error {
	return &Error{
		Type:    ErrorTypeDecode,
		Code:    ErrCodeMissingTag,
		Message: fmt.Sprintf("%s payload has no '%s' discriminator", kind, field),
		Field:   field,
		Details: map[string]any{"kind": kind},
	}
}

// NewInvalidEnumError reports an enumeration value the model does not know.
func NewInvalidEnumError(enum, value string) *Error {
	return &Error{
		Type:    ErrorTypeDecode,
		Code:    ErrCodeInvalidEnum,
		Message: fmt.Sprintf("'%s' is not a valid %s", value, enum),
		Details: map[string]any{"enum": enum, "value": value},
	}
}

// NewSchemaMismatchError names every column that differs between two schemas.
func NewSchemaMismatchError(message string, columns ...string) *Error {
	return &Error{
		Type:    ErrorTypeSchema,
		Code:    ErrCodeSchemaMismatch,
		Message: message,
		Columns: columns,
		Details: make(map[string]any),
	}
}

// NewSchemaInvalidError reports a schema declaration that breaks a schema invariant.
func NewSchemaInvalidError(message string) *Error {
	return &Error{
		Type:    ErrorTypeSchema,
		Code:    ErrCodeSchemaInvalid,
		Message: message,
		Details: make(map[string]any),
	}
}

// NewSchemaUnboundError reports a schema used before it was bound to a database.
func NewSchemaUnboundError(title string) *Error {
	return &Error{
		Type:    ErrorTypeSchema,
		Code:    ErrCodeSchemaUnbound,
		Message: fmt.Sprintf("schema '%s' is not bound to a database", title),
		Details: make(map[string]any),
	}
}

// NewNotImplementedError reports an operation without defined behavior.
func NewNotImplementedError(operation string) *Error {
	return &Error{
		Type:    ErrorTypeNotImplemented,
		Code:    ErrCodeNotImplemented,
		Message: fmt.Sprintf("%s is not implemented", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewSessionActiveError is returned when a second session is initialized.
func NewSessionActiveError() *Error {
	return &Error{
		Type:    ErrorTypeSession,
		Code:    ErrCodeSessionActive,
		Message: "cannot initialize multiple sessions at once",
		Details: make(map[string]any),
	}
}

// NewNoActiveSessionError is returned when no session is registered.
func NewNoActiveSessionError() *Error {
	return &Error{
		Type:    ErrorTypeSession,
		Code:    ErrCodeNoActiveSession,
		Message: "there is no active session",
		Details: make(map[string]any),
	}
}

// NewSessionClosedError is returned when a closed session is used.
func NewSessionClosedError() *Error {
	return &Error{
		Type:    ErrorTypeSession,
		Code:    ErrCodeSessionClosed,
		Message: "session is closed",
		Details: make(map[string]any),
	}
}

// NewSessionStatusError wraps a transport failure seen while checking a session.
// The code tells an unreachable remote apart from a rejected request.
func NewSessionStatusError(cause error) *Error {
	e := &Error{
		Type:    ErrorTypeSession,
		Code:    ErrCodeConnectionFailed,
		Message: "unable to connect to the remote API",
		Cause:   cause,
		Details: make(map[string]any),
	}
	if IsRemoteError(cause) {
		e.Code = ErrCodeRemoteRejected
		e.Message = "invalid API response"
	}
	return e
}

// NewConnectionError reports that the remote could not be reached.
func NewConnectionError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeConnectivity,
		Code:    ErrCodeConnectionFailed,
		Message: message,
		Cause:   cause,
		Details: make(map[string]any),
	}
}

// NewRemoteError reports a request the remote rejected.
func NewRemoteError(status int, code, message string) *Error {
	return &Error{
		Type:    ErrorTypeRemote,
		Code:    ErrCodeRemoteRejected,
		Message: message,
		Details: map[string]any{"status": status, "remote_code": code},
	}
}

// NewMissingKeyError reports a lookup by column name that found nothing.
func NewMissingKeyError(key string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeMissingKey,
		Message: "no such column",
		Field:   key,
		Details: make(map[string]any),
	}
}

// NewObjectNotFoundError reports an id absent from a local store.
func NewObjectNotFoundError(id string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeObjectNotFound,
		Message: fmt.Sprintf("object %s not found", id),
		Details: map[string]any{"id": id},
	}
}

// NewReadOnlyPropertyError rejects writes to computed columns.
func NewReadOnlyPropertyError(column, propertyType string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeReadOnlyProperty,
		Message: fmt.Sprintf("property of type '%s' is computed by the remote and cannot be set", propertyType),
		Field:   column,
		Details: make(map[string]any),
	}
}

// NewValidationError creates a validation error
func NewValidationError(field, message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeInvalidValue,
		Message: message,
		Field:   field,
		Details: make(map[string]any),
	}
}

// NewInvalidIDError reports an object reference that is not a uuid.
func NewInvalidIDError(ref string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeInvalidID,
		Message: fmt.Sprintf("'%s' is not a valid object id", ref),
		Cause:   cause,
		Details: make(map[string]any),
	}
}

// NewMissingTokenError reports that no credentials were supplied.
func NewMissingTokenError() *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeMissingToken,
		Message: fmt.Sprintf("either pass a token or set %s", EnvToken),
		Details: make(map[string]any),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
		Details: make(map[string]any),
	}
}

// ============================================================================
// Predicates
// ============================================================================

func isType(err error, errorType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errorType
	}
	return false
}

func hasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsDecodeError checks if an error is a decode error
func IsDecodeError(err error) bool { return isType(err, ErrorTypeDecode) }

// IsUnknownVariantError checks if an error reports an unsupported discriminator
func IsUnknownVariantError(err error) bool { return hasCode(err, ErrCodeUnknownVariant) }

// IsSchemaError checks if an error is any schema error
func IsSchemaError(err error) bool { return isType(err, ErrorTypeSchema) }

// IsSchemaMismatchError checks if an error is a schema mismatch
func IsSchemaMismatchError(err error) bool { return hasCode(err, ErrCodeSchemaMismatch) }

// IsNotImplementedError checks if an error is a not-implemented error
func IsNotImplementedError(err error) bool { return isType(err, ErrorTypeNotImplemented) }

// IsSessionError checks if an error is a session-state error
func IsSessionError(err error) bool { return isType(err, ErrorTypeSession) }

// IsConnectivityError checks if an error reports an unreachable remote
func IsConnectivityError(err error) bool { return isType(err, ErrorTypeConnectivity) }

// IsRemoteError checks if an error reports a rejected request
func IsRemoteError(err error) bool { return isType(err, ErrorTypeRemote) }

// IsMissingKeyError checks if an error is a missing column lookup
func IsMissingKeyError(err error) bool { return hasCode(err, ErrCodeMissingKey) }

// IsNotFoundError checks if an error is any not-found error
func IsNotFoundError(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return true
	}
	return isType(err, ErrorTypeConfig)
}

// MismatchedColumns returns the columns named by a schema mismatch error.
func MismatchedColumns(err error) []string {
	var e *Error
	if errors.As(err, &e) && e.Code == ErrCodeSchemaMismatch {
		return e.Columns
	}
	return nil
}

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// remote agency API
	ErrCodeAPIRequestFailed       ErrorCode = "API_REQUEST_FAILED"
	ErrCodeAPITimeout             ErrorCode = "API_TIMEOUT"
	ErrCodeResponseSchemaMismatch ErrorCode = "RESPONSE_SCHEMA_MISMATCH"
	ErrCodeResourceNotFound       ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthenticationFailed   ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodePermissionDenied       ErrorCode = "PERMISSION_DENIED"

	// billing
	ErrCodeSessionNotFound       ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeApplicationNotFound   ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeAgentCourseNotFound   ErrorCode = "AGENT_COURSE_NOT_FOUND"
	ErrCodeAgentRequired         ErrorCode = "AGENT_REQUIRED"
	ErrCodeNoStudentsSelected    ErrorCode = "NO_STUDENTS_SELECTED"
	ErrCodeNoCourseRelation      ErrorCode = "NO_COURSE_RELATION_SELECTED"
	ErrCodeStudentAlreadyAdded   ErrorCode = "STUDENT_ALREADY_SELECTED"
	ErrCodeInvoiceLocked         ErrorCode = "INVOICE_LOCKED"
	ErrCodeInvalidAdjustmentType ErrorCode = "INVALID_ADJUSTMENT_TYPE"

	// documents
	ErrCodeDocumentRenderFailed ErrorCode = "DOCUMENT_RENDER_FAILED"
	ErrCodeDocumentWriteFailed  ErrorCode = "DOCUMENT_WRITE_FAILED"

	// roll import
	ErrCodeCSVEmpty          ErrorCode = "CSV_EMPTY"
	ErrCodeCSVMissingColumns ErrorCode = "CSV_MISSING_COLUMNS"
	ErrCodeCSVMalformed      ErrorCode = "CSV_MALFORMED"
	ErrCodeUploadInProgress  ErrorCode = "UPLOAD_IN_PROGRESS"
	ErrCodeRowNotEligible    ErrorCode = "ROW_NOT_ELIGIBLE"

	// infrastructure
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeCacheFailed              ErrorCode = "CACHE_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeAccountingExportFailed   ErrorCode = "ACCOUNTING_EXPORT_FAILED"

	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewAPIRequestFailedError(method, path string, status int, body string) *StandardError {
	// 5xx and 429 are worth retrying, the rest is a caller problem
	retryable := status >= 500 || status == 429 || status == 0
	return newError(ErrCodeAPIRequestFailed, "Agency API request failed",
		fmt.Sprintf("%s %s status=%d body=%s", method, path, status, truncate(body, 256)), retryable).
		WithMetadata("status", status)
}

func NewAPITimeoutError(method, path string) *StandardError {
	return newError(ErrCodeAPITimeout, "Agency API request timed out", fmt.Sprintf("%s %s", method, path), true)
}

func NewResponseSchemaMismatchError(path string, problems []string) *StandardError {
	return newError(ErrCodeResponseSchemaMismatch, "Response did not match expected schema",
		fmt.Sprintf("%s: %s", path, strings.Join(problems, "; ")), false)
}

func NewResourceNotFoundError(resource, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("%s not found", resource), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthenticationFailed, "Authentication failed", details, true)
}

func NewPermissionDeniedError(userID, privilege string) *StandardError {
	return newError(ErrCodePermissionDenied, "Permission denied",
		fmt.Sprintf("user %s lacks %s", userID, privilege), false)
}

func NewSessionNotFoundError(year, session string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Session details not found.",
		fmt.Sprintf("year=%s session=%s", year, session), false)
}

func NewApplicationNotFoundError(studentID string) *StandardError {
	return newError(ErrCodeApplicationNotFound, "This student has no application for the selected course.",
		fmt.Sprintf("studentId=%s", studentID), false)
}

func NewAgentCourseNotFoundError(agentID, courseRelationID string) *StandardError {
	return newError(ErrCodeAgentCourseNotFound, "Agent course configuration not found",
		fmt.Sprintf("agentId=%s courseRelationId=%s", agentID, courseRelationID), false)
}

func NewAgentSessionNotFoundError(session string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Session configuration not found for this year",
		fmt.Sprintf("session=%s", session), false)
}

func NewAgentRequiredError() *StandardError {
	return newError(ErrCodeAgentRequired, "Please select an agent", "", false)
}

func NewNoStudentsSelectedError() *StandardError {
	return newError(ErrCodeNoStudentsSelected, "No students selected", "", false)
}

func NewNoCourseRelationError() *StandardError {
	return newError(ErrCodeNoCourseRelation, "No course relation selected", "", false)
}

func NewStudentAlreadySelectedError(studentID string) *StandardError {
	return newError(ErrCodeStudentAlreadyAdded, "This student is already in your selection.",
		fmt.Sprintf("studentId=%s", studentID), false)
}

func NewInvoiceLockedError(kind, id string) *StandardError {
	return newError(ErrCodeInvoiceLocked, fmt.Sprintf("%s is paid and can no longer be changed", kind),
		fmt.Sprintf("id=%s", id), false)
}

func NewInvalidAdjustmentTypeError(kind, value string) *StandardError {
	return newError(ErrCodeInvalidAdjustmentType, fmt.Sprintf("Unknown %s type", kind),
		fmt.Sprintf("%s=%q, expected flat or percentage", kind, value), false)
}

func NewDocumentRenderFailedError(reference string, err error) *StandardError {
	return newError(ErrCodeDocumentRenderFailed, "Document rendering failed",
		fmt.Sprintf("reference=%s: %v", reference, err), false)
}

func NewDocumentWriteFailedError(path string, err error) *StandardError {
	return newError(ErrCodeDocumentWriteFailed, "Writing document failed",
		fmt.Sprintf("path=%s: %v", path, err), true)
}

func NewCSVEmptyError() *StandardError {
	return newError(ErrCodeCSVEmpty, "CSV file is empty.", "", false)
}

func NewCSVMissingColumnsError(columns []string) *StandardError {
	return newError(ErrCodeCSVMissingColumns, "Missing required columns: "+strings.Join(columns, ", "), "", false)
}

func NewCSVMalformedError(err error) *StandardError {
	return newError(ErrCodeCSVMalformed, "CSV could not be parsed", err.Error(), false)
}

func NewUploadInProgressError(uploadID string) *StandardError {
	return newError(ErrCodeUploadInProgress, "A roll upload is already in progress",
		fmt.Sprintf("uploadId=%s", uploadID), false)
}

func NewRowNotEligibleError(tempID, status string) *StandardError {
	return newError(ErrCodeRowNotEligible, "Row cannot be approved",
		fmt.Sprintf("tempId=%s status=%s", tempID, status), false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

func NewAccountingExportFailedError(invoiceID string, err error) *StandardError {
	return newError(ErrCodeAccountingExportFailed, "Accounting export failed",
		fmt.Sprintf("invoiceId: %s, error: %s", invoiceID, err.Error()), true)
}

func NewInputParsingError(err error) *StandardError {
	return newError(ErrCodeInputParsingFailed, "Failed to parse job variables", err.Error(), false)
}

func NewValidationError(problems []string) *StandardError {
	return newError(ErrCodeValidationFailed, "Input validation failed", strings.Join(problems, "; "), false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// AsStandardError unwraps err looking for a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Code returns the error code carried by err, or INTERNAL_ERROR.
func Code(err error) string {
	if stdErr, ok := AsStandardError(err); ok {
		return string(stdErr.Code)
	}
	return string(ErrCodeInternal)
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAPIRequestFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeCacheFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeAccountingExportFailed,
		ErrCodeAuthenticationFailed,
		ErrCodeDocumentWriteFailed:
		return 3

	case ErrCodeAPITimeout:
		return 2

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"errorCategory":     GetErrorCategory(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeSessionNotFound, ErrCodeApplicationNotFound, ErrCodeAgentCourseNotFound, ErrCodeAgentRequired,
		ErrCodeNoStudentsSelected, ErrCodeNoCourseRelation, ErrCodeStudentAlreadyAdded, ErrCodeInvoiceLocked,
		ErrCodeInvalidAdjustmentType:
		return "BILLING"
	case ErrCodeDocumentRenderFailed, ErrCodeDocumentWriteFailed:
		return "DOCUMENT"
	case ErrCodeCSVEmpty, ErrCodeCSVMissingColumns, ErrCodeCSVMalformed, ErrCodeUploadInProgress, ErrCodeRowNotEligible:
		return "IMPORT"
	case ErrCodeAPIRequestFailed, ErrCodeAPITimeout, ErrCodeResponseSchemaMismatch, ErrCodeResourceNotFound:
		return "API"
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed:
		return "DATABASE"
	case ErrCodeSearchQueryFailed:
		return "SEARCH"
	case ErrCodeNotificationSendFailed, ErrCodeAccountingExportFailed:
		return "NOTIFICATION"
	case ErrCodeAuthenticationFailed, ErrCodePermissionDenied:
		return "AUTH"
	case ErrCodeInputParsingFailed, ErrCodeValidationFailed:
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package models

// PaginationInfo represents pagination information
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Error represents error details
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

// Error codes returned in the ErrorResponse envelope.
const (
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeParseError        = "PARSE_ERROR"
	ErrCodePersistenceFailed = "PERSISTENCE_FAILED"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeFileRequired      = "FILE_REQUIRED"
	ErrCodeInvalidFormat     = "INVALID_FORMAT"
	ErrCodeEmptyFile         = "EMPTY_FILE"
	ErrCodeDuplicateSlug     = "DUPLICATE_SLUG"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeInvalidSignature  = "INVALID_SIGNATURE"
)

// ProductListResponse is the paginated product list envelope.
type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// CategoryListResponse is the paginated category list envelope.
type CategoryListResponse struct {
	Success    bool            `json:"success"`
	Data       []Category      `json:"data"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// OrderListResponse is the paginated order list envelope.
type OrderListResponse struct {
	Success    bool            `json:"success"`
	Data       []Order         `json:"data"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// ActivityLogListResponse is the activity log list envelope.
type ActivityLogListResponse struct {
	Success bool          `json:"success"`
	Data    []ActivityLog `json:"data"`
	Total   int64         `json:"total"`
}

// NewPaginationInfo computes the pagination block for a list response.
func NewPaginationInfo(page, limit int, total int64) *PaginationInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// NewErrorResponse builds the standard error envelope.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: Error{
			Code:    code,
			Message: message,
		},
	}
}

package apperror

// ErrorCode phân loại business error để controller layer map sang HTTP status
type ErrorCode string

const (
	// Not-found errors (404)
	CodePromotionNotFound     ErrorCode = "PROMO_NOT_FOUND"
	CodeProductNotFound       ErrorCode = "PRODUCT_NOT_FOUND"
	CodeProductDetailNotFound ErrorCode = "PRODUCT_DETAIL_NOT_FOUND"
	CodeUserNotFound          ErrorCode = "USER_NOT_FOUND"
	CodeCategoryNotFound      ErrorCode = "CATEGORY_NOT_FOUND"

	// Conflict / cap errors (400, 409)
	CodeLimitPerTransaction ErrorCode = "PROMO_LIMIT_PER_TRANSACTION" // amount > limit_items
	CodeLimitCumulative     ErrorCode = "PROMO_LIMIT_CUMULATIVE"      // existing + amount > limit_items
	CodeDuplicateCode       ErrorCode = "VAL_DUPLICATE_CODE"
	CodeDuplicateEmail      ErrorCode = "VAL_DUPLICATE_EMAIL"

	// Validation errors (400)
	CodeValidationFailed ErrorCode = "VAL_INVALID_INPUT"
	CodeInvalidVariants  ErrorCode = "VAL_INVALID_VARIANTS"
	CodeWrongPassword    ErrorCode = "VAL_WRONG_PASSWORD"
)

// AppError là structured business error, được RETURN, không bao giờ panic.
// Infrastructure errors đi đường error thường (wrapped), không dùng type này.
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NotFound(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: 404}
}

func BadRequest(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: 400}
}

func Conflict(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: 409}
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

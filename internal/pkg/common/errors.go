package common

import (
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Response 轉為 API 錯誤響應
func (e *CustomError) Response(details string) ErrorResponse {
	return ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
)

// 預定義錯誤
var (
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrInternalError   = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
)

// ============================================================================
// 管線逐行失敗與警告代碼（記錄在輸出資料列上，不是程序錯誤）
// ============================================================================

// 入庫驗證拒絕代碼
const (
	RejectMissingRequiredField = "MISSING_REQUIRED_FIELD"
	RejectTypeMismatch         = "TYPE_MISMATCH"
	RejectSectionHeaderRow     = "SECTION_HEADER_ROW"
	RejectUnitInvalidFormat    = "UNIT_INVALID_FORMAT"
)

// 數量解析警告代碼
const (
	WarnNoNumericQuantity       = "NO_NUMERIC_QUANTITY"
	WarnQtyRangeSideInvalid     = "QTY_RANGE_SIDE_INVALID"
	WarnMultipleRangeSeparators = "MULTIPLE_RANGE_SEPARATORS"
)

// 包裝解析警告代碼
const (
	WarnNoPackageSizeFound = "NO_PACKAGE_SIZE_FOUND"
	WarnMultiplierFound    = "MULTIPLIER_FOUND"
	WarnAmbiguousOzLiquid  = "AMBIGUOUS_OZ_LIQUID"
)

// 食材連結失敗代碼
const (
	LinkErrNoMatch             = "NO_MATCH"
	LinkErrMultiIngredientLine = "MULTI_INGREDIENT_LINE"
	LinkErrLowConfidence       = "LOW_CONFIDENCE"
)

// 形態解析失敗代碼
const (
	FormErrNoFormMatch = "NO_FORM_MATCH"
)

// 密度橋接警告代碼
const (
	BridgeWarnSanityRangeEdge     = "SANITY_RANGE_EDGE"
	BridgeWarnPackedStateMismatch = "PACKED_STATE_MISMATCH"
	BridgeWarnTempMismatch        = "TEMP_MISMATCH"
)

// 批次層級警告代碼
const (
	WarnSequenceGap = "SEQUENCE_GAP"
)

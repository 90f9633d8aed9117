package errors

import "net/http"

// 业务错误码
const (
	CodeOK                   = 0
	CodeInvalidParams        = 40001
	CodeUnAuthorized         = 40002
	CodeForbidden            = 40003
	CodeNotFound             = 40004
	CodeRateLimited          = 40029
	CodeInsufficientResource = 40901
	CodeStateConflict        = 40902
	CodeStillInProgress      = 40903
	CodeInternalError        = 50000
	CodeUnavailable          = 50003
)

// CodeToStatus 业务错误码映射为 HTTP 状态码
func CodeToStatus(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParams:
		return http.StatusBadRequest
	case CodeUnAuthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeInsufficientResource, CodeStateConflict, CodeStillInProgress:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	switch {
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

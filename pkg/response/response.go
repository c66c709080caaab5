package response

import "github.com/fatflowers/gymdesk/pkg/apperr"

// New generic response spec
type APIResponseCode int

const (
	APIResponseCodeOK              APIResponseCode = 0
	APIResponseCodeBadRequest      APIResponseCode = 40000
	APIResponseCodeUnauthorized    APIResponseCode = 40100
	APIResponseCodeForbidden       APIResponseCode = 40300
	APIResponseCodeNotFound        APIResponseCode = 40400
	APIResponseCodeConflict        APIResponseCode = 40900
	APIResponseCodeTooManyRequests APIResponseCode = 42900
	APIResponseCodeError           APIResponseCode = 50000
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:              "ok",
	APIResponseCodeBadRequest:      "bad request",
	APIResponseCodeUnauthorized:    "unauthorized",
	APIResponseCodeForbidden:       "forbidden",
	APIResponseCodeNotFound:        "not found",
	APIResponseCodeConflict:        "conflict",
	APIResponseCodeTooManyRequests: "too many requests",
	APIResponseCodeError:           "internal server error",
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT / ErrorMsg helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// Page is the data payload of list endpoints.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with the default message for code and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}

// ErrorMsg returns an error response carrying msg instead of the default text.
func ErrorMsg(code APIResponseCode, msg string) *APIResponse[any] {
	if msg == "" {
		msg = codeToMsg[code]
	}
	return &APIResponse[any]{Code: code, Message: msg}
}

// CodeForKind maps an error kind to its envelope code.
func CodeForKind(k apperr.Kind) APIResponseCode {
	switch k {
	case apperr.KindBadRequest:
		return APIResponseCodeBadRequest
	case apperr.KindUnauthorized:
		return APIResponseCodeUnauthorized
	case apperr.KindForbidden:
		return APIResponseCodeForbidden
	case apperr.KindNotFound:
		return APIResponseCodeNotFound
	case apperr.KindConflict:
		return APIResponseCodeConflict
	default:
		return APIResponseCodeError
	}
}

// FromError builds the envelope and status code for err. Internal errors never
// leak their cause.
func FromError(err error) (int, *APIResponse[any]) {
	e := apperr.From(err)
	return e.Kind.HTTPStatus(), ErrorMsg(CodeForKind(e.Kind), e.Message)
}

// Package response implements the envelope wrapped around every API payload.
//
// On the wire a successful response is {"ok":true,"result":...}; a failed one is
// {"ok":false,"error_code":...,"error_name":...,"error_description":...,"error_message":...}.
package response

import (
	"encoding/json"
	"fmt"

	appErrors "github.com/dpweb/dpweb/pkg/errors"
)

// Empty is the unit payload. It encodes as JSON null.
type Empty struct{}

func (Empty) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (*Empty) UnmarshalJSON([]byte) error { return nil }

// Response is either a success carrying Result, or a failure described by Error.
type Response[T any] struct {
	OK     bool
	Result T
	Error  *ErrorInfo
}

// ErrorInfo identifies the failure kind and the optional free text detail.
// Detail is nil when no detail was attached.
type ErrorInfo struct {
	Kind   appErrors.Kind
	Detail *string
}

// Success wraps a payload.
func Success[T any](result T) Response[T] {
	return Response[T]{OK: true, Result: result}
}

// Fail builds an error response without detail.
func Fail[T any](kind appErrors.Kind) Response[T] {
	return Response[T]{Error: &ErrorInfo{Kind: kind}}
}

// FailWithDetail builds an error response whose detail is the formatted value.
func FailWithDetail[T any](kind appErrors.Kind, detail any) Response[T] {
	s := fmt.Sprint(detail)
	return Response[T]{Error: &ErrorInfo{Kind: kind, Detail: &s}}
}

// FromError converts err into an error response. Non AppError values become Internal.
func FromError[T any](err error) Response[T] {
	appErr := appErrors.FromError(err)
	if appErr == nil {
		appErr = appErrors.ErrInternalServer
	}
	if appErr.HasDetail() {
		return FailWithDetail[T](appErr.Kind, appErr.Detail)
	}
	return Fail[T](appErr.Kind)
}

// StatusCode returns the HTTP status the response is sent with.
func (r Response[T]) StatusCode() int {
	if r.OK || r.Error == nil {
		return 200
	}
	return r.Error.Kind.StatusCode()
}

// Err returns the failure as an AppError, or nil on success.
func (r Response[T]) Err() error {
	if r.OK || r.Error == nil {
		return nil
	}
	appErr := appErrors.New(r.Error.Kind)
	if r.Error.Detail != nil {
		appErr.Detail = *r.Error.Detail
	}
	return appErr
}

type successWire[T any] struct {
	OK     bool `json:"ok"`
	Result T    `json:"result"`
}

type failureWire struct {
	OK               bool    `json:"ok"`
	ErrorCode        uint32  `json:"error_code"`
	ErrorName        string  `json:"error_name"`
	ErrorDescription string  `json:"error_description"`
	ErrorMessage     *string `json:"error_message"`
}

// MarshalJSON renders the wire envelope.
func (r Response[T]) MarshalJSON() ([]byte, error) {
	if r.OK {
		return json.Marshal(successWire[T]{OK: true, Result: r.Result})
	}
	if r.Error == nil {
		return nil, fmt.Errorf("response: failed envelope without error info")
	}
	return json.Marshal(failureWire{
		OK:               false,
		ErrorCode:        r.Error.Kind.Code(),
		ErrorName:        r.Error.Kind.Name(),
		ErrorDescription: r.Error.Kind.Message(),
		ErrorMessage:     r.Error.Detail,
	})
}

// UnmarshalJSON parses the wire envelope. Unknown error codes are rejected.
func (r *Response[T]) UnmarshalJSON(data []byte) error {
	var head struct {
		OK *bool `json:"ok"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.OK == nil {
		return fmt.Errorf("response: missing ok discriminator")
	}

	if *head.OK {
		var wire successWire[T]
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("response: decode result: %w", err)
		}
		*r = Response[T]{OK: true, Result: wire.Result}
		return nil
	}

	var wire failureWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("response: decode error: %w", err)
	}
	kind, err := appErrors.ParseKind(wire.ErrorCode)
	if err != nil {
		return fmt.Errorf("response: %w", err)
	}
	*r = Response[T]{Error: &ErrorInfo{Kind: kind, Detail: wire.ErrorMessage}}
	return nil
}

package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("record not found")

	ErrUnknownStatus           = errors.New("unknown status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrAlreadyAssigned         = errors.New("order item already assigned")
	ErrAssignmentRevoked       = errors.New("assignment already revoked")
	ErrEmployeeInactive        = errors.New("employee is not active")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidArguments        = errors.New("invalid arguments")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}

func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}

func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

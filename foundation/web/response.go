package web

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Error is an error with the HTTP status it should be answered with.
type Error struct {
	Err    error
	Status int
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

// PanicError is a recovered handler panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v", e.Value)
}

type statusError interface {
	error
	HTTPStatus() int
}

func (c *Context) Respond(data any, status int) error {
	c.JSON(status, data)
	return nil
}

// RespondError answers statuses below 500 with the error message. Anything
// else, including errors that carry no status, is logged in full under a
// fresh event id and answered with the error class and message only.
func (c *Context) RespondError(err error) error {
	status, classified := classify(err)

	if status < http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, map[string]any{
			"error":  err.Error(),
			"status": false,
		})
		return nil
	}

	eventID := uuid.NewString()
	if c.log != nil {
		var pe *PanicError
		if errors.As(err, &pe) {
			c.log.Printf("unique_event_id=%s %s %s: panic: %v\n%s", eventID, c.Request.Method, c.Request.URL.Path, pe.Value, pe.Stack)
		} else {
			c.log.Printf("unique_event_id=%s %s %s: %+v", eventID, c.Request.Method, c.Request.URL.Path, err)
		}
	}

	c.AbortWithStatusJSON(status, map[string]any{
		"exception":       className(classified) + ": " + err.Error(),
		"unique_event_id": eventID,
		"status":          false,
	})
	return nil
}

// classify finds the status err maps to and the error that decided it.
func classify(err error) (int, error) {
	var webErr *Error
	if errors.As(err, &webErr) {
		return webErr.Status, webErr.Err
	}

	var se statusError
	if errors.As(err, &se) {
		return se.HTTPStatus(), se
	}

	var pe *PanicError
	if errors.As(err, &pe) {
		return http.StatusInternalServerError, pe
	}

	return http.StatusInternalServerError, errors.Cause(err)
}

func className(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "Error"
	}
	return t.Name()
}

// Panics turns a handler panic into a PanicError so it is answered like any
// other server error.
func Panics() Middleware {
	return func(handler Handler) Handler {
		return func(c *Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Value: r, Stack: debug.Stack()}
				}
			}()
			return handler(c)
		}
	}
}

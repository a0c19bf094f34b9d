package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
)

// validate checks request payloads against their struct tags. Error messages
// use JSON field names so the UI can attach them to inputs.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// DecodeAndValidate unmarshals a command payload into data and validates it.
// On failure an error response has already been sent and false is returned.
func DecodeAndValidate[T any](cmd WSCommand, send chan<- any, data *T) bool {
	if err := json.Unmarshal(cmd.Data, data); err != nil {
		SendError(send, cmd.Type, fmt.Errorf("invalid JSON: %w", err))
		return false
	}
	if err := validate.Struct(data); err != nil {
		SendValidationErrors(send, cmd.Type, err)
		return false
	}
	return true
}

// HandleCommand is the decode-validate-process-respond pipeline shared by
// commands with a typed payload and no response body.
func HandleCommand[T any](cmd WSCommand, send chan<- any, process func(*T) error) {
	var data T
	if !DecodeAndValidate(cmd, send, &data) {
		return
	}
	if err := process(&data); err != nil {
		SendError(send, cmd.Type, err)
		return
	}
	SendSuccess(send, cmd.Type, nil)
}

// HandleActionAsync runs a blocking action off the event loop and delivers
// its result as a command response. Panics are contained per action.
func HandleActionAsync(cmd WSCommand, send chan<- any, action func() (any, error)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in async handler", "command", cmd.Type, "panic", r)
				SendError(send, cmd.Type, fmt.Errorf("internal error"))
			}
		}()

		result, err := action()
		if err != nil {
			SendError(send, cmd.Type, err)
			return
		}
		SendSuccess(send, cmd.Type, result)
	}()
}

// Every command answer is "<command>_result" with a success flag; data and
// error are mutually exclusive extras.

// SendSuccess delivers a success response, with optional response data.
func SendSuccess(send chan<- any, cmdType string, data any) {
	result := newResult(cmdType, true)
	if data != nil {
		result["data"] = data
	}
	deliver(send, cmdType, result)
}

// SendError delivers a failure response carrying the error message.
func SendError(send chan<- any, cmdType string, err error) {
	result := newResult(cmdType, false)
	result["error"] = err.Error()
	deliver(send, cmdType, result)
}

// SendValidationErrors delivers a failure response with per-field details.
func SendValidationErrors(send chan<- any, cmdType string, err error) {
	verr := types.NewValidationError()
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, e := range fieldErrors {
			verr.Add(e.Field(), describeFieldError(e), e.Value())
		}
	} else {
		verr.Add("", err.Error(), nil)
	}

	result := newResult(cmdType, false)
	result["error"] = verr
	deliver(send, cmdType, result)
}

func newResult(cmdType string, success bool) map[string]any {
	return map[string]any{
		"type":    cmdType + "_result",
		"success": success,
	}
}

// deliver sends without blocking; a full channel means the client writer has
// stalled and the response is dropped.
func deliver(send chan<- any, cmdType string, msg any) {
	select {
	case send <- msg:
	default:
		slog.Warn("dropping response: send channel full or closed", "type", cmdType)
	}
}

// describeFieldError turns a tag failure into a short human-readable message.
func describeFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

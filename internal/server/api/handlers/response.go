package handlers

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Every response, success or error, uses the same envelope shape: a success
// flag plus either a data payload or an error string.

// DataBody is the success envelope carrying a payload.
type DataBody[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// DataOutput wraps DataBody for huma.
type DataOutput[T any] struct {
	Body DataBody[T]
}

func OK[T any](data T) *DataOutput[T] {
	return &DataOutput[T]{Body: DataBody[T]{Success: true, Data: data}}
}

// MsgBody is the success envelope for operations with no data to return.
type MsgBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type MsgOutput struct {
	Body MsgBody
}

func Msg(message string) *MsgOutput {
	return &MsgOutput{Body: MsgBody{Success: true, Message: message}}
}

// APIError is the error envelope. It implements huma.StatusError so huma
// serializes it directly as the response body.
type APIError struct {
	status  int
	Success bool   `json:"success"`
	Err     string `json:"error"`
}

func (e *APIError) Error() string  { return e.Err }
func (e *APIError) GetStatus() int { return e.status }

// InitErrors replaces huma's default error factory (RFC 7807 problem
// details) with the envelope above. Call once before registering operations.
func InitErrors() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		var sb strings.Builder
		sb.WriteString(msg)
		for i, e := range errs {
			if i == 0 {
				sb.WriteString(": ")
			} else {
				sb.WriteString("; ")
			}
			sb.WriteString(e.Error())
		}
		return &APIError{status: status, Success: false, Err: sb.String()}
	}
}

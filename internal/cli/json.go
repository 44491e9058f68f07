package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/aegisops/aegis/internal/errors"
)

// Machine mode flag: when true, commands print a JSON envelope instead of
// styled text.
var machineMode bool

// MachineMode returns true if machine-readable output is enabled.
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Machine-readable error codes.
const (
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "CONFIG_INVALID"
	ErrCodeOperationUnknown = "OPERATION_UNKNOWN"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeCommandFailed    = "COMMAND_FAILED"
	ErrCodeTelemetry        = "TELEMETRY_UNAVAILABLE"
	ErrCodeUnknown          = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFailure writes an unsuccessful response that still carries data,
// e.g. an operation that ran but failed.
func WriteJSONFailure(w io.Writer, data interface{}, code, message string) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Data:    data,
		Error:   &JSONError{Code: code, Message: message},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var aegisErr *errors.Error
	if stderrors.As(err, &aegisErr) {
		return &JSONError{
			Code:       mapErrorCode(aegisErr.Code, aegisErr.Message),
			Message:    aegisErr.Message,
			Suggestion: aegisErr.Suggestion,
		}
	}

	return &JSONError{Code: ErrCodeUnknown, Message: err.Error()}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	msgLower := strings.ToLower(message)
	switch internalCode {
	case errors.ErrConfig:
		if strings.Contains(msgLower, "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrInput:
		if strings.Contains(msgLower, "no operation named") {
			return ErrCodeOperationUnknown
		}
		return ErrCodeInvalidInput
	case errors.ErrExec:
		return ErrCodeCommandFailed
	case errors.ErrTelemetry:
		return ErrCodeTelemetry
	}
	return ErrCodeUnknown
}

package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Evaluation errors
const (
	// ErrCodeEmptyAggregate indicates a fold was finalized without any input.
	ErrCodeEmptyAggregate ErrorCode = "EMPTY_AGGREGATE"
	// ErrCodeStageFailed indicates a caller-supplied function failed while an
	// element was being pulled through a pipeline stage.
	ErrCodeStageFailed ErrorCode = "STAGE_FAILED"
)

// Input errors
const (
	// ErrCodeInvalidArgument indicates an operator was given an unusable argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Data errors
const (
	// ErrCodeUnavailable indicates an accessor could not produce a value.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
	// ErrCodeMalformedRecord indicates a source record could not be decoded.
	ErrCodeMalformedRecord ErrorCode = "MALFORMED_RECORD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var callerCodes = map[ErrorCode]bool{
	ErrCodeStageFailed:     true,
	ErrCodeInvalidArgument: true,
	ErrCodeInvalidConfig:   true,
	ErrCodeUnavailable:     true,
	ErrCodeMalformedRecord: true,
}

// IsCallerCode returns true if the code points at caller input or a
// caller-supplied function rather than the engine itself.
func IsCallerCode(code ErrorCode) bool {
	return callerCodes[code]
}

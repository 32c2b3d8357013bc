// Package errors provides the structured error type used across lazyq.
//
// Every failure the engine reports is an *AppError carrying a machine-readable
// ErrorCode. Errors raised by caller-supplied functions are wrapped with
// StageFailed so the original cause stays reachable through errors.Is and
// errors.As.
package errors

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Check failure (rejected statements, failed scenarios, diverged replay)
	ExitCommandError = 2 // Command error (invalid paths, database not found, etc.)
)

// Error code constants - unified across all CLI commands.
// Validator diagnostics keep the compiler's E1xx codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No statement files found
	ErrCodeLoadFailed  = "E004" // File or CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStore       = "E008" // Database open or read failed
	ErrCodeNoSession   = "E009" // Session not found

	ErrCodeStatement = "E010" // Statement rejected
	ErrCodeQuery     = "E011" // Malformed query
	ErrCodeDiverged  = "E012" // Replay rebuilt a different model
	ErrCodeScenario  = "E013" // Scenario failed
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`            // "ok" or "error"
	Data    any       `json:"data,omitempty"`    // success payload, or all errors on failure
	Error   *CLIError `json:"error,omitempty"`   // first error
	Session string    `json:"session,omitempty"` // store session the command used
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E010", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// IsJSON reports whether output is JSON.
func (f *OutputFormatter) IsJSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.IsJSON() {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.IsJSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail outputs an error and returns the ExitError the command should
// return.
func (f *OutputFormatter) Fail(exitCode int, code, message string, details any) error {
	_ = f.Error(code, message, details)
	return NewExitError(exitCode, fmt.Sprintf("%s: %s", code, message))
}

// Errors outputs several errors. In JSON the first is the response error
// and all of them are the data.
func (f *OutputFormatter) Errors(errs []CLIError) error {
	if len(errs) == 0 {
		return nil
	}
	if f.IsJSON() {
		return f.encode(CLIResponse{Status: "error", Error: &errs[0], Data: errs})
	}
	for _, e := range errs {
		fmt.Fprintf(f.Writer, "  %s: %s\n", e.Code, e.Message)
	}
	return nil
}

// JSON writes resp indented. Callers use it when a response needs both
// data and an error.
func (f *OutputFormatter) JSON(resp CLIResponse) error {
	return f.encode(resp)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

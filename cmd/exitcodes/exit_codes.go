package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeHandledError indicates that the error was already reported through the logger, so the
	// top-level handler should not print it a second time.
	ExitCodeHandledError = 6

	// ExitCodeCompilationFailed indicates compilation of the project's contracts failed. Note that an
	// error with error code ExitCodeGeneralError and ExitCodeCompilationFailed are mutually exclusive
	// errors
	ExitCodeCompilationFailed = 7
)

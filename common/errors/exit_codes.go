package errors

type ExitCode int

const (
	// At least one test failed or could not be scheduled.
	TestFailureExitCode ExitCode = 1

	// Remaining tests could never fit in the nodes left free.
	DeadlockExitCode ExitCode = 2

	ConfigFailureExitCode ExitCode = 70
	PlanFailureExitCode   ExitCode = 71

	// The run was interrupted before every test finished.
	CancelledExitCode ExitCode = 130
)

package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file, missing API key)
	ExitDataError   = 3 // Data error (unreadable report, header not found)
)

package main

// Exit codes for the rapid-mcp CLI.
const (
	ExitOK          = 0 // Command completed.
	ExitInvalidArgs = 1 // Invalid arguments, config, or an unloadable catalog.
	ExitValidation  = 2 // validate or render found findings to fix.
	ExitServe       = 3 // The stdio server terminated abnormally.
)

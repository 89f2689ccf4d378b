package taskcli

// Export internal helpers for testing.
var (
	Sanitize     = sanitize
	TruncateTail = truncateTail
)

package gemini

// Test hooks.
var (
	NewStreamFromIter = newStream
	ParseSchema       = parseSchema
	BuildConfig       = buildConfig
	ConvertMessages   = convertMessages
)

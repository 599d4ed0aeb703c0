package log

// std is the default logger handed out by Default.
var std = New()

// Default returns the standard logger. Prefer passing a Logger explicitly;
// the default exists for entrypoints.
func Default() Logger {
	return std
}

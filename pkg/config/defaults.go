package config

// Replay defaults.
const (
	DefaultTypingCommand   = "textinput"
	DefaultUnknownCommand  = "unknown"
	DefaultSplitReusedKits = true
	DefaultStripArguments  = true
	DefaultMaxLineSize     = "1MiB"
)

// DefaultEditCommands are the command prefixes that make a user an editor.
var DefaultEditCommands = []string{"textinput", "removetextcontext"}

// DefaultFamilies are the parameterized command families collapsed to their
// verb.
var DefaultFamilies = []string{"load", "save", "exportas"}

// Aggregate defaults.
const (
	DefaultSubmatrixSize     = 10
	DefaultTypingBucketWidth = 1.0
	DefaultTypingBucketCount = 20
	DefaultHeatMode          = "continuous"
)

// Report defaults.
const (
	DefaultFormat = "text"
	DefaultTheme  = "light"
)

// Logging and telemetry defaults.
const (
	DefaultLogLevel    = "info"
	DefaultSampleRatio = 1.0
)

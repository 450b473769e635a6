package types

// Logger is a simple logging interface used throughout urlcheck
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

const (
	// FEATURE_COUNT is the number of fields in a URL feature vector
	FEATURE_COUNT = 4

	// MODEL_FILE is the default model artifact filename
	MODEL_FILE = "phishing_model.json"

	// MODEL_FORMAT identifies urlcheck model artifacts
	MODEL_FORMAT = "urlcheck-model"

	// MODEL_VERSION is the current artifact format version
	MODEL_VERSION = 1
)

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Printf(format string, v ...interface{}) {}
func (NopLogger) Println(v ...interface{})               {}

package protocol

// ModelFiles maps the whisper model names accepted by the worker to their
// on-disk ggml filenames. The order of KnownModels matches the worker's
// quality fallback chain, largest first.
var ModelFiles = map[string]string{
	"tiny":   "ggml-tiny.bin",
	"base":   "ggml-base.bin",
	"small":  "ggml-small.bin",
	"medium": "ggml-medium.bin",
	"large":  "ggml-large-v3.bin",
}

// KnownModels lists the model names in fallback order.
var KnownModels = []string{"large", "medium", "small", "base", "tiny"}

// IsKnownModel reports whether name is a model the worker understands.
func IsKnownModel(name string) bool {
	_, ok := ModelFiles[name]
	return ok
}

package log

import "sort"

// Field keys shared by the components.
const (
	FieldKeyEnv      = "env"
	FieldKeyCommand  = "command"
	FieldKeyARN      = "arn"
	FieldKeyTFBinary = "tf-binary"
)

// Fields type, used to pass to `WithFields`.
type Fields map[string]any

// Keys returns the sorted field keys.
func (fields Fields) Keys() []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Package codec selects the encoding used for machine-readable clustering
// results.
//
// Both built-in codecs produce plain JSON; they differ only in the encoder
// backing them. Decoders written against one can read the other's output.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
//
// The CLI uses it to resolve the -codec flag.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "go-json":
		return GoJSON{}, nil
	case "json":
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

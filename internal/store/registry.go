package store

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/smileynet/contactbook/internal/contact"
)

// Codec converts between the contact collection and a file format.
type Codec interface {
	Name() string
	Encode(w io.Writer, records []contact.Contact) error
	Decode(data []byte) ([]contact.Contact, error)
}

// Registry maps format names to codecs and file extensions to formats.
// It is not safe for concurrent use; registration should happen at startup.
type Registry struct {
	codecs     map[string]Codec
	extensions map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		codecs:     make(map[string]Codec),
		extensions: make(map[string]string),
	}
}

// DefaultRegistry returns a Registry with the json and csv codecs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(JSONCodec{}, ".json")
	r.Register(CSVCodec{}, ".csv")
	return r
}

// Register adds a codec under its name and claims the given extensions.
// Overwrites if the name already exists.
// Panics if c is nil or has an empty name (programmer error).
func (r *Registry) Register(c Codec, exts ...string) {
	if c == nil {
		panic("store: Register called with nil codec")
	}
	if c.Name() == "" {
		panic("store: Register called with unnamed codec")
	}
	r.codecs[c.Name()] = c
	for _, ext := range exts {
		r.extensions[strings.ToLower(ext)] = c.Name()
	}
}

// Codec returns the codec registered under name.
func (r *Registry) Codec(name string) (Codec, error) {
	c, ok := r.codecs[strings.ToLower(name)]
	if !ok {
		return nil, &UnknownFormatError{Name: name, Available: r.Formats()}
	}
	return c, nil
}

// ForPath returns the codec claiming path's extension.
func (r *Registry) ForPath(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	name, ok := r.extensions[ext]
	if !ok {
		return nil, &UnknownFormatError{Name: ext, Available: r.Formats()}
	}
	return r.codecs[name], nil
}

// Formats returns registered format names in sorted order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownFormatError indicates a format name or extension is not registered.
type UnknownFormatError struct {
	Name      string
	Available []string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown format %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

package builder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"gopkg.in/yaml.v3"

	"mercator-hq/dashgate/pkg/store"
)

// ErrInvalidDefinition is returned when a stored definition cannot be
// decoded or compiled.
var ErrInvalidDefinition = errors.New("invalid application definition")

// Definition is the decoded application envelope.
type Definition struct {
	// Title is a human readable application name.
	Title string `yaml:"title"`

	// Layout is the static page served at the application root.
	Layout string `yaml:"layout"`

	// Script is Lua source. Optional.
	Script string `yaml:"script,omitempty"`
}

// Validate checks that the definition can produce a handler.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.Layout) == "" && strings.TrimSpace(d.Script) == "" {
		return fmt.Errorf("%w: layout or script is required", ErrInvalidDefinition)
	}
	return nil
}

// ServerConfig binds a built application to the tenant it serves.
type ServerConfig struct {
	// TenantID is the identifier the application is mounted under.
	TenantID string

	// PathPrefix is the public URL prefix, "/<TenantID>/".
	PathPrefix string
}

// NewServerConfig returns the server configuration for tenant id.
func NewServerConfig(id string) ServerConfig {
	return ServerConfig{TenantID: id, PathPrefix: "/" + id + "/"}
}

// Parse decodes a plain YAML envelope.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Decode decodes the definition carried by rec.
func Decode(rec *store.Record) (*Definition, error) {
	data, err := payload(rec)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// ExtractLayout returns only the layout of the definition carried by rec.
// The script is neither validated nor compiled.
func ExtractLayout(rec *store.Record) (string, error) {
	data, err := payload(rec)
	if err != nil {
		return "", err
	}

	var partial struct {
		Layout string `yaml:"layout"`
	}
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return partial.Layout, nil
}

// Encode serializes def, brotli-compressing it when compress is set. It
// returns the blob and the matching store encoding.
func Encode(def *Definition, compress bool) ([]byte, string, error) {
	if err := def.Validate(); err != nil {
		return nil, "", err
	}

	data, err := yaml.Marshal(def)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling definition: %w", err)
	}
	if !compress {
		return data, store.EncodingIdentity, nil
	}

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(data); err != nil {
		return nil, "", fmt.Errorf("compressing definition: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("compressing definition: %w", err)
	}
	return buf.Bytes(), store.EncodingBrotli, nil
}

// payload returns the plain YAML bytes of rec.
func payload(rec *store.Record) ([]byte, error) {
	if !rec.HasDefinition() {
		return nil, fmt.Errorf("%w: empty definition", ErrInvalidDefinition)
	}

	switch rec.Encoding {
	case "", store.EncodingIdentity:
		return rec.Definition, nil
	case store.EncodingBrotli:
		data, err := io.ReadAll(brotli.NewReader(bytes.NewReader(rec.Definition)))
		if err != nil {
			return nil, fmt.Errorf("%w: decompressing: %v", ErrInvalidDefinition, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrInvalidDefinition, rec.Encoding)
	}
}

package config

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotImplemented = errors.New("config: format not implemented")
	ErrInvalidInput   = errors.New("config: content does not match format")
	ErrEmptyFile      = errors.New("config: file is empty")
	ErrRead           = errors.New("config: cannot read file")
)

// Format is a supported configuration encoding.
type Format int

const (
	JSON Format = iota + 1
	YAML
	XML
	TOML
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "JSON"
	case YAML:
		return "YAML"
	case XML:
		return "XML"
	case TOML:
		return "TOML"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "xml":
		return XML, nil
	case "toml":
		return TOML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrNotImplemented, raw)
	}
}

func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrNotImplemented, path)
	}
	return ParseFormat(ext)
}

// DecodeError carries the content that failed to decode.
type DecodeError struct {
	Format Format
	Data   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("config: cannot decode data as %s: %v\n\n%s", e.Format, e.Err, e.Data)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrInvalidInput, e.Err}
}

// Decode parses data into out.
func (f Format) Decode(data []byte, out any) error {
	var err error
	switch f {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(out)
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(out)
	case XML:
		err = xml.Unmarshal(data, out)
	case TOML:
		var meta toml.MetaData
		meta, err = toml.Decode(string(data), out)
		if err == nil {
			if undecoded := meta.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown keys %v", undecoded)
			}
		}
	default:
		return fmt.Errorf("%w: %s", ErrNotImplemented, f)
	}
	if err != nil {
		return &DecodeError{Format: f, Data: string(data), Err: err}
	}
	return nil
}

// DecodeFile reads path and decodes it as f.
func DecodeFile(path string, f Format, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w (%s): %w", ErrRead, path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	if err := f.Decode(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

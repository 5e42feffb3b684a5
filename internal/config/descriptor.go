package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/edgerealm/internal/realm"
)

var ErrInvalidDescriptor = errors.New("config: invalid realm descriptor")

// realmFile is the on-disk shape; XML needs a root element.
type realmFile struct {
	XMLName          xml.Name `json:"-" yaml:"-" toml:"-" xml:"realm"`
	realm.Descriptor `yaml:",inline"`
}

// LoadDescriptor reads a realm descriptor, picking the format from the
// file extension.
func LoadDescriptor(path string) (realm.Descriptor, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return realm.Descriptor{}, err
	}
	return LoadDescriptorAs(path, f)
}

func LoadDescriptorAs(path string, f Format) (realm.Descriptor, error) {
	var raw realmFile
	if err := DecodeFile(path, f, &raw); err != nil {
		return realm.Descriptor{}, err
	}
	desc := realm.NewDescriptor(
		strings.TrimSpace(raw.Name),
		strings.TrimSpace(raw.Address),
		raw.Port,
	)
	if err := ValidateDescriptor(desc); err != nil {
		return realm.Descriptor{}, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}

func ValidateDescriptor(desc realm.Descriptor) error {
	if strings.TrimSpace(desc.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDescriptor)
	}
	if strings.TrimSpace(desc.Address) == "" {
		return fmt.Errorf("%w: missing address", ErrInvalidDescriptor)
	}
	return nil
}

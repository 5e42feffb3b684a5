package config

import (
	"fmt"
	"os"
)

func Template(f Format) (string, error) {
	switch f {
	case JSON:
		return jsonTemplate, nil
	case YAML:
		return yamlTemplate, nil
	case XML:
		return xmlTemplate, nil
	case TOML:
		return tomlTemplate, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNotImplemented, f)
	}
}

// WriteTemplate writes an example descriptor to path in the format implied
// by its extension.
func WriteTemplate(path string, overwrite bool) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	template, err := Template(f)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const jsonTemplate = `{
  "name": "realm.local",
  "address": "127.0.0.1",
  "port": 5555
}
`

const yamlTemplate = `name: realm.local
address: 127.0.0.1
port: 5555
`

const xmlTemplate = `<realm>
  <name>realm.local</name>
  <address>127.0.0.1</address>
  <port>5555</port>
</realm>
`

const tomlTemplate = `name = "realm.local"
address = "127.0.0.1"
port = 5555
`

package mapping

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Format is the serialization of a mapping file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension, YAML unless it is .json.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode reads and validates a configuration.
func Decode(r io.Reader, format Format) (*Configuration, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "can not read mapping configuration")
	}

	cfg := &Configuration{}
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, errors.Errorf("unsupported mapping format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "can not parse %s mapping configuration", format)
	}

	if cfg.Options == nil {
		cfg.Options = make(map[string]interface{})
	}
	normalizeOptions(cfg.Options)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg in the given format.
func Encode(w io.Writer, cfg *Configuration, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(cfg, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(cfg)
	default:
		return errors.Errorf("unsupported mapping format %q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "can not serialize %s mapping configuration", format)
	}
	_, err = w.Write(data)
	return err
}

// Load reads a mapping file, choosing the format by extension.
func Load(path string) (*Configuration, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can not open mapping file %s", path)
	}
	defer file.Close()

	cfg, err := Decode(file, FormatOf(path))
	if err != nil {
		return nil, errors.WithMessagef(err, "mapping file %s", path)
	}
	return cfg, nil
}

// Save writes a mapping file, choosing the format by extension.
func Save(path string, cfg *Configuration) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "can not create mapping file %s", path)
	}
	if err := Encode(file, cfg, FormatOf(path)); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// normalizeOptions turns the map[interface{}]interface{} values produced by
// yaml.v2 into map[string]interface{} so that options compare the same
// whichever format they came from.
func normalizeOptions(options map[string]interface{}) {
	for k, v := range options {
		options[k] = normalizeValue(v)
	}
}

func normalizeValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, val := range typed {
			out[toString(k)] = normalizeValue(val)
		}
		return out
	case []interface{}:
		for i, val := range typed {
			typed[i] = normalizeValue(val)
		}
		return typed
	}
	return v
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, _ := json.Marshal(v)
	return string(data)
}

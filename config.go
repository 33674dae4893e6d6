package main

import (
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"unicode/utf8"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/and-hom/tabconv/adapter"
	"github.com/and-hom/tabconv/sqldb"
)

const CONFIG_FILE_NAME = ".tabconv.yaml"

type Config struct {
	DbUrl string `yaml:"dbUrl,omitempty"`

	Schema    string          `yaml:"schema,omitempty"`
	Table     string          `yaml:"table,omitempty"`
	TableMode sqldb.TableMode `yaml:"tableMode,omitempty"`

	Input        string `yaml:"input,omitempty"`
	InputFormat  string `yaml:"inputFormat,omitempty"`
	Output       string `yaml:"output,omitempty"`
	OutputFormat string `yaml:"outputFormat,omitempty"`
	Mapping      string `yaml:"mapping,omitempty"`

	HasHeader      bool   `yaml:"hasHeader"`
	Delimiter      string `yaml:"delimiter,omitempty"`
	Encoding       string `yaml:"encoding,omitempty"`
	CreateDefaults bool   `yaml:"createDefaults"`
	OnError        string `yaml:"onError,omitempty"`
	SampleRows     int    `yaml:"sampleRows,omitempty"`
}

func (this Config) String() string {
	masked := this
	if masked.DbUrl != "" {
		masked.DbUrl = redactUrl(masked.DbUrl)
	}
	b, err := yaml.Marshal(masked)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

func (this Config) Validate() error {
	if this.Delimiter == "" {
		return errors.New("should set CSV delimiter")
	} else if this.Delimiter != `\t` && this.Delimiter != "tab" && utf8.RuneCountInString(this.Delimiter) > 1 {
		return errors.Errorf("CSV delimiter should be a single char: %s", this.Delimiter)
	}
	if _, err := sqldb.ParseTableMode(string(this.TableMode)); err != nil {
		return err
	}
	if _, err := adapter.ParseErrorPolicy(this.OnError); err != nil {
		return err
	}
	for _, format := range []string{this.InputFormat, this.OutputFormat} {
		if format == "" {
			continue
		}
		if _, err := adapter.ForFormat(format); err != nil {
			return err
		}
	}
	if this.Input == "" && this.DbUrl == "" {
		return errors.New("nothing to read: set an input file or a database url")
	}
	return nil
}

// FillMissingFromPreset copies the preset value of every empty string field.
func (this *Config) FillMissingFromPreset(preset Config) {
	thisVal := reflect.ValueOf(this).Elem()
	presetVal := reflect.ValueOf(preset)

	for i := 0; i < thisVal.NumField(); i++ {
		thisField := thisVal.Field(i)
		presetField := presetVal.Field(i)
		if thisField.Kind() == reflect.String && thisField.String() == "" && presetField.String() != "" {
			thisField.SetString(presetField.String())
		}
	}
}

const DEFAULT_PRESET = "default"

type ConfigStorage struct {
	Presets map[string]Config `yaml:"presets"`

	path string
}

func NewConfigStorage(path string) ConfigStorage {
	return ConfigStorage{Presets: make(map[string]Config), path: path}
}

// LoadConfigStorage reads the presets from path. A missing or broken file
// gives an empty storage.
func LoadConfigStorage(path string) ConfigStorage {
	configStorage := NewConfigStorage(path)
	if path == "" {
		return configStorage
	}
	confBytes, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debugf("No config file %s", path)
		return configStorage
	} else if err != nil {
		log.Warnf("Can not load bytes from config file %s: %v", path, err)
		return configStorage
	}
	if err := yaml.Unmarshal(confBytes, &configStorage); err != nil {
		log.Warnf("Can not parse yaml from config file %s: %v", path, err)
		return NewConfigStorage(path)
	}

	if configStorage.Presets == nil {
		configStorage.Presets = make(map[string]Config)
	}
	return configStorage
}

func (this ConfigStorage) Save() error {
	if this.path == "" {
		return nil
	}
	b, err := yaml.Marshal(this)
	if err != nil {
		return errors.Wrap(err, "can not serialize yaml")
	}
	if err := ioutil.WriteFile(this.path, b, 0600); err != nil {
		return errors.Wrapf(err, "can not write config file %s", this.path)
	}
	return nil
}

func defaultConfigPath() string {
	usr, err := user.Current()
	if err != nil {
		log.Warnf("Can not get current user info: %v", err)
		return ""
	}
	return filepath.Join(usr.HomeDir, CONFIG_FILE_NAME)
}

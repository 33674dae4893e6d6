package main

import (
	log "github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/and-hom/tabconv/sqldb"
)

func LoadConfig(c *cli.Context) (Config, error) {
	loadedConfig := loadFromCliArgs(c)
	configStorage := LoadConfigStorage(defaultConfigPath())
	preset := getPreset(c, configStorage)

	loadedConfig.FillMissingFromPreset(preset)
	if err := loadedConfig.Validate(); err != nil {
		return Config{}, err
	}

	if setPreset(c, configStorage, loadedConfig) {
		if err := configStorage.Save(); err != nil {
			log.Warn(err)
		}
	}
	return loadedConfig, nil
}

func loadFromCliArgs(c *cli.Context) Config {
	schemaName, tableName := sqldb.SplitTableName(c.String(flagName(TABLE_FLAG)))
	return Config{
		DbUrl: c.String(flagName(DB_URL_FLAG)),

		Schema:    schemaName,
		Table:     tableName,
		TableMode: sqldb.TableMode(c.String(flagName(TABLE_MODE_FLAG))),

		Input:        c.String(flagName(INPUT_FLAG)),
		InputFormat:  c.String(flagName(INPUT_FORMAT_FLAG)),
		Output:       c.String(flagName(OUTPUT_FLAG)),
		OutputFormat: c.String(flagName(OUTPUT_FORMAT_FLAG)),
		Mapping:      c.String(flagName(MAPPING_FLAG)),

		HasHeader:      c.BoolT(flagName(HEADER_FLAG)),
		Delimiter:      c.String(flagName(DELIMITER_FLAG)),
		Encoding:       c.String(flagName(ENCODING_FLAG)),
		CreateDefaults: c.Bool(flagName(CREATE_DEFAULTS_FLAG)),
		OnError:        c.String(flagName(ON_ERROR_FLAG)),
		SampleRows:     c.Int(flagName(SAMPLE_ROWS_FLAG)),
	}
}

func getPreset(c *cli.Context, configStorage ConfigStorage) Config {
	presetName := c.String(flagName(PRESET_FLAG))
	if presetName == "" {
		presetName = DEFAULT_PRESET
	}
	preset, found := configStorage.Presets[presetName]
	if !found {
		if presetName != DEFAULT_PRESET {
			log.Warnf("No preset found by key %s", presetName)
		}
		return Config{}
	}
	return preset
}

func setPreset(c *cli.Context, configStorage ConfigStorage, preset Config) bool {
	storePreset := c.String(flagName(STORE_PRESET_FLAG))
	if storePreset == "" {
		return false
	}
	configStorage.Presets[storePreset] = preset
	return true
}

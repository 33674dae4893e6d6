package main

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/machinebox/progress"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xo/dburl"

	"github.com/and-hom/tabconv/adapter"
	"github.com/and-hom/tabconv/mapping"
	"github.com/and-hom/tabconv/sqldb"
	"github.com/and-hom/tabconv/sqldb/mysql"
	"github.com/and-hom/tabconv/sqldb/postgres"
	"github.com/and-hom/tabconv/table"
)

const STDIO = "--"

// Converter reads one table and writes it somewhere else as Config says.
type Converter struct {
	Config Config
}

func (this *Converter) Perform() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := this.mappingConfig()
	if err != nil {
		return err
	}

	var (
		db     *sql.DB
		dbTool sqldb.DbTool
	)
	if this.Config.DbUrl != "" {
		if db, dbTool, err = this.connect(cfg); err != nil {
			return err
		}
		defer db.Close()
	}

	started := time.Now()
	var t *table.Table
	if this.Config.Input != "" {
		t, err = this.readInput(cfg)
	} else {
		tableName, nameErr := this.tableName(dbTool, cfg)
		if nameErr != nil {
			return nameErr
		}
		t, err = sqldb.ReadTable(ctx, dbTool, tableName, cfg)
	}
	if err != nil {
		return err
	}
	log.Infof("Read %d rows of %d columns in %s", t.RowCount(), t.ColumnCount(), time.Since(started))

	if dbTool != nil && this.Config.Input != "" && this.Config.Output == "" {
		tableName, err := this.tableName(dbTool, cfg)
		if err != nil {
			return err
		}
		mode := this.Config.TableMode
		if mode == "" {
			if mode, err = sqldb.ParseTableMode(cfg.String(mapping.OptTableMode, "")); err != nil {
				return err
			}
		}
		return sqldb.WriteTable(ctx, dbTool, tableName, mode, t)
	}
	return this.writeOutput(t, cfg)
}

// Infer prints the schema detected in the input.
func (this *Converter) Infer(w io.Writer) error {
	if this.Config.Input == "" {
		return errors.Errorf("should set input with flag %s", flagName(INPUT_FLAG))
	}
	cfg, err := this.mappingConfig()
	if err != nil {
		return err
	}
	t, err := this.readInput(cfg)
	if err != nil {
		return err
	}
	adapter.WriteSchema(w, t.Schema())
	return nil
}

// mappingConfig loads the mapping file, if any. Options the file does not
// set are taken from the flags.
func (this *Converter) mappingConfig() (*mapping.Configuration, error) {
	var cfg *mapping.Configuration
	if this.Config.Mapping != "" {
		var err error
		if cfg, err = mapping.Load(this.Config.Mapping); err != nil {
			return nil, err
		}
	} else {
		cfg = mapping.NewConfiguration(this.Config.Input)
	}

	setDefault := func(key string, value interface{}) {
		if _, ok := cfg.Options[key]; !ok {
			cfg.SetOption(key, value)
		}
	}
	setDefault(mapping.OptHasHeaderRow, this.Config.HasHeader)
	setDefault(mapping.OptDelimiter, this.Config.Delimiter)
	setDefault(mapping.OptEncoding, this.Config.Encoding)
	setDefault(mapping.OptCreateDefaultValue, this.Config.CreateDefaults)
	if this.Config.OnError != "" {
		setDefault(mapping.OptOnError, this.Config.OnError)
	}
	if this.Config.SampleRows > 0 {
		setDefault(mapping.OptSampleRows, this.Config.SampleRows)
	}
	return cfg, nil
}

func (this *Converter) connect(cfg *mapping.Configuration) (*sql.DB, sqldb.DbTool, error) {
	dbUrl, err := dburl.Parse(this.Config.DbUrl)
	if err != nil {
		return nil, nil, errors.Wrap(err, "can not parse DB url")
	}
	if dbUrl, err = initializeCredentialsIfMissing(dbUrl); err != nil {
		return nil, nil, errors.Wrap(err, "can not parse DB url")
	}
	db, err := sqldb.Open(dbUrl)
	if err != nil {
		return nil, nil, err
	}
	dbTool, err := makeDbTool(db, dbUrl.Driver, cfg.Int(mapping.OptBatchSize, 0))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, dbTool, nil
}

func makeDbTool(db *sql.DB, driver string, batchSize int) (sqldb.DbTool, error) {
	switch driver {
	case postgres.DRIVER_PQ, postgres.DRIVER_PGX:
		return postgres.MakeDbTool(db, driver, batchSize), nil
	case "mysql":
		return mysql.MakeDbTool(db, batchSize)
	default:
		return nil, errors.Errorf("unsupported db type %s", driver)
	}
}

// tableName comes from the table flag, else from the tableName option.
func (this *Converter) tableName(dbTool sqldb.DbTool, cfg *mapping.Configuration) (sqldb.TableName, error) {
	schema, name := this.Config.Schema, this.Config.Table
	if name == "" {
		schema, name = sqldb.SplitTableName(cfg.String(mapping.OptTableName, ""))
	}
	if name == "" {
		return sqldb.TableName{}, errors.Errorf("should set table name with flag %s", flagName(TABLE_FLAG))
	}
	return dbTool.TableName(schema, name), nil
}

func (this *Converter) readInput(cfg *mapping.Configuration) (*table.Table, error) {
	format, err := this.format(this.Config.InputFormat, this.Config.Input, adapter.FormatCSV)
	if err != nil {
		return nil, err
	}
	if format.Decoder == nil {
		return nil, errors.Errorf("format %s can not be read", format.Name)
	}

	var file *os.File
	size := int64(0)
	if this.Config.Input == STDIO {
		file = os.Stdin
	} else {
		if file, err = os.Open(this.Config.Input); err != nil {
			return nil, errors.Wrapf(err, "can not open input file %s", this.Config.Input)
		}
		defer file.Close()
		if info, err := file.Stat(); err != nil {
			log.Warnf("Can not get file stat %s: %v", this.Config.Input, err)
		} else {
			size = info.Size()
		}
	}

	progressReader := progress.NewReader(file)
	if size > MIN_SIZE_BYTES_TO_SHOW_PROGRESS && log.IsLevelEnabled(log.InfoLevel) {
		progressBar := InitProgressBar(progressReader.N, size, os.Stderr)
		progressBar.Start()
		defer progressBar.Stop()
	}

	t, err := format.Decoder.Decode(bufio.NewReader(progressReader), cfg)
	if err != nil {
		return nil, errors.WithMessagef(err, "can not read %s", this.Config.Input)
	}
	return t, nil
}

func (this *Converter) writeOutput(t *table.Table, cfg *mapping.Configuration) error {
	format, err := this.format(this.Config.OutputFormat, this.Config.Output, adapter.FormatASCII)
	if err != nil {
		return err
	}
	if format.Encoder == nil {
		return errors.Errorf("format %s can not be written", format.Name)
	}

	out := os.Stdout
	if this.Config.Output != "" && this.Config.Output != STDIO {
		if out, err = os.Create(this.Config.Output); err != nil {
			return errors.Wrapf(err, "can not create output file %s", this.Config.Output)
		}
	}
	w := bufio.NewWriter(out)
	err = format.Encoder.Encode(w, t, cfg)
	if err == nil {
		err = w.Flush()
	}
	if out != os.Stdout {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return errors.Wrapf(err, "can not write %s", this.Config.Output)
	}
	log.Infof("Wrote %d rows as %s", t.RowCount(), format.Name)
	return nil
}

// format picks the named format, else the one of the file extension, else
// def.
func (this *Converter) format(name, path, def string) (adapter.Format, error) {
	if name == "" && path != STDIO {
		name = adapter.DetectFormat(path)
	}
	if name == "" {
		name = def
	}
	return adapter.ForFormat(name)
}

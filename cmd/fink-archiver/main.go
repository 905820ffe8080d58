// fink-archiver is the configuration and catalog tooling for the fink
// science archiving job. It validates the job configuration and writes
// the HBase catalog description the storage connector consumes.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/astrolabsoftware/fink-archiver/internal/catalog"
	"github.com/astrolabsoftware/fink-archiver/internal/conf"
)

const defaultConfigPath = "/etc/fink/fink.conf"

func main() {
	app := &cli.App{
		Name:  "fink-archiver",
		Usage: "configuration and catalog tooling for the fink science archiving job",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   defaultConfigPath,
				Usage:   "path to the archiving job configuration `FILE`",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "validate the configuration and report the resolved values",
				Action: runCheck,
			},
			{
				Name:  "catalog",
				Usage: "write the HBase catalog description for the science table",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "schema",
						Usage: "TOML column layout `FILE` (defaults to the science portal layout)",
					},
				},
				Action: runCatalog,
			},
		},
	}

	// Configuration errors are terminal; the job must not start on a
	// guessed configuration.
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fink-archiver: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (conf.Config, error) {
	source := &conf.ConfigSource{
		Path: c.String("config"),
		Env:  conf.EnvironMap(os.Environ()),
	}
	return source.Read()
}

// newLogger builds the run logger from the configured level. Every run
// gets its own id so lines from overlapping cron runs stay separable.
func newLogger(config conf.Config) *logrus.Entry {
	logger := logrus.New()
	if config.LogLevel.Enabled() {
		logger.SetLevel(config.LogLevel.LogrusLevel())
	} else {
		logger.SetOutput(io.Discard)
	}
	return logger.WithField("run_id", uuid.NewString())
}

func runCheck(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}

	log := newLogger(config)
	log.WithFields(logrus.Fields{
		"log_level":         config.LogLevel.String(),
		"night":             config.NightToArchive,
		"science_db":        config.ScienceDBName,
		"catalog":           config.ScienceDBCatalog,
		"save_catalog_only": config.SaveCatalogOnly,
	}).Info("configuration is valid")

	fmt.Fprintf(c.App.Writer, "%s: ok\n", c.String("config"))
	return nil
}

func runCatalog(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}

	log := newLogger(config)

	schema := catalog.PortalColumns()
	if path := c.String("schema"); path != "" {
		schema, err = catalog.LoadSchema(path)
		if err != nil {
			return err
		}
	}

	if err := schema.WriteFile(config.ScienceDBCatalog, config.ScienceDBName, catalog.RowKeyName()); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"table":   config.ScienceDBName,
		"catalog": config.ScienceDBCatalog,
	}).Info("catalog description written")

	if config.SaveCatalogOnly {
		log.Info("save-catalog-only is set, the archiving run is skipped")
	}
	return nil
}

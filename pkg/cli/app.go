package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/anthrogo/growthz/pkg/config"
	"github.com/anthrogo/growthz/pkg/logging"
	"github.com/anthrogo/growthz/pkg/reference"
	"github.com/anthrogo/growthz/pkg/zscore"
)

const (
	appName      = "growthz"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Conf  *config.Config
	Table *reference.Table
	Calc  *zscore.Calculator
}

func getConfig(c *cli.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "WHO Growth Reference 2007 z-scores for ages 5-19 (BMI-for-age, height-for-age)",
		Metadata:             map[string]any{},
		Flags: []cli.Flag{
			debugFlag,
			formatFlag,
		},
		Commands: []*cli.Command{
			scoreCmd,
			batchCmd,
			referenceCmd,
			validateCmd,
		},
		Before: func(c *cli.Context) error {
			home, created, err := config.GetOrCreateHomeDir(appName)
			if err != nil {
				return fmt.Errorf("resolving app home: %w", err)
			}
			if created {
				slog.Debug("created app home", "path", home)
			}

			conf, err := config.ReadOrCreate(home)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}

			level := conf.LogLevel
			if c.Bool(debugFlag.Name) {
				level = "debug"
			}
			logging.SetDefaultCLILogger(level)

			outputFormat = conf.Format
			if f := c.String(formatFlag.Name); f != "" {
				outputFormat = f
			}
			if outputFormat == "yml" {
				outputFormat = formatYAML
			}

			table, err := reference.Load()
			if err != nil {
				return fmt.Errorf("loading reference tables: %w", err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Conf:  conf,
				Table: table,
				Calc:  zscore.New(table),
			}
			return nil
		},
	}
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

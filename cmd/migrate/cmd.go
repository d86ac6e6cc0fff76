package migrate

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/mitchellh/cli"
	"github.com/satori/uuid"
	"github.com/segmentio/encoding/json"

	"github.com/mahasewa/ops/config"
	"github.com/mahasewa/ops/internal/migration"
	"github.com/mahasewa/ops/pkg/logger"
	"github.com/mahasewa/ops/pkg/schema"
)

const (
	ExitSuccess = 0
	ExitErr     = -1
)

type Cmd struct {
	flags      *flag.FlagSet
	appName    string
	appVersion string
	configFile string
	printOnly  bool
}

func NewCmd(appName, appVersion string) func() (cli.Command, error) {
	return func() (cli.Command, error) {
		cmd := &Cmd{
			flags:      &flag.FlagSet{},
			appName:    appName,
			appVersion: appVersion,
		}
		err := cmd.init()
		return cmd, err
	}
}

var _ cli.Command = (*Cmd)(nil)
var _ cli.CommandFactory = NewCmd("", "")

func (c *Cmd) init() error {
	c.flags = flag.NewFlagSet("", flag.ContinueOnError)
	c.flags.StringVar(&c.configFile, "config", "config.yml",
		"Config file to load")
	c.flags.StringVar(&c.configFile, "c", "config.yml",
		"Alias for config file to load")
	c.flags.BoolVar(&c.printOnly, "print", false,
		"Print the DDL for the configured dialect and exit without connecting")
	return nil
}

func (c *Cmd) Help() string {
	return `Migrate applies the content schema changes to the configured database.
Safe to re-run: changes already present are reported and skipped.`
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		log.Printf("error parsing arguments: %s", err)
		return ExitErr
	}

	// ** define system context
	ctx := logger.Inject(context.Background(), logger.Tracer{
		RemoteAddr: "system",
		AppTraceID: uuid.NewV4().String(),
	})

	// ** load config file
	configVal := &config.Config{}
	zapLog, err := config.Setup(c.configFile, configVal)
	if err != nil {
		log.Printf("error load config: %s", err)
		return ExitErr
	}

	// ** set global logger
	logger.SetGlobalLogger(logger.NewZap(zapLog))

	if c.printOnly {
		script, err := migration.Render(configVal)
		if err != nil {
			logger.Error(ctx, "error render migration", logger.KV("error", err))
			return ExitErr
		}

		fmt.Print(script)
		return ExitSuccess
	}

	logger.Info(ctx, "~ applying schema changes",
		logger.KV("dbLabel", configVal.Migration.DBLabel),
	)

	report, err := migration.Run(ctx, configVal)
	printReport(ctx, report)
	if err != nil {
		logger.Error(ctx, "~ migration aborted", logger.KV("error", err))
		return ExitErr
	}

	if !report.ProbesPassed() {
		logger.Warn(ctx, "~ migration applied but verification probes failed")
	}

	return ExitSuccess
}

func (c *Cmd) Synopsis() string {
	return `Apply the content schema changes to the configured database`
}

// printReport writes the full report to stdout as the command transcript;
// structured logs stay on the logger.
func printReport(ctx context.Context, report schema.Report) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error(ctx, "error encode report", logger.KV("error", err))
		return
	}

	fmt.Println(string(out))
}

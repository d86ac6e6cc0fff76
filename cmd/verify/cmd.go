package verify

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
	return nil
}

func (c *Cmd) Help() string {
	return `Verify runs the read-only catalog probes against the configured database
and prints the report. It never modifies the schema and always exits zero
when the probes could run; failed probes are visible in the report.`
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

	logger.Info(ctx, "~ running verification probes",
		logger.KV("dbLabel", configVal.Migration.DBLabel),
	)

	report, err := migration.Verify(ctx, configVal)
	if err != nil {
		logger.Error(ctx, "~ verification failed to run", logger.KV("error", err))
		return ExitErr
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error(ctx, "error encode report", logger.KV("error", err))
		return ExitErr
	}

	fmt.Println(string(out))

	if !report.ProbesPassed() {
		logger.Warn(ctx, "~ one or more probes failed; see report")
	}

	return ExitSuccess
}

func (c *Cmd) Synopsis() string {
	return `Run the read-only schema verification probes`
}

package deploy

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mitchellh/cli"
	"github.com/satori/uuid"

	"github.com/mahasewa/ops/config"
	"github.com/mahasewa/ops/internal/deploy"
	"github.com/mahasewa/ops/internal/migration"
	"github.com/mahasewa/ops/pkg/healthcheck"
	"github.com/mahasewa/ops/pkg/logger"
	"github.com/mahasewa/ops/pkg/remote"
	"github.com/mahasewa/ops/pkg/schema"
	"github.com/mahasewa/ops/pkg/supervisor"
	"github.com/mahasewa/ops/pkg/validator"
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
	genSecret  bool
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
	c.flags.BoolVar(&c.genSecret, "gen-secret", false,
		"Mint one fresh credential and show it in the report; it is never stored")
	return nil
}

func (c *Cmd) Help() string {
	return `Deploy runs one rollout against the configured target: sync artifacts,
migrate the schema, restart the service, then probe liveness. Only a failed
migration aborts; every other failure degrades the rollout and is reported.`
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

	if err := validator.Validate(configVal.Deploy); err != nil {
		logger.Error(ctx, "~ deploy config invalid", logger.KV("error", err))
		return ExitErr
	}

	target := configVal.Deploy.Target

	logger.Info(ctx, "~ connecting to target",
		logger.KV("host", target.Host),
		logger.KV("user", target.User),
	)

	channel, err := remote.ConnectSSH(ctx, remote.SSHClientConfig{
		Host:    target.Host,
		Port:    target.Port,
		User:    target.User,
		KeyFile: target.KeyFile,
	})
	if err != nil {
		logger.Error(ctx, "~ error connect to target", logger.KV("error", err))
		return ExitErr
	}

	defer func() {
		if _err := channel.Close(); _err != nil {
			logger.Error(ctx, "~ error close ssh connection", logger.KV("error", _err))
		}
	}()

	candidates, err := supervisor.Candidates(supervisor.Config{
		WorkDir:     target.WorkDir,
		Service:     configVal.Deploy.Service.Name,
		ComposeFile: configVal.Deploy.Service.ComposeFile,
	})
	if err != nil {
		logger.Error(ctx, "~ error prepare service manager candidates", logger.KV("error", err))
		return ExitErr
	}

	healthConf := configVal.Deploy.Health
	checker, err := healthcheck.NewChecker(healthcheck.CheckerConfig{
		URL:      healthConf.URL,
		Attempts: healthConf.Attempts,
		Interval: time.Duration(healthConf.IntervalSeconds) * time.Second,
		Settle:   time.Duration(healthConf.SettleSeconds) * time.Second,
	})
	if err != nil {
		logger.Error(ctx, "~ error prepare health checker", logger.KV("error", err))
		return ExitErr
	}

	orchestrator, err := deploy.New(deploy.OrchestratorConfig{
		Channel:    channel,
		Host:       target.Host,
		Service:    configVal.Deploy.Service.Name,
		WorkDir:    target.WorkDir,
		Artifacts:  configVal.Deploy.Artifacts,
		Candidates: candidates,
		Migrator: deploy.MigratorFunc(func(ctx context.Context) (schema.Report, error) {
			return migration.Run(ctx, configVal)
		}),
		Health:         checker,
		GenerateSecret: c.genSecret,
	})
	if err != nil {
		logger.Error(ctx, "~ error prepare orchestrator", logger.KV("error", err))
		return ExitErr
	}

	report, runErr := orchestrator.Run(ctx)

	out, err := report.JSON()
	if err != nil {
		logger.Error(ctx, "error encode report", logger.KV("error", err))
	} else {
		fmt.Println(out)
	}

	if report.GeneratedSecret != "" {
		// shown once, never persisted; the operator copies it into the
		// target's environment by hand
		fmt.Printf("generated secret (store it now, it will not be shown again): %s\n",
			report.GeneratedSecret)
	}

	if runErr != nil {
		logger.Error(ctx, "~ rollout aborted", logger.KV("error", runErr))
		return ExitErr
	}

	if report.Outcome == deploy.OutcomeDegraded {
		logger.Warn(ctx, "~ rollout degraded; see report for remediation")
	}

	return ExitSuccess
}

func (c *Cmd) Synopsis() string {
	return `Run one rollout: sync, migrate, restart, probe`
}

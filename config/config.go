package config

import (
	"github.com/mahasewa/ops/pkg/multidb"
)

// Migration selects which configured database the content migration unit
// runs against.
type Migration struct {
	DBLabel string `yaml:"dbLabel" validate:"required"`
}

// Target is one remote host onto which artifacts are synchronized and the
// service restarted.
type Target struct {
	Host    string `yaml:"host" validate:"required"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user" validate:"required"`
	KeyFile string `yaml:"keyFile" validate:"required"`
	WorkDir string `yaml:"workDir" validate:"required"`
}

// Service names the application process on the target.
type Service struct {
	Name        string `yaml:"name" validate:"required"`
	ComposeFile string `yaml:"composeFile"`
}

// Health configures the post-restart liveness probe.
type Health struct {
	URL             string `yaml:"url" validate:"required,url"`
	Attempts        int    `yaml:"attempts"`
	IntervalSeconds int    `yaml:"intervalSeconds"`
	SettleSeconds   int    `yaml:"settleSeconds"`
}

// Deploy is the full rollout configuration for one Deployment Target.
type Deploy struct {
	Target    Target   `yaml:"target" validate:"required"`
	Service   Service  `yaml:"service" validate:"required"`
	Artifacts []string `yaml:"artifacts" validate:"required,min=1"`
	Health    Health   `yaml:"health" validate:"required"`
}

// Config contains application config
type Config struct {
	DatabaseResources multidb.DatabaseResources `yaml:"databaseResources" validate:"required"`

	Migration Migration `yaml:"migration" validate:"required"`

	Deploy Deploy `yaml:"deploy"`
}

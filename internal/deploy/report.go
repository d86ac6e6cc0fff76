package deploy

import (
	"github.com/segmentio/encoding/json"

	"github.com/mahasewa/ops/pkg/healthcheck"
	"github.com/mahasewa/ops/pkg/schema"
	"github.com/mahasewa/ops/pkg/supervisor"
)

// Phase is one step of a rollout, in fixed order.
type Phase string

const (
	// PhasePreparing covers local work before the target is touched, such as
	// minting a fresh credential.
	PhasePreparing Phase = "PREPARING"

	PhaseSyncing    Phase = "SYNCING"
	PhaseMigrating  Phase = "MIGRATING"
	PhaseRestarting Phase = "RESTARTING"
	PhaseProbing    Phase = "PROBING"
)

// Outcome is the terminal state of a rollout. There is no aborting terminal
// state for restart or health failures: a human operator remediates those,
// only a failed migration stops the rollout.
type Outcome string

const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomeDegraded  Outcome = "DEGRADED"
)

type StepStatus string

const (
	StepOK    StepStatus = "OK"
	StepWarn  StepStatus = "WARN"
	StepFatal StepStatus = "FATAL"
)

type Step struct {
	Phase  Phase      `json:"phase"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// Report is the structured outcome of one rollout.
type Report struct {
	RolloutID string `json:"rollout_id"`
	Host      string `json:"host,omitempty"`
	Service   string `json:"service"`

	Steps []Step `json:"steps"`

	Migration  *schema.Report      `json:"migration,omitempty"`
	Supervisor supervisor.Kind     `json:"supervisor,omitempty"`
	Health     *healthcheck.Result `json:"health,omitempty"`

	// GeneratedSecret is a write-once rollout output: displayed here, never
	// persisted by this tool.
	GeneratedSecret string `json:"generated_secret,omitempty"`

	Outcome Outcome `json:"outcome"`
}

func (r *Report) addStep(phase Phase, status StepStatus, detail string) {
	r.Steps = append(r.Steps, Step{Phase: phase, Status: status, Detail: detail})
}

// JSON renders the report for the CLI transcript.
func (r Report) JSON() (string, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}

	return string(out), nil
}

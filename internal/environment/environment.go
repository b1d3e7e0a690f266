// Package environment implements the lifecycle of a named, versioned environment:
// query, create, plan, destroy and version allocation.
//
// Terraform provisions the resources; the discovery oracle decides from resource
// tags whether an environment exists, and the orchestrator maintains the
// deployer_state tag so that half-created and half-destroyed environments stay
// visible.
package environment

import (
	"context"

	"github.com/seek-and-deploy/deployer/internal/discovery"
	"github.com/seek-and-deploy/deployer/internal/envname"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/seek-and-deploy/deployer/tf"
	"github.com/seek-and-deploy/deployer/util"
)

// Oracle finds the resources of an environment and tags them.
type Oracle interface {
	Exists(ctx context.Context, query discovery.Query) ([]discovery.ResourceDescriptor, error)
	ExistsInStates(ctx context.Context, query discovery.Query, states ...string) ([]discovery.ResourceDescriptor, error)
	TagAsState(ctx context.Context, query discovery.Query, state string) (int, error)
}

// Terraform runs terraform actions in the environment's working directory.
type Terraform interface {
	Run(ctx context.Context, action tf.Action, extra ...string) error
	HasRemoteState() bool
}

// Storage removes the per-environment objects left after a destroy.
type Storage interface {
	DeleteFolder(ctx context.Context, bucket, folder string) error
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Target identifies one environment.
type Target struct {
	Name          string
	Version       string
	Discriminator string
}

// EffectiveName is the name used for state, folders and reporting.
func (target Target) EffectiveName() string {
	return envname.Effective(target.Name, target.Version)
}

func (target Target) query() discovery.Query {
	return discovery.Query{Name: target.Name, Version: target.Version, Discriminator: target.Discriminator}
}

// Cleanup names the objects deleted once an environment is fully destroyed.
// Empty fields are skipped.
type Cleanup struct {
	DataBucket  string
	EnvFolder   string
	StateBucket string
	StateKey    string
}

// Orchestrator runs lifecycle operations. Each call is a linear sequence of
// blocking steps; nothing runs in parallel.
type Orchestrator struct {
	oracle    Oracle
	terraform Terraform
	storage   Storage
	logger    log.Logger
}

// NewOrchestrator returns an Orchestrator using the given collaborators.
func NewOrchestrator(oracle Oracle, terraform Terraform, storage Storage, logger log.Logger) *Orchestrator {
	return &Orchestrator{
		oracle:    oracle,
		terraform: terraform,
		storage:   storage,
		logger:    logger,
	}
}

// Query returns the live resources of the environment.
func (orch *Orchestrator) Query(ctx context.Context, target Target) ([]discovery.ResourceDescriptor, error) {
	return orch.oracle.Exists(ctx, target.query())
}

// Create provisions the environment and tags its resources as running.
//
// When terraform apply ran and failed, the resources it did create are still
// tagged as running before the apply error is returned, so that a partial
// environment blocks a second create and can be destroyed. Nothing is tagged if
// terraform could not be started.
func (orch *Orchestrator) Create(ctx context.Context, target Target) error {
	name := target.EffectiveName()
	logger := orch.logger.WithField(log.FieldKeyEnv, name)

	resources, err := orch.oracle.Exists(ctx, target.query())
	if err != nil {
		return err
	}

	if len(resources) > 0 {
		return errors.New(EnvironmentExistsError{Name: name, Resources: resources})
	}

	if err := orch.precheck(ctx, name, CommandCreate); err != nil {
		return err
	}

	logger.Infof("Creating environment %s", name)

	if err := orch.terraform.Run(ctx, tf.ActionApply); err != nil {
		if util.ProcessRan(err) {
			if _, tagErr := orch.oracle.TagAsState(ctx, target.query(), discovery.StateRunning); tagErr != nil {
				logger.Warnf("Unable to tag resources of failed environment %s: %v", name, tagErr)
			}
		}

		return err
	}

	if _, err := orch.oracle.TagAsState(ctx, target.query(), discovery.StateRunning); err != nil {
		return err
	}

	logger.Infof("Environment %s created", name)

	return nil
}

// Destroy tears the environment down. The environment's data folder and state
// object are removed only when terraform destroy succeeded and no resource of
// the environment can be found afterwards.
func (orch *Orchestrator) Destroy(ctx context.Context, target Target, cleanup Cleanup) error {
	name := target.EffectiveName()
	logger := orch.logger.WithField(log.FieldKeyEnv, name)

	resources, err := orch.oracle.Exists(ctx, target.query())
	if err != nil {
		return err
	}

	if len(resources) == 0 {
		return errors.New(EnvironmentNotFoundError{Name: name})
	}

	if err := orch.precheck(ctx, name, CommandDestroy); err != nil {
		return err
	}

	if _, err := orch.oracle.TagAsState(ctx, target.query(), discovery.StateDestroying); err != nil {
		return err
	}

	logger.Infof("Destroying environment %s", name)

	destroyErr := orch.terraform.Run(ctx, tf.ActionDestroy)

	remaining, err := orch.oracle.ExistsInStates(ctx, target.query(), discovery.StateRunning, discovery.StateDestroying)

	switch {
	case destroyErr != nil:
		if err != nil {
			logger.Warnf("Unable to check remaining resources of %s: %v", name, err)
		}

		return destroyErr
	case err != nil:
		return err
	case len(remaining) > 0:
		return errors.New(ResourcesRemainError{Name: name, Resources: remaining})
	}

	if err := orch.cleanup(ctx, cleanup); err != nil {
		return err
	}

	logger.Infof("Environment %s destroyed", name)

	return nil
}

func (orch *Orchestrator) cleanup(ctx context.Context, cleanup Cleanup) error {
	if cleanup.DataBucket != "" && cleanup.EnvFolder != "" {
		if err := orch.storage.DeleteFolder(ctx, cleanup.DataBucket, cleanup.EnvFolder); err != nil {
			return err
		}
	}

	if cleanup.StateBucket != "" && cleanup.StateKey != "" {
		if err := orch.storage.DeleteObject(ctx, cleanup.StateBucket, cleanup.StateKey); err != nil {
			return err
		}
	}

	return nil
}

// Plan runs the precheck for command, which ends with a terraform plan.
func (orch *Orchestrator) Plan(ctx context.Context, target Target, command Command) error {
	return orch.precheck(ctx, target.EffectiveName(), command)
}

// Output prints terraform outputs of the environment, initialising the remote
// state first when the working directory has none.
func (orch *Orchestrator) Output(ctx context.Context, args ...string) error {
	if !orch.terraform.HasRemoteState() {
		if err := orch.terraform.Run(ctx, tf.ActionInit); err != nil {
			return err
		}
	}

	return orch.terraform.Run(ctx, tf.ActionOutput, args...)
}

// AllocateAndReport returns the next free version of base. It creates nothing.
func (orch *Orchestrator) AllocateAndReport(ctx context.Context, base, discriminator string) (string, error) {
	exists := func(ctx context.Context, base, version, discriminator string) (bool, error) {
		resources, err := orch.oracle.Exists(ctx, discovery.Query{Name: base, Version: version, Discriminator: discriminator})
		return len(resources) > 0, err
	}

	version, err := NextVersion(ctx, base, discriminator, exists)
	if err != nil {
		return "", err
	}

	orch.logger.Infof("Next available version of %s is %s", base, version)

	return version, nil
}

// precheck prepares the terraform working directory and plans the change.
// State synchronisation failures are only logged: a new environment has no
// state to push or pull yet.
func (orch *Orchestrator) precheck(ctx context.Context, name string, command Command) error {
	logger := orch.logger.WithFields(log.Fields{log.FieldKeyEnv: name, log.FieldKeyCommand: command.String()})

	if err := envname.Validate(name); err != nil {
		return errors.New(err)
	}

	if !orch.terraform.HasRemoteState() {
		if err := orch.terraform.Run(ctx, tf.ActionInit); err != nil {
			return err
		}
	}

	for _, action := range []tf.Action{tf.ActionGet, tf.ActionValidate} {
		if err := orch.terraform.Run(ctx, action); err != nil {
			return err
		}
	}

	// A fresh environment has no remote state yet.
	if err := orch.terraform.Run(ctx, tf.ActionStatePull); err != nil {
		logger.Warnf("terraform %s failed, continuing: %v", tf.ActionStatePull, err)
	}

	planAction := tf.ActionPlan
	if command == CommandDestroy {
		planAction = tf.ActionPlanDestroy
	}

	return orch.terraform.Run(ctx, planAction)
}

// Package config loads and resolves the deployer configuration file.
//
// A deployer config is a JSON document describing one environment: where its
// Terraform code lives, which AWS profile and region to use, the project it belongs
// to, and any extra variables Terraform should receive. Load reads and validates the
// document; Resolve fills in the values that depend on the AWS account. Both return
// new values and never modify their receiver.
package config

import (
	"maps"
	"slices"
	"sort"

	"dario.cat/mergo"
	"github.com/mitchellh/mapstructure"
	"github.com/seek-and-deploy/deployer/internal/discovery"
	"github.com/seek-and-deploy/deployer/internal/envname"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/internal/storage"
)

const (
	// CurrentVersion is the newest config_version this deployer understands.
	CurrentVersion = 1

	DefaultTFVarsFile = "vars.tfvars.json"

	dataBucketSuffix  = "data"
	stateBucketSuffix = "tfstate"
	stateFileSuffix   = ".tfstate"
)

// Environment names the environment a config deploys.
type Environment struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version,omitempty"`
}

// Config is a typed deployer configuration.
type Config struct {
	Version          int    `mapstructure:"config_version"`
	Terraform        string `mapstructure:"terraform"`
	TerraformVersion string `mapstructure:"terraform_version,omitempty"`
	AWSProfile       string `mapstructure:"aws_profile"`
	AWSRegion        string `mapstructure:"aws_region"`
	Project          string `mapstructure:"project"`

	Environment Environment       `mapstructure:"environment"`
	Tags        map[string]string `mapstructure:"tags"`

	Route53TLD      string         `mapstructure:"route53_tld,omitempty"`
	PublicZoneID    string         `mapstructure:"public_zone_id,omitempty"`
	StagedArtifacts map[string]any `mapstructure:"staged_artifacts,omitempty"`

	// Set by Resolve unless present in the file.
	AccountID         string   `mapstructure:"account_id,omitempty"`
	AvailabilityZones []string `mapstructure:"availability_zones,omitempty"`
	EnvName           string   `mapstructure:"env_name,omitempty"`
	EnvFolder         string   `mapstructure:"env_folder,omitempty"`
	ProjectConfig     string   `mapstructure:"project_config,omitempty"`
	TFStateBucket     string   `mapstructure:"tf_state_bucket,omitempty"`
	TFState           string   `mapstructure:"tf_state,omitempty"`

	// Set by workspace preparation unless present in the file.
	TFVarsFile string `mapstructure:"tfvars_file,omitempty"`
	TFVars     string `mapstructure:"tfvars,omitempty"`
	TFRoot     string `mapstructure:"tf_root,omitempty"`
	TmpDir     string `mapstructure:"tmpdir,omitempty"`

	raw map[string]any
}

// Identity holds the facts about the AWS account a config is resolved against.
type Identity struct {
	AccountID         string
	AvailabilityZones []string
}

// Resolve returns a copy of cfg with the account-dependent settings derived. Values
// already present in the file take precedence over derived ones, except the
// availability zones, which always reflect the region.
func (cfg Config) Resolve(identity Identity) (Config, error) {
	resolved := cfg.Clone()

	if resolved.AccountID == "" {
		resolved.AccountID = identity.AccountID
	}

	if resolved.AccountID == "" {
		return Config{}, errors.New(MissingParameterError{Name: "account_id", Reason: "the AWS caller identity has no account"})
	}

	if len(identity.AvailabilityZones) > 0 {
		resolved.AvailabilityZones = slices.Clone(identity.AvailabilityZones)
	}

	name := envname.Effective(cfg.Environment.Name, cfg.Environment.Version)

	resolved.Tags[discovery.TagKeyEnvName] = cfg.Environment.Name
	if cfg.Environment.Version != "" {
		resolved.Tags[discovery.TagKeyEnvVersion] = cfg.Environment.Version
	}

	setDefault(&resolved.ProjectConfig, storage.BucketName(resolved.AccountID, cfg.Project, dataBucketSuffix))
	setDefault(&resolved.TFStateBucket, storage.BucketName(resolved.AccountID, cfg.Project, stateBucketSuffix))
	setDefault(&resolved.EnvFolder, name)
	setDefault(&resolved.TFState, name+stateFileSuffix)
	setDefault(&resolved.EnvName, name)

	if err := envname.Validate(resolved.EnvName); err != nil {
		return Config{}, err
	}

	return resolved, nil
}

// EffectiveName returns the environment name the config deploys.
func (cfg Config) EffectiveName() string {
	if cfg.EnvName != "" {
		return cfg.EnvName
	}

	return envname.Effective(cfg.Environment.Name, cfg.Environment.Version)
}

// Discriminator returns the product discriminator tag value, empty when unset.
func (cfg Config) Discriminator() string {
	return cfg.Tags[discovery.DefaultDiscriminatorKey]
}

// StagedArtifactKeys returns the sorted data-bucket keys to download before running
// Terraform.
func (cfg Config) StagedArtifactKeys() []string {
	keys := make([]string, 0, len(cfg.StagedArtifacts))
	for key := range cfg.StagedArtifacts {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// TFVars returns the variables document written to the Terraform vars file: every
// key of the original file, with the typed settings layered on top.
func (cfg Config) TFVars() (map[string]any, error) {
	vars := make(map[string]any)

	if err := mapstructure.Decode(cfg, &vars); err != nil {
		return nil, errors.Errorf("failed to encode config: %w", err)
	}

	if len(cfg.raw) > 0 {
		if err := mergo.Merge(&vars, cfg.raw); err != nil {
			return nil, errors.Errorf("failed to merge config variables: %w", err)
		}
	}

	return vars, nil
}

// Clone returns a deep copy of cfg.
func (cfg Config) Clone() Config {
	clone := cfg
	clone.Tags = make(map[string]string, len(cfg.Tags))
	maps.Copy(clone.Tags, cfg.Tags)
	clone.AvailabilityZones = slices.Clone(cfg.AvailabilityZones)
	clone.StagedArtifacts = maps.Clone(cfg.StagedArtifacts)
	clone.raw = maps.Clone(cfg.raw)

	return clone
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

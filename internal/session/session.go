// Package session wires a loaded deployer config to the AWS clients, the
// Terraform runner and the lifecycle orchestrator that a command needs.
package session

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/seek-and-deploy/deployer/config"
	"github.com/seek-and-deploy/deployer/internal/awshelper"
	"github.com/seek-and-deploy/deployer/internal/discovery"
	"github.com/seek-and-deploy/deployer/internal/dns"
	"github.com/seek-and-deploy/deployer/internal/environment"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/internal/git"
	"github.com/seek-and-deploy/deployer/internal/storage"
	"github.com/seek-and-deploy/deployer/internal/workspace"
	"github.com/seek-and-deploy/deployer/options"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/seek-and-deploy/deployer/tf"
)

// Session holds everything a command runs against. Open connects to AWS; Prepare
// additionally readies the Terraform working directory.
type Session struct {
	Config       config.Config
	Cloud        awshelper.CloudContext
	Oracle       *discovery.Oracle
	Orchestrator *environment.Orchestrator
	Workspace    *workspace.Workspace
	Terraform    *tf.Runner

	opts    *options.DeployerOptions
	logger  log.Logger
	storage *storage.Client
	unlock  func() error
}

// Open loads the deployer config, checks the AWS profile and resolves the config
// against the account.
func Open(ctx context.Context, opts *options.DeployerOptions) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.Vars, opts.Env)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.WithField(log.FieldKeyEnv, cfg.EffectiveName())

	cloud := awshelper.NewCloudContext(cfg.AWSProfile, cfg.AWSRegion, opts.Env)

	awsCfg, err := cloud.Build(ctx, logger)
	if err != nil {
		return nil, err
	}

	identity, err := lookupIdentity(ctx, awsCfg, cfg, opts.SkipProfileCheck)
	if err != nil {
		return nil, err
	}

	if cfg, err = cfg.Resolve(identity); err != nil {
		return nil, err
	}

	ec2Client := ec2.NewFromConfig(awsCfg)
	provider := discovery.NewAWSProvider(resourcegroupstaggingapi.NewFromConfig(awsCfg), ec2Client, logger)
	oracle := discovery.NewOracle(provider, logger)
	storageClient := storage.NewClient(s3.NewFromConfig(awsCfg), cloud.Region, logger)

	gitRunner, err := git.NewGitRunner()
	if err != nil {
		return nil, err
	}

	ws := workspace.New(
		storageClient,
		dns.NewResolver(route53.NewFromConfig(awsCfg), logger),
		workspace.NewGitCLI(gitRunner.WithEnv(opts.Env)),
		logger,
	)

	return &Session{
		Config:       cfg,
		Cloud:        cloud,
		Oracle:       oracle,
		Orchestrator: environment.NewOrchestrator(oracle, nil, storageClient, logger),
		Workspace:    ws,
		opts:         opts,
		logger:       logger,
		storage:      storageClient,
	}, nil
}

func lookupIdentity(ctx context.Context, awsCfg aws.Config, cfg config.Config, skipProfileCheck bool) (config.Identity, error) {
	if !skipProfileCheck {
		if err := awshelper.VerifyProfile(ctx, iam.NewFromConfig(awsCfg), cfg.AWSProfile); err != nil {
			return config.Identity{}, err
		}
	}

	identity := config.Identity{AccountID: cfg.AccountID}

	if identity.AccountID == "" {
		accountID, err := awshelper.GetAccountID(ctx, sts.NewFromConfig(awsCfg))
		if err != nil {
			return config.Identity{}, err
		}

		identity.AccountID = accountID
	}

	zones, err := awshelper.AvailabilityZones(ctx, ec2.NewFromConfig(awsCfg))
	if err != nil {
		return config.Identity{}, err
	}

	identity.AvailabilityZones = zones

	return identity, nil
}

// Prepare readies the work dir and the Terraform code, creates the project
// buckets, writes the vars file and switches the orchestrator to a Terraform
// runner in the resolved root. Close undoes what Prepare set up locally.
func (session *Session) Prepare(ctx context.Context) error {
	ws := session.Workspace

	cfg, err := ws.Prepare(ctx, session.Config, true)
	if err != nil {
		return err
	}

	session.Config = cfg

	if err := ws.SyncTerraform(ctx, cfg); err != nil {
		return err
	}

	if session.unlock, err = ws.Lock(ctx, cfg); err != nil {
		return err
	}

	if cfg, err = ws.Setup(ctx, cfg); err != nil {
		return err
	}

	session.Config = cfg

	if len(cfg.StagedArtifacts) > 0 {
		if err := ws.DownloadStagedArtifacts(ctx, cfg); err != nil {
			return err
		}
	}

	if err := ws.WriteVars(cfg); err != nil {
		return err
	}

	session.Terraform = tf.NewRunner(session.logger, session.settings(), session.opts.Writer, session.opts.ErrWriter)

	if cfg.TerraformVersion != "" {
		if err := session.Terraform.CheckVersion(ctx, cfg.TerraformVersion); err != nil {
			return err
		}
	}

	session.Orchestrator = environment.NewOrchestrator(session.Oracle, session.Terraform, session.storage, session.logger)

	return nil
}

func (session *Session) settings() tf.Settings {
	cfg := session.Config

	return tf.Settings{
		Env:         session.Cloud.Env(session.opts.Env),
		TFPath:      session.opts.TerraformPath,
		WorkingDir:  cfg.TFRoot,
		VarsFile:    cfg.TFVars,
		Region:      session.Cloud.Region,
		Profile:     cfg.AWSProfile,
		StateBucket: cfg.TFStateBucket,
		StateKey:    cfg.TFState,
	}
}

// Target is the environment the config deploys.
func (session *Session) Target() environment.Target {
	return environment.Target{
		Name:          session.Config.Environment.Name,
		Version:       session.Config.Environment.Version,
		Discriminator: session.Config.Discriminator(),
	}
}

// Cleanup names what a successful destroy deletes from S3.
func (session *Session) Cleanup() environment.Cleanup {
	return environment.Cleanup{
		DataBucket:  session.Config.ProjectConfig,
		EnvFolder:   session.Config.EnvFolder,
		StateBucket: session.Config.TFStateBucket,
		StateKey:    session.Config.TFState,
	}
}

// Close releases the Terraform root lock and removes the work dir unless the
// options ask to keep it.
func (session *Session) Close() error {
	errs := &errors.MultiError{}

	if session.unlock != nil {
		errs = errs.Append(session.unlock())
		session.unlock = nil
	}

	if session.Config.TmpDir != "" {
		if session.opts.KeepWorkDir {
			session.logger.Infof("Keeping work dir %s", session.Config.TmpDir)
		} else {
			errs = errs.Append(session.Workspace.Teardown(session.Config))
		}
	}

	return errs.ErrorOrNil()
}

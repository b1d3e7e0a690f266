// Package workspace prepares the local and remote places an environment is deployed
// from: the per-run work dir, the Terraform checkout, the vars file, the S3 data and
// state buckets, and the Route 53 zone the environment publishes into.
package workspace

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/seek-and-deploy/deployer/config"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/internal/source"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/seek-and-deploy/deployer/tf"
	"github.com/seek-and-deploy/deployer/util"
)

const (
	lockFileName = "deployer.lock"
	varsFileMode = 0o600
)

// Storage is the object storage a workspace keeps environment data in.
type Storage interface {
	EnsureBucket(ctx context.Context, bucket string) error
	CreateFolder(ctx context.Context, bucket, folder string) error
	Download(ctx context.Context, bucket, key, dest string) error
}

// ZoneResolver looks up the public DNS zone of a domain.
type ZoneResolver interface {
	PublicZoneID(ctx context.Context, domain string) (string, error)
}

// Git fetches Terraform code.
type Git interface {
	Clone(ctx context.Context, workDir, repo, branch, dest string) error
	Pull(ctx context.Context, dir string) error
	Checkout(ctx context.Context, dir, branch string) error
	CurrentBranch(dir string) (string, error)
}

type Workspace struct {
	storage Storage
	zones   ZoneResolver
	git     Git
	logger  log.Logger
	baseDir string
}

type Option func(*Workspace)

// WithBaseDir sets the directory per-run work dirs are created in.
func WithBaseDir(dir string) Option {
	return func(ws *Workspace) {
		ws.baseDir = dir
	}
}

func New(storage Storage, zones ZoneResolver, git Git, logger log.Logger, opts ...Option) *Workspace {
	ws := &Workspace{
		storage: storage,
		zones:   zones,
		git:     git,
		logger:  logger,
		baseDir: os.TempDir(),
	}

	for _, opt := range opts {
		opt(ws)
	}

	return ws
}

// Prepare creates the work dir and decides where the Terraform root is. A local
// source with a branch is pulled and switched to that branch when sync is set.
func (ws *Workspace) Prepare(ctx context.Context, cfg config.Config, sync bool) (config.Config, error) {
	prepared := cfg.Clone()

	if prepared.TmpDir == "" {
		prepared.TmpDir = filepath.Join(ws.baseDir, uuid.NewString())
	}

	ws.logger.Debugf("Creating work dir %s", prepared.TmpDir)

	if err := util.EnsureDirectory(prepared.TmpDir); err != nil {
		return config.Config{}, err
	}

	prepared.TFVars = filepath.Join(prepared.TmpDir, prepared.TFVarsFile)

	if source.IsRemote(cfg.Terraform) {
		if prepared.TFRoot == "" {
			prepared.TFRoot = filepath.Join(prepared.TmpDir, filepath.FromSlash(source.LocalDirName(cfg.Terraform)))
		}

		return prepared, nil
	}

	ref := source.Parse(cfg.Terraform)
	prepared.TFRoot = ref.Location

	if ref.Branch != "" && sync {
		if err := ws.switchBranch(ctx, ref.Location, ref.Branch); err != nil {
			return config.Config{}, err
		}
	}

	if ref.Subdirectory != "" {
		prepared.TFRoot = filepath.Join(ref.Location, filepath.FromSlash(ref.Subdirectory))
		ws.logger.Debugf("Setting Terraform root to %s", prepared.TFRoot)
	}

	return prepared, nil
}

func (ws *Workspace) switchBranch(ctx context.Context, dir, branch string) error {
	ws.logger.Debugf("Setting branch of %s to %s", dir, branch)

	if err := ws.git.Pull(ctx, dir); err != nil {
		return err
	}

	if current, err := ws.git.CurrentBranch(dir); err == nil && current == branch {
		ws.logger.Debugf("%s is already on branch %s", dir, branch)
		return nil
	}

	return ws.git.Checkout(ctx, dir, branch)
}

// SyncTerraform clones a remote source into the work dir. It does nothing for a
// local source or when Terraform has already been initialised in the root.
func (ws *Workspace) SyncTerraform(ctx context.Context, cfg config.Config) error {
	if !source.IsRemote(cfg.Terraform) {
		return nil
	}

	if cfg.TFRoot != "" && util.IsDir(filepath.Join(cfg.TFRoot, tf.DataDir)) {
		ws.logger.Debugf("Terraform code already checked out to %s", cfg.TFRoot)
		return nil
	}

	if err := util.EnsureDirectory(cfg.TmpDir); err != nil {
		return err
	}

	ref := source.Parse(cfg.Terraform)

	return ws.git.Clone(ctx, cfg.TmpDir, ref.Location, ref.Branch, source.LocalDirName(ref.Location))
}

// Setup makes sure the project buckets and the per-environment data folder exist
// and looks up the public zone of route53_tld. A public_zone_id already present in
// the config is kept.
func (ws *Workspace) Setup(ctx context.Context, cfg config.Config) (config.Config, error) {
	ready := cfg.Clone()

	if ready.ProjectConfig == "" {
		return config.Config{}, errors.New(config.MissingParameterError{Name: "project_config"})
	}

	for _, bucket := range []string{ready.ProjectConfig, ready.TFStateBucket} {
		if bucket == "" {
			continue
		}

		if err := ws.storage.EnsureBucket(ctx, bucket); err != nil {
			return config.Config{}, err
		}
	}

	ws.logger.Debugf("Creating per-environment folder %s:%s", ready.ProjectConfig, ready.EnvFolder)

	if err := ws.storage.CreateFolder(ctx, ready.ProjectConfig, ready.EnvFolder); err != nil {
		return config.Config{}, err
	}

	if ready.Route53TLD == "" {
		return config.Config{}, errors.New(config.MissingParameterError{Name: "route53_tld"})
	}

	if ready.PublicZoneID != "" {
		return ready, nil
	}

	zoneID, err := ws.zones.PublicZoneID(ctx, ready.Route53TLD)
	if err != nil {
		return config.Config{}, err
	}

	if zoneID == "" {
		return config.Config{}, errors.New(config.MissingParameterError{Name: "public_zone_id", Reason: "no public zone for " + ready.Route53TLD})
	}

	ready.PublicZoneID = zoneID

	return ready, nil
}

// WriteVars writes the Terraform variables of cfg to its vars file.
func (ws *Workspace) WriteVars(cfg config.Config) error {
	if cfg.TFVars == "" {
		return errors.New(config.MissingParameterError{Name: "tfvars"})
	}

	vars, err := cfg.TFVars()
	if err != nil {
		return err
	}

	content, err := json.MarshalIndent(vars, "", "  ")
	if err != nil {
		return errors.New(err)
	}

	ws.logger.Debugf("Writing Terraform vars file %s", cfg.TFVars)

	if err := os.WriteFile(cfg.TFVars, content, varsFileMode); err != nil {
		return errors.New(err)
	}

	return nil
}

// DownloadStagedArtifacts copies every staged artifact from the data bucket into
// the work dir. It keeps going after a failed download and returns all failures.
func (ws *Workspace) DownloadStagedArtifacts(ctx context.Context, cfg config.Config) error {
	if cfg.ProjectConfig == "" {
		return errors.New(config.MissingParameterError{Name: "project_config", Reason: "cannot download staged artifacts"})
	}

	keys := cfg.StagedArtifactKeys()
	if len(keys) == 0 {
		ws.logger.Warn("staged_artifacts is not defined, nothing to download")
		return nil
	}

	ws.logger.Debugf("Downloading staged artifacts from %s", cfg.ProjectConfig)

	errs := &errors.MultiError{}

	for _, key := range keys {
		dest := filepath.Join(cfg.TmpDir, path.Base(key))

		if err := ws.storage.Download(ctx, cfg.ProjectConfig, key, dest); err != nil {
			ws.logger.Warnf("Error downloading %s/%s to %s", cfg.ProjectConfig, key, dest)
			errs = errs.Append(err)
		}
	}

	return errs.ErrorOrNil()
}

// Teardown removes the work dir. The Terraform root of a local source is left in
// place.
func (ws *Workspace) Teardown(cfg config.Config) error {
	if cfg.TmpDir == "" {
		return errors.New(config.MissingParameterError{Name: "tmpdir", Reason: "cannot remove the work dir"})
	}

	ws.logger.Debugf("Removing work dir %s", cfg.TmpDir)

	if err := os.RemoveAll(cfg.TmpDir); err != nil {
		return errors.New(err)
	}

	return nil
}

// Lock takes the advisory lock of the Terraform root, waiting until it is free or
// ctx is done. The returned function releases it. Call it once the root exists.
func (ws *Workspace) Lock(ctx context.Context, cfg config.Config) (func() error, error) {
	dataDir := filepath.Join(cfg.TFRoot, tf.DataDir)

	if err := util.EnsureDirectory(dataDir); err != nil {
		return nil, err
	}

	lockfile := util.NewLockfile(filepath.Join(dataDir, lockFileName))

	ws.logger.Debugf("Locking %s", lockfile.Path())

	if err := lockfile.Lock(ctx); err != nil {
		return nil, err
	}

	return lockfile.Unlock, nil
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/giantswarm/pgbootstrap/internal/command"
	"github.com/giantswarm/pgbootstrap/internal/credential"
	"github.com/giantswarm/pgbootstrap/internal/diagnostics"
	"github.com/giantswarm/pgbootstrap/internal/fileutil"
	"github.com/giantswarm/pgbootstrap/internal/logging"
	"github.com/giantswarm/pgbootstrap/internal/objstore"
	"github.com/giantswarm/pgbootstrap/internal/pgbackrest"
	"github.com/giantswarm/pgbootstrap/internal/readiness"
)

// confPattern matches the server configuration files kept across restore.
const confPattern = "*.conf"

// versionFile is the reference for ownership and mode of restored files.
const versionFile = "PG_VERSION"

// The staged copies are the only surviving version of the bootstrap's
// config once the restore replaces the data dir, so both copies are synced.
var (
	stageCopyOptions   = fileutil.CopyFileOptions{Sync: true}
	restoreCopyOptions = fileutil.CopyFileOptions{Sync: true, NoClobber: true}
)

// CredentialSource resolves named credentials.
type CredentialSource interface {
	Resolve(ctx context.Context, name string) (*credential.Secret, error)
}

// Bootstrapper runs the one-shot database initialization.
type Bootstrapper interface {
	Run(ctx context.Context) error
}

// Prober checks the backup store directly.
type Prober interface {
	Probe(ctx context.Context) error
}

// Deps are the collaborators of a pipeline. Exec and Credentials are
// required; everything else has a production default.
type Deps struct {
	Exec        command.Executor
	Credentials CredentialSource

	// Bootstrap defaults to a readiness.Watcher over the stock entrypoint.
	Bootstrap Bootstrapper

	// NewProber defaults to objstore.NewProber.
	NewProber func(objstore.Config) (Prober, error)

	// Starter defaults to the one selected by Config.Handoff.
	Starter Starter

	// Out receives the mirrored bootstrap output and operator banners.
	// Defaults to os.Stdout.
	Out io.Writer

	Logger *slog.Logger
}

// Build validates cfg and returns a Runner over the boot steps.
func Build(cfg Config, deps Deps) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	var errs []error
	if deps.Exec == nil {
		errs = append(errs, errors.New("executor must not be nil"))
	}
	if deps.Credentials == nil {
		errs = append(errs, errors.New("credential source must not be nil"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid pipeline deps: %w", err)
	}

	b := newBuilder(cfg, deps)
	inspect := Step{Name: "inspect", Policy: BestEffort, Run: b.dumper.Dump}
	steps := []Step{
		inspect,
		{Name: "configure", Policy: Required, Run: b.configure},
		{Name: "bootstrap", Policy: Required, Run: b.bootstrap.Run},
		inspect,
		{Name: "stage-config", Policy: Required, Run: b.stageConfig},
		{Name: "verify-backup-store", Policy: BestEffort, Run: b.verifyBackupStore},
		inspect,
		{Name: "restore", Policy: Required, Run: b.pgbackrest.Restore},
		inspect,
		{Name: "restore-config", Policy: Required, Run: b.restoreConfig},
		{Name: "start-server", Policy: Required, Run: b.startServer},
	}
	return &Runner{Steps: steps, Announcer: b.announcer, Logger: b.log}, nil
}

// builder holds the collaborators and the state steps share within one
// run. The credentials resolved by configure are reused by the probe.
type builder struct {
	cfg        Config
	deps       Deps
	log        *slog.Logger
	announcer  *logging.Announcer
	dumper     *diagnostics.Dumper
	pgbackrest *pgbackrest.Commands
	bootstrap  Bootstrapper
	starter    Starter

	creds pgbackrest.Credentials
}

func newBuilder(cfg Config, deps Deps) *builder {
	log := logging.OrDefault(deps.Logger)
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.NewProber == nil {
		deps.NewProber = func(c objstore.Config) (Prober, error) {
			return objstore.NewProber(c, log)
		}
	}

	b := &builder{
		cfg:        cfg,
		deps:       deps,
		log:        log,
		announcer:  logging.NewAnnouncer(deps.Out),
		dumper:     &diagnostics.Dumper{Exec: deps.Exec, DataDir: cfg.DataDir, Logger: log},
		pgbackrest: &pgbackrest.Commands{Exec: deps.Exec, ConfigPath: cfg.ConfigPath},
		bootstrap:  deps.Bootstrap,
		starter:    deps.Starter,
	}
	if b.bootstrap == nil {
		b.bootstrap = readiness.New(readiness.Options{
			DataDir:     cfg.DataDir,
			Mirror:      deps.Out,
			StopTimeout: cfg.StopTimeout,
			Exec:        deps.Exec,
			Announcer:   b.announcer,
			Logger:      log,
		})
	}
	if b.starter == nil {
		b.starter = newStarter(cfg.Handoff, deps.Exec, log)
	}
	return b
}

func (b *builder) configure(ctx context.Context) error {
	values := make(map[string]*credential.Secret, 3)
	for _, name := range []string{AccessKeyVar, SecretKeyVar, BucketVar} {
		s, err := b.deps.Credentials.Resolve(ctx, name)
		if err != nil {
			return fmt.Errorf("resolve credentials: %w", err)
		}
		values[name] = s
	}

	b.creds = pgbackrest.Credentials{
		AccessKey: values[AccessKeyVar].Reveal(),
		SecretKey: values[SecretKeyVar],
		Region:    pgbackrest.DefaultRegion,
		Bucket:    values[BucketVar].Reveal(),
	}
	text, err := pgbackrest.Render(b.creds, b.cfg.Target, b.cfg.DataDir)
	if err != nil {
		return err
	}
	if err := pgbackrest.WriteConfig(b.cfg.ConfigPath, text); err != nil {
		return err
	}
	b.log.Info("wrote pgbackrest config",
		"path", b.cfg.ConfigPath,
		"target", b.cfg.Target,
		"repo_path", b.cfg.Target.RepoPath(),
	)
	return nil
}

func (b *builder) stageConfig(ctx context.Context) error {
	if err := fileutil.EnsureDir(b.cfg.StagingDir); err != nil {
		return err
	}
	copied, _, err := fileutil.CopyMatching(b.cfg.DataDir, confPattern, b.cfg.StagingDir, &stageCopyOptions)
	if err != nil {
		return fmt.Errorf("stage config files: %w", err)
	}
	b.log.Info("staged config files", "dir", b.cfg.StagingDir, "files", len(copied))
	b.dumpBestEffort(ctx)
	return nil
}

func (b *builder) verifyBackupStore(ctx context.Context) error {
	errs := []error{b.pgbackrest.Info(ctx)}
	if b.cfg.ProbeObjectStore {
		errs = append(errs, b.probe(ctx))
	}
	return errors.Join(errs...)
}

func (b *builder) probe(ctx context.Context) error {
	p, err := b.deps.NewProber(objstore.Config{
		Endpoint:  objstore.DefaultEndpoint,
		AccessKey: b.creds.AccessKey,
		SecretKey: b.creds.SecretKey.Reveal(),
		Region:    b.creds.Region,
		Bucket:    b.creds.Bucket,
		Prefix:    b.cfg.Target.RepoPath(),
	})
	if err != nil {
		return fmt.Errorf("create object store prober: %w", err)
	}
	if err := p.Probe(ctx); err != nil {
		return fmt.Errorf("probe backup store: %w", err)
	}
	return nil
}

func (b *builder) restoreConfig(ctx context.Context) error {
	restored, skipped, err := fileutil.CopyMatching(b.cfg.StagingDir, confPattern, b.cfg.DataDir, &restoreCopyOptions)
	if err != nil {
		return fmt.Errorf("restore config files: %w", err)
	}
	b.log.Info("restored config files", "restored", len(restored), "kept_existing", len(skipped))

	confs, err := filepath.Glob(filepath.Join(b.cfg.DataDir, confPattern))
	if err != nil {
		return fmt.Errorf("list config files: %w", err)
	}
	if err := fileutil.MatchReference(filepath.Join(b.cfg.DataDir, versionFile), confs); err != nil {
		return fmt.Errorf("fix config file permissions: %w", err)
	}
	if err := fileutil.RemoveDir(b.cfg.StagingDir); err != nil {
		return err
	}
	b.dumpBestEffort(ctx)
	return nil
}

func (b *builder) startServer(ctx context.Context) error {
	return b.starter.Start(ctx, ServerCommand)
}

func (b *builder) dumpBestEffort(ctx context.Context) {
	if err := b.dumper.Dump(ctx); err != nil {
		b.log.Warn("inspect data directory failed, continuing", "error", err)
	}
}

// Command ndnfsd mounts the segment-versioned, per-segment-signed FUSE
// filesystem at a configured mount point, backed by a sqlite metastore.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse/nodefs"
	"github.com/hanwen/go-fuse/v2/fuse/pathfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Anson14/ndnfs-d/internal/fsop"
	"github.com/Anson14/ndnfs-d/internal/fuseadapter"
	"github.com/Anson14/ndnfs-d/internal/metastore"
	"github.com/Anson14/ndnfs-d/internal/namespace"
	"github.com/Anson14/ndnfs-d/internal/segment"
	ndnerrors "github.com/Anson14/ndnfs-d/pkg/errors"
	"github.com/Anson14/ndnfs-d/pkg/filesys"
	"github.com/Anson14/ndnfs-d/pkg/options"
	"github.com/Anson14/ndnfs-d/pkg/signer"
)

var (
	configPath    string
	dbPath        string
	mountPoint    string
	globalPrefix  string
	keyID         string
	masterKeyPath string
	segmentSize   uint32
	uid           uint32
	gid           uint32
	debug         bool
)

func main() {
	root := &cobra.Command{
		Use:   "ndnfsd",
		Short: "mount a segment-versioned, per-segment-signed FUSE filesystem",
		RunE:  run,
	}

	flags := root.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML configuration file")
	flags.StringVar(&dbPath, "db", "", "metastore database path (overrides config)")
	flags.StringVar(&mountPoint, "mount", "", "FUSE mount point (overrides config)")
	flags.StringVar(&globalPrefix, "global-prefix", "", "hierarchical segment name prefix (overrides config)")
	flags.StringVar(&keyID, "key-id", "", "signing key identifier (overrides config)")
	flags.StringVar(&masterKeyPath, "master-key-file", "", "path to the raw signing master key (overrides config)")
	flags.Uint32Var(&segmentSize, "seg-size", 0, "segment size in bytes (overrides config)")
	flags.Uint32Var(&uid, "uid", 0, "uid reported for every file (overrides config)")
	flags.Uint32Var(&gid, "gid", 0, "gid reported for every file (overrides config)")
	flags.BoolVar(&debug, "debug", false, "enable verbose FUSE and application logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := options.Load(configPath, buildOverrides()...)
	if err != nil {
		return err
	}

	log, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	masterKey, err := filesys.ReadFile(opts.MasterKeyPath)
	if err != nil {
		return ndnerrors.NewConfigurationError("master_key_path", "could not read signing key file: "+err.Error())
	}

	store, err := metastore.Open(ctx, opts.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	eng := segment.New(segment.Config{
		Store:        store,
		Signer:       signer.New(masterKey, opts.KeyID),
		SegmentSize:  opts.SegmentSize,
		GlobalPrefix: opts.GlobalPrefix,
		Logger:       log,
	})
	defer eng.Close()

	if n, err := eng.ReclaimOrphans(ctx); err != nil {
		return err
	} else if n > 0 {
		log.Infow("reclaimed orphaned staging segments from a prior crash", "count", n)
	}

	ns, err := namespace.New(ctx, namespace.Config{
		Store: store, UID: opts.UID, GID: opts.GID, Logger: log,
	})
	if err != nil {
		return err
	}

	disp := fsop.New(fsop.Config{Namespace: ns, Segment: eng, Logger: log})
	adapter := fuseadapter.New(fuseadapter.Config{Namespace: ns, Dispatcher: disp, Logger: log})

	nodeFs := pathfs.NewPathNodeFs(adapter, nil)
	server, _, err := nodefs.MountRoot(opts.MountPoint, nodeFs.Root(), nil)
	if err != nil {
		return fmt.Errorf("mount %s: %w", opts.MountPoint, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infow("shutdown signal received, unmounting", "mount", opts.MountPoint)
		server.Unmount()
	}()

	log.Infow("ndnfsd mounted", "mount", opts.MountPoint, "db", opts.DatabasePath)
	server.Serve()
	return nil
}

func buildOverrides() []options.OptionFunc {
	var overrides []options.OptionFunc
	if dbPath != "" {
		overrides = append(overrides, options.WithDatabasePath(dbPath))
	}
	if mountPoint != "" {
		overrides = append(overrides, options.WithMountPoint(mountPoint))
	}
	if globalPrefix != "" {
		overrides = append(overrides, options.WithGlobalPrefix(globalPrefix))
	}
	if keyID != "" {
		overrides = append(overrides, options.WithKeyID(keyID))
	}
	if masterKeyPath != "" {
		overrides = append(overrides, options.WithMasterKeyPath(masterKeyPath))
	}
	if segmentSize != 0 {
		overrides = append(overrides, options.WithSegmentSize(segmentSize))
	}
	if uid != 0 || gid != 0 {
		overrides = append(overrides, options.WithOwnership(uid, gid))
	}
	return overrides
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var l *zap.Logger
	var err error
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

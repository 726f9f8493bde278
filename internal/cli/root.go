package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/modhouse/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// Persistent flags default to the environment configuration and override it.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "modhouse configures modular houses",
		Long:         `modhouse builds modular house layouts from module DNA sequences and stretches them: wider by swapping section types, longer by extending the bookends over filler columns.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.Config.Catalog, "catalog", c.Config.Catalog, "catalog TOML file (env MODHOUSE_CATALOG)")
	flags.StringVar(&c.Config.CacheDir, "cache-dir", c.Config.CacheDir, "cache directory (env MODHOUSE_CACHE_DIR)")
	flags.StringVar(&c.Config.RedisAddr, "redis", c.Config.RedisAddr, "shared Redis cache address (env MODHOUSE_REDIS_ADDR)")
	flags.StringVar(&c.Config.GeometryURL, "geometry-url", c.Config.GeometryURL, "remote geometry service (env MODHOUSE_GEOMETRY_URL)")
	flags.BoolVar(&c.Config.Strict, "strict", c.Config.Strict, "fail on out-of-order gestures (env MODHOUSE_STRICT)")
	flags.DurationVar(&c.Config.Timeout, "timeout", c.Config.Timeout, "deadline for one run, 0 for none (env MODHOUSE_TIMEOUT)")
	flags.Float64Var(&c.Config.MaxDepth, "max-depth", c.Config.MaxDepth, "maximum house length for z stretching, in metres (env MODHOUSE_MAX_DEPTH)")

	// Register all subcommands
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.alternativesCommand())
	root.AddCommand(c.stretchCommand())
	root.AddCommand(c.cutCommand())
	root.AddCommand(c.interactiveCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modhouse/pkg/pipeline"
)

// buildOpts holds the flags shared by the layout and stretch commands.
type buildOpts struct {
	output   string   // output file (single format) or base path (multiple)
	formats  string   // comma-separated output formats
	detailed bool     // label every module in graph renderings
	noCache  bool     // disable the snapshot and geometry caches
	refresh  bool     // rebuild even when the snapshot is cached
	clip     []string // clip planes such as "y=3"
	gestures []string // gesture plan such as "x:end:1.5"
}

func (o *buildOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s): json (default), dot, svg, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "label every module in dot/svg/png/pdf output")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "rebuild even when cached")
	cmd.Flags().StringArrayVar(&o.clip, "clip", nil, "clip plane, e.g. y=3 (repeatable)")
	cmd.ValidArgsFunction = completeHouseTypes
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

// layoutCommand creates the layout command: build a house type as is.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "layout <house-type>",
		Short: "Build the layout of a house type",
		Long: `Build the layout of a house type and write it out.

The house type is a JSON or TOML file naming the building system and the
module DNA sequence. Pass "-" to read JSON from stdin.`,
		Example: `  modhouse layout examples/house.toml
  modhouse layout examples/house.toml -f json,svg -o out/house`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	return cmd
}

// runBuild runs the pipeline for one house-type file and writes its artifacts.
func (c *CLI) runBuild(ctx context.Context, input string, opts buildOpts) error {
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	idx, hash, err := c.loadCatalog()
	if err != nil {
		return err
	}
	ht, err := loadHouseType(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		HouseType:   ht,
		MaxDepth:    c.Config.MaxDepth,
		Strict:      c.Config.Strict,
		Refresh:     opts.refresh,
		Clip:        opts.clip,
		Gestures:    opts.gestures,
		Formats:     formats,
		Detailed:    opts.detailed,
		Catalog:     idx,
		CatalogHash: hash,
		Provider:    c.provider(runner.Cache),
	}

	spinner := c.spinner(ctx, "Building "+houseLabel(ht.Name, input)+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.StopWithSuccess("Built " + houseLabel(ht.Name, input))

	snap := result.Snapshot
	printKeyValue("System", snap.SystemID)
	printKeyValue("Section", formatSection(snap.SectionType))
	printKeyValue("Size", formatSize(snap.Width, snap.Height, snap.Depth))
	printSwaps(result.Swaps)
	printStats(result.Stats, result.CacheInfo.SnapshotHit)

	if err := writeArtifacts(ctx, result.Artifacts, formats, basePath(opts.output, input)); err != nil {
		return err
	}
	if len(opts.gestures) == 0 && input != "-" {
		printNewline()
		printNextStep("Stretch it", appName+" stretch "+input+" -g x:end:1.5")
	}
	return nil
}

// writeArtifacts writes one file per format.
func writeArtifacts(ctx context.Context, artifacts map[string][]byte, formats []string, base string) error {
	logger := loggerFromContext(ctx)
	multi := len(formats) > 1
	for _, f := range formats {
		path := outputPath(base, f, multi)
		if !multi && filepath.Ext(path) == "" {
			path += "." + f
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debugf("Generated %s: %d bytes", path, len(artifacts[f]))
		printFile(path)
	}
	return nil
}

// basePath derives the output base path. Without an explicit output it is
// the input file name without extension, or "house" for stdin.
func basePath(output, input string) string {
	if output != "" {
		return output
	}
	if input == "-" {
		return "house"
	}
	name := filepath.Base(input)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func houseLabel(name, input string) string {
	if name != "" {
		return name
	}
	if input == "-" {
		return "house"
	}
	return filepath.Base(input)
}

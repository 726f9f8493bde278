package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/modhouse/pkg/cache"
	"github.com/matzehuels/modhouse/pkg/catalog"
	"github.com/matzehuels/modhouse/pkg/catalog/catalogtest"
	mhio "github.com/matzehuels/modhouse/pkg/io"
)

// fixtures writes the test catalog and a two-storey W4 house type.
func fixtures(t *testing.T) (dir string, cfg Config, housePath string) {
	t.Helper()
	dir = t.TempDir()

	catalogPath := filepath.Join(dir, "catalog.toml")
	f, err := os.Create(catalogPath)
	if err != nil {
		t.Fatal(err)
	}
	file := catalog.File{Systems: []catalog.SystemDef{catalogtest.SystemDef()}}
	if err := toml.NewEncoder(f).Encode(file); err != nil {
		t.Fatal(err)
	}
	f.Close()

	housePath = filepath.Join(dir, "house.json")
	f, err = os.Create(housePath)
	if err != nil {
		t.Fatal(err)
	}
	ht := mhio.HouseType{SystemID: catalogtest.SystemID, Name: "two storey", DNAs: catalogtest.TwoStorey(4)}
	if err := mhio.WriteHouseType(ht, f, mhio.FormatJSON); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg = Config{
		Catalog:  catalogPath,
		CacheDir: filepath.Join(dir, "cache"),
		MaxDepth: 24,
	}
	return dir, cfg, housePath
}

func runCLI(t *testing.T, cfg Config, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo, cfg)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func readSnapshot(t *testing.T, path string) *mhio.Snapshot {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	snap, err := mhio.ReadSnapshot(f)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestRootCommandRegistersCommands(t *testing.T) {
	root := New(io.Discard, LogInfo, Config{}).RootCommand()
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, want := range []string{"alternatives", "cache", "catalog", "completion", "cut", "interactive", "layout", "serve", "stretch"} {
		found := false
		for _, name := range got {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("command %q not registered (have %v)", want, got)
		}
	}
}

func TestPersistentFlagsOverrideConfig(t *testing.T) {
	c := New(io.Discard, LogInfo, Config{Catalog: "env.toml", MaxDepth: 24})
	root := c.RootCommand()
	if err := root.ParseFlags([]string{"--catalog", "flag.toml", "--max-depth", "12", "--strict", "--timeout", "2m"}); err != nil {
		t.Fatal(err)
	}
	if c.Config.Catalog != "flag.toml" || c.Config.MaxDepth != 12 || !c.Config.Strict || c.Config.Timeout != 2*time.Minute {
		t.Errorf("config = %+v, want flag values", c.Config)
	}
}

func TestDeadline(t *testing.T) {
	c := New(io.Discard, LogInfo, Config{})
	ctx, cancel := c.deadline(context.Background())
	if _, ok := ctx.Deadline(); ok {
		t.Error("deadline set without a timeout")
	}
	cancel()

	c.Config.Timeout = time.Minute
	ctx, cancel = c.deadline(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("no deadline with a timeout")
	}
}

func TestLayoutCommandTimeout(t *testing.T) {
	_, cfg, house := fixtures(t)
	cfg.Timeout = time.Nanosecond
	if err := runCLI(t, cfg, "layout", house, "-o", filepath.Join(t.TempDir(), "h.json")); err == nil {
		t.Error("expected the build to exceed its deadline")
	}
}

func TestLayoutCommand(t *testing.T) {
	dir, cfg, house := fixtures(t)
	out := filepath.Join(dir, "out", "house")

	if err := runCLI(t, cfg, "layout", house, "-o", out, "-f", "json,dot"); err != nil {
		t.Fatalf("layout: %v", err)
	}

	snap := readSnapshot(t, out+".json")
	if snap.SectionType.Code != "W4" || len(snap.Columns) != 4 || snap.Levels != 2 {
		t.Errorf("snapshot = %s, %d columns, %d levels", snap.SectionType.Code, len(snap.Columns), snap.Levels)
	}
	dot, err := os.ReadFile(out + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "digraph") {
		t.Errorf("dot output does not look like a graph:\n%s", dot)
	}
}

func TestStretchCommand(t *testing.T) {
	dir, cfg, house := fixtures(t)
	out := filepath.Join(dir, "stretched.json")

	if err := runCLI(t, cfg, "stretch", house, "-g", "x:end:1.5", "-o", out); err != nil {
		t.Fatalf("stretch: %v", err)
	}
	if got := readSnapshot(t, out).SectionType.Code; got != "W5" {
		t.Errorf("section after stretch = %s, want W5", got)
	}

	if err := runCLI(t, cfg, "stretch", house, "-g", "y:end:1"); err == nil {
		t.Error("stretch with a y gesture should fail")
	}
}

func TestCommandErrors(t *testing.T) {
	_, cfg, house := fixtures(t)

	tests := []struct {
		name string
		cfg  Config
		args []string
		want string
	}{
		{"no catalog", Config{}, []string{"layout", house}, "no catalog"},
		{"bad format", cfg, []string{"layout", house, "-f", "gif"}, "invalid format"},
		{"missing house type", cfg, []string{"layout", "nope.json"}, "nope.json"},
		{"unknown system", cfg, []string{"catalog", "modules", "nope"}, "nope"},
		{"bad plane", cfg, []string{"cut", house, "--plane", "q=1"}, "unknown axis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, tt.cfg, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestInspectionCommands(t *testing.T) {
	_, cfg, house := fixtures(t)
	for _, args := range [][]string{
		{"catalog"},
		{"catalog", "modules", catalogtest.SystemID, "-s", "W4"},
		{"alternatives", house, "--by-width"},
		{"cut", house, "--plane", "y=3"},
		{"cut", house, "--plane", "y=3", "--json"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if err := runCLI(t, cfg, args...); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCacheClearCommand(t *testing.T) {
	_, cfg, _ := fixtures(t)
	fc, err := cache.NewFileCache(cfg.CacheDir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	if err := runCLI(t, cfg, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := fc.Get(ctx, "k"); hit {
		t.Error("entry survived cache clear")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"json"}},
		{"svg", []string{"svg"}},
		{"json, svg,,png", []string{"json", "svg", "png"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, parseFormats(tt.in)); diff != "" {
			t.Errorf("parseFormats(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		output, input, format string
		multi                 bool
		want                  string
	}{
		{"", "houses/a.toml", "json", false, "a"},
		{"", "-", "json", true, "house.json"},
		{"out/h.svg", "a.toml", "svg", false, "out/h.svg"},
		{"out/h.svg", "a.toml", "png", true, "out/h.png"},
	}
	for _, tt := range tests {
		got := outputPath(basePath(tt.output, tt.input), tt.format, tt.multi)
		if got != tt.want {
			t.Errorf("outputPath(basePath(%q, %q), %q, %v) = %q, want %q", tt.output, tt.input, tt.format, tt.multi, got, tt.want)
		}
	}
}

func TestParseClipPresets(t *testing.T) {
	got, err := parseClipPresets([]string{"none", "y=3,z=4"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Active() || len(got[1].Planes) != 2 {
		t.Errorf("presets = %+v", got)
	}

	if got, _ := parseClipPresets(nil); len(got) != 1 || got[0].Active() {
		t.Errorf("empty presets = %+v, want a single inactive preset", got)
	}
	if _, err := parseClipPresets([]string{"y=high"}); err == nil {
		t.Error("expected an error for a bad offset")
	}
}

func TestNewCacheSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     Config
		noCache bool
		home    string
		want    string
	}{
		{"no cache flag", Config{CacheDir: dir}, true, dir, "null"},
		{"cache dir", Config{CacheDir: dir}, false, dir, "file"},
		{"no usable home", Config{}, false, "", "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", "")
			t.Setenv("HOME", tt.home)
			c := New(io.Discard, LogInfo, tt.cfg)
			ch, err := c.newCache(context.Background(), tt.noCache)
			if err != nil {
				t.Fatal(err)
			}
			defer ch.Close()
			got := "file"
			if _, ok := ch.(cache.NullCache); ok {
				got = "null"
			}
			if got != tt.want {
				t.Errorf("backend = %s, want %s", got, tt.want)
			}
		})
	}
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/toppgo/toppgo/pkg/errors"
)

const sampleConfig = `
[filter]
p_value_cutoff = 0.01
direction = "down"
min_genes = 5

[columns]
effect = "log2FoldChange"
p_value = "padj"

[enrich]
categories = ["Pathway", "Disease"]
correction = "Bonferroni"

[output]
format = "csv"
split_clusters = true

[server]
addr = ":9090"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toppgo.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Filter.PValueCutoff != 0.01 {
		t.Errorf("Filter.PValueCutoff = %v, want 0.01", cfg.Filter.PValueCutoff)
	}
	if cfg.Filter.Direction != "down" {
		t.Errorf("Filter.Direction = %q, want down", cfg.Filter.Direction)
	}
	if cfg.Columns.Effect != "log2FoldChange" {
		t.Errorf("Columns.Effect = %q", cfg.Columns.Effect)
	}
	if len(cfg.Enrich.Categories) != 2 {
		t.Errorf("Enrich.Categories = %v", cfg.Enrich.Categories)
	}
	if !cfg.Output.SplitClusters {
		t.Error("Output.SplitClusters = false, want true")
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("error code = %v, want IO_ERROR", errors.GetCode(err))
	}
}

func TestLoadConfig_DefaultMissingFileIsFine(t *testing.T) {
	// Run from a directory without a toppgo.toml.
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Filter.PValueCutoff != 0 {
		t.Errorf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "[filter\nbroken"))
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Fatalf("error code = %v, want PARSE_ERROR", errors.GetCode(err))
	}
}

func TestApplyConfig_FlagsBeatConfig(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}

	var configPath string
	cmd := newQueryCmd(&configPath)
	if err := cmd.Flags().Parse([]string{"--direction", "up", "markers.csv"}); err != nil {
		t.Fatal(err)
	}

	var f queryFlags
	f.direction, _ = cmd.Flags().GetString("direction")
	f.minGenes, _ = cmd.Flags().GetInt("min-genes")
	f.applyConfig(cmd, cfg)

	if f.direction != "up" {
		t.Errorf("direction = %q, explicit flag must beat config", f.direction)
	}
	if f.minGenes != 5 {
		t.Errorf("minGenes = %d, config must beat built-in default", f.minGenes)
	}
}

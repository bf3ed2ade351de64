package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/toppgo/toppgo/pkg/errors"
)

// defaultConfigFile is picked up from the working directory when --config is
// not given.
const defaultConfigFile = "toppgo.toml"

// Config is the optional TOML configuration file. Every field mirrors a
// command-line flag; explicit flags always win over file values.
type Config struct {
	Filter  FilterConfig  `toml:"filter"`
	Columns ColumnsConfig `toml:"columns"`
	Enrich  EnrichConfig  `toml:"enrich"`
	Output  OutputConfig  `toml:"output"`
	Server  ServerConfig  `toml:"server"`
}

// FilterConfig configures marker-table filtering.
type FilterConfig struct {
	PValueCutoff float64 `toml:"p_value_cutoff"`
	EffectCutoff float64 `toml:"effect_cutoff"`
	Direction    string  `toml:"direction"`
	MaxGenes     int     `toml:"max_genes"`
	MinGenes     int     `toml:"min_genes"`
}

// ColumnsConfig maps marker-table column names.
type ColumnsConfig struct {
	Cluster string `toml:"cluster"`
	Gene    string `toml:"gene"`
	Effect  string `toml:"effect"`
	PValue  string `toml:"p_value"`
}

// EnrichConfig configures the enrichment request.
type EnrichConfig struct {
	Categories   []string `toml:"categories"`
	Correction   string   `toml:"correction"`
	PValueCutoff float64  `toml:"p_value_cutoff"`
	MaxResults   int      `toml:"max_results"`
}

// OutputConfig configures result export.
type OutputConfig struct {
	Dir           string `toml:"dir"`
	Prefix        string `toml:"prefix"`
	Format        string `toml:"format"`
	SplitClusters bool   `toml:"split_clusters"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// loadConfig reads the TOML file at path. An empty path falls back to
// toppgo.toml in the working directory; a missing default file is not an
// error, a missing explicit file is.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return &cfg, nil
		}
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeParse, err, "config file %s", path)
	}
	return &cfg, nil
}

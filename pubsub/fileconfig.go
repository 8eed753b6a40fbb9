package pubsub

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FileConfig is the TOML representation of bus configuration. Pointer
// fields distinguish "absent" from zero values.
//
//	[pubsub]
//	priority_min = 0
//	priority_max = 300
//	default_priority = 100
//	default_group = "default"
//	strict_groups = false
type FileConfig struct {
	Pubsub struct {
		PriorityMin     *int   `toml:"priority_min"`
		PriorityMax     *int   `toml:"priority_max"`
		DefaultPriority *int   `toml:"default_priority"`
		DefaultGroup    string `toml:"default_group"`
		StrictGroups    bool   `toml:"strict_groups"`
	} `toml:"pubsub"`
}

// Options converts the file configuration into bus options.
func (fc *FileConfig) Options() []Option {
	var opts []Option

	p := fc.Pubsub
	if p.PriorityMin != nil || p.PriorityMax != nil {
		cfg := defaultBusConfig()
		lo, hi := cfg.domainMin, cfg.domainMax
		if p.PriorityMin != nil {
			lo = Priority(*p.PriorityMin)
		}
		if p.PriorityMax != nil {
			hi = Priority(*p.PriorityMax)
		}
		opts = append(opts, WithPriorityDomain(lo, hi))
	}
	if p.DefaultPriority != nil {
		opts = append(opts, WithDefaultPriority(Priority(*p.DefaultPriority)))
	}
	if p.DefaultGroup != "" {
		opts = append(opts, WithDefaultGroup(GroupName(p.DefaultGroup)))
	}
	if p.StrictGroups {
		opts = append(opts, WithStrictGroups())
	}

	return opts
}

// LoadConfig reads bus options from a TOML file. A missing file is not an
// error; it yields no options.
func LoadConfig(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses TOML data into bus options.
func ParseConfig(data []byte) ([]Option, error) {
	var fc FileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return fc.Options(), nil
}

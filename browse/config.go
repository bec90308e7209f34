package browse

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the tuning surface of the prefetch pipeline. The zero value
// of any field falls back to the documented default.
type Config struct {
	// Workers is the number of decode goroutines.
	Workers int `yaml:"workers"`
	// LookAhead and LookBehind are how many images beyond the buffer zone
	// are kept ready in each direction.
	LookAhead  int `yaml:"look_ahead"`
	LookBehind int `yaml:"look_behind"`
	// BufferZone is the navigation radius that does not move the load
	// pivot.
	BufferZone int `yaml:"buffer_zone"`
}

// DefaultConfig returns the tuning used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Workers:    4,
		LookAhead:  2,
		LookBehind: 1,
		BufferZone: 1,
	}
}

// LoadConfig reads a yaml config file and fills unset fields with
// defaults.
func LoadConfig(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var ret Config
	err = yaml.Unmarshal(data, &ret)
	if err != nil {
		return nil, err
	}
	if err := ret.normalize(); err != nil {
		return nil, err
	}
	return &ret, nil
}

// normalize applies defaults to zero fields and rejects values the
// pipeline cannot run with.
func (c *Config) normalize() error {
	def := DefaultConfig()
	if c.Workers == 0 {
		c.Workers = def.Workers
	}
	if c.LookAhead == 0 {
		c.LookAhead = def.LookAhead
	}
	if c.LookBehind == 0 {
		c.LookBehind = def.LookBehind
	}
	if c.BufferZone == 0 {
		c.BufferZone = def.BufferZone
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.LookAhead < 0 || c.LookBehind < 0 || c.BufferZone < 0 {
		return fmt.Errorf("look_ahead, look_behind and buffer_zone must not be negative")
	}
	return nil
}

func (c Config) policy() LoadingPolicy {
	return LoadingPolicy{
		LookAhead:  c.LookAhead,
		LookBehind: c.LookBehind,
		BufferZone: c.BufferZone,
	}
}

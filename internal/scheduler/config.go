// Package scheduler runs describe tasks on a bounded worker pool.
package scheduler

// Config defines the scheduler configuration.
type Config struct {
	// Workers is the maximum number of concurrent tasks across all classes.
	Workers int `yaml:"workers"`
	// ByClass defines per-class concurrency limits.
	ByClass map[string]int `yaml:"by_class"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers: 4,
		ByClass: map[string]int{},
	}
}

// GetClassLimit returns the concurrency limit for a class. Zero means the
// class is bounded only by Workers.
func (c *Config) GetClassLimit(class string) int {
	if limit, ok := c.ByClass[class]; ok && limit > 0 {
		return limit
	}
	return 0
}

package config

import "fmt"

// Output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// OutputConfig controls where run results are written.
type OutputConfig struct {
	Dir    string `json:"dir"`
	Format string `json:"format"`
	// Policy also writes the optimal policy table when true.
	Policy bool `json:"policy"`
}

// SetDefaults writes JSON into ./out.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
	if c.Format == "" {
		c.Format = FormatJSON
	}
}

func (c OutputConfig) Validate() error {
	if c.Format != FormatJSON && c.Format != FormatCSV {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}

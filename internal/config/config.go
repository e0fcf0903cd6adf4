package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataFile  string `mapstructure:"data_file" yaml:"data_file"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	SiteTitle string `mapstructure:"site_title" yaml:"site_title"`
	DataSheet string `mapstructure:"data_sheet" yaml:"data_sheet"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Rows with year <= StartingYear are dropped during cleaning.
	StartingYear int `mapstructure:"starting_year" yaml:"starting_year"`
	StepSize     int `mapstructure:"step_size" yaml:"step_size"`

	PrimaryRoadUsers   []string   `mapstructure:"primary_road_users" yaml:"primary_road_users"`
	InvolvementColumns []string   `mapstructure:"involvement_columns" yaml:"involvement_columns"`
	Groups             [][]string `mapstructure:"groups" yaml:"groups"`

	// Chart output
	ImageFormat string `mapstructure:"image_format" yaml:"image_format"`
	ImageWidth  int    `mapstructure:"image_width" yaml:"image_width"`
	ImageHeight int    `mapstructure:"image_height" yaml:"image_height"`

	KeepGoing     bool `mapstructure:"keep_going" yaml:"keep_going"`
	WriteWorkbook bool `mapstructure:"write_workbook" yaml:"write_workbook"`

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// Defaults used when neither the config file nor the environment set a key.
var (
	DefaultPrimaryRoadUsers   = []string{"Driver", "Passenger", "Motorcycle rider", "Pedestrian"}
	DefaultInvolvementColumns = []string{"bus_involvement", "rigid_truck_involvement", "articulated_truck_involvement"}
	DefaultGroups             = [][]string{
		{"age", "gender"},
		{"state"},
		{"dayweek", "hour", "year"},
		{"road_user"},
		{"crash_type"},
		{"speed_limit"},
	}
)

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.roadstats/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("ROADSTATS")
	v.AutomaticEnv()

	v.SetDefault("data_file", filepath.Join("data", "traffic.csv"))
	v.SetDefault("output_dir", "static")
	v.SetDefault("site_title", "Australian Road Fatalities")
	v.SetDefault("data_sheet", "")
	v.SetDefault("delimiter", "")
	v.SetDefault("starting_year", 2006)
	v.SetDefault("step_size", 10)
	v.SetDefault("primary_road_users", DefaultPrimaryRoadUsers)
	v.SetDefault("involvement_columns", DefaultInvolvementColumns)
	v.SetDefault("groups", DefaultGroups)
	v.SetDefault("image_format", "jpg")
	v.SetDefault("image_width", 800)
	v.SetDefault("image_height", 600)
	v.SetDefault("keep_going", false)
	v.SetDefault("write_workbook", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing default config is fine; an explicit one must exist
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values that would only fail later, mid-run.
func (c *Global) Validate() error {
	switch c.ImageFormat {
	case "jpg", "jpeg", "png":
	default:
		return fmt.Errorf("invalid image_format: %s (use jpg or png)", c.ImageFormat)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("invalid step_size: %d", c.StepSize)
	}
	if c.ImageWidth <= 0 || c.ImageHeight <= 0 {
		return fmt.Errorf("invalid image size: %dx%d", c.ImageWidth, c.ImageHeight)
	}
	if len(c.InvolvementColumns) == 0 {
		return fmt.Errorf("involvement_columns must not be empty")
	}
	for i, g := range c.Groups {
		if len(g) == 0 {
			return fmt.Errorf("groups[%d] is empty", i)
		}
	}
	return nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".roadstats"), nil
}

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/roadstats-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set roadstats configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "data_file: %s\n", cfg.DataFile)
		if cfg.DataSheet != "" {
			fmt.Fprintf(out, "data_sheet: %s\n", cfg.DataSheet)
		}
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "site_title: %s\n", cfg.SiteTitle)
		fmt.Fprintf(out, "starting_year: %d\n", cfg.StartingYear)
		fmt.Fprintf(out, "step_size: %d\n", cfg.StepSize)
		fmt.Fprintf(out, "primary_road_users: %s\n", strings.Join(cfg.PrimaryRoadUsers, ", "))
		fmt.Fprintf(out, "involvement_columns: %s\n", strings.Join(cfg.InvolvementColumns, ", "))
		groups := make([]string, len(cfg.Groups))
		for i, g := range cfg.Groups {
			groups[i] = "[" + strings.Join(g, " ") + "]"
		}
		fmt.Fprintf(out, "groups: %s\n", strings.Join(groups, " "))
		fmt.Fprintf(out, "image_format: %s\n", cfg.ImageFormat)
		fmt.Fprintf(out, "image_size: %dx%d\n", cfg.ImageWidth, cfg.ImageHeight)
		fmt.Fprintf(out, "keep_going: %t\n", cfg.KeepGoing)
		fmt.Fprintf(out, "write_workbook: %t\n", cfg.WriteWorkbook)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		if cfg.LogFile != "" {
			fmt.Fprintf(out, "log_file: %s\n", cfg.LogFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

List values (primary_road_users, involvement_columns) are comma separated.
groups takes ';' between pages and ',' between fields, e.g. "age,gender;state".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		switch key {
		case "data_file":
			c.DataFile = val
		case "data_sheet":
			c.DataSheet = val
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			c.Delimiter = val
		case "output_dir":
			c.OutputDir = val
		case "site_title":
			c.SiteTitle = val
		case "starting_year", "step_size", "image_width", "image_height":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %w", key, err)
			}
			switch key {
			case "starting_year":
				c.StartingYear = i
			case "step_size":
				c.StepSize = i
			case "image_width":
				c.ImageWidth = i
			default:
				c.ImageHeight = i
			}
		case "image_format":
			c.ImageFormat = strings.ToLower(val)
		case "keep_going", "write_workbook":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for %s: %w", key, err)
			}
			if key == "keep_going" {
				c.KeepGoing = b
			} else {
				c.WriteWorkbook = b
			}
		case "primary_road_users":
			c.PrimaryRoadUsers = splitList(val, ",")
		case "involvement_columns":
			c.InvolvementColumns = splitList(val, ",")
		case "groups":
			var groups [][]string
			for _, g := range splitList(val, ";") {
				groups = append(groups, splitList(g, ","))
			}
			c.Groups = groups
		case "log_level":
			c.LogLevel = val
		case "log_file":
			c.LogFile = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab", `\t`:
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use ',', ';' or tab)", s)
}

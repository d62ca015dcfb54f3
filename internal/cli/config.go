package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/the-recircle-app/veconnect/internal/config"
	"github.com/the-recircle-app/veconnect/internal/output"
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// configCmd is the parent for configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage veconnect configuration",
	Long: `View and modify the veconnect configuration file.

Keys use dot notation, e.g. "probe.max_attempts" or "output.color".

Example:
  veconnect config init
  veconnect config get network
  veconnect config set network testnet
  veconnect config list`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the full configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration keys",
	RunE:  runConfigList,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := config.Path(cfg.Home)

	if err := config.Save(cfg, path); err != nil {
		return err
	}

	return output.FormatSuccess(cmd.OutOrStdout(),
		fmt.Sprintf("Configuration written to %s", path), formatter.Format())
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return vcerr.Wrap(err, "failed to render configuration")
	}
	_, err = w.Write(data)
	return err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	value, err := configValue(cfg, key)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]string{"key": key, "value": value})
	}
	outln(w, value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if err := setConfigValue(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, config.Path(cfg.Home)); err != nil {
		return err
	}

	return output.FormatSuccess(cmd.OutOrStdout(),
		fmt.Sprintf("Set %s = %s", key, value), formatter.Format())
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	keys := config.Keys()

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		values := make(map[string]string, len(keys))
		for _, key := range keys {
			value, err := configValue(cfg, key)
			if err != nil {
				return err
			}
			values[key] = value
		}
		return writeJSON(w, values)
	}

	table := output.NewTable("KEY", "VALUE")
	for _, key := range keys {
		value, err := configValue(cfg, key)
		if err != nil {
			return err
		}
		table.AddRow(key, value)
	}
	return table.Render(w)
}

// configValue reads a configuration value by dot-notation key.
func configValue(c *config.Config, key string) (string, error) {
	switch key {
	case "home":
		return c.Home, nil
	case "network":
		return c.Network, nil
	case "app.name":
		return c.App.Name, nil
	case "probe.max_attempts":
		return strconv.Itoa(c.Probe.MaxAttempts), nil
	case "probe.interval_ms":
		return strconv.Itoa(c.Probe.IntervalMs), nil
	case "probe.overall_timeout_ms":
		return strconv.Itoa(c.Probe.OverallTimeoutMs), nil
	case "storage.address_file":
		return c.Storage.AddressFile, nil
	case "output.default_format":
		return c.Output.DefaultFormat, nil
	case "output.color":
		return c.Output.Color, nil
	case "output.verbose":
		return strconv.FormatBool(c.Output.Verbose), nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.file":
		return c.Logging.File, nil
	default:
		return "", unknownKeyError(key)
	}
}

// setConfigValue writes a configuration value by dot-notation key.
func setConfigValue(c *config.Config, key, value string) error {
	switch key {
	case "home":
		c.Home = value
	case "network":
		c.Network = value
	case "app.name":
		c.App.Name = value
	case "probe.max_attempts":
		return setConfigInt(&c.Probe.MaxAttempts, key, value)
	case "probe.interval_ms":
		return setConfigInt(&c.Probe.IntervalMs, key, value)
	case "probe.overall_timeout_ms":
		return setConfigInt(&c.Probe.OverallTimeoutMs, key, value)
	case "storage.address_file":
		c.Storage.AddressFile = value
	case "output.default_format":
		c.Output.DefaultFormat = value
	case "output.color":
		c.Output.Color = value
	case "output.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return vcerr.WithDetails(vcerr.ErrInvalidInput,
				map[string]string{"key": key, "value": value})
		}
		c.Output.Verbose = b
	case "logging.level":
		c.Logging.Level = value
	case "logging.file":
		c.Logging.File = value
	default:
		return unknownKeyError(key)
	}
	return nil
}

func setConfigInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return vcerr.WithDetails(vcerr.ErrInvalidInput,
			map[string]string{"key": key, "value": value})
	}
	*dst = n
	return nil
}

func unknownKeyError(key string) error {
	err := vcerr.WithDetails(vcerr.ErrUnknownConfigKey,
		map[string]string{"key": key})
	if suggestion := config.Suggest(key); suggestion != "" {
		err = vcerr.WithSuggestion(err,
			fmt.Sprintf("did you mean %q?", suggestion))
	}
	return err
}

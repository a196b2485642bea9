package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/nylas/nylas-go/internal/constants"
)

// Config represents the CLI configuration file.
type Config struct {
	APIKey  string `json:"api_key,omitempty"  yaml:"api_key,omitempty"`
	APIURI  string `json:"api_uri,omitempty"  yaml:"api_uri,omitempty"`
	Region  string `json:"region,omitempty"   yaml:"region,omitempty"`
	GrantID string `json:"grant_id,omitempty" yaml:"grant_id,omitempty"`
	Timeout string `json:"timeout,omitempty"  yaml:"timeout,omitempty"`
	Retries int    `json:"retries,omitempty"  yaml:"retries,omitempty"`
	Output  string `json:"output,omitempty"   yaml:"output,omitempty"`
}

var configKeys = []string{"api_key", "api_uri", "region", "grant_id", "timeout", "retries", "output"}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage Nylas CLI configuration stored in $HOME/.nylas/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration. The API key is masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.APIKey = maskSecret(config.APIKey)

			format := outputFormat()
			if format == constants.FormatJSON || format == constants.FormatYAML {
				return encode(cmd.OutOrStdout(), format, config)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Key", "Value")
			_ = table.Append("api_key", config.APIKey)
			_ = table.Append("api_uri", config.APIURI)
			_ = table.Append("region", config.Region)
			_ = table.Append("grant_id", config.GrantID)
			_ = table.Append("timeout", config.Timeout)
			_ = table.Append("retries", fmt.Sprintf("%d", config.Retries))
			_ = table.Append("output", config.Output)

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. When VALUE is omitted for api_key it is read from the terminal without echo.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				prompted, err := promptSecret(cmd, key)
				if err != nil {
					return err
				}

				value = prompted
			}

			config := loadFileConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadFileConfig()

			err := unsetConfigValue(config, args[0])
			if err != nil {
				return err
			}

			return saveConfig(config)
		},
	}
}

func promptSecret(cmd *cobra.Command, key string) (string, error) {
	if key != "api_key" {
		return "", fmt.Errorf("%w for %s", ErrValueRequired, key)
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "API key: ")

	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	return strings.TrimSpace(string(secret)), nil
}

// loadConfig returns the effective configuration, including flags and
// environment variables.
func loadConfig() *Config {
	return &Config{
		APIKey:  viper.GetString("api_key"),
		APIURI:  viper.GetString("api_uri"),
		Region:  viper.GetString("region"),
		GrantID: viper.GetString("grant_id"),
		Timeout: viper.GetDuration("timeout").String(),
		Retries: viper.GetInt("retries"),
		Output:  viper.GetString("output"),
	}
}

// loadFileConfig reads only the config file so flags are not persisted by
// accident. A missing file yields an empty config.
func loadFileConfig() *Config {
	config := &Config{}

	path, err := configFilePath()
	if err != nil {
		return config
	}

	// #nosec G304 -- path comes from --config or the home directory
	data, err := os.ReadFile(path)
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "api_key":
		config.APIKey = value
	case "api_uri":
		config.APIURI = value
	case "region":
		if value != "us" && value != "eu" {
			return fmt.Errorf("%w: region must be us or eu", ErrInvalidValue)
		}

		config.Region = value
	case "grant_id":
		config.GrantID = value
	case "timeout":
		_, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}

		config.Timeout = value
	case "retries":
		var retries int

		_, err := fmt.Sscanf(value, "%d", &retries)
		if err != nil || retries < 0 {
			return fmt.Errorf("%w: retries must be a non-negative integer", ErrInvalidValue)
		}

		config.Retries = retries
	case "output":
		if !slices.Contains([]string{constants.FormatTable, constants.FormatJSON, constants.FormatYAML}, value) {
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, value)
		}

		config.Output = value
	default:
		return fmt.Errorf("%w: %s (known keys: %s)", ErrUnknownConfigKey, key, strings.Join(configKeys, ", "))
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "api_key":
		config.APIKey = ""
	case "api_uri":
		config.APIURI = ""
	case "region":
		config.Region = ""
	case "grant_id":
		config.GrantID = ""
	case "timeout":
		config.Timeout = ""
	case "retries":
		config.Retries = 0
	case "output":
		config.Output = ""
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	return nil
}

func configFilePath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}

	if flag := viper.GetString("config"); flag != "" {
		return flag, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ConfigDirName, "config.yml"), nil
}

func saveConfig(config *Config) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func maskSecret(secret string) string {
	const visible = 4

	if len(secret) <= visible {
		return strings.Repeat("*", len(secret))
	}

	return strings.Repeat("*", len(secret)-visible) + secret[len(secret)-visible:]
}

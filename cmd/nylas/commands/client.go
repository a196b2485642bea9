package commands

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/pkg/nylas"
	"github.com/nylas/nylas-go/pkg/nylasclient"
)

// ConfigDirName is the directory under $HOME holding config.yml.
const ConfigDirName = ".nylas"

// Static errors for err113 compliance.
var (
	ErrNoAPIKey          = errors.New("no API key configured; use --api-key, NYLAS_API_KEY or 'nylas config set api_key'")
	ErrNoGrant           = errors.New("no grant configured; use --grant or 'nylas config set grant_id'")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrInvalidValue      = errors.New("invalid configuration value")
	ErrValueRequired     = errors.New("a value is required")
)

// newLogger writes human readable logs to w. Debug level is enabled by --verbose.
func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// clientConfig builds the SDK configuration from flags, environment and
// config file.
func clientConfig() (*nylas.Config, error) {
	apiKey := strings.TrimSpace(viper.GetString("api_key"))
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	config := &nylas.Config{
		APIKey:    apiKey,
		APIURI:    viper.GetString("api_uri"),
		Region:    nylas.Region(strings.ToLower(viper.GetString("region"))),
		Timeout:   viper.GetDuration("timeout"),
		UserAgent: "nylas-cli " + constants.DefaultUserAgent,
		Logger:    nylas.NewZerologLogger(newLogger(os.Stderr)),
		Debug:     viper.GetBool("verbose"),
	}

	if retries := viper.GetInt("retries"); retries > 0 {
		config.Transport = constants.AdapterRetryable
		config.RetryMax = retries
	}

	return config, nil
}

func newClient() (nylas.Client, error) {
	config, err := clientConfig()
	if err != nil {
		return nil, err
	}

	return nylasclient.New(config)
}

// resolveGrant returns the --grant flag value, falling back to the configured grant.
func resolveGrant(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}

	if configured := viper.GetString("grant_id"); configured != "" {
		return configured, nil
	}

	return "", ErrNoGrant
}

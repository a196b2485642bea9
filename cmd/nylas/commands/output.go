package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nylas/nylas-go/internal/constants"
	"github.com/nylas/nylas-go/pkg/nylas"
)

// encode writes value as indented JSON or YAML.
func encode(w io.Writer, format string, value any) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()

		return encoder.Encode(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func outputFormat() string {
	format := strings.ToLower(viper.GetString("output"))
	if format == "" {
		return constants.FormatTable
	}

	return format
}

func formatParticipants(participants []nylas.EmailName) string {
	addresses := make([]string, 0, len(participants))
	for _, participant := range participants {
		addresses = append(addresses, participant.Email)
	}

	return strings.Join(addresses, ", ")
}

func formatUnix(seconds int64) string {
	if seconds == 0 {
		return ""
	}

	return time.Unix(seconds, 0).UTC().Format(time.RFC3339)
}

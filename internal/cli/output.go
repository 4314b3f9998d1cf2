package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kyaoi/codepick/internal/ui"
)

type outputFormat string

const (
	formatYAML outputFormat = "yaml"
	formatJSON outputFormat = "json"
)

func parseFormat(value string) (outputFormat, error) {
	switch outputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", formatYAML, "yml":
		return formatYAML, nil
	case formatJSON:
		return formatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want yaml or json)", value)
}

// writeOutcome prints the submitted form. Nothing is printed when the user
// quit without submitting.
func writeOutcome(w io.Writer, format outputFormat, out ui.Outcome) error {
	if out.Kind == ui.OutcomeNone {
		return nil
	}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	}
}

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/scsb/filter"
)

// printResult applies --filter to raw and writes it to the command output.
// listKey names the array to filter inside an object response; empty means
// the response itself is the array.
func printResult(cmd *cobra.Command, raw json.RawMessage, listKey string) error {
	if filterExpr != "" {
		expression := resolveFilter(filterExpr)

		f, err := filter.Compile(expression)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}

		raw, err = filter.Apply(f, raw, listKey)
		if err != nil {
			return err
		}

		logger.Debug().Str("filter", expression).Msg("Filter applied")
	}

	return printJSON(cmd, raw)
}

// printJSON writes raw indented, or compacted with --compact
func printJSON(cmd *cobra.Command, raw json.RawMessage) error {
	var buf bytes.Buffer
	if compact {
		if err := json.Compact(&buf, raw); err != nil {
			return fmt.Errorf("failed to format response: %w", err)
		}
	} else if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	buf.WriteByte('\n')

	_, err := buf.WriteTo(cmd.OutOrStdout())
	return err
}

// resolveFilter returns the expression configured under name, or name itself
func resolveFilter(name string) string {
	if cfg != nil {
		if expression, ok := cfg.Filters[strings.ToLower(name)]; ok {
			return expression
		}
	}
	return name
}

// readPayload reads a JSON document given inline, as @file or as - for stdin
func readPayload(cmd *cobra.Command, arg string) (map[string]any, error) {
	var data []byte
	switch {
	case arg == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		data = b
	case strings.HasPrefix(arg, "@"):
		b, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		data = b
	default:
		data = []byte(arg)
	}

	// UseNumber keeps long numeric ids intact on the way back out
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	return payload, nil
}

// parseFields turns name=value pairs into payload fields. Booleans, null,
// arrays and objects keep their JSON type; everything else, numbers included,
// is sent as a string so barcodes keep their leading zeros.
func parseFields(pairs []string, into map[string]any) error {
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid field %q (expected name=value)", pair)
		}

		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		if _, isNumber := v.(float64); isNumber {
			v = value
		}
		into[name] = v
	}
	return nil
}

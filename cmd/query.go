package cmd

import (
	"github.com/spf13/cobra"
)

var (
	queryJSON    string
	queryFields  []string
	queryListKey string
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query PATH",
	Short: "POST a payload to any SCSB API path",
	Long: `Send a raw request to an SCSB endpoint that has no dedicated command.

The payload is built like the search query, from --json and --field pairs.
Use --list-key to name the array that --filter should narrow when the
response is an object.`,
	Example: `  scsb query /sharedCollection/itemAvailabilityStatus --json '{"barcodes":["33433118106339"]}'
  scsb query /searchService/search --field fieldName=Title --field fieldValue=dick --list-key searchResultRows --filter 'owningInstitution == "PUL"'`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryJSON, "json", "", "payload as JSON, @file or - for stdin")
	queryCmd.Flags().StringArrayVar(&queryFields, "field", nil, "payload field as name=value (repeatable)")
	queryCmd.Flags().StringVar(&queryListKey, "list-key", "", "key of the array to filter in an object response")
}

func runQuery(cmd *cobra.Command, args []string) error {
	payload := map[string]any{}
	if queryJSON != "" {
		body, err := readPayload(cmd, queryJSON)
		if err != nil {
			return err
		}
		if body != nil {
			payload = body
		}
	}

	if err := parseFields(queryFields, payload); err != nil {
		return err
	}

	raw, err := client.Query(cmd.Context(), args[0], payload)
	if err != nil {
		return err
	}

	return printResult(cmd, raw, queryListKey)
}

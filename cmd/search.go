package cmd

import (
	"github.com/spf13/cobra"
)

var (
	searchFields []string
	searchJSON   string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the shared collection",
	Long: `Search the SCSB shared collection.

The query is built from --json and any number of --field name=value pairs,
which override keys of the JSON document. With --filter the rows under
searchResultRows are narrowed before printing.`,
	Example: `  scsb search --field fieldName=Barcode --field fieldValue=33433118106339
  scsb search --json @query.json --filter 'owningInstitution == "NYPL"'`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringArrayVar(&searchFields, "field", nil, "query field as name=value (repeatable)")
	searchCmd.Flags().StringVar(&searchJSON, "json", "", "query as JSON, @file or - for stdin")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := map[string]any{}
	if searchJSON != "" {
		var err error
		if query, err = readPayload(cmd, searchJSON); err != nil {
			return err
		}
	}

	if query == nil {
		query = map[string]any{}
	}
	if err := parseFields(searchFields, query); err != nil {
		return err
	}

	logger.Info().Int("fields", len(query)).Msg("Searching shared collection")

	raw, err := client.Search(cmd.Context(), query)
	if err != nil {
		return err
	}

	return printResult(cmd, raw, "searchResultRows")
}

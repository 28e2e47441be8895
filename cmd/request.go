package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/scsb/scsb"
)

// ErrRequestRejected is returned when SCSB answers a request with success false
var ErrRequestRejected = errors.New("request was not accepted")

var (
	requestJSON string
	itemRequest scsb.RequestItemRequest
	requestType string
)

// requestCmd represents the request command
var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Request items for retrieval, electronic delivery or recall",
	Long: `Submit an item request to SCSB.

The request is taken from --json or built from the flags below. The
response is printed either way; the command fails when SCSB reports that
the request was not accepted.`,
	Example: `  scsb request --patron 234567890987654 --item 32101058075084 --delivery-location NH
  scsb request --json @request.json`,
	Args: cobra.NoArgs,
	RunE: runRequest,
}

func init() {
	rootCmd.AddCommand(requestCmd)

	flags := requestCmd.Flags()
	flags.StringVar(&requestJSON, "json", "", "request as JSON, @file or - for stdin")
	flags.StringVar(&itemRequest.PatronBarcode, "patron", "", "patron barcode")
	flags.StringArrayVar(&itemRequest.ItemBarcodes, "item", nil, "item barcode (repeatable)")
	flags.StringVar(&requestType, "type", string(scsb.RequestTypeRetrieval), "request type: RETRIEVAL, EDD or RECALL")
	flags.StringVar(&itemRequest.DeliveryLocation, "delivery-location", "", "delivery location code")
	flags.StringVar(&itemRequest.RequestingInstitution, "requesting-institution", "", "institution placing the request")
	flags.StringVar(&itemRequest.ItemOwningInstitution, "owning-institution", "", "institution owning the item")
	flags.StringVar(&itemRequest.EmailAddress, "email", "", "patron email address")
	flags.StringVar(&itemRequest.TitleIdentifier, "title", "", "title of the requested item")
	flags.StringVar(&itemRequest.BibliographicID, "bib-id", "", "bibliographic record id")
	flags.StringVar(&itemRequest.CallNumber, "call-number", "", "call number")
	flags.StringVar(&itemRequest.Author, "author", "", "author")
	flags.StringVar(&itemRequest.StartPage, "start-page", "", "first page (EDD)")
	flags.StringVar(&itemRequest.EndPage, "end-page", "", "last page (EDD)")
	flags.StringVar(&itemRequest.ChapterTitle, "chapter", "", "chapter or article title (EDD)")
	flags.StringVar(&itemRequest.RequestNotes, "notes", "", "notes for staff")
}

func runRequest(cmd *cobra.Command, args []string) error {
	var payload any
	if requestJSON != "" {
		body, err := readPayload(cmd, requestJSON)
		if err != nil {
			return err
		}
		payload = body
	} else {
		if err := buildItemRequest(); err != nil {
			return err
		}
		payload = itemRequest
	}

	raw, err := client.RequestItem(cmd.Context(), payload)
	if err != nil {
		return err
	}

	if err := printJSON(cmd, raw); err != nil {
		return err
	}

	resp, err := scsb.Decode[scsb.RequestItemResponse](raw)
	if err != nil {
		return err
	}

	if !resp.Success {
		logger.Warn().Str("message", resp.ScreenMessage).Msg("Request rejected")
		return fmt.Errorf("%w: %s", ErrRequestRejected, resp.ScreenMessage)
	}

	logger.Info().
		Strs("items", resp.ItemBarcodes).
		Str("message", resp.ScreenMessage).
		Msg("Request accepted")

	return nil
}

// buildItemRequest validates the flag-built request
func buildItemRequest() error {
	if itemRequest.PatronBarcode == "" {
		return fmt.Errorf("--patron is required")
	}
	if len(itemRequest.ItemBarcodes) == 0 {
		return fmt.Errorf("at least one --item is required")
	}

	switch t := scsb.RequestType(strings.ToUpper(requestType)); t {
	case scsb.RequestTypeRetrieval, scsb.RequestTypeEDD, scsb.RequestTypeRecall:
		itemRequest.RequestType = t
	default:
		return fmt.Errorf("invalid request type: %s (must be RETRIEVAL, EDD or RECALL)", requestType)
	}

	return nil
}

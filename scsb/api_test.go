package scsb

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const availabilitySuccess = `[
	{
		"itemBarcode": "33433118106339",
		"itemAvailabilityStatus": "Available",
		"errorMessage": null
	}
]`

const availabilityUnknownBarcode = `[
	{
		"itemBarcode": "33433118106339",
		"itemAvailabilityStatus": "Item Barcode doesn't exist in SCSB database.",
		"errorMessage": null
	}
]`

const requestItemSuccess = `{
	"patronBarcode": "01234567891011",
	"itemBarcodes": ["33433001932379"],
	"requestType": "RETRIEVAL",
	"deliveryLocation": "NH",
	"requestingInstitution": "NYPL",
	"bibliographicId": null,
	"expirationDate": null,
	"screenMessage": "Message received, your request will be processed",
	"success": true,
	"emailAddress": "",
	"titleIdentifier": null
}`

func TestItemsAvailability(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		wantAvailable bool
	}{
		{
			name:          "available item",
			response:      availabilitySuccess,
			wantAvailable: true,
		},
		{
			name:          "unknown barcode",
			response:      availabilityUnknownBarcode,
			wantAvailable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, PathItemAvailability, r.URL.Path)

				var body struct {
					Barcodes []string `json:"barcodes"`
				}
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, []string{"33433118106339"}, body.Barcodes)

				w.Write([]byte(tt.response))
			})

			client := newTestClient(server.URL)
			raw, err := client.ItemsAvailability(context.Background(), []string{"33433118106339"})
			require.NoError(t, err)
			assert.JSONEq(t, tt.response, string(raw))

			rows, err := Decode[[]ItemAvailability](raw)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "33433118106339", rows[0].ItemBarcode)
			assert.Nil(t, rows[0].ErrorMessage)
			assert.Equal(t, tt.wantAvailable, rows[0].IsAvailable())
		})
	}
}

func TestItemsAvailabilityEmptySlice(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `[]`, string(body["barcodes"]))
		w.Write([]byte(`[]`))
	})

	client := newTestClient(server.URL)
	raw, err := client.ItemsAvailability(context.Background(), []string{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestRequestItem(t *testing.T) {
	failure := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(requestItemSuccess), &failure))
	failure["success"] = false
	failure["screenMessage"] = "Item not available for request."
	requestItemFailure, err := json.Marshal(failure)
	require.NoError(t, err)

	tests := []struct {
		name        string
		response    string
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "success",
			response:    requestItemSuccess,
			wantSuccess: true,
			wantMessage: "Message received, your request will be processed",
		},
		{
			name:        "failure",
			response:    string(requestItemFailure),
			wantSuccess: false,
			wantMessage: "Item not available for request.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, PathRequestItem, r.URL.Path)

				var body map[string]any
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "234567890987654", body["patronBarcode"])
				assert.Equal(t, "RETRIEVAL", body["requestType"])
				assert.Equal(t, "NH", body["deliveryLocation"])
				assert.NotContains(t, body, "emailAddress")

				w.Write([]byte(tt.response))
			})

			client := newTestClient(server.URL)
			raw, err := client.RequestItem(context.Background(), RequestItemRequest{
				PatronBarcode:    "234567890987654",
				ItemBarcodes:     []string{"32101058075084"},
				RequestType:      RequestTypeRetrieval,
				DeliveryLocation: "NH",
			})
			require.NoError(t, err)

			resp, err := Decode[RequestItemResponse](raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, RequestTypeRetrieval, resp.RequestType)
			assert.Equal(t, tt.wantMessage, resp.ScreenMessage)
			assert.Nil(t, resp.BibliographicID)
		})
	}
}

func TestSearchPassesQueryThrough(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathSearch, r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{"responseFor": body})
	})

	client := newTestClient(server.URL)
	raw, err := client.Search(context.Background(), map[string]any{
		"fieldName":  "Barcode",
		"fieldValue": "33433118106339",
		"deleted":    false,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"responseFor":{"fieldName":"Barcode","fieldValue":"33433118106339","deleted":false}}`, string(raw))
}

func TestSearchConcurrencyLimit(t *testing.T) {
	const (
		numberOfCalls = 20
		concurrency   = 3
	)

	var current, peak atomic.Int64
	server, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		cur := current.Add(1)
		defer current.Add(-1)

		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}

		time.Sleep(30 * time.Millisecond)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{"responseFor": body})
	})

	client := newTestClient(server.URL, WithConcurrencyLimit(concurrency))

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < numberOfCalls; i++ {
		i := i
		g.Go(func() error {
			raw, err := client.Search(ctx, map[string]any{"queryNumber": i})
			if err != nil {
				return err
			}

			resp, err := Decode[map[string]map[string]int](raw)
			if err != nil {
				return err
			}
			assert.Equal(t, i, resp["responseFor"]["queryNumber"])

			// Never more than the limit holding a slot at once.
			assert.LessOrEqual(t, client.Stats().Active, concurrency)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.LessOrEqual(t, peak.Load(), int64(concurrency))
	assert.EqualValues(t, numberOfCalls, hits.Load())
	assert.Equal(t, 0, client.Stats().Active)
	assert.Equal(t, 0, client.Stats().Waiting)
}

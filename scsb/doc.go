// Package scsb provides a client for the SCSB shared-collection API.
//
// SCSB exposes search, item availability and retrieval requests as JSON
// POST endpoints authenticated with an api_key header. This package wraps
// them behind a single Client that bounds how many requests are in flight.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: holds the configuration and the shared concurrency gate
//   - Query: the one POST-JSON, expect-200, parse-JSON round trip
//   - API: the named endpoints (Search, ItemsAvailability, RequestItem)
//   - Types: request and response models for the common endpoints
//   - Errors: sentinel errors and structured API errors
//
// # Usage
//
// Create one client and share it:
//
//	logger := zerolog.New(os.Stderr)
//	client := scsb.NewClient(logger,
//		scsb.WithBaseURL("https://scsb.example.org:9093"),
//		scsb.WithAPIKey(os.Getenv("SCSB_API_KEY")),
//		scsb.WithConcurrencyLimit(5),
//	)
//
//	raw, err := client.ItemsAvailability(ctx, []string{"33433118106339"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	rows, err := scsb.Decode[[]scsb.ItemAvailability](raw)
//
// Configure merges further options at any time. Only requests started after
// the call see the new values, and the settings are meant to be made once
// before the client is shared between goroutines.
//
// # Concurrency
//
// Every request waits for a slot in one gate before the HTTP call is made and
// gives it back when the call settles, whatever the outcome. Waiting requests
// are admitted in arrival order. Cancelling the context of a waiting request
// removes it from the queue.
//
// # Error Handling
//
// The package defines several error values, all usable with errors.Is:
//
//   - ErrInvalidPath: empty request path
//   - ErrEmptyPayload: nil payload or a payload without any keys
//   - ErrNotConfigured: missing base URL or API key
//   - ErrUpstream: non-200 status or transport failure (*APIError)
//   - ErrDecode: 200 response that is not valid JSON (*DecodeError)
//
// The first three are returned before any network I/O. Nothing is retried.
//
//	var apiErr *scsb.APIError
//	if errors.As(err, &apiErr) && apiErr.IsNotFound() {
//		// Handle missing endpoint
//	}
package scsb

package scsb

import (
	"encoding/json"
	"fmt"
)

// RequestType is the kind of request submitted to /requestItem/requestItem
type RequestType string

const (
	// RequestTypeRetrieval asks for a physical item to be delivered
	RequestTypeRetrieval RequestType = "RETRIEVAL"
	// RequestTypeEDD asks for an electronic document delivery
	RequestTypeEDD RequestType = "EDD"
	// RequestTypeRecall recalls an item that is out on loan
	RequestTypeRecall RequestType = "RECALL"
)

// ItemAvailability is one row of an item availability report
type ItemAvailability struct {
	ItemBarcode            string  `json:"itemBarcode"`
	ItemAvailabilityStatus string  `json:"itemAvailabilityStatus"`
	ErrorMessage           *string `json:"errorMessage"`
}

// IsAvailable reports whether SCSB considers the item available
func (ia *ItemAvailability) IsAvailable() bool {
	return ia.ItemAvailabilityStatus == "Available"
}

// RequestItemRequest is the body of a retrieval request
type RequestItemRequest struct {
	PatronBarcode         string      `json:"patronBarcode"`
	ItemBarcodes          []string    `json:"itemBarcodes"`
	RequestType           RequestType `json:"requestType"`
	DeliveryLocation      string      `json:"deliveryLocation,omitempty"`
	RequestingInstitution string      `json:"requestingInstitution,omitempty"`
	ItemOwningInstitution string      `json:"itemOwningInstitution,omitempty"`
	EmailAddress          string      `json:"emailAddress,omitempty"`
	TitleIdentifier       string      `json:"titleIdentifier,omitempty"`
	BibliographicID       string      `json:"bibliographicId,omitempty"`
	CallNumber            string      `json:"callNumber,omitempty"`
	Author                string      `json:"author,omitempty"`
	StartPage             string      `json:"startPage,omitempty"`
	EndPage               string      `json:"endPage,omitempty"`
	ChapterTitle          string      `json:"chapterTitle,omitempty"`
	RequestNotes          string      `json:"requestNotes,omitempty"`
}

// RequestItemResponse echoes the request with the outcome
type RequestItemResponse struct {
	PatronBarcode         string      `json:"patronBarcode"`
	ItemBarcodes          []string    `json:"itemBarcodes"`
	RequestType           RequestType `json:"requestType"`
	DeliveryLocation      string      `json:"deliveryLocation"`
	RequestingInstitution string      `json:"requestingInstitution"`
	BibliographicID       *string     `json:"bibliographicId"`
	ExpirationDate        *string     `json:"expirationDate"`
	ScreenMessage         string      `json:"screenMessage"`
	Success               bool        `json:"success"`
	EmailAddress          string      `json:"emailAddress"`
	TitleIdentifier       *string     `json:"titleIdentifier"`
}

// Decode unmarshals a raw SCSB response into T
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("failed to decode SCSB response: %w", err)
	}
	return v, nil
}

// Package ledger checks batch authenticity against a ledger contract and
// submits new batches to it. The contract itself is reached through a
// gateway; proofs it returns are carried through without interpretation.
package ledger

import (
	"context"
	"encoding/json"
)

// Witness is the payload sent when asking the ledger whether a batch is authentic.
type Witness struct {
	BatchID   string `json:"batchId"`
	Timestamp int64  `json:"timestamp"`
}

// Authenticity is the ledger's answer for a Witness.
type Authenticity struct {
	Authenticated bool            `json:"authenticated"`
	Proof         json.RawMessage `json:"proof,omitempty"`
}

// BatchWitness is the registration payload. Dates are epoch milliseconds.
type BatchWitness struct {
	BatchID           string `json:"batchId"`
	Manufacturer      string `json:"manufacturer"`
	DrugCode          string `json:"drugCode"`
	ManufacturingDate int64  `json:"manufacturingDate"`
	ExpiryDate        int64  `json:"expiryDate"`
	QualityScore      int    `json:"qualityScore"`
}

// Submission is the ledger's receipt for a registered batch.
type Submission struct {
	TransactionID string `json:"transactionId"`
}

// Client is the call surface of the ledger contract.
type Client interface {
	Ping(ctx context.Context) error
	VerifyAuthenticity(ctx context.Context, w Witness) (Authenticity, error)
	RegisterBatch(ctx context.Context, w BatchWitness) (Submission, error)
}

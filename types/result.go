package types

import "fmt"

// Table is one collector's tabular output: a fixed header and rows that
// all match the header's width.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Validate reports the first row whose width differs from the header.
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return fmt.Errorf("row %d has %d columns, header has %d", i, len(row), len(t.Header))
		}
	}
	return nil
}

// RowCount returns the number of data rows (header excluded).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// CollectionStatus is the terminal state of one (account, kind) collection.
type CollectionStatus string

const (
	StatusSuccess CollectionStatus = "success"
	StatusEmpty   CollectionStatus = "empty"
	StatusFailed  CollectionStatus = "failed"
)

// ResultKey identifies one (account, kind) slot in the results map.
type ResultKey struct {
	AccountID string
	Kind      string
}

func (k ResultKey) String() string {
	return k.AccountID + "/" + k.Kind
}

// CollectionResult holds the outcome for one (account, kind) pair. A key
// absent from the results map means the pair was never attempted, which is
// distinct from a present result with StatusFailed.
type CollectionResult struct {
	Status  CollectionStatus
	Table   Table
	Regions []string
	Err     error
}

// Artifact is one packaged output unit: either raw tabular bytes or a
// small reference payload pointing at offloaded data.
type Artifact struct {
	Name      string
	Data      []byte
	Rows      int
	Offloaded bool
}

// DeliveryReceipt reports what actually went out.
type DeliveryReceipt struct {
	MessageID     string
	ArtifactCount int
	TotalRows     int
	TotalBytes    int64
}

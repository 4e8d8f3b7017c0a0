package types

// Scope selects whether a run targets a single account or an
// organizational unit and everything under it.
type Scope string

const (
	ScopeAccount Scope = "Account"
	ScopeGroup   Scope = "Group"
)

// InventoryRequest is the payload handed to a run by the trigger front end.
type InventoryRequest struct {
	Scope         Scope    `json:"scope"`
	Target        string   `json:"target"`
	ResourceKinds []string `json:"resourceKinds"`
	Recipient     string   `json:"recipient"`
}

// Validate checks that every required field is present. Kind names are
// checked against the collector registry by the service, not here.
func (r *InventoryRequest) Validate() error {
	if r.Scope != ScopeAccount && r.Scope != ScopeGroup {
		return &InvalidRequestError{Field: "scope", Reason: "must be Account or Group"}
	}
	if r.Target == "" {
		return &InvalidRequestError{Field: "target", Reason: "required"}
	}
	if len(r.ResourceKinds) == 0 {
		return &InvalidRequestError{Field: "resourceKinds", Reason: "at least one kind required"}
	}
	if r.Recipient == "" {
		return &InvalidRequestError{Field: "recipient", Reason: "required"}
	}
	return nil
}

// InventoryResponse summarizes a completed run. It never carries
// credentials or row data.
type InventoryResponse struct {
	Status            string `json:"status"`
	AccountsProcessed int    `json:"accountsProcessed"`
	ArtifactCount     int    `json:"artifactCount"`
	RowsCount         int    `json:"rowsCount"`
}

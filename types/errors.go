package types

import "fmt"

// InvalidRequestError means the request payload is malformed. Fatal; no
// partial work is attempted.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: field %q %s", e.Field, e.Reason)
}

// NotFoundError means the scope target does not resolve in the directory.
// Fatal for the run.
type NotFoundError struct {
	Scope  Scope
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Scope, e.Target)
}

// AuthzError means credential delegation was denied for one account. The
// account is skipped; the run continues.
type AuthzError struct {
	AccountID string
	Err       error
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("delegation failed for account %s: %v", e.AccountID, e.Err)
}

func (e *AuthzError) Unwrap() error { return e.Err }

// CollectionError means one (account, kind) collection failed after
// retries. Recorded against that pair; the run continues.
type CollectionError struct {
	AccountID string
	Kind      string
	Region    string
	Err       error
}

func (e *CollectionError) Error() string {
	if e.Region != "" {
		return fmt.Sprintf("collect %s for account %s in %s: %v", e.Kind, e.AccountID, e.Region, e.Err)
	}
	return fmt.Sprintf("collect %s for account %s: %v", e.Kind, e.AccountID, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// PackagingError means one artifact could not be produced. That artifact
// is dropped; the run continues.
type PackagingError struct {
	Artifact string
	Err      error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("package artifact %s: %v", e.Artifact, e.Err)
}

func (e *PackagingError) Unwrap() error { return e.Err }

// DeliveryError means the final transmission failed. Fatal for the run.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

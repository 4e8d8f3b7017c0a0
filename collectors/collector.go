// Package collectors turns upstream AWS listing APIs into tabular
// inventory rows, one collector per resource kind.
package collectors

import (
	"context"
	"errors"
	"sort"

	"github.com/aws/smithy-go"
)

// Collector produces rows for one resource kind. Header is fixed per
// kind; every row a collector emits matches the header's width. Global
// kinds ignore the region argument and are invoked once per account.
type Collector interface {
	Kind() string
	Header() []string
	Global() bool
	Collect(ctx context.Context, clients *Clients, accountID, region string) ([][]string, error)
}

// Registry maps the closed set of resource kinds to their collectors.
// Built once at startup, never mutated afterwards.
type Registry struct {
	collectors map[string]Collector
}

// NewRegistry builds the registry with every supported kind.
func NewRegistry() *Registry {
	r := &Registry{collectors: make(map[string]Collector)}
	for _, c := range []Collector{
		&EC2Collector{},
		&S3Collector{},
		&LambdaCollector{},
		&RDSCollector{},
		&DynamoDBCollector{},
		&GlueCollector{},
		&EventbridgeCollector{},
		&StepFunctionsCollector{},
		&SecurityHubCollector{},
		&ConfigCollector{},
	} {
		r.collectors[c.Kind()] = c
	}
	return r
}

// Get returns the collector for a kind, if registered.
func (r *Registry) Get(kind string) (Collector, bool) {
	c, ok := r.collectors[kind]
	return c, ok
}

// Kinds returns all registered kind names, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.collectors))
	for kind := range r.collectors {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// accessDenied reports whether err is an authorization rejection for a
// single call. Collectors treat these as "nothing visible here" rather
// than failing the whole (account, kind) pair.
func accessDenied(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation", "AuthorizationError", "InvalidAccessException":
		return true
	}
	return false
}

// Package directory resolves a human-chosen scope target into concrete
// account identifiers using the AWS Organizations API.
package directory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"

	"github.com/mkarlsen/orgscan/telemetry"
	"github.com/mkarlsen/orgscan/types"
)

// Client is the subset of the Organizations API the resolver uses. The
// SDK's generated paginator interfaces keep this stubbable in tests.
type Client interface {
	organizations.ListAccountsAPIClient
	organizations.ListRootsAPIClient
	organizations.ListOrganizationalUnitsForParentAPIClient
	organizations.ListAccountsForParentAPIClient
}

// Resolver turns a scope target into a deduplicated list of active
// account IDs. Lookups are memoized for the resolver's lifetime; build
// one Resolver per run so caches never go stale across runs.
type Resolver struct {
	client Client
	logger *telemetry.Logger

	accountIDs    map[string]string   // account name -> id
	groupIDs      map[string]string   // parent id + "/" + group name -> id
	groupAccounts map[string][]string // group id -> active account ids
}

// NewResolver creates a resolver with fresh caches.
func NewResolver(client Client) *Resolver {
	return &Resolver{
		client:        client,
		logger:        telemetry.NewLogger("directory"),
		accountIDs:    make(map[string]string),
		groupIDs:      make(map[string]string),
		groupAccounts: make(map[string][]string),
	}
}

// ResolveAccounts resolves the scope target to account IDs. Account scope
// yields exactly one ID; Group scope yields every active account
// transitively under the named organizational unit.
func (r *Resolver) ResolveAccounts(ctx context.Context, scope types.Scope, target string) ([]string, error) {
	switch scope {
	case types.ScopeAccount:
		id, err := r.AccountIDFromName(ctx, target)
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	case types.ScopeGroup:
		groupID, err := r.GroupIDFromName(ctx, target)
		if err != nil {
			return nil, err
		}
		return r.AccountsInGroup(ctx, groupID)
	default:
		return nil, &types.InvalidRequestError{Field: "scope", Reason: "must be Account or Group"}
	}
}

// AccountIDFromName finds the active account with the given name. First
// match across all pages wins.
func (r *Resolver) AccountIDFromName(ctx context.Context, name string) (string, error) {
	if id, ok := r.accountIDs[name]; ok {
		return id, nil
	}

	paginator := organizations.NewListAccountsPaginator(r.client, &organizations.ListAccountsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", err
		}
		for _, account := range page.Accounts {
			if aws.ToString(account.Name) == name && account.Status == orgtypes.AccountStatusActive {
				id := aws.ToString(account.Id)
				r.accountIDs[name] = id
				r.logger.WithContext(ctx).Debug().
					Str("account_name", name).
					Str("account_id", id).
					Msg("resolved account name")
				return id, nil
			}
		}
	}

	return "", &types.NotFoundError{Scope: types.ScopeAccount, Target: name}
}

// GroupIDFromName finds the organizational unit with the given name by
// depth-first search from every root, short-circuiting on the first match
// at any depth.
func (r *Resolver) GroupIDFromName(ctx context.Context, name string) (string, error) {
	roots, err := r.listRoots(ctx)
	if err != nil {
		return "", err
	}

	visited := make(map[string]bool)
	for _, rootID := range roots {
		id, found, err := r.findGroup(ctx, rootID, name, visited)
		if err != nil {
			return "", err
		}
		if found {
			return id, nil
		}
	}

	return "", &types.NotFoundError{Scope: types.ScopeGroup, Target: name}
}

// findGroup searches for the named group under parentID. The visited set
// guards against misbehaving directory data; organizations are acyclic
// but the resolver must not infinite-loop if that assumption breaks.
func (r *Resolver) findGroup(ctx context.Context, parentID, name string, visited map[string]bool) (string, bool, error) {
	if visited[parentID] {
		return "", false, nil
	}
	visited[parentID] = true

	if id, ok := r.groupIDs[parentID+"/"+name]; ok {
		return id, true, nil
	}

	var children []string
	paginator := organizations.NewListOrganizationalUnitsForParentPaginator(r.client,
		&organizations.ListOrganizationalUnitsForParentInput{ParentId: aws.String(parentID)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", false, err
		}
		for _, ou := range page.OrganizationalUnits {
			ouID := aws.ToString(ou.Id)
			if aws.ToString(ou.Name) == name {
				r.groupIDs[parentID+"/"+name] = ouID
				return ouID, true, nil
			}
			children = append(children, ouID)
		}
	}

	for _, childID := range children {
		id, found, err := r.findGroup(ctx, childID, name, visited)
		if err != nil {
			return "", false, err
		}
		if found {
			return id, true, nil
		}
	}

	return "", false, nil
}

// AccountsInGroup collects every active account transitively under the
// group, recursing into child groups. The result is deduplicated and
// preserves first-encounter order.
func (r *Resolver) AccountsInGroup(ctx context.Context, groupID string) ([]string, error) {
	visited := make(map[string]bool)
	seen := make(map[string]bool)
	var out []string

	var walk func(id string) error
	walk = func(id string) error {
		if visited[id] {
			return nil
		}
		visited[id] = true

		if cached, ok := r.groupAccounts[id]; ok {
			for _, acct := range cached {
				if !seen[acct] {
					seen[acct] = true
					out = append(out, acct)
				}
			}
			return nil
		}

		var direct []string
		acctPager := organizations.NewListAccountsForParentPaginator(r.client,
			&organizations.ListAccountsForParentInput{ParentId: aws.String(id)})
		for acctPager.HasMorePages() {
			page, err := acctPager.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, account := range page.Accounts {
				if account.Status != orgtypes.AccountStatusActive {
					continue
				}
				acct := aws.ToString(account.Id)
				direct = append(direct, acct)
				if !seen[acct] {
					seen[acct] = true
					out = append(out, acct)
				}
			}
		}
		r.groupAccounts[id] = direct

		ouPager := organizations.NewListOrganizationalUnitsForParentPaginator(r.client,
			&organizations.ListOrganizationalUnitsForParentInput{ParentId: aws.String(id)})
		for ouPager.HasMorePages() {
			page, err := ouPager.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, ou := range page.OrganizationalUnits {
				if err := walk(aws.ToString(ou.Id)); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(groupID); err != nil {
		return nil, err
	}

	r.logger.WithContext(ctx).Info().
		Str("group_id", groupID).
		Int("accounts", len(out)).
		Msg("resolved group membership")

	return out, nil
}

func (r *Resolver) listRoots(ctx context.Context) ([]string, error) {
	var roots []string
	paginator := organizations.NewListRootsPaginator(r.client, &organizations.ListRootsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, root := range page.Roots {
			roots = append(roots, aws.ToString(root.Id))
		}
	}
	return roots, nil
}

package service

import (
	"context"

	"github.com/yourorg/taskboard/internal/domain"
)

// userRefs resolves a set of user ids to their reduced identities in one
// batch. Unknown ids are simply absent from the result.
func userRefs(ctx context.Context, users domain.UserRepository, ids []string) (map[string]domain.UserRef, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := users.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]domain.UserRef, len(found))
	for id, u := range found {
		refs[id] = u.Ref()
	}
	return refs, nil
}

func refOrNil(refs map[string]domain.UserRef, id string) *domain.UserRef {
	if id == "" {
		return nil
	}
	if ref, ok := refs[id]; ok {
		return &ref
	}
	// Dangling reference: keep the id visible rather than dropping it.
	return &domain.UserRef{ID: id}
}

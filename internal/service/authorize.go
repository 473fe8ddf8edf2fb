package service

import "github.com/Tetsu-is/social-graph/internal/domain"

func requireActor(actor domain.Actor) error {
	if !actor.Authenticated() {
		return domain.ErrUnauthenticated
	}
	return nil
}

// authorizeOwner is the one ownership rule: mutating or deleting a
// resource requires the acting account to be the owning account.
func authorizeOwner(actor domain.Actor, ownerID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.AccountID != ownerID {
		return domain.ErrForbidden
	}
	return nil
}

func authorizePostOwner(actor domain.Actor, post *domain.Post) error {
	return authorizeOwner(actor, post.AccountID)
}

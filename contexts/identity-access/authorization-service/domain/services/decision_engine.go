package services

import "hangar/contexts/identity-access/authorization-service/domain/entities"

// Membership is the actor's relationship to the resource under decision.
// Held is false when the actor has no membership row; Role is meaningful only
// when Held is true.
type Membership struct {
	Held bool
	Role entities.Role
}

// DecideView evaluates a read. A membership row always grants read regardless
// of visibility. Without one, the visibility tier decides, and every denial
// surfaces as NotFound so that non-members cannot enumerate private or
// internal resources.
func DecideView(actor entities.Actor, visibility entities.Visibility, membership Membership) entities.Decision {
	if actor.Authenticated() && membership.Held {
		return entities.DecisionAllow
	}
	switch visibility {
	case entities.VisibilityPublic:
		return entities.DecisionAllow
	case entities.VisibilityInternal:
		if actor.Authenticated() {
			return entities.DecisionAllow
		}
	}
	return entities.DecisionNotFound
}

// DecideWithRole evaluates a privileged operation requiring a minimum role.
// Members below the minimum get Forbidden: their relationship to the resource
// is already known to them. Non-members get Forbidden only when the read rule
// would let them see the resource, and NotFound otherwise.
func DecideWithRole(actor entities.Actor, visibility entities.Visibility, membership Membership, min entities.Role) entities.Decision {
	if actor.Authenticated() && membership.Held {
		if membership.Role.AtLeast(min) {
			return entities.DecisionAllow
		}
		return entities.DecisionForbidden
	}
	if DecideView(actor, visibility, Membership{}) == entities.DecisionAllow {
		return entities.DecisionForbidden
	}
	return entities.DecisionNotFound
}

// VisibleInListing reports whether a resource belongs to the actor's listing
// set: the union of resources the actor is a member of and resources whose
// tier admits the actor's authentication state.
func VisibleInListing(actor entities.Actor, visibility entities.Visibility, membership Membership) bool {
	if actor.Authenticated() {
		return membership.Held || visibility == entities.VisibilityPublic || visibility == entities.VisibilityInternal
	}
	return visibility == entities.VisibilityPublic
}

// RemovalLeavesTopRoleVacant reports whether demoting or removing a member
// holding targetRole would strip the resource of its last top-role member.
// topRoleCount is the current number of members holding the hierarchy's top
// role. Such mutations are rejected regardless of who attempts them.
func RemovalLeavesTopRoleVacant(set entities.RoleSet, targetRole entities.Role, topRoleCount int) bool {
	return targetRole == set.Top() && topRoleCount <= 1
}

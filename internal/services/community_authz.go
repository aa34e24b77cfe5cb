package services

import "github.com/rakitcita/platform-service/internal/models"

// Pure authorization predicates for the community domain. Each takes the
// current state as arguments and touches no storage, so the rules can be
// tested as plain functions.

// canManageCommunity allows update/delete/banner changes: the creator, a
// community admin, or a platform admin.
func canManageCommunity(actor Actor, community *models.Community, actorRole *models.CommunityRole) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	if community.CreatorID == actor.ID {
		return true
	}
	return actorRole != nil && *actorRole == models.CommunityAdmin
}

// canChangeMemberRole requires the requester to hold the community admin
// role. Platform role does not grant this.
func canChangeMemberRole(actorRole *models.CommunityRole) bool {
	return actorRole != nil && *actorRole == models.CommunityAdmin
}

// canRemoveMember evaluates the removal rule table. The last-admin check is
// separate; this only answers who may remove whom.
func canRemoveMember(actor Actor, community *models.Community, actorRole *models.CommunityRole, target *models.Membership) bool {
	if actor.IsPlatformAdmin() {
		return true
	}

	actorIsCommunityAdmin := actorRole != nil && *actorRole == models.CommunityAdmin
	if actorIsCommunityAdmin {
		if target.Role != models.CommunityAdmin {
			return true
		}
		// Admin may remove another admin, never themself this way.
		return target.UserID != actor.ID
	}

	if community.CreatorID == actor.ID {
		return target.UserID != actor.ID
	}

	return false
}

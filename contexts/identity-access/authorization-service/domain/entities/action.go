package entities

// Action names an operation class covered by the permission matrix.
type Action string

const (
	ActionView          Action = "view"
	ActionCreateSub     Action = "create_sub_resource"
	ActionUpload        Action = "upload"
	ActionModify        Action = "modify"
	ActionCreateRelease Action = "create_release"
	ActionDelete        Action = "delete"
	ActionManageMembers Action = "manage_members"
)

// MinimumRole returns the rank required for an action on a resource kind.
// ActionView has no minimum (visibility-gated instead); the second return is
// false for it and for unknown actions.
func MinimumRole(kind ResourceKind, action Action) (Role, bool) {
	switch kind {
	case KindOrganization:
		switch action {
		case ActionCreateSub, ActionUpload:
			return OrgCollaborator, true
		case ActionModify, ActionCreateRelease, ActionDelete, ActionManageMembers:
			return OrgAdmin, true
		}
	case KindApplication:
		switch action {
		case ActionCreateSub, ActionUpload:
			return AppDeveloper, true
		case ActionModify, ActionCreateRelease, ActionDelete, ActionManageMembers:
			return AppManager, true
		}
	}
	return 0, false
}

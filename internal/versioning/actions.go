package versioning

import "github.com/clinmeta/cmdr-backend/pkg/enums"

// PossibleActions returns the actions a client may perform, as a pure
// function of (status, major version, library editability) plus the family
// capabilities. Clients gate their UI on this, so the table is contractual:
//
//	draft,   major 0,  editable: approve, edit, delete
//	draft,   major >0, editable: approve, edit
//	final,   any,      editable: new_version, inactivate
//	retired, any,      editable: reactivate
//	any,     any,      frozen:   none, unless the family opts out
func (a *Aggregate[V]) PossibleActions() []enums.ObjectAction {
	actions := make([]enums.ObjectAction, 0, 3)
	editable := a.editableOrExempt()

	switch a.meta.Status {
	case enums.ItemStatusDraft:
		if editable {
			actions = append(actions, enums.ObjectActionApprove, enums.ObjectActionEdit)
			if a.meta.MajorVersion == 0 && a.caps.SoftDeleteSupported {
				actions = append(actions, enums.ObjectActionDelete)
			}
		}
	case enums.ItemStatusFinal:
		if a.newVersionAllowed() {
			actions = append(actions, enums.ObjectActionNewVersion)
		}
		if editable {
			actions = append(actions, enums.ObjectActionInactivate)
		}
	case enums.ItemStatusRetired:
		if !a.caps.FrozenLibraryGatesRestore || a.library.IsEditable() {
			actions = append(actions, enums.ObjectActionReactivate)
		}
	}

	return actions
}

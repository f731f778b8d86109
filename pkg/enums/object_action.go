package enums

import "fmt"

// ObjectAction is a lifecycle action a client may perform on a versioned item.
type ObjectAction string

const (
	ObjectActionApprove    ObjectAction = "approve"
	ObjectActionEdit       ObjectAction = "edit"
	ObjectActionDelete     ObjectAction = "delete"
	ObjectActionNewVersion ObjectAction = "new_version"
	ObjectActionInactivate ObjectAction = "inactivate"
	ObjectActionReactivate ObjectAction = "reactivate"
)

var validObjectActions = []ObjectAction{
	ObjectActionApprove,
	ObjectActionEdit,
	ObjectActionDelete,
	ObjectActionNewVersion,
	ObjectActionInactivate,
	ObjectActionReactivate,
}

// String implements fmt.Stringer.
func (a ObjectAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ObjectAction.
func (a ObjectAction) IsValid() bool {
	for _, candidate := range validObjectActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseObjectAction converts raw input into an ObjectAction.
func ParseObjectAction(value string) (ObjectAction, error) {
	for _, candidate := range validObjectActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid object action %q", value)
}

package versioning

import (
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

// The four canonical message shapes clients parse. Every lifecycle and
// validation failure across every entity family uses one of these.

// ErrAlreadyExists reports a uniqueness violation on the given field.
func ErrAlreadyExists(entityType, field, value string) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeConflict,
		"%s with %s '%s' already exists.", entityType, field, value).
		WithDetails(map[string]string{"entity_type": entityType, "field": field, "value": value})
}

// ErrDoesNotExist reports a missing referenced entity.
func ErrDoesNotExist(entityType, uid string) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeBusinessRule,
		"%s with UID '%s' doesn't exist.", entityType, uid).
		WithDetails(map[string]string{"entity_type": entityType, "uid": uid})
}

// ErrNotInDraft reports a mutation attempted outside draft status.
func ErrNotInDraft(entityType, uid string) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeBusinessRule,
		"%s with UID '%s' isn't in draft status.", entityType, uid)
}

// ErrNotInFinal reports a checkout or retirement attempted outside final
// status.
func ErrNotInFinal(entityType, uid string) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict,
		"%s with UID '%s' isn't in final status.", entityType, uid)
}

// ErrLibraryNotEditable reports a mutation under a frozen library.
func ErrLibraryNotEditable(name string) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeBusinessRule,
		"Library '%s' isn't editable.", name)
}

// ErrCreationNotAllowed reports item creation under a frozen library.
func ErrCreationNotAllowed(name string) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeBusinessRule,
		"Library '%s' doesn't allow creation of objects.", name)
}

// ErrDeleteNotSupported reports a soft delete on a family without delete.
func ErrDeleteNotSupported(entityType, uid string) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeBusinessRule,
		"%s with UID '%s' doesn't support deletion.", entityType, uid)
}

// ErrDeleteAfterApproval reports a soft delete on an ever-approved item.
func ErrDeleteAfterApproval(entityType, uid string) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeBusinessRule,
		"%s with UID '%s' was already approved and can't be deleted.", entityType, uid)
}

package versioning

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clinmeta/cmdr-backend/pkg/enums"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

// Change descriptions stamped by the engine-owned transitions. Draft edits
// carry a caller-supplied description instead.
const (
	changeDescriptionInitial     = "Initial version"
	changeDescriptionApproved    = "Approved version"
	changeDescriptionInactivated = "Inactivated version"
	changeDescriptionReactivated = "Reactivated version"
)

// ItemMetadata is the immutable-per-version lifecycle record of an aggregate.
// It is replaced wholesale on every transition; callers never mutate it.
type ItemMetadata struct {
	Status            enums.ItemStatus
	MajorVersion      uint
	MinorVersion      uint
	AuthorID          string
	StartDate         time.Time
	EndDate           *time.Time
	ChangeDescription string
}

// InitialItemMetadata returns the metadata of a freshly created item:
// draft status at version 0.0, bumped to 0.1 by the first draft edit.
func InitialItemMetadata(authorID string) ItemMetadata {
	return ItemMetadata{
		Status:            enums.ItemStatusDraft,
		MajorVersion:      0,
		MinorVersion:      0,
		AuthorID:          authorID,
		StartDate:         time.Now().UTC(),
		ChangeDescription: changeDescriptionInitial,
	}
}

// Version renders the two-part version number. Both parts are always
// rendered ("0.1", "1.0", "1.10").
func (m ItemMetadata) Version() string {
	return fmt.Sprintf("%d.%d", m.MajorVersion, m.MinorVersion)
}

// ParseVersion converts a dotted version string back into its integer parts.
func ParseVersion(value string) (uint, uint, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid version %q: expected <major>.<minor>", value)
	}
	major, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid major version in %q: %w", value, err)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minor version in %q: %w", value, err)
	}
	return uint(major), uint(minor), nil
}

// CompareVersions orders two versions by parsed integer pair, never by
// string comparison ("1.10" sorts after "1.9").
func CompareVersions(aMajor, aMinor, bMajor, bMinor uint) int {
	switch {
	case aMajor < bMajor:
		return -1
	case aMajor > bMajor:
		return 1
	case aMinor < bMinor:
		return -1
	case aMinor > bMinor:
		return 1
	default:
		return 0
	}
}

// NewDraftVersion computes the metadata of the next draft version. Valid from
// draft (minor bump) and final (checkout for edit). Retired items reject it.
func (m ItemMetadata) NewDraftVersion(policy VersionPolicy, authorID, changeDescription string) (ItemMetadata, error) {
	if m.Status != enums.ItemStatusDraft && m.Status != enums.ItemStatusFinal {
		return ItemMetadata{}, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"cannot create a new draft version in status '%s'", m.Status)
	}
	major, minor := policy.NextDraft(m)
	return ItemMetadata{
		Status:            enums.ItemStatusDraft,
		MajorVersion:      major,
		MinorVersion:      minor,
		AuthorID:          authorID,
		StartDate:         time.Now().UTC(),
		ChangeDescription: changeDescription,
	}, nil
}

// Approve finalizes a draft. Valid only from draft status.
func (m ItemMetadata) Approve(policy VersionPolicy, authorID string) (ItemMetadata, error) {
	if m.Status != enums.ItemStatusDraft {
		return ItemMetadata{}, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"cannot approve in status '%s'", m.Status)
	}
	major, minor := policy.NextFinal(m)
	return ItemMetadata{
		Status:            enums.ItemStatusFinal,
		MajorVersion:      major,
		MinorVersion:      minor,
		AuthorID:          authorID,
		StartDate:         time.Now().UTC(),
		ChangeDescription: changeDescriptionApproved,
	}, nil
}

// Inactivate retires a final item. Version numbers are unchanged.
func (m ItemMetadata) Inactivate(authorID string) (ItemMetadata, error) {
	if m.Status != enums.ItemStatusFinal {
		return ItemMetadata{}, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"cannot inactivate in status '%s'", m.Status)
	}
	return ItemMetadata{
		Status:            enums.ItemStatusRetired,
		MajorVersion:      m.MajorVersion,
		MinorVersion:      m.MinorVersion,
		AuthorID:          authorID,
		StartDate:         time.Now().UTC(),
		ChangeDescription: changeDescriptionInactivated,
	}, nil
}

// Reactivate restores a retired item to final. Version numbers are unchanged.
func (m ItemMetadata) Reactivate(authorID string) (ItemMetadata, error) {
	if m.Status != enums.ItemStatusRetired {
		return ItemMetadata{}, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"cannot reactivate in status '%s'", m.Status)
	}
	return ItemMetadata{
		Status:            enums.ItemStatusFinal,
		MajorVersion:      m.MajorVersion,
		MinorVersion:      m.MinorVersion,
		AuthorID:          authorID,
		StartDate:         time.Now().UTC(),
		ChangeDescription: changeDescriptionReactivated,
	}, nil
}

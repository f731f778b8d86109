package versioning

import "github.com/clinmeta/cmdr-backend/pkg/enums"

// VersionPolicy computes the version numbers of the next draft and the next
// final version. It is the per-family extension point for version arithmetic;
// the state checks themselves stay in ItemMetadata.
type VersionPolicy interface {
	// NextDraft returns the numbers of the draft produced by a draft edit
	// (from draft) or a checkout for edit (from final).
	NextDraft(current ItemMetadata) (major, minor uint)
	// NextFinal returns the numbers of the version produced by an approval.
	NextFinal(current ItemMetadata) (major, minor uint)
}

// SemanticVersioning is the default policy: draft edits bump the minor
// version (reset to 1 when checking out a final version), approvals bump the
// major version and reset the minor to 0.
type SemanticVersioning struct{}

func (SemanticVersioning) NextDraft(current ItemMetadata) (uint, uint) {
	if current.Status == enums.ItemStatusFinal {
		return current.MajorVersion, 1
	}
	return current.MajorVersion, current.MinorVersion + 1
}

func (SemanticVersioning) NextFinal(current ItemMetadata) (uint, uint) {
	return current.MajorVersion + 1, 0
}

// PinnedMajorVersioning is the master-model policy: the major version is
// supplied externally and there is no independent minor version concept.
type PinnedMajorVersioning struct {
	Major uint
}

func (p PinnedMajorVersioning) NextDraft(ItemMetadata) (uint, uint) {
	return p.Major, 0
}

func (p PinnedMajorVersioning) NextFinal(ItemMetadata) (uint, uint) {
	return p.Major, 0
}

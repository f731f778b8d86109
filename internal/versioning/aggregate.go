package versioning

import (
	"context"

	"github.com/clinmeta/cmdr-backend/pkg/enums"
)

// Value is the contract an entity-specific payload must satisfy. Payloads are
// immutable and replaced wholesale on every edit; Equal must compare full
// structural equality so the engine can detect no-op edits.
type Value[V any] interface {
	Equal(other V) bool
}

// Validator checks a candidate payload against domain rules, calling back
// into the persistence layer (the existence oracle) for uniqueness and
// referential checks. previous is nil on creation; on edit it carries the
// currently attached payload so uniqueness checks can exempt values the item
// already owns.
type Validator[V any] interface {
	Validate(ctx context.Context, candidate V, previous *V) error
}

// Capabilities is the per-family trait bundle parameterizing the engine.
// Families supply a small struct of capabilities instead of subclassing.
type Capabilities[V Value[V]] struct {
	// EntityType names the family in error messages ("Codelist", "Term").
	EntityType string
	Validator  Validator[V]
	// Policy computes version numbers; nil means SemanticVersioning.
	Policy VersionPolicy
	// EditAllowedInFrozenLibrary lets a family mutate items under a
	// non-editable library (e.g. sponsor-maintained term names in CDISC).
	EditAllowedInFrozenLibrary bool
	// EditAllowedWhileFinal lets a family edit without checking out a new
	// draft first.
	EditAllowedWhileFinal bool
	// SoftDeleteSupported opts the family into deletion of never-approved
	// drafts. Deletion is not available by default.
	SoftDeleteSupported bool
	// FrozenLibraryGatesRestore extends the editability gate to new-version
	// and reactivate, used by CDISC-sourced terminology.
	FrozenLibraryGatesRestore bool
}

func (c Capabilities[V]) policy() VersionPolicy {
	if c.Policy == nil {
		return SemanticVersioning{}
	}
	return c.Policy
}

// Aggregate is the generic lifecycle engine: one value object, one metadata
// record, one library reference. All mutation paths funnel through it.
// An aggregate instance belongs to a single request and is discarded after
// persistence; it is never shared across goroutines.
type Aggregate[V Value[V]] struct {
	caps    Capabilities[V]
	uid     string
	library LibraryRef
	meta    ItemMetadata
	value   V
	closure any
}

// New constructs a never-persisted aggregate from caller input. The payload
// is validated before anything else; a validation failure yields no partial
// construction. mintUID may be nil or return an empty string to let the
// repository assign the UID at save time.
func New[V Value[V]](
	ctx context.Context,
	caps Capabilities[V],
	authorID string,
	value V,
	library LibraryRef,
	mintUID func(ctx context.Context) (string, error),
) (*Aggregate[V], error) {
	if !library.IsEditable() && !caps.EditAllowedInFrozenLibrary {
		return nil, ErrCreationNotAllowed(library.Name())
	}
	if err := caps.Validator.Validate(ctx, value, nil); err != nil {
		return nil, err
	}

	var uid string
	if mintUID != nil {
		minted, err := mintUID(ctx)
		if err != nil {
			return nil, err
		}
		uid = minted
	}

	// The first draft carries version 0.1 under semantic versioning; the
	// policy decides so pinned-major families start at their pinned number.
	meta := InitialItemMetadata(authorID)
	meta.MajorVersion, meta.MinorVersion = caps.policy().NextDraft(meta)

	return &Aggregate[V]{
		caps:    caps,
		uid:     uid,
		library: library,
		meta:    meta,
		value:   value,
	}, nil
}

// Rehydrate rebuilds an aggregate from stored state. No validation runs; the
// store is trusted. closure carries repository bookkeeping distinguishing
// loaded aggregates from freshly constructed ones.
func Rehydrate[V Value[V]](
	caps Capabilities[V],
	uid string,
	library LibraryRef,
	meta ItemMetadata,
	value V,
	closure any,
) *Aggregate[V] {
	return &Aggregate[V]{
		caps:    caps,
		uid:     uid,
		library: library,
		meta:    meta,
		value:   value,
		closure: closure,
	}
}

func (a *Aggregate[V]) UID() string            { return a.uid }
func (a *Aggregate[V]) Library() LibraryRef    { return a.library }
func (a *Aggregate[V]) Metadata() ItemMetadata { return a.meta }
func (a *Aggregate[V]) Value() V               { return a.value }
func (a *Aggregate[V]) EntityType() string     { return a.caps.EntityType }

// ClosureData returns the repository bookkeeping attached at load time; nil
// means the aggregate was never persisted.
func (a *Aggregate[V]) ClosureData() any { return a.closure }

// SetClosureData attaches repository bookkeeping after a save.
func (a *Aggregate[V]) SetClosureData(closure any) { a.closure = closure }

// SetUID assigns the repository-generated UID to a freshly created aggregate.
func (a *Aggregate[V]) SetUID(uid string) {
	if a.uid == "" {
		a.uid = uid
	}
}

func (a *Aggregate[V]) editableOrExempt() bool {
	return a.library.IsEditable() || a.caps.EditAllowedInFrozenLibrary
}

// newVersionAllowed gates checkout-for-edit. FrozenLibraryGatesRestore takes
// precedence over the frozen-library edit exemption.
func (a *Aggregate[V]) newVersionAllowed() bool {
	if a.library.IsEditable() {
		return true
	}
	return a.caps.EditAllowedInFrozenLibrary && !a.caps.FrozenLibraryGatesRestore
}

// EditDraft validates and attaches a new payload, bumping the draft version.
// Ordering is validate-then-mutate: a failed validation leaves the aggregate
// untouched. Editing with a structurally identical payload is a no-op and
// reports changed=false so callers can skip persistence.
func (a *Aggregate[V]) EditDraft(ctx context.Context, authorID, changeDescription string, next V) (changed bool, err error) {
	if a.meta.Status != enums.ItemStatusDraft && !(a.caps.EditAllowedWhileFinal && a.meta.Status == enums.ItemStatusFinal) {
		return false, ErrNotInDraft(a.caps.EntityType, a.uid)
	}
	if !a.editableOrExempt() {
		return false, ErrLibraryNotEditable(a.library.Name())
	}
	prev := a.value
	if err := a.caps.Validator.Validate(ctx, next, &prev); err != nil {
		return false, err
	}
	if next.Equal(a.value) {
		return false, nil
	}
	meta, err := a.meta.NewDraftVersion(a.caps.policy(), authorID, changeDescription)
	if err != nil {
		return false, err
	}
	a.meta = meta
	a.value = next
	return true, nil
}

// Approve finalizes the current draft. The payload is unchanged.
func (a *Aggregate[V]) Approve(authorID string) error {
	if !a.editableOrExempt() {
		return ErrLibraryNotEditable(a.library.Name())
	}
	meta, err := a.meta.Approve(a.caps.policy(), authorID)
	if err != nil {
		return err
	}
	a.meta = meta
	return nil
}

// CreateNewVersion checks a final item out for editing: status moves back to
// draft, the payload stays until a subsequent EditDraft replaces it.
func (a *Aggregate[V]) CreateNewVersion(authorID, changeDescription string) error {
	if a.meta.Status != enums.ItemStatusFinal {
		return ErrNotInFinal(a.caps.EntityType, a.uid)
	}
	if !a.newVersionAllowed() {
		return ErrLibraryNotEditable(a.library.Name())
	}
	meta, err := a.meta.NewDraftVersion(a.caps.policy(), authorID, changeDescription)
	if err != nil {
		return err
	}
	a.meta = meta
	return nil
}

// Inactivate retires the current final version.
func (a *Aggregate[V]) Inactivate(authorID string) error {
	if !a.editableOrExempt() {
		return ErrLibraryNotEditable(a.library.Name())
	}
	meta, err := a.meta.Inactivate(authorID)
	if err != nil {
		return err
	}
	a.meta = meta
	return nil
}

// Reactivate restores a retired item to final. Unlike the other mutating
// operations this is not gated on library editability, except for families
// whose frozen library gates restore operations too.
func (a *Aggregate[V]) Reactivate(authorID string) error {
	if a.caps.FrozenLibraryGatesRestore && !a.library.IsEditable() {
		return ErrLibraryNotEditable(a.library.Name())
	}
	meta, err := a.meta.Reactivate(authorID)
	if err != nil {
		return err
	}
	a.meta = meta
	return nil
}

// SoftDelete marks a never-approved draft for removal. Families must opt in.
func (a *Aggregate[V]) SoftDelete() error {
	if !a.caps.SoftDeleteSupported {
		return ErrDeleteNotSupported(a.caps.EntityType, a.uid)
	}
	if a.meta.Status != enums.ItemStatusDraft || a.meta.MajorVersion != 0 {
		return ErrDeleteAfterApproval(a.caps.EntityType, a.uid)
	}
	return nil
}

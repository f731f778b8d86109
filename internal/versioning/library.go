package versioning

// LibraryRef marks the library an aggregate belongs to. Editability is
// resolved through a callback so the rule can depend on live library
// configuration rather than a value captured at construction.
type LibraryRef struct {
	name       string
	isEditable func() bool
}

// NewLibraryRef builds a library reference with a live editability resolver.
func NewLibraryRef(name string, isEditable func() bool) LibraryRef {
	return LibraryRef{name: name, isEditable: isEditable}
}

// Name returns the library name.
func (l LibraryRef) Name() string {
	return l.name
}

// IsEditable reports whether the library currently permits mutations.
func (l LibraryRef) IsEditable() bool {
	if l.isEditable == nil {
		return false
	}
	return l.isEditable()
}

// IsZero reports whether the reference was never set.
func (l LibraryRef) IsZero() bool {
	return l.name == "" && l.isEditable == nil
}

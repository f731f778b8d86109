package libraries

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinmeta/cmdr-backend/internal/versioning"
	"github.com/clinmeta/cmdr-backend/pkg/db/models"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
)

// Service exposes library management and resolution.
type Service interface {
	List(ctx context.Context) ([]LibraryDTO, error)
	Create(ctx context.Context, input CreateLibraryInput) (*LibraryDTO, error)
	// Resolve loads a library and wraps it in the reference the lifecycle
	// engine consumes. Every aggregate operation starts here.
	Resolve(ctx context.Context, name string) (versioning.LibraryRef, error)
}

// CreateLibraryInput holds the validated payload to create a library.
type CreateLibraryInput struct {
	Name       string
	IsEditable bool
}

// LibraryDTO is the outward shape of a library.
type LibraryDTO struct {
	Name       string `json:"name"`
	IsEditable bool   `json:"is_editable"`
}

type service struct {
	repo *Repository
}

// NewService constructs a library service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("library repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]LibraryDTO, error) {
	libs, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list libraries")
	}
	out := make([]LibraryDTO, 0, len(libs))
	for _, lib := range libs {
		out = append(out, LibraryDTO{Name: lib.Name, IsEditable: lib.IsEditable})
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateLibraryInput) (*LibraryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "library name is required")
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find library")
	}
	if existing != nil {
		return nil, versioning.ErrAlreadyExists("Library", "name", name)
	}

	lib, err := s.repo.Create(ctx, &models.Library{Name: name, IsEditable: input.IsEditable})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert library")
	}
	return &LibraryDTO{Name: lib.Name, IsEditable: lib.IsEditable}, nil
}

func (s *service) Resolve(ctx context.Context, name string) (versioning.LibraryRef, error) {
	lib, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return versioning.LibraryRef{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find library")
	}
	if lib == nil {
		return versioning.LibraryRef{}, pkgerrors.Newf(pkgerrors.CodeNotFound,
			"Library '%s' doesn't exist.", name)
	}
	editable := lib.IsEditable
	return versioning.NewLibraryRef(lib.Name, func() bool { return editable }), nil
}

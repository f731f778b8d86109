package forms

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinmeta/cmdr-backend/internal/repo"
	"github.com/clinmeta/cmdr-backend/internal/versioning"
	"github.com/clinmeta/cmdr-backend/pkg/db"
	"github.com/clinmeta/cmdr-backend/pkg/db/models"
	"github.com/clinmeta/cmdr-backend/pkg/enums"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
	"github.com/clinmeta/cmdr-backend/pkg/metrics"
	"github.com/clinmeta/cmdr-backend/pkg/pagination"
)

// Service exposes the form lifecycle operations. Forms are master-model
// artifacts: the major version is pinned at creation and the minor version
// stays 0 across transitions.
type Service interface {
	Create(ctx context.Context, authorID string, input CreateInput) (*FormDTO, error)
	Get(ctx context.Context, uid string, opts GetOptions) (*FormDTO, error)
	List(ctx context.Context, params pagination.Params, filter ListFilter) ([]FormDTO, string, error)
	Versions(ctx context.Context, uid string) ([]FormDTO, error)
	PossibleActions(ctx context.Context, uid string) ([]enums.ObjectAction, error)
	Edit(ctx context.Context, uid, authorID string, input EditInput) (*FormDTO, error)
	Approve(ctx context.Context, uid, authorID string) (*FormDTO, error)
	NewVersion(ctx context.Context, uid, authorID, changeDescription string) (*FormDTO, error)
	Inactivate(ctx context.Context, uid, authorID string) (*FormDTO, error)
	Reactivate(ctx context.Context, uid, authorID string) (*FormDTO, error)
}

// CreateInput holds the validated payload to create a form. MajorVersion is
// the externally supplied master-model version.
type CreateInput struct {
	LibraryName  string
	MajorVersion uint
	Name         string
	OID          string
	Repeating    bool
	Description  string
}

// EditInput replaces the draft payload wholesale.
type EditInput struct {
	ChangeDescription string
	Name              string
	OID               string
	Repeating         bool
	Description       string
}

// GetOptions scope a read to a specific version or status.
type GetOptions struct {
	Version string
	Status  string
}

type libraryResolver interface {
	Resolve(ctx context.Context, name string) (versioning.LibraryRef, error)
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	libraries libraryResolver
	cache     *repo.AggregateCache
	lifecycle *metrics.LifecycleMetrics
}

// NewService constructs a form service instance.
func NewService(repository *Repository, dbClient *db.Client, libraries libraryResolver, cache *repo.AggregateCache, lifecycle *metrics.LifecycleMetrics) (Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("form repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if libraries == nil {
		return nil, fmt.Errorf("library resolver required")
	}
	return &service{
		repo:      repository,
		dbClient:  dbClient,
		libraries: libraries,
		cache:     cache,
		lifecycle: lifecycle,
	}, nil
}

func (s *service) capabilities(txRepo *Repository, pinnedMajor uint) versioning.Capabilities[FormValue] {
	return versioning.Capabilities[FormValue]{
		EntityType:                 entityType,
		Validator:                  PayloadValidator{Oracle: txRepo},
		Policy:                     versioning.PinnedMajorVersioning{Major: pinnedMajor},
		EditAllowedInFrozenLibrary: true,
	}
}

func (s *service) Create(ctx context.Context, authorID string, input CreateInput) (*FormDTO, error) {
	var dto *FormDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		library, err := s.libraries.Resolve(ctx, input.LibraryName)
		if err != nil {
			return err
		}

		value := FormValue{
			Name:        input.Name,
			OID:         input.OID,
			Repeating:   input.Repeating,
			Description: input.Description,
		}
		agg, err := versioning.New(ctx, s.capabilities(txRepo, input.MajorVersion), authorID, value, library, txRepo.GenerateUID)
		if err != nil {
			return err
		}
		if err := s.persist(ctx, txRepo, agg); err != nil {
			return err
		}
		dto = NewFormDTO(agg)
		return nil
	})
	if err != nil {
		s.lifecycle.IncFailure(entityType, failureCode(err))
		return nil, err
	}
	s.lifecycle.IncTransition(entityType, "create")
	return dto, nil
}

func (s *service) Get(ctx context.Context, uid string, opts GetOptions) (*FormDTO, error) {
	if opts == (GetOptions{}) {
		var cached FormDTO
		if s.cache.Get(ctx, uid, &cached) {
			return &cached, nil
		}
	}

	parent, err := s.repo.FindParent(ctx, uid, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find form")
	}
	if parent == nil {
		return nil, errNotFound(uid)
	}

	var row *models.FormVersion
	switch {
	case opts.Version != "":
		major, minor, err := versioning.ParseVersion(opts.Version)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid version")
		}
		row, err = s.repo.FindVersion(ctx, uid, major, minor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find form version")
		}
	case opts.Status != "":
		status, err := enums.ParseItemStatus(opts.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		row, err = s.repo.FindLatestByStatus(ctx, uid, status.String())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find form by status")
		}
	default:
		open, err := s.repo.FindOpenVersion(ctx, uid)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find open form version")
		}
		row = open
	}
	if row == nil {
		return nil, errNotFound(uid)
	}

	dto := NewVersionDTO(parent.LibraryName, *row)
	if opts == (GetOptions{}) {
		_ = s.cache.Put(ctx, uid, dto)
	}
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filter ListFilter) ([]FormDTO, string, error) {
	rows, next, err := s.repo.List(ctx, params, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list forms")
	}

	out := make([]FormDTO, 0, len(rows))
	for _, parent := range rows {
		open, err := s.repo.FindOpenVersion(ctx, parent.UID)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find open form version")
		}
		out = append(out, NewVersionDTO(parent.LibraryName, *open))
	}
	return out, next, nil
}

func (s *service) Versions(ctx context.Context, uid string) ([]FormDTO, error) {
	parent, err := s.repo.FindParent(ctx, uid, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find form")
	}
	if parent == nil {
		return nil, errNotFound(uid)
	}

	rows, err := s.repo.ListVersions(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list form versions")
	}
	out := make([]FormDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewVersionDTO(parent.LibraryName, row))
	}
	return out, nil
}

func (s *service) PossibleActions(ctx context.Context, uid string) ([]enums.ObjectAction, error) {
	agg, err := s.load(ctx, s.repo, uid, false)
	if err != nil {
		return nil, err
	}
	return agg.PossibleActions(), nil
}

func (s *service) Edit(ctx context.Context, uid, authorID string, input EditInput) (*FormDTO, error) {
	next := FormValue{
		Name:        input.Name,
		OID:         input.OID,
		Repeating:   input.Repeating,
		Description: input.Description,
	}
	return s.mutate(ctx, uid, enums.ObjectActionEdit, func(ctx context.Context, agg *versioning.Aggregate[FormValue]) (bool, error) {
		return agg.EditDraft(ctx, authorID, input.ChangeDescription, next)
	})
}

func (s *service) Approve(ctx context.Context, uid, authorID string) (*FormDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionApprove, func(_ context.Context, agg *versioning.Aggregate[FormValue]) (bool, error) {
		return true, agg.Approve(authorID)
	})
}

func (s *service) NewVersion(ctx context.Context, uid, authorID, changeDescription string) (*FormDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionNewVersion, func(_ context.Context, agg *versioning.Aggregate[FormValue]) (bool, error) {
		return true, agg.CreateNewVersion(authorID, changeDescription)
	})
}

func (s *service) Inactivate(ctx context.Context, uid, authorID string) (*FormDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionInactivate, func(_ context.Context, agg *versioning.Aggregate[FormValue]) (bool, error) {
		return true, agg.Inactivate(authorID)
	})
}

func (s *service) Reactivate(ctx context.Context, uid, authorID string) (*FormDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionReactivate, func(_ context.Context, agg *versioning.Aggregate[FormValue]) (bool, error) {
		return true, agg.Reactivate(authorID)
	})
}

func (s *service) mutate(ctx context.Context, uid string, action enums.ObjectAction, fn func(ctx context.Context, agg *versioning.Aggregate[FormValue]) (bool, error)) (*FormDTO, error) {
	var dto *FormDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		agg, err := s.load(ctx, txRepo, uid, true)
		if err != nil {
			return err
		}
		changed, err := fn(ctx, agg)
		if err != nil {
			return err
		}
		if changed {
			if err := s.persist(ctx, txRepo, agg); err != nil {
				return err
			}
		}
		dto = NewFormDTO(agg)
		return nil
	})
	if err != nil {
		s.lifecycle.IncFailure(entityType, failureCode(err))
		return nil, err
	}
	s.lifecycle.IncTransition(entityType, action.String())
	_ = s.cache.Invalidate(ctx, uid)
	return dto, nil
}

func (s *service) load(ctx context.Context, txRepo *Repository, uid string, forUpdate bool) (*versioning.Aggregate[FormValue], error) {
	parent, err := txRepo.FindParent(ctx, uid, forUpdate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find form")
	}
	if parent == nil {
		return nil, errNotFound(uid)
	}

	open, err := txRepo.FindOpenVersion(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find open form version")
	}

	library, err := s.libraries.Resolve(ctx, parent.LibraryName)
	if err != nil {
		return nil, err
	}

	meta := versioning.ItemMetadata{
		Status:            open.Status,
		MajorVersion:      open.MajorVersion,
		MinorVersion:      open.MinorVersion,
		AuthorID:          open.AuthorID,
		StartDate:         open.StartDate,
		ChangeDescription: open.ChangeDescription,
	}
	value := FormValue{
		Name:        open.Name,
		OID:         open.OID,
		Repeating:   open.Repeating,
		Description: open.Description,
	}
	// The pinned major travels with the stored version numbers.
	return versioning.Rehydrate(s.capabilities(txRepo, open.MajorVersion), uid, library, meta, value,
		repo.StoredState{OpenVersionID: open.ID}), nil
}

func (s *service) persist(ctx context.Context, txRepo *Repository, agg *versioning.Aggregate[FormValue]) error {
	meta := agg.Metadata()
	value := agg.Value()

	parent := &models.Form{
		VersionedItem: models.VersionedItem{
			UID:          agg.UID(),
			LibraryName:  agg.Library().Name(),
			Status:       meta.Status,
			MajorVersion: meta.MajorVersion,
			MinorVersion: meta.MinorVersion,
		},
		Name: value.Name,
		OID:  value.OID,
	}
	version := &models.FormVersion{
		VersionRecord: models.VersionRecord{
			ID:                uuid.New(),
			Status:            meta.Status,
			MajorVersion:      meta.MajorVersion,
			MinorVersion:      meta.MinorVersion,
			AuthorID:          meta.AuthorID,
			StartDate:         meta.StartDate,
			ChangeDescription: meta.ChangeDescription,
		},
		FormUID:     agg.UID(),
		Name:        value.Name,
		OID:         value.OID,
		Repeating:   value.Repeating,
		Description: value.Description,
	}

	var err error
	if st, ok := agg.ClosureData().(repo.StoredState); ok {
		err = txRepo.SaveTransition(ctx, parent, st.OpenVersionID, version)
	} else {
		err = txRepo.Insert(ctx, parent, version)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save form")
	}
	agg.SetClosureData(repo.StoredState{OpenVersionID: version.ID})
	return nil
}

func errNotFound(uid string) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "%s with UID '%s' doesn't exist.", entityType, uid)
}

func failureCode(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return string(pkgerrors.CodeInternal)
}

package codelists

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

// Service exposes the codelist lifecycle operations.
type Service interface {
	Create(ctx context.Context, authorID string, input CreateInput) (*CodelistDTO, error)
	Get(ctx context.Context, uid string, opts GetOptions) (*CodelistDTO, error)
	List(ctx context.Context, params pagination.Params, filter ListFilter) ([]CodelistDTO, string, error)
	Versions(ctx context.Context, uid string) ([]CodelistDTO, error)
	PossibleActions(ctx context.Context, uid string) ([]enums.ObjectAction, error)
	Edit(ctx context.Context, uid, authorID string, input EditInput) (*CodelistDTO, error)
	Approve(ctx context.Context, uid, authorID string) (*CodelistDTO, error)
	NewVersion(ctx context.Context, uid, authorID, changeDescription string) (*CodelistDTO, error)
	Inactivate(ctx context.Context, uid, authorID string) (*CodelistDTO, error)
	Reactivate(ctx context.Context, uid, authorID string) (*CodelistDTO, error)
	Delete(ctx context.Context, uid string) error
}

// CreateInput holds the validated payload to create a codelist.
type CreateInput struct {
	LibraryName      string
	Name             string
	SubmissionValue  string
	NCIPreferredName string
	Definition       string
	Extensible       bool
}

// EditInput replaces the draft payload wholesale.
type EditInput struct {
	ChangeDescription string
	Name              string
	SubmissionValue   string
	NCIPreferredName  string
	Definition        string
	Extensible        bool
}

// GetOptions scope a read to a specific version or to the latest version
// holding a status. Zero options read the current state.
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

// NewService constructs a codelist service instance.
func NewService(repository *Repository, dbClient *db.Client, libraries libraryResolver, cache *repo.AggregateCache, lifecycle *metrics.LifecycleMetrics) (Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("codelist repository required")
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

func capabilities(oracle ExistenceOracle) versioning.Capabilities[CodelistValue] {
	return versioning.Capabilities[CodelistValue]{
		EntityType:          entityType,
		Validator:           PayloadValidator{Oracle: oracle},
		SoftDeleteSupported: true,
	}
}

func (s *service) Create(ctx context.Context, authorID string, input CreateInput) (*CodelistDTO, error) {
	var dto *CodelistDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		library, err := s.libraries.Resolve(ctx, input.LibraryName)
		if err != nil {
			return err
		}

		value := CodelistValue{
			Name:             input.Name,
			SubmissionValue:  input.SubmissionValue,
			NCIPreferredName: input.NCIPreferredName,
			Definition:       input.Definition,
			Extensible:       input.Extensible,
		}
		agg, err := versioning.New(ctx, capabilities(txRepo), authorID, value, library, txRepo.GenerateUID)
		if err != nil {
			return err
		}
		if err := s.persist(ctx, txRepo, agg); err != nil {
			return err
		}
		dto = NewCodelistDTO(agg)
		return nil
	})
	if err != nil {
		s.lifecycle.IncFailure(entityType, failureCode(err))
		return nil, err
	}
	s.lifecycle.IncTransition(entityType, "create")
	return dto, nil
}

func (s *service) Get(ctx context.Context, uid string, opts GetOptions) (*CodelistDTO, error) {
	if opts == (GetOptions{}) {
		var cached CodelistDTO
		if s.cache.Get(ctx, uid, &cached) {
			return &cached, nil
		}
	}

	parent, err := s.repo.FindParent(ctx, uid, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find codelist")
	}
	if parent == nil {
		return nil, errNotFound(uid)
	}

	var row *models.CodelistVersion
	switch {
	case opts.Version != "":
		major, minor, err := versioning.ParseVersion(opts.Version)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid version")
		}
		row, err = s.repo.FindVersion(ctx, uid, major, minor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find codelist version")
		}
	case opts.Status != "":
		status, err := enums.ParseItemStatus(opts.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		row, err = s.repo.FindLatestByStatus(ctx, uid, status.String())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find codelist by status")
		}
	default:
		open, err := s.repo.FindOpenVersion(ctx, uid)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find open codelist version")
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

func (s *service) List(ctx context.Context, params pagination.Params, filter ListFilter) ([]CodelistDTO, string, error) {
	rows, next, err := s.repo.List(ctx, params, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list codelists")
	}

	out := make([]CodelistDTO, 0, len(rows))
	for _, parent := range rows {
		open, err := s.repo.FindOpenVersion(ctx, parent.UID)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find open codelist version")
		}
		out = append(out, NewVersionDTO(parent.LibraryName, *open))
	}
	return out, next, nil
}

func (s *service) Versions(ctx context.Context, uid string) ([]CodelistDTO, error) {
	parent, err := s.repo.FindParent(ctx, uid, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find codelist")
	}
	if parent == nil {
		return nil, errNotFound(uid)
	}

	rows, err := s.repo.ListVersions(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list codelist versions")
	}
	out := make([]CodelistDTO, 0, len(rows))
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

func (s *service) Edit(ctx context.Context, uid, authorID string, input EditInput) (*CodelistDTO, error) {
	next := CodelistValue{
		Name:             input.Name,
		SubmissionValue:  input.SubmissionValue,
		NCIPreferredName: input.NCIPreferredName,
		Definition:       input.Definition,
		Extensible:       input.Extensible,
	}
	return s.mutate(ctx, uid, enums.ObjectActionEdit, func(ctx context.Context, agg *versioning.Aggregate[CodelistValue]) (bool, error) {
		return agg.EditDraft(ctx, authorID, input.ChangeDescription, next)
	})
}

func (s *service) Approve(ctx context.Context, uid, authorID string) (*CodelistDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionApprove, func(_ context.Context, agg *versioning.Aggregate[CodelistValue]) (bool, error) {
		return true, agg.Approve(authorID)
	})
}

func (s *service) NewVersion(ctx context.Context, uid, authorID, changeDescription string) (*CodelistDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionNewVersion, func(_ context.Context, agg *versioning.Aggregate[CodelistValue]) (bool, error) {
		return true, agg.CreateNewVersion(authorID, changeDescription)
	})
}

func (s *service) Inactivate(ctx context.Context, uid, authorID string) (*CodelistDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionInactivate, func(_ context.Context, agg *versioning.Aggregate[CodelistValue]) (bool, error) {
		return true, agg.Inactivate(authorID)
	})
}

func (s *service) Reactivate(ctx context.Context, uid, authorID string) (*CodelistDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionReactivate, func(_ context.Context, agg *versioning.Aggregate[CodelistValue]) (bool, error) {
		return true, agg.Reactivate(authorID)
	})
}

func (s *service) Delete(ctx context.Context, uid string) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		agg, err := s.load(ctx, txRepo, uid, true)
		if err != nil {
			return err
		}
		if err := agg.SoftDelete(); err != nil {
			return err
		}
		if err := txRepo.Delete(ctx, uid); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete codelist")
		}
		return nil
	})
	if err != nil {
		s.lifecycle.IncFailure(entityType, failureCode(err))
		return err
	}
	s.lifecycle.IncTransition(entityType, enums.ObjectActionDelete.String())
	_ = s.cache.Invalidate(ctx, uid)
	return nil
}

// mutate runs one lifecycle operation inside a single transaction: load with
// a row lock, apply, persist, then invalidate the cache outside the tx.
func (s *service) mutate(ctx context.Context, uid string, action enums.ObjectAction, fn func(ctx context.Context, agg *versioning.Aggregate[CodelistValue]) (bool, error)) (*CodelistDTO, error) {
	var dto *CodelistDTO
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
		dto = NewCodelistDTO(agg)
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

func (s *service) load(ctx context.Context, txRepo *Repository, uid string, forUpdate bool) (*versioning.Aggregate[CodelistValue], error) {
	parent, err := txRepo.FindParent(ctx, uid, forUpdate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find codelist")
	}
	if parent == nil {
		return nil, errNotFound(uid)
	}

	open, err := txRepo.FindOpenVersion(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find open codelist version")
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
	value := CodelistValue{
		Name:             open.Name,
		SubmissionValue:  open.SubmissionValue,
		NCIPreferredName: open.NCIPreferredName,
		Definition:       open.Definition,
		Extensible:       open.Extensible,
	}
	return versioning.Rehydrate(capabilities(txRepo), uid, library, meta, value,
		repo.StoredState{OpenVersionID: open.ID}), nil
}

func (s *service) persist(ctx context.Context, txRepo *Repository, agg *versioning.Aggregate[CodelistValue]) error {
	meta := agg.Metadata()
	value := agg.Value()

	parent := &models.Codelist{
		VersionedItem: models.VersionedItem{
			UID:          agg.UID(),
			LibraryName:  agg.Library().Name(),
			Status:       meta.Status,
			MajorVersion: meta.MajorVersion,
			MinorVersion: meta.MinorVersion,
		},
		Name:            value.Name,
		SubmissionValue: value.SubmissionValue,
	}
	version := &models.CodelistVersion{
		VersionRecord: models.VersionRecord{
			ID:                uuid.New(),
			Status:            meta.Status,
			MajorVersion:      meta.MajorVersion,
			MinorVersion:      meta.MinorVersion,
			AuthorID:          meta.AuthorID,
			StartDate:         meta.StartDate,
			ChangeDescription: meta.ChangeDescription,
		},
		CodelistUID:      agg.UID(),
		Name:             value.Name,
		SubmissionValue:  value.SubmissionValue,
		NCIPreferredName: value.NCIPreferredName,
		Definition:       value.Definition,
		Extensible:       value.Extensible,
	}

	var err error
	if st, ok := agg.ClosureData().(repo.StoredState); ok {
		err = txRepo.SaveTransition(ctx, parent, st.OpenVersionID, version)
	} else {
		err = txRepo.Insert(ctx, parent, version)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save codelist")
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

package terms

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
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

// Service exposes the term lifecycle operations. Terms carry the CDISC
// exemptions: sponsor edits are allowed under a frozen library, but checkout
// and reactivation stay gated, and deletion is never available.
type Service interface {
	Create(ctx context.Context, authorID string, input CreateInput) (*TermDTO, error)
	Get(ctx context.Context, uid string, opts GetOptions) (*TermDTO, error)
	List(ctx context.Context, params pagination.Params, filter ListFilter) ([]TermDTO, string, error)
	Versions(ctx context.Context, uid string) ([]TermDTO, error)
	PossibleActions(ctx context.Context, uid string) ([]enums.ObjectAction, error)
	Edit(ctx context.Context, uid, authorID string, input EditInput) (*TermDTO, error)
	Approve(ctx context.Context, uid, authorID string) (*TermDTO, error)
	NewVersion(ctx context.Context, uid, authorID, changeDescription string) (*TermDTO, error)
	Inactivate(ctx context.Context, uid, authorID string) (*TermDTO, error)
	Reactivate(ctx context.Context, uid, authorID string) (*TermDTO, error)
	Delete(ctx context.Context, uid string) error
}

// CreateInput holds the validated payload to create a term.
type CreateInput struct {
	LibraryName     string
	CodelistUID     string
	Name            string
	SubmissionValue string
	PreferredTerm   string
	Definition      string
	Synonyms        []string
}

// EditInput replaces the draft payload wholesale. The owning codelist cannot
// change after creation.
type EditInput struct {
	ChangeDescription string
	Name              string
	SubmissionValue   string
	PreferredTerm     string
	Definition        string
	Synonyms          []string
}

// GetOptions scope a read to a specific version or status.
type GetOptions struct {
	Version string
	Status  string
}

type libraryResolver interface {
	Resolve(ctx context.Context, name string) (versioning.LibraryRef, error)
}

type codelistChecker interface {
	ExistsByUID(ctx context.Context, uid string) (bool, error)
}

// oracle satisfies ExistenceOracle by combining the term repository with the
// cross-family codelist check.
type oracle struct {
	repo      *Repository
	codelists codelistChecker
}

func (o oracle) CodelistExists(ctx context.Context, codelistUID string) (bool, error) {
	return o.codelists.ExistsByUID(ctx, codelistUID)
}

func (o oracle) NameExists(ctx context.Context, codelistUID, name string) (bool, error) {
	return o.repo.NameExists(ctx, codelistUID, name)
}

func (o oracle) SubmissionValueExists(ctx context.Context, codelistUID, value string) (bool, error) {
	return o.repo.SubmissionValueExists(ctx, codelistUID, value)
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	libraries libraryResolver
	codelists codelistChecker
	cache     *repo.AggregateCache
	lifecycle *metrics.LifecycleMetrics
}

// NewService constructs a term service instance.
func NewService(repository *Repository, dbClient *db.Client, libraries libraryResolver, codelists codelistChecker, cache *repo.AggregateCache, lifecycle *metrics.LifecycleMetrics) (Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("term repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if libraries == nil {
		return nil, fmt.Errorf("library resolver required")
	}
	if codelists == nil {
		return nil, fmt.Errorf("codelist checker required")
	}
	return &service{
		repo:      repository,
		dbClient:  dbClient,
		libraries: libraries,
		codelists: codelists,
		cache:     cache,
		lifecycle: lifecycle,
	}, nil
}

func (s *service) capabilities(txRepo *Repository) versioning.Capabilities[TermValue] {
	return versioning.Capabilities[TermValue]{
		EntityType:                 entityType,
		Validator:                  PayloadValidator{Oracle: oracle{repo: txRepo, codelists: s.codelists}},
		EditAllowedInFrozenLibrary: true,
		FrozenLibraryGatesRestore:  true,
	}
}

func (s *service) Create(ctx context.Context, authorID string, input CreateInput) (*TermDTO, error) {
	var dto *TermDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		library, err := s.libraries.Resolve(ctx, input.LibraryName)
		if err != nil {
			return err
		}

		value := TermValue{
			CodelistUID:     input.CodelistUID,
			Name:            input.Name,
			SubmissionValue: input.SubmissionValue,
			PreferredTerm:   input.PreferredTerm,
			Definition:      input.Definition,
			Synonyms:        input.Synonyms,
		}
		agg, err := versioning.New(ctx, s.capabilities(txRepo), authorID, value, library, txRepo.GenerateUID)
		if err != nil {
			return err
		}
		if err := s.persist(ctx, txRepo, agg); err != nil {
			return err
		}
		dto = NewTermDTO(agg)
		return nil
	})
	if err != nil {
		s.lifecycle.IncFailure(entityType, failureCode(err))
		return nil, err
	}
	s.lifecycle.IncTransition(entityType, "create")
	return dto, nil
}

func (s *service) Get(ctx context.Context, uid string, opts GetOptions) (*TermDTO, error) {
	if opts == (GetOptions{}) {
		var cached TermDTO
		if s.cache.Get(ctx, uid, &cached) {
			return &cached, nil
		}
	}

	parent, err := s.repo.FindParent(ctx, uid, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find term")
	}
	if parent == nil {
		return nil, errNotFound(uid)
	}

	var row *models.TermVersion
	switch {
	case opts.Version != "":
		major, minor, err := versioning.ParseVersion(opts.Version)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid version")
		}
		row, err = s.repo.FindVersion(ctx, uid, major, minor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find term version")
		}
	case opts.Status != "":
		status, err := enums.ParseItemStatus(opts.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		row, err = s.repo.FindLatestByStatus(ctx, uid, status.String())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find term by status")
		}
	default:
		open, err := s.repo.FindOpenVersion(ctx, uid)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find open term version")
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

func (s *service) List(ctx context.Context, params pagination.Params, filter ListFilter) ([]TermDTO, string, error) {
	rows, next, err := s.repo.List(ctx, params, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list terms")
	}

	out := make([]TermDTO, 0, len(rows))
	for _, parent := range rows {
		open, err := s.repo.FindOpenVersion(ctx, parent.UID)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find open term version")
		}
		out = append(out, NewVersionDTO(parent.LibraryName, *open))
	}
	return out, next, nil
}

func (s *service) Versions(ctx context.Context, uid string) ([]TermDTO, error) {
	parent, err := s.repo.FindParent(ctx, uid, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find term")
	}
	if parent == nil {
		return nil, errNotFound(uid)
	}

	rows, err := s.repo.ListVersions(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list term versions")
	}
	out := make([]TermDTO, 0, len(rows))
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

func (s *service) Edit(ctx context.Context, uid, authorID string, input EditInput) (*TermDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionEdit, func(ctx context.Context, agg *versioning.Aggregate[TermValue]) (bool, error) {
		next := TermValue{
			CodelistUID:     agg.Value().CodelistUID,
			Name:            input.Name,
			SubmissionValue: input.SubmissionValue,
			PreferredTerm:   input.PreferredTerm,
			Definition:      input.Definition,
			Synonyms:        input.Synonyms,
		}
		return agg.EditDraft(ctx, authorID, input.ChangeDescription, next)
	})
}

func (s *service) Approve(ctx context.Context, uid, authorID string) (*TermDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionApprove, func(_ context.Context, agg *versioning.Aggregate[TermValue]) (bool, error) {
		return true, agg.Approve(authorID)
	})
}

func (s *service) NewVersion(ctx context.Context, uid, authorID, changeDescription string) (*TermDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionNewVersion, func(_ context.Context, agg *versioning.Aggregate[TermValue]) (bool, error) {
		return true, agg.CreateNewVersion(authorID, changeDescription)
	})
}

func (s *service) Inactivate(ctx context.Context, uid, authorID string) (*TermDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionInactivate, func(_ context.Context, agg *versioning.Aggregate[TermValue]) (bool, error) {
		return true, agg.Inactivate(authorID)
	})
}

func (s *service) Reactivate(ctx context.Context, uid, authorID string) (*TermDTO, error) {
	return s.mutate(ctx, uid, enums.ObjectActionReactivate, func(_ context.Context, agg *versioning.Aggregate[TermValue]) (bool, error) {
		return true, agg.Reactivate(authorID)
	})
}

// Delete always fails for terms; the engine gate produces the canonical
// error so clients get the same shape as any other disallowed action.
func (s *service) Delete(ctx context.Context, uid string) error {
	agg, err := s.load(ctx, s.repo, uid, false)
	if err != nil {
		return err
	}
	err = agg.SoftDelete()
	s.lifecycle.IncFailure(entityType, failureCode(err))
	return err
}

func (s *service) mutate(ctx context.Context, uid string, action enums.ObjectAction, fn func(ctx context.Context, agg *versioning.Aggregate[TermValue]) (bool, error)) (*TermDTO, error) {
	var dto *TermDTO
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
		dto = NewTermDTO(agg)
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

func (s *service) load(ctx context.Context, txRepo *Repository, uid string, forUpdate bool) (*versioning.Aggregate[TermValue], error) {
	parent, err := txRepo.FindParent(ctx, uid, forUpdate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find term")
	}
	if parent == nil {
		return nil, errNotFound(uid)
	}

	open, err := txRepo.FindOpenVersion(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find open term version")
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
	value := TermValue{
		CodelistUID:     open.CodelistUID,
		Name:            open.Name,
		SubmissionValue: open.SubmissionValue,
		PreferredTerm:   open.PreferredTerm,
		Definition:      open.Definition,
		Synonyms:        open.Synonyms,
	}
	return versioning.Rehydrate(s.capabilities(txRepo), uid, library, meta, value,
		repo.StoredState{OpenVersionID: open.ID}), nil
}

func (s *service) persist(ctx context.Context, txRepo *Repository, agg *versioning.Aggregate[TermValue]) error {
	meta := agg.Metadata()
	value := agg.Value()

	parent := &models.Term{
		VersionedItem: models.VersionedItem{
			UID:          agg.UID(),
			LibraryName:  agg.Library().Name(),
			Status:       meta.Status,
			MajorVersion: meta.MajorVersion,
			MinorVersion: meta.MinorVersion,
		},
		CodelistUID:     value.CodelistUID,
		Name:            value.Name,
		SubmissionValue: value.SubmissionValue,
	}
	version := &models.TermVersion{
		VersionRecord: models.VersionRecord{
			ID:                uuid.New(),
			Status:            meta.Status,
			MajorVersion:      meta.MajorVersion,
			MinorVersion:      meta.MinorVersion,
			AuthorID:          meta.AuthorID,
			StartDate:         meta.StartDate,
			ChangeDescription: meta.ChangeDescription,
		},
		TermUID:         agg.UID(),
		CodelistUID:     value.CodelistUID,
		Name:            value.Name,
		SubmissionValue: value.SubmissionValue,
		PreferredTerm:   value.PreferredTerm,
		Definition:      value.Definition,
		Synonyms:        pq.StringArray(value.Synonyms),
	}

	var err error
	if st, ok := agg.ClosureData().(repo.StoredState); ok {
		err = txRepo.SaveTransition(ctx, parent, st.OpenVersionID, version)
	} else {
		err = txRepo.Insert(ctx, parent, version)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save term")
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

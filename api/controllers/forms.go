package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinmeta/cmdr-backend/api/responses"
	"github.com/clinmeta/cmdr-backend/api/validators"
	"github.com/clinmeta/cmdr-backend/internal/forms"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
	"github.com/clinmeta/cmdr-backend/pkg/logger"
)

type createFormPayload struct {
	LibraryName  string `json:"library_name" validate:"required"`
	MajorVersion uint   `json:"major_version" validate:"required,min=1"`
	Name         string `json:"name"`
	OID          string `json:"oid"`
	Repeating    bool   `json:"repeating"`
	Description  string `json:"description"`
}

type editFormPayload struct {
	ChangeDescription string `json:"change_description"`
	Name              string `json:"name"`
	OID               string `json:"oid"`
	Repeating         bool   `json:"repeating"`
	Description       string `json:"description"`
}

// FormCreate starts a new form draft pinned to the supplied major version.
func FormCreate(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		var payload createFormPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Create(ctx, author, forms.CreateInput{
			LibraryName:  payload.LibraryName,
			MajorVersion: payload.MajorVersion,
			Name:         payload.Name,
			OID:          payload.OID,
			Repeating:    payload.Repeating,
			Description:  payload.Description,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func FormList(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter := forms.ListFilter{
			LibraryName: validators.QueryString(r, "library"),
			Status:      validators.QueryString(r, "status"),
		}

		items, next, err := svc.List(ctx, params, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, items, next)
	}
}

func FormGet(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form service unavailable"))
			return
		}

		dto, err := svc.Get(ctx, chi.URLParam(r, "uid"), forms.GetOptions{
			Version: validators.QueryString(r, "version"),
			Status:  validators.QueryString(r, "status"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func FormVersions(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form service unavailable"))
			return
		}

		rows, err := svc.Versions(ctx, chi.URLParam(r, "uid"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func FormActions(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form service unavailable"))
			return
		}

		actions, err := svc.PossibleActions(ctx, chi.URLParam(r, "uid"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, actions)
	}
}

func FormEdit(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		var payload editFormPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Edit(ctx, chi.URLParam(r, "uid"), author, forms.EditInput{
			ChangeDescription: payload.ChangeDescription,
			Name:              payload.Name,
			OID:               payload.OID,
			Repeating:         payload.Repeating,
			Description:       payload.Description,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func FormApprove(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		dto, err := svc.Approve(ctx, chi.URLParam(r, "uid"), author)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// FormNewVersion checks out a fresh draft; the pinned major never moves.
func FormNewVersion(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		var payload transitionPayload
		if err := decodeOptionalBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.NewVersion(ctx, chi.URLParam(r, "uid"), author, payload.ChangeDescription)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func FormInactivate(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		dto, err := svc.Inactivate(ctx, chi.URLParam(r, "uid"), author)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func FormReactivate(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "form service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		dto, err := svc.Reactivate(ctx, chi.URLParam(r, "uid"), author)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

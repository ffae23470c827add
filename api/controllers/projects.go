package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/impulsa-app/impulsa-backend/api/middleware"
	"github.com/impulsa-app/impulsa-backend/api/responses"
	"github.com/impulsa-app/impulsa-backend/api/validators"
	"github.com/impulsa-app/impulsa-backend/internal/projects"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
)

type createProjectPayload struct {
	Title           string          `json:"title" validate:"required"`
	Description     string          `json:"description" validate:"required"`
	FinancialGoal   decimal.Decimal `json:"financial_goal"`
	CategoryID      string          `json:"category_id" validate:"required,uuid"`
	Location        *string         `json:"location"`
	StartDate       *time.Time      `json:"start_date"`
	EndDate         time.Time       `json:"end_date" validate:"required"`
	ProofDocumentID *string         `json:"proof_document_id" validate:"omitempty,uuid"`
}

type approvalDecisionPayload struct {
	Decision string  `json:"decision" validate:"required,oneof=published observed rejected"`
	Reason   *string `json:"reason"`
}

type campaignTransitionPayload struct {
	Target string `json:"target" validate:"required"`
}

// ProjectCreate registers a new draft project owned by the caller.
func ProjectCreate(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := actorID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createProjectPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		categoryID, err := uuid.Parse(payload.CategoryID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id"))
			return
		}

		input := projects.CreateProjectInput{
			CreatorID:     userID,
			Title:         payload.Title,
			Description:   payload.Description,
			FinancialGoal: payload.FinancialGoal,
			CategoryID:    categoryID,
			StartDate:     payload.StartDate,
			EndDate:       payload.EndDate,
		}
		if payload.Location != nil {
			loc := validators.SanitizeString(*payload.Location, 255)
			input.Location = &loc
		}
		if payload.ProofDocumentID != nil {
			proofID, err := uuid.Parse(*payload.ProofDocumentID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid proof_document_id"))
				return
			}
			input.ProofDocumentID = &proofID
		}

		detail, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// ProjectSubmit moves the caller's draft into review.
func ProjectSubmit(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := actorID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "projectId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SubmitForApproval(ctx, projectID, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"approval_status": string(enums.ApprovalStatusInReview)})
	}
}

// ProjectResubmit returns an observed project to the review queue.
func ProjectResubmit(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := actorID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "projectId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Resubmit(ctx, projectID, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"approval_status": string(enums.ApprovalStatusInReview)})
	}
}

// ProjectDecision resolves a project in review. Admin routes only.
func ProjectDecision(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := actorID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "projectId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload approvalDecisionPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		decision, err := enums.ParseApprovalStatus(payload.Decision)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}

		input := projects.ApprovalDecisionInput{
			ProjectID:   projectID,
			ActorUserID: userID,
			ActorRole:   enums.MemberRole(middleware.RoleFromContext(ctx)),
			Decision:    decision,
			Reason:      payload.Reason,
		}
		if err := svc.Decide(ctx, input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"approval_status": string(decision)})
	}
}

// ProjectCampaign transitions the campaign axis of the caller's project.
func ProjectCampaign(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := actorID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "projectId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload campaignTransitionPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		target, err := enums.ParseCampaignStatus(payload.Target)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target"))
			return
		}

		input := projects.CampaignTransitionInput{
			ProjectID:   projectID,
			ActorUserID: userID,
			Target:      target,
		}
		if err := svc.TransitionCampaign(ctx, input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"campaign_status": string(target)})
	}
}

// ProjectDetail returns a single project by id.
func ProjectDetail(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		projectID, err := pathUUID(r, "projectId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.GetByID(ctx, projectID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ProjectDetailBySlug returns a single project by its public slug.
func ProjectDetailBySlug(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		detail, err := svc.GetBySlug(ctx, slug)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ProjectList returns the public catalogue of published projects.
func ProjectList(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filters := projects.ListFilters{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id"))
				return
			}
			filters.CategoryID = &categoryID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("campaign_status")); raw != "" {
			status, err := enums.ParseCampaignStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid campaign_status"))
				return
			}
			filters.CampaignStatus = &status
		}

		list, err := svc.ListPublished(ctx, params, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProjectMine lists the caller's own projects regardless of approval state.
func ProjectMine(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := actorID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListByCreator(ctx, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProjectHistory lists the status audit trail for the owner or an admin.
func ProjectHistory(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := actorID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		projectID, err := pathUUID(r, "projectId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		role := enums.MemberRole(middleware.RoleFromContext(ctx))
		entries, err := svc.History(ctx, projectID, userID, role)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"history": entries})
	}
}

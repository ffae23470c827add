package projects

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MsgCampaignRequiresApproval is surfaced verbatim when a creator tries to
// start a campaign on an unpublished project.
const MsgCampaignRequiresApproval = "El proyecto debe estar aprobado antes de iniciar la campaña"

const minDecisionReasonLen = 10

// campaignTransitions is the full campaign state machine. Absent edges are
// rejected; finished is terminal.
var campaignTransitions = map[enums.CampaignStatus][]enums.CampaignStatus{
	enums.CampaignStatusNotStarted: {enums.CampaignStatusActive},
	enums.CampaignStatusActive:     {enums.CampaignStatusPaused, enums.CampaignStatusFinished},
	enums.CampaignStatusPaused:     {enums.CampaignStatusActive},
	enums.CampaignStatusFinished:   {},
}

// Service defines project lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateProjectInput) (*ProjectDetail, error)
	SubmitForApproval(ctx context.Context, projectID, actorUserID uuid.UUID) error
	Decide(ctx context.Context, input ApprovalDecisionInput) error
	Resubmit(ctx context.Context, projectID, actorUserID uuid.UUID) error
	TransitionCampaign(ctx context.Context, input CampaignTransitionInput) error
	GetByID(ctx context.Context, id uuid.UUID) (*ProjectDetail, error)
	GetBySlug(ctx context.Context, slug string) (*ProjectDetail, error)
	ListPublished(ctx context.Context, params pagination.Params, filters ListFilters) (*ProjectList, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, params pagination.Params) (*ProjectList, error)
	History(ctx context.Context, projectID, actorUserID uuid.UUID, actorRole enums.MemberRole) ([]HistoryEntry, error)
}

// ServiceParams collects the dependencies of the project service.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Documents DocumentStore
	Logger    *logger.Logger
}

type service struct {
	repo Repository
	tx   txRunner
	docs DocumentStore
	log  *logger.Logger
}

// NewService builds a project service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("projects repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Documents == nil {
		return nil, fmt.Errorf("document store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo: params.Repo,
		tx:   params.Tx,
		docs: params.Documents,
		log:  params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateProjectInput) (*ProjectDetail, error) {
	if input.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "el título es requerido")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "la descripción es requerida")
	}
	if !input.FinancialGoal.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "la meta financiera debe ser mayor a 0")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "la categoría es requerida")
	}
	if !input.EndDate.After(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "la fecha de fin debe ser futura")
	}

	project := &models.Project{
		CreatorID:       input.CreatorID,
		Title:           title,
		Slug:            buildSlug(title),
		Description:     strings.TrimSpace(input.Description),
		FinancialGoal:   input.FinancialGoal,
		CategoryID:      input.CategoryID,
		Location:        input.Location,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		ApprovalStatus:  enums.ApprovalStatusDraft,
		CampaignStatus:  enums.CampaignStatusNotStarted,
		ProofDocumentID: input.ProofDocumentID,
	}

	created, err := s.repo.Create(ctx, project)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
	}

	// Best effort: the project row already references the document, so a
	// failed retention flip is logged, not surfaced to the creator.
	if created.ProofDocumentID != nil {
		if err := s.docs.MarkPermanent(ctx, *created.ProofDocumentID); err != nil {
			logCtx := s.log.WithFields(ctx, map[string]any{
				"project_id":  created.ID.String(),
				"document_id": created.ProofDocumentID.String(),
			})
			s.log.Error(logCtx, "mark proof document permanent", err)
		}
	}
	return toDetail(created, decimal.Zero), nil
}

// SubmitForApproval moves a draft into the moderation queue.
func (s *service) SubmitForApproval(ctx context.Context, projectID, actorUserID uuid.UUID) error {
	return s.approvalTransition(ctx, projectID, actorUserID, enums.ApprovalStatusDraft, enums.ApprovalStatusInReview, nil, true)
}

// Resubmit returns an observed project to the moderation queue after the
// creator addressed the observations. Rejected projects stay rejected.
func (s *service) Resubmit(ctx context.Context, projectID, actorUserID uuid.UUID) error {
	return s.approvalTransition(ctx, projectID, actorUserID, enums.ApprovalStatusObserved, enums.ApprovalStatusInReview, nil, true)
}

func (s *service) Decide(ctx context.Context, input ApprovalDecisionInput) error {
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.MemberRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "solo un administrador puede resolver la revisión")
	}
	switch input.Decision {
	case enums.ApprovalStatusPublished:
	case enums.ApprovalStatusObserved, enums.ApprovalStatusRejected:
		if input.Reason == nil || len(strings.TrimSpace(*input.Reason)) < minDecisionReasonLen {
			return pkgerrors.New(pkgerrors.CodeValidation, "la razón es requerida y debe tener al menos 10 caracteres")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("decisión inválida %q", input.Decision))
	}
	return s.approvalTransition(ctx, input.ProjectID, input.ActorUserID, enums.ApprovalStatusInReview, input.Decision, input.Reason, false)
}

// approvalTransition performs a single moderation edge atomically with its
// history row. ownerOnly enforces that the actor is the project creator;
// Decide has already enforced the admin role when it is false.
func (s *service) approvalTransition(ctx context.Context, projectID, actorUserID uuid.UUID, from, to enums.ApprovalStatus, reason *string, ownerOnly bool) error {
	if projectID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if actorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		project, err := repo.FindByIDForUpdate(ctx, projectID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "proyecto no encontrado")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}
		if ownerOnly && project.CreatorID != actorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "no tienes permiso para modificar este proyecto")
		}
		if project.ApprovalStatus != from {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("no se puede pasar el estado de aprobación de %s a %s", project.ApprovalStatus, to))
		}

		if err := repo.UpdateStatusFields(ctx, project.ID, map[string]any{"approval_status": to}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update approval status")
		}
		entry := &models.ProjectStatusHistory{
			ProjectID: project.ID,
			OldStatus: from.String(),
			NewStatus: to.String(),
			ChangedBy: actorUserID,
			Reason:    reason,
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}
		return nil
	})
}

func (s *service) TransitionCampaign(ctx context.Context, input CampaignTransitionInput) error {
	if input.ProjectID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("estado de campaña inválido %q", input.Target))
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		project, err := repo.FindByIDForUpdate(ctx, input.ProjectID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "proyecto no encontrado")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}
		if project.CreatorID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "no tienes permiso para modificar este proyecto")
		}
		if !campaignEdgeAllowed(project.CampaignStatus, input.Target) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("no se puede cambiar el estado de la campaña de %s a %s", project.CampaignStatus, input.Target))
		}
		// Starting a campaign is gated on moderation.
		if project.CampaignStatus == enums.CampaignStatusNotStarted &&
			input.Target == enums.CampaignStatusActive &&
			project.ApprovalStatus != enums.ApprovalStatusPublished {
			return pkgerrors.New(pkgerrors.CodePreconditionFailed, MsgCampaignRequiresApproval)
		}

		if err := repo.UpdateStatusFields(ctx, project.ID, map[string]any{"campaign_status": input.Target}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update campaign status")
		}
		entry := &models.ProjectStatusHistory{
			ProjectID: project.ID,
			OldStatus: project.CampaignStatus.String(),
			NewStatus: input.Target.String(),
			ChangedBy: input.ActorUserID,
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}
		return nil
	})
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ProjectDetail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proyecto no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return s.withRaised(ctx, project)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProjectDetail, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}
	project, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proyecto no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return s.withRaised(ctx, project)
}

func (s *service) withRaised(ctx context.Context, project *models.Project) (*ProjectDetail, error) {
	raised, err := s.repo.RaisedAmount(ctx, project.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum raised amount")
	}
	return toDetail(project, raised), nil
}

func (s *service) ListPublished(ctx context.Context, params pagination.Params, filters ListFilters) (*ProjectList, error) {
	list, err := s.repo.ListPublished(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list published projects")
	}
	return list, nil
}

func (s *service) ListByCreator(ctx context.Context, creatorID uuid.UUID, params pagination.Params) (*ProjectList, error) {
	if creatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByCreator(ctx, creatorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list creator projects")
	}
	return list, nil
}

func (s *service) History(ctx context.Context, projectID, actorUserID uuid.UUID, actorRole enums.MemberRole) ([]HistoryEntry, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proyecto no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	if project.CreatorID != actorUserID && actorRole != enums.MemberRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no tienes permiso para ver el historial de este proyecto")
	}

	rows, err := s.repo.ListHistory(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list status history")
	}
	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, HistoryEntry{
			ID:         row.ID,
			OldStatus:  row.OldStatus,
			NewStatus:  row.NewStatus,
			ChangedBy:  row.ChangedBy,
			Reason:     row.Reason,
			ChangeDate: row.ChangeDate,
		})
	}
	return entries, nil
}

func campaignEdgeAllowed(from, to enums.CampaignStatus) bool {
	for _, candidate := range campaignTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func toDetail(project *models.Project, raised decimal.Decimal) *ProjectDetail {
	detail := &ProjectDetail{
		ID:              project.ID,
		Title:           project.Title,
		Slug:            project.Slug,
		Description:     project.Description,
		FinancialGoal:   project.FinancialGoal,
		RaisedAmount:    raised,
		Location:        project.Location,
		StartDate:       project.StartDate,
		EndDate:         project.EndDate,
		ApprovalStatus:  project.ApprovalStatus,
		CampaignStatus:  project.CampaignStatus,
		ProofDocumentID: project.ProofDocumentID,
		CreatedAt:       project.CreatedAt,
	}
	if project.Category != nil {
		detail.Category = &CategorySummary{ID: project.Category.ID, Name: project.Category.Name}
	}
	if project.Creator != nil {
		detail.Creator = &CreatorSummary{ID: project.Creator.ID, FullName: project.Creator.FullName()}
	}
	return detail
}

// buildSlug lowercases the title, strips accents common in Spanish titles and
// appends a short random suffix so slugs stay unique without a retry loop.
func buildSlug(title string) string {
	replacer := strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", "ü", "u",
	)
	normalized := replacer.Replace(strings.ToLower(title))

	var b strings.Builder
	lastDash := true
	for _, r := range normalized {
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "proyecto"
	}
	return slug + "-" + uuid.NewString()[:8]
}

// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/freightdeck/campaign-engine/app/dto"
	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/freightdeck/campaign-engine/utils"
	"gorm.io/gorm"
)

// CampaignDispatcher starts the delivery pipeline for one campaign. Dispatch
// commits the sending transition before returning; recipient fan-out continues
// in the background. started is false when a concurrent actor won the
// transition first.
type CampaignDispatcher interface {
	Dispatch(ctx context.Context, campaign *models.Campaign, from []models.CampaignStatus) (started bool, err error)
}

// CampaignFlow handles the campaign lifecycle business logic
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error)
	UpdateCampaign(ctx context.Context, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.UpdateCampaignResponse, error)
	ScheduleCampaign(ctx context.Context, req *dto.ScheduleCampaignRequest, metadata *ClientMetadata) (*dto.ScheduleCampaignResponse, error)
	SendCampaignNow(ctx context.Context, req *dto.SendCampaignNowRequest, metadata *ClientMetadata) (*dto.SendCampaignNowResponse, error)
	CancelCampaign(ctx context.Context, req *dto.CancelCampaignRequest, metadata *ClientMetadata) (*dto.CancelCampaignResponse, error)
	DeleteCampaign(ctx context.Context, req *dto.DeleteCampaignRequest, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error)
	PreviewAudience(ctx context.Context, req *dto.PreviewAudienceRequest, metadata *ClientMetadata) (*dto.PreviewAudienceResponse, error)
	GetCampaign(ctx context.Context, req *dto.GetCampaignRequest, metadata *ClientMetadata) (*dto.GetCampaignResponse, error)
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo repository.CampaignRepository
	operatorRepo repository.OperatorRepository
	companyRepo  repository.CompanyRepository
	auditRepo    repository.AuditLogRepository
	resolver     AudienceResolver
	dispatcher   CampaignDispatcher
	clock        utils.Clock
	db           *gorm.DB
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	operatorRepo repository.OperatorRepository,
	companyRepo repository.CompanyRepository,
	auditRepo repository.AuditLogRepository,
	resolver AudienceResolver,
	dispatcher CampaignDispatcher,
	clock utils.Clock,
	db *gorm.DB,
) CampaignFlow {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &CampaignFlowImpl{
		campaignRepo: campaignRepo,
		operatorRepo: operatorRepo,
		companyRepo:  companyRepo,
		auditRepo:    auditRepo,
		resolver:     resolver,
		dispatcher:   dispatcher,
		clock:        clock,
		db:           db,
	}
}

// CreateCampaign handles the complete campaign creation process. New campaigns
// always start in draft; a scheduled time supplied at creation is stored but
// does not arm the campaign until an explicit schedule call.
func (s *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error) {
	operator, err := getOperator(ctx, s.operatorRepo, req.OperatorID)
	if err != nil {
		return nil, err
	}

	audienceType := models.AudienceType(req.AudienceType)
	channel := models.Channel(req.Channel)

	if err := ValidateCampaignCore(req.Name, operator.Scope, operator.CompanyID, audienceType, channel); err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}

	content, err := ContentFromDTO(channel, req.Content)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}

	if req.ScheduledAt != nil && !req.ScheduledAt.After(s.clock.Now()) {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed",
			NewValidationError(map[string]string{"scheduled_at": ErrScheduleTimeInPast.Error()}))
	}

	campaign := &models.Campaign{
		Name:         req.Name,
		OwnerScope:   operator.Scope,
		CompanyID:    operator.CompanyID,
		AudienceType: audienceType,
		Channel:      channel,
		Content:      content,
		Status:       models.CampaignStatusDraft,
		ScheduledAt:  utils.TimeToUTCPtr(req.ScheduledAt),
		CreatedAt:    s.clock.Now(),
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.campaignRepo.Save(txCtx, campaign)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Campaign creation failed: %s", err.Error())
		_ = s.createAuditLog(ctx, operator, nil, models.AuditActionCampaignCreationFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Campaign creation failed", err)
	}

	msg := fmt.Sprintf("Campaign created successfully: %s", campaign.UUID.String())
	_ = s.createAuditLog(ctx, operator, &campaign.ID, models.AuditActionCampaignCreated, msg, true, nil, metadata)

	return &dto.CreateCampaignResponse{
		Message:   "Campaign created successfully",
		ID:        campaign.ID,
		UUID:      campaign.UUID.String(),
		Status:    string(campaign.Status),
		CreatedAt: campaign.CreatedAt.Format(time.RFC3339),
	}, nil
}

// UpdateCampaign handles the campaign update process. Only draft campaigns
// accept modifications.
func (s *CampaignFlowImpl) UpdateCampaign(ctx context.Context, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.UpdateCampaignResponse, error) {
	operator, campaign, err := s.accessibleCampaign(ctx, req.OperatorID, req.UUID)
	if err != nil {
		return nil, err
	}

	if req.Name == nil && req.AudienceType == nil && req.Channel == nil && req.Content == nil && req.ScheduledAt == nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_VALIDATION_FAILED", "Campaign update validation failed", ErrCampaignUpdateRequired)
	}

	if !campaign.IsEditable() {
		return nil, NewBusinessError("CAMPAIGN_NOT_EDITABLE", "Campaign is not editable",
			NewConflictError(fmt.Sprintf("campaign in status %s does not accept updates", campaign.Status)))
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.AudienceType != nil {
		// Company campaigns are locked to their audience type; only the
		// platform may retarget a draft.
		if campaign.OwnerScope == models.OwnerScopeCompany && models.AudienceType(*req.AudienceType) != campaign.AudienceType {
			return nil, NewBusinessError("CAMPAIGN_UPDATE_VALIDATION_FAILED", "Campaign update validation failed",
				NewValidationError(map[string]string{"audience_type": "audience type is immutable for company campaigns"}))
		}
		campaign.AudienceType = models.AudienceType(*req.AudienceType)
	}
	if req.Channel != nil {
		campaign.Channel = models.Channel(*req.Channel)
	}
	if req.ScheduledAt != nil {
		if !req.ScheduledAt.After(s.clock.Now()) {
			return nil, NewBusinessError("CAMPAIGN_UPDATE_VALIDATION_FAILED", "Campaign update validation failed",
				NewValidationError(map[string]string{"scheduled_at": ErrScheduleTimeInPast.Error()}))
		}
		campaign.ScheduledAt = utils.TimeToUTCPtr(req.ScheduledAt)
	}

	if err := ValidateCampaignCore(campaign.Name, campaign.OwnerScope, campaign.CompanyID, campaign.AudienceType, campaign.Channel); err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_VALIDATION_FAILED", "Campaign update validation failed", err)
	}

	// A channel change invalidates content of the old shape, so content must
	// either arrive with the request or already match the new channel.
	if req.Content != nil {
		content, err := ContentFromDTO(campaign.Channel, req.Content)
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_UPDATE_VALIDATION_FAILED", "Campaign update validation failed", err)
		}
		campaign.Content = content
	} else if req.Channel != nil && !campaign.Content.MatchesChannel(campaign.Channel) {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_VALIDATION_FAILED", "Campaign update validation failed",
			NewValidationError(map[string]string{"content": ErrContentChannelMismatch.Error()}))
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.campaignRepo.Update(txCtx, *campaign)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Campaign update failed: %s", err.Error())
		_ = s.createAuditLog(ctx, operator, &campaign.ID, models.AuditActionCampaignUpdateFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Campaign update failed", err)
	}

	msg := fmt.Sprintf("Campaign updated successfully: %s", campaign.UUID.String())
	_ = s.createAuditLog(ctx, operator, &campaign.ID, models.AuditActionCampaignUpdated, msg, true, nil, metadata)

	return &dto.UpdateCampaignResponse{
		Message:  "Campaign updated successfully",
		Campaign: ToCampaignDTO(campaign),
	}, nil
}

// ScheduleCampaign arms a draft campaign for the scheduler sweep. A campaign
// that is already scheduled may be rescheduled to a new time.
func (s *CampaignFlowImpl) ScheduleCampaign(ctx context.Context, req *dto.ScheduleCampaignRequest, metadata *ClientMetadata) (*dto.ScheduleCampaignResponse, error) {
	operator, campaign, err := s.accessibleCampaign(ctx, req.OperatorID, req.UUID)
	if err != nil {
		return nil, err
	}

	if !req.ScheduledAt.After(s.clock.Now()) {
		return nil, NewBusinessError("CAMPAIGN_SCHEDULE_VALIDATION_FAILED", "Campaign schedule validation failed",
			NewValidationError(map[string]string{"scheduled_at": ErrScheduleTimeInPast.Error()}))
	}

	if campaign.Status != models.CampaignStatusDraft && campaign.Status != models.CampaignStatusScheduled {
		return nil, NewBusinessError("CAMPAIGN_NOT_SCHEDULABLE", "Campaign cannot be scheduled",
			NewInvalidTransitionError(campaign.Status, models.CampaignStatusScheduled))
	}

	if err := ValidateStoredContent(campaign.Channel, campaign.Content); err != nil {
		return nil, NewBusinessError("CAMPAIGN_SCHEDULE_VALIDATION_FAILED", "Campaign schedule validation failed", err)
	}

	scheduledAt := utils.TimeToUTC(req.ScheduledAt)
	won, err := s.campaignRepo.UpdateStatusFrom(ctx, campaign.ID,
		[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusScheduled},
		models.CampaignStatusScheduled,
		map[string]any{"scheduled_at": scheduledAt, "updated_at": s.clock.Now()})
	if err != nil {
		errMsg := fmt.Sprintf("Campaign schedule failed: %s", err.Error())
		_ = s.createAuditLog(ctx, operator, &campaign.ID, models.AuditActionCampaignScheduleFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CAMPAIGN_SCHEDULE_FAILED", "Campaign schedule failed", err)
	}
	if !won {
		return nil, NewBusinessError("CAMPAIGN_SCHEDULE_CONFLICT", "Campaign schedule conflict",
			NewInvalidTransitionError(s.lostRaceStatus(ctx, campaign), models.CampaignStatusScheduled))
	}

	msg := fmt.Sprintf("Campaign scheduled for %s: %s", scheduledAt.Format(time.RFC3339), campaign.UUID.String())
	_ = s.createAuditLog(ctx, operator, &campaign.ID, models.AuditActionCampaignScheduled, msg, true, nil, metadata)

	return &dto.ScheduleCampaignResponse{
		Message:     "Campaign scheduled successfully",
		Status:      string(models.CampaignStatusScheduled),
		ScheduledAt: scheduledAt.Format(time.RFC3339),
	}, nil
}

// SendCampaignNow kicks the dispatcher for an immediate send. The sending
// transition is committed before this returns; recipient delivery continues
// in the background and exactly one dispatcher wins the transition.
func (s *CampaignFlowImpl) SendCampaignNow(ctx context.Context, req *dto.SendCampaignNowRequest, metadata *ClientMetadata) (*dto.SendCampaignNowResponse, error) {
	operator, campaign, err := s.accessibleCampaign(ctx, req.OperatorID, req.UUID)
	if err != nil {
		return nil, err
	}

	if campaign.Status != models.CampaignStatusDraft && campaign.Status != models.CampaignStatusScheduled {
		return nil, NewBusinessError("CAMPAIGN_NOT_SENDABLE", "Campaign cannot be sent",
			NewInvalidTransitionError(campaign.Status, models.CampaignStatusSending))
	}

	if err := ValidateStoredContent(campaign.Channel, campaign.Content); err != nil {
		return nil, NewBusinessError("CAMPAIGN_SEND_VALIDATION_FAILED", "Campaign send validation failed", err)
	}

	started, err := s.dispatcher.Dispatch(ctx, campaign,
		[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusScheduled})
	if err != nil {
		errMsg := fmt.Sprintf("Campaign send request failed: %s", err.Error())
		_ = s.createAuditLog(ctx, operator, &campaign.ID, models.AuditActionCampaignSendFailed, errMsg, false, &errMsg, metadata)

		if IsCapExceeded(err) {
			return nil, NewBusinessError("CAMPAIGN_CAP_EXCEEDED", "Campaign audience exceeds the recipient cap", err)
		}
		return nil, NewBusinessError("CAMPAIGN_SEND_FAILED", "Campaign send request failed", err)
	}
	if !started {
		return nil, NewBusinessError("CAMPAIGN_SEND_CONFLICT", "Campaign send conflict",
			NewInvalidTransitionError(s.lostRaceStatus(ctx, campaign), models.CampaignStatusSending))
	}

	msg := fmt.Sprintf("Campaign send requested: %s", campaign.UUID.String())
	_ = s.createAuditLog(ctx, operator, &campaign.ID, models.AuditActionCampaignSendRequested, msg, true, nil, metadata)

	return &dto.SendCampaignNowResponse{
		Message: "Campaign dispatch started",
		Status:  string(models.CampaignStatusSending),
	}, nil
}

// CancelCampaign cancels a draft or scheduled campaign. Once dispatch has
// started the campaign can no longer be cancelled.
func (s *CampaignFlowImpl) CancelCampaign(ctx context.Context, req *dto.CancelCampaignRequest, metadata *ClientMetadata) (*dto.CancelCampaignResponse, error) {
	operator, campaign, err := s.accessibleCampaign(ctx, req.OperatorID, req.UUID)
	if err != nil {
		return nil, err
	}

	if !campaign.IsCancelable() {
		return nil, NewBusinessError("CAMPAIGN_NOT_CANCELABLE", "Campaign cannot be cancelled",
			NewInvalidTransitionError(campaign.Status, models.CampaignStatusCancelled))
	}

	won, err := s.campaignRepo.UpdateStatusFrom(ctx, campaign.ID,
		[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusScheduled},
		models.CampaignStatusCancelled,
		map[string]any{"updated_at": s.clock.Now()})
	if err != nil {
		errMsg := fmt.Sprintf("Campaign cancel failed: %s", err.Error())
		_ = s.createAuditLog(ctx, operator, &campaign.ID, models.AuditActionCampaignCancelFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CAMPAIGN_CANCEL_FAILED", "Campaign cancel failed", err)
	}
	if !won {
		return nil, NewBusinessError("CAMPAIGN_CANCEL_CONFLICT", "Campaign cancel conflict",
			NewInvalidTransitionError(s.lostRaceStatus(ctx, campaign), models.CampaignStatusCancelled))
	}

	msg := fmt.Sprintf("Campaign cancelled: %s", campaign.UUID.String())
	_ = s.createAuditLog(ctx, operator, &campaign.ID, models.AuditActionCampaignCancelled, msg, true, nil, metadata)

	return &dto.CancelCampaignResponse{
		Message: "Campaign cancelled successfully",
		Status:  string(models.CampaignStatusCancelled),
	}, nil
}

// DeleteCampaign removes a campaign that never reached dispatch. The deletable
// check is repeated inside the transaction so a concurrent dispatch cannot be
// orphaned.
func (s *CampaignFlowImpl) DeleteCampaign(ctx context.Context, req *dto.DeleteCampaignRequest, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error) {
	operator, campaign, err := s.accessibleCampaign(ctx, req.OperatorID, req.UUID)
	if err != nil {
		return nil, err
	}

	if !campaign.IsDeletable() {
		return nil, NewBusinessError("CAMPAIGN_NOT_DELETABLE", "Campaign cannot be deleted",
			NewConflictError(fmt.Sprintf("campaign in status %s preserves its delivery history", campaign.Status)))
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		fresh, err := s.campaignRepo.ByID(txCtx, campaign.ID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return ErrCampaignNotFound
		}
		if !fresh.IsDeletable() {
			return NewConflictError("campaign left the deletable statuses concurrently")
		}
		return s.campaignRepo.Delete(txCtx, campaign.ID)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Campaign delete failed: %s", err.Error())
		_ = s.createAuditLog(ctx, operator, &campaign.ID, models.AuditActionCampaignDeleteFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CAMPAIGN_DELETE_FAILED", "Campaign delete failed", err)
	}

	msg := fmt.Sprintf("Campaign deleted: %s", campaign.UUID.String())
	_ = s.createAuditLog(ctx, operator, nil, models.AuditActionCampaignDeleted, msg, true, nil, metadata)

	return &dto.DeleteCampaignResponse{
		Message: "Campaign deleted successfully",
	}, nil
}

// PreviewAudience reports the current audience size against the scope cap
// without mutating the campaign.
func (s *CampaignFlowImpl) PreviewAudience(ctx context.Context, req *dto.PreviewAudienceRequest, metadata *ClientMetadata) (*dto.PreviewAudienceResponse, error) {
	_, campaign, err := s.accessibleCampaign(ctx, req.OperatorID, req.UUID)
	if err != nil {
		return nil, err
	}

	count, cached, err := s.resolver.PreviewCount(ctx, campaign)
	if err != nil {
		return nil, NewBusinessError("AUDIENCE_PREVIEW_FAILED", "Audience preview failed", err)
	}

	cap := campaign.OwnerScope.RecipientCap()

	return &dto.PreviewAudienceResponse{
		TotalRecipients: count,
		RecipientCap:    cap,
		OverCap:         count > cap,
		Cached:          cached,
	}, nil
}

// GetCampaign returns a single campaign visible to the operator
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, req *dto.GetCampaignRequest, metadata *ClientMetadata) (*dto.GetCampaignResponse, error) {
	_, campaign, err := s.accessibleCampaign(ctx, req.OperatorID, req.UUID)
	if err != nil {
		return nil, err
	}

	return &dto.GetCampaignResponse{Campaign: ToCampaignDTO(campaign)}, nil
}

// ListCampaigns returns the operator's visible campaigns, newest first.
// Platform operators see every campaign; company operators see only their own.
func (s *CampaignFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error) {
	operator, err := getOperator(ctx, s.operatorRepo, req.OperatorID)
	if err != nil {
		return nil, err
	}

	if req.Page < 1 {
		return nil, NewBusinessError("CAMPAIGN_LIST_VALIDATION_FAILED", "Campaign list validation failed", ErrInvalidPage)
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		return nil, NewBusinessError("CAMPAIGN_LIST_VALIDATION_FAILED", "Campaign list validation failed", ErrInvalidPageSize)
	}

	filter := models.CampaignFilter{}
	if operator.IsCompany() {
		filter.CompanyID = operator.CompanyID
		scope := models.OwnerScopeCompany
		filter.OwnerScope = &scope
	}
	if req.Status != nil {
		status := models.CampaignStatus(*req.Status)
		if !status.Valid() {
			return nil, NewBusinessError("CAMPAIGN_LIST_VALIDATION_FAILED", "Campaign list validation failed",
				NewValidationError(map[string]string{"status": "unknown status"}))
		}
		filter.Status = &status
	}
	if req.Channel != nil {
		channel := models.Channel(*req.Channel)
		if !channel.Valid() {
			return nil, NewBusinessError("CAMPAIGN_LIST_VALIDATION_FAILED", "Campaign list validation failed",
				NewValidationError(map[string]string{"channel": "unknown channel"}))
		}
		filter.Channel = &channel
	}

	orderBy := req.OrderBy
	if orderBy == "" {
		orderBy = "created_at DESC"
	}

	total, err := s.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Campaign list failed", err)
	}

	offset := (req.Page - 1) * req.PageSize
	campaigns, err := s.campaignRepo.ByFilter(ctx, filter, orderBy, req.PageSize, offset)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Campaign list failed", err)
	}

	items := make([]dto.CampaignDTO, 0, len(campaigns))
	for _, campaign := range campaigns {
		items = append(items, ToCampaignDTO(campaign))
	}

	return &dto.ListCampaignsResponse{
		Items: items,
		Pagination: dto.PaginationDTO{
			Page:       req.Page,
			PageSize:   req.PageSize,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(req.PageSize))),
		},
	}, nil
}

// accessibleCampaign loads the operator and the campaign and enforces the
// visibility rule in one place.
func (s *CampaignFlowImpl) accessibleCampaign(ctx context.Context, operatorID uint, campaignUUID string) (*models.Operator, *models.Campaign, error) {
	operator, err := getOperator(ctx, s.operatorRepo, operatorID)
	if err != nil {
		return nil, nil, err
	}

	if campaignUUID == "" {
		return nil, nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrCampaignUUIDRequired)
	}

	campaign, err := s.campaignRepo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return nil, nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	if !operatorCanAccess(operator, campaign) {
		return nil, nil, NewBusinessError("CAMPAIGN_ACCESS_DENIED", "Campaign access denied", ErrCampaignAccessDenied)
	}

	return operator, campaign, nil
}

// lostRaceStatus re-reads a campaign after a lost conditional update so the
// resulting transition error names the status that actually won the race.
func (s *CampaignFlowImpl) lostRaceStatus(ctx context.Context, campaign *models.Campaign) models.CampaignStatus {
	fresh, err := s.campaignRepo.ByUUID(ctx, campaign.UUID.String())
	if err != nil || fresh == nil {
		return campaign.Status
	}
	return fresh.Status
}

func operatorCanAccess(operator *models.Operator, campaign *models.Campaign) bool {
	if operator.IsPlatform() {
		return true
	}
	if campaign.OwnerScope != models.OwnerScopeCompany {
		return false
	}
	return operator.CompanyID != nil && campaign.CompanyID != nil && *operator.CompanyID == *campaign.CompanyID
}

// getOperator loads an active operator or returns the matching business error
func getOperator(ctx context.Context, repo repository.OperatorRepository, operatorID uint) (*models.Operator, error) {
	operator, err := repo.ByID(ctx, operatorID)
	if err != nil {
		return nil, NewBusinessError("OPERATOR_LOOKUP_FAILED", "Failed to lookup operator", err)
	}
	if operator == nil {
		return nil, NewBusinessError("OPERATOR_NOT_FOUND", "Operator not found", ErrOperatorNotFound)
	}
	if !utils.IsTrue(operator.IsActive) {
		return nil, NewBusinessError("OPERATOR_INACTIVE", "Operator is inactive", ErrOperatorInactive)
	}

	return operator, nil
}

// createAuditLog creates an audit log entry for the campaign operation
func (s *CampaignFlowImpl) createAuditLog(ctx context.Context, operator *models.Operator, campaignID *uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var operatorID *uint
	if operator != nil {
		operatorID = &operator.ID
	}

	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		OperatorID:   operatorID,
		CampaignID:   campaignID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return s.auditRepo.Save(ctx, audit)
}

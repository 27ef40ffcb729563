// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/freightdeck/campaign-engine/app/dto"
	businessflow "github.com/freightdeck/campaign-engine/business_flow"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CampaignHandlerInterface defines the contract for campaign handlers
type CampaignHandlerInterface interface {
	CreateCampaign(c fiber.Ctx) error
	UpdateCampaign(c fiber.Ctx) error
	ScheduleCampaign(c fiber.Ctx) error
	SendCampaignNow(c fiber.Ctx) error
	CancelCampaign(c fiber.Ctx) error
	DeleteCampaign(c fiber.Ctx) error
	PreviewAudience(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
	ListCampaigns(c fiber.Ctx) error
}

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignFlow businessflow.CampaignFlow
	validator    *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignFlow businessflow.CampaignFlow) *CampaignHandler {
	return &CampaignHandler{
		campaignFlow: campaignFlow,
		validator:    validator.New(),
	}
}

func (h *CampaignHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CampaignHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// businessErrorResponse maps campaign business errors to HTTP responses.
// Unrecognized errors fall back to a 500 with the given message and code.
func (h *CampaignHandler) businessErrorResponse(c fiber.Ctx, err error, fallbackMsg, fallbackCode string) error {
	if businessflow.IsOperatorNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator not found", "OPERATOR_NOT_FOUND", nil)
	}
	if businessflow.IsOperatorInactive(err) {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator account is inactive", "OPERATOR_INACTIVE", nil)
	}
	if businessflow.IsCampaignNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
	}
	if businessflow.IsCampaignAccessDenied(err) {
		return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: campaign belongs to another scope", "CAMPAIGN_ACCESS_DENIED", nil)
	}

	var ve *businessflow.ValidationError
	if errors.As(err, &ve) {
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Validation failed", "VALIDATION_ERROR", ve.Fields)
	}

	var te *businessflow.InvalidTransitionError
	if errors.As(err, &te) {
		return h.ErrorResponse(c, fiber.StatusConflict, te.Error(), "INVALID_TRANSITION", fiber.Map{
			"from": string(te.From),
			"to":   string(te.To),
		})
	}

	var ce *businessflow.CapExceededError
	if errors.As(err, &ce) {
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Recipient count exceeds tier limit", "CAP_EXCEEDED", fiber.Map{
			"total_recipients": ce.Count,
			"recipient_cap":    ce.Cap,
		})
	}

	if businessflow.IsConflict(err) {
		var conflict *businessflow.ConflictError
		msg := "Campaign state changed concurrently"
		if errors.As(err, &conflict) {
			msg = conflict.Message
		}
		return h.ErrorResponse(c, fiber.StatusConflict, msg, "CONFLICT", nil)
	}

	log.Println(fallbackMsg, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMsg, fallbackCode, nil)
}

// operatorID extracts the authenticated operator ID set by the auth middleware
func (h *CampaignHandler) operatorID(c fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("operator_id").(uint)
	return id, ok
}

// CreateCampaign handles the campaign creation process
// @Summary Create Campaign
// @Description Create a new draft campaign with the specified parameters
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param request body dto.CreateCampaignRequest true "Campaign creation data"
// @Success 201 {object} dto.APIResponse{data=dto.CreateCampaignResponse} "Campaign created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized - operator not found or inactive"
// @Failure 422 {object} dto.APIResponse "Business validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	operatorID, ok := h.operatorID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}
	req.OperatorID = operatorID

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.CreateCampaign(h.createRequestContext(c, "/api/v1/campaigns"), &req, metadata)
	if err != nil {
		return h.businessErrorResponse(c, err, "Campaign creation failed", "CAMPAIGN_CREATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Campaign created successfully", fiber.Map{
		"message":    result.Message,
		"uuid":       result.UUID,
		"status":     result.Status,
		"created_at": result.CreatedAt,
	})
}

// UpdateCampaign handles the campaign update process
// @Summary Update Campaign
// @Description Update an existing draft campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.UpdateCampaignRequest true "Campaign update data"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateCampaignResponse} "Campaign updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized - operator not found or inactive"
// @Failure 403 {object} dto.APIResponse "Forbidden - campaign access denied"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Campaign is not in draft status"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid} [put]
func (h *CampaignHandler) UpdateCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	var req dto.UpdateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = campaignUUID

	operatorID, ok := h.operatorID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}
	req.OperatorID = operatorID

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.UpdateCampaign(h.createRequestContext(c, "/api/v1/campaigns/"+campaignUUID), &req, metadata)
	if err != nil {
		return h.businessErrorResponse(c, err, "Campaign update failed", "CAMPAIGN_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign updated successfully", fiber.Map{
		"message":  result.Message,
		"campaign": result.Campaign,
	})
}

// ScheduleCampaign handles the campaign scheduling process
// @Summary Schedule Campaign
// @Description Schedule a campaign for a future send time
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.ScheduleCampaignRequest true "Schedule data"
// @Success 200 {object} dto.APIResponse{data=dto.ScheduleCampaignResponse} "Campaign scheduled successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Invalid status transition"
// @Failure 422 {object} dto.APIResponse "Content incomplete for channel"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid}/schedule [post]
func (h *CampaignHandler) ScheduleCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	var req dto.ScheduleCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = campaignUUID

	operatorID, ok := h.operatorID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}
	req.OperatorID = operatorID

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.ScheduleCampaign(h.createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/schedule"), &req, metadata)
	if err != nil {
		return h.businessErrorResponse(c, err, "Campaign scheduling failed", "CAMPAIGN_SCHEDULE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign scheduled successfully", fiber.Map{
		"message":      result.Message,
		"status":       result.Status,
		"scheduled_at": result.ScheduledAt,
	})
}

// SendCampaignNow handles the immediate send process
// @Summary Send Campaign Now
// @Description Start dispatching a campaign immediately, bypassing its schedule
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 202 {object} dto.APIResponse{data=dto.SendCampaignNowResponse} "Campaign dispatch started"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Invalid status transition or concurrent change"
// @Failure 422 {object} dto.APIResponse "Content incomplete or recipient cap exceeded"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid}/send [post]
func (h *CampaignHandler) SendCampaignNow(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	operatorID, ok := h.operatorID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	req := &dto.SendCampaignNowRequest{UUID: campaignUUID, OperatorID: operatorID}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.SendCampaignNow(h.createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/send"), req, metadata)
	if err != nil {
		return h.businessErrorResponse(c, err, "Campaign send failed", "CAMPAIGN_SEND_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusAccepted, "Campaign dispatch started", fiber.Map{
		"message": result.Message,
		"status":  result.Status,
	})
}

// CancelCampaign handles the campaign cancellation process
// @Summary Cancel Campaign
// @Description Cancel a draft or scheduled campaign
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.CancelCampaignResponse} "Campaign cancelled successfully"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Campaign can no longer be cancelled"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid}/cancel [post]
func (h *CampaignHandler) CancelCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	operatorID, ok := h.operatorID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	req := &dto.CancelCampaignRequest{UUID: campaignUUID, OperatorID: operatorID}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.CancelCampaign(h.createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/cancel"), req, metadata)
	if err != nil {
		return h.businessErrorResponse(c, err, "Campaign cancellation failed", "CAMPAIGN_CANCEL_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign cancelled successfully", fiber.Map{
		"message": result.Message,
		"status":  result.Status,
	})
}

// DeleteCampaign handles the campaign deletion process
// @Summary Delete Campaign
// @Description Delete a draft or cancelled campaign
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteCampaignResponse} "Campaign deleted successfully"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Campaign can no longer be deleted"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid} [delete]
func (h *CampaignHandler) DeleteCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	operatorID, ok := h.operatorID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	req := &dto.DeleteCampaignRequest{UUID: campaignUUID, OperatorID: operatorID}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.DeleteCampaign(h.createRequestContext(c, "/api/v1/campaigns/"+campaignUUID), req, metadata)
	if err != nil {
		return h.businessErrorResponse(c, err, "Campaign deletion failed", "CAMPAIGN_DELETE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign deleted successfully", fiber.Map{
		"message": result.Message,
	})
}

// PreviewAudience reports the campaign's current resolved audience size
// @Summary Preview Audience
// @Description Return the current audience count against the owner scope's recipient cap
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.PreviewAudienceResponse} "Audience preview"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid}/preview-audience [get]
func (h *CampaignHandler) PreviewAudience(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	operatorID, ok := h.operatorID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	req := &dto.PreviewAudienceRequest{UUID: campaignUUID, OperatorID: operatorID}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.PreviewAudience(h.createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/preview-audience"), req, metadata)
	if err != nil {
		return h.businessErrorResponse(c, err, "Audience preview failed", "AUDIENCE_PREVIEW_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Audience preview calculated successfully", fiber.Map{
		"total_recipients": result.TotalRecipients,
		"recipient_cap":    result.RecipientCap,
		"over_cap":         result.OverCap,
		"cached":           result.Cached,
	})
}

// GetCampaign returns a single campaign by UUID
// @Summary Get Campaign
// @Description Retrieve a campaign with its content and delivery counters
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetCampaignResponse} "Campaign retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid} [get]
func (h *CampaignHandler) GetCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	operatorID, ok := h.operatorID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	req := &dto.GetCampaignRequest{UUID: campaignUUID, OperatorID: operatorID}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.GetCampaign(h.createRequestContext(c, "/api/v1/campaigns/"+campaignUUID), req, metadata)
	if err != nil {
		return h.businessErrorResponse(c, err, "Failed to get campaign", "GET_CAMPAIGN_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign retrieved successfully", fiber.Map{
		"campaign": result.Campaign,
	})
}

// ListCampaigns returns the operator's visible campaigns with filters and pagination
// @Summary List Campaigns
// @Description Retrieve campaigns visible to the authenticated operator with pagination and filters
// @Tags Campaigns
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page (max 100)" default(10)
// @Param status query string false "Filter by status (draft|scheduled|sending|sent|failed|cancelled)"
// @Param channel query string false "Filter by channel (email|in_app|whatsapp)"
// @Success 200 {object} dto.APIResponse{data=dto.ListCampaignsResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c fiber.Ctx) error {
	page := 1
	if v, err := strconv.Atoi(c.Query("page", "1")); err == nil && v > 0 {
		page = v
	}
	pageSize := 10
	if v, err := strconv.Atoi(c.Query("page_size", "10")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > 100 {
		pageSize = 100
	}

	operatorID, ok := h.operatorID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	req := &dto.ListCampaignsRequest{
		OperatorID: operatorID,
		Page:       page,
		PageSize:   pageSize,
	}
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}
	if channel := c.Query("channel"); channel != "" {
		req.Channel = &channel
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.campaignFlow.ListCampaigns(h.createRequestContext(c, "/api/v1/campaigns"), req, metadata)
	if err != nil {
		return h.businessErrorResponse(c, err, "Failed to list campaigns", "LIST_CAMPAIGNS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", fiber.Map{
		"items":      result.Items,
		"pagination": result.Pagination,
	})
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *CampaignHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel) // Store cancel function for cleanup

	return ctx
}

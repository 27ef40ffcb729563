// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/freightdeck/campaign-engine/app/dto"
	businessflow "github.com/freightdeck/campaign-engine/business_flow"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/gofiber/fiber/v3"
)

// ReportHandlerInterface defines the contract for report handlers
type ReportHandlerInterface interface {
	ExportDeliveryReport(c fiber.Ctx) error
}

// ReportHandler handles campaign report HTTP requests
type ReportHandler struct {
	reportFlow businessflow.ReportFlow
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportFlow businessflow.ReportFlow) *ReportHandler {
	return &ReportHandler{reportFlow: reportFlow}
}

func (h *ReportHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// ExportDeliveryReport streams a campaign delivery report workbook
// @Summary Export Delivery Report
// @Description Download the campaign's delivery report as an xlsx workbook
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param uuid path string true "Campaign UUID"
// @Success 200 {file} binary "Delivery report workbook"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid}/report [get]
func (h *ReportHandler) ExportDeliveryReport(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	operatorID, ok := c.Locals("operator_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator ID not found in context", "MISSING_OPERATOR_ID", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))

	filename, content, err := h.reportFlow.ExportDeliveryReport(ctx, operatorID, campaignUUID)
	if err != nil {
		if businessflow.IsOperatorNotFound(err) || businessflow.IsOperatorInactive(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Operator not found or inactive", "OPERATOR_NOT_FOUND", nil)
		}
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsCampaignAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: campaign belongs to another scope", "CAMPAIGN_ACCESS_DENIED", nil)
		}

		log.Println("Delivery report export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export delivery report", "REPORT_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Status(fiber.StatusOK).Send(content)
}

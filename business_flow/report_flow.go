// Package businessflow contains the core business logic and use cases for campaign lifecycle workflows
package businessflow

import (
	"context"

	"github.com/freightdeck/campaign-engine/app/services"
	"github.com/freightdeck/campaign-engine/repository"
)

// ReportFlow exposes campaign delivery report exports
type ReportFlow interface {
	ExportDeliveryReport(ctx context.Context, operatorID uint, campaignUUID string) (filename string, content []byte, err error)
}

// ReportFlowImpl builds delivery report workbooks for accessible campaigns
type ReportFlowImpl struct {
	campaignRepo  repository.CampaignRepository
	operatorRepo  repository.OperatorRepository
	reportService services.ReportService
}

func NewReportFlow(
	campaignRepo repository.CampaignRepository,
	operatorRepo repository.OperatorRepository,
	reportService services.ReportService,
) ReportFlow {
	return &ReportFlowImpl{
		campaignRepo:  campaignRepo,
		operatorRepo:  operatorRepo,
		reportService: reportService,
	}
}

func (rf *ReportFlowImpl) ExportDeliveryReport(ctx context.Context, operatorID uint, campaignUUID string) (string, []byte, error) {
	operator, err := getOperator(ctx, rf.operatorRepo, operatorID)
	if err != nil {
		return "", nil, err
	}

	if campaignUUID == "" {
		return "", nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrCampaignUUIDRequired)
	}

	campaign, err := rf.campaignRepo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return "", nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return "", nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	if !operatorCanAccess(operator, campaign) {
		return "", nil, NewBusinessError("CAMPAIGN_ACCESS_DENIED", "Campaign access denied", ErrCampaignAccessDenied)
	}

	filename, content, err := rf.reportService.ExportDeliveryReport(ctx, campaign)
	if err != nil {
		return "", nil, NewBusinessError("REPORT_EXPORT_FAILED", "Failed to export delivery report", err)
	}

	return filename, content, nil
}

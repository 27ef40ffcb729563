package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService builds downloadable delivery reports for sent campaigns
type ReportService interface {
	ExportDeliveryReport(ctx context.Context, campaign *models.Campaign) (filename string, content []byte, err error)
}

// ReportServiceImpl implements ReportService using xlsx workbooks
type ReportServiceImpl struct {
	deliveryLogRepo repository.DeliveryLogRepository
}

// NewReportService creates a new report service
func NewReportService(deliveryLogRepo repository.DeliveryLogRepository) ReportService {
	return &ReportServiceImpl{deliveryLogRepo: deliveryLogRepo}
}

// ExportDeliveryReport renders one workbook with a summary sheet and a
// per-recipient delivery sheet for the campaign.
func (s *ReportServiceImpl) ExportDeliveryReport(ctx context.Context, campaign *models.Campaign) (string, []byte, error) {
	logs, err := s.deliveryLogRepo.ListByCampaign(ctx, campaign.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load delivery logs: %w", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	summarySheet := "Summary"
	xl.SetSheetName(xl.GetSheetName(0), summarySheet)

	summaryRows := [][]any{
		{"campaign_uuid", campaign.UUID.String()},
		{"name", campaign.Name},
		{"channel", string(campaign.Channel)},
		{"status", string(campaign.Status)},
		{"total_recipients", campaign.TotalRecipients},
		{"delivered_count", campaign.DeliveredCount},
		{"failed_count", campaign.FailedCount},
	}
	for i, row := range summaryRows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = xl.SetSheetRow(summarySheet, cellRef, &row)
	}

	deliverySheet := "Deliveries"
	if _, err := xl.NewSheet(deliverySheet); err != nil {
		return "", nil, err
	}

	header := []string{"id", "user_id", "channel", "status", "error", "created_at"}
	_ = xl.SetSheetRow(deliverySheet, "A1", &header)

	for ri, entry := range logs {
		errMsg := ""
		if entry.Error != nil {
			errMsg = *entry.Error
		}
		row := []any{
			strconv.FormatUint(uint64(entry.ID), 10),
			strconv.FormatUint(uint64(entry.UserID), 10),
			string(entry.Channel),
			string(entry.Status),
			errMsg,
			entry.CreatedAt.Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(deliverySheet, cellRef, &row)
	}

	var buf bytes.Buffer
	if err := xl.Write(&buf); err != nil {
		return "", nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("delivery_report_%s.xlsx", campaign.UUID.String())
	return filename, buf.Bytes(), nil
}

package businessflow_test

import (
	"context"
	"testing"

	businessflow "github.com/freightdeck/campaign-engine/business_flow"
	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportService struct {
	filename string
	content  []byte
	err      error
}

func (f *fakeReportService) ExportDeliveryReport(ctx context.Context, campaign *models.Campaign) (string, []byte, error) {
	return f.filename, f.content, f.err
}

func newReportFlow(campaigns map[string]*models.Campaign, svc *fakeReportService) businessflow.ReportFlow {
	companyID := uint(10)
	operatorRepo := &fakeOperatorRepo{operators: map[uint]*models.Operator{
		platformOperatorID: {
			ID: platformOperatorID, UUID: uuid.New(),
			Scope: models.OwnerScopePlatform, IsActive: utils.ToPtr(true),
		},
		companyOperatorID: {
			ID: companyOperatorID, UUID: uuid.New(),
			Scope: models.OwnerScopeCompany, CompanyID: &companyID, IsActive: utils.ToPtr(true),
		},
	}}
	campaignRepo := &fakeCampaignRepo{campaigns: campaigns}

	return businessflow.NewReportFlow(campaignRepo, operatorRepo, svc)
}

func TestExportDeliveryReportFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the workbook for an accessible campaign", func(t *testing.T) {
		campaign := companyCampaign(models.CampaignStatusSent)
		flow := newReportFlow(
			map[string]*models.Campaign{campaign.UUID.String(): campaign},
			&fakeReportService{filename: "report.xlsx", content: []byte("workbook")},
		)

		filename, content, err := flow.ExportDeliveryReport(ctx, companyOperatorID, campaign.UUID.String())
		require.NoError(t, err)
		assert.Equal(t, "report.xlsx", filename)
		assert.Equal(t, []byte("workbook"), content)
	})

	t.Run("denies a platform campaign to a company operator", func(t *testing.T) {
		campaign := platformDraft()
		flow := newReportFlow(
			map[string]*models.Campaign{campaign.UUID.String(): campaign},
			&fakeReportService{},
		)

		_, _, err := flow.ExportDeliveryReport(ctx, companyOperatorID, campaign.UUID.String())
		require.Error(t, err)
		assert.True(t, businessflow.IsCampaignAccessDenied(err))
	})

	t.Run("unknown campaign", func(t *testing.T) {
		flow := newReportFlow(map[string]*models.Campaign{}, &fakeReportService{})

		_, _, err := flow.ExportDeliveryReport(ctx, platformOperatorID, uuid.New().String())
		require.Error(t, err)
		assert.True(t, businessflow.IsCampaignNotFound(err))
	})

	t.Run("export failure is wrapped", func(t *testing.T) {
		campaign := platformDraft()
		flow := newReportFlow(
			map[string]*models.Campaign{campaign.UUID.String(): campaign},
			&fakeReportService{err: assert.AnError},
		)

		_, _, err := flow.ExportDeliveryReport(ctx, platformOperatorID, campaign.UUID.String())
		require.Error(t, err)

		var be *businessflow.BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "REPORT_EXPORT_FAILED", be.Code)
	})
}

package businessflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/freightdeck/campaign-engine/app/dto"
	businessflow "github.com/freightdeck/campaign-engine/business_flow"
	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	testingutil "github.com/freightdeck/campaign-engine/testing"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupFlowDBTest wires the flow onto real repositories. Skipped when no
// Postgres server is reachable via TEST_DB_* env vars.
func setupFlowDBTest(t *testing.T) (businessflow.CampaignFlow, *testingutil.TestDB, *testingutil.TestFixtures) {
	t.Helper()

	tdb, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() { _ = tdb.TeardownTestDB() })

	flow := businessflow.NewCampaignFlow(
		repository.NewCampaignRepository(tdb.DB),
		repository.NewOperatorRepository(tdb.DB),
		repository.NewCompanyRepository(tdb.DB),
		repository.NewAuditLogRepository(tdb.DB),
		&fakeResolver{count: 5},
		&fakeDispatcher{started: true},
		utils.SystemClock{},
		tdb.DB,
	)
	return flow, tdb, testingutil.NewTestFixtures(tdb)
}

func TestCreateCampaignPersistsDraft(t *testing.T) {
	flow, tdb, fixtures := setupFlowDBTest(t)
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	operator, err := fixtures.CreateTestOperator(models.OwnerScopePlatform, nil)
	require.NoError(t, err)

	scheduledAt := utils.UTCNow().Add(2 * time.Hour)
	resp, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
		OperatorID:   operator.ID,
		Name:         "Trans-continental spring rates",
		AudienceType: string(models.AudiencePlatformAllUsers),
		Channel:      string(models.ChannelEmail),
		Content: &dto.CampaignContentDTO{Email: &dto.EmailContentDTO{
			Subject:     "Spring rates",
			ContentHTML: "<p>Book now</p>",
		}},
		ScheduledAt: &scheduledAt,
	}, meta)
	require.NoError(t, err)
	assert.Equal(t, string(models.CampaignStatusDraft), resp.Status)

	var saved models.Campaign
	require.NoError(t, tdb.DB.First(&saved, resp.ID).Error)
	assert.Equal(t, models.CampaignStatusDraft, saved.Status)
	assert.Equal(t, "Trans-continental spring rates", saved.Name)
	// A schedule time at creation is stored but does not arm the campaign.
	require.NotNil(t, saved.ScheduledAt)

	// The creation is audited against the new campaign.
	var auditCount int64
	require.NoError(t, tdb.DB.Model(&models.AuditLog{}).
		Where("campaign_id = ? AND action = ?", saved.ID, models.AuditActionCampaignCreated).
		Count(&auditCount).Error)
	assert.Equal(t, int64(1), auditCount)
}

func TestCreateCampaignAcceptsIncompleteDraft(t *testing.T) {
	flow, tdb, fixtures := setupFlowDBTest(t)
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	operator, err := fixtures.CreateTestOperator(models.OwnerScopePlatform, nil)
	require.NoError(t, err)

	// An in-app draft with an empty body saves fine; required fields are only
	// enforced when the campaign leaves draft.
	resp, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
		OperatorID:   operator.ID,
		Name:         "Reefer lane teaser",
		AudienceType: string(models.AudiencePlatformAllUsers),
		Channel:      string(models.ChannelInApp),
		Content: &dto.CampaignContentDTO{InApp: &dto.InAppContentDTO{
			Title: "Coming soon",
			Body:  "",
		}},
	}, meta)
	require.NoError(t, err)
	assert.Equal(t, string(models.CampaignStatusDraft), resp.Status)

	var saved models.Campaign
	require.NoError(t, tdb.DB.First(&saved, resp.ID).Error)
	require.NotNil(t, saved.Content.InApp)
	assert.Empty(t, saved.Content.InApp.Body)

	_, err = flow.ScheduleCampaign(ctx, &dto.ScheduleCampaignRequest{
		UUID:        saved.UUID.String(),
		OperatorID:  operator.ID,
		ScheduledAt: utils.UTCNow().Add(time.Hour),
	}, meta)
	require.Error(t, err)
	assert.True(t, businessflow.IsValidationError(err))

	// Still a draft after the rejected schedule attempt.
	require.NoError(t, tdb.DB.First(&saved, resp.ID).Error)
	assert.Equal(t, models.CampaignStatusDraft, saved.Status)
}

func TestUpdateCampaignPersistsChanges(t *testing.T) {
	flow, tdb, fixtures := setupFlowDBTest(t)
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	operator, err := fixtures.CreateTestOperator(models.OwnerScopePlatform, nil)
	require.NoError(t, err)
	campaign, err := fixtures.CreateTestCampaign(models.OwnerScopePlatform, nil, models.ChannelEmail, models.CampaignStatusDraft)
	require.NoError(t, err)

	resp, err := flow.UpdateCampaign(ctx, &dto.UpdateCampaignRequest{
		UUID:       campaign.UUID.String(),
		OperatorID: operator.ID,
		Name:       utils.ToPtr("Renamed promo"),
	}, meta)
	require.NoError(t, err)
	assert.Equal(t, "Renamed promo", resp.Campaign.Name)

	var saved models.Campaign
	require.NoError(t, tdb.DB.First(&saved, campaign.ID).Error)
	assert.Equal(t, "Renamed promo", saved.Name)
	assert.NotNil(t, saved.UpdatedAt)
}

func TestDeleteCampaignRemovesRow(t *testing.T) {
	flow, tdb, fixtures := setupFlowDBTest(t)
	ctx := context.Background()
	meta := businessflow.NewClientMetadata("127.0.0.1", "test")

	operator, err := fixtures.CreateTestOperator(models.OwnerScopePlatform, nil)
	require.NoError(t, err)
	campaign, err := fixtures.CreateTestCampaign(models.OwnerScopePlatform, nil, models.ChannelEmail, models.CampaignStatusCancelled)
	require.NoError(t, err)

	_, err = flow.DeleteCampaign(ctx, &dto.DeleteCampaignRequest{
		UUID:       campaign.UUID.String(),
		OperatorID: operator.ID,
	}, meta)
	require.NoError(t, err)

	var count int64
	require.NoError(t, tdb.DB.Model(&models.Campaign{}).Where("id = ?", campaign.ID).Count(&count).Error)
	assert.Zero(t, count)
}

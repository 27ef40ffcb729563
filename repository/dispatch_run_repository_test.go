package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	testingutil "github.com/freightdeck/campaign-engine/testing"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDispatchRunRepoTest(t *testing.T) (repository.DispatchRunRepository, *testingutil.TestFixtures) {
	t.Helper()

	tdb, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() { _ = tdb.TeardownTestDB() })

	return repository.NewDispatchRunRepository(tdb.DB), testingutil.NewTestFixtures(tdb)
}

func TestDispatchRunUpdateClosesRun(t *testing.T) {
	repo, fixtures := setupDispatchRunRepoTest(t)
	ctx := context.Background()

	campaign, err := fixtures.CreateTestCampaign(models.OwnerScopePlatform, nil, models.ChannelEmail, models.CampaignStatusSending)
	require.NoError(t, err)

	run := &models.DispatchRun{
		CampaignID:  campaign.ID,
		AudienceIDs: pq.Int64Array{1, 2, 3},
		StartedAt:   utils.UTCNow(),
	}
	require.NoError(t, repo.Save(ctx, run))
	require.NotZero(t, run.ID)

	finishedAt := utils.UTCNow().Add(time.Minute)
	run.FinishedAt = &finishedAt
	require.NoError(t, repo.Update(ctx, run))

	fresh, err := repo.LatestByCampaignID(ctx, campaign.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, run.ID, fresh.ID)
	require.NotNil(t, fresh.FinishedAt)
	assert.Len(t, fresh.AudienceIDs, 3)
}

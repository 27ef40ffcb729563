package repository_test

import (
	"context"
	"testing"

	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	testingutil "github.com/freightdeck/campaign-engine/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserRepoTest(t *testing.T) (*testingutil.TestFixtures, repository.UserRepository) {
	t.Helper()

	tdb, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() { _ = tdb.TeardownTestDB() })

	return testingutil.NewTestFixtures(tdb), repository.NewUserRepository(tdb.DB)
}

func TestListPlatformAudienceConsent(t *testing.T) {
	fixtures, repo := setupUserRepoTest(t)
	ctx := context.Background()

	optedIn, err := fixtures.CreateTestUser(testingutil.TestUserOpts{
		Role: models.UserRoleCustomer, EmailMarketingOptIn: true, Active: true,
	})
	require.NoError(t, err)

	// Excluded: no email opt-in, inactive, and wrong role respectively.
	_, err = fixtures.CreateTestUser(testingutil.TestUserOpts{
		Role: models.UserRoleCustomer, Active: true,
	})
	require.NoError(t, err)
	_, err = fixtures.CreateTestUser(testingutil.TestUserOpts{
		Role: models.UserRoleCustomer, EmailMarketingOptIn: true, Active: false,
	})
	require.NoError(t, err)
	rep, err := fixtures.CreateTestUser(testingutil.TestUserOpts{
		Role: models.UserRoleCompanyRep, EmailMarketingOptIn: true, Active: true,
	})
	require.NoError(t, err)

	customers, err := repo.ListPlatformAudience(ctx, []string{models.UserRoleCustomer}, models.ChannelEmail)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, optedIn.ID, customers[0].ID)

	all, err := repo.ListPlatformAudience(ctx, []string{models.UserRoleCustomer, models.UserRoleCompanyRep}, models.ChannelEmail)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, rep.ID, all[1].ID)
}

func TestListPlatformAudienceInAppNeedsNoOptIn(t *testing.T) {
	fixtures, repo := setupUserRepoTest(t)
	ctx := context.Background()

	user, err := fixtures.CreateTestUser(testingutil.TestUserOpts{
		Role: models.UserRoleCustomer, Active: true,
	})
	require.NoError(t, err)

	users, err := repo.ListPlatformAudience(ctx, []string{models.UserRoleCustomer}, models.ChannelInApp)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.ID, users[0].ID)
}

func TestListCompanyPastCustomers(t *testing.T) {
	fixtures, repo := setupUserRepoTest(t)
	ctx := context.Background()

	company, err := fixtures.CreateTestCompany("")
	require.NoError(t, err)
	otherCompany, err := fixtures.CreateTestCompany("")
	require.NoError(t, err)

	pastCustomer, err := fixtures.CreateTestUser(testingutil.TestUserOpts{
		Role: models.UserRoleCustomer, EmailMarketingOptIn: true, CarrierMarketingOptIn: true, Active: true,
	})
	require.NoError(t, err)
	_, err = fixtures.CreateTestBooking(pastCustomer.ID, company.ID)
	require.NoError(t, err)

	// Booked with the company but never opted in to carrier marketing.
	noCarrierOptIn, err := fixtures.CreateTestUser(testingutil.TestUserOpts{
		Role: models.UserRoleCustomer, EmailMarketingOptIn: true, Active: true,
	})
	require.NoError(t, err)
	_, err = fixtures.CreateTestBooking(noCarrierOptIn.ID, company.ID)
	require.NoError(t, err)

	// Opted in everywhere, but only booked with a different company.
	otherCustomer, err := fixtures.CreateTestUser(testingutil.TestUserOpts{
		Role: models.UserRoleCustomer, EmailMarketingOptIn: true, CarrierMarketingOptIn: true, Active: true,
	})
	require.NoError(t, err)
	_, err = fixtures.CreateTestBooking(otherCustomer.ID, otherCompany.ID)
	require.NoError(t, err)

	users, err := repo.ListCompanyPastCustomers(ctx, company.ID, models.ChannelEmail)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, pastCustomer.ID, users[0].ID)
}

func TestListCompanyPastCustomersChannelConsent(t *testing.T) {
	fixtures, repo := setupUserRepoTest(t)
	ctx := context.Background()

	company, err := fixtures.CreateTestCompany("")
	require.NoError(t, err)

	// Carrier opt-in present, whatsapp consent missing.
	user, err := fixtures.CreateTestUser(testingutil.TestUserOpts{
		Role: models.UserRoleCustomer, CarrierMarketingOptIn: true, Active: true,
	})
	require.NoError(t, err)
	_, err = fixtures.CreateTestBooking(user.ID, company.ID)
	require.NoError(t, err)

	users, err := repo.ListCompanyPastCustomers(ctx, company.ID, models.ChannelWhatsApp)
	require.NoError(t, err)
	assert.Empty(t, users)

	// In-app needs no per-channel consent beyond the carrier opt-in.
	users, err = repo.ListCompanyPastCustomers(ctx, company.ID, models.ChannelInApp)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

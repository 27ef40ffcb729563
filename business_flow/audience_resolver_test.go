package businessflow_test

import (
	"context"
	"testing"
	"time"

	businessflow "github.com/freightdeck/campaign-engine/business_flow"
	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	repository.UserRepository

	platformUsers []*models.User
	companyUsers  []*models.User

	lastRoles     []string
	lastChannel   models.Channel
	lastCompanyID uint
}

func (f *fakeUserRepo) ListPlatformAudience(ctx context.Context, roles []string, channel models.Channel) ([]*models.User, error) {
	f.lastRoles = roles
	f.lastChannel = channel
	return f.platformUsers, nil
}

func (f *fakeUserRepo) ListCompanyPastCustomers(ctx context.Context, companyID uint, channel models.Channel) ([]*models.User, error) {
	f.lastCompanyID = companyID
	f.lastChannel = channel
	return f.companyUsers, nil
}

func TestResolveAudience(t *testing.T) {
	ctx := context.Background()

	t.Run("platform customers only", func(t *testing.T) {
		userRepo := &fakeUserRepo{platformUsers: []*models.User{{ID: 1}, {ID: 2}}}
		resolver := businessflow.NewAudienceResolver(userRepo, nil, time.Minute)

		users, err := resolver.Resolve(ctx, &models.Campaign{
			AudienceType: models.AudiencePlatformCustomersOnly,
			Channel:      models.ChannelEmail,
		})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, []string{models.UserRoleCustomer}, userRepo.lastRoles)
		assert.Equal(t, models.ChannelEmail, userRepo.lastChannel)
	})

	t.Run("platform all users covers both roles", func(t *testing.T) {
		userRepo := &fakeUserRepo{}
		resolver := businessflow.NewAudienceResolver(userRepo, nil, time.Minute)

		_, err := resolver.Resolve(ctx, &models.Campaign{
			AudienceType: models.AudiencePlatformAllUsers,
			Channel:      models.ChannelInApp,
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{models.UserRoleCustomer, models.UserRoleCompanyRep}, userRepo.lastRoles)
	})

	t.Run("company past customers requires company id", func(t *testing.T) {
		userRepo := &fakeUserRepo{}
		resolver := businessflow.NewAudienceResolver(userRepo, nil, time.Minute)

		_, err := resolver.Resolve(ctx, &models.Campaign{
			AudienceType: models.AudienceCompanyPastCustomers,
			Channel:      models.ChannelEmail,
		})
		assert.ErrorIs(t, err, businessflow.ErrCompanyIDRequired)
	})

	t.Run("company past customers queries by company", func(t *testing.T) {
		companyID := uint(42)
		userRepo := &fakeUserRepo{companyUsers: []*models.User{{ID: 3}}}
		resolver := businessflow.NewAudienceResolver(userRepo, nil, time.Minute)

		users, err := resolver.Resolve(ctx, &models.Campaign{
			AudienceType: models.AudienceCompanyPastCustomers,
			CompanyID:    &companyID,
			Channel:      models.ChannelWhatsApp,
		})
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Equal(t, uint(42), userRepo.lastCompanyID)
	})

	t.Run("unknown audience type", func(t *testing.T) {
		resolver := businessflow.NewAudienceResolver(&fakeUserRepo{}, nil, time.Minute)

		_, err := resolver.Resolve(ctx, &models.Campaign{AudienceType: "everyone"})
		assert.Error(t, err)
	})
}

func TestPreviewCountWithoutCache(t *testing.T) {
	ctx := context.Background()
	userRepo := &fakeUserRepo{platformUsers: []*models.User{{ID: 1}, {ID: 2}, {ID: 3}}}
	resolver := businessflow.NewAudienceResolver(userRepo, nil, time.Minute)

	count, cached, err := resolver.PreviewCount(ctx, &models.Campaign{
		AudienceType: models.AudiencePlatformCustomersOnly,
		Channel:      models.ChannelEmail,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.False(t, cached)
}

package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/redis/go-redis/v9"
)

// AudienceResolver resolves the recipient set of a campaign from current
// consent and booking data. Resolution is never persisted with the campaign;
// it is recomputed at preview and again at dispatch time.
type AudienceResolver interface {
	Resolve(ctx context.Context, campaign *models.Campaign) ([]*models.User, error)
	PreviewCount(ctx context.Context, campaign *models.Campaign) (count int, cached bool, err error)
}

// AudienceResolverImpl implements AudienceResolver on top of the user
// repository, with a short-lived redis cache for preview counts.
type AudienceResolverImpl struct {
	userRepo repository.UserRepository
	rc       *redis.Client
	cacheTTL time.Duration
}

// NewAudienceResolver creates a new audience resolver. rc may be nil, in
// which case preview counts are computed on every call.
func NewAudienceResolver(userRepo repository.UserRepository, rc *redis.Client, cacheTTL time.Duration) AudienceResolver {
	if cacheTTL <= 0 {
		cacheTTL = utils.PreviewCacheTTL
	}
	return &AudienceResolverImpl{
		userRepo: userRepo,
		rc:       rc,
		cacheTTL: cacheTTL,
	}
}

// Resolve returns the full recipient set for the campaign's audience type and
// channel. Consent filtering happens in the repository queries.
func (r *AudienceResolverImpl) Resolve(ctx context.Context, campaign *models.Campaign) ([]*models.User, error) {
	switch campaign.AudienceType {
	case models.AudiencePlatformCustomersOnly:
		return r.userRepo.ListPlatformAudience(ctx, []string{models.UserRoleCustomer}, campaign.Channel)
	case models.AudiencePlatformCompaniesOnly:
		return r.userRepo.ListPlatformAudience(ctx, []string{models.UserRoleCompanyRep}, campaign.Channel)
	case models.AudiencePlatformAllUsers:
		return r.userRepo.ListPlatformAudience(ctx, []string{models.UserRoleCustomer, models.UserRoleCompanyRep}, campaign.Channel)
	case models.AudienceCompanyPastCustomers:
		if campaign.CompanyID == nil {
			return nil, ErrCompanyIDRequired
		}
		return r.userRepo.ListCompanyPastCustomers(ctx, *campaign.CompanyID, campaign.Channel)
	default:
		return nil, fmt.Errorf("unknown audience type: %s", campaign.AudienceType)
	}
}

// PreviewCount returns the current audience size, served from cache when a
// recent count exists. The count is advisory; dispatch re-resolves.
func (r *AudienceResolverImpl) PreviewCount(ctx context.Context, campaign *models.Campaign) (int, bool, error) {
	key := r.previewCacheKey(campaign)

	if r.rc != nil {
		val, err := r.rc.Get(ctx, key).Result()
		if err == nil {
			count, convErr := strconv.Atoi(val)
			if convErr == nil {
				return count, true, nil
			}
		} else if err != redis.Nil {
			// Cache unavailable; fall through to a live count.
			_ = err
		}
	}

	users, err := r.Resolve(ctx, campaign)
	if err != nil {
		return 0, false, err
	}
	count := len(users)

	if r.rc != nil {
		_ = r.rc.Set(ctx, key, strconv.Itoa(count), r.cacheTTL).Err()
	}

	return count, false, nil
}

func (r *AudienceResolverImpl) previewCacheKey(campaign *models.Campaign) string {
	companyID := uint(0)
	if campaign.CompanyID != nil {
		companyID = *campaign.CompanyID
	}
	return fmt.Sprintf("campaign:preview:%s:%s:%d", campaign.AudienceType, campaign.Channel, companyID)
}

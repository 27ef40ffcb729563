// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/freightdeck/campaign-engine/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	Update(ctx context.Context, campaign models.Campaign) error

	// UpdateStatusFrom commits a status transition only when the persisted
	// status is still one of the expected sources. It returns true when this
	// caller won the transition (exactly one row updated), false when a
	// concurrent actor got there first. Extra column updates ride along in
	// the same statement.
	UpdateStatusFrom(ctx context.Context, id uint, from []models.CampaignStatus, to models.CampaignStatus, set map[string]any) (bool, error)

	// IncrementCounters adds to the delivered/failed counters without
	// overwriting concurrent increments.
	IncrementCounters(ctx context.Context, id uint, delivered, failed int) error

	// ListDue returns scheduled campaigns whose fire time has arrived.
	ListDue(ctx context.Context, now time.Time) ([]*models.Campaign, error)

	// ListStaleSending returns campaigns stuck in sending since before the cutoff.
	ListStaleSending(ctx context.Context, cutoff time.Time) ([]*models.Campaign, error)

	Delete(ctx context.Context, id uint) error
}

// UserRepository defines operations for marketplace users (audience source)
type UserRepository interface {
	Repository[models.User, models.UserFilter]

	// ListPlatformAudience returns active users matching the given roles that
	// opted in to the channel's marketing communications.
	ListPlatformAudience(ctx context.Context, roles []string, channel models.Channel) ([]*models.User, error)

	// ListCompanyPastCustomers returns active customers with at least one
	// booking with the company and the carrier-marketing opt-in set, further
	// filtered by the channel's own consent flag.
	ListCompanyPastCustomers(ctx context.Context, companyID uint, channel models.Channel) ([]*models.User, error)

	ListByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
}

// CompanyRepository defines operations for companies
type CompanyRepository interface {
	Repository[models.Company, models.CompanyFilter]
}

// BookingRepository defines operations for bookings (read-mostly; writes are
// for fixtures and seed data)
type BookingRepository interface {
	Repository[models.Booking, models.BookingFilter]
}

// DispatchRunRepository defines operations for dispatch runs
type DispatchRunRepository interface {
	Repository[models.DispatchRun, models.DispatchRunFilter]
	Update(ctx context.Context, run *models.DispatchRun) error
	LatestByCampaignID(ctx context.Context, campaignID uint) (*models.DispatchRun, error)
}

// DeliveryLogRepository defines operations for delivery logs
type DeliveryLogRepository interface {
	Repository[models.DeliveryLog, models.DeliveryLogFilter]
	ListByCampaign(ctx context.Context, campaignID uint) ([]*models.DeliveryLog, error)
}

// InAppNotificationRepository defines operations for in-app notifications
type InAppNotificationRepository interface {
	Repository[models.InAppNotification, models.InAppNotificationFilter]
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByCampaign(ctx context.Context, campaignID uint) ([]*models.AuditLog, error)
}

// OperatorRepository defines operations for operators
type OperatorRepository interface {
	Repository[models.Operator, models.OperatorFilter]
	ByEmail(ctx context.Context, email string) (*models.Operator, error)
}

// Package testing provides test utilities and database setup for testing the campaign engine
package testing

import (
	"fmt"
	"math/rand"

	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCompany creates a test carrier company
func (tf *TestFixtures) CreateTestCompany(name string) (*models.Company, error) {
	if name == "" {
		name = fmt.Sprintf("Test Carrier %d", rand.Intn(100000))
	}

	company := &models.Company{
		UUID:     uuid.New(),
		Name:     name,
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(company).Error; err != nil {
		return nil, fmt.Errorf("failed to create test company: %w", err)
	}

	return company, nil
}

// CreateTestOperator creates an operator with a known password ("TestPass123!")
func (tf *TestFixtures) CreateTestOperator(scope models.OwnerScope, companyID *uint) (*models.Operator, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	operator := &models.Operator{
		UUID:         uuid.New(),
		Email:        fmt.Sprintf("operator.%d@example.com", rand.Intn(100000000)),
		PasswordHash: string(hashedPassword),
		Scope:        scope,
		CompanyID:    companyID,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(operator).Error; err != nil {
		return nil, fmt.Errorf("failed to create test operator: %w", err)
	}

	return operator, nil
}

// TestUserOpts controls the consent and role flags of a generated user
type TestUserOpts struct {
	Role                  string
	EmailMarketingOptIn   bool
	WhatsAppOptIn         bool
	CarrierMarketingOptIn bool
	Active                bool
	PhoneNumber           string
}

// CreateTestUser creates a marketplace user eligible for campaign targeting
func (tf *TestFixtures) CreateTestUser(opts TestUserOpts) (*models.User, error) {
	if opts.Role == "" {
		opts.Role = models.UserRoleCustomer
	}

	user := &models.User{
		UUID:                  uuid.New(),
		Role:                  opts.Role,
		Email:                 fmt.Sprintf("user.%d@example.com", rand.Intn(100000000)),
		EmailMarketingOptIn:   utils.ToPtr(opts.EmailMarketingOptIn),
		WhatsAppOptIn:         utils.ToPtr(opts.WhatsAppOptIn),
		CarrierMarketingOptIn: utils.ToPtr(opts.CarrierMarketingOptIn),
		IsActive:              utils.ToPtr(opts.Active),
	}
	if opts.PhoneNumber != "" {
		user.PhoneNumber = &opts.PhoneNumber
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestBooking links a user to a company as a past customer
func (tf *TestFixtures) CreateTestBooking(userID, companyID uint) (*models.Booking, error) {
	booking := &models.Booking{
		UserID:    userID,
		CompanyID: companyID,
		Status:    "completed",
	}

	if err := tf.DB.DB.Create(booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create test booking: %w", err)
	}

	return booking, nil
}

// CreateTestCampaign creates a campaign in the given status with content
// matching the channel
func (tf *TestFixtures) CreateTestCampaign(scope models.OwnerScope, companyID *uint, channel models.Channel, status models.CampaignStatus) (*models.Campaign, error) {
	audienceType := models.AudiencePlatformCustomersOnly
	if scope == models.OwnerScopeCompany {
		audienceType = models.AudienceCompanyPastCustomers
	}

	campaign := &models.Campaign{
		UUID:         uuid.New(),
		Name:         fmt.Sprintf("Test Campaign %d", rand.Intn(100000)),
		OwnerScope:   scope,
		CompanyID:    companyID,
		AudienceType: audienceType,
		Channel:      channel,
		Content:      TestContentFor(channel),
		Status:       status,
	}

	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}

	return campaign, nil
}

// TestContentFor returns complete campaign content for the channel
func TestContentFor(channel models.Channel) models.CampaignContent {
	switch channel {
	case models.ChannelEmail:
		return models.CampaignContent{
			Email: &models.EmailContent{
				Subject:     "Spring rates on trans-continental lanes",
				ContentHTML: "<p>Book before the end of the month.</p>",
				ContentText: utils.ToPtr("Book before the end of the month."),
			},
		}
	case models.ChannelInApp:
		return models.CampaignContent{
			InApp: &models.InAppContent{
				Title: "Rate drop",
				Body:  "Your favorite lanes just got cheaper.",
			},
		}
	case models.ChannelWhatsApp:
		return models.CampaignContent{
			WhatsApp: &models.WhatsAppContent{
				TemplateKey: utils.ToPtr("rate_drop_v1"),
			},
		}
	default:
		return models.CampaignContent{}
	}
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(operatorID *uint, campaignID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		OperatorID:  operatorID,
		CampaignID:  campaignID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}

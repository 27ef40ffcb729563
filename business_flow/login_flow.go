// Package businessflow contains the core business logic and use cases for campaign lifecycle workflows
package businessflow

import (
	"context"

	"github.com/freightdeck/campaign-engine/app/dto"
	"github.com/freightdeck/campaign-engine/app/services"
	"github.com/freightdeck/campaign-engine/models"
	"github.com/freightdeck/campaign-engine/repository"
	"github.com/freightdeck/campaign-engine/utils"
	"golang.org/x/crypto/bcrypt"
)

// AuthFlow represents the operator authentication flow used by handlers
type AuthFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
}

// AuthFlowImpl verifies operator credentials and issues access tokens
type AuthFlowImpl struct {
	operatorRepo repository.OperatorRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	clock        utils.Clock
}

func NewAuthFlow(
	operatorRepo repository.OperatorRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	clock utils.Clock,
) AuthFlow {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &AuthFlowImpl{
		operatorRepo: operatorRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		clock:        clock,
	}
}

func (af *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, NewBusinessError("LOGIN_VALIDATION_FAILED", "Login validation failed", ErrIncorrectPassword)
	}

	operator, err := af.operatorRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewBusinessError("OPERATOR_LOOKUP_FAILED", "Failed to lookup operator", err)
	}
	if operator == nil {
		return nil, NewBusinessError("OPERATOR_NOT_FOUND", "Operator not found", ErrOperatorNotFound)
	}
	if !utils.IsTrue(operator.IsActive) {
		return nil, NewBusinessError("OPERATOR_INACTIVE", "Operator account is inactive", ErrOperatorInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(req.Password)); err != nil {
		errMsg := "Incorrect password"
		_ = af.createAuditLog(ctx, operator, models.AuditActionOperatorLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("INCORRECT_PASSWORD", "Incorrect password", ErrIncorrectPassword)
	}

	accessToken, err := af.tokenService.GenerateOperatorToken(operator.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate access token", err)
	}

	now := af.clock.Now()
	operator.LastLoginAt = &now
	if err := af.operatorRepo.Save(ctx, operator); err != nil {
		// Login still succeeds; the timestamp is best-effort
		_ = err
	}

	_ = af.createAuditLog(ctx, operator, models.AuditActionOperatorLogin, "Operator logged in", true, nil, metadata)

	return &dto.LoginResponse{
		Message:     "Login successful",
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   utils.AccessTokenTTLSeconds,
		Operator:    ToOperatorDTO(operator),
	}, nil
}

func (af *AuthFlowImpl) createAuditLog(ctx context.Context, operator *models.Operator, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		OperatorID:   &operator.ID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	if requestID, ok := ctx.Value(utils.RequestIDKey).(string); ok {
		audit.RequestID = &requestID
	}

	return af.auditRepo.Save(ctx, audit)
}

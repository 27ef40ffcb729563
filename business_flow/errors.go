// Package businessflow contains the core business logic and use cases for campaign lifecycle workflows
package businessflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freightdeck/campaign-engine/models"
)

// Business flow error constants
var (
	// Campaign lookup and access errors
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrCampaignAccessDenied = errors.New("campaign access denied")
	ErrOperatorNotFound     = errors.New("operator not found")
	ErrOperatorInactive     = errors.New("operator is inactive")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyInactive      = errors.New("company is inactive")
	ErrIncorrectPassword    = errors.New("incorrect password")

	// Validation errors
	ErrCampaignNameRequired        = errors.New("campaign name is required")
	ErrCampaignContentRequired     = errors.New("campaign content is required")
	ErrContentChannelMismatch      = errors.New("content does not match campaign channel")
	ErrEmailSubjectRequired        = errors.New("email subject is required")
	ErrEmailBodyRequired           = errors.New("email body is required")
	ErrInAppTitleRequired          = errors.New("in-app title is required")
	ErrInAppBodyRequired           = errors.New("in-app body is required")
	ErrAudienceTypeInvalid         = errors.New("audience type is not valid for owner scope")
	ErrCompanyIDRequired           = errors.New("company ID is required for company-scoped campaigns")
	ErrCompanyIDForbidden          = errors.New("company ID must not be set for platform-scoped campaigns")
	ErrScheduleTimeNotPresent      = errors.New("schedule time is not present")
	ErrScheduleTimeInPast          = errors.New("schedule time must be in the future")
	ErrCampaignUpdateRequired      = errors.New("at least one field must be provided for update")
	ErrCampaignUUIDRequired        = errors.New("campaign UUID is required")
	ErrWhatsAppTemplateKeyRequired = errors.New("whatsapp template key is required")

	// Lifecycle errors
	ErrCampaignNotEditable   = errors.New("campaign can only be modified in draft status")
	ErrCampaignNotCancelable = errors.New("campaign can no longer be cancelled")
	ErrCampaignNotDeletable  = errors.New("campaign can no longer be deleted")
	ErrCampaignNotSendable   = errors.New("campaign cannot be sent from its current status")
	ErrStatusConflict        = errors.New("campaign status changed concurrently")

	// Audience errors
	ErrAudienceEmpty       = errors.New("resolved audience is empty")
	ErrRecipientCapReached = errors.New("resolved audience exceeds the recipient cap")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// ValidationError aggregates per-field validation failures for one request.
// Fields maps field name to the reason it was rejected.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, reason := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// InvalidTransitionError reports a campaign status change the state machine
// does not allow.
type InvalidTransitionError struct {
	From models.CampaignStatus
	To   models.CampaignStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid campaign status transition: %s -> %s", e.From, e.To)
}

func NewInvalidTransitionError(from, to models.CampaignStatus) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

// ConflictError reports that a compare-and-commit status update lost the race
// against another writer.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return ErrStatusConflict
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// CapExceededError reports a resolved audience larger than the owner scope's
// recipient cap.
type CapExceededError struct {
	Count int
	Cap   int
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("resolved audience has %d recipients, cap is %d", e.Count, e.Cap)
}

func (e *CapExceededError) Unwrap() error {
	return ErrRecipientCapReached
}

func NewCapExceededError(count, cap int) *CapExceededError {
	return &CapExceededError{Count: count, Cap: cap}
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

func IsOperatorNotFound(err error) bool {
	return errors.Is(err, ErrOperatorNotFound)
}

func IsOperatorInactive(err error) bool {
	return errors.Is(err, ErrOperatorInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsCompanyNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce) || errors.Is(err, ErrStatusConflict)
}

func IsCapExceeded(err error) bool {
	var ce *CapExceededError
	return errors.As(err, &ce) || errors.Is(err, ErrRecipientCapReached)
}

func IsCampaignNotEditable(err error) bool {
	return errors.Is(err, ErrCampaignNotEditable)
}

func IsCampaignNotCancelable(err error) bool {
	return errors.Is(err, ErrCampaignNotCancelable)
}

func IsCampaignNotDeletable(err error) bool {
	return errors.Is(err, ErrCampaignNotDeletable)
}

func IsCampaignNotSendable(err error) bool {
	return errors.Is(err, ErrCampaignNotSendable)
}

func IsAudienceEmpty(err error) bool {
	return errors.Is(err, ErrAudienceEmpty)
}

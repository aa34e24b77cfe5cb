package services

import (
	"errors"
	"fmt"

	"github.com/rakitcita/platform-service/internal/validator"
)

// Sentinel errors translated to HTTP codes by the handler layer.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrCommunityNotFound  = errors.New("community not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrMembershipNotFound = errors.New("membership not found")

	ErrEmailTaken         = errors.New("email already registered")
	ErrCommunityNameTaken = errors.New("community name already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrLastAdmin rejects any change that would leave a community with
	// zero admin-role memberships.
	ErrLastAdmin = errors.New("community must keep at least one admin")

	// Recommendation outcomes. Each maps to a distinct response.
	ErrRecommendationUpstream = errors.New("recommendation service unavailable")
	ErrRecommendationParse    = errors.New("recommendation reply unparseable")
	ErrNoCandidates           = errors.New("no courses or communities available to recommend")
)

// ValidationErrors re-exported so handlers can errors.As on one package.
type ValidationErrors = validator.ValidationErrors

// PermissionError carries who was denied what, for logging and the 403 body.
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

// BusinessRuleError marks a domain rule violation (400-class, not auth).
type BusinessRuleError struct {
	Rule    string
	Message string
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

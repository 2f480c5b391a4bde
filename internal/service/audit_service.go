package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"crmbackend/internal/model"
	"crmbackend/internal/repository"

	"github.com/google/uuid"
)

type AuditEntryResponse struct {
	ID         string  `json:"id"`
	UserID     *string `json:"user_id"`
	Username   string  `json:"username,omitempty"`
	Action     string  `json:"action"`
	EntityID   string  `json:"entity_id"`
	EntityName string  `json:"entity_name,omitempty"`
	Details    string  `json:"details"`
	CreatedAt  string  `json:"created_at"`
}

type AuditService interface {
	// Record persists an audit entry. Failures are logged, never propagated:
	// an audit write must not fail the business operation it describes.
	Record(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{})
	List(ctx context.Context, action string, page, limit int) ([]AuditEntryResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{}) {
	payload := "{}"
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = string(raw)
		}
	}

	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s for %s: %v", action, entityID, err)
	}
}

func (s *auditService) List(ctx context.Context, action string, page, limit int) ([]AuditEntryResponse, int64, error) {
	entries, total, err := s.repo.List(ctx, action, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := AuditEntryResponse{
			ID:         e.ID.String(),
			Action:     e.Action,
			EntityID:   e.EntityID,
			EntityName: e.EntityName,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		}
		if e.UserID != nil {
			id := e.UserID.String()
			resp.UserID = &id
		}
		if e.User != nil {
			resp.Username = e.User.Username
		}
		result = append(result, resp)
	}
	return result, total, nil
}

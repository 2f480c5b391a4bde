package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crmbackend/internal/model"
	"crmbackend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateTimeLogRequest struct {
	EmployeeID   string `json:"employee_id" binding:"required"`
	OrderID      string `json:"order_id"`
	StartTime    string `json:"start_time" binding:"required"` // RFC 3339
	EndTime      string `json:"end_time"`
	BreakMinutes int    `json:"break_minutes"`
	Note         string `json:"note"`
}

type StopTimeLogRequest struct {
	EndTime      string `json:"end_time"` // RFC 3339, defaults to now
	BreakMinutes *int   `json:"break_minutes"`
}

type TimeLogResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	OrderID       *string `json:"order_id"`
	StartTime     string  `json:"start_time"`
	EndTime       *string `json:"end_time"`
	BreakMinutes  int     `json:"break_minutes"`
	WorkedMinutes int     `json:"worked_minutes"`
	IsApproved    bool    `json:"is_approved"`
	ApprovalNote  string  `json:"approval_note,omitempty"`
	Note          string  `json:"note,omitempty"`
}

// --- Interface ---

type TimeLogService interface {
	CreateTimeLog(ctx context.Context, req CreateTimeLogRequest) (TimeLogResponse, error)
	StopTimeLog(ctx context.Context, id string, req StopTimeLogRequest) (TimeLogResponse, error)
	ListByEmployee(ctx context.Context, employeeID string, year, month int) ([]TimeLogResponse, error)
}

type timeLogService struct {
	timeLogRepo repository.TimeLogRepository
	userRepo    repository.UserRepository
}

func NewTimeLogService(timeLogRepo repository.TimeLogRepository, userRepo repository.UserRepository) TimeLogService {
	return &timeLogService{timeLogRepo: timeLogRepo, userRepo: userRepo}
}

func (s *timeLogService) CreateTimeLog(ctx context.Context, req CreateTimeLogRequest) (TimeLogResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return TimeLogResponse{}, fmt.Errorf("invalid employee_id: %w", err)
	}
	if _, err := s.userRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return TimeLogResponse{}, errors.New("employee not found")
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return TimeLogResponse{}, fmt.Errorf("invalid start_time: %w", err)
	}

	log := &model.TimeLog{
		EmployeeID:   employeeID,
		StartTime:    start,
		BreakMinutes: req.BreakMinutes,
		Note:         req.Note,
	}

	if req.EndTime != "" {
		end, parseErr := time.Parse(time.RFC3339, req.EndTime)
		if parseErr != nil {
			return TimeLogResponse{}, fmt.Errorf("invalid end_time: %w", parseErr)
		}
		if !end.After(start) {
			return TimeLogResponse{}, errors.New("end_time must be after start_time")
		}
		log.EndTime = &end
	}
	if req.BreakMinutes < 0 {
		return TimeLogResponse{}, errors.New("break_minutes must not be negative")
	}
	if req.OrderID != "" {
		orderID, parseErr := uuid.Parse(req.OrderID)
		if parseErr != nil {
			return TimeLogResponse{}, fmt.Errorf("invalid order_id: %w", parseErr)
		}
		log.OrderID = &orderID
	}

	if err := s.timeLogRepo.Create(ctx, log); err != nil {
		return TimeLogResponse{}, fmt.Errorf("failed to create time log: %w", err)
	}
	return toTimeLogResponse(log), nil
}

// StopTimeLog closes a running log. Already-closed logs are rejected rather
// than silently re-stamped.
func (s *timeLogService) StopTimeLog(ctx context.Context, id string, req StopTimeLogRequest) (TimeLogResponse, error) {
	logID, err := uuid.Parse(id)
	if err != nil {
		return TimeLogResponse{}, fmt.Errorf("invalid time log id: %w", err)
	}
	log, err := s.timeLogRepo.FindByID(ctx, logID)
	if err != nil {
		return TimeLogResponse{}, errors.New("time log not found")
	}
	if log.EndTime != nil {
		return TimeLogResponse{}, errors.New("time log is already stopped")
	}

	end := time.Now().UTC()
	if req.EndTime != "" {
		end, err = time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			return TimeLogResponse{}, fmt.Errorf("invalid end_time: %w", err)
		}
	}
	if !end.After(log.StartTime) {
		return TimeLogResponse{}, errors.New("end_time must be after start_time")
	}
	log.EndTime = &end

	if req.BreakMinutes != nil {
		if *req.BreakMinutes < 0 {
			return TimeLogResponse{}, errors.New("break_minutes must not be negative")
		}
		log.BreakMinutes = *req.BreakMinutes
	}

	if err := s.timeLogRepo.Update(ctx, log); err != nil {
		return TimeLogResponse{}, fmt.Errorf("failed to update time log: %w", err)
	}
	return toTimeLogResponse(log), nil
}

func (s *timeLogService) ListByEmployee(ctx context.Context, employeeID string, year, month int) ([]TimeLogResponse, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, fmt.Errorf("invalid employee id: %w", err)
	}
	from, to, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}

	logs, err := s.timeLogRepo.ListByEmployeePeriod(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time logs: %w", err)
	}

	responses := make([]TimeLogResponse, 0, len(logs))
	for i := range logs {
		responses = append(responses, toTimeLogResponse(&logs[i]))
	}
	return responses, nil
}

func toTimeLogResponse(log *model.TimeLog) TimeLogResponse {
	resp := TimeLogResponse{
		ID:            log.ID.String(),
		EmployeeID:    log.EmployeeID.String(),
		StartTime:     log.StartTime.Format(time.RFC3339),
		BreakMinutes:  log.BreakMinutes,
		WorkedMinutes: log.WorkedMinutes(),
		IsApproved:    log.IsApproved,
		ApprovalNote:  log.ApprovalNote,
		Note:          log.Note,
	}
	if log.OrderID != nil {
		orderID := log.OrderID.String()
		resp.OrderID = &orderID
	}
	if log.EndTime != nil {
		end := log.EndTime.Format(time.RFC3339)
		resp.EndTime = &end
	}
	return resp
}

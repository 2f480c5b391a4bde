package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crmbackend/internal/model"
	"crmbackend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Monthly cap on regular hours: 40 h/week over 4 weeks. Anything beyond is
// overtime at 1.5x.
const regularMonthlyHours = 160

var (
	overtimeMultiplier = decimal.NewFromFloat(1.5)

	// Simplified Swedish payroll tax approximation. Not a certified tax
	// table: figures are estimates and must not drive actual disbursement.
	municipalTaxRate  = decimal.NewFromFloat(0.32)
	stateTaxRate      = decimal.NewFromFloat(0.20)
	stateTaxThreshold = decimal.NewFromInt(540700)
	employerFeeRate   = decimal.NewFromFloat(0.3142)
)

// --- DTOs ---

type UpsertEmployeeProfileRequest struct {
	UserID             string `json:"user_id" binding:"required"`
	EmploymentType     string `json:"employment_type" binding:"required,oneof=HOURLY SALARY"`
	HourlyRate         string `json:"hourly_rate"`
	MonthlySalary      string `json:"monthly_salary"`
	CommissionEligible bool   `json:"commission_eligible"`
	CommissionRate     string `json:"commission_rate"`
	Personnummer       string `json:"personnummer"`
	BankAccount        string `json:"bank_account"`
}

type TaxEstimate struct {
	EstimatedMunicipalTax string `json:"estimated_municipal_tax"`
	EstimatedStateTax     string `json:"estimated_state_tax"`
	EstimatedEmployerFees string `json:"estimated_employer_fees"` // informational, not deducted
	EstimatedNetPay       string `json:"estimated_net_pay"`
}

type EmployeePayrollSummary struct {
	UserID             string      `json:"user_id"`
	Username           string      `json:"username"`
	EmploymentType     string      `json:"employment_type"`
	RegularHours       string      `json:"regular_hours"`
	OvertimeHours      string      `json:"overtime_hours"`
	BasePay            string      `json:"base_pay"`
	OvertimePay        string      `json:"overtime_pay"`
	CommissionEarnings string      `json:"commission_earnings"`
	GrossPay           string      `json:"gross_pay"`
	Tax                TaxEstimate `json:"tax"`
	PendingLogs        int64       `json:"pending_logs"`
}

type PayrollSummary struct {
	Period                   string                   `json:"period"` // YYYY-MM
	Employees                []EmployeePayrollSummary `json:"employees"`
	TotalGross               string                   `json:"total_gross"`
	TotalCommission          string                   `json:"total_commission"`
	EmployeesPendingApproval int                      `json:"employees_pending_approval"`
}

type EmployeeProfileResponse struct {
	UserID             string `json:"user_id"`
	Username           string `json:"username,omitempty"`
	EmploymentType     string `json:"employment_type"`
	HourlyRate         string `json:"hourly_rate"`
	MonthlySalary      string `json:"monthly_salary"`
	CommissionEligible bool   `json:"commission_eligible"`
	CommissionRate     string `json:"commission_rate"`
	Personnummer       string `json:"personnummer"`
	BankAccount        string `json:"bank_account"`
}

// --- Interface ---

type PayrollService interface {
	UpsertEmployeeProfile(ctx context.Context, actorID string, req UpsertEmployeeProfileRequest) (EmployeeProfileResponse, error)
	GetEmployeeProfile(ctx context.Context, userID string) (EmployeeProfileResponse, error)
	GetEmployeeSummary(ctx context.Context, userID string, year, month int) (EmployeePayrollSummary, error)
	GetSummary(ctx context.Context, year, month int) (PayrollSummary, error)
	ApproveTimesheet(ctx context.Context, actorID, userID string, year, month int, note string) (int64, error)
}

type payrollService struct {
	profileRepo repository.EmployeeProfileRepository
	timeLogRepo repository.TimeLogRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	audit       AuditService
}

func NewPayrollService(
	profileRepo repository.EmployeeProfileRepository,
	timeLogRepo repository.TimeLogRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	audit AuditService,
) PayrollService {
	return &payrollService{
		profileRepo: profileRepo,
		timeLogRepo: timeLogRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		audit:       audit,
	}
}

// --- Pure computation ---

// splitHours divides total worked minutes into regular hours (capped at
// 160 h/month) and overtime hours.
func splitHours(totalMinutes int) (regular, overtime decimal.Decimal) {
	hours := decimal.NewFromInt(int64(totalMinutes)).Div(decimal.NewFromInt(60))
	limit := decimal.NewFromInt(regularMonthlyHours)
	if hours.LessThanOrEqual(limit) {
		return hours, decimal.Zero
	}
	return limit, hours.Sub(limit)
}

// computePay returns base and overtime pay for a profile. Hourly employees
// are paid per regular hour; salaried employees get the fixed monthly figure
// regardless of hours, with overtime priced off the implied hourly rate.
func computePay(profile *model.EmployeeProfile, regularHours, overtimeHours decimal.Decimal) (basePay, overtimePay decimal.Decimal) {
	switch profile.EmploymentType {
	case model.EmploymentSalary:
		basePay = profile.MonthlySalary
		impliedHourly := profile.MonthlySalary.Div(decimal.NewFromInt(regularMonthlyHours))
		overtimePay = overtimeHours.Mul(impliedHourly).Mul(overtimeMultiplier)
	default:
		basePay = regularHours.Mul(profile.HourlyRate)
		overtimePay = overtimeHours.Mul(profile.HourlyRate).Mul(overtimeMultiplier)
	}
	return basePay, overtimePay
}

// commissionShare computes what the given user earns on one order. The full
// commission is orderValue * rate%; with a secondary salesperson set, the
// split percentage goes to the secondary and the primary keeps the rest.
// Without a secondary, the primary keeps everything and a configured split
// percentage is ignored.
func commissionShare(order *model.Order, userID uuid.UUID, commissionRate decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	full := order.Value.Mul(commissionRate).Div(hundred)

	isPrimary := order.PrimarySalespersonID != nil && *order.PrimarySalespersonID == userID
	isSecondary := order.SecondarySalespersonID != nil && *order.SecondarySalespersonID == userID

	switch {
	case isSecondary:
		return full.Mul(order.CommissionSplitPct).Div(hundred)
	case isPrimary && order.SecondarySalespersonID != nil:
		return full.Mul(hundred.Sub(order.CommissionSplitPct)).Div(hundred)
	case isPrimary:
		return full
	}
	return decimal.Zero
}

// estimateSwedishTax applies the simplified flat model: 32% municipal tax,
// 20% state tax on gross above 540 700 kr, and the 31.42% employer fee shown
// for information only (it is not deducted from net pay).
func estimateSwedishTax(gross decimal.Decimal) (municipal, state, employerFees, net decimal.Decimal) {
	municipal = gross.Mul(municipalTaxRate)
	aboveThreshold := gross.Sub(stateTaxThreshold)
	if aboveThreshold.IsNegative() {
		aboveThreshold = decimal.Zero
	}
	state = aboveThreshold.Mul(stateTaxRate)
	employerFees = gross.Mul(employerFeeRate)
	net = gross.Sub(municipal).Sub(state)
	return municipal, state, employerFees, net
}

func monthBounds(year, month int) (from, to time.Time, err error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, errors.New("month must be between 1 and 12")
	}
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

// --- Implementation ---

func (s *payrollService) UpsertEmployeeProfile(ctx context.Context, actorID string, req UpsertEmployeeProfileRequest) (EmployeeProfileResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return EmployeeProfileResponse{}, fmt.Errorf("invalid user_id: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return EmployeeProfileResponse{}, errors.New("user not found")
	}

	parseAmount := func(raw, field string) (decimal.Decimal, error) {
		if raw == "" {
			return decimal.Zero, nil
		}
		v, parseErr := decimal.NewFromString(raw)
		if parseErr != nil {
			return decimal.Zero, fmt.Errorf("invalid %s: %w", field, parseErr)
		}
		if v.IsNegative() {
			return decimal.Zero, fmt.Errorf("%s must not be negative", field)
		}
		return v, nil
	}

	hourlyRate, err := parseAmount(req.HourlyRate, "hourly_rate")
	if err != nil {
		return EmployeeProfileResponse{}, err
	}
	monthlySalary, err := parseAmount(req.MonthlySalary, "monthly_salary")
	if err != nil {
		return EmployeeProfileResponse{}, err
	}
	commissionRate, err := parseAmount(req.CommissionRate, "commission_rate")
	if err != nil {
		return EmployeeProfileResponse{}, err
	}
	if commissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return EmployeeProfileResponse{}, errors.New("commission_rate must be between 0 and 100")
	}

	profile := &model.EmployeeProfile{
		UserID:             userID,
		EmploymentType:     req.EmploymentType,
		HourlyRate:         hourlyRate,
		MonthlySalary:      monthlySalary,
		CommissionEligible: req.CommissionEligible,
		CommissionRate:     commissionRate,
		Personnummer:       req.Personnummer,
		BankAccount:        req.BankAccount,
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return EmployeeProfileResponse{}, fmt.Errorf("failed to save employee profile: %w", err)
	}

	if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
		s.audit.Record(ctx, &parsed, model.ActionUpdateProfile, userID.String(), user.Username, map[string]string{
			"employment_type": req.EmploymentType,
		})
	}

	profile.User = user
	return toProfileResponse(profile), nil
}

func (s *payrollService) GetEmployeeProfile(ctx context.Context, userID string) (EmployeeProfileResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return EmployeeProfileResponse{}, fmt.Errorf("invalid user id: %w", err)
	}
	profile, err := s.profileRepo.FindByUserID(ctx, id)
	if err != nil {
		return EmployeeProfileResponse{}, errors.New("employee profile not found")
	}
	return toProfileResponse(profile), nil
}

func (s *payrollService) GetEmployeeSummary(ctx context.Context, userID string, year, month int) (EmployeePayrollSummary, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return EmployeePayrollSummary{}, fmt.Errorf("invalid user id: %w", err)
	}
	profile, err := s.profileRepo.FindByUserID(ctx, id)
	if err != nil {
		return EmployeePayrollSummary{}, errors.New("employee profile not found")
	}
	summary, _, err := s.summarize(ctx, profile, year, month)
	return summary, err
}

// payFigures carries the decimal values behind a summary so callers can
// aggregate without parsing the formatted strings back.
type payFigures struct {
	gross      decimal.Decimal
	commission decimal.Decimal
}

func (s *payrollService) summarize(ctx context.Context, profile *model.EmployeeProfile, year, month int) (EmployeePayrollSummary, payFigures, error) {
	from, to, err := monthBounds(year, month)
	if err != nil {
		return EmployeePayrollSummary{}, payFigures{}, err
	}

	logs, err := s.timeLogRepo.ListByEmployeePeriod(ctx, profile.UserID, from, to)
	if err != nil {
		return EmployeePayrollSummary{}, payFigures{}, fmt.Errorf("failed to fetch time logs: %w", err)
	}

	totalMinutes := 0
	pending := int64(0)
	for _, l := range logs {
		if l.EndTime == nil {
			continue // open logs don't count toward pay
		}
		totalMinutes += l.WorkedMinutes()
		if !l.IsApproved {
			pending++
		}
	}

	regularHours, overtimeHours := splitHours(totalMinutes)
	basePay, overtimePay := computePay(profile, regularHours, overtimeHours)

	commission := decimal.Zero
	if profile.CommissionEligible && profile.CommissionRate.IsPositive() {
		orders, ordErr := s.orderRepo.ListCommissionable(ctx, profile.UserID, from, to)
		if ordErr != nil {
			return EmployeePayrollSummary{}, payFigures{}, fmt.Errorf("failed to fetch commissionable orders: %w", ordErr)
		}
		for i := range orders {
			commission = commission.Add(commissionShare(&orders[i], profile.UserID, profile.CommissionRate))
		}
	}

	gross := basePay.Add(overtimePay).Add(commission)
	municipal, state, employerFees, net := estimateSwedishTax(gross)

	summary := EmployeePayrollSummary{
		UserID:             profile.UserID.String(),
		EmploymentType:     profile.EmploymentType,
		RegularHours:       regularHours.StringFixed(2),
		OvertimeHours:      overtimeHours.StringFixed(2),
		BasePay:            basePay.StringFixed(2),
		OvertimePay:        overtimePay.StringFixed(2),
		CommissionEarnings: commission.StringFixed(2),
		GrossPay:           gross.StringFixed(2),
		Tax: TaxEstimate{
			EstimatedMunicipalTax: municipal.StringFixed(2),
			EstimatedStateTax:     state.StringFixed(2),
			EstimatedEmployerFees: employerFees.StringFixed(2),
			EstimatedNetPay:       net.StringFixed(2),
		},
		PendingLogs: pending,
	}
	if profile.User != nil {
		summary.Username = profile.User.Username
	}
	return summary, payFigures{gross: gross, commission: commission}, nil
}

func (s *payrollService) GetSummary(ctx context.Context, year, month int) (PayrollSummary, error) {
	profiles, err := s.profileRepo.ListAll(ctx)
	if err != nil {
		return PayrollSummary{}, fmt.Errorf("failed to fetch employee profiles: %w", err)
	}

	summary := PayrollSummary{
		Period:    fmt.Sprintf("%04d-%02d", year, month),
		Employees: make([]EmployeePayrollSummary, 0, len(profiles)),
	}

	totalGross := decimal.Zero
	totalCommission := decimal.Zero
	for i := range profiles {
		emp, figures, sumErr := s.summarize(ctx, &profiles[i], year, month)
		if sumErr != nil {
			return PayrollSummary{}, sumErr
		}
		summary.Employees = append(summary.Employees, emp)

		totalGross = totalGross.Add(figures.gross)
		totalCommission = totalCommission.Add(figures.commission)
		if emp.PendingLogs > 0 {
			summary.EmployeesPendingApproval++
		}
	}

	summary.TotalGross = totalGross.StringFixed(2)
	summary.TotalCommission = totalCommission.StringFixed(2)
	return summary, nil
}

// ApproveTimesheet marks all of the employee's logs in the period approved.
// Pay is not recomputed here: the next summary read picks the change up.
func (s *payrollService) ApproveTimesheet(ctx context.Context, actorID, userID string, year, month int, note string) (int64, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return 0, fmt.Errorf("invalid user id: %w", err)
	}
	from, to, err := monthBounds(year, month)
	if err != nil {
		return 0, err
	}

	approved, err := s.timeLogRepo.ApproveByEmployeePeriod(ctx, id, from, to, note)
	if err != nil {
		return 0, fmt.Errorf("failed to approve timesheet: %w", err)
	}

	if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
		s.audit.Record(ctx, &parsed, model.ActionApproveTimesheet, userID, "", map[string]interface{}{
			"period":        fmt.Sprintf("%04d-%02d", year, month),
			"logs_approved": approved,
			"note":          note,
		})
	}
	return approved, nil
}

func toProfileResponse(profile *model.EmployeeProfile) EmployeeProfileResponse {
	resp := EmployeeProfileResponse{
		UserID:             profile.UserID.String(),
		EmploymentType:     profile.EmploymentType,
		HourlyRate:         profile.HourlyRate.StringFixed(2),
		MonthlySalary:      profile.MonthlySalary.StringFixed(2),
		CommissionEligible: profile.CommissionEligible,
		CommissionRate:     profile.CommissionRate.StringFixed(2),
		Personnummer:       profile.Personnummer,
		BankAccount:        profile.BankAccount,
	}
	if profile.User != nil {
		resp.Username = profile.User.Username
	}
	return resp
}

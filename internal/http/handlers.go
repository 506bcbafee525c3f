package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"contas/internal/core"
	"contas/internal/engine"
	"contas/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps storage and validation failures to status codes.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrTripNotFound),
		errors.Is(err, storage.ErrSnapshotNotFound),
		errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidExpenseType),
		errors.Is(err, core.ErrInvalidInstallments),
		errors.Is(err, core.ErrInvalidSplit),
		errors.Is(err, core.ErrInvalidPerson),
		errors.Is(err, core.ErrInvalidTransaction),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrSplitExceedsTotal),
		errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// parseMoney converts a decimal string ("1234.56" or "1234,56") to cents.
// Empty means zero.
func parseMoney(s string) (core.Money, error) {
	if s == "" {
		return core.Money{}, nil
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

type expenseRequest struct {
	Type             string  `json:"type"`
	Description      string  `json:"description"`
	TotalValue       string  `json:"totalValue"`
	Date             string  `json:"date"`
	Installments     int     `json:"installments"`
	PaidBy           string  `json:"paidBy"`
	Category         string  `json:"category"`
	SplitMethod      string  `json:"splitMethod"`
	SplitPercentage1 float64 `json:"splitPercentage1"`
	SpecificValueP1  string  `json:"specificValueP1"`
	SpecificValueP2  string  `json:"specificValueP2"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !readJSON(w, r, &req) {
		return
	}

	total, err := parseMoney(req.TotalValue)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid totalValue")
		return
	}
	spec1, err := parseMoney(req.SpecificValueP1)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid specificValueP1")
		return
	}
	spec2, err := parseMoney(req.SpecificValueP2)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid specificValueP2")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	expense := core.Expense{
		Type:             core.ExpenseType(req.Type),
		Description:      req.Description,
		TotalValue:       total,
		Date:             date,
		Installments:     req.Installments,
		PaidBy:           core.Person(req.PaidBy),
		Category:         req.Category,
		SplitMethod:      core.SplitMethod(req.SplitMethod),
		SplitPercentage1: req.SplitPercentage1,
		SpecificValueP1:  spec1,
		SpecificValueP2:  spec2,
	}

	created, err := s.ledger.AddExpense(r.Context(), expense)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettleReimbursement(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.SettleReimbursement(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type monthOverrideRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleSetMonthOverride(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonthKey(r.PathValue("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}
	var req monthOverrideRequest
	if !readJSON(w, r, &req) {
		return
	}
	value, err := parseMoney(req.Value)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid value")
		return
	}

	if err := s.ledger.SetFixedExpenseMonthValue(r.Context(), r.PathValue("id"), month, value); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type incomeRequest struct {
	Description string `json:"description"`
	Value       string `json:"value"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	PaidBy      string `json:"paidBy"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !readJSON(w, r, &req) {
		return
	}
	value, err := parseMoney(req.Value)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid value")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	created, err := s.ledger.AddIncome(r.Context(), core.Income{
		Description: req.Description,
		Value:       value,
		Date:        date,
		Category:    req.Category,
		PaidBy:      core.Person(req.PaidBy),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteIncome(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type recurringIncomeRequest struct {
	Description string `json:"description"`
	Value       string `json:"value"`
}

type coupleRequest struct {
	Person1Name             string                   `json:"person1Name"`
	Person2Name             string                   `json:"person2Name"`
	Salary1                 string                   `json:"salary1"`
	Salary2                 string                   `json:"salary2"`
	Salary1Description      string                   `json:"salary1Description"`
	Salary2Description      string                   `json:"salary2Description"`
	Person1RecurringIncomes []recurringIncomeRequest `json:"person1RecurringIncomes"`
	Person2RecurringIncomes []recurringIncomeRequest `json:"person2RecurringIncomes"`
}

func (s *Server) handleGetCouple(w http.ResponseWriter, r *http.Request) {
	couple, err := s.ledger.CoupleInfo(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, couple)
}

func (s *Server) handleSaveCouple(w http.ResponseWriter, r *http.Request) {
	var req coupleRequest
	if !readJSON(w, r, &req) {
		return
	}

	couple := core.CoupleInfo{
		Person1Name:        req.Person1Name,
		Person2Name:        req.Person2Name,
		Salary1Description: req.Salary1Description,
		Salary2Description: req.Salary2Description,
	}
	var err error
	if couple.Salary1, err = parseMoney(req.Salary1); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid salary1")
		return
	}
	if couple.Salary2, err = parseMoney(req.Salary2); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid salary2")
		return
	}
	for _, ri := range req.Person1RecurringIncomes {
		value, err := parseMoney(ri.Value)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid recurring income value")
			return
		}
		couple.Person1RecurringIncomes = append(couple.Person1RecurringIncomes,
			core.RecurringIncome{Description: ri.Description, Value: value})
	}
	for _, ri := range req.Person2RecurringIncomes {
		value, err := parseMoney(ri.Value)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid recurring income value")
			return
		}
		couple.Person2RecurringIncomes = append(couple.Person2RecurringIncomes,
			core.RecurringIncome{Description: ri.Description, Value: value})
	}

	if err := s.ledger.SaveCoupleInfo(r.Context(), couple); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type goalRequest struct {
	Name                  string `json:"name"`
	TargetValue           string `json:"targetValue"`
	MonthlyContributionP1 string `json:"monthlyContributionP1"`
	MonthlyContributionP2 string `json:"monthlyContributionP2"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !readJSON(w, r, &req) {
		return
	}

	goal := core.SavingsGoal{Name: req.Name}
	var err error
	if goal.TargetValue, err = parseMoney(req.TargetValue); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid targetValue")
		return
	}
	if goal.MonthlyContributionP1, err = parseMoney(req.MonthlyContributionP1); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid monthlyContributionP1")
		return
	}
	if goal.MonthlyContributionP2, err = parseMoney(req.MonthlyContributionP2); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid monthlyContributionP2")
		return
	}

	created, err := s.ledger.AddGoal(r.Context(), goal)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	month, ok := monthFromQuery(w, r)
	if !ok {
		return
	}

	goals, stats, err := s.ledger.ListGoals(r.Context(), month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	type goalWithStats struct {
		Goal  core.SavingsGoal `json:"goal"`
		Stats any              `json:"stats"`
	}
	out := make([]goalWithStats, len(goals))
	for i := range goals {
		out[i] = goalWithStats{Goal: goals[i], Stats: stats[i]}
	}
	writeJSON(w, http.StatusOK, out)
}

type goalTransactionRequest struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Person string `json:"person"`
	Date   string `json:"date"`
}

func (s *Server) handleCreateGoalTransaction(w http.ResponseWriter, r *http.Request) {
	var req goalTransactionRequest
	if !readJSON(w, r, &req) {
		return
	}
	value, err := parseMoney(req.Value)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid value")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	created, err := s.ledger.AddGoalTransaction(r.Context(), core.GoalTransaction{
		GoalID: r.PathValue("id"),
		Type:   core.GoalTransactionType(req.Type),
		Value:  value,
		Person: core.Person(req.Person),
		Date:   date,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type tripRequest struct {
	Name              string  `json:"name"`
	ProportionType    string  `json:"proportionType"`
	CustomPercentage1 float64 `json:"customPercentage1"`
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if !readJSON(w, r, &req) {
		return
	}

	created, err := s.ledger.CreateTrip(r.Context(), core.Trip{
		Name:              req.Name,
		ProportionType:    core.TripProportionType(req.ProportionType),
		CustomPercentage1: req.CustomPercentage1,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.ledger.ListTrips(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

type tripExpenseRequest struct {
	Description string `json:"description"`
	Value       string `json:"value"`
	PaidBy      string `json:"paidBy"`
}

func (s *Server) handleAddTripExpense(w http.ResponseWriter, r *http.Request) {
	var req tripExpenseRequest
	if !readJSON(w, r, &req) {
		return
	}
	value, err := parseMoney(req.Value)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid value")
		return
	}

	created, err := s.ledger.AddTripExpense(r.Context(), r.PathValue("id"), core.TripExpense{
		Description: req.Description,
		Value:       value,
		PaidBy:      core.TripPayer(req.PaidBy),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type tripDepositRequest struct {
	Person string `json:"person"`
	Value  string `json:"value"`
}

func (s *Server) handleAddTripDeposit(w http.ResponseWriter, r *http.Request) {
	var req tripDepositRequest
	if !readJSON(w, r, &req) {
		return
	}
	value, err := parseMoney(req.Value)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid value")
		return
	}

	created, err := s.ledger.AddTripDeposit(r.Context(), r.PathValue("id"), core.TripDeposit{
		Person: core.Person(req.Person),
		Value:  value,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTripSettlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := s.ledger.TripSettlement(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settlement)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month, ok := monthFromQuery(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	summary, err := s.ledger.MonthlySummary(ctx, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type snapshotResponse struct {
	Month      string                `json:"month"`
	ComputedAt time.Time             `json:"computedAt"`
	Summary    engine.MonthlySummary `json:"summary"`
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonthKey(r.PathValue("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	snap, err := s.ledger.MonthSnapshot(r.Context(), month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var summary engine.MonthlySummary
	if err := json.Unmarshal(snap.Payload, &summary); err != nil {
		writeDomainError(w, r, fmt.Errorf("decode snapshot for %s: %w", month, err))
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		Month:      month.String(),
		ComputedAt: snap.ComputedAt,
		Summary:    summary,
	})
}

// monthFromQuery reads ?month=YYYY-MM, defaulting to the current month.
func monthFromQuery(w http.ResponseWriter, r *http.Request) (core.MonthKey, bool) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		now := time.Now()
		return core.MonthKey{Year: now.Year(), Month: int(now.Month())}, true
	}
	month, err := core.ParseMonthKey(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return core.MonthKey{}, false
	}
	return month, true
}

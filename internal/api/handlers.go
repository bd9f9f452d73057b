package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/planning"
	"github.com/julianstephens/finlit/internal/reminders"
)

// Handler holds the services the routes call into.
type Handler struct {
	planning  *planning.Service
	reminders *reminders.Service
	ping      func(context.Context) error
}

// NewHandler wires the services. ping backs /health and may be nil.
func NewHandler(p *planning.Service, r *reminders.Service, ping func(context.Context) error) *Handler {
	return &Handler{planning: p, reminders: r, ping: ping}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	var in models.DebtAccountInput
	if err := decode(r, &in); err != nil {
		respondWithError(w, err)
		return
	}
	debt, err := h.planning.AddDebt(r.Context(), in)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, debt)
}

func (h *Handler) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := h.planning.ListDebts(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	if debts == nil {
		debts = []models.DebtAccount{}
	}
	respondWithJSON(w, http.StatusOK, debts)
}

func (h *Handler) handleGetDebt(w http.ResponseWriter, r *http.Request) {
	debt, err := h.planning.GetDebt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, debt)
}

func (h *Handler) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	var u models.DebtAccountUpdate
	if err := decode(r, &u); err != nil {
		respondWithError(w, err)
		return
	}
	debt, err := h.planning.UpdateDebt(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, debt)
}

func (h *Handler) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := h.planning.DeleteDebt(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// generateRequest omits months to use the configured default.
type generateRequest struct {
	Months *int `json:"months"`
}

func (h *Handler) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	months, err := optionalPositive("api.GenerateSchedule", "months", req.Months)
	if err != nil {
		respondWithError(w, err)
		return
	}
	result, err := h.planning.Generate(r.Context(), chi.URLParam(r, "id"), months)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListSchedule(w http.ResponseWriter, r *http.Request) {
	entries, err := h.planning.ListSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	if entries == nil {
		entries = []models.ScheduleEntry{}
	}
	respondWithJSON(w, http.StatusOK, entries)
}

type confirmRequest struct {
	AccountID  *string `json:"account_id"`
	CategoryID *string `json:"category_id"`
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	result, err := h.planning.Confirm(r.Context(), chi.URLParam(r, "id"), req.AccountID, req.CategoryID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var in models.ReminderInput
	if err := decode(r, &in); err != nil {
		respondWithError(w, err)
		return
	}
	rem, err := h.reminders.Create(r.Context(), in)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, rem)
}

func (h *Handler) respondReminders(w http.ResponseWriter, list []models.Reminder, err error) {
	if err != nil {
		respondWithError(w, err)
		return
	}
	if list == nil {
		list = []models.Reminder{}
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) handleListReminders(w http.ResponseWriter, r *http.Request) {
	list, err := h.reminders.List(r.Context())
	h.respondReminders(w, list, err)
}

func (h *Handler) handleDueReminders(w http.ResponseWriter, r *http.Request) {
	list, err := h.reminders.Due(r.Context())
	h.respondReminders(w, list, err)
}

func (h *Handler) respondReminder(w http.ResponseWriter, rem models.Reminder, err error) {
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rem)
}

func (h *Handler) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	rem, err := h.reminders.Get(r.Context(), chi.URLParam(r, "id"))
	h.respondReminder(w, rem, err)
}

func (h *Handler) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	var u models.ReminderUpdate
	if err := decode(r, &u); err != nil {
		respondWithError(w, err)
		return
	}
	rem, err := h.reminders.Update(r.Context(), chi.URLParam(r, "id"), u)
	h.respondReminder(w, rem, err)
}

func (h *Handler) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := h.reminders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// snoozeRequest omits minutes to use the reminder's own snooze length.
type snoozeRequest struct {
	Minutes *int `json:"minutes"`
}

func (h *Handler) handleSnooze(w http.ResponseWriter, r *http.Request) {
	var req snoozeRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	minutes, err := optionalPositive("api.Snooze", "minutes", req.Minutes)
	if err != nil {
		respondWithError(w, err)
		return
	}
	rem, err := h.reminders.Snooze(r.Context(), chi.URLParam(r, "id"), minutes)
	h.respondReminder(w, rem, err)
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	rem, err := h.reminders.Dismiss(r.Context(), chi.URLParam(r, "id"))
	h.respondReminder(w, rem, err)
}

func (h *Handler) handleMarkSent(w http.ResponseWriter, r *http.Request) {
	rem, err := h.reminders.MarkSent(r.Context(), chi.URLParam(r, "id"))
	h.respondReminder(w, rem, err)
}

func (h *Handler) handleReminderLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.reminders.Logs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	if logs == nil {
		logs = []models.ReminderLog{}
	}
	respondWithJSON(w, http.StatusOK, logs)
}

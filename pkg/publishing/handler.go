package publishing

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/internal/rest"
	"github.com/statsbudsjett/statsbudsjett/pkg/user"
)

type FiscalYearDTO struct {
	Id                 int        `json:"id"`
	Year               int        `json:"year"`
	Status             Status     `json:"status"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	// AllowedTransitions is only set on single-year reads, for the requesting user.
	AllowedTransitions []Status `json:"allowedTransitions,omitempty"`
}

type CreateYearDTO struct {
	Year int `json:"year"`
}

type StatusChangeDTO struct {
	Expected           Status     `json:"expected"`
	Status             Status     `json:"status"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt,omitempty"`
}

type RevisionDTO struct {
	Id                 int        `json:"id"`
	Action             Action     `json:"action"`
	FromStatus         Status     `json:"fromStatus,omitempty"`
	ToStatus           Status     `json:"toStatus"`
	ActorId            *int       `json:"actorId"`
	Timestamp          time.Time  `json:"timestamp"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt,omitempty"`
	Automatic          bool       `json:"automatic"`
}

type PublishDueDTO struct {
	Published []FiscalYearDTO `json:"published"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListYears godoc
// @Summary List fiscal years
// @Tags FiscalYear
// @Produce json
// @Success 200 {array} FiscalYearDTO
// @Failure 401 {object} rest.ErrorResponse "No user"
// @Router /api/admin/fiscalyears [get]
// @Security XUserId
func (h *Handler) ListYears(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing fiscal years")
	years, err := h.service.ListYears(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]FiscalYearDTO, 0, len(years))
	for _, year := range years {
		dtos = append(dtos, fiscalYearToDTO(year))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateYear godoc
// @Summary Create a fiscal year
// @Description Create a fiscal year in draft status
// @Tags FiscalYear
// @Accept json
// @Produce json
// @Param year body CreateYearDTO true "Year"
// @Success 201 {object} FiscalYearDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 403 {object} rest.ErrorResponse "Forbidden"
// @Failure 409 {object} rest.ErrorResponse "Year exists"
// @Router /api/admin/fiscalyears [post]
// @Security XUserId
func (h *Handler) CreateYear(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating fiscal year")
	var dto CreateYearDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	created, err := h.service.CreateYear(r.Context(), dto.Year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, fiscalYearToDTO(created))
}

// GetYear godoc
// @Summary Get a fiscal year
// @Tags FiscalYear
// @Produce json
// @Param id path int true "Fiscal year ID"
// @Success 200 {object} FiscalYearDTO
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/admin/fiscalyears/{id} [get]
// @Security XUserId
func (h *Handler) GetYear(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting fiscal year")
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	year, err := h.service.GetYear(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dto := fiscalYearToDTO(year)
	if current, err := user.CurrentUser(r.Context()); err == nil {
		dto.AllowedTransitions = AllowedTransitions(year.Status, current.Role)
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

// UpdateStatus godoc
// @Summary Change the status of a fiscal year
// @Description Applies a workflow transition. The expected status must match the stored one.
// @Tags FiscalYear
// @Accept json
// @Produce json
// @Param id path int true "Fiscal year ID"
// @Param change body StatusChangeDTO true "Status change"
// @Success 200 {object} FiscalYearDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 403 {object} rest.ErrorResponse "Role may not perform transition"
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Failure 409 {object} rest.ErrorResponse "Modified concurrently"
// @Failure 422 {object} rest.ErrorResponse "Invalid transition"
// @Router /api/admin/fiscalyears/{id}/status [put]
// @Security XUserId
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating fiscal year status")
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	var dto StatusChangeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	updated, err := h.service.Transition(r.Context(), id, dto.Expected, dto.Status, dto.ScheduledPublishAt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, fiscalYearToDTO(updated))
}

// ListRevisions godoc
// @Summary Get the revision history of a fiscal year
// @Tags FiscalYear
// @Produce json
// @Param id path int true "Fiscal year ID"
// @Success 200 {array} RevisionDTO
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/admin/fiscalyears/{id}/revisions [get]
// @Security XUserId
func (h *Handler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing fiscal year revisions")
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	revisions, err := h.service.History(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]RevisionDTO, 0, len(revisions))
	for _, revision := range revisions {
		dtos = append(dtos, revisionToDTO(revision))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CronHandler serves the scheduled publication trigger.
type CronHandler struct {
	service Service
	secret  string
}

func NewCronHandler(service Service, secret string) *CronHandler {
	return &CronHandler{service: service, secret: secret}
}

// PublishDue godoc
// @Summary Publish fiscal years whose scheduled publication has passed
// @Tags Cron
// @Produce json
// @Success 200 {object} PublishDueDTO
// @Failure 401 {object} rest.ErrorResponse "Unauthorized"
// @Router /api/cron/publish [post]
// @Security CronSecret
func (h *CronHandler) PublishDue(w http.ResponseWriter, r *http.Request) {
	log.Debug("Running scheduled publication")
	if !h.authorized(r) {
		rest.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	published, err := h.service.PublishDue(r.Context())
	dto := PublishDueDTO{Published: make([]FiscalYearDTO, 0, len(published))}
	for _, year := range published {
		dto.Published = append(dto.Published, fiscalYearToDTO(year))
	}
	if err != nil {
		log.Errorf("scheduled publication failed: %v", err)
		rest.WriteJSON(w, http.StatusInternalServerError, dto)
		return
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

func (h *CronHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		log.Warn("cron secret is not configured, rejecting scheduled publication call")
		return false
	}
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

func pathId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid fiscal year id")
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		rest.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrForbidden):
		rest.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrConcurrentModification), errors.Is(err, ErrYearExists):
		rest.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrYearNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidRequest):
		rest.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("fiscal year request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func fiscalYearToDTO(year FiscalYear) FiscalYearDTO {
	return FiscalYearDTO{
		Id:                 year.Id,
		Year:               year.Year,
		Status:             year.Status,
		ScheduledPublishAt: year.ScheduledPublishAt,
		CreatedAt:          year.CreatedAt,
		UpdatedAt:          year.UpdatedAt,
	}
}

func revisionToDTO(revision Revision) RevisionDTO {
	return RevisionDTO{
		Id:                 revision.Id,
		Action:             revision.Action,
		FromStatus:         revision.FromStatus,
		ToStatus:           revision.ToStatus,
		ActorId:            revision.ActorId,
		Timestamp:          revision.Timestamp,
		ScheduledPublishAt: revision.ScheduledPublishAt,
		Automatic:          revision.Automatic,
	}
}

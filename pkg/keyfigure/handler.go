package keyfigure

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/internal/rest"
	"github.com/statsbudsjett/statsbudsjett/pkg/user"
)

type KeyFigureDTO struct {
	Id           int       `json:"id"`
	FiscalYearId int       `json:"fiscalYearId"`
	Position     int       `json:"position"`
	Label        string    `json:"label"`
	Value        string    `json:"value,omitempty"`
	Unit         string    `json:"unit,omitempty"`
	Indicator    Indicator `json:"indicator,omitempty"`
	Ref          string    `json:"dataRef,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type KeyFigureInputDTO struct {
	Label     string    `json:"label"`
	Value     string    `json:"value,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	Indicator Indicator `json:"indicator,omitempty"`
	Ref       string    `json:"dataRef,omitempty"`
}

type RevisionDTO struct {
	Id          int               `json:"id"`
	KeyFigureId int               `json:"keyFigureId"`
	Action      Action            `json:"action"`
	Snapshot    KeyFigureInputDTO `json:"snapshot"`
	ActorId     *int              `json:"actorId"`
	Timestamp   time.Time         `json:"timestamp"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List the key figures of a fiscal year
// @Tags KeyFigure
// @Produce json
// @Param id path int true "Fiscal year ID"
// @Success 200 {array} KeyFigureDTO
// @Failure 401 {object} rest.ErrorResponse "No user"
// @Router /api/admin/fiscalyears/{id}/keyfigures [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing key figures")
	fiscalYearId, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	figures, err := h.service.List(r.Context(), fiscalYearId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]KeyFigureDTO, 0, len(figures))
	for _, figure := range figures {
		dtos = append(dtos, figureToDTO(figure))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Add a key figure to a fiscal year
// @Description The figure is appended after the existing ones
// @Tags KeyFigure
// @Accept json
// @Produce json
// @Param id path int true "Fiscal year ID"
// @Param figure body KeyFigureInputDTO true "Key figure"
// @Success 201 {object} KeyFigureDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid key figure"
// @Failure 403 {object} rest.ErrorResponse "Forbidden"
// @Failure 404 {object} rest.ErrorResponse "Fiscal year not found"
// @Router /api/admin/fiscalyears/{id}/keyfigures [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating key figure")
	fiscalYearId, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var dto KeyFigureInputDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	created, err := h.service.Create(r.Context(), fiscalYearId, dtoToFigure(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, figureToDTO(created))
}

// Update godoc
// @Summary Replace a key figure
// @Tags KeyFigure
// @Accept json
// @Produce json
// @Param figureId path int true "Key figure ID"
// @Param figure body KeyFigureInputDTO true "Key figure"
// @Success 200 {object} KeyFigureDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid key figure"
// @Failure 403 {object} rest.ErrorResponse "Forbidden"
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/admin/keyfigures/{figureId} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating key figure")
	id, ok := pathInt(w, r, "figureId")
	if !ok {
		return
	}
	var dto KeyFigureInputDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	updated, err := h.service.Update(r.Context(), id, dtoToFigure(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, figureToDTO(updated))
}

// Delete godoc
// @Summary Delete a key figure
// @Tags KeyFigure
// @Param figureId path int true "Key figure ID"
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "Forbidden"
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/admin/keyfigures/{figureId} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log.Debug("Deleting key figure")
	id, ok := pathInt(w, r, "figureId")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRevisions godoc
// @Summary Get the key figure revisions of a fiscal year
// @Tags KeyFigure
// @Produce json
// @Param id path int true "Fiscal year ID"
// @Success 200 {array} RevisionDTO
// @Router /api/admin/fiscalyears/{id}/keyfigures/revisions [get]
// @Security XUserId
func (h *Handler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing key figure revisions")
	fiscalYearId, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	revisions, err := h.service.History(r.Context(), fiscalYearId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]RevisionDTO, 0, len(revisions))
	for _, revision := range revisions {
		dtos = append(dtos, RevisionDTO{
			Id:          revision.Id,
			KeyFigureId: revision.KeyFigureId,
			Action:      revision.Action,
			Snapshot:    figureToInputDTO(revision.Snapshot),
			ActorId:     revision.ActorId,
			Timestamp:   revision.Timestamp,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		rest.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidFigure):
		rest.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrFigureNotFound), errors.Is(err, ErrFiscalYearNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error())
	default:
		log.Errorf("key figure request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func dtoToFigure(dto KeyFigureInputDTO) Figure {
	return Figure{
		Label:     dto.Label,
		Value:     dto.Value,
		Ref:       dto.Ref,
		Unit:      dto.Unit,
		Indicator: dto.Indicator,
	}
}

func figureToInputDTO(figure Figure) KeyFigureInputDTO {
	return KeyFigureInputDTO{
		Label:     figure.Label,
		Value:     figure.Value,
		Unit:      figure.Unit,
		Indicator: figure.Indicator,
		Ref:       figure.Ref,
	}
}

func figureToDTO(figure StoredFigure) KeyFigureDTO {
	return KeyFigureDTO{
		Id:           figure.Id,
		FiscalYearId: figure.FiscalYearId,
		Position:     figure.Position,
		Label:        figure.Label,
		Value:        figure.Value,
		Unit:         figure.Unit,
		Indicator:    figure.Indicator,
		Ref:          figure.Ref,
		CreatedAt:    figure.CreatedAt,
		UpdatedAt:    figure.UpdatedAt,
	}
}

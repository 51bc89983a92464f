package explorer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/internal/rest"
	"github.com/statsbudsjett/statsbudsjett/pkg/budget"
	"github.com/statsbudsjett/statsbudsjett/pkg/drilldown"
	"github.com/statsbudsjett/statsbudsjett/pkg/keyfigure"
)

type ResolveDTO struct {
	Path      string   `json:"path"`
	Value     *float64 `json:"value"`
	Formatted string   `json:"formatted"`
}

type DrilldownRequestDTO struct {
	Side  budget.Side      `json:"side"`
	Steps []drilldown.Step `json:"steps"`
}

type DrilldownDTO struct {
	State       drilldown.State        `json:"state"`
	Depth       int                    `json:"depth"`
	Applied     int                    `json:"applied"`
	Rejected    bool                   `json:"rejected"`
	Breadcrumbs []drilldown.Breadcrumb `json:"breadcrumbs"`
	Children    []drilldown.Child      `json:"children"`
}

type Handler struct {
	service     Service
	csvRenderer ChartRenderer
}

func NewHandler(service Service, csvRenderer ChartRenderer) *Handler {
	return &Handler{service: service, csvRenderer: csvRenderer}
}

// Resolve godoc
// @Summary Resolve a data reference
// @Description Evaluates a path such as utgifter.omraader[omr_nr=4].total against the budget year
// @Tags Explorer
// @Produce json
// @Param year path int true "Budget year"
// @Param path query string true "Data reference"
// @Success 200 {object} ResolveDTO
// @Failure 404 {object} ResolveDTO "Not resolvable, formatted holds the placeholder"
// @Router /api/years/{year}/resolve [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	log.Debug("Resolving data reference")
	year, ok := pathYear(w, r)
	if !ok {
		return
	}
	path := r.URL.Query().Get("path")
	resolved, err := h.service.Resolve(r.Context(), year, path)
	if errors.Is(err, ErrPathNotResolved) {
		rest.WriteJSON(w, http.StatusNotFound, ResolveDTO{Path: path, Formatted: keyfigure.Placeholder})
		return
	} else if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ResolveDTO{Path: resolved.Path, Value: &resolved.Value, Formatted: resolved.Formatted})
}

// Aggregate godoc
// @Summary Get the chart segments of a budget year
// @Tags Explorer
// @Description Responds with CSV when the request accepts text/csv
// @Produce json,text/csv
// @Param year path int true "Budget year"
// @Success 200 {object} aggregate.Chart
// @Failure 404 {object} rest.ErrorResponse "Year not found"
// @Router /api/years/{year}/aggregate [get]
func (h *Handler) Aggregate(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting chart segments")
	year, ok := pathYear(w, r)
	if !ok {
		return
	}
	chart, err := h.service.Chart(r.Context(), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if r.Header.Get("Accept") == "text/csv" {
		out, err := h.csvRenderer.RenderChart(chart)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(out)); err != nil {
			log.Errorf("Error writing csv response: %v", err)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, chart)
}

// Area godoc
// @Summary Get one program area with its categories, chapters and line items
// @Tags Explorer
// @Produce json
// @Param year path int true "Budget year"
// @Param side path string true "utgifter or inntekter"
// @Param areaNumber path int true "Program area number"
// @Success 200 {object} budget.ProgramArea
// @Failure 404 {object} rest.ErrorResponse "Not found"
// @Router /api/years/{year}/{side}/areas/{areaNumber} [get]
func (h *Handler) Area(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting program area")
	year, ok := pathYear(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	number, err := strconv.Atoi(vars["areaNumber"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid area number")
		return
	}
	area, err := h.service.Area(r.Context(), year, budget.Side(vars["side"]), number)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, area)
}

// Drilldown godoc
// @Summary Replay drill-down steps
// @Description Applies the steps in order, stopping at the first one that is not allowed, and returns the resulting panel
// @Tags Explorer
// @Accept json
// @Produce json
// @Param year path int true "Budget year"
// @Param request body DrilldownRequestDTO true "Side and steps"
// @Success 200 {object} DrilldownDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {object} rest.ErrorResponse "Year not found"
// @Router /api/years/{year}/drilldown [post]
func (h *Handler) Drilldown(w http.ResponseWriter, r *http.Request) {
	log.Debug("Replaying drill-down")
	year, ok := pathYear(w, r)
	if !ok {
		return
	}
	var dto DrilldownRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	view, err := h.service.Drilldown(r.Context(), year, dto.Side, dto.Steps)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, DrilldownDTO{
		State:       view.State,
		Depth:       view.Depth,
		Applied:     view.Applied,
		Rejected:    view.Applied < len(dto.Steps),
		Breadcrumbs: view.Breadcrumbs,
		Children:    view.Children,
	})
}

// KeyFigures godoc
// @Summary Get the key figures of a published budget year
// @Tags Explorer
// @Produce json
// @Param year path int true "Budget year"
// @Success 200 {object} keyfigure.RenderedBlock
// @Failure 404 {object} rest.ErrorResponse "Year not found or not published"
// @Router /api/years/{year}/keyfigures [get]
func (h *Handler) KeyFigures(w http.ResponseWriter, r *http.Request) {
	log.Debug("Rendering key figures")
	year, ok := pathYear(w, r)
	if !ok {
		return
	}
	block, err := h.service.KeyFigures(r.Context(), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, block)
}

func pathYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year")
		return 0, false
	}
	return year, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotPublished):
		rest.WriteError(w, http.StatusNotFound, budget.ErrYearNotFound.Error())
	case errors.Is(err, budget.ErrYearNotFound), errors.Is(err, ErrAreaNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnknownSide):
		rest.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("explorer request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

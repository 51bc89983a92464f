package keyfigure

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *mux.Router {
	h := NewHandler(service)
	r := mux.NewRouter()
	r.HandleFunc("/api/admin/fiscalyears/{id}/keyfigures", h.List).Methods("GET")
	r.HandleFunc("/api/admin/fiscalyears/{id}/keyfigures", h.Create).Methods("POST")
	r.HandleFunc("/api/admin/fiscalyears/{id}/keyfigures/revisions", h.ListRevisions).Methods("GET")
	r.HandleFunc("/api/admin/keyfigures/{figureId}", h.Update).Methods("PUT")
	r.HandleFunc("/api/admin/keyfigures/{figureId}", h.Delete).Methods("DELETE")
	return r
}

func request(t *testing.T, ctx context.Context, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(ctx)
	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, req)
	return rr
}

func figuresPath(id int) string {
	return "/api/admin/fiscalyears/" + strconv.Itoa(id) + "/keyfigures"
}

func figurePath(id int) string {
	return "/api/admin/keyfigures/" + strconv.Itoa(id)
}

func TestHandler_Create(t *testing.T) {
	input := KeyFigureInputDTO{Label: "Forsvar", Ref: "utgifter.omraader[omr_nr=4].total", Unit: "mrd. kr", Indicator: IndicatorUp}

	t.Run("should create a key figure", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		rr := request(t, as(editor), http.MethodPost, figuresPath(fiscalYearId), input)

		// then
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var dto KeyFigureDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
		assert.NotZero(t, dto.Id)
		assert.Equal(t, fiscalYearId, dto.FiscalYearId)
		assert.Equal(t, "Forsvar", dto.Label)
		assert.Equal(t, IndicatorUp, dto.Indicator)
		assert.Equal(t, input.Ref, dto.Ref)
	})

	t.Run("should map errors to status codes", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		cases := []struct {
			name string
			ctx  context.Context
			path string
			body any
			want int
		}{
			{"no user", context.Background(), figuresPath(fiscalYearId), input, http.StatusUnauthorized},
			{"approver", as(approver), figuresPath(fiscalYearId), input, http.StatusForbidden},
			{"reader", as(reader), figuresPath(fiscalYearId), input, http.StatusForbidden},
			{"invalid figure", as(editor), figuresPath(fiscalYearId), KeyFigureInputDTO{Label: "Tom"}, http.StatusBadRequest},
			{"unknown fiscal year", as(editor), figuresPath(404), input, http.StatusNotFound},
			{"bad id", as(editor), "/api/admin/fiscalyears/x/keyfigures", input, http.StatusBadRequest},
			{"bad body", as(editor), figuresPath(fiscalYearId), "{", http.StatusBadRequest},
		}
		for _, c := range cases {
			rr := request(t, c.ctx, http.MethodPost, c.path, c.body)
			assert.Equal(t, c.want, rr.Code, c.name)
		}
	})
}

func TestHandler_UpdateDeleteAndRevisions(t *testing.T) {
	t.Run("should update, delete and list the revisions", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(as(editor), fiscalYearId, defence)
		require.NoError(t, err)

		// when
		updateRr := request(t, as(admin), http.MethodPut, figurePath(created.Id), KeyFigureInputDTO{Label: "Forsvar", Value: "112,0", Unit: "mrd. kr"})
		deleteRr := request(t, as(editor), http.MethodDelete, figurePath(created.Id), nil)
		revisionsRr := request(t, as(reader), http.MethodGet, figuresPath(fiscalYearId)+"/revisions", nil)

		// then
		require.Equal(t, http.StatusOK, updateRr.Code, updateRr.Body.String())
		assert.Equal(t, http.StatusNoContent, deleteRr.Code)
		require.Equal(t, http.StatusOK, revisionsRr.Code)
		var revisions []RevisionDTO
		require.NoError(t, json.Unmarshal(revisionsRr.Body.Bytes(), &revisions))
		require.Len(t, revisions, 3)
		assert.Equal(t, ActionUpdate, revisions[1].Action)
		assert.Equal(t, "112,0", revisions[1].Snapshot.Value)
		assert.Equal(t, ActionDelete, revisions[2].Action)
	})

	t.Run("should return not found for unknown figures", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		rr := request(t, as(editor), http.MethodDelete, figurePath(404), nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("should list figures for any signed-in user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(as(editor), fiscalYearId, defence)
		require.NoError(t, err)

		rr := request(t, as(reader), http.MethodGet, figuresPath(fiscalYearId), nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var dtos []KeyFigureDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dtos))
		require.Len(t, dtos, 1)
		assert.Equal(t, "Forsvar", dtos[0].Label)
	})
}

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/statsbudsjett/statsbudsjett/internal/rest"
)

type UserDTO struct {
	Id    int    `json:"id"`
	Uid   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type RoleDTO struct {
	Role Role `json:"role"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CreateUser godoc
// @Summary Create a new CMS user
// @Description Register a new CMS user. The first user becomes administrator.
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 401 {object} rest.ErrorResponse "No user"
// @Failure 403 {object} rest.ErrorResponse "Forbidden"
// @Failure 409 {object} rest.ErrorResponse "User exists"
// @Router /api/admin/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating user")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	created, err := h.userService.CreateUser(r.Context(), dtoToUser(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, userToDTO(created))
}

// CurrentUser godoc
// @Summary Get current user
// @Description Retrieve the user the request is authenticated as
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 401 {object} rest.ErrorResponse "No user"
// @Router /api/admin/users/current [get]
// @Security XUserId
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting current user")
	current, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(current))
}

// ListUsers godoc
// @Summary List CMS users
// @Tags User
// @Produce json
// @Success 200 {array} UserDTO
// @Failure 403 {object} rest.ErrorResponse "Forbidden"
// @Router /api/admin/users [get]
// @Security XUserId
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing users")
	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userToDTO(u))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// UpdateRole godoc
// @Summary Change the role of a CMS user
// @Tags User
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param role body RoleDTO true "Role"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 403 {object} rest.ErrorResponse "Forbidden"
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Router /api/admin/users/{userId}/role [put]
// @Security XUserId
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating user role")
	userId, err := strconv.Atoi(mux.Vars(r)["userId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var dto RoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	updated, err := h.userService.UpdateRole(r.Context(), userId, dto.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(updated))
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		rest.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrUserDataInvalid):
		rest.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUserExists):
		rest.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUserNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error())
	default:
		log.Errorf("user request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func userToDTO(u User) UserDTO {
	return UserDTO{Id: u.Id, Uid: u.Uid, Name: u.Name, Email: u.Email, Role: u.Role}
}

func dtoToUser(dto UserDTO) User {
	return User{Uid: dto.Uid, Name: dto.Name, Email: dto.Email, Role: dto.Role}
}

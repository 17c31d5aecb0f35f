package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/login-redirect/pkg/errors"
	rolepkg "github.com/tendant/login-redirect/pkg/role"
)

type Handle struct {
	roleService *rolepkg.RoleService
}

func NewHandle(roleService *rolepkg.RoleService) *Handle {
	return &Handle{
		roleService: roleService,
	}
}

type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateRoleRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Position    *int   `json:"position,omitempty"`
}

type RoleUsersResponse struct {
	Role  string      `json:"role"`
	Users []uuid.UUID `json:"users"`
}

// Get handles retrieving the ordered list of roles
func (h *Handle) Get(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.FindRoles(r.Context())
	if err != nil {
		slog.Error("Failed to find roles", "error", err)
		renderError(w, r, errors.InternalWrap(err, "failed to find roles"))
		return
	}

	response := make([]RoleResponse, len(roles))
	for i, role := range roles {
		response[i] = toRoleResponse(role)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

// Post handles creating a new role
func (h *Handle) Post(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.InvalidInput("body", err.Error()))
		return
	}

	var params rolepkg.CreateRoleParams
	copier.Copy(&params, &req)

	created, err := h.roleService.CreateRole(r.Context(), params)
	if err != nil {
		renderError(w, r, mapRoleError(err, req.Name))
		return
	}

	slog.Info("Role created", "name", created.Name, "position", created.Position)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toRoleResponse(created))
}

// Delete handles removing a role that no user holds
func (h *Handle) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.roleService.DeleteRole(r.Context(), name); err != nil {
		renderError(w, r, mapRoleError(err, name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUsers lists the users holding a role
func (h *Handle) GetUsers(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	users, err := h.roleService.GetRoleUsers(r.Context(), name)
	if err != nil {
		renderError(w, r, mapRoleError(err, name))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RoleUsersResponse{Role: name, Users: users})
}

// PutUser assigns a role to a user
func (h *Handle) PutUser(w http.ResponseWriter, r *http.Request) {
	name, userID, ok := userParams(w, r)
	if !ok {
		return
	}
	if err := h.roleService.AddUserToRole(r.Context(), name, userID); err != nil {
		renderError(w, r, mapRoleError(err, name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser removes a role from a user
func (h *Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	name, userID, ok := userParams(w, r)
	if !ok {
		return
	}
	if err := h.roleService.RemoveUserFromRole(r.Context(), name, userID); err != nil {
		renderError(w, r, mapRoleError(err, name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userParams(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		renderError(w, r, errors.InvalidInput("userID", "must be a UUID"))
		return "", uuid.Nil, false
	}
	return chi.URLParam(r, "name"), userID, true
}

func toRoleResponse(role rolepkg.Role) RoleResponse {
	var response RoleResponse
	copier.Copy(&response, &role)
	response.ID = role.ID.String()
	return response
}

func mapRoleError(err error, name string) error {
	switch {
	case stderrors.Is(err, rolepkg.ErrEmptyRoleName):
		return errors.InvalidInput("name", "cannot be empty")
	case stderrors.Is(err, rolepkg.ErrRoleNotFound):
		return errors.Newf(errors.ErrCodeRoleNotFound, "role not found: %s", name)
	case stderrors.Is(err, rolepkg.ErrRoleAlreadyExists):
		return errors.AlreadyExists("role", name)
	case stderrors.Is(err, rolepkg.ErrRoleHasUsers):
		return errors.Newf(errors.ErrCodeRoleInUse, "role still has users: %s", name)
	default:
		slog.Error("Role operation failed", "role", name, "error", err)
		return errors.InternalWrap(err, "role operation failed")
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, response := errors.ToResponse(err)
	render.Status(r, status)
	render.JSON(w, r, response)
}

// Handler returns a http.Handler for the role API
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.Get)
	r.Post("/", h.Post)
	r.Delete("/{name}", h.Delete)
	r.Get("/{name}/users", h.GetUsers)
	r.Put("/{name}/users/{userID}", h.PutUser)
	r.Delete("/{name}/users/{userID}", h.DeleteUser)

	return r
}

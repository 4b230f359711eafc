package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/directory"
	"github.com/teamwell/staffd/internal/errs"
	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/roles"
)

// orgOverride reads the optional explicit organization id used by
// SUPER_ADMIN for cross-tenant operations.
func orgOverride(r *http.Request) (*uuid.UUID, error) {
	raw := r.URL.Query().Get("orgId")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.Validation("Invalid organization id")
	}
	return &id, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errs.Validation("Invalid id")
	}
	return id, nil
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	input := directory.ListEmployeesInput{
		OrgID:  override,
		Status: models.UserStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("teamId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, errs.Validation("Invalid team id"))
			return
		}
		input.TeamID = &id
	}
	if raw := r.URL.Query().Get("departmentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, errs.Validation("Invalid department id"))
			return
		}
		input.DepartmentID = &id
	}

	employees, err := s.directory.ListEmployees(r.Context(), viewer, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"employees": employees})
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := s.directory.GetEmployee(r.Context(), viewer, userID, override)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

type updateEmployeeRequest struct {
	Name         *string            `json:"name"`
	Title        *string            `json:"title"`
	Role         *roles.Role        `json:"role"`
	Status       *models.UserStatus `json:"status"`
	DepartmentID *uuid.UUID         `json:"departmentId"`
	TeamID       *uuid.UUID         `json:"teamId"`
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.directory.UpdateEmployee(r.Context(), viewer, userID, directory.UpdateEmployeeInput{
		OrgID:        override,
		Name:         req.Name,
		Title:        req.Title,
		Role:         req.Role,
		Status:       req.Status,
		DepartmentID: req.DepartmentID,
		TeamID:       req.TeamID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleTerminateEmployee(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.directory.TerminateEmployee(r.Context(), viewer, userID, override); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.directory.DeleteEmployee(r.Context(), viewer, userID, override); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

type createNamedRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	depts, err := s.directory.ListDepartments(r.Context(), viewer, override)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"departments": depts})
}

func (s *Server) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createNamedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	dept, err := s.directory.CreateDepartment(r.Context(), viewer, req.Name, override)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dept)
}

type assignHeadRequest struct {
	HeadUserID uuid.UUID `json:"headUserId"`
}

func (s *Server) handleAssignHead(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	deptID, err := pathUUID(r, "deptID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req assignHeadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	dept, err := s.directory.AssignHead(r.Context(), viewer, deptID, req.HeadUserID, override)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dept)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	teams, err := s.directory.ListTeams(r.Context(), viewer, override)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createNamedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	team, err := s.directory.CreateTeam(r.Context(), viewer, req.Name, override)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, team)
}

type assignMembersRequest struct {
	UserIDs []uuid.UUID `json:"userIds"`
}

func (s *Server) handleAssignTeamMembers(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	teamID, err := pathUUID(r, "teamID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req assignMembersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.directory.AssignTeamMembers(r.Context(), viewer, teamID, req.UserIDs, override); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	projects, err := s.directory.ListProjects(r.Context(), viewer, override)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

type createProjectRequest struct {
	Name   string     `json:"name"`
	TeamID *uuid.UUID `json:"teamId"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	override, err := orgOverride(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.directory.CreateProject(r.Context(), viewer, directory.CreateProjectInput{
		OrgID:  override,
		Name:   req.Name,
		TeamID: req.TeamID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

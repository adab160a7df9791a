package handlers

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/google/uuid"

	"researchoffice/internal/models"
)

var projectCodePattern = regexp.MustCompile(`^RES-\d{4}-\d{3}$`)

func TestCreateProject(t *testing.T) {
	env := newTestEnv(t)
	sess := testSession(uuid.New(), models.RoleViewer)

	var codes []string
	for _, title := range []string{"Rice", "Wheat"} {
		rec := httptest.NewRecorder()
		env.API.CreateProject(rec, newRequest(http.MethodPost, "/api/projects",
			map[string]any{"title": title, "description": "d"}, sess))
		if rec.Code != http.StatusCreated {
			t.Fatalf("status: got %d, want 201", rec.Code)
		}
		p := decode[models.Project](t, rec)
		if p.Status != models.ProjectPending {
			t.Errorf("status: got %s, want PENDING", p.Status)
		}
		if p.OwnerID != sess.UserID {
			t.Error("owner should be the caller")
		}
		if !projectCodePattern.MatchString(p.Code) {
			t.Errorf("code %q does not match RES-<year>-<NNN>", p.Code)
		}
		codes = append(codes, p.Code)
	}
	if codes[0] == codes[1] {
		t.Errorf("codes must be unique, got %v", codes)
	}

	rec := httptest.NewRecorder()
	env.API.CreateProject(rec, newRequest(http.MethodPost, "/api/projects", map[string]any{"description": "d"}, sess))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing title: got %d, want 400", rec.Code)
	}
}

func TestListProjectsScope(t *testing.T) {
	env := newTestEnv(t)
	mine := testSession(uuid.New(), models.RoleViewer)
	env.Projects.Create(mine.UserID, "Mine", "")
	env.Projects.Create(uuid.New(), "Theirs", "")

	rec := httptest.NewRecorder()
	env.API.ListProjects(rec, newRequest(http.MethodGet, "/api/projects", nil, mine))
	if got := decode[[]models.Project](t, rec); len(got) != 1 || got[0].Title != "Mine" {
		t.Errorf("viewer should see only own projects, got %+v", got)
	}

	rec = httptest.NewRecorder()
	env.API.ListProjects(rec, newRequest(http.MethodGet, "/api/projects", nil, testSession(uuid.New(), models.RoleAdmin)))
	all := decode[[]models.Project](t, rec)
	if len(all) != 2 {
		t.Fatalf("admin should see every project, got %d", len(all))
	}
	if all[0].Owner == nil || all[0].Owner.Email == "" {
		t.Error("admin listing should carry owner details")
	}

	rec = httptest.NewRecorder()
	env.API.ListProjects(rec, newRequest(http.MethodGet, "/api/projects", nil, testSession(uuid.New(), models.RoleEditor)))
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("no projects should encode as [], got %q", body)
	}
}

func TestUpdateProjectStatus(t *testing.T) {
	env := newTestEnv(t)
	p, _ := env.Projects.Create(uuid.New(), "Rice", "")
	id := p.ID.String()
	admin := testSession(uuid.New(), models.RoleAdmin)

	tests := []struct {
		name   string
		id     string
		status string
		want   int
	}{
		{"approve", id, "APPROVED", http.StatusOK},
		{"back to review", id, "REVIEW", http.StatusOK},
		{"invalid status", id, "DONE", http.StatusBadRequest},
		{"lowercase is invalid", id, "approved", http.StatusBadRequest},
		{"unknown project", uuid.NewString(), "APPROVED", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.API.UpdateProjectStatus(rec, newRequest(http.MethodPatch, "/api/projects/"+tt.id,
				map[string]any{"status": tt.status}, admin, "id", tt.id))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

package project_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/core/common/testdb"
	commentDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/comment"
	projectDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
	"github.com/frahmantamala/project-management/internal/project"
	projectPostgres "github.com/frahmantamala/project-management/internal/project/postgres"
	"github.com/frahmantamala/project-management/internal/projection"
	"github.com/frahmantamala/project-management/internal/task"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Project Service", func() {
	var (
		db    *gorm.DB
		ctx   context.Context
		svc   *project.Service
		admin *userDatamodel.User
		alice *userDatamodel.User
		bob   *userDatamodel.User
		actor *internal.Actor
	)

	BeforeEach(func() {
		var (
			err    error
			sqlxDB *sqlx.DB
		)
		ctx = context.Background()

		db, sqlxDB, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		admin, err = testdb.CreateUser(db, "admin", "Ada Admin", internal.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())
		alice, err = testdb.CreateUser(db, "alice", "Alice", internal.RoleEmployee)
		Expect(err).NotTo(HaveOccurred())
		bob, err = testdb.CreateUser(db, "bob", "", internal.RoleEmployee)
		Expect(err).NotTo(HaveOccurred())

		actor = &internal.Actor{ID: admin.ID, Username: admin.Username, Role: internal.RoleAdmin}
		svc = project.NewService(projectPostgres.NewProjectRepository(db), projection.NewReader(sqlxDB), slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	count := func(model interface{}) int64 {
		var n int64
		Expect(db.Model(model).Count(&n).Error).To(Succeed())
		return n
	}

	Describe("AddProject", func() {
		It("returns exactly the assigned employees' names", func() {
			p, err := svc.AddProject(ctx, actor, project.CreateProjectDTO{
				Name:                "Apollo",
				Description:         "moon",
				AssignedEmployeeIDs: []int64{alice.ID, bob.ID},
			})
			Expect(err).NotTo(HaveOccurred())

			fetched, err := svc.GetProjectByID(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.Title).To(Equal("Apollo"))
			Expect(fetched.AssignedEmployeeNames).To(ConsistOf("Alice", "bob"))
			Expect(fetched.CreatedByAdminName).To(Equal("Ada Admin"))
		})

		It("always starts with the Priority status", func() {
			p, err := svc.AddProject(ctx, actor, project.CreateProjectDTO{Name: "Apollo", Description: "moon"})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(project.DefaultStatus))
		})

		It("creates nested tasks and comments under the creating admin", func() {
			p, err := svc.AddProject(ctx, actor, project.CreateProjectDTO{
				Name:        "Apollo",
				Description: "moon",
				Tasks: []task.CreateTaskDTO{
					{Title: "Design", AssignedEmployeeIDs: []int64{alice.ID}},
					{Title: "Build"},
				},
				Comments: []string{"kickoff", "go"},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(p.Tasks).To(HaveLen(2))
			Expect(p.Tasks[0].Title).To(Equal("Design"))
			Expect(p.Tasks[0].AssignedByAdminName).To(Equal("Ada Admin"))
			Expect(p.Tasks[0].AssignedEmployeeNames).To(Equal([]string{"Alice"}))
			Expect(p.Tasks[0].ProjectName).To(Equal("Apollo"))
			Expect(p.Comments).To(HaveLen(2))
			Expect(p.Comments[0].AuthorName).To(Equal("Ada Admin"))
			Expect(p.Comments[0].UpdatedAt).To(BeNil())
		})

		It("serialises empty collections as arrays", func() {
			p, err := svc.AddProject(ctx, actor, project.CreateProjectDTO{Name: "Apollo", Description: "moon"})
			Expect(err).NotTo(HaveOccurred())

			raw, err := json.Marshal(p)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`"assignedEmployeeNames":[]`))
			Expect(string(raw)).To(ContainSubstring(`"tasks":[]`))
			Expect(string(raw)).To(ContainSubstring(`"comments":[]`))
		})

		It("writes nothing when a nested assignee is unknown", func() {
			_, err := svc.AddProject(ctx, actor, project.CreateProjectDTO{
				Name:                "Apollo",
				Description:         "moon",
				AssignedEmployeeIDs: []int64{alice.ID},
				Tasks:               []task.CreateTaskDTO{{Title: "Design", AssignedEmployeeIDs: []int64{404}}},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmployeeNotFound))
			Expect(count(&projectDatamodel.Project{})).To(BeZero())
			Expect(count(&taskDatamodel.Task{})).To(BeZero())
		})

		It("rejects an unknown creating admin", func() {
			missing := int64(404)
			_, err := svc.AddProject(ctx, actor, project.CreateProjectDTO{Name: "Apollo", Description: "moon", CreatedByAdminID: &missing})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUserNotFound))
		})

		It("requires a name and a description", func() {
			_, err := svc.AddProject(ctx, actor, project.CreateProjectDTO{Tasks: []task.CreateTaskDTO{{}}})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			fields := []string{}
			for _, e := range details.Errors {
				fields = append(fields, e.Field)
			}
			Expect(fields).To(ContainElements("name", "description", "tasks[0].title"))
		})
	})

	Describe("UpdateProject", func() {
		var created *projection.ProjectResponse

		BeforeEach(func() {
			var err error
			created, err = svc.AddProject(ctx, actor, project.CreateProjectDTO{
				Name:                "Apollo",
				Description:         "moon",
				AssignedEmployeeIDs: []int64{alice.ID},
				Tasks:               []task.CreateTaskDTO{{Title: "Design"}},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("leaves omitted fields and assignees alone", func() {
			name := "Artemis"
			p, err := svc.UpdateProject(ctx, created.ID, project.UpdateProjectDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Title).To(Equal("Artemis"))
			Expect(p.Description).To(Equal("moon"))
			Expect(p.AssignedEmployeeNames).To(Equal([]string{"Alice"}))
		})

		It("replaces the assignee set, even with an empty list", func() {
			ids := []int64{bob.ID}
			p, err := svc.UpdateProject(ctx, created.ID, project.UpdateProjectDTO{AssignedEmployeeIDs: &ids})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.AssignedEmployeeNames).To(Equal([]string{"bob"}))

			empty := []int64{}
			p, err = svc.UpdateProject(ctx, created.ID, project.UpdateProjectDTO{AssignedEmployeeIDs: &empty})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.AssignedEmployeeNames).To(BeEmpty())
		})

		It("appends new tasks assigned by the updating admin", func() {
			p, err := svc.UpdateProject(ctx, created.ID, project.UpdateProjectDTO{
				UpdatedByAdminID: &alice.ID,
				NewTasks:         []task.CreateTaskDTO{{Title: "Test"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Tasks).To(HaveLen(2))
			Expect(p.Tasks[0].AssignedByAdminName).To(Equal("Ada Admin"))
			Expect(p.Tasks[1].Title).To(Equal("Test"))
			Expect(p.Tasks[1].AssignedByAdminName).To(Equal("Alice"))
		})

		It("falls back to the creator for new tasks", func() {
			p, err := svc.UpdateProject(ctx, created.ID, project.UpdateProjectDTO{NewTasks: []task.CreateTaskDTO{{Title: "Test"}}})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Tasks[1].AssignedByAdminName).To(Equal("Ada Admin"))
		})

		It("checks an endDate-only update against the stored startDate", func() {
			start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
			_, err := svc.UpdateProject(ctx, created.ID, project.UpdateProjectDTO{StartDate: &start})
			Expect(err).NotTo(HaveOccurred())

			end := start.AddDate(0, 0, -1)
			_, err = svc.UpdateProject(ctx, created.ID, project.UpdateProjectDTO{EndDate: &end})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Field).To(Equal("endDate"))

			var row projectDatamodel.Project
			Expect(db.First(&row, created.ID).Error).To(Succeed())
			Expect(row.EndDate).To(BeNil())

			later := start.AddDate(0, 1, 0)
			_, err = svc.UpdateProject(ctx, created.ID, project.UpdateProjectDTO{EndDate: &later})
			Expect(err).NotTo(HaveOccurred())
		})

		It("reports an unknown project", func() {
			_, err := svc.UpdateProject(ctx, 999, project.UpdateProjectDTO{})
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("DeleteProject", func() {
		It("removes tasks, comments and assignments", func() {
			p, err := svc.AddProject(ctx, actor, project.CreateProjectDTO{
				Name:                "Apollo",
				Description:         "moon",
				AssignedEmployeeIDs: []int64{alice.ID},
				Tasks:               []task.CreateTaskDTO{{Title: "Design", AssignedEmployeeIDs: []int64{bob.ID}}},
				Comments:            []string{"kickoff"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(db.Create(&commentDatamodel.TaskComment{Content: "t", TaskID: p.Tasks[0].ID, AuthorID: alice.ID, CreatedAt: p.CreatedAt}).Error).To(Succeed())

			Expect(svc.DeleteProject(ctx, p.ID)).To(Succeed())

			Expect(count(&projectDatamodel.Project{})).To(BeZero())
			Expect(count(&projectDatamodel.ProjectEmployee{})).To(BeZero())
			Expect(count(&taskDatamodel.Task{})).To(BeZero())
			Expect(count(&taskDatamodel.TaskEmployee{})).To(BeZero())
			Expect(count(&commentDatamodel.ProjectComment{})).To(BeZero())
			Expect(count(&commentDatamodel.TaskComment{})).To(BeZero())
			Expect(count(&userDatamodel.User{})).To(Equal(int64(3)))
		})

		It("reports an unknown project", func() {
			Expect(internal.IsType(svc.DeleteProject(ctx, 42), internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("my projects", func() {
		It("lists only the projects the user is assigned to", func() {
			_, err := svc.AddProject(ctx, actor, project.CreateProjectDTO{Name: "A", Description: "a", AssignedEmployeeIDs: []int64{alice.ID}})
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.AddProject(ctx, actor, project.CreateProjectDTO{Name: "B", Description: "b", AssignedEmployeeIDs: []int64{bob.ID}})
			Expect(err).NotTo(HaveOccurred())

			mine, err := svc.GetProjectsByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))
			Expect(mine[0].Title).To(Equal("A"))

			all, err := svc.GetAllProjects(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			_, err = svc.GetProjectsByUsername(ctx, "ghost")
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		It("creates a project owned by the caller", func() {
			h := project.NewHandler(svc)
			req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{"name":"Apollo","description":"moon","comments":["hi"]}`))
			req = req.WithContext(internal.ContextWithActor(req.Context(), actor))
			w := httptest.NewRecorder()
			h.AddProject(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			var body map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body["title"]).To(Equal("Apollo"))
			Expect(body["status"]).To(Equal("Priority"))
			Expect(body["createdByAdminName"]).To(Equal("Ada Admin"))
		})

		It("answers 401 without an actor", func() {
			h := project.NewHandler(svc)
			w := httptest.NewRecorder()
			h.MyProjects(w, httptest.NewRequest(http.MethodGet, "/projects/my-projects", nil))
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})

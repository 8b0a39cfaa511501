package task_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/core/common/testdb"
	commentDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/comment"
	projectDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
	"github.com/frahmantamala/project-management/internal/projection"
	"github.com/frahmantamala/project-management/internal/task"
	taskPostgres "github.com/frahmantamala/project-management/internal/task/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Task Service", func() {
	var (
		db      *gorm.DB
		ctx     context.Context
		svc     *task.Service
		admin   *userDatamodel.User
		alice   *userDatamodel.User
		bob     *userDatamodel.User
		project *projectDatamodel.Project
		actor   *internal.Actor
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
		bob, err = testdb.CreateUser(db, "bob", "Bob", internal.RoleEmployee)
		Expect(err).NotTo(HaveOccurred())

		project = &projectDatamodel.Project{Name: "Apollo", Status: "Priority", CreatedByAdminID: admin.ID}
		Expect(db.Create(project).Error).To(Succeed())

		actor = &internal.Actor{ID: admin.ID, Username: admin.Username, Role: internal.RoleAdmin}
		svc = task.NewService(taskPostgres.NewTaskRepository(db), projection.NewReader(sqlxDB), slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	newTask := func(employeeIDs ...int64) *projection.TaskResponse {
		t, err := svc.CreateTask(ctx, actor, task.CreateTaskDTO{
			Title:               "Build",
			Description:         "build it",
			Priority:            "High",
			Status:              "Open",
			ProjectID:           &project.ID,
			AssignedEmployeeIDs: employeeIDs,
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	Describe("CreateTask", func() {
		It("projects names instead of ids", func() {
			t := newTask(alice.ID, bob.ID)
			Expect(t.ProjectName).To(Equal("Apollo"))
			Expect(t.AssignedByAdminName).To(Equal("Ada Admin"))
			Expect(t.AssignedEmployeeNames).To(Equal([]string{"Alice", "Bob"}))
			Expect(t.Comments).To(BeEmpty())
			Expect(t.Comments).NotTo(BeNil())
		})

		It("fails fast listing every unknown assignee", func() {
			_, err := svc.CreateTask(ctx, actor, task.CreateTaskDTO{
				Title:               "Build",
				ProjectID:           &project.ID,
				AssignedEmployeeIDs: []int64{alice.ID, 98, 99},
			}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmployeeNotFound))
			Expect(appErr.Message).To(ContainSubstring("98, 99"))

			var count int64
			Expect(db.Model(&taskDatamodel.Task{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})

		It("rejects an unknown project", func() {
			missing := int64(404)
			_, err := svc.CreateTask(ctx, actor, task.CreateTaskDTO{Title: "x", ProjectID: &missing}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeProjectNotFound))
		})

		It("prefers the body assigner over the query parameter", func() {
			fromQuery := alice.ID
			fromBody := bob.ID
			t, err := svc.CreateTask(ctx, actor, task.CreateTaskDTO{Title: "x", ProjectID: &project.ID, AssignedByAdminID: &fromBody}, &fromQuery)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.AssignedByAdminName).To(Equal("Bob"))

			t, err = svc.CreateTask(ctx, actor, task.CreateTaskDTO{Title: "y", ProjectID: &project.ID}, &fromQuery)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.AssignedByAdminName).To(Equal("Alice"))
		})

		It("rejects an unknown assigner", func() {
			missing := int64(77)
			_, err := svc.CreateTask(ctx, actor, task.CreateTaskDTO{Title: "x", ProjectID: &project.ID}, &missing)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("UpdateTask", func() {
		It("changes only the status", func() {
			due := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
			created, err := svc.CreateTask(ctx, actor, task.CreateTaskDTO{
				Title: "Build", Description: "build it", Priority: "High", Status: "Open",
				DueDate: &due, ProjectID: &project.ID, AssignedEmployeeIDs: []int64{alice.ID},
			}, nil)
			Expect(err).NotTo(HaveOccurred())

			done := "Done"
			updated, err := svc.UpdateTask(ctx, created.ID, task.UpdateTaskDTO{Status: &done})
			Expect(err).NotTo(HaveOccurred())

			Expect(updated.Status).To(Equal("Done"))
			Expect(updated.Title).To(Equal(created.Title))
			Expect(updated.Description).To(Equal(created.Description))
			Expect(updated.Priority).To(Equal(created.Priority))
			Expect(updated.DueDate.Equal(*created.DueDate)).To(BeTrue())
			Expect(updated.AssignedEmployeeNames).To(Equal(created.AssignedEmployeeNames))
			Expect(updated.AssignedByAdminName).To(Equal(created.AssignedByAdminName))
		})

		It("replaces assignees when the list is present, even empty", func() {
			created := newTask(alice.ID)

			ids := []int64{bob.ID}
			updated, err := svc.UpdateTask(ctx, created.ID, task.UpdateTaskDTO{AssignedEmployeeIDs: &ids})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.AssignedEmployeeNames).To(Equal([]string{"Bob"}))

			empty := []int64{}
			updated, err = svc.UpdateTask(ctx, created.ID, task.UpdateTaskDTO{AssignedEmployeeIDs: &empty})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.AssignedEmployeeNames).To(BeEmpty())
		})

		It("swaps the assigner when updatedByAdminId is given", func() {
			created := newTask()
			updated, err := svc.UpdateTask(ctx, created.ID, task.UpdateTaskDTO{UpdatedByAdminID: &bob.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.AssignedByAdminName).To(Equal("Bob"))
		})

		It("reports a missing task", func() {
			_, err := svc.UpdateTask(ctx, 999, task.UpdateTaskDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeTaskNotFound))
		})
	})

	Describe("listings", func() {
		It("filters by project, employee and username", func() {
			first := newTask(alice.ID)
			newTask(bob.ID)

			all, err := svc.GetAllTasks(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			byProject, err := svc.GetTasksByProject(ctx, project.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byProject).To(HaveLen(2))

			byEmployee, err := svc.GetTasksByEmployee(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byEmployee).To(HaveLen(1))
			Expect(byEmployee[0].ID).To(Equal(first.ID))

			mine, err := svc.GetTasksByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))

			_, err = svc.GetTasksByEmployee(ctx, 999)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
			_, err = svc.GetTasksByProject(ctx, 999)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("DeleteTask", func() {
		It("removes comments and assignee links", func() {
			t := newTask(alice.ID)
			Expect(db.Create(&commentDatamodel.TaskComment{Content: "c", TaskID: t.ID, AuthorID: admin.ID, CreatedAt: time.Now()}).Error).To(Succeed())

			Expect(svc.DeleteTask(ctx, t.ID)).To(Succeed())

			var comments, links int64
			Expect(db.Model(&commentDatamodel.TaskComment{}).Count(&comments).Error).To(Succeed())
			Expect(db.Model(&taskDatamodel.TaskEmployee{}).Count(&links).Error).To(Succeed())
			Expect(comments).To(BeZero())
			Expect(links).To(BeZero())

			_, err := svc.GetTaskByID(ctx, t.ID)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		var router chi.Router

		BeforeEach(func() {
			h := task.NewHandler(svc)
			router = chi.NewRouter()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(internal.ContextWithActor(r.Context(), actor)))
				})
			})
			router.Post("/tasks", h.CreateTask)
			router.Put("/tasks/{id}", h.UpdateTask)
			router.Get("/tasks/{id}", h.GetTask)
			router.Get("/employees/{id}/tasks", h.GetTasksByEmployee)
		})

		It("creates a task with the assigner taken from the query", func() {
			body := `{"title":"Ship","projectId":` + strconv.FormatInt(project.ID, 10) + `}`
			req := httptest.NewRequest(http.MethodPost, "/tasks?assignedByAdminId="+strconv.FormatInt(alice.ID, 10), strings.NewReader(body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Body.String()).To(ContainSubstring(`"assignedByAdminName":"Alice"`))
			Expect(w.Body.String()).To(ContainSubstring(`"assignedEmployeeNames":[]`))
		})

		It("rejects a bad query parameter", func() {
			req := httptest.NewRequest(http.MethodPost, "/tasks?assignedByAdminId=x", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("answers 404 for an unknown task", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/12345", nil))
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeTaskNotFound)))
		})
	})
})

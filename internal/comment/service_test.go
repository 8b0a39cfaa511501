package comment_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/auth"
	"github.com/frahmantamala/project-management/internal/comment"
	commentPostgres "github.com/frahmantamala/project-management/internal/comment/postgres"
	"github.com/frahmantamala/project-management/internal/core/common/testdb"
	projectDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
	"github.com/frahmantamala/project-management/internal/projection"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Comment Service", func() {
	var (
		db       *gorm.DB
		ctx      context.Context
		admin    *userDatamodel.User
		employee *userDatamodel.User
		project  *projectDatamodel.Project
		task     *taskDatamodel.Task
		projects *comment.Service
		tasks    *comment.Service
		slogger  *slog.Logger
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		slogger = slog.New(slog.NewTextHandler(io.Discard, nil))

		var sqlxDB *sqlx.DB
		db, sqlxDB, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		reader := projection.NewReader(sqlxDB)

		admin, err = testdb.CreateUser(db, "admin", "Ada Admin", internal.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())
		employee, err = testdb.CreateUser(db, "emp", "", internal.RoleEmployee)
		Expect(err).NotTo(HaveOccurred())

		project = &projectDatamodel.Project{Name: "Apollo", Status: "Priority", CreatedByAdminID: admin.ID}
		Expect(db.Create(project).Error).To(Succeed())
		task = &taskDatamodel.Task{Title: "Launch", ProjectID: project.ID, AssignedByAdminID: admin.ID}
		Expect(db.Create(task).Error).To(Succeed())

		projects = comment.NewService(comment.ScopeProject, commentPostgres.NewCommentRepository(db, comment.ScopeProject), reader, slogger)
		tasks = comment.NewService(comment.ScopeTask, commentPostgres.NewCommentRepository(db, comment.ScopeTask), reader, slogger)
	})

	actorFor := func(u *userDatamodel.User) *internal.Actor {
		return &internal.Actor{ID: u.ID, Username: u.Username, Role: u.Role}
	}

	It("creates a comment with a null updatedAt and the author's display name", func() {
		c, err := projects.Create(ctx, actorFor(admin), comment.CreateCommentDTO{Content: "kickoff", ProjectID: &project.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Content).To(Equal("kickoff"))
		Expect(c.AuthorName).To(Equal("Ada Admin"))
		Expect(c.UpdatedAt).To(BeNil())
	})

	It("falls back to the username when the author has no name", func() {
		c, err := tasks.Create(ctx, actorFor(employee), comment.CreateCommentDTO{Content: "on it", TaskID: &task.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.AuthorName).To(Equal("emp"))
	})

	It("stamps updatedAt after createdAt on edit", func() {
		c, err := projects.Create(ctx, actorFor(admin), comment.CreateCommentDTO{Content: "draft", ProjectID: &project.ID})
		Expect(err).NotTo(HaveOccurred())

		updated, err := projects.Update(ctx, c.ID, comment.UpdateCommentDTO{Content: "final"})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Content).To(Equal("final"))
		Expect(updated.UpdatedAt).NotTo(BeNil())
		Expect(updated.UpdatedAt.After(updated.CreatedAt)).To(BeTrue())
	})

	It("reports a missing parent", func() {
		missing := int64(999)
		_, err := tasks.Create(ctx, actorFor(admin), comment.CreateCommentDTO{Content: "x", TaskID: &missing})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeTaskNotFound))
	})

	It("reports a missing author", func() {
		missing := int64(999)
		_, err := projects.Create(ctx, actorFor(admin), comment.CreateCommentDTO{Content: "x", ProjectID: &project.ID, AuthorID: &missing})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeUserNotFound))
	})

	It("requires content and a parent", func() {
		_, err := projects.Create(ctx, actorFor(admin), comment.CreateCommentDTO{})
		Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
	})

	It("keeps project and task comments apart", func() {
		_, err := projects.Create(ctx, actorFor(admin), comment.CreateCommentDTO{Content: "p", ProjectID: &project.ID})
		Expect(err).NotTo(HaveOccurred())
		_, err = tasks.Create(ctx, actorFor(admin), comment.CreateCommentDTO{Content: "t", TaskID: &task.ID})
		Expect(err).NotTo(HaveOccurred())

		onProject, err := projects.ListByParent(ctx, project.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(onProject).To(HaveLen(1))
		Expect(onProject[0].Content).To(Equal("p"))

		onTask, err := tasks.ListByParent(ctx, task.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(onTask).To(HaveLen(1))
		Expect(onTask[0].Content).To(Equal("t"))
	})

	It("lists the comments written by a username", func() {
		_, err := projects.Create(ctx, actorFor(employee), comment.CreateCommentDTO{Content: "mine", ProjectID: &project.ID})
		Expect(err).NotTo(HaveOccurred())
		_, err = projects.Create(ctx, actorFor(admin), comment.CreateCommentDTO{Content: "theirs", ProjectID: &project.ID})
		Expect(err).NotTo(HaveOccurred())

		mine, err := projects.ListByUsername(ctx, "emp")
		Expect(err).NotTo(HaveOccurred())
		Expect(mine).To(HaveLen(1))
		Expect(mine[0].Content).To(Equal("mine"))

		_, err = projects.ListByUsername(ctx, "ghost")
		Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
	})

	It("deletes a comment", func() {
		c, err := projects.Create(ctx, actorFor(admin), comment.CreateCommentDTO{Content: "bye", ProjectID: &project.ID})
		Expect(err).NotTo(HaveOccurred())

		Expect(projects.Delete(ctx, c.ID)).To(Succeed())
		_, err = projects.GetByID(ctx, c.ID)
		Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		Expect(internal.IsType(projects.Delete(ctx, c.ID), internal.ErrorTypeNotFound)).To(BeTrue())
	})

	Describe("Handler", func() {
		var (
			router  chi.Router
			asActor *internal.Actor
		)

		BeforeEach(func() {
			handler := comment.NewHandler(projects, auth.NewABACPolicy(nil))
			router = chi.NewRouter()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(internal.ContextWithActor(r.Context(), asActor)))
				})
			})
			router.Post("/project-comments", handler.CreateComment)
			router.Get("/project-comments/my-comments", handler.MyComments)
			router.Get("/project-comments/{id}", handler.GetComment)
			router.Put("/project-comments/{id}", handler.UpdateComment)
			router.Delete("/project-comments/{id}", handler.DeleteComment)
		})

		do := func(method, path, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, strings.NewReader(body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		It("lets an employee comment and edit their own comment", func() {
			asActor = actorFor(employee)
			w := do(http.MethodPost, "/project-comments", `{"content":"hello","projectId":`+jsonInt(project.ID)+`}`)
			Expect(w.Code).To(Equal(http.StatusCreated))

			var created projection.CommentResponse
			Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

			w = do(http.MethodPut, "/project-comments/"+jsonInt(created.ID), `{"content":"edited"}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var body map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body["content"]).To(Equal("edited"))
			Expect(body["updatedAt"]).NotTo(BeNil())
		})

		It("forbids an employee from editing someone else's comment", func() {
			c, err := projects.Create(ctx, actorFor(admin), comment.CreateCommentDTO{Content: "admin note", ProjectID: &project.ID})
			Expect(err).NotTo(HaveOccurred())

			asActor = actorFor(employee)
			Expect(do(http.MethodPut, "/project-comments/"+jsonInt(c.ID), `{"content":"hijack"}`).Code).To(Equal(http.StatusForbidden))
			Expect(do(http.MethodDelete, "/project-comments/"+jsonInt(c.ID), "").Code).To(Equal(http.StatusForbidden))
		})

		It("forbids an employee from posting under another author", func() {
			asActor = actorFor(employee)
			body := `{"content":"on behalf","projectId":` + jsonInt(project.ID) + `,"authorId":` + jsonInt(admin.ID) + `}`
			Expect(do(http.MethodPost, "/project-comments", body).Code).To(Equal(http.StatusForbidden))

			mine, err := projects.ListByUsername(ctx, admin.Username)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(BeEmpty())
		})

		It("lets an employee name themselves as author", func() {
			asActor = actorFor(employee)
			body := `{"content":"me","projectId":` + jsonInt(project.ID) + `,"authorId":` + jsonInt(employee.ID) + `}`
			Expect(do(http.MethodPost, "/project-comments", body).Code).To(Equal(http.StatusCreated))
		})

		It("lets an admin post on behalf of an employee", func() {
			asActor = actorFor(admin)
			body := `{"content":"relayed","projectId":` + jsonInt(project.ID) + `,"authorId":` + jsonInt(employee.ID) + `}`
			Expect(do(http.MethodPost, "/project-comments", body).Code).To(Equal(http.StatusCreated))

			mine, err := projects.ListByUsername(ctx, employee.Username)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))
		})

		It("lets an admin delete any comment", func() {
			c, err := projects.Create(ctx, actorFor(employee), comment.CreateCommentDTO{Content: "x", ProjectID: &project.ID})
			Expect(err).NotTo(HaveOccurred())

			asActor = actorFor(admin)
			Expect(do(http.MethodDelete, "/project-comments/"+jsonInt(c.ID), "").Code).To(Equal(http.StatusNoContent))
			Expect(do(http.MethodGet, "/project-comments/"+jsonInt(c.ID), "").Code).To(Equal(http.StatusNotFound))
		})

		It("returns a JSON empty list for my-comments", func() {
			asActor = actorFor(employee)
			w := do(http.MethodGet, "/project-comments/my-comments", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(w.Body.String())).To(Equal("[]"))
		})

		It("rejects a non-numeric id", func() {
			asActor = actorFor(admin)
			Expect(do(http.MethodGet, "/project-comments/abc", "").Code).To(Equal(http.StatusBadRequest))
		})
	})

})

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

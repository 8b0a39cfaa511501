package user_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/auth"
	"github.com/frahmantamala/project-management/internal/core/common/testdb"
	commentDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/comment"
	projectDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
	"github.com/frahmantamala/project-management/internal/user"
	userPostgres "github.com/frahmantamala/project-management/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var _ = Describe("User Service", func() {
	var (
		db     *gorm.DB
		ctx    context.Context
		svc    *user.Service
		hasher *auth.BcryptHasher
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, _, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		hasher = auth.NewBcryptHasher(bcrypt.MinCost)
		svc = user.NewService(userPostgres.NewUserRepository(db), hasher, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	create := func(username, email string) *user.UserResponse {
		u, err := svc.CreateUser(ctx, user.CreateUserDTO{
			Name:     strings.ToUpper(username[:1]) + username[1:],
			Username: username,
			Email:    email,
			Password: "secret1",
		})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	storedHash := func(id int64) string {
		var row userDatamodel.User
		Expect(db.First(&row, id).Error).To(Succeed())
		return row.PasswordHash
	}

	Describe("CreateUser", func() {
		It("hashes the password and defaults the role", func() {
			u := create("alice", "alice@example.com")
			Expect(u.Role).To(Equal(internal.RoleEmployee))

			hash := storedHash(u.ID)
			Expect(hash).NotTo(Equal("secret1"))
			Expect(hasher.Verify("secret1", hash)).To(BeTrue())
		})

		It("rejects duplicate usernames and emails", func() {
			create("alice", "alice@example.com")

			_, err := svc.CreateUser(ctx, user.CreateUserDTO{Username: "alice", Email: "other@example.com", Password: "secret1"})
			Expect(internal.IsType(err, internal.ErrorTypeConflict)).To(BeTrue())

			_, err = svc.CreateUser(ctx, user.CreateUserDTO{Username: "other", Email: "alice@example.com", Password: "secret1"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmailTaken))
		})

		It("rejects an unknown role", func() {
			_, err := svc.CreateUser(ctx, user.CreateUserDTO{Username: "alice", Email: "alice@example.com", Password: "secret1", Role: "ROOT"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("lookups", func() {
		It("finds users by id, email, username and role", func() {
			alice := create("alice", "alice@example.com")

			byID, err := svc.GetUser(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byID.Username).To(Equal("alice"))

			byEmail, err := svc.GetUserByEmail(ctx, "alice@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(byEmail.ID).To(Equal(alice.ID))

			byUsername, err := svc.GetUserByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(byUsername.ID).To(Equal(alice.ID))

			employees, err := svc.GetUsersByRole(ctx, internal.RoleEmployee)
			Expect(err).NotTo(HaveOccurred())
			Expect(employees).To(HaveLen(1))
		})

		It("names the failing key in not-found errors", func() {
			_, err := svc.GetUser(ctx, 42)
			Expect(err).To(MatchError(ContainSubstring("42")))

			_, err = svc.GetUserByEmail(ctx, "nobody@example.com")
			Expect(err).To(MatchError(ContainSubstring("nobody@example.com")))

			_, err = svc.GetUsersByRole(ctx, internal.RoleAdmin)
			Expect(err).To(MatchError(ContainSubstring(internal.RoleAdmin)))
		})
	})

	Describe("UpdateUser", func() {
		It("changes only the supplied fields, department included", func() {
			alice := create("alice", "alice@example.com")

			dept := "Engineering"
			u, err := svc.UpdateUser(ctx, alice.ID, user.UpdateUserDTO{Department: &dept})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Department).To(Equal("Engineering"))
			Expect(u.Name).To(Equal("Alice"))
			Expect(u.Email).To(Equal("alice@example.com"))

			reloaded, err := svc.GetUser(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.Department).To(Equal("Engineering"))
		})

		It("checks a changed email for uniqueness", func() {
			alice := create("alice", "alice@example.com")
			create("bob", "bob@example.com")

			taken := "bob@example.com"
			_, err := svc.UpdateUser(ctx, alice.ID, user.UpdateUserDTO{Email: &taken})
			Expect(internal.IsType(err, internal.ErrorTypeConflict)).To(BeTrue())

			same := "alice@example.com"
			_, err = svc.UpdateUser(ctx, alice.ID, user.UpdateUserDTO{Email: &same})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("UpdatePassword", func() {
		It("stores a new hash", func() {
			alice := create("alice", "alice@example.com")
			before := storedHash(alice.ID)

			Expect(svc.UpdatePassword(ctx, alice.ID, user.UpdatePasswordDTO{NewPassword: "another1"})).To(Succeed())

			after := storedHash(alice.ID)
			Expect(after).NotTo(Equal(before))
			Expect(hasher.Verify("another1", after)).To(BeTrue())
		})
	})

	Describe("DeleteUser", func() {
		It("refuses while the user created a project", func() {
			admin := create("admin", "admin@example.com")
			Expect(db.Create(&projectDatamodel.Project{Name: "P", CreatedByAdminID: admin.ID}).Error).To(Succeed())

			err := svc.DeleteUser(ctx, admin.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUserInUse))
		})

		It("refuses while the user authored a comment", func() {
			admin := create("admin", "admin@example.com")
			alice := create("alice", "alice@example.com")
			p := &projectDatamodel.Project{Name: "P", CreatedByAdminID: admin.ID}
			Expect(db.Create(p).Error).To(Succeed())
			Expect(db.Create(&commentDatamodel.ProjectComment{Content: "c", ProjectID: p.ID, AuthorID: alice.ID}).Error).To(Succeed())

			Expect(internal.IsType(svc.DeleteUser(ctx, alice.ID), internal.ErrorTypeConflict)).To(BeTrue())
		})

		It("removes assignment links and the user", func() {
			admin := create("admin", "admin@example.com")
			alice := create("alice", "alice@example.com")
			p := &projectDatamodel.Project{Name: "P", CreatedByAdminID: admin.ID}
			Expect(db.Create(p).Error).To(Succeed())
			Expect(db.Create(&projectDatamodel.ProjectEmployee{ProjectID: p.ID, UserID: alice.ID}).Error).To(Succeed())

			Expect(svc.DeleteUser(ctx, alice.ID)).To(Succeed())

			var links int64
			Expect(db.Model(&projectDatamodel.ProjectEmployee{}).Count(&links).Error).To(Succeed())
			Expect(links).To(BeZero())
			_, err := svc.GetUser(ctx, alice.ID)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("GetColleagues", func() {
		It("never includes the requester", func() {
			admin := create("admin", "admin@example.com")
			alice := create("alice", "alice@example.com")
			bob := create("bob", "bob@example.com")
			p := &projectDatamodel.Project{Name: "P", CreatedByAdminID: admin.ID}
			Expect(db.Create(p).Error).To(Succeed())
			for _, id := range []int64{alice.ID, bob.ID} {
				Expect(db.Create(&projectDatamodel.ProjectEmployee{ProjectID: p.ID, UserID: id}).Error).To(Succeed())
			}

			colleagues, err := svc.GetColleagues(ctx, p.ID, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(colleagues).To(HaveLen(1))
			Expect(colleagues[0].Username).To(Equal("bob"))

			_, err = svc.GetColleagues(ctx, 999, "alice")
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		var (
			router  chi.Router
			asActor *internal.Actor
			alice   *user.UserResponse
			bob     *user.UserResponse
		)

		BeforeEach(func() {
			alice = create("alice", "alice@example.com")
			bob = create("bob", "bob@example.com")

			h := user.NewHandler(svc, auth.NewABACPolicy(nil))
			router = chi.NewRouter()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(internal.ContextWithActor(r.Context(), asActor)))
				})
			})
			router.Put("/users/{id}", h.UpdateUser)
			router.Patch("/users/{id}/password", h.UpdatePassword)
			router.Get("/users/email/{email}", h.GetUserByEmail)
			router.Get("/users/role/{role}", h.GetUsersByRole)
		})

		do := func(method, path, body string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
			return w
		}
		idPath := func(u *user.UserResponse) string {
			return "/users/" + strconv.FormatInt(u.ID, 10)
		}

		It("lets an employee edit themselves but not their role", func() {
			asActor = &internal.Actor{ID: alice.ID, Username: "alice", Role: internal.RoleEmployee}

			w := do(http.MethodPut, idPath(alice), `{"position":"Engineer"}`)
			Expect(w.Code).To(Equal(http.StatusOK))
			var body user.UserResponse
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body.Position).To(Equal("Engineer"))

			Expect(do(http.MethodPut, idPath(alice), `{"role":"ADMIN"}`).Code).To(Equal(http.StatusForbidden))
			Expect(do(http.MethodPut, idPath(bob), `{"position":"x"}`).Code).To(Equal(http.StatusForbidden))
		})

		It("limits password changes to self or admin", func() {
			asActor = &internal.Actor{ID: alice.ID, Username: "alice", Role: internal.RoleEmployee}
			Expect(do(http.MethodPatch, idPath(alice)+"/password", `{"newPassword":"another1"}`).Code).To(Equal(http.StatusOK))
			Expect(do(http.MethodPatch, idPath(bob)+"/password", `{"newPassword":"another1"}`).Code).To(Equal(http.StatusForbidden))

			asActor = &internal.Actor{ID: 999, Username: "root", Role: internal.RoleAdmin}
			Expect(do(http.MethodPatch, idPath(bob)+"/password", `{"newPassword":"another1"}`).Code).To(Equal(http.StatusOK))
		})

		It("looks users up by email and role", func() {
			asActor = &internal.Actor{ID: alice.ID, Username: "alice", Role: internal.RoleEmployee}
			w := do(http.MethodGet, "/users/email/bob@example.com", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"username":"bob"`))

			Expect(do(http.MethodGet, "/users/role/ADMIN", "").Code).To(Equal(http.StatusNotFound))
		})
	})
})

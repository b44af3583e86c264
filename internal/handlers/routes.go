package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/middleware"
	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the API routes are built from
type Deps struct {
	Config      *config.Config
	DB          *gorm.DB
	Attachments *attachments.Store
	Log         *zap.Logger
	Services    *services.Registry
	Auth        middleware.Authenticator
}

// Register mounts the API on router. Health is public, everything else needs
// a session.
func Register(router fiber.Router, deps Deps) {
	health := &HealthHandler{Config: deps.Config, DB: deps.DB, Attachments: deps.Attachments, Log: deps.Log}
	router.Get("/health", health.Health)

	authed := router.Group("", middleware.Authenticate(deps.Auth, deps.Config.AuthCookie))

	records := &MedicalRecordHandler{Records: deps.Services.Records}
	authed.Post("/medical-records", records.CreateRecord)
	authed.Get("/medical-records/patient/:patient_id", records.ListPatientRecords)
	authed.Get("/medical-records/:id", records.GetRecord)
	authed.Put("/medical-records/:id", records.UpdateRecord)
	authed.Patch("/medical-records/:id/sections/:section", records.UpsertSection)
	authed.Delete("/medical-records/:id", records.DeleteRecord)

	patients := &PatientHandler{Patients: deps.Services.Patients}
	authed.Get("/patients", patients.ListPatients)
	authed.Get("/patients/:id", patients.GetPatient)
	authed.Post("/patients", patients.CreatePatient)
	authed.Put("/patients/:id", patients.UpdatePatient)
	authed.Delete("/patients/:id", patients.DeletePatient)

	companies := &CompanyHandler{Companies: deps.Services.Companies}
	authed.Get("/companies", companies.ListCompanies)
	authed.Get("/companies/:id", companies.GetCompany)
	authed.Post("/companies", companies.CreateCompany)
	authed.Put("/companies/:id", companies.UpdateCompany)
	authed.Delete("/companies/:id", companies.DeleteCompany)
	authed.Get("/companies/:id/employees", companies.ListEmployees)
	authed.Post("/companies/:id/employees", companies.CreateEmployee)

	studies := &StudyHandler{Studies: deps.Services.Studies}
	authed.Post("/studies", studies.CreateStudy)
	authed.Get("/studies/patient/:patient_id", studies.ListPatientStudies)
	authed.Get("/studies/:id", studies.GetStudy)
	authed.Patch("/studies/:id", studies.UpdateStudy)
	authed.Delete("/studies/:id", studies.DeleteStudy)
	authed.Post("/studies/:id/files", studies.AddStudyFiles)
	authed.Delete("/studies/:id/files/:file_id", studies.DeleteStudyFile)

	users := &UserHandler{Users: deps.Services.Users}
	admin := authed.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.Get("/users", users.ListUsers)
	admin.Get("/users/:id", users.GetUser)
	admin.Post("/users", users.CreateUser)
	admin.Patch("/users/:id", users.UpdateUser)
	admin.Delete("/users/:id", users.DeleteUser)
}

// RegisterFiles serves the fs attachment slots whose base URL is a path. Files
// need a session like the API but no record or study check: any signed in
// actor holding a URL can fetch it. Stored names are random UUIDs and URLs
// are only handed out in responses the access policy already allowed.
func RegisterFiles(app *fiber.App, deps Deps) {
	ac := deps.Config.Attachments
	if ac.Driver != "fs" {
		return
	}

	auth := middleware.Authenticate(deps.Auth, deps.Config.AuthCookie)
	for _, slot := range deps.Attachments.Slots() {
		sc := ac.Slots[string(slot)]
		if !strings.HasPrefix(sc.BaseURL, "/") {
			continue
		}
		app.Use(sc.BaseURL, auth)
		app.Static(sc.BaseURL, sc.Dir, fiber.Static{ByteRange: true})
	}
}

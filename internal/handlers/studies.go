package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/middleware"
	"github.com/localnerve/medrecords/internal/services"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/localnerve/medrecords/internal/utils"
)

const studiesArea = "studies"

// StudyHandler handles study routes
type StudyHandler struct {
	Studies *services.Studies
}

// CreateStudy handles POST /api/studies
// @Summary Create a study with its documents
// @Tags Studies
// @Accept mpfd
// @Produce json
// @Param patient_id formData string true "Patient ID"
// @Param study_type formData string true "Study type"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param status formData string false "Status"
// @Param study_date formData string false "Study date (YYYY-MM-DD)"
// @Param professional_id formData string false "Professional, admins only"
// @Param files formData file false "Documents"
// @Success 201 {object} models.Study
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /studies [post]
func (h *StudyHandler) CreateStudy(c *fiber.Ctx) error {
	if !isMultipart(c) {
		var in services.StudyInput
		if err := bindJSON(c, &in); err != nil {
			return utils.ServiceErrorResponse(c, err, studiesArea)
		}
		return h.create(c, in, nil)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.ServiceErrorResponse(c, types.Validation.New("invalid multipart form: %v", err), studiesArea)
	}
	uploads, err := formUploads(form, "files")
	if err != nil {
		return utils.ServiceErrorResponse(c, err, studiesArea)
	}
	return h.create(c, services.StudyInput{
		PatientID:      formValue(form, "patient_id"),
		ProfessionalID: formValue(form, "professional_id"),
		StudyType:      formValue(form, "study_type"),
		Title:          formValue(form, "title"),
		Description:    formValue(form, "description"),
		Status:         formValue(form, "status"),
		StudyDate:      formValue(form, "study_date"),
	}, uploads)
}

func (h *StudyHandler) create(c *fiber.Ctx, in services.StudyInput, uploads []services.Upload) error {
	study, err := h.Studies.Create(c.UserContext(), middleware.Actor(c), in, uploads)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, studiesArea)
	}
	return c.Status(fiber.StatusCreated).JSON(study)
}

// ListPatientStudies handles GET /api/studies/patient/:patient_id
// @Summary List the studies of a patient
// @Tags Studies
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Success 200 {array} models.Study
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /studies/patient/{patient_id} [get]
func (h *StudyHandler) ListPatientStudies(c *fiber.Ctx) error {
	studies, err := h.Studies.ListByPatient(c.UserContext(), middleware.Actor(c), c.Params("patient_id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, studiesArea)
	}
	return c.JSON(studies)
}

// GetStudy handles GET /api/studies/:id
// @Summary Get a study with its files
// @Tags Studies
// @Produce json
// @Param id path string true "Study ID"
// @Success 200 {object} models.Study
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /studies/{id} [get]
func (h *StudyHandler) GetStudy(c *fiber.Ctx) error {
	study, err := h.Studies.Get(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, studiesArea)
	}
	return c.JSON(study)
}

// UpdateStudy handles PATCH /api/studies/:id
// @Summary Update the descriptive fields of a study
// @Tags Studies
// @Accept json
// @Produce json
// @Param id path string true "Study ID"
// @Param body body services.StudyInput true "Fields to change"
// @Success 200 {object} models.Study
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /studies/{id} [patch]
func (h *StudyHandler) UpdateStudy(c *fiber.Ctx) error {
	var in services.StudyInput
	if err := bindJSON(c, &in); err != nil {
		return utils.ServiceErrorResponse(c, err, studiesArea)
	}
	study, err := h.Studies.Update(c.UserContext(), middleware.Actor(c), c.Params("id"), in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, studiesArea)
	}
	return c.JSON(study)
}

// DeleteStudy handles DELETE /api/studies/:id
// @Summary Delete a study and its files
// @Tags Studies
// @Param id path string true "Study ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /studies/{id} [delete]
func (h *StudyHandler) DeleteStudy(c *fiber.Ctx) error {
	if err := h.Studies.Delete(c.UserContext(), middleware.Actor(c), c.Params("id")); err != nil {
		return utils.ServiceErrorResponse(c, err, studiesArea)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddStudyFiles handles POST /api/studies/:id/files
// @Summary Attach documents to a study
// @Tags Studies
// @Accept mpfd
// @Produce json
// @Param id path string true "Study ID"
// @Param files formData file true "Documents"
// @Success 201 {array} models.StudyFile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /studies/{id}/files [post]
func (h *StudyHandler) AddStudyFiles(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.ServiceErrorResponse(c, types.Validation.New("invalid multipart form: %v", err), studiesArea)
	}
	uploads, err := formUploads(form, "files")
	if err != nil {
		return utils.ServiceErrorResponse(c, err, studiesArea)
	}
	files, err := h.Studies.AddFiles(c.UserContext(), middleware.Actor(c), c.Params("id"), uploads)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, studiesArea)
	}
	return c.Status(fiber.StatusCreated).JSON(files)
}

// DeleteStudyFile handles DELETE /api/studies/:id/files/:file_id
// @Summary Delete one document of a study
// @Tags Studies
// @Param id path string true "Study ID"
// @Param file_id path string true "File ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /studies/{id}/files/{file_id} [delete]
func (h *StudyHandler) DeleteStudyFile(c *fiber.Ctx) error {
	if err := h.Studies.DeleteFile(c.UserContext(), middleware.Actor(c), c.Params("id"), c.Params("file_id")); err != nil {
		return utils.ServiceErrorResponse(c, err, studiesArea)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

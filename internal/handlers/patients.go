package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/middleware"
	"github.com/localnerve/medrecords/internal/services"
	"github.com/localnerve/medrecords/internal/utils"
)

const patientsArea = "patients"

// PatientHandler handles patient routes
type PatientHandler struct {
	Patients *services.Patients
}

// ListPatients handles GET /api/patients
// @Summary List the patients visible to the caller
// @Tags Patients
// @Produce json
// @Success 200 {array} models.Patient
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /patients [get]
func (h *PatientHandler) ListPatients(c *fiber.Ctx) error {
	patients, err := h.Patients.List(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, patientsArea)
	}
	return c.JSON(patients)
}

// GetPatient handles GET /api/patients/:id
// @Summary Get a patient
// @Tags Patients
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} models.Patient
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /patients/{id} [get]
func (h *PatientHandler) GetPatient(c *fiber.Ctx) error {
	patient, err := h.Patients.Get(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, patientsArea)
	}
	return c.JSON(patient)
}

// CreatePatient handles POST /api/patients
// @Summary Create a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param body body services.PatientInput true "Patient"
// @Success 201 {object} models.Patient
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /patients [post]
func (h *PatientHandler) CreatePatient(c *fiber.Ctx) error {
	var in services.PatientInput
	if err := bindJSON(c, &in); err != nil {
		return utils.ServiceErrorResponse(c, err, patientsArea)
	}
	patient, err := h.Patients.Create(c.UserContext(), middleware.Actor(c), in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, patientsArea)
	}
	return c.Status(fiber.StatusCreated).JSON(patient)
}

// UpdatePatient handles PUT /api/patients/:id
// @Summary Update a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param body body services.PatientInput true "Patient"
// @Success 200 {object} models.Patient
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /patients/{id} [put]
func (h *PatientHandler) UpdatePatient(c *fiber.Ctx) error {
	var in services.PatientInput
	if err := bindJSON(c, &in); err != nil {
		return utils.ServiceErrorResponse(c, err, patientsArea)
	}
	patient, err := h.Patients.Update(c.UserContext(), middleware.Actor(c), c.Params("id"), in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, patientsArea)
	}
	return c.JSON(patient)
}

// DeletePatient handles DELETE /api/patients/:id
// @Summary Delete a patient without records
// @Tags Patients
// @Param id path string true "Patient ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /patients/{id} [delete]
func (h *PatientHandler) DeletePatient(c *fiber.Ctx) error {
	if err := h.Patients.Delete(c.UserContext(), middleware.Actor(c), c.Params("id")); err != nil {
		return utils.ServiceErrorResponse(c, err, patientsArea)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

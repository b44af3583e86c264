package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/middleware"
	"github.com/localnerve/medrecords/internal/services"
	"github.com/localnerve/medrecords/internal/utils"
)

const companiesArea = "companies"

// CompanyHandler handles company routes
type CompanyHandler struct {
	Companies *services.Companies
}

// ListCompanies handles GET /api/companies
// @Summary List the companies visible to the caller
// @Tags Companies
// @Produce json
// @Success 200 {array} models.Company
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies [get]
func (h *CompanyHandler) ListCompanies(c *fiber.Ctx) error {
	companies, err := h.Companies.List(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, companiesArea)
	}
	return c.JSON(companies)
}

// GetCompany handles GET /api/companies/:id
// @Summary Get a company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} models.Company
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	company, err := h.Companies.Get(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, companiesArea)
	}
	return c.JSON(company)
}

// CreateCompany handles POST /api/companies
// @Summary Create a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param body body services.CompanyInput true "Company"
// @Success 201 {object} models.Company
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies [post]
func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var in services.CompanyInput
	if err := bindJSON(c, &in); err != nil {
		return utils.ServiceErrorResponse(c, err, companiesArea)
	}
	company, err := h.Companies.Create(c.UserContext(), middleware.Actor(c), in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, companiesArea)
	}
	return c.Status(fiber.StatusCreated).JSON(company)
}

// UpdateCompany handles PUT /api/companies/:id
// @Summary Update a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param body body services.CompanyInput true "Company"
// @Success 200 {object} models.Company
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies/{id} [put]
func (h *CompanyHandler) UpdateCompany(c *fiber.Ctx) error {
	var in services.CompanyInput
	if err := bindJSON(c, &in); err != nil {
		return utils.ServiceErrorResponse(c, err, companiesArea)
	}
	company, err := h.Companies.Update(c.UserContext(), middleware.Actor(c), c.Params("id"), in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, companiesArea)
	}
	return c.JSON(company)
}

// DeleteCompany handles DELETE /api/companies/:id
// @Summary Delete a company without employees
// @Tags Companies
// @Param id path string true "Company ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies/{id} [delete]
func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	if err := h.Companies.Delete(c.UserContext(), middleware.Actor(c), c.Params("id")); err != nil {
		return utils.ServiceErrorResponse(c, err, companiesArea)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListEmployees handles GET /api/companies/:id/employees
// @Summary List the employees of a company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {array} models.Patient
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies/{id}/employees [get]
func (h *CompanyHandler) ListEmployees(c *fiber.Ctx) error {
	patients, err := h.Companies.Employees(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, companiesArea)
	}
	return c.JSON(patients)
}

// CreateEmployee handles POST /api/companies/:id/employees
// @Summary Create a patient employed by the company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param body body services.PatientInput true "Patient"
// @Success 201 {object} models.Patient
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /companies/{id}/employees [post]
func (h *CompanyHandler) CreateEmployee(c *fiber.Ctx) error {
	var in services.PatientInput
	if err := bindJSON(c, &in); err != nil {
		return utils.ServiceErrorResponse(c, err, companiesArea)
	}
	patient, err := h.Companies.CreateEmployee(c.UserContext(), middleware.Actor(c), c.Params("id"), in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, companiesArea)
	}
	return c.Status(fiber.StatusCreated).JSON(patient)
}

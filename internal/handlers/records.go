// records.go
//
// Occupational medical records service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of medrecords.
// medrecords is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// medrecords is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with medrecords.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/middleware"
	"github.com/localnerve/medrecords/internal/schema"
	"github.com/localnerve/medrecords/internal/services"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/localnerve/medrecords/internal/utils"
)

const recordsArea = "records"

// MedicalRecordHandler handles the medical record aggregate routes
type MedicalRecordHandler struct {
	Records *services.MedicalRecords
}

// recordBody is the JSON form of a create or update. Data holds the sections.
type recordBody struct {
	PatientID      string          `json:"patient_id"`
	ProfessionalID string          `json:"professional_id"`
	ExamDate       string          `json:"exam_date"`
	Data           json.RawMessage `json:"data"`
}

// readRecord decodes a multipart form with a JSON data field and optional
// data_img and signature files, or a plain JSON body
func readRecord(c *fiber.Ctx) (services.RecordInput, error) {
	var in services.RecordInput
	var raw []byte

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return in, types.Validation.New("invalid multipart form: %v", err)
		}
		in.PatientID = formValue(form, "patient_id")
		in.ProfessionalID = formValue(form, "professional_id")
		in.ExamDate = formValue(form, "exam_date")
		raw = []byte(formValue(form, "data"))

		if in.DataImage, err = formFile(form, "data_img"); err != nil {
			return in, err
		}
		if in.Signature, err = formFile(form, "signature"); err != nil {
			return in, err
		}
	} else if len(c.Body()) > 0 {
		var body recordBody
		if err := bindJSON(c, &body); err != nil {
			return in, err
		}
		in.PatientID = body.PatientID
		in.ProfessionalID = body.ProfessionalID
		in.ExamDate = body.ExamDate
		raw = body.Data
	}

	sections, err := schema.ParseDocument(raw)
	if err != nil {
		return in, err
	}
	in.Sections = sections
	return in, nil
}

// CreateRecord handles POST /api/medical-records
// @Summary Create a medical record
// @Description Stores a medical record with any of its sections. Multipart forms carry the sections as JSON in the data field plus data_img and signature files.
// @Tags MedicalRecords
// @Accept mpfd,json
// @Produce json
// @Param patient_id formData string true "Patient ID"
// @Param exam_date formData string false "Exam date (YYYY-MM-DD)"
// @Param professional_id formData string false "Signing professional, admins only"
// @Param data formData string false "Sections as a JSON object"
// @Param data_img formData file false "Image of the data section"
// @Param signature formData file false "Signature image"
// @Success 201 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /medical-records [post]
func (h *MedicalRecordHandler) CreateRecord(c *fiber.Ctx) error {
	in, err := readRecord(c)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, recordsArea)
	}

	id, err := h.Records.Create(c.UserContext(), middleware.Actor(c), in)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, recordsArea)
	}
	return utils.MutationResponse(c, fiber.StatusCreated, id, "Medical record created")
}

// ListPatientRecords handles GET /api/medical-records/patient/:patient_id
// @Summary List the medical records of a patient
// @Tags MedicalRecords
// @Produce json
// @Param patient_id path string true "Patient ID"
// @Success 200 {array} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /medical-records/patient/{patient_id} [get]
func (h *MedicalRecordHandler) ListPatientRecords(c *fiber.Ctx) error {
	docs, err := h.Records.ListByPatient(c.UserContext(), middleware.Actor(c), c.Params("patient_id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, recordsArea)
	}
	return c.Status(fiber.StatusOK).JSON(docs)
}

// GetRecord handles GET /api/medical-records/:id
// @Summary Get a medical record with every section
// @Tags MedicalRecords
// @Produce json
// @Param id path string true "Medical record ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /medical-records/{id} [get]
func (h *MedicalRecordHandler) GetRecord(c *fiber.Ctx) error {
	doc, err := h.Records.Get(c.UserContext(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		return utils.ServiceErrorResponse(c, err, recordsArea)
	}
	return c.Status(fiber.StatusOK).JSON(doc)
}

// UpdateRecord handles PUT /api/medical-records/:id
// @Summary Update a medical record
// @Description Upserts every section present in the request. Absent sections are left as they are. New files replace the stored ones.
// @Tags MedicalRecords
// @Accept mpfd,json
// @Produce json
// @Param id path string true "Medical record ID"
// @Param data formData string false "Sections as a JSON object"
// @Param data_img formData file false "Image of the data section"
// @Param signature formData file false "Signature image"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /medical-records/{id} [put]
func (h *MedicalRecordHandler) UpdateRecord(c *fiber.Ctx) error {
	in, err := readRecord(c)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, recordsArea)
	}

	id := c.Params("id")
	if err := h.Records.Update(c.UserContext(), middleware.Actor(c), id, in); err != nil {
		return utils.ServiceErrorResponse(c, err, recordsArea)
	}
	return utils.MutationResponse(c, fiber.StatusOK, id, "Medical record updated")
}

// UpsertSection handles PATCH /api/medical-records/:id/sections/:section
// @Summary Create or update one section
// @Tags MedicalRecords
// @Accept json
// @Produce json
// @Param id path string true "Medical record ID"
// @Param section path string true "Section name"
// @Param body body object true "Section fields"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /medical-records/{id}/sections/{section} [patch]
func (h *MedicalRecordHandler) UpsertSection(c *fiber.Ctx) error {
	id := c.Params("id")
	section := c.Params("section")
	if err := h.Records.UpsertSection(c.UserContext(), middleware.Actor(c), id, section, c.Body()); err != nil {
		return utils.ServiceErrorResponse(c, err, recordsArea)
	}
	return utils.MutationResponse(c, fiber.StatusOK, id, "Section "+section+" saved")
}

// DeleteRecord handles DELETE /api/medical-records/:id
// @Summary Delete a medical record with all sections and files
// @Tags MedicalRecords
// @Param id path string true "Medical record ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /medical-records/{id} [delete]
func (h *MedicalRecordHandler) DeleteRecord(c *fiber.Ctx) error {
	if err := h.Records.Delete(c.UserContext(), middleware.Actor(c), c.Params("id")); err != nil {
		return utils.ServiceErrorResponse(c, err, recordsArea)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

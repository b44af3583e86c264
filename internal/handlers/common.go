// common.go
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
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/aggregate"
	"github.com/localnerve/medrecords/internal/services"
	"github.com/localnerve/medrecords/internal/types"
)

// isMultipart reports whether the request carries a multipart form
func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// formValue returns the first value of a multipart field
func formValue(form *multipart.Form, field string) string {
	if values := form.Value[field]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, types.Validation.New("unreadable upload %s: %v", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, types.Validation.New("unreadable upload %s: %v", fh.Filename, err)
	}
	return data, nil
}

// formFile reads the single file of a multipart field, nil when absent
func formFile(form *multipart.Form, field string) (*aggregate.File, error) {
	parts := form.File[field]
	switch len(parts) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, types.Validation.New("field %s takes a single file", field)
	}

	data, err := readPart(parts[0])
	if err != nil {
		return nil, err
	}
	return &aggregate.File{Name: parts[0].Filename, Data: data}, nil
}

// formUploads reads every file of a multipart field
func formUploads(form *multipart.Form, field string) ([]services.Upload, error) {
	uploads := make([]services.Upload, 0, len(form.File[field]))
	for _, fh := range form.File[field] {
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, services.Upload{
			Name:     fh.Filename,
			MimeType: fh.Header.Get(fiber.HeaderContentType),
			Data:     data,
		})
	}
	return uploads, nil
}

// bindJSON decodes the request body into target
func bindJSON(c *fiber.Ctx, target interface{}) error {
	if len(c.Body()) == 0 {
		return types.Validation.New("request body is empty")
	}
	if err := c.BodyParser(target); err != nil {
		return types.Validation.New("invalid input: %v", err)
	}
	return nil
}

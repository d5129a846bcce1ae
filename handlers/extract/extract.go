package extract

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/pdf-extractor-api/config"
	"github.com/sahilchouksey/pdf-extractor-api/services"
	"github.com/sahilchouksey/pdf-extractor-api/utils/middleware"
	"github.com/sahilchouksey/pdf-extractor-api/utils/pdfvalidation"
	"github.com/sahilchouksey/pdf-extractor-api/utils/response"
	"github.com/sahilchouksey/pdf-extractor-api/utils/validation"
)

// ExtractHandler handles PDF extraction requests
type ExtractHandler struct {
	validator *validation.Validator
	service   *services.ExtractionService
	limits    pdfvalidation.PDFLimits
}

// NewExtractHandler creates a new extract handler
func NewExtractHandler(service *services.ExtractionService, limits pdfvalidation.PDFLimits) *ExtractHandler {
	return &ExtractHandler{
		validator: validation.NewValidator(),
		service:   service,
		limits:    limits,
	}
}

// ExtractForm holds the optional /extract fields
type ExtractForm struct {
	Pages          string `form:"pages" validate:"max=512"`
	Engine         string `form:"engine" validate:"max=32"`
	Strategy       string `form:"strategy" validate:"max=32"`
	HeaderKeywords string `form:"header_keywords" validate:"max=1024"`
}

// ConvertForm holds the optional /convert-to-excel fields
type ConvertForm struct {
	Pages           string `form:"pages" validate:"max=512"`
	Strategy        string `form:"strategy" validate:"max=32"`
	HeaderKeywords  string `form:"header_keywords" validate:"max=1024"`
	IncludeMetadata string `form:"include_metadata" validate:"omitempty,oneof=true false 1 0 TRUE FALSE True False t f"`
}

type extractResponse struct {
	response.Status
	*services.ExtractResult
}

type convertResponse struct {
	response.Status
	*services.ConvertResult
}

// Extract handles POST /extract
func (h *ExtractHandler) Extract(c *fiber.Ctx) error {
	content, fileName, form, err := h.readUpload(c)
	if err != nil {
		return err
	}
	if content == nil {
		return nil
	}

	opts := ExtractForm{
		Pages:          firstValue(form, "pages"),
		Engine:         firstValue(form, "engine"),
		Strategy:       firstValue(form, "strategy"),
		HeaderKeywords: firstValue(form, "header_keywords"),
	}
	if err := h.validator.ValidateStruct(opts); err != nil {
		return response.BadRequest(c, validation.Message(err))
	}

	result, err := h.service.Extract(c.UserContext(), services.ExtractRequest{
		RequestID:      middleware.RequestID(c),
		FileName:       fileName,
		Content:        content,
		Pages:          opts.Pages,
		Engine:         opts.Engine,
		Strategy:       opts.Strategy,
		HeaderKeywords: keywordOverride(form),
	})
	if err != nil {
		return h.fail(c, err)
	}

	return response.OK(c, extractResponse{Status: response.OKStatus(), ExtractResult: result})
}

// ConvertToExcel handles POST /convert-to-excel
func (h *ExtractHandler) ConvertToExcel(c *fiber.Ctx) error {
	content, fileName, form, err := h.readUpload(c)
	if err != nil {
		return err
	}
	if content == nil {
		return nil
	}

	opts := ConvertForm{
		Pages:           firstValue(form, "pages"),
		Strategy:        firstValue(form, "strategy"),
		HeaderKeywords:  firstValue(form, "header_keywords"),
		IncludeMetadata: strings.TrimSpace(firstValue(form, "include_metadata")),
	}
	if err := h.validator.ValidateStruct(opts); err != nil {
		return response.BadRequest(c, validation.Message(err))
	}

	includeMetadata := true
	if opts.IncludeMetadata != "" {
		includeMetadata, _ = strconv.ParseBool(opts.IncludeMetadata)
	}

	result, err := h.service.ConvertToExcel(c.UserContext(), services.ConvertRequest{
		RequestID:       middleware.RequestID(c),
		FileName:        fileName,
		Content:         content,
		Pages:           opts.Pages,
		Strategy:        opts.Strategy,
		HeaderKeywords:  keywordOverride(form),
		IncludeMetadata: includeMetadata,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return response.OK(c, convertResponse{Status: response.OKStatus(), ConvertResult: result})
}

// readUpload parses the multipart body and validates the "file" part. When the
// upload is rejected the error envelope is already written and content is nil.
func (h *ExtractHandler) readUpload(c *fiber.Ctx) ([]byte, string, *multipart.Form, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, "", nil, response.BadRequest(c, "Request must be multipart/form-data with a PDF in the \"file\" field")
	}

	files := form.File["file"]
	if len(files) == 0 {
		return nil, "", nil, response.BadRequest(c, "No file uploaded")
	}
	file := files[0]

	result, err := pdfvalidation.ValidatePDFFile(file, h.limits)
	if err != nil {
		log.Errorf("Extract: failed to read upload %q: %v", file.Filename, err)
		return nil, "", nil, response.InternalServerError(c, err.Error())
	}
	if !result.Valid {
		if result.FileSize > 0 && strings.HasPrefix(result.Error, "File size exceeds") {
			return nil, "", nil, response.PayloadTooLarge(c, result.Error)
		}
		return nil, "", nil, response.BadRequest(c, result.Error)
	}

	return result.Content, file.Filename, form, nil
}

// fail maps service errors onto the error envelope
func (h *ExtractHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case services.IsClientInputError(err), errors.Is(err, services.ErrEmptyDocument):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNoTablesFound):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, services.ErrTooManyPages):
		return response.PayloadTooLarge(c, err.Error())
	default:
		log.Errorf("Extract: %s %s failed: %v", c.Method(), c.Path(), err)
		return response.InternalServerError(c, err.Error())
	}
}

func firstValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// keywordOverride returns nil when header_keywords was not sent, so the
// configured defaults apply. Sending it empty disables header handling.
func keywordOverride(form *multipart.Form) []string {
	values, ok := form.Value["header_keywords"]
	if !ok || len(values) == 0 {
		return nil
	}
	return config.SplitList(values[0])
}

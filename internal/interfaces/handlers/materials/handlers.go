package materials

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"

	"ecoblock-backend/internal/application/imports"
	matsvc "ecoblock-backend/internal/application/materials"
	"ecoblock-backend/internal/application/prediction"
	"ecoblock-backend/internal/application/sources"
	"ecoblock-backend/internal/domain"
	"ecoblock-backend/internal/infrastructure/database"
	"ecoblock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Importer loads a delimited file of materials in one batch.
type Importer interface {
	Import(ctx context.Context, r io.Reader) (*imports.Result, error)
}

// Reloader swaps the usage model served by the predictor.
type Reloader interface {
	Reload(path string) error
	Model() (prediction.LinearModel, bool)
}

type Handlers struct {
	Service  *matsvc.Service
	Importer Importer
	Reloader Reloader
	AdminKey string
	// BaseContext outlives single requests and is cancelled on shutdown. Streamed exports
	// run after the handler returns, so they derive from it instead of the request context.
	BaseContext context.Context
}

func (h *Handlers) streamContext() context.Context {
	if h.BaseContext != nil {
		return h.BaseContext
	}
	return context.Background()
}

// GET /api/v1/materials
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []domain.Material{}
	}
	total, err := h.Service.Total(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Materials fetched successfully", list, fiber.Map{"count": len(list), "total": total, "limit": matsvc.ListLimit})
}

// GET /api/v1/materials/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := materialID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	m, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Material fetched successfully", m, nil)
}

// POST /api/v1/materials
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in matsvc.CreateMaterialInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	m, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Material created successfully", m, nil)
}

// GET /api/v1/materials/export
func (h *Handlers) ExportCSV(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="materials_export.csv"`)
	svc, ctx := h.Service, h.streamContext()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if err := svc.ExportCSV(ctx, w); err != nil {
			log.Error().Err(err).Msg("materials: csv export aborted")
			return
		}
		_ = w.Flush()
	})
	return nil
}

// GET /api/v1/materials/export.xlsx
func (h *Handlers) ExportXLSX(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="materials_export.xlsx"`)
	svc, ctx := h.Service, h.streamContext()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if err := svc.ExportXLSX(ctx, w); err != nil {
			log.Error().Err(err).Msg("materials: xlsx export aborted")
			return
		}
		_ = w.Flush()
	})
	return nil
}

// POST /api/v1/materials/import (multipart field "file")
func (h *Handlers) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, "file is required", fiber.StatusBadRequest, nil)
	}
	f, err := fh.Open()
	if err != nil {
		return response.Error(c, "Could not read uploaded file", fiber.StatusBadRequest, nil)
	}
	defer f.Close()

	res, err := h.Importer.Import(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return response.SuccessCreated(c, "Import completed", res, fiber.Map{"filename": fh.Filename})
}

// GET /api/v1/sources
func (h *Handlers) Sources(c *fiber.Ctx) error {
	return response.Success(c, "Recognized sources", sources.Recognized(), nil)
}

func materialID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("Invalid material id")
	}
	return id, nil
}

// writeError maps service errors to the standard error envelope.
func writeError(c *fiber.Ctx, err error) error {
	var ve *matsvc.ValidationError
	var re *imports.RowError
	switch {
	case errors.As(err, &ve):
		return response.Error(c, "Invalid material input", fiber.StatusBadRequest, ve.Fields)
	case errors.As(err, &re):
		return response.Error(c, "Invalid import file", fiber.StatusBadRequest, fiber.Map{"line": re.Line, "fields": re.Fields})
	case errors.Is(err, matsvc.ErrSourceNotVerified):
		return response.Error(c, matsvc.ErrSourceNotVerified.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, imports.ErrInvalidFile):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, matsvc.ErrMaterialNotFound):
		return response.Error(c, matsvc.ErrMaterialNotFound.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, imports.ErrImportInProgress):
		return response.Error(c, "Another import is in progress", fiber.StatusConflict, nil)
	case errors.Is(err, matsvc.ErrPredictionFailed):
		return response.Error(c, matsvc.ErrPredictionFailed.Error(), fiber.StatusInternalServerError, nil)
	case errors.Is(err, database.ErrStorage):
		log.Error().Err(err).Str("path", c.Path()).Msg("materials: storage error")
		return response.Error(c, "Storage error", fiber.StatusInternalServerError, nil)
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("materials: unexpected error")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

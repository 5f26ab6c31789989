package materials

import (
	"ecoblock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// GET /api/v1/predictions/:id
func (h *Handlers) Predict(c *fiber.Ctx) error {
	id, err := materialID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	p, err := h.Service.PredictForMaterial(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Prediction generated", p, nil)
}

// POST /api/v1/predictions/reload?key=HEALTH_ADMIN_KEY
func (h *Handlers) ReloadModel(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || key != h.AdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	if err := h.Reloader.Reload(""); err != nil {
		log.Warn().Err(err).Msg("materials: model reload failed; previous model kept")
		return response.Error(c, "Model reload failed", fiber.StatusInternalServerError, fiber.Map{"reason": err.Error()})
	}
	m, _ := h.Reloader.Model()
	return response.Success(c, "Model reloaded", fiber.Map{"slope": m.Slope, "intercept": m.Intercept}, nil)
}

// GET /api/v1/analytics/carbon-savings
func (h *Handlers) CarbonSavings(c *fiber.Ctx) error {
	summary, err := h.Service.CarbonSavingsSummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Carbon savings summary", summary, nil)
}

// GET /api/v1/suggestions/:id
func (h *Handlers) Suggestions(c *fiber.Ctx) error {
	id, err := materialID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	alts, err := h.Service.SuggestAlternatives(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Alternatives fetched successfully", alts, fiber.Map{"count": len(alts)})
}

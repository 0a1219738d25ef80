package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-probability/internal/weather"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return weather.KnownCondition(fl.Field().String())
	})
	return v
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. requestTimeout
// bounds each analysis; in-flight provider calls are cancelled when it expires.
func RegisterRoutes(app *fiber.App, service *weather.Service, requestTimeout time.Duration) {
	v1 := app.Group("/api/v1")

	v1.Post("/weather-probability", func(c *fiber.Ctx) error {
		var req probabilityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := withTimeout(c.UserContext(), requestTimeout)
		defer cancel()

		result, err := service.Analyze(ctx, req.toAnalysisRequest())
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(result)
	})

	v1.Get("/locations/search", func(c *fiber.Ctx) error {
		q := locationSearchQuery{Q: c.Query("q"), Limit: c.QueryInt("limit", defaultSearchLimit)}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := withTimeout(c.UserContext(), requestTimeout)
		defer cancel()

		places, err := service.SearchLocations(ctx, q.Q, q.Limit)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{"results": places})
	})
}

// probabilityRequest mirrors the public request body.
type probabilityRequest struct {
	Location            string   `json:"location" validate:"required,max=256"`
	StartDate           string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate             string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	ConditionsChecklist []string `json:"conditions_checklist" validate:"max=8,dive,condition"`
	ActivityProfile     string   `json:"activity_profile" validate:"max=64"`
}

func (r probabilityRequest) toAnalysisRequest() weather.AnalysisRequest {
	return weather.AnalysisRequest{
		Location:        r.Location,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Conditions:      r.ConditionsChecklist,
		ActivityProfile: r.ActivityProfile,
	}
}

const defaultSearchLimit = 5

type locationSearchQuery struct {
	Q     string `validate:"required,max=256"`
	Limit int    `validate:"min=1,max=10"`
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func toFiberError(err error) error {
	switch {
	case errors.Is(err, weather.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "analysis timed out")
	case errors.Is(err, context.Canceled):
		return fiber.NewError(fiber.StatusServiceUnavailable, "analysis cancelled")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to analyze weather probability")
	}
}

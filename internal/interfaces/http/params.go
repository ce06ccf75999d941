package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain"
)

// pageFromQuery lee limit/offset. Los límites se aplican en el caso de uso.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
}

// queryTime acepta RFC3339 o YYYY-MM-DD (medianoche UTC). Vacío devuelve def.
func queryTime(c *fiber.Ctx, key string, def time.Time) (time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, errors.Join(domain.ErrInvalidInput, errors.New(key+" debe ser RFC3339 o YYYY-MM-DD"))
	}
	return t, nil
}

// queryTimePtr como queryTime pero nil cuando falta.
func queryTimePtr(c *fiber.Ctx, key string) (*time.Time, error) {
	if c.Query(key) == "" {
		return nil, nil
	}
	t, err := queryTime(c, key, time.Time{})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

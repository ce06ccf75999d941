package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/climatiza-api/internal/infrastructure/realtime"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// keepAliveEvery intervalo de comentarios SSE para que proxies no corten la conexión.
const keepAliveEvery = 25 * time.Second

// RealtimeHandler emite por SSE los eventos de la empresa del token.
type RealtimeHandler struct {
	hub *realtime.Hub
	log *logger.Logger
}

// NewRealtimeHandler construye el handler.
func NewRealtimeHandler(hub *realtime.Hub, log *logger.Logger) *RealtimeHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RealtimeHandler{hub: hub, log: log.Component("sse")}
}

// Stream godoc
// @Summary      Stream de eventos en tiempo real (SSE)
// @Description  Cada evento se envía como `event: <type>` + `data: <json>`. Acepta ?access_token= para EventSource.
// @Tags         realtime
// @Security     Bearer
// @Produce      text/event-stream
// @Success      200
// @Router       /api/realtime/stream [get]
func (h *RealtimeHandler) Stream(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(companyID)
	log := h.log
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(sub)
		ticker := time.NewTicker(keepAliveEvery)
		defer ticker.Stop()

		fmt.Fprint(w, ": conectado\n\n")
		if w.Flush() != nil {
			return
		}
		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					log.Warn().Err(err).Str("type", ev.Type).Msg("evento no serializable")
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			// Flush falla cuando el cliente cierra la conexión.
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}

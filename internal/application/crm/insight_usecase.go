package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/domain/repository"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// dueWindow horizonte para considerar un mantenimiento "próximo".
const dueWindow = 30 * 24 * time.Hour

const insightSystemPrompt = `Eres el asistente de una empresa de climatización.
Resume en 2-3 frases, en español y sin inventar datos, la situación del cliente para el técnico o comercial:
equipos, mantenimientos pendientes, órdenes abiertas y última visita. Sugiere la siguiente acción.`

// InsightUseCase panel de resumen del cliente. Usa el LLM si está configurado.
type InsightUseCase struct {
	customerRepo repository.CustomerRepository
	deviceRepo   repository.DeviceRepository
	orderRepo    repository.ServiceOrderRepository
	llm          ports.LLMService // opcional
	log          *logger.Logger
	now          func() time.Time
}

// NewInsightUseCase construye el caso de uso. llm puede ser nil.
func NewInsightUseCase(
	customerRepo repository.CustomerRepository,
	deviceRepo repository.DeviceRepository,
	orderRepo repository.ServiceOrderRepository,
	llm ports.LLMService,
	log *logger.Logger,
) *InsightUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &InsightUseCase{
		customerRepo: customerRepo, deviceRepo: deviceRepo, orderRepo: orderRepo,
		llm: llm, log: log.Component("insight"), now: time.Now,
	}
}

// Insight calcula los indicadores del cliente y genera el resumen.
func (uc *InsightUseCase) Insight(ctx context.Context, companyID, customerID string) (*dto.CustomerInsightDTO, error) {
	c, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	devices, err := uc.deviceRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	orders, _, err := uc.orderRepo.List(ctx, entity.ServiceOrderFilter{CompanyID: companyID, CustomerID: customerID, Limit: 200})
	if err != nil {
		return nil, err
	}

	now := uc.now()
	out := &dto.CustomerInsightDTO{CustomerID: customerID, Devices: len(devices)}
	for _, d := range devices {
		if d.NextServiceAt != nil && d.NextServiceAt.Before(now.Add(dueWindow)) {
			out.DevicesDue++
		}
	}
	for _, o := range orders {
		if !o.Closed() {
			out.OpenOrders++
		}
		if o.CompletedAt != nil && (out.LastVisit == nil || o.CompletedAt.After(*out.LastVisit)) {
			t := *o.CompletedAt
			out.LastVisit = &t
		}
	}

	facts := uc.facts(c, devices, out)
	out.Summary = templateSummary(c, out)
	if uc.llm == nil {
		return out, nil
	}
	llmCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	text, err := uc.llm.Complete(llmCtx, insightSystemPrompt, facts)
	if err != nil {
		uc.log.Warn().Err(err).Str("provider", uc.llm.Name()).Msg("resumen LLM no disponible, se usa plantilla")
		return out, nil
	}
	if text = strings.TrimSpace(text); text != "" {
		out.Summary, out.GeneratedByLLM = text, true
	}
	return out, nil
}

func (uc *InsightUseCase) facts(c *entity.Customer, devices []*entity.Device, in *dto.CustomerInsightDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cliente: %s (%s), %s\n", c.Name, c.Type, c.City)
	for _, d := range devices {
		fmt.Fprintf(&b, "- Equipo %s %s %s", d.Kind, d.Brand, d.Model)
		if d.NextServiceAt != nil {
			fmt.Fprintf(&b, ", próximo mantenimiento %s", d.NextServiceAt.Format("2006-01-02"))
		}
		if d.UnderWarranty(uc.now()) {
			b.WriteString(", en garantía")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Órdenes abiertas: %d\n", in.OpenOrders)
	if in.LastVisit != nil {
		fmt.Fprintf(&b, "Última visita: %s\n", in.LastVisit.Format("2006-01-02"))
	}
	if c.Notes != "" {
		fmt.Fprintf(&b, "Notas: %s\n", c.Notes)
	}
	return b.String()
}

func templateSummary(c *entity.Customer, in *dto.CustomerInsightDTO) string {
	s := fmt.Sprintf("%s tiene %d equipo(s) registrado(s)", c.Name, in.Devices)
	if in.DevicesDue > 0 {
		s += fmt.Sprintf(", %d con mantenimiento pendiente en los próximos 30 días", in.DevicesDue)
	}
	s += fmt.Sprintf(" y %d orden(es) abierta(s).", in.OpenOrders)
	if in.LastVisit != nil {
		s += " Última visita: " + in.LastVisit.Format("02/01/2006") + "."
	} else {
		s += " Sin visitas completadas."
	}
	return s
}

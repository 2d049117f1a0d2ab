package visit

import (
	"context"
	"io"

	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/visit"
	"github.com/salescrm/backend/internal/infrastructure/export"
)

var visitExportHeaders = []string{
	"Semana", "Año", "Fecha", "Turno", "Cliente", "Vendedor", "Título", "Tipo",
	"Prioridad", "Estado", "Planificación", "Duración", "Resultado", "Satisfacción",
}

// ExportXLSX writes the visits matching the filter as a spreadsheet with a
// detail sheet and a summary per status
func (s *VisitService) ExportXLSX(ctx context.Context, actor identity.Actor, filter VisitListFilter, w io.Writer) error {
	domainFilter, err := s.toDomainFilter(actor, filter)
	if err != nil {
		return err
	}
	domainFilter.PageSize = 0
	visits, err := s.visitRepo.FindAllUnpaged(ctx, domainFilter)
	if err != nil {
		return err
	}
	rows, err := s.withNames(ctx, visits)
	if err != nil {
		return err
	}

	detail := export.NewTable("Visitas", visitExportHeaders...)
	counts := make(map[string]int, len(visit.AllStatuses()))
	for _, v := range rows {
		var satisfaction any
		if v.CustomerSatisfaction != nil {
			satisfaction = *v.CustomerSatisfaction
		}
		detail.Append(v.Week, v.Year, v.ScheduledAt, v.Shift, v.ClientName, v.SellerName, v.Title, v.Type,
			v.Priority, v.Status, v.PlanningType, v.Duration, v.Result, satisfaction)
		counts[v.Status]++
	}

	summary := export.NewTable("Resumen", "Estado", "Cantidad")
	for _, st := range visit.AllStatuses() {
		summary.Append(st.String(), counts[st.String()])
	}
	summary.Append("Total", len(rows))

	return export.WriteXLSX(w, detail, summary)
}

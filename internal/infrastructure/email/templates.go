package email

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// Template IDs
const (
	TemplateWelcome           = "bienvenida"
	TemplateTest              = "prueba"
	TemplateCustom            = "personalizado"
	TemplatePlanningSubmitted = "planificacion_enviada"
	TemplateOrderNew          = "pedido_nuevo"
	TemplateOrderProcessing   = "pedido_procesando"
	TemplateOrderCompleted    = "pedido_completado"
	TemplateOrderCancelled    = "pedido_cancelado"
	TemplateFollowUp          = "seguimiento"
	TemplateQuotation         = "cotizacion"
	TemplateThanks            = "agradecimiento"
)

// Template is a named subject and body pair rendered with text/template
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// ClientFacing marks templates users may pick when writing to a client contact
	ClientFacing bool `json:"-"`

	subject *template.Template
	body    *template.Template
}

// Render executes the subject and body with data
func (t *Template) Render(data any) (string, string, error) {
	var subject, body strings.Builder
	if err := t.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", t.ID, err)
	}
	if err := t.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", t.ID, err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}

// WelcomeData feeds the welcome template
type WelcomeData struct {
	AppName string
	Name    string
	Date    string
}

// TestData feeds the test template
type TestData struct {
	AppName string
	Date    string
}

// OrderData feeds the order notification templates
type OrderData struct {
	AppName   string
	Name      string
	OrderCode string
	Total     string
	Date      string
}

// PlanningData feeds the planning submitted notice
type PlanningData struct {
	AppName    string
	Manager    string
	Seller     string
	Week       int
	Year       int
	VisitCount int
}

// CustomData feeds the custom client email
type CustomData struct {
	AppName string
	Subject string
	Contact string
	Client  string
	Message string
	Date    string
}

// ClientData feeds the client-facing templates
type ClientData struct {
	AppName     string
	Client      string
	Contact     string
	Date        string
	Description string
}

var registry = map[string]*Template{}

func register(t *Template) {
	t.subject = template.Must(template.New(t.ID + ".subject").Parse(t.Subject))
	t.body = template.Must(template.New(t.ID + ".body").Parse(t.Body))
	registry[t.ID] = t
}

// Lookup finds a template by ID
func Lookup(id string) (*Template, bool) {
	t, ok := registry[id]
	return t, ok
}

// ClientTemplates lists the templates available for writing to clients, sorted by ID
func ClientTemplates() []*Template {
	var out []*Template
	for _, t := range registry {
		if t.ClientFacing {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

const signature = "\n\nSaludos cordiales,\nEquipo {{.AppName}}\n"

func init() {
	register(&Template{
		ID:      TemplateWelcome,
		Name:    "Bienvenida",
		Subject: "¡Bienvenido a {{.AppName}}!",
		Body: "Hola {{.Name}},\n\nTu cuenta en {{.AppName}} fue creada el {{.Date}}.\n\n" +
			"Desde ahora puedes gestionar tus clientes, planificar tus visitas semanales y dar seguimiento a cotizaciones y pedidos." +
			signature,
	})
	register(&Template{
		ID:      TemplateTest,
		Name:    "Prueba",
		Subject: "Email de Prueba - {{.AppName}}",
		Body: "Este es un email de prueba del sistema {{.AppName}}.\n\n" +
			"Si recibes este mensaje, la configuración de email está funcionando correctamente.\n\n" +
			"Fecha: {{.Date}}\n",
	})
	register(&Template{
		ID:      TemplateCustom,
		Name:    "Personalizado",
		Subject: "{{.Subject}}",
		Body:    "Estimado/a {{.Contact}},\n\n{{.Message}}" + signature,
	})
	register(&Template{
		ID:      TemplatePlanningSubmitted,
		Name:    "Planificación enviada",
		Subject: "Planificación semana {{.Week}}/{{.Year}} de {{.Seller}} pendiente de aprobación",
		Body: "Hola {{.Manager}},\n\n{{.Seller}} envió su planificación de la semana {{.Week}} de {{.Year}} " +
			"con {{.VisitCount}} visita{{if ne .VisitCount 1}}s{{end}}.\n\nRevísala para aprobarla o rechazarla." +
			signature,
	})

	orderBody := func(line string) string {
		return "Hola {{.Name}},\n\n" + line + "\n\nPedido: #{{.OrderCode}}\n{{if .Total}}Monto: {{.Total}}\n{{end}}Fecha: {{.Date}}" + signature
	}
	register(&Template{
		ID:      TemplateOrderNew,
		Name:    "Pedido nuevo",
		Subject: "Nuevo pedido #{{.OrderCode}}",
		Body:    orderBody("Registramos tu pedido correctamente."),
	})
	register(&Template{
		ID:      TemplateOrderProcessing,
		Name:    "Pedido en proceso",
		Subject: "Tu pedido #{{.OrderCode}} está en proceso",
		Body:    orderBody("Tu pedido se encuentra en proceso."),
	})
	register(&Template{
		ID:      TemplateOrderCompleted,
		Name:    "Pedido completado",
		Subject: "Tu pedido #{{.OrderCode}} ha sido completado",
		Body:    orderBody("Tu pedido fue completado. Gracias por tu confianza."),
	})
	register(&Template{
		ID:      TemplateOrderCancelled,
		Name:    "Pedido cancelado",
		Subject: "Tu pedido #{{.OrderCode}} ha sido cancelado",
		Body:    orderBody("Tu pedido fue cancelado. Contáctanos si tienes dudas."),
	})

	register(&Template{
		ID:           TemplateFollowUp,
		Name:         "Seguimiento Comercial",
		Subject:      "Seguimiento - {{.Client}}",
		ClientFacing: true,
		Body: "Estimado/a {{.Contact}},\n\nEsperamos que se encuentre bien.\n\n" +
			"Nos ponemos en contacto para dar seguimiento a nuestra propuesta comercial presentada el {{.Date}}.\n\n" +
			"¿Podríamos coordinar una reunión para resolver cualquier duda?\n\nQuedamos atentos a su respuesta." +
			signature,
	})
	register(&Template{
		ID:           TemplateQuotation,
		Name:         "Envío de Cotización",
		Subject:      "Cotización - {{.Client}}",
		ClientFacing: true,
		Body: "Estimado/a {{.Contact}},\n\nAdjunto encontrará la cotización solicitada para {{or .Description \"nuestros servicios\"}}.\n\n" +
			"La propuesta tiene vigencia de 30 días e incluye:\n- Descripción detallada del servicio\n" +
			"- Cronograma de implementación\n- Términos y condiciones\n\n" +
			"Quedamos a su disposición para cualquier consulta." +
			signature,
	})
	register(&Template{
		ID:           TemplateThanks,
		Name:         "Agradecimiento Post-Visita",
		Subject:      "Gracias por su tiempo - {{.Client}}",
		ClientFacing: true,
		Body: "Estimado/a {{.Contact}},\n\nGracias por recibirnos y por el tiempo dedicado en nuestra reunión del {{.Date}}.\n\n" +
			"Como acordamos, enviaremos la propuesta detallada en los próximos días.\n\n" +
			"Mientras tanto, no dude en contactarnos si tiene alguna pregunta." +
			signature,
	})
}

package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/salescrm/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleMessage() Message {
	return Message{
		To:      []Address{{Name: "Ana Torres", Email: "ana@acme.pe"}},
		Subject: "Hola",
		Text:    "Texto",
	}
}

func TestMessage_Validate(t *testing.T) {
	assert.NoError(t, sampleMessage().Validate())

	noTo := sampleMessage()
	noTo.To = nil
	assert.ErrorIs(t, noTo.Validate(), ErrNoRecipients)

	badTo := sampleMessage()
	badTo.To = []Address{{Email: "not-an-email"}}
	assert.Error(t, badTo.Validate())

	noSubject := sampleMessage()
	noSubject.Subject = "  "
	assert.Error(t, noSubject.Validate())
}

func TestAddress_String(t *testing.T) {
	assert.Equal(t, `"Ana Torres" <ana@acme.pe>`, Address{Name: "Ana Torres", Email: "ana@acme.pe"}.String())
	assert.Equal(t, "<ana@acme.pe>", Address{Email: "ana@acme.pe"}.String())
}

func TestStatusOf(t *testing.T) {
	status := StatusOf(config.EmailConfig{Provider: "sendgrid", FromEmail: "crm@eym.pe", FromName: "CRM"})
	assert.Equal(t, ProviderLog, status.Provider)
	assert.False(t, status.Configured)

	status = StatusOf(config.EmailConfig{Provider: "sendgrid", APIKey: "SG.x", FromEmail: "crm@eym.pe"})
	assert.Equal(t, ProviderSendGrid, status.Provider)
	assert.True(t, status.Configured)
	assert.Equal(t, "crm@eym.pe", status.FromEmail)
}

func TestNewSender(t *testing.T) {
	logger := zap.NewNop()
	assert.IsType(t, &LogSender{}, NewSender(config.EmailConfig{Provider: "log"}, logger))
	assert.IsType(t, &SendGridSender{}, NewSender(config.EmailConfig{Provider: "sendgrid", APIKey: "SG.x"}, logger))
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(Address{Email: "crm@eym.pe"}, zap.NewNop())

	require.NoError(t, s.Send(context.Background(), sampleMessage()))
	assert.ErrorIs(t, s.Send(context.Background(), Message{Subject: "x"}), ErrNoRecipients)

	sent := s.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Hola", sent[0].Subject)
}

func TestSendGridSender_Send(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, sendGridEndpoint, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender("SG.test", Address{Name: "CRM", Email: "crm@eym.pe"}, zap.NewNop())
	s.host = srv.URL

	msg := sampleMessage()
	msg.HTML = "<p>Texto</p>"
	require.NoError(t, s.Send(context.Background(), msg))

	assert.Equal(t, "Bearer SG.test", auth)
	assert.Equal(t, "crm@eym.pe", got["from"].(map[string]any)["email"])
	personalizations := got["personalizations"].([]any)
	require.Len(t, personalizations, 1)
	assert.Equal(t, "Hola", personalizations[0].(map[string]any)["subject"])
	assert.Len(t, got["content"].([]any), 2)
}

func TestSendGridSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	s := NewSendGridSender("SG.bad", Address{Email: "crm@eym.pe"}, zap.NewNop())
	s.host = srv.URL

	err := s.Send(context.Background(), sampleMessage())
	assert.EqualError(t, err, "sendgrid returned status 401")
}

func TestSendGridSender_CancelledContext(t *testing.T) {
	s := NewSendGridSender("SG.x", Address{Email: "crm@eym.pe"}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, sampleMessage()), context.Canceled)
}

func TestTemplates_Render(t *testing.T) {
	tests := []struct {
		id          string
		data        any
		wantSubject string
		wantBody    string
	}{
		{TemplateWelcome, WelcomeData{AppName: "CRM EYM", Name: "Ana", Date: "15/06/2025"}, "¡Bienvenido a CRM EYM!", "Hola Ana"},
		{TemplateTest, TestData{AppName: "CRM EYM", Date: "15/06/2025 10:00"}, "Email de Prueba - CRM EYM", "Fecha: 15/06/2025 10:00"},
		{TemplateOrderNew, OrderData{OrderCode: "PED-2025-0001", Total: "S/ 100.00"}, "Nuevo pedido #PED-2025-0001", "Monto: S/ 100.00"},
		{TemplateOrderProcessing, OrderData{OrderCode: "PED-2025-0001"}, "Tu pedido #PED-2025-0001 está en proceso", "Pedido: #PED-2025-0001"},
		{TemplateOrderCompleted, OrderData{OrderCode: "PED-2025-0001"}, "Tu pedido #PED-2025-0001 ha sido completado", "completado"},
		{TemplateOrderCancelled, OrderData{OrderCode: "PED-2025-0001"}, "Tu pedido #PED-2025-0001 ha sido cancelado", "cancelado"},
		{TemplatePlanningSubmitted, PlanningData{Manager: "Luis", Seller: "Ana", Week: 25, Year: 2025, VisitCount: 1}, "Planificación semana 25/2025 de Ana pendiente de aprobación", "con 1 visita."},
		{TemplateFollowUp, ClientData{Client: "ACME", Contact: "Juan"}, "Seguimiento - ACME", "Estimado/a Juan"},
		{TemplateQuotation, ClientData{Client: "ACME"}, "Cotización - ACME", "para nuestros servicios."},
		{TemplateThanks, ClientData{Client: "ACME", Date: "15/06/2025"}, "Gracias por su tiempo - ACME", "reunión del 15/06/2025"},
		{TemplateCustom, CustomData{Subject: "Propuesta", Contact: "Juan", Message: "Adjunto info"}, "Propuesta", "Adjunto info"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			tpl, ok := Lookup(tt.id)
			require.True(t, ok)
			subject, body, err := tpl.Render(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, subject)
			assert.Contains(t, body, tt.wantBody)
		})
	}
}

func TestTemplates_OrderWithoutTotal(t *testing.T) {
	tpl, _ := Lookup(TemplateOrderNew)
	_, body, err := tpl.Render(OrderData{OrderCode: "PED-2025-0001"})
	require.NoError(t, err)
	assert.NotContains(t, body, "Monto")
}

func TestClientTemplates(t *testing.T) {
	ids := []string{}
	for _, tpl := range ClientTemplates() {
		ids = append(ids, tpl.ID)
	}
	assert.Equal(t, []string{TemplateThanks, TemplateQuotation, TemplateFollowUp}, ids)

	_, ok := Lookup("missing")
	assert.False(t, ok)
}

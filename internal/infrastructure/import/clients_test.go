package csvimport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/salescrm/backend/internal/domain/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientHeader = "RUC,Razón Social,Sector,Estado,Teléfono,Website,Dirección,Contacto Nombre,Contacto Apellidos,Contacto Email,Contacto Celular,Contacto Puesto\n"

func TestParseClients(t *testing.T) {
	data := clientHeader +
		"20123456789,ACME S.A.C.,Sector 01,cotizado,01-555,https://acme.pe,Av. Lima 1,Juan,Pérez,JUAN@ACME.PE,987654321,Gerente\n" +
		"2012,Mala SAC,Sector 02,,,,,Ana,,ana@mala.pe,,\n" +
		"20123456789,Duplicada SAC,Sector 01,,,,,Luis,,luis@dup.pe,,\n" +
		"20555555555,Sin sector,Sector 99,,,,,Eva,,eva@x.pe,,\n" +
		"20666666666,Beta SRL,Sector 03,,,,,Rosa,Díaz,rosa@beta.pe,,\n"

	batch, err := ParseClients(strings.NewReader(data), 50)
	require.NoError(t, err)

	require.Len(t, batch.Rows, 2)
	assert.Equal(t, 5, batch.Total)
	first := batch.Rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, client.StatusQuoted, first.Status)
	assert.Equal(t, "ACME S.A.C.", first.Client.BusinessName)
	assert.Equal(t, "https://acme.pe", first.Client.Website)
	assert.Equal(t, "juan@acme.pe", first.Contact.Email)
	assert.Equal(t, "Gerente", first.Contact.Title)

	second := batch.Rows[1]
	assert.Equal(t, 6, second.Line)
	assert.Equal(t, client.StatusPending, second.Status)

	messages := batch.Errors.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "Fila 3: RUC: must be 11 digits", messages[0])
	assert.Contains(t, messages[1], "Fila 4: RUC:")
	assert.Equal(t, "Fila 5: Sector: unknown sector 'Sector 99'", messages[2])
}

func TestParseClients_Semicolons(t *testing.T) {
	data := "RUC;Razon Social;Sector;Contacto Nombre;Contacto Email\n20123456789;ACME;Sector 01;Juan;juan@acme.pe\n"
	batch, err := ParseClients(strings.NewReader(data), 10)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "ACME", batch.Rows[0].Client.BusinessName)
}

func TestParseClients_FileErrors(t *testing.T) {
	_, err := ParseClients(strings.NewReader("RUC,Sector\n1,2\n"), 10)
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Columns, ColBusinessName)

	_, err = ParseClients(strings.NewReader(clientHeader), 10)
	assert.ErrorIs(t, err, ErrNoDataRows)

	_, err = ParseClients(strings.NewReader(""), 10)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestClientTemplate_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ClientTemplate(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	batch, err := ParseClients(&buf, 10)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.False(t, batch.Errors.HasErrors())
	assert.Equal(t, "20123456789", batch.Rows[0].Client.RUC)
}

func TestParseClients_ExportHeader(t *testing.T) {
	data := "Código;RUC;Razón Social;Sector;Estado;Teléfono;Website;Dirección;Contacto Principal;Email Contacto;Celular Contacto;Puesto Contacto\n" +
		"EMP-000001;20123456789;ACME S.A.C.;Sector 01;Visitado;;;;Juan Pérez;juan@acme.pe;987654321;Gerente\n"

	batch, err := ParseClients(strings.NewReader(data), 10)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	row := batch.Rows[0]
	assert.Equal(t, client.StatusVisited, row.Status)
	assert.Equal(t, "Juan Pérez", row.Contact.FirstName)
	assert.Equal(t, "juan@acme.pe", row.Contact.Email)
	assert.Equal(t, "987654321", row.Contact.Mobile)
	assert.Equal(t, "Gerente", row.Contact.Title)
}

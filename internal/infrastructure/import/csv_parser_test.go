package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVParser(t *testing.T) {
	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("\xEF\xBB\xBFRUC,Sector\n20123456789,Sector 01"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, "RUC", parser.Headers()[0])
	})

	t.Run("Empty file returns error", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
		assert.Nil(t, parser)
	})

	t.Run("Invalid UTF-8 without fallback returns error", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader("RUC,Raz\xf3n Social\n1,2"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("Custom delimiter", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("a;b;c\n1;2;3"), WithDelimiter(';'))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"a", "b", "c"}, parser.Headers())
	})

	t.Run("Detected delimiter", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("RUC;Sector\n20123456789;Sector 01"), WithDetectedDelimiter())
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "Sector 01", row.Get("sector"))
	})
}

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"Razón Social":    "razon social",
		"  TELÉFONO ":     "telefono",
		"Dirección":       "direccion",
		"Contacto   Email": "contacto email",
		"RUC":             "ruc",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestCSVParser_ReadRow(t *testing.T) {
	data := "RUC,Razon Social,Telefono\n20123456789,  ACME SAC  ,01-555\n\n20999999999,Beta\n"
	parser, err := ParseFromBytes([]byte(data))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())

	assert.True(t, parser.HasHeader("Razón Social"))
	assert.True(t, parser.HasHeader("teléfono"))

	row, err := parser.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, 2, row.LineNumber)
	assert.Equal(t, "ACME SAC", row.Get("Razón Social"))
	assert.Equal(t, "01-555", row.Get("Teléfono"))
	assert.Equal(t, "n/a", row.GetOrDefault("Website", "n/a"))

	rows, err := parser.ReadAllRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Beta", rows[0].Get("razon social"))
	assert.Equal(t, "", rows[0].Get("Telefono"), "short rows are padded")

	_, err = parser.ReadRow()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, parser.RowsRead())
}

func TestCSVParser_Windows1252Fallback(t *testing.T) {
	latin1 := "RUC,Raz\xf3n Social\n20123456789,Ferreter\xeda Lima\n"

	parser, err := ParseFromBytes([]byte(latin1), WithWindows1252Fallback())
	require.NoError(t, err)
	assert.Equal(t, "Windows-1252", parser.Encoding())
	require.NoError(t, parser.ParseHeader())
	assert.Equal(t, "Razón Social", parser.Headers()[1])

	row, err := parser.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "Ferretería Lima", row.Get("Razón Social"))
}

func TestCSVParser_HeaderAliases(t *testing.T) {
	parser, err := ParseFromBytes([]byte("Email Contacto,Contacto Email\nfirst@acme.pe,second@acme.pe\n"),
		WithHeaderAliases(map[string][]string{"Contacto Email": {"Email Contacto"}}))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())
	assert.True(t, parser.HasHeader("contacto email"))
	assert.True(t, parser.HasHeader("Email Contacto"))

	row, err := parser.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "first@acme.pe", row.Get("Contacto Email"), "first matching column wins")
}

func TestCSVParser_ValidateHeaders(t *testing.T) {
	parser, err := ParseFromBytes([]byte("RUC,Sector\n1,2"))
	require.NoError(t, err)
	require.NoError(t, parser.ParseHeader())
	assert.Equal(t, []string{"Razón Social"}, parser.ValidateHeaders([]string{"RUC", "Razón Social", "sector"}))
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', DetectDelimiter([]byte("RUC;Razón Social;Sector\n1;2;3")))
	assert.Equal(t, ',', DetectDelimiter([]byte("RUC,Razón Social;x,Sector\n")))
	assert.Equal(t, ',', DetectDelimiter([]byte("")))
}

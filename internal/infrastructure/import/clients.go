package csvimport

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/salescrm/backend/internal/domain/client"
)

// Client import columns
const (
	ColRUC              = "RUC"
	ColBusinessName     = "Razón Social"
	ColSector           = "Sector"
	ColStatus           = "Estado"
	ColPhone            = "Teléfono"
	ColWebsite          = "Website"
	ColAddress          = "Dirección"
	ColContactFirstName = "Contacto Nombre"
	ColContactLastName  = "Contacto Apellidos"
	ColContactEmail     = "Contacto Email"
	ColContactMobile    = "Contacto Celular"
	ColContactTitle     = "Contacto Puesto"
)

// ClientColumns is the header of the client import file, in template order
var ClientColumns = []string{
	ColRUC, ColBusinessName, ColSector, ColStatus, ColPhone, ColWebsite, ColAddress,
	ColContactFirstName, ColContactLastName, ColContactEmail, ColContactMobile, ColContactTitle,
}

var clientRequiredColumns = []string{ColRUC, ColBusinessName, ColSector, ColContactFirstName, ColContactEmail}

// clientAliases accepts the client export header, so an exported file can be
// edited and imported back. The export has the contact's full name only; it
// lands in the first name.
var clientAliases = map[string][]string{
	ColBusinessName:     {"Empresa", "Razon Social Cliente"},
	ColPhone:            {"Telefono Empresa"},
	ColContactFirstName: {"Contacto Principal", "Nombre Contacto"},
	ColContactLastName:  {"Apellidos Contacto"},
	ColContactEmail:     {"Email Contacto"},
	ColContactMobile:    {"Celular Contacto"},
	ColContactTitle:     {"Puesto Contacto"},
}

// ClientRow is a parsed, field-validated line of the client import file
type ClientRow struct {
	Line    int
	Client  client.ClientInput
	Status  client.Status
	Contact client.ContactInput
}

// ClientBatch is the outcome of parsing a client import file
type ClientBatch struct {
	Rows   []ClientRow
	Errors *ErrorCollection
	// Total counts the non-empty data rows read, valid or not
	Total int
}

// ClientRules returns the column rules of the client import file
func ClientRules() []FieldRule {
	return []FieldRule{
		Field(ColRUC).Required().Pattern(`^\d{11}$`, "11 digits").Unique().Build(),
		Field(ColBusinessName).Required().MaxLength(255).Build(),
		Field(ColSector).Required().Custom(func(v string) error {
			if !client.IsValidSector(v) {
				return errors.New("unknown sector '" + v + "'")
			}
			return nil
		}).Build(),
		Field(ColStatus).Custom(func(v string) error {
			if _, ok := matchStatus(v); !ok {
				return errors.New("unknown status '" + v + "'")
			}
			return nil
		}).Build(),
		Field(ColWebsite).MaxLength(255).Build(),
		Field(ColContactFirstName).Required().MaxLength(100).Build(),
		Field(ColContactLastName).MaxLength(100).Build(),
		Field(ColContactEmail).Required().Email().Build(),
	}
}

// matchStatus resolves a status label ignoring case and accents
func matchStatus(v string) (client.Status, bool) {
	key := NormalizeHeader(v)
	for _, s := range client.AllStatuses() {
		if NormalizeHeader(string(s)) == key {
			return s, true
		}
	}
	return "", false
}

// ParseClients reads a client import file. Rows failing field validation are reported
// in the batch errors and left out of Rows. File-level problems (encoding, header,
// missing columns) are returned as error.
func ParseClients(r io.Reader, maxErrors int) (*ClientBatch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	parser, err := ParseFromBytes(data,
		WithDetectedDelimiter(),
		WithWindows1252Fallback(),
		WithHeaderAliases(clientAliases),
	)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.ValidateHeaders(clientRequiredColumns); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	validator := NewFieldValidator(ClientRules(), maxErrors)
	batch := &ClientBatch{Errors: validator.Errors()}
	for {
		row, err := parser.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			batch.Total++
			batch.Errors.Addf(parser.Line(), ErrCodeMalformedRow, "%v", errors.Unwrap(err))
			continue
		}
		if row.IsEmpty() {
			continue
		}
		batch.Total++
		if !validator.ValidateRow(row) {
			continue
		}
		batch.Rows = append(batch.Rows, toClientRow(row))
	}
	if parser.RowsRead() == 0 {
		return nil, ErrNoDataRows
	}
	return batch, nil
}

func toClientRow(row *Row) ClientRow {
	status := client.StatusPending
	if s, ok := matchStatus(row.Get(ColStatus)); ok {
		status = s
	}
	return ClientRow{
		Line:   row.LineNumber,
		Status: status,
		Client: client.ClientInput{
			RUC:          row.Get(ColRUC),
			BusinessName: row.Get(ColBusinessName),
			Sector:       row.Get(ColSector),
			Phone:        row.Get(ColPhone),
			Website:      row.Get(ColWebsite),
			Address:      row.Get(ColAddress),
		},
		Contact: client.ContactInput{
			FirstName: row.Get(ColContactFirstName),
			LastName:  row.Get(ColContactLastName),
			Email:     strings.ToLower(row.Get(ColContactEmail)),
			Mobile:    row.Get(ColContactMobile),
			Title:     row.Get(ColContactTitle),
		},
	}
}

// ClientTemplate writes the import template: the header plus one example row
func ClientTemplate(w io.Writer) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	_ = cw.Write(ClientColumns)
	_ = cw.Write([]string{
		"20123456789", "Empresa Ejemplo S.A.C.", "Sector 01", "Pendiente", "01-1234567",
		"https://www.ejemplo.com", "Av. Ejemplo 123, Lima", "Juan", "Pérez",
		"juan.perez@ejemplo.com", "987654321", "Gerente General",
	})
	cw.Flush()
	return cw.Error()
}

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/export"
	csvimport "github.com/salescrm/backend/internal/infrastructure/import"
	"go.uber.org/zap"
)

// MaxImportErrors caps the row errors reported by an import
const MaxImportErrors = 100

var clientExportHeaders = []string{
	"Código", "RUC", "Razón Social", "Sector", "Estado", "Teléfono", "Website", "Dirección",
	"Contacto Principal", "Email Contacto", "Celular Contacto", "Puesto Contacto",
}

// ExportCSV writes the clients matching the filter as CSV
func (s *ClientService) ExportCSV(ctx context.Context, filter ClientListFilter, w io.Writer) error {
	table, err := s.exportTable(ctx, filter)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, table)
}

// ExportXLSX writes the clients matching the filter as a spreadsheet
func (s *ClientService) ExportXLSX(ctx context.Context, filter ClientListFilter, w io.Writer) error {
	table, err := s.exportTable(ctx, filter)
	if err != nil {
		return err
	}
	return export.WriteXLSX(w, table)
}

func (s *ClientService) exportTable(ctx context.Context, filter ClientListFilter) (*export.Table, error) {
	domainFilter, err := toDomainFilter(filter)
	if err != nil {
		return nil, err
	}
	clients, err := s.clientRepo.FindAllUnpaged(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	rows, err := s.withPrimaryContacts(ctx, clients)
	if err != nil {
		return nil, err
	}

	table := export.NewTable("Clientes", clientExportHeaders...)
	for _, c := range rows {
		var name, email, mobile, title string
		if p := c.PrimaryContact; p != nil {
			name, email, mobile, title = p.FullName, p.Email, p.Mobile, p.Title
		}
		table.Append(c.Code, c.RUC, c.BusinessName, c.Sector, c.Status, c.Phone, c.Website, c.Address,
			name, email, mobile, title)
	}
	return table, nil
}

// ImportTemplate writes the CSV template for client imports
func (s *ClientService) ImportTemplate(w io.Writer) error {
	return csvimport.ClientTemplate(w)
}

// ImportCSV creates clients and their principal contacts from a CSV file. Rows with
// invalid data or a RUC already registered are skipped and reported by row number.
func (s *ClientService) ImportCSV(ctx context.Context, actor identity.Actor, r io.Reader) (*ImportResult, error) {
	batch, err := csvimport.ParseClients(r, MaxImportErrors)
	if err != nil {
		return nil, importFileError(err)
	}

	result := &ImportResult{}
	for _, row := range batch.Rows {
		var created *client.Client
		err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			created, _, err = s.createWithContact(ctx, actor, row.Client, row.Status, row.Contact)
			return err
		})
		if err != nil {
			var domainErr *shared.DomainError
			if !errors.As(err, &domainErr) {
				return nil, err
			}
			code := csvimport.ErrCodeValidation
			if domainErr.Code == shared.CodeConflict {
				code = csvimport.ErrCodeDuplicate
			}
			batch.Errors.Add(csvimport.NewRowError(row.Line, "", code, domainErr.Message))
			continue
		}
		s.publish(ctx, created)
		result.Created++
	}

	result.Skipped = batch.Total - result.Created
	result.Errors = batch.Errors.Messages()
	result.Truncated = batch.Errors.IsTruncated()

	s.logger.Info("Client import finished",
		zap.String("user_id", actor.UserID.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func importFileError(err error) error {
	var missing *csvimport.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		return shared.NewDomainError(shared.CodeValidation,
			fmt.Sprintf("Missing required columns: %s", strings.Join(missing.Columns, ", ")))
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrNoDataRows):
		return shared.WrapDomainError(shared.CodeValidation, "Invalid import file", err)
	}
	return err
}

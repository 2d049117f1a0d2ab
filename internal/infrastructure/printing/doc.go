// Package printing renders commercial documents to PDF with headless Chrome.
//
// This package contains:
// - PDFRenderer interface for rendering HTML to PDF
// - ChromedpRenderer implementation driving Chrome through the DevTools protocol
// - QuotationPrinter, which renders a quotation to HTML and then to PDF
//
// Example usage:
//
//	renderer := NewChromedpRenderer(cfg.Printing, logger)
//	defer renderer.Close()
//
//	printer := NewQuotationPrinter(renderer)
//	pdf, err := printer.Print(ctx, doc)
package printing

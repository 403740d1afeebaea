package documents

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	contractDisclaimer = "This document summarises the main terms of the lease agreed between the parties."
	contractKeepNote   = "Keep this document together with the complete signed contract."
	invoiceDisclaimer  = "This document serves as proof of payment of rent and services for the period shown."
)

// page wraps fpdf with the baseline-positioned text helpers both documents use.
type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

func newPage(title string) *page {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("rentledger", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	return &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (p *page) font(style string, size float64) {
	p.pdf.SetFont("Helvetica", style, size)
}

func (p *page) text(x, y float64, s string) {
	p.pdf.Text(x, y, p.tr(s))
}

func (p *page) centered(y float64, s string) {
	s = p.tr(s)
	p.pdf.Text(105-p.pdf.GetStringWidth(s)/2, y, s)
}

// rightAligned draws s ending at x.
func (p *page) rightAligned(x, y float64, s string) {
	s = p.tr(s)
	p.pdf.Text(x-p.pdf.GetStringWidth(s), y, s)
}

func (p *page) rule(y float64) {
	p.pdf.Line(10, y, 200, y)
}

func (p *page) heading(s string) {
	p.font("B", 11)
	p.text(10, p.y, s)
	p.y += 6
	p.font("", 11)
}

// wrapped writes s as a paragraph of width w starting at baseline y and
// returns the baseline after it.
func (p *page) wrapped(x, y, w float64, s string) float64 {
	_, size := p.pdf.GetFontSize()
	p.pdf.SetXY(x, y-size*0.8)
	p.pdf.MultiCell(w, size*1.2, p.tr(s), "", "L", false)
	return p.pdf.GetY() + size*0.8
}

func (p *page) bytes() ([]byte, error) {
	if err := p.pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := p.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderContract renders the lease summary of a tenant as an A4 PDF.
func RenderContract(s ContractSnapshot) ([]byte, error) {
	p := newPage(ContractFilename(s.TenantName))
	if !s.IssuedAt.IsZero() {
		p.pdf.SetCreationDate(s.IssuedAt)
	}

	p.font("B", 18)
	p.centered(20, "LEASE CONTRACT - SUMMARY")
	p.font("", 11)
	p.text(10, 30, "Issue date: "+issueDate(s.IssuedAt))
	p.rule(33)

	p.y = 40
	p.heading("Property")
	p.text(12, p.y, "Building: "+s.BuildingName)
	p.y += 5
	p.text(12, p.y, "Unit: "+s.UnitName)
	p.y += 10

	p.heading("Tenant")
	for _, line := range []string{
		"Name: " + s.TenantName,
		"Document: " + s.Document,
		"Phone: " + s.Phone,
		"Email: " + s.Email,
	} {
		p.text(12, p.y, line)
		p.y += 5
	}
	p.y += 5

	p.heading("Main terms")
	p.text(12, p.y, "Start date: "+formatISODate(s.StartDate))
	p.y += 5
	p.text(12, p.y, "End date: "+formatISODate(s.EndDate))
	p.y += 5
	p.text(12, p.y, fmt.Sprintf("Monthly rent: %.2f", s.MonthlyRent))
	p.y += 5
	if notes := strings.TrimSpace(s.Notes); notes != "" {
		p.y = p.wrapped(12, p.y, 180, "Contract notes: "+notes) + 5
	} else {
		p.y += 5
	}

	p.font("", 9)
	p.y = p.wrapped(10, p.y, 190, contractDisclaimer) + 8
	p.wrapped(10, p.y, 190, contractKeepNote)
	return p.bytes()
}

// RenderInvoice renders an invoice as an A4 PDF.
func RenderInvoice(s InvoiceSnapshot) ([]byte, error) {
	p := newPage(InvoiceFilename(s.UnitName, s.Month, s.Year))
	if !s.IssuedAt.IsZero() {
		p.pdf.SetCreationDate(s.IssuedAt)
	}

	p.font("B", 18)
	p.centered(20, "RENT AND SERVICES INVOICE")
	p.font("", 11)
	p.text(10, 30, "Invoice no.: "+s.Number)
	p.text(150, 30, "Issue date: "+issueDate(s.IssuedAt))
	p.rule(33)

	p.y = 40
	p.heading("Property")
	p.text(12, p.y, "Building: "+s.BuildingName)
	p.y += 5
	p.text(12, p.y, "Unit: "+s.UnitName)
	p.y += 8

	p.heading("Tenant")
	p.text(12, p.y, "Name: "+s.TenantName)
	p.y += 8

	p.heading("Billed period")
	p.text(12, p.y, "Month: "+monthName(s.Month))
	p.text(80, p.y, "Year: "+s.Year)
	if s.Day != "" {
		p.y += 5
		day := s.Day
		if len(day) == 1 {
			day = "0" + day
		}
		p.text(12, p.y, "Day: "+day)
	}
	p.y += 10

	p.heading("Line items")
	p.font("B", 11)
	p.text(12, p.y, "Item")
	p.text(150, p.y, "Amount")
	p.y += 5
	p.rule(p.y)
	p.y += 6

	p.font("", 11)
	for _, row := range []struct {
		label  string
		amount float64
	}{
		{"Rent", s.LineItems.Rent},
		{"Electricity", s.LineItems.Electricity},
		{"Water", s.LineItems.Water},
		{"Other", s.LineItems.Other},
	} {
		p.text(12, p.y, row.label)
		p.rightAligned(170, p.y, fmt.Sprintf("%.2f", row.amount))
		p.y += 6
	}
	p.y += 2
	p.rule(p.y)
	p.y += 8

	p.font("B", 11)
	p.text(12, p.y, "TOTAL DUE:")
	p.rightAligned(170, p.y, fmt.Sprintf("%.2f", s.Total))
	p.y += 10

	p.text(12, p.y, "Payment status:")
	p.font("", 11)
	p.text(60, p.y, strings.ToUpper(string(s.Status)))
	p.y += 10

	if notes := strings.TrimSpace(s.Notes); notes != "" {
		p.heading("Invoice notes")
		p.y = p.wrapped(12, p.y, 180, notes) + 5
	}

	p.font("", 9)
	p.wrapped(10, p.y, 190, invoiceDisclaimer)
	return p.bytes()
}

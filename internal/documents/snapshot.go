// Package documents renders lease contracts and invoices as PDF and the
// invoice ledger as XLSX, and exports them to blob storage in the background.
package documents

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"rentledger/pkg/domain"
)

// ContractSnapshot is the flat view of a tenant's lease used for rendering.
type ContractSnapshot struct {
	TenantID     string
	BuildingName string
	UnitName     string
	TenantName   string
	Document     string
	Phone        string
	Email        string
	StartDate    string
	EndDate      string
	MonthlyRent  float64
	Notes        string
	IssuedAt     time.Time
}

// InvoiceSnapshot is the flat view of an invoice used for rendering.
type InvoiceSnapshot struct {
	UnitID       string
	Number       string
	BuildingName string
	UnitName     string
	TenantName   string
	Month        string
	Year         string
	Day          string
	LineItems    domain.LineItems
	Total        float64
	Status       domain.InvoiceStatus
	Notes        string
	IssuedAt     time.Time
}

// ContractFromRecords builds a contract snapshot from committed records.
func ContractFromRecords(building domain.Building, unit domain.Unit, tenant domain.Tenant, issuedAt time.Time) ContractSnapshot {
	return ContractSnapshot{
		TenantID:     tenant.ID,
		BuildingName: building.Name,
		UnitName:     unit.Name,
		TenantName:   tenant.Name,
		Document:     tenant.Document,
		Phone:        tenant.Phone,
		Email:        tenant.Email,
		StartDate:    tenant.StartDate,
		EndDate:      tenant.EndDate,
		MonthlyRent:  tenant.MonthlyRent,
		Notes:        tenant.Notes,
		IssuedAt:     issuedAt,
	}
}

// InvoiceFromRecord builds an invoice snapshot. Names come from the values
// captured when the invoice was issued.
func InvoiceFromRecord(inv domain.Invoice, issuedAt time.Time) InvoiceSnapshot {
	return InvoiceSnapshot{
		UnitID:       inv.UnitID,
		Number:       inv.Number,
		BuildingName: inv.BuildingName,
		UnitName:     inv.UnitName,
		TenantName:   inv.TenantName,
		Month:        inv.Month,
		Year:         inv.Year,
		Day:          inv.Day,
		LineItems:    inv.LineItems,
		Total:        inv.Total,
		Status:       inv.Status,
		Notes:        inv.Notes,
		IssuedAt:     issuedAt,
	}
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	dotRuns    = regexp.MustCompile(`\.{2,}`)
)

// ContractFilename is contract_<tenant name>.pdf with whitespace runs
// replaced by underscores.
func ContractFilename(tenantName string) string {
	name := tenantName
	if name == "" {
		name = "tenant"
	}
	return "contract_" + whitespace.ReplaceAllString(name, "_") + ".pdf"
}

// InvoiceFilename is invoice_<unit name>_<MM>-<YYYY>.pdf.
func InvoiceFilename(unitName, month, year string) string {
	name := unitName
	if name == "" {
		name = "unit"
	}
	return fmt.Sprintf("invoice_%s_%s-%s.pdf", name, month, year)
}

// ContractKey is the blob key of a tenant's contract document.
func ContractKey(s ContractSnapshot) string {
	return "contracts/" + s.TenantID + "/" + sanitizeKeyPart(ContractFilename(s.TenantName))
}

// InvoiceKey is the blob key of an invoice document.
func InvoiceKey(s InvoiceSnapshot) string {
	return "invoices/" + s.UnitID + "/" + sanitizeKeyPart(InvoiceFilename(s.UnitName, s.Month, s.Year))
}

// sanitizeKeyPart keeps filenames from introducing path segments.
func sanitizeKeyPart(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	return dotRuns.ReplaceAllString(name, ".")
}

// formatISODate renders YYYY-MM-DD as DD/MM/YYYY; other values pass through.
func formatISODate(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

var monthNames = map[string]string{
	"01": "January", "02": "February", "03": "March", "04": "April",
	"05": "May", "06": "June", "07": "July", "08": "August",
	"09": "September", "10": "October", "11": "November", "12": "December",
}

func monthName(month string) string {
	if name, ok := monthNames[month]; ok {
		return name
	}
	return month
}

func issueDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("02/01/2006")
}

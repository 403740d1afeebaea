package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"rentledger/internal/core"
	"rentledger/pkg/domain"
)

const maxBodyBytes = 1 << 20

type servicesRequest struct {
	WaterAccount     string         `json:"water_account" validate:"max=100"`
	InternetAccount  string         `json:"internet_account" validate:"max=100"`
	InternetProvider string         `json:"internet_provider" validate:"max=100"`
	GasAccount       string         `json:"gas_account" validate:"max=100"`
	InternetPrice    FlexibleAmount `json:"internet_price"`
}

func (r servicesRequest) toServices() core.BuildingServices {
	return core.BuildingServices{
		WaterAccount:     r.WaterAccount,
		InternetAccount:  r.InternetAccount,
		InternetProvider: r.InternetProvider,
		GasAccount:       r.GasAccount,
		InternetPrice:    r.InternetPrice.Optional(),
	}
}

type buildingRequest struct {
	Name     string           `json:"name" validate:"max=200"`
	Type     string           `json:"type" validate:"max=100"`
	Address  string           `json:"address" validate:"max=300"`
	Services *servicesRequest `json:"services"`
	MapURL   string           `json:"map_url" validate:"max=2000"`
}

func (r buildingRequest) toInput() core.BuildingInput {
	return core.BuildingInput{Name: r.Name, Type: r.Type, Address: r.Address}
}

type mapRequest struct {
	MapURL string `json:"map_url" validate:"max=2000"`
}

type unitRequest struct {
	Name            string `json:"name" validate:"max=200"`
	Type            string `json:"type" validate:"max=100"`
	ElectricAccount string `json:"electric_account" validate:"max=100"`
	Version         int64  `json:"version" validate:"gte=0"`
}

func (r unitRequest) toInput() core.UnitInput {
	return core.UnitInput{Name: r.Name, Type: r.Type, ElectricAccount: r.ElectricAccount, Version: r.Version}
}

type tenantRequest struct {
	Name        string         `json:"name" validate:"max=200"`
	Document    string         `json:"document" validate:"max=100"`
	Phone       string         `json:"phone" validate:"max=50"`
	Email       string         `json:"email" validate:"max=200"`
	StartDate   string         `json:"start_date" validate:"max=32"`
	EndDate     string         `json:"end_date" validate:"max=32"`
	MonthlyRent FlexibleAmount `json:"monthly_rent"`
	Notes       string         `json:"notes" validate:"max=4000"`
	Version     int64          `json:"version" validate:"gte=0"`
}

func (r tenantRequest) toInput() core.TenantInput {
	return core.TenantInput{
		Name:        r.Name,
		Document:    r.Document,
		Phone:       r.Phone,
		Email:       r.Email,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		MonthlyRent: r.MonthlyRent.Float(),
		Notes:       r.Notes,
		Version:     r.Version,
	}
}

type invoiceRequest struct {
	TenantID    string         `json:"tenant_id"`
	Month       string         `json:"month" validate:"max=16"`
	Year        string         `json:"year" validate:"max=16"`
	Day         FlexibleAmount `json:"day"`
	Rent        FlexibleAmount `json:"rent"`
	Electricity FlexibleAmount `json:"electricity"`
	Water       FlexibleAmount `json:"water"`
	Other       FlexibleAmount `json:"other"`
	Notes       string         `json:"notes" validate:"max=4000"`
	Status      string         `json:"status" validate:"omitempty,oneof=pending paid"`
}

func (r invoiceRequest) toDraft() core.InvoiceDraft {
	return core.InvoiceDraft{
		Month:       r.Month,
		Year:        r.Year,
		Day:         r.Day.Text(),
		Rent:        r.Rent.Text(),
		Electricity: r.Electricity.Text(),
		Water:       r.Water.Text(),
		Other:       r.Other.Text(),
		Notes:       r.Notes,
		Status:      domain.InvoiceStatus(r.Status),
	}
}

type staffRequest struct {
	Name       string         `json:"name" validate:"max=200"`
	Phone      string         `json:"phone" validate:"max=50"`
	MonthlyPay FlexibleAmount `json:"monthly_pay"`
	Notes      string         `json:"notes" validate:"max=4000"`
	Active     *bool          `json:"active"`
}

func (r staffRequest) toInput() core.StaffInput {
	return core.StaffInput{Name: r.Name, Phone: r.Phone, MonthlyPay: r.MonthlyPay.Float(), Notes: r.Notes, Active: r.Active}
}

// decode reads a JSON body into dst and runs struct validation. Malformed
// JSON answers 400 invalid_payload directly and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidPayload, fmt.Sprintf("invalid request body: %v", err), nil)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.respondError(w, r, err)
		return false
	}
	return true
}

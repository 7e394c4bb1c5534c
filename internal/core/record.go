package core

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Profile is the primary customer/account record.
type Profile struct {
	ID                  int64
	Name                string
	Mobile              string
	Email               string
	Group               string
	Status              string
	Active              bool
	CreditLimit         decimal.NullDecimal
	Number              pgtype.Text // account number; NULL when blank
	PaymentTerms        string
	Salesman            string
	DefaultPriority     pgtype.Int4
	AlertNotes          string
	QuickBooksClassName string
	IssuableStatus      string
	CreatedAt           time.Time
}

// Address types accepted for Address.AddressType.
var AddressTypes = []string{"Residential", "Main", "Home", "Work", "Other"}

// Address is a postal/contact location owned by a Profile.
type Address struct {
	ID             int64
	ProfileID      int64
	AddressName    string
	AddressContact string
	AddressType    string
	IsDefault      bool
	Address        string
	City           string
	State          string
	Zip            string
	Country        string
	Fax            string
	Pager          string
	Web            string
}

// ShippingTax holds the shipping and tax settings of a Profile (1:1).
type ShippingTax struct {
	ID              int64
	ProfileID       int64
	TaxRate         decimal.NullDecimal
	TaxExempt       bool
	TaxExemptNumber string
	URL             string
	CarrierName     string
	CarrierService  string
	ShippingTerms   string
	ToBeEmailed     bool
	ToBePrinted     bool
}

// Record is a profile together with its primary address and shipping/tax row.
// Address and ShippingTax are nil when the profile has no such row.
type Record struct {
	Profile     Profile
	Address     *Address
	ShippingTax *ShippingTax
}

// Summary is the listing shape used by the page table and JSON responses.
type Summary struct {
	ID            int64  `json:"id"`
	LocationName  string `json:"LocationName"`
	Address       string `json:"Address"`
	City          string `json:"City"`
	State         string `json:"State"`
	Zip           string `json:"Zip"`
	ContactPerson string `json:"ContactPerson"`
	Phone         string `json:"Phone"`
	Email         string `json:"Email"`
}

// Summary returns the listing view of the record.
func (r Record) Summary() Summary {
	s := Summary{
		ID:           r.Profile.ID,
		LocationName: r.Profile.Name,
		Phone:        r.Profile.Mobile,
		Email:        r.Profile.Email,
	}
	if a := r.Address; a != nil {
		s.Address = a.Address
		s.City = a.City
		s.State = a.State
		s.Zip = a.Zip
		s.ContactPerson = a.AddressContact
	}
	return s
}

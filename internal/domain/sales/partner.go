package sales

import (
	"strings"
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
)

// PartnerType is the role of a partner address
type PartnerType string

const (
	PartnerTypeContact  PartnerType = "contact"
	PartnerTypeInvoice  PartnerType = "invoice"
	PartnerTypeDelivery PartnerType = "delivery"
)

// Address is a postal address as printed in order reports
type Address struct {
	Street      string
	Street2     string
	Zip         string
	City        string
	StateCode   string
	CountryCode string
}

// Partner is a customer or one of its invoice/delivery addresses
type Partner struct {
	ID        uuid.UUID
	ParentID  *uuid.UUID
	Name      string
	Type      PartnerType
	Email     string
	Phone     string
	VAT       string
	Lang      string
	IsCompany bool
	Address   Address
	CreatedAt time.Time
}

// NewPartner creates a partner of the given type
func NewPartner(name string, typ PartnerType, parentID *uuid.UUID, addr Address) (*Partner, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_PARTNER_NAME", "Partner name cannot be empty")
	}
	return &Partner{
		ID:        uuid.New(),
		ParentID:  parentID,
		Name:      name,
		Type:      typ,
		Address:   addr,
		CreatedAt: time.Now(),
	}, nil
}

// MatchesDelivery reports whether the partner already carries the given
// recipient and address. An empty Street2 on the partner matches any value.
func (p *Partner) MatchesDelivery(name string, addr Address) bool {
	return p.Name == name &&
		p.Address.Street == addr.Street &&
		(p.Address.Street2 == "" || p.Address.Street2 == addr.Street2) &&
		p.Address.Zip == addr.Zip &&
		p.Address.City == addr.City &&
		p.Address.CountryCode == addr.CountryCode &&
		p.Address.StateCode == addr.StateCode
}

// Fingerprint is the equality key used to look up an existing delivery address
type Fingerprint struct {
	Name    string
	Address Address
}

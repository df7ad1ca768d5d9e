package stock

import "github.com/google/uuid"

// ReasonGroup classifies reason codes for processing
type ReasonGroup struct {
	ID            uuid.UUID
	Name          string
	IsCounterpart bool
	IsDamaged     bool
}

// ReasonCode is a marketplace inventory adjustment reason
type ReasonCode struct {
	ID            uuid.UUID
	Name          string
	Description   string
	GroupID       *uuid.UUID
	CounterpartID *uuid.UUID
}

// AdjustmentConfig is the per-seller processing setup of a reason group
type AdjustmentConfig struct {
	ID              uuid.UUID
	SellerID        uuid.UUID
	GroupID         uuid.UUID
	LocationID      *uuid.UUID
	SendEmail       bool
	TemplateSubject string
}

// HasLocation reports whether a target location is configured
func (c *AdjustmentConfig) HasLocation() bool {
	return c.LocationID != nil && *c.LocationID != uuid.Nil
}

// ReasonCatalog indexes codes, groups and the seller's configs for one pass
type ReasonCatalog struct {
	codesByName map[string][]ReasonCode
	codesByID   map[uuid.UUID]ReasonCode
	groups      map[uuid.UUID]ReasonGroup
	configs     map[uuid.UUID]AdjustmentConfig
}

// NewReasonCatalog indexes grouped codes. Codes without a group are ignored.
func NewReasonCatalog(codes []ReasonCode, groups []ReasonGroup, configs []AdjustmentConfig) *ReasonCatalog {
	c := &ReasonCatalog{
		codesByName: make(map[string][]ReasonCode),
		codesByID:   make(map[uuid.UUID]ReasonCode),
		groups:      make(map[uuid.UUID]ReasonGroup),
		configs:     make(map[uuid.UUID]AdjustmentConfig),
	}
	for _, code := range codes {
		c.codesByID[code.ID] = code
		if code.GroupID == nil {
			continue
		}
		c.codesByName[code.Name] = append(c.codesByName[code.Name], code)
	}
	for _, g := range groups {
		c.groups[g.ID] = g
	}
	for _, cfg := range configs {
		if _, dup := c.configs[cfg.GroupID]; !dup {
			c.configs[cfg.GroupID] = cfg
		}
	}
	return c
}

// CodesNamed returns every grouped code with the given name
func (c *ReasonCatalog) CodesNamed(name string) []ReasonCode {
	return c.codesByName[name]
}

// CodeInGroup finds the code with a name inside a group
func (c *ReasonCatalog) CodeInGroup(name string, groupID uuid.UUID) (ReasonCode, bool) {
	for _, code := range c.codesByName[name] {
		if code.GroupID != nil && *code.GroupID == groupID {
			return code, true
		}
	}
	return ReasonCode{}, false
}

// Counterpart returns the declared counterpart code name
func (c *ReasonCatalog) Counterpart(code ReasonCode) (string, bool) {
	if code.CounterpartID == nil {
		return "", false
	}
	cp, ok := c.codesByID[*code.CounterpartID]
	if !ok || cp.Name == "" {
		return "", false
	}
	return cp.Name, true
}

// Group returns a group by id
func (c *ReasonCatalog) Group(id uuid.UUID) (ReasonGroup, bool) {
	g, ok := c.groups[id]
	return g, ok
}

// ConfigFor returns the seller config of a group
func (c *ReasonCatalog) ConfigFor(groupID uuid.UUID) (AdjustmentConfig, bool) {
	cfg, ok := c.configs[groupID]
	return cfg, ok
}

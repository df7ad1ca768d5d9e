package report

import "fmt"

// Type identifies one kind of marketplace report handled by the system
type Type string

const (
	TypeLiveInventory   Type = "fba_live_inventory"
	TypeStockAdjustment Type = "fba_stock_adjustment"
	TypeUnshippedOrders Type = "fbm_unshipped_orders"
)

// Definition is the static description of a report type
type Definition struct {
	Type       Type
	RemoteType string
	NamePrefix string
	// DecodeKind is non-empty when the fetched body must go through the
	// gateway decode round-trip before parsing.
	DecodeKind string
	// ExtraOptions is forwarded with the request as ReportOptions
	ExtraOptions string
	// AllMarketplaces forces every seller marketplace id on the request
	AllMarketplaces bool
}

// NeedsDecode reports whether the body is encoded at rest
func (d Definition) NeedsDecode() bool {
	return d.DecodeKind != ""
}

var definitions = map[Type]Definition{
	TypeLiveInventory: {
		Type:       TypeLiveInventory,
		RemoteType: "_GET_FBA_MYI_UNSUPPRESSED_INVENTORY_DATA_",
		NamePrefix: "LIVE",
	},
	TypeStockAdjustment: {
		Type:       TypeStockAdjustment,
		RemoteType: "_GET_FBA_FULFILLMENT_INVENTORY_ADJUSTMENTS_DATA_",
		NamePrefix: "ADJ",
	},
	TypeUnshippedOrders: {
		Type:            TypeUnshippedOrders,
		RemoteType:      "_GET_FLAT_FILE_ORDER_REPORT_DATA_",
		NamePrefix:      "FBM",
		DecodeKind:      "fbm_report",
		ExtraOptions:    "ShowSalesChannel=true",
		AllMarketplaces: true,
	},
}

// Types lists every supported report type in a stable order
func Types() []Type {
	return []Type{TypeLiveInventory, TypeStockAdjustment, TypeUnshippedOrders}
}

// IsValid checks if the type is supported
func (t Type) IsValid() bool {
	_, ok := definitions[t]
	return ok
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// Definition returns the static description of the type
func (t Type) Definition() Definition {
	return definitions[t]
}

// ParseType validates a raw type key
func ParseType(raw string) (Type, error) {
	t := Type(raw)
	if !t.IsValid() {
		return "", &ConfigurationError{Field: "type", Message: fmt.Sprintf("unknown report type %q", raw)}
	}
	return t, nil
}

// FormatName builds a display name from the type prefix and a sequence number
func (t Type) FormatName(seq int64) string {
	return fmt.Sprintf("%s/%06d", t.Definition().NamePrefix, seq)
}

package seller

// FanoutPolicy describes how a live inventory import is split into remote requests
type FanoutPolicy string

const (
	// FanoutListing lists reports another tool requested and picks the latest done one
	FanoutListing FanoutPolicy = "listing"
	// FanoutPerSeller issues one seller-wide request (optionally scoped to the UK instance)
	FanoutPerSeller FanoutPolicy = "per_seller"
	// FanoutPerInstance issues one request per instance without a date window
	FanoutPerInstance FanoutPolicy = "per_instance"
	// FanoutPerSellerWindowed issues one seller-wide request with the date window
	FanoutPerSellerWindowed FanoutPolicy = "per_seller_windowed"
	// FanoutPerInstanceWindowed issues one request per instance with the date window
	FanoutPerInstanceWindowed FanoutPolicy = "per_instance_windowed"
	// FanoutNone means no rule matched the seller
	FanoutNone FanoutPolicy = "none"
)

// FanoutRule is one row of the program classification table
type FanoutRule struct {
	Name   string
	Policy FanoutPolicy
	Match  func(s *Seller) bool
}

// fanoutTable is evaluated top to bottom; the first matching rule wins.
// The order is business policy and must not be rearranged.
var fanoutTable = []FanoutRule{
	{
		Name:   "other software creates FBA inventory",
		Policy: FanoutListing,
		Match:  func(s *Seller) bool { return s.UsesOtherSoftwareForFBA },
	},
	{
		Name:   "pan_eu or cep",
		Policy: FanoutPerSeller,
		Match:  func(s *Seller) bool { return s.IsPooledEU() },
	},
	{
		Name:   "non european outside narf",
		Policy: FanoutPerInstance,
		Match:  func(s *Seller) bool { return !s.IsEuropean && !s.IsNARF() },
	},
	{
		Name:   "efn or narf",
		Policy: FanoutPerSellerWindowed,
		Match:  func(s *Seller) bool { return s.Program == ProgramEFN || s.IsNARF() },
	},
	{
		Name:   "mci or efn+mci",
		Policy: FanoutPerInstanceWindowed,
		Match:  func(s *Seller) bool { return s.Program == ProgramMCI || s.Program == ProgramEFNMCI },
	},
}

// ResolveFanout returns the first rule that matches the seller. When no
// rule matches, a rule with FanoutNone is returned so callers can log the gap.
func ResolveFanout(s *Seller) FanoutRule {
	for _, rule := range fanoutTable {
		if rule.Match(s) {
			return rule
		}
	}
	return FanoutRule{Name: "unclassified program", Policy: FanoutNone}
}

// UsesYesterdayWindow reports whether a listing import must look at
// yesterday only: european narf sellers outside the pooled programs.
func (s *Seller) UsesYesterdayWindow() bool {
	return !(s.IsPooledEU() || !s.IsEuropean) && s.IsNARF()
}

// ExcludesPoolMarketplaceOnListing reports whether the listing import drops
// ExcludedPoolMarketplace when no explicit instance is given
func (s *Seller) ExcludesPoolMarketplaceOnListing() bool {
	return s.IsEuropean && s.Program == ProgramPanEU
}

package report

import (
	"context"
	"time"

	"github.com/erp/marketsync/internal/domain/seller"
)

// StatusUpdate is one status record returned by request, poll or list calls.
// Empty fields mean the response did not carry them.
type StatusUpdate struct {
	RequestID string
	ReportID  string
	Status    State
}

// ReportListing is one entry of a by-marketplaces report listing
type ReportListing struct {
	RequestID   string
	ReportID    string
	ReportType  string
	Status      State
	Start       time.Time
	End         time.Time
	SubmittedAt time.Time
}

// LatestDone picks the done listing with the greatest end date. Listings
// are scanned newest first, so on equal end dates the last entry wins.
func LatestDone(listings []ReportListing) (ReportListing, bool) {
	var (
		best  ReportListing
		found bool
	)
	for i := len(listings) - 1; i >= 0; i-- {
		l := listings[i]
		if l.Status != StateDone {
			continue
		}
		if !found || l.End.After(best.End) {
			best = l
			found = true
		}
	}
	return best, found
}

// Request is the payload of a request-report call
type Request struct {
	ReportType     string
	MarketplaceIDs []string
	Window         *DateRange
	Options        string
}

// ListingQuery selects reports by marketplaces and window
type ListingQuery struct {
	ReportType     string
	MarketplaceIDs []string
	Window         DateRange
}

// RemoteOrder is the order header state the gateway reports
type RemoteOrder struct {
	OrderID         string
	Status          string
	IsBusinessOrder bool
	IsPrime         bool
	VATNumber       string
	VATCountry      string
}

// Gateway is the remote marketplace report service. Every call may fail
// with a *RemoteError.
type Gateway interface {
	RequestReport(ctx context.Context, creds seller.Credentials, req Request) (StatusUpdate, error)
	PollStatus(ctx context.Context, creds seller.Credentials, requestIDs []string) ([]StatusUpdate, error)
	ListReports(ctx context.Context, creds seller.Credentials, requestIDs []string) ([]StatusUpdate, error)
	ListReportsByMarketplaces(ctx context.Context, creds seller.Credentials, q ListingQuery) ([]ReportListing, error)
	FetchReportBody(ctx context.Context, creds seller.Credentials, reportID string, kind string) ([]byte, error)
	Decode(ctx context.Context, reportID string, body []byte, kind string) ([]byte, error)
	GetOrders(ctx context.Context, creds seller.Credentials, marketplaceIDs, orderIDs []string) ([]RemoteOrder, error)
}

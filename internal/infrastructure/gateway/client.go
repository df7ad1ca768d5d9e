package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/seller"
)

// Remote API names
const (
	apiRequestReport    = "request_report_v13"
	apiRequestFBMReport = "request_report_fbm_v13"
	apiRequestList      = "get_report_request_list_v13"
	apiReportList       = "get_report_list_v13"
	apiByMarketplaces   = "get_shipping_or_inventory_report_by_marketplaces"
	apiGetReport        = "get_report_v13"
	apiGetOrders        = "get_order_v13"
)

// requestAPIs selects the request call for report types that need a dedicated one
var requestAPIs = map[string]string{
	report.TypeUnshippedOrders.Definition().RemoteType: apiRequestFBMReport,
}

// CallObserver receives the outcome of every gateway call
type CallObserver interface {
	ObserveCall(ctx context.Context, op string, elapsed time.Duration, err error)
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithObserver records call latency and failures
func WithObserver(o CallObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Client talks JSON-RPC to the remote report gateway
type Client struct {
	config     Config
	httpClient *http.Client
	observer   CallObserver
	logger     *zap.Logger
}

// NewClient creates a gateway client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ report.Gateway = (*Client)(nil)

func (c *Client) baseParams(creds seller.Credentials, api string) map[string]any {
	return map[string]any{
		"merchant_id":             creds.MerchantID,
		"auth_token":              creds.AuthToken,
		"app_name":                c.config.AppName,
		"account_token":           c.config.AccountToken,
		"dbuuid":                  c.config.DBUUID,
		"amazon_marketplace_code": creds.MarketplaceCode,
		"emipro_api":              api,
	}
}

// RequestReport asks the gateway to generate a report
func (c *Client) RequestReport(ctx context.Context, creds seller.Credentials, req report.Request) (report.StatusUpdate, error) {
	api := apiRequestReport
	if a, ok := requestAPIs[req.ReportType]; ok {
		api = a
	}
	params := c.baseParams(creds, api)
	params["report_type"] = req.ReportType
	params["marketplaceids"] = req.MarketplaceIDs
	if req.Window != nil {
		start, end := req.Window.Remote()
		params["start_date"] = start
		params["end_date"] = end
	}
	if req.Options != "" {
		params["ReportOptions"] = req.Options
	}

	var wrapper statusWrapper
	if err := c.call(ctx, "request_report", params, &wrapper); err != nil {
		return report.StatusUpdate{}, err
	}
	updates := wrapper.updates()
	if len(updates) == 0 {
		return report.StatusUpdate{Status: report.StateSubmitted}, nil
	}
	return updates[0], nil
}

// PollStatus fetches request statuses
func (c *Client) PollStatus(ctx context.Context, creds seller.Credentials, requestIDs []string) ([]report.StatusUpdate, error) {
	params := c.baseParams(creds, apiRequestList)
	params["request_ids"] = requestIDs
	var wrappers oneOrMany[statusWrapper]
	if err := c.call(ctx, "poll_status", params, &wrappers); err != nil {
		return nil, err
	}
	return flattenUpdates(wrappers), nil
}

// ListReports fetches generated report ids for requests
func (c *Client) ListReports(ctx context.Context, creds seller.Credentials, requestIDs []string) ([]report.StatusUpdate, error) {
	params := c.baseParams(creds, apiReportList)
	params["request_id"] = requestIDs
	var wrappers oneOrMany[statusWrapper]
	if err := c.call(ctx, "list_reports", params, &wrappers); err != nil {
		return nil, err
	}
	return flattenUpdates(wrappers), nil
}

// ListReportsByMarketplaces lists already generated reports of a type
func (c *Client) ListReportsByMarketplaces(ctx context.Context, creds seller.Credentials, q report.ListingQuery) ([]report.ReportListing, error) {
	params := c.baseParams(creds, apiByMarketplaces)
	start, end := q.Window.Remote()
	params["start_date"] = start
	params["end_date"] = end
	params["report_type"] = q.ReportType
	params["marketplaceids"] = q.MarketplaceIDs

	var wrappers oneOrMany[statusWrapper]
	if err := c.call(ctx, "list_by_marketplaces", params, &wrappers); err != nil {
		return nil, err
	}
	var listings []report.ReportListing
	for _, w := range wrappers {
		for _, info := range w.ReportRequestInfo {
			listings = append(listings, report.ReportListing{
				RequestID:   info.ReportRequestID.Value,
				ReportID:    info.GeneratedReportID.Value,
				ReportType:  info.ReportType.Value,
				Status:      report.State(info.ReportProcessingStatus.Value),
				Start:       parseRemoteTime(info.StartDate.Value),
				End:         parseRemoteTime(info.EndDate.Value),
				SubmittedAt: parseRemoteTime(info.SubmittedDate.Value),
			})
		}
	}
	return listings, nil
}

// FetchReportBody downloads the generated report
func (c *Client) FetchReportBody(ctx context.Context, creds seller.Credentials, reportID string, kind string) ([]byte, error) {
	params := c.baseParams(creds, apiGetReport)
	params["report_id"] = reportID
	if kind != "" {
		params["amz_report_type"] = kind
	}
	var body json.RawMessage
	if err := c.call(ctx, "fetch_report", params, &body); err != nil {
		return nil, err
	}
	return []byte(scalarText(body)), nil
}

// Decode sends an encrypted body to the decode endpoint and returns the
// plain bytes
func (c *Client) Decode(ctx context.Context, reportID string, body []byte, kind string) ([]byte, error) {
	params := map[string]any{
		"dbuuid":          c.config.DBUUID,
		"report_id":       reportID,
		"datas":           base64.StdEncoding.EncodeToString(body),
		"amz_report_type": kind,
	}
	start := time.Now()
	res, err := c.post(ctx, c.config.DecodeEndpoint, "decode", params)
	if err == nil {
		err = decodeError(res)
	}
	c.observe(ctx, "decode", start, err)
	if err != nil {
		return nil, err
	}
	encoded := scalarText(res.Result)
	out, decErr := base64.StdEncoding.DecodeString(encoded)
	if decErr != nil {
		return nil, report.NewRemoteError("decode", fmt.Sprintf("invalid base64 result: %v", decErr))
	}
	return out, nil
}

func decodeError(res *callResult) error {
	if scalarText(res.Result) != "" {
		return nil
	}
	reason := scalarText(res.Error)
	if reason == "" {
		reason = scalarText(res.Reason)
	}
	return report.NewRemoteError("decode", reason)
}

// GetOrders looks up order headers
func (c *Client) GetOrders(ctx context.Context, creds seller.Credentials, marketplaceIDs, orderIDs []string) ([]report.RemoteOrder, error) {
	params := c.baseParams(creds, apiGetOrders)
	params["marketplaceids"] = marketplaceIDs
	params["sale_order_list"] = orderIDs
	var wrappers oneOrMany[ordersWrapper]
	if err := c.call(ctx, "get_orders", params, &wrappers); err != nil {
		return nil, err
	}
	var orders []report.RemoteOrder
	for _, w := range wrappers {
		for _, o := range w.Orders.Order {
			if o.AmazonOrderID.Value == "" {
				continue
			}
			ro := report.RemoteOrder{
				OrderID:         o.AmazonOrderID.Value,
				Status:          o.OrderStatus.Value,
				IsBusinessOrder: isTrue(o.IsBusinessOrder.Value),
				IsPrime:         isTrue(o.IsPrime.Value),
				VATCountry:      o.BuyerTaxInfo.TaxingRegion.Value,
			}
			for _, tc := range o.BuyerTaxInfo.TaxClassifications.TaxClassification {
				if tc.Value.Value != "" {
					ro.VATNumber = tc.Value.Value
					break
				}
			}
			orders = append(orders, ro)
		}
	}
	return orders, nil
}

// call posts to the main endpoint and unmarshals the inner result into out
func (c *Client) call(ctx context.Context, op string, params map[string]any, out any) error {
	start := time.Now()
	err := c.doCall(ctx, op, params, out)
	c.observe(ctx, op, start, err)
	return err
}

func (c *Client) doCall(ctx context.Context, op string, params map[string]any, out any) error {
	res, err := c.post(ctx, c.config.Endpoint, op, params)
	if err != nil {
		return err
	}
	if reason := scalarText(res.Reason); reason != "" {
		return report.NewRemoteError(op, reason)
	}
	if len(bytes.TrimSpace(res.Result)) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Result, out); err != nil {
		return report.NewRemoteError(op, fmt.Sprintf("unexpected response: %v", err))
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint, op string, params map[string]any) (*callResult, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  params,
		ID:      uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, report.NewRemoteError(op, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize))
	if err != nil {
		return nil, report.NewRemoteError(op, fmt.Sprintf("failed to read response: %v", err))
	}
	if resp.StatusCode >= 400 {
		return nil, report.NewRemoteError(op, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	var envelope rpcResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, report.NewRemoteError(op, fmt.Sprintf("malformed response: %v", err))
	}
	if envelope.Error != nil {
		return nil, report.NewRemoteError(op, envelope.Error.text())
	}
	var res callResult
	if len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, &res); err != nil {
			return nil, report.NewRemoteError(op, fmt.Sprintf("malformed result: %v", err))
		}
	}
	return &res, nil
}

func (c *Client) observe(ctx context.Context, op string, start time.Time, err error) {
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("gateway call failed",
			zap.String("op", op),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		c.logger.Debug("gateway call", zap.String("op", op), zap.Duration("elapsed", elapsed))
	}
	if c.observer != nil {
		c.observer.ObserveCall(ctx, op, elapsed, err)
	}
}

// updates converts a status wrapper into status records. Request info
// keeps the processing status; report info carries only identifiers.
func (w statusWrapper) updates() []report.StatusUpdate {
	var out []report.StatusUpdate
	for _, info := range w.ReportRequestInfo {
		status := report.State(info.ReportProcessingStatus.Value)
		if status == "" {
			status = report.StateSubmitted
		}
		out = append(out, report.StatusUpdate{
			RequestID: info.ReportRequestID.Value,
			ReportID:  info.GeneratedReportID.Value,
			Status:    status,
		})
	}
	if len(out) > 0 {
		return out
	}
	for _, info := range w.ReportInfo {
		out = append(out, report.StatusUpdate{
			RequestID: info.ReportRequestID.Value,
			ReportID:  info.ReportID.Value,
		})
	}
	return out
}

func flattenUpdates(wrappers []statusWrapper) []report.StatusUpdate {
	var out []report.StatusUpdate
	for _, w := range wrappers {
		out = append(out, w.updates()...)
	}
	return out
}

var remoteTimeLayouts = []string{time.RFC3339, report.RemoteTimeLayout, "2006-01-02 15:04:05"}

func parseRemoteTime(s string) time.Time {
	for _, layout := range remoteTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

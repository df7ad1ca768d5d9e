package gateway

import (
	"bytes"
	"encoding/json"
	"strings"
)

// rpcRequest is a JSON-RPC 2.0 call envelope
type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      string         `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

func (e *rpcError) text() string {
	if e.Data.Message != "" {
		return e.Data.Message
	}
	return e.Message
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// callResult is the body of a successful envelope. A non-empty Reason
// means the remote marketplace rejected the call.
type callResult struct {
	Reason json.RawMessage `json:"reason"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// value is the {"value": ...} leaf used throughout the remote payloads
type value struct {
	Value string `json:"value"`
}

func (v *value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		v.Value = scalarText(data)
		return nil
	}
	var raw struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.Value = scalarText(raw.Value)
	return nil
}

// oneOrMany decodes a field that is either a single object or a list
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = nil
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*o = items
		return nil
	}
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*o = []T{item}
	return nil
}

type reportRequestInfo struct {
	ReportRequestID        value `json:"ReportRequestId"`
	ReportType             value `json:"ReportType"`
	ReportProcessingStatus value `json:"ReportProcessingStatus"`
	GeneratedReportID      value `json:"GeneratedReportId"`
	StartDate              value `json:"StartDate"`
	EndDate                value `json:"EndDate"`
	SubmittedDate          value `json:"SubmittedDate"`
}

type reportInfo struct {
	ReportID        value `json:"ReportId"`
	ReportRequestID value `json:"ReportRequestId"`
	ReportType      value `json:"ReportType"`
}

// statusWrapper is one element of request, poll and list results
type statusWrapper struct {
	ReportRequestInfo oneOrMany[reportRequestInfo] `json:"ReportRequestInfo"`
	ReportInfo        oneOrMany[reportInfo]        `json:"ReportInfo"`
}

type orderPayload struct {
	AmazonOrderID   value `json:"AmazonOrderId"`
	OrderStatus     value `json:"OrderStatus"`
	IsBusinessOrder value `json:"IsBusinessOrder"`
	IsPrime         value `json:"IsPrime"`
	BuyerTaxInfo    struct {
		TaxingRegion       value `json:"TaxingRegion"`
		TaxClassifications struct {
			TaxClassification oneOrMany[struct {
				Name  value `json:"Name"`
				Value value `json:"Value"`
			}] `json:"TaxClassification"`
		} `json:"TaxClassifications"`
	} `json:"BuyerTaxInfo"`
}

type ordersWrapper struct {
	Orders struct {
		Order oneOrMany[orderPayload] `json:"Order"`
	} `json:"Orders"`
}

// scalarText renders a JSON scalar or string as plain text
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t":
		return true
	}
	return false
}

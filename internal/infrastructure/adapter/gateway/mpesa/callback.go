package mpesa

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
)

// transactionDateLayout is how Daraja encodes TransactionDate, e.g. 20240301150405
const transactionDateLayout = "20060102150405"

// CallbackEnvelope is the body Daraja POSTs to the callback URL
type CallbackEnvelope struct {
	Body struct {
		StkCallback *StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

// StkCallback is the result of one STK push
type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        flexString        `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackMetadata holds the Name/Value items sent with successful payments
type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

// MetadataItem values are numbers or strings depending on Name
type MetadataItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// ParseCallback decodes and validates a callback body
func ParseCallback(body []byte) (*StkCallback, error) {
	var envelope CallbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errs.NewInvalidFormatError("callback", "", "body is not valid JSON")
	}
	callback := envelope.Body.StkCallback
	if err := callback.Validate(); err != nil {
		return nil, err
	}
	return callback, nil
}

// Validate checks the fields reconciliation depends on
func (c *StkCallback) Validate() error {
	if c == nil {
		return errs.NewInvalidFormatError("callback", "", "missing Body.stkCallback")
	}
	if strings.TrimSpace(c.CheckoutRequestID) == "" {
		return errs.NewInvalidFormatError("CheckoutRequestID", "", "missing checkout request id")
	}
	if c.ResultCode == "" {
		return errs.NewInvalidFormatError("ResultCode", "", "missing result code")
	}
	return nil
}

// Outcome maps the callback onto the attempt lifecycle
func (c *StkCallback) Outcome() entity.Outcome {
	outcome := entity.OutcomeFromResultCode(string(c.ResultCode), c.ResultDesc)
	if outcome.Status != entity.StatusSuccess {
		return outcome
	}

	outcome.ReceiptRef = c.metadataString("MpesaReceiptNumber")
	if raw := c.metadataString("TransactionDate"); raw != "" {
		if paidAt, err := time.ParseInLocation(transactionDateLayout, raw, eat); err == nil {
			paidAt = paidAt.UTC()
			outcome.PaidAt = &paidAt
		}
	}
	return outcome
}

// Metadata flattens the callback metadata into a map
func (c *StkCallback) Metadata() map[string]string {
	if c.CallbackMetadata == nil {
		return nil
	}
	items := make(map[string]string, len(c.CallbackMetadata.Item))
	for _, item := range c.CallbackMetadata.Item {
		items[item.Name] = rawText(item.Value)
	}
	return items
}

func (c *StkCallback) metadataString(name string) string {
	if c.CallbackMetadata == nil {
		return ""
	}
	for _, item := range c.CallbackMetadata.Item {
		if item.Name == name {
			return rawText(item.Value)
		}
	}
	return ""
}

// rawText renders a JSON string or number without quotes
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v flexString
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return string(v)
}

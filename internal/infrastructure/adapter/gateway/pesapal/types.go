package pesapal

import (
	"strings"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
)

// Pesapal v3 base URLs
const (
	SandboxBaseURL    = "https://cybqa.pesapal.com/pesapalv3"
	ProductionBaseURL = "https://pay.pesapal.com/v3"
)

// BaseURLFor picks the base URL for an environment name
func BaseURLFor(environment string) string {
	if strings.EqualFold(environment, "production") {
		return ProductionBaseURL
	}
	return SandboxBaseURL
}

// apiError is embedded in most Pesapal responses, even with HTTP 200
type apiError struct {
	ErrorType string `json:"error_type"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func (e *apiError) present() bool {
	return e != nil && (e.Code != "" || e.Message != "")
}

type tokenRequest struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
}

type tokenResponse struct {
	Token      string    `json:"token"`
	ExpiryDate string    `json:"expiryDate"`
	Error      *apiError `json:"error"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
}

type registerIPNRequest struct {
	URL              string `json:"url"`
	NotificationType string `json:"ipn_notification_type"`
}

type registerIPNResponse struct {
	IPNID string    `json:"ipn_id"`
	URL   string    `json:"url"`
	Error *apiError `json:"error"`
}

type billingAddress struct {
	EmailAddress string `json:"email_address"`
	PhoneNumber  string `json:"phone_number"`
	CountryCode  string `json:"country_code"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Line1        string `json:"line_1"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	ZipCode      string `json:"zip_code"`
}

type submitOrderRequest struct {
	ID             string         `json:"id"`
	Currency       string         `json:"currency"`
	Amount         int64          `json:"amount"`
	Description    string         `json:"description"`
	CallbackURL    string         `json:"callback_url"`
	NotificationID string         `json:"notification_id"`
	BillingAddress billingAddress `json:"billing_address"`
	AccountNumber  string         `json:"account_number,omitempty"`
}

type submitOrderResponse struct {
	OrderTrackingID   string    `json:"order_tracking_id"`
	MerchantReference string    `json:"merchant_reference"`
	RedirectURL       string    `json:"redirect_url"`
	Error             *apiError `json:"error"`
	Status            string    `json:"status"`
}

type transactionStatusResponse struct {
	PaymentMethod            string    `json:"payment_method"`
	Amount                   float64   `json:"amount"`
	CreatedDate              string    `json:"created_date"`
	ConfirmationCode         string    `json:"confirmation_code"`
	PaymentStatusDescription string    `json:"payment_status_description"`
	Description              string    `json:"description"`
	Message                  string    `json:"message"`
	PaymentAccount           string    `json:"payment_account"`
	MerchantReference        string    `json:"merchant_reference"`
	Currency                 string    `json:"currency"`
	Error                    *apiError `json:"error"`
	Status                   string    `json:"status"`
}

// Payment status descriptions
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
	StatusInvalid   = "INVALID"
	StatusReversed  = "REVERSED"
)

// StatusFromDescription maps payment_status_description onto the attempt lifecycle
func StatusFromDescription(description string) entity.AttemptStatus {
	switch strings.ToUpper(strings.TrimSpace(description)) {
	case StatusCompleted:
		return entity.StatusSuccess
	case StatusFailed, StatusInvalid:
		return entity.StatusFailed
	case StatusReversed:
		// funds went back to the payer after the fact
		return entity.StatusCancelled
	default:
		return entity.StatusPending
	}
}

// Pesapal sends timestamps with or without a zone; zoneless ones are Nairobi local time
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"}

func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

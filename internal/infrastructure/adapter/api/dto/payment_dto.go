package dto

// BillingRequest is the billing snapshot collected on the checkout form
type BillingRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
}

// CheckoutRequest starts a payment for an order
type CheckoutRequest struct {
	OrderID uint64         `json:"orderId" binding:"required"`
	Method  string         `json:"method" binding:"required,oneof=mpesa pesapal"`
	Phone   string         `json:"phone" binding:"required"`
	Billing BillingRequest `json:"billing"`
}

// CheckoutResponse tells the storefront what to show next
type CheckoutResponse struct {
	CorrelationID string `json:"correlationId"`
	OrderID       uint64 `json:"orderId"`
	Method        string `json:"method"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	RedirectURL   string `json:"redirectUrl,omitempty"`
	Simulated     bool   `json:"simulated,omitempty"`
}

// StatusResponse answers a status poll
type StatusResponse struct {
	CorrelationID string `json:"correlationId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	ReceiptRef    string `json:"receiptRef,omitempty"`
	Amount        string `json:"amount"`
	RetryLater    bool   `json:"retryLater"`
}

// CallbackAck is the acknowledgement Daraja expects from a callback URL
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// IPNAck acknowledges an instant payment notification
type IPNAck struct {
	Status string `json:"status"`
}

// HealthResponse reports service health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Time     string `json:"time"`
}

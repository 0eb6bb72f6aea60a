package pesapal

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/gateway/transport"
	"github.com/google/uuid"
)

const (
	gatewayName = "pesapal"

	defaultCurrency    = "KES"
	defaultCountryCode = "KE"
	defaultCity        = "Nairobi"
	defaultPostalCode  = "00100"

	// tokens are issued for five minutes
	fallbackTokenTTL = 5 * time.Minute
)

var nairobi = time.FixedZone("EAT", 3*60*60)

// Config holds merchant credentials and endpoints
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	// CallbackURL is where the customer's browser returns after paying
	CallbackURL string
	// IPNURL receives instant payment notifications; registered lazily
	IPNURL        string
	Currency      string
	AccountNumber string
}

// Client talks to the Pesapal v3 API
type Client struct {
	config Config
	http   *transport.Client
	tokens *transport.TokenSource
	clock  coreport.TimeProvider
	logger coreport.Logger

	ipnMu sync.Mutex
	ipnID string
}

var _ gateway.Gateway = (*Client)(nil)

// NewClient creates a Pesapal client sharing tokenCache with every other client
func NewClient(
	config Config,
	httpClient *transport.Client,
	tokenCache *transport.TokenCache,
	clock coreport.TimeProvider,
	logger coreport.Logger,
) *Client {
	if config.BaseURL == "" {
		config.BaseURL = SandboxBaseURL
	}
	if config.Currency == "" {
		config.Currency = defaultCurrency
	}

	c := &Client{
		config: config,
		http:   httpClient,
		clock:  clock,
		logger: logger,
	}
	c.tokens = transport.NewTokenSource(gatewayName, tokenCache, clock, c.fetchToken)
	return c
}

// Method returns entity.MethodPesapal
func (c *Client) Method() entity.PaymentMethod {
	return entity.MethodPesapal
}

// Authenticate returns the cached bearer token, requesting one if needed
func (c *Client) Authenticate(ctx context.Context) (gateway.Token, error) {
	return c.tokens.Token(ctx)
}

func (c *Client) fetchToken(ctx context.Context) (gateway.Token, error) {
	var resp tokenResponse
	err := c.http.Do(ctx, transport.Request{
		Op:     "authenticate",
		Method: http.MethodPost,
		URL:    c.config.BaseURL + "/api/Auth/RequestToken",
		Body:   tokenRequest{ConsumerKey: c.config.ConsumerKey, ConsumerSecret: c.config.ConsumerSecret},
	}, &resp)
	if err != nil {
		return gateway.Token{}, err
	}
	// invalid credentials come back as 200 with an error object
	if resp.Error.present() || resp.Token == "" {
		return gateway.Token{}, errs.NewGatewayError(gatewayName, "authenticate", http.StatusOK, errs.ErrAuth)
	}

	expiresAt, ok := parseDate(resp.ExpiryDate, time.UTC)
	if !ok {
		expiresAt = c.clock.Now().Add(fallbackTokenTTL)
	}

	c.logger.Info("Pesapal access token refreshed", map[string]any{"expires_at": expiresAt})
	return gateway.Token{Value: resp.Token, ExpiresAt: expiresAt}, nil
}

// NotificationID registers the IPN URL once per process and returns its id
func (c *Client) NotificationID(ctx context.Context) (string, error) {
	c.ipnMu.Lock()
	defer c.ipnMu.Unlock()

	if c.ipnID != "" || c.config.IPNURL == "" {
		return c.ipnID, nil
	}

	var resp registerIPNResponse
	err := c.tokens.Do(ctx, func(token string) error {
		return c.http.Do(ctx, transport.Request{
			Op:     "register_ipn",
			Method: http.MethodPost,
			URL:    c.config.BaseURL + "/api/URLSetup/RegisterIPN",
			Header: transport.Bearer(token),
			Body:   registerIPNRequest{URL: c.config.IPNURL, NotificationType: http.MethodGet},
		}, &resp)
	})
	if err != nil {
		return "", err
	}
	if resp.Error.present() || resp.IPNID == "" {
		return "", errs.NewGatewayError(gatewayName, "register_ipn", http.StatusOK,
			fmt.Errorf("IPN registration rejected: %s", resp.Error.describe()))
	}

	c.ipnID = resp.IPNID
	c.logger.Info("Pesapal IPN URL registered", map[string]any{"ipn_id": resp.IPNID, "url": c.config.IPNURL})
	return c.ipnID, nil
}

// Initiate submits an order request and returns the hosted payment page
func (c *Client) Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResult, error) {
	phone, err := entity.NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	notificationID, err := c.NotificationID(ctx)
	if err != nil {
		return nil, err
	}

	body := submitOrderRequest{
		ID:             merchantReference(),
		Currency:       c.config.Currency,
		Amount:         req.Amount.WholeUnits(),
		Description:    req.Description,
		CallbackURL:    c.config.CallbackURL,
		NotificationID: notificationID,
		BillingAddress: billingAddressFor(req.Billing, phone),
		AccountNumber:  c.config.AccountNumber,
	}

	var resp submitOrderResponse
	err = c.tokens.Do(ctx, func(token string) error {
		return c.http.Do(ctx, transport.Request{
			Op:     "submit_order",
			Method: http.MethodPost,
			URL:    c.config.BaseURL + "/api/Transactions/SubmitOrderRequest",
			Header: transport.Bearer(token),
			Body:   body,
		}, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Error.present() || resp.OrderTrackingID == "" {
		return nil, errs.NewGatewayError(gatewayName, "submit_order", http.StatusOK,
			fmt.Errorf("order not accepted: %s", resp.Error.describe()))
	}

	c.logger.Info("Pesapal order submitted", map[string]any{
		"order_id":           req.OrderID,
		"correlation_id":     resp.OrderTrackingID,
		"merchant_reference": resp.MerchantReference,
	})
	return &gateway.InitiateResult{
		CorrelationID: resp.OrderTrackingID,
		SecondaryID:   resp.MerchantReference,
		Phone:         phone,
		RedirectURL:   resp.RedirectURL,
	}, nil
}

// QueryStatus fetches the transaction status for an order tracking id
func (c *Client) QueryStatus(ctx context.Context, query gateway.StatusQuery) (*gateway.StatusResult, error) {
	endpoint := c.config.BaseURL + "/api/Transactions/GetTransactionStatus?orderTrackingId=" +
		url.QueryEscape(query.CorrelationID)

	var resp transactionStatusResponse
	err := c.tokens.Do(ctx, func(token string) error {
		return c.http.Do(ctx, transport.Request{
			Op:     "query",
			Method: http.MethodGet,
			URL:    endpoint,
			Header: transport.Bearer(token),
		}, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Error.present() {
		return nil, errs.NewGatewayError(gatewayName, "query", http.StatusOK,
			fmt.Errorf("status query rejected: %s", resp.Error.describe()))
	}

	return &gateway.StatusResult{
		CorrelationID: query.CorrelationID,
		Outcome:       outcomeFor(resp),
	}, nil
}

func outcomeFor(resp transactionStatusResponse) entity.Outcome {
	outcome := entity.Outcome{
		Status:      StatusFromDescription(resp.PaymentStatusDescription),
		Code:        strings.ToUpper(strings.TrimSpace(resp.PaymentStatusDescription)),
		Description: resp.Description,
	}
	if outcome.Description == "" {
		outcome.Description = resp.Message
	}
	if outcome.Status != entity.StatusSuccess {
		return outcome
	}

	outcome.ReceiptRef = resp.ConfirmationCode
	if paidAt, ok := parseDate(resp.CreatedDate, nairobi); ok {
		outcome.PaidAt = &paidAt
	}
	return outcome
}

// merchantReference returns ORDER_ followed by eight upper-case hex digits
func merchantReference() string {
	id := uuid.New()
	return "ORDER_" + strings.ToUpper(hex.EncodeToString(id[:4]))
}

func billingAddressFor(billing entity.Billing, phone entity.CanonicalPhone) billingAddress {
	city := billing.City
	if city == "" {
		city = defaultCity
	}
	return billingAddress{
		EmailAddress: billing.Email,
		PhoneNumber:  phone.String(),
		CountryCode:  defaultCountryCode,
		FirstName:    billing.FirstName,
		LastName:     billing.LastName,
		Line1:        billing.Address,
		City:         city,
		State:        city,
		PostalCode:   defaultPostalCode,
		ZipCode:      defaultPostalCode,
	}
}

func (e *apiError) describe() string {
	if e == nil {
		return "no details"
	}
	if e.Message != "" {
		return e.Code + " " + e.Message
	}
	return e.Code
}

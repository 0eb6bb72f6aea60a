package mpesa

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/adapter/gateway/transport"
)

const (
	gatewayName = "mpesa"

	// timestampLayout is YYYYMMDDHHMMSS in East Africa Time
	timestampLayout = "20060102150405"

	defaultTransactionType = "CustomerPayBillOnline"
)

// eat is the zone Daraja timestamps and transaction dates are expressed in
var eat = time.FixedZone("EAT", 3*60*60)

// Config holds merchant credentials and endpoints
type Config struct {
	BaseURL          string
	ConsumerKey      string
	ConsumerSecret   string
	ShortCode        string
	PassKey          string
	CallbackURL      string
	TransactionType  string
	AccountReference string
}

// Client talks to the Daraja STK push API
type Client struct {
	config Config
	http   *transport.Client
	tokens *transport.TokenSource
	clock  coreport.TimeProvider
	logger coreport.Logger
}

var _ gateway.Gateway = (*Client)(nil)

// NewClient creates an M-Pesa client sharing tokenCache with every other client
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
	if config.TransactionType == "" {
		config.TransactionType = defaultTransactionType
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

// Method returns entity.MethodMpesa
func (c *Client) Method() entity.PaymentMethod {
	return entity.MethodMpesa
}

// Authenticate returns the cached OAuth token, fetching one if needed
func (c *Client) Authenticate(ctx context.Context) (gateway.Token, error) {
	return c.tokens.Token(ctx)
}

func (c *Client) fetchToken(ctx context.Context) (gateway.Token, error) {
	credentials := base64.StdEncoding.EncodeToString([]byte(c.config.ConsumerKey + ":" + c.config.ConsumerSecret))

	var resp tokenResponse
	err := c.http.Do(ctx, transport.Request{
		Op:     "authenticate",
		Method: http.MethodGet,
		URL:    c.config.BaseURL + "/oauth/v1/generate?grant_type=client_credentials",
		Header: map[string]string{"Authorization": "Basic " + credentials},
	}, &resp)
	if err != nil {
		return gateway.Token{}, err
	}
	if resp.AccessToken == "" {
		return gateway.Token{}, errs.NewGatewayError(gatewayName, "authenticate", http.StatusOK, errs.ErrAuth)
	}

	ttl := time.Hour
	if seconds, err := strconv.Atoi(string(resp.ExpiresIn)); err == nil && seconds > 0 {
		ttl = time.Duration(seconds) * time.Second
	}

	c.logger.Info("M-Pesa access token refreshed", map[string]any{"expires_in": ttl.String()})
	return gateway.Token{Value: resp.AccessToken, ExpiresAt: c.clock.Now().Add(ttl)}, nil
}

// password returns base64(shortcode + passkey + timestamp) and the timestamp used
func (c *Client) password() (string, string) {
	timestamp := c.clock.Now().In(eat).Format(timestampLayout)
	raw := c.config.ShortCode + c.config.PassKey + timestamp
	return base64.StdEncoding.EncodeToString([]byte(raw)), timestamp
}

// Initiate sends an STK push prompt to the customer's phone
func (c *Client) Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResult, error) {
	phone, err := entity.NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	password, timestamp := c.password()
	accountRef := c.config.AccountReference
	if accountRef == "" {
		accountRef = req.Reference
	}
	body := stkPushRequest{
		BusinessShortCode: c.config.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   c.config.TransactionType,
		Amount:            req.Amount.WholeUnits(),
		PartyA:            phone.String(),
		PartyB:            c.config.ShortCode,
		PhoneNumber:       phone.String(),
		CallBackURL:       c.config.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   req.Description,
	}

	var resp stkPushResponse
	var errBody errorResponse
	err = c.tokens.Do(ctx, func(token string) error {
		return c.http.Do(ctx, transport.Request{
			Op:        "stk_push",
			Method:    http.MethodPost,
			URL:       c.config.BaseURL + "/mpesa/stkpush/v1/processrequest",
			Header:    transport.Bearer(token),
			Body:      body,
			ErrorBody: &errBody,
		}, &resp)
	})
	if err != nil {
		if errBody.ErrorMessage != "" {
			c.logger.Warn("STK push rejected", map[string]any{
				"order_id":      req.OrderID,
				"error_code":    errBody.ErrorCode,
				"error_message": errBody.ErrorMessage,
			})
		}
		return nil, err
	}

	if resp.ResponseCode != "0" || resp.CheckoutRequestID == "" {
		return nil, errs.NewGatewayError(gatewayName, "stk_push", http.StatusOK,
			fmt.Errorf("push not accepted: %s %s", resp.ResponseCode, resp.ResponseDescription))
	}

	c.logger.Info("STK push sent", map[string]any{
		"order_id":       req.OrderID,
		"correlation_id": resp.CheckoutRequestID,
		"amount":         body.Amount,
	})
	return &gateway.InitiateResult{
		CorrelationID: resp.CheckoutRequestID,
		SecondaryID:   resp.MerchantRequestID,
		Phone:         phone,
	}, nil
}

// QueryStatus asks Daraja for the push result. While the customer hasn't
// answered, Daraja replies 500 with errorCode 500.001.1001, which is PENDING.
func (c *Client) QueryStatus(ctx context.Context, query gateway.StatusQuery) (*gateway.StatusResult, error) {
	password, timestamp := c.password()
	body := stkQueryRequest{
		BusinessShortCode: c.config.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		CheckoutRequestID: query.CorrelationID,
	}

	var resp stkQueryResponse
	var errBody errorResponse
	err := c.tokens.Do(ctx, func(token string) error {
		errBody = errorResponse{}
		return c.http.Do(ctx, transport.Request{
			Op:        "query",
			Method:    http.MethodPost,
			URL:       c.config.BaseURL + "/mpesa/stkpushquery/v1/query",
			Header:    transport.Bearer(token),
			Body:      body,
			ErrorBody: &errBody,
			Expected: func(int) bool {
				return errBody.ErrorCode == entity.ResultCodeProcessing
			},
		}, &resp)
	})
	if err != nil {
		var gwErr *errs.GatewayError
		if errors.As(err, &gwErr) && gwErr.StatusCode != 0 && errBody.ErrorCode == entity.ResultCodeProcessing {
			return &gateway.StatusResult{
				CorrelationID: query.CorrelationID,
				Outcome:       entity.OutcomeFromResultCode(errBody.ErrorCode, errBody.ErrorMessage),
			}, nil
		}
		return nil, err
	}

	outcome := entity.OutcomeFromResultCode(string(resp.ResultCode), resp.ResultDesc)
	if resp.ResultCode == "" {
		outcome = entity.OutcomeFromResultCode(entity.ResultCodeProcessing, resp.ResponseDescription)
	}
	return &gateway.StatusResult{CorrelationID: query.CorrelationID, Outcome: outcome}, nil
}

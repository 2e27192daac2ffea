package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PaymentClient is the slice of the payment processor the billing service
// consumes. Checkout, portal and customer creation run against the
// processor's API; catalog and grants flow back through the webhook.
type PaymentClient interface {
	CreateCustomer(ctx context.Context, userID, username string) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

type CheckoutParams struct {
	CustomerID      string
	PriceID         string
	Mode            string
	ClientReference string
	SuccessURL      string
	CancelURL       string
	UserID          string
	ProductID       string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type StripeClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewStripeClient(baseURL, secretKey string) *StripeClient {
	return &StripeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: http.DefaultClient,
	}
}

func (s *StripeClient) CreateCustomer(ctx context.Context, userID, username string) (string, error) {
	form := url.Values{}
	form.Set("name", username)
	form.Set("metadata[user_id]", userID)

	var customer struct {
		ID string `json:"id"`
	}
	if err := s.postForm(ctx, "/v1/customers", form, &customer); err != nil {
		return "", err
	}
	if customer.ID == "" {
		return "", fmt.Errorf("customer id missing from response")
	}
	return customer.ID, nil
}

func (s *StripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("customer", params.CustomerID)
	form.Set("mode", params.Mode)
	form.Set("client_reference_id", params.ClientReference)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	// Echoed back on the completed-checkout webhook so grants can be applied
	// without a catalog lookup round-trip to the processor.
	form.Set("metadata[user_id]", params.UserID)
	form.Set("metadata[product_id]", params.ProductID)

	var session CheckoutSession
	if err := s.postForm(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	if session.URL == "" {
		return nil, fmt.Errorf("checkout url missing from response")
	}
	return &session, nil
}

func (s *StripeClient) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)

	var session struct {
		URL string `json:"url"`
	}
	if err := s.postForm(ctx, "/v1/billing_portal/sessions", form, &session); err != nil {
		return "", err
	}
	if session.URL == "" {
		return "", fmt.Errorf("portal url missing from response")
	}
	return session.URL, nil
}

func (s *StripeClient) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build payment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("payment request %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode payment response: %w", err)
	}
	return nil
}

// webhookTolerance bounds how old a signed webhook timestamp may be before
// the event is rejected as a possible replay.
const webhookTolerance = 5 * time.Minute

// VerifyWebhookSignature checks the processor's signature header, of the form
// "t=<unix>,v1=<hex hmac>", where the HMAC-SHA256 input is "<t>.<payload>".
func VerifyWebhookSignature(payload []byte, header, secret string) error {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	seconds, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed signature timestamp")
	}
	age := time.Since(time.Unix(seconds, 0))
	if age > webhookTolerance || age < -webhookTolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(expected), []byte(signature)) {
			return nil
		}
	}
	return fmt.Errorf("no matching signature")
}

// SignWebhookPayload produces the header VerifyWebhookSignature accepts.
// Exported for tests and local tooling.
func SignWebhookPayload(payload []byte, secret string, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

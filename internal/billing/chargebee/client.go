package chargebee

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alkeincodes/bundle-tool/internal/billing/domain"
)

// Config identifies the Chargebee site. BaseURL overrides the derived site
// URL, which tests use to point at a local server.
type Config struct {
	Site    string
	APIKey  string
	BaseURL string
}

// Client speaks the Chargebee v2 REST API: basic auth with the API key as
// username, form-encoded request bodies, JSON responses. Every call is a
// single attempt with the transport's default timeout.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

// NewClient builds a Chargebee client for the configured site.
func NewClient(cfg Config, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.chargebee.com/api/v2", cfg.Site)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
		log:     log.Named("billing.chargebee"),
	}
}

type customerEnvelope struct {
	Customer struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		PaymentMethod *struct {
			Status string `json:"status"`
		} `json:"payment_method"`
	} `json:"customer"`
	Card json.RawMessage `json:"card"`
}

// SearchCustomerByEmail looks up a customer with a single exact-match
// query. Zero matches return (nil, nil).
func (c *Client) SearchCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := url.Values{
		"email[is]": {email},
		"limit":     {"1"},
	}

	var resp struct {
		List []customerEnvelope `json:"list"`
	}
	if err := c.do(ctx, http.MethodGet, "/customers?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.List) == 0 {
		return nil, nil
	}

	record := resp.List[0]
	hasPaymentMethod := record.Customer.PaymentMethod != nil && record.Customer.PaymentMethod.Status == "valid"
	if !hasPaymentMethod && len(record.Card) > 0 && string(record.Card) != "null" {
		hasPaymentMethod = true
	}

	return &domain.Customer{
		ID:               record.Customer.ID,
		Email:            record.Customer.Email,
		FirstName:        record.Customer.FirstName,
		LastName:         record.Customer.LastName,
		HasPaymentMethod: hasPaymentMethod,
	}, nil
}

type subscriptionEnvelope struct {
	Subscription struct {
		ID                string `json:"id"`
		PlanID            string `json:"plan_id"`
		Status            string `json:"status"`
		SubscriptionItems []struct {
			ItemPriceID string `json:"item_price_id"`
		} `json:"subscription_items"`
	} `json:"subscription"`
}

// ListQualifyingSubscriptions returns the customer's subscriptions in
// active, non_renewing, or in_trial status, in provider order.
func (c *Client) ListQualifyingSubscriptions(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	statuses, _ := json.Marshal([]string{domain.StatusActive, domain.StatusNonRenewing, domain.StatusInTrial})
	query := url.Values{
		"customer_id[is]": {customerID},
		"status[in]":      {string(statuses)},
	}

	var resp struct {
		List []subscriptionEnvelope `json:"list"`
	}
	if err := c.do(ctx, http.MethodGet, "/subscriptions?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	subs := make([]domain.Subscription, 0, len(resp.List))
	for _, item := range resp.List {
		planID := item.Subscription.PlanID
		if planID == "" && len(item.Subscription.SubscriptionItems) > 0 {
			planID = item.Subscription.SubscriptionItems[0].ItemPriceID
		}
		subs = append(subs, domain.Subscription{
			ID:     item.Subscription.ID,
			PlanID: planID,
			Status: item.Subscription.Status,
		})
	}
	return subs, nil
}

// CreateSubscription creates a new item-based subscription with the plan
// and coupon applied.
func (c *Client) CreateSubscription(ctx context.Context, customerID, planID, couponID string) (domain.SubscriptionResult, error) {
	form := url.Values{
		"subscription_items[item_price_id][0]": {planID},
		"subscription_items[quantity][0]":      {"1"},
	}
	if couponID != "" {
		form.Set("coupon_ids[0]", couponID)
	}

	var resp subscriptionEnvelope
	path := fmt.Sprintf("/customers/%s/subscription_for_items", url.PathEscape(customerID))
	if err := c.do(ctx, http.MethodPost, path, form, &resp); err != nil {
		return domain.SubscriptionResult{}, err
	}
	return domain.SubscriptionResult{
		SubscriptionID: resp.Subscription.ID,
		Status:         resp.Subscription.Status,
	}, nil
}

// UpdateSubscription switches an existing subscription to the plan and
// coupon in place: no end-of-term deferral, no proration.
func (c *Client) UpdateSubscription(ctx context.Context, subscriptionID, planID, couponID string) (domain.SubscriptionResult, error) {
	form := url.Values{
		"subscription_items[item_price_id][0]": {planID},
		"subscription_items[quantity][0]":      {"1"},
		"end_of_term":                          {"false"},
		"prorate":                              {"false"},
	}
	if couponID != "" {
		form.Set("coupon_ids[0]", couponID)
	}

	var resp subscriptionEnvelope
	path := fmt.Sprintf("/subscriptions/%s/update_for_items", url.PathEscape(subscriptionID))
	if err := c.do(ctx, http.MethodPost, path, form, &resp); err != nil {
		return domain.SubscriptionResult{}, err
	}
	return domain.SubscriptionResult{
		SubscriptionID: resp.Subscription.ID,
		Status:         resp.Subscription.Status,
		Updated:        true,
	}, nil
}

type invoiceEnvelope struct {
	Invoice struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		AmountPaid int64  `json:"amount_paid"`
		AmountDue  int64  `json:"amount_due"`
		Total      int64  `json:"total"`
	} `json:"invoice"`
	PaymentSchedules []struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		Amount      int64  `json:"amount"`
		ScheduledAt int64  `json:"scheduled_at"`
	} `json:"payment_schedules"`
}

// CreateCharge creates a USD ad-hoc charge invoice. autoCollect=false
// creates it with automatic collection disabled so a payment schedule can
// be applied afterwards.
func (c *Client) CreateCharge(ctx context.Context, customerID string, amount int64, description string, autoCollect bool) (domain.Invoice, error) {
	form := url.Values{
		"customer_id":             {customerID},
		"currency_code":           {"USD"},
		"charges[amount][0]":      {strconv.FormatInt(amount, 10)},
		"charges[description][0]": {description},
	}
	if !autoCollect {
		form.Set("auto_collection", "off")
	}

	var resp invoiceEnvelope
	if err := c.do(ctx, http.MethodPost, "/invoices/create_for_charge_items_and_charges", form, &resp); err != nil {
		return domain.Invoice{}, err
	}
	return domain.Invoice{
		ID:         resp.Invoice.ID,
		Status:     resp.Invoice.Status,
		AmountPaid: resp.Invoice.AmountPaid,
		AmountDue:  resp.Invoice.AmountDue,
		Total:      resp.Invoice.Total,
	}, nil
}

// ApplyPaymentScheduleScheme splits an invoice's collection into the
// installments defined by a pre-configured provider-side scheme.
func (c *Client) ApplyPaymentScheduleScheme(ctx context.Context, invoiceID, schemeID string) (domain.ScheduleResult, error) {
	form := url.Values{
		"scheme_id": {schemeID},
	}

	var resp invoiceEnvelope
	path := fmt.Sprintf("/invoices/%s/apply_payment_schedule_scheme", url.PathEscape(invoiceID))
	if err := c.do(ctx, http.MethodPost, path, form, &resp); err != nil {
		return domain.ScheduleResult{}, err
	}

	schedules := make([]domain.PaymentSchedule, 0, len(resp.PaymentSchedules))
	for _, entry := range resp.PaymentSchedules {
		schedules = append(schedules, domain.PaymentSchedule{
			ID:          entry.ID,
			Status:      entry.Status,
			Amount:      entry.Amount,
			ScheduledAt: entry.ScheduledAt,
		})
	}
	return domain.ScheduleResult{
		InvoiceID:        resp.Invoice.ID,
		Status:           resp.Invoice.Status,
		PaymentSchedules: schedules,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		provErr := &domain.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
		var payload struct {
			Message      string `json:"message"`
			APIErrorCode string `json:"api_error_code"`
		}
		if err := json.Unmarshal(raw, &payload); err == nil {
			if payload.Message != "" {
				provErr.Message = payload.Message
			}
			provErr.APIErrorCode = payload.APIErrorCode
		}
		c.log.Error("chargebee api error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("api_error_code", provErr.APIErrorCode),
		)
		return provErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

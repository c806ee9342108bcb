package chargebee

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/alkeincodes/bundle-tool/internal/billing/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	client := NewClient(Config{APIKey: "test_key", BaseURL: srv.URL}, srv.Client(), zap.NewNop())
	return srv, client
}

func TestSearchCustomerNotFound(t *testing.T) {
	srv, client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"list": []any{}})
	})
	defer srv.Close()

	customer, err := client.SearchCustomerByEmail(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("expected not-found to be a normal outcome, got %v", err)
	}
	if customer != nil {
		t.Fatalf("expected nil customer, got %+v", customer)
	}
}

func TestSearchCustomerSendsAPIKeyAndQuery(t *testing.T) {
	srv, client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		if !ok || user != "test_key" {
			t.Errorf("expected basic auth with api key as username")
		}
		if got := r.URL.Query().Get("email[is]"); got != "a@x.com" {
			t.Errorf("unexpected email filter %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Errorf("unexpected limit %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"list": []map[string]any{{
				"customer": map[string]any{
					"id": "cust-1", "email": "a@x.com",
					"first_name": "Ada", "last_name": "Lovelace",
					"payment_method": map[string]any{"status": "valid"},
				},
			}},
		})
	})
	defer srv.Close()

	customer, err := client.SearchCustomerByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if customer.ID != "cust-1" || !customer.HasPaymentMethod {
		t.Fatalf("unexpected customer: %+v", customer)
	}
}

func TestSearchCustomerCardImpliesPaymentMethod(t *testing.T) {
	srv, client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"list": []map[string]any{{
				"customer": map[string]any{"id": "cust-2", "email": "b@x.com"},
				"card":     map[string]any{"last4": "4242"},
			}},
		})
	})
	defer srv.Close()

	customer, err := client.SearchCustomerByEmail(context.Background(), "b@x.com")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !customer.HasPaymentMethod {
		t.Fatalf("card on file must imply a payment method")
	}
}

func TestSearchCustomerNoPaymentMethod(t *testing.T) {
	srv, client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"list": []map[string]any{{
				"customer": map[string]any{
					"id": "cust-3", "email": "c@x.com",
					"payment_method": map[string]any{"status": "pending_verification"},
				},
			}},
		})
	})
	defer srv.Close()

	customer, err := client.SearchCustomerByEmail(context.Background(), "c@x.com")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if customer.HasPaymentMethod {
		t.Fatalf("non-valid payment method without card must not count")
	}
}

func TestListQualifyingSubscriptionsFilters(t *testing.T) {
	srv, client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("customer_id[is]"); got != "cust-1" {
			t.Errorf("unexpected customer filter %q", got)
		}
		var statuses []string
		if err := json.Unmarshal([]byte(r.URL.Query().Get("status[in]")), &statuses); err != nil {
			t.Errorf("status[in] not a JSON array: %v", err)
		}
		if len(statuses) != 3 || statuses[0] != "active" {
			t.Errorf("unexpected statuses %v", statuses)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"list": []map[string]any{
				{"subscription": map[string]any{"id": "sub-1", "plan_id": "legacy", "status": "active"}},
				{"subscription": map[string]any{
					"id": "sub-2", "status": "in_trial",
					"subscription_items": []map[string]any{{"item_price_id": "tme-plus"}},
				}},
			},
		})
	})
	defer srv.Close()

	subs, err := client.ListQualifyingSubscriptions(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(subs))
	}
	if subs[0].ID != "sub-1" || subs[0].PlanID != "legacy" {
		t.Fatalf("provider order not preserved: %+v", subs)
	}
	if subs[1].PlanID != "tme-plus" {
		t.Fatalf("expected item price fallback, got %q", subs[1].PlanID)
	}
}

func TestUpdateSubscriptionForm(t *testing.T) {
	srv, client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subscriptions/sub-1/update_for_items" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("subscription_items[item_price_id][0]"); got != "tme-plus" {
			t.Errorf("unexpected plan %q", got)
		}
		if got := r.PostForm.Get("end_of_term"); got != "false" {
			t.Errorf("expected end_of_term=false, got %q", got)
		}
		if got := r.PostForm.Get("prorate"); got != "false" {
			t.Errorf("expected prorate=false, got %q", got)
		}
		if got := r.PostForm.Get("coupon_ids[0]"); got != "BUNDLE100" {
			t.Errorf("expected coupon, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"subscription": map[string]any{"id": "sub-1", "status": "active"},
		})
	})
	defer srv.Close()

	result, err := client.UpdateSubscription(context.Background(), "sub-1", "tme-plus", "BUNDLE100")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !result.Updated {
		t.Fatalf("expected updated=true")
	}
}

func TestCreateChargeDisablesAutoCollection(t *testing.T) {
	srv, client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("auto_collection"); got != "off" {
			t.Errorf("expected auto_collection=off, got %q", got)
		}
		if got := r.PostForm.Get("charges[amount][0]"); got != "320100" {
			t.Errorf("unexpected amount %q", got)
		}
		if got := r.PostForm.Get("currency_code"); got != "USD" {
			t.Errorf("unexpected currency %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"invoice": map[string]any{"id": "inv-9", "status": "payment_due", "total": 320100},
		})
	})
	defer srv.Close()

	invoice, err := client.CreateCharge(context.Background(), "cust-1", 320100, "3-Pay", false)
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}
	if invoice.ID != "inv-9" || invoice.Total != 320100 {
		t.Fatalf("unexpected invoice: %+v", invoice)
	}
}

func TestApplyPaymentScheduleScheme(t *testing.T) {
	srv, client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/invoices/inv-9/apply_payment_schedule_scheme" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("scheme_id"); got != "scheme-3pay" {
			t.Errorf("unexpected scheme %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"invoice": map[string]any{"id": "inv-9", "status": "payment_due"},
			"payment_schedules": []map[string]any{
				{"id": "ps-1", "status": "posted", "amount": 106700, "scheduled_at": 1750000000},
				{"id": "ps-2", "status": "scheduled", "amount": 106700, "scheduled_at": 1752678400},
				{"id": "ps-3", "status": "scheduled", "amount": 106700, "scheduled_at": 1755356800},
			},
		})
	})
	defer srv.Close()

	result, err := client.ApplyPaymentScheduleScheme(context.Background(), "inv-9", "scheme-3pay")
	if err != nil {
		t.Fatalf("apply schedule: %v", err)
	}
	if len(result.PaymentSchedules) != 3 {
		t.Fatalf("expected 3 schedules, got %d", len(result.PaymentSchedules))
	}
	if result.PaymentSchedules[0].Amount != 106700 {
		t.Fatalf("unexpected schedule amount: %+v", result.PaymentSchedules[0])
	}
}

func TestProviderErrorDecoding(t *testing.T) {
	srv, client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":        "Insufficient funds",
			"api_error_code": "payment_processing_failed",
		})
	})
	defer srv.Close()

	_, err := client.CreateCharge(context.Background(), "cust-1", 299900, "Full Pay", true)
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Message != "Insufficient funds" || provErr.APIErrorCode != "payment_processing_failed" {
		t.Fatalf("unexpected error: %+v", provErr)
	}
	if !domain.IsPaymentError(err) {
		t.Fatalf("expected payment error marker")
	}
}

func TestProviderErrorWithoutBody(t *testing.T) {
	srv, client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := client.SearchCustomerByEmail(context.Background(), "a@x.com")
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if domain.IsPaymentError(err) {
		t.Fatalf("bare transport failure must not read as a payment error")
	}
}

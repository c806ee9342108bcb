package server

import (
	"net/http"
	"testing"

	billingdomain "github.com/alkeincodes/bundle-tool/internal/billing/domain"
)

func TestCustomerLookupRequiresEmail(t *testing.T) {
	ts := newTestServer(t, &fakeBillingService{}, &fakeFulfiller{})
	sess := ts.sessions.Create()

	rec := ts.request(t, http.MethodPost, "/api/customer/lookup", map[string]string{"email": "  "}, sess.ID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Email is required" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestCustomerLookupNotFound(t *testing.T) {
	ts := newTestServer(t, &fakeBillingService{customer: nil}, &fakeFulfiller{})
	sess := ts.sessions.Create()

	rec := ts.request(t, http.MethodPost, "/api/customer/lookup", map[string]string{"email": "missing@example.com"}, sess.ID)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Customer not found. Please verify the email address." {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestCustomerLookupNoPaymentMethod(t *testing.T) {
	billing := &fakeBillingService{customer: &billingdomain.Customer{
		ID:    "cust-1",
		Email: "jo@example.com",
	}}
	ts := newTestServer(t, billing, &fakeFulfiller{})
	sess := ts.sessions.Create()

	rec := ts.request(t, http.MethodPost, "/api/customer/lookup", map[string]string{"email": "jo@example.com"}, sess.ID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Customer has no payment method on file." {
		t.Fatalf("error = %v", body["error"])
	}
	customer, ok := body["customer"].(map[string]any)
	if !ok {
		t.Fatal("response has no customer echo")
	}
	if customer["id"] != "cust-1" {
		t.Fatalf("customer id = %v", customer["id"])
	}
}

func TestCustomerLookupWithSubscription(t *testing.T) {
	billing := &fakeBillingService{
		customer: &billingdomain.Customer{
			ID:               "cust-1",
			Email:            "jo@example.com",
			FirstName:        "Jo",
			HasPaymentMethod: true,
		},
		subscriptions: []billingdomain.Subscription{
			{ID: "sub-1", PlanID: "tme-plus", Status: billingdomain.StatusActive},
			{ID: "sub-2", PlanID: "tme-plus", Status: billingdomain.StatusInTrial},
		},
	}
	ts := newTestServer(t, billing, &fakeFulfiller{})
	sess := ts.sessions.Create()

	rec := ts.request(t, http.MethodPost, "/api/customer/lookup", map[string]string{"email": "jo@example.com"}, sess.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	customer := body["customer"].(map[string]any)
	existing, ok := customer["existingSubscription"].(map[string]any)
	if !ok {
		t.Fatal("existingSubscription missing")
	}
	if existing["id"] != "sub-1" {
		t.Fatalf("existing subscription id = %v, want sub-1", existing["id"])
	}
}

func TestCustomerLookupNoSubscriptionIsNull(t *testing.T) {
	billing := &fakeBillingService{
		customer: &billingdomain.Customer{ID: "cust-1", HasPaymentMethod: true},
	}
	ts := newTestServer(t, billing, &fakeFulfiller{})
	sess := ts.sessions.Create()

	rec := ts.request(t, http.MethodPost, "/api/customer/lookup", map[string]string{"email": "jo@example.com"}, sess.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	customer := body["customer"].(map[string]any)
	if customer["existingSubscription"] != nil {
		t.Fatalf("existingSubscription = %v, want null", customer["existingSubscription"])
	}
}

func TestCustomerLookupProviderFailure(t *testing.T) {
	billing := &fakeBillingService{lookupErr: &billingdomain.ProviderError{StatusCode: 503, Message: "maintenance"}}
	ts := newTestServer(t, billing, &fakeFulfiller{})
	sess := ts.sessions.Create()

	rec := ts.request(t, http.MethodPost, "/api/customer/lookup", map[string]string{"email": "jo@example.com"}, sess.ID)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Connection error. Please try again." {
		t.Fatalf("error = %v", body["error"])
	}
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingdomain "github.com/alkeincodes/bundle-tool/internal/billing/domain"
)

type customerLookupRequest struct {
	Email string `json:"email"`
}

type customerView struct {
	ID                   string                      `json:"id"`
	Email                string                      `json:"email"`
	FirstName            string                      `json:"firstName"`
	LastName             string                      `json:"lastName"`
	HasPaymentMethod     bool                        `json:"hasPaymentMethod"`
	ExistingSubscription *billingdomain.Subscription `json:"existingSubscription"`
}

// CustomerLookup resolves an email to the billing customer and their first
// qualifying subscription. Customers without a payment method on file are
// rejected up front so the offer flow never reaches a charge that cannot
// collect.
func (s *Server) CustomerLookup(c *gin.Context) {
	var req customerLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		AbortWithError(c, newValidationError("email", "required", "Email is required"))
		return
	}

	ctx := c.Request.Context()
	customer, err := s.billing.LookupCustomer(ctx, email)
	if err != nil {
		s.log.Error("customer lookup failed", zap.Error(err))
		AbortWithError(c, err)
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Customer not found. Please verify the email address.",
		})
		return
	}

	if !customer.HasPaymentMethod {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":  false,
			"error":    "Customer has no payment method on file.",
			"customer": customerView{
				ID:        customer.ID,
				Email:     customer.Email,
				FirstName: customer.FirstName,
				LastName:  customer.LastName,
			},
		})
		return
	}

	subscriptions, err := s.billing.ExistingSubscriptions(ctx, customer.ID)
	if err != nil {
		s.log.Error("subscription lookup failed", zap.String("customer_id", customer.ID), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	view := customerView{
		ID:               customer.ID,
		Email:            customer.Email,
		FirstName:        customer.FirstName,
		LastName:         customer.LastName,
		HasPaymentMethod: true,
	}
	if len(subscriptions) > 0 {
		view.ExistingSubscription = &subscriptions[0]
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "customer": view})
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingdomain "github.com/alkeincodes/bundle-tool/internal/billing/domain"
	"github.com/alkeincodes/bundle-tool/internal/offer"
)

type offerRequest struct {
	CustomerID    string `json:"customerId"`
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`
}

type offerResponse struct {
	Success bool `json:"success"`
	billingdomain.OfferResult
}

func (s *Server) OfferFullPay(c *gin.Context) {
	s.handleOffer(c, offer.VariantFullPay)
}

func (s *Server) OfferThreePay(c *gin.Context) {
	s.handleOffer(c, offer.VariantThreePay)
}

func (s *Server) handleOffer(c *gin.Context, variant offer.Variant) {
	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.offers.Fulfill(c.Request.Context(), offer.Request{
		Variant:       variant,
		CustomerID:    strings.TrimSpace(req.CustomerID),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerName:  strings.TrimSpace(req.CustomerName),
	})
	if err != nil {
		s.renderOfferFailure(c, variant, err)
		return
	}

	c.JSON(http.StatusOK, offerResponse{Success: true, OfferResult: result})
}

// renderOfferFailure maps a sequencer failure to the HTTP surface. A
// registration-stage failure is a 502 carrying the committed-stage flags so
// the operator knows exactly what to finish by hand.
func (s *Server) renderOfferFailure(c *gin.Context, variant offer.Variant, err error) {
	var ferr *offer.FulfillmentError
	if !errors.As(err, &ferr) {
		AbortWithError(c, err)
		return
	}

	s.log.Error("offer fulfillment failed",
		zap.String("variant", string(variant)),
		zap.String("stage", string(ferr.Stage)),
		zap.Error(err),
	)

	switch ferr.Stage {
	case offer.StageValidation:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ferr.Message})
	case offer.StageBilling:
		status := http.StatusInternalServerError
		if billingdomain.IsPaymentError(ferr.Err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": ferr.Message})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"success":          false,
			"error":            ferr.Message,
			"billingCommitted": ferr.BillingCommitted,
			"mioRegistered":    ferr.MioRegistered,
		})
	}
}

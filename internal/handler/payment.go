package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/booking"
)

// PaymentHandler settles pending bookings and previews promo codes.
type PaymentHandler struct {
	Engine *booking.Engine
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(engine *booking.Engine) *PaymentHandler {
	if engine == nil {
		panic("nil engine passed to NewPaymentHandler")
	}
	return &PaymentHandler{Engine: engine}
}

// paymentReq carries the card details for settlement.  Card data is
// validated and discarded; only the opaque transaction id is stored.
type paymentReq struct {
	CardNumber     string `json:"card_number"`
	Expiry         string `json:"expiry"`
	CVV            string `json:"cvv"`
	HolderName     string `json:"holder_name"`
	BillingAddress string `json:"billing_address"`
}

// ProcessPayment handles POST /v1/bookings/:id/payment.  A rejected
// instrument records the failed attempt but keeps the booking pending,
// so the customer can retry with another card.
func (h *PaymentHandler) ProcessPayment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, fail("unauthorized"))
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, fail("invalid booking id"))
	}
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fail("invalid request body"))
	}

	settlement, err := h.Engine.Settle(c.Request().Context(), bookingID, userID, booking.PaymentInstrument{
		CardNumber:     req.CardNumber,
		Expiry:         req.Expiry,
		CVV:            req.CVV,
		HolderName:     req.HolderName,
		BillingAddress: req.BillingAddress,
	})
	if err != nil {
		status, msg := bookingStatus(err)
		return c.JSON(status, fail(msg))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"message":    "payment accepted, booking confirmed",
		"settlement": settlement,
	})
}

// promoReq is the promo preview body.  amount_cents is the undiscounted
// order total the client wants the code applied to.
type promoReq struct {
	Code        string `json:"code"`
	AmountCents int64  `json:"amount_cents"`
}

// ValidatePromo handles POST /v1/promo/validate.  It checks a promo
// code against an order amount without consuming usage, so the client
// can show the discount before submission.
func (h *PaymentHandler) ValidatePromo(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, fail("unauthorized"))
	}
	var req promoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fail("invalid request body"))
	}
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, fail("code is required"))
	}
	if req.AmountCents < 0 {
		return c.JSON(http.StatusBadRequest, fail("amount_cents must not be negative"))
	}

	discount, err := h.Engine.PreviewPromo(c.Request().Context(), req.Code, req.AmountCents)
	if err != nil {
		status, msg := bookingStatus(err)
		return c.JSON(status, fail(msg))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"discount_cents": discount,
		"final_cents":    req.AmountCents - discount,
	})
}

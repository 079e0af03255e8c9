package handler

import (
	"net/http"

	"storefront/internal/delivery/api/response"
	"storefront/internal/domain/entity"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=10"`
	Variant   string `json:"variant" validate:"max=32"`
}

type shippingAddressRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Phone      string `json:"phone" validate:"required,min=7,max=20"`
	Street     string `json:"street" validate:"required,min=5,max=200"`
	City       string `json:"city" validate:"required,min=2,max=100"`
	State      string `json:"state" validate:"required,min=2,max=100"`
	PostalCode string `json:"postal_code" validate:"required,min=4,max=12"`
}

type createOrderRequest struct {
	Items           []orderItemRequest     `json:"items" validate:"required,min=1,max=20,dive"`
	ShippingAddress shippingAddressRequest `json:"shipping_address" validate:"required"`
}

// Field names follow what the checkout widget hands back after payment.
type verifyPaymentRequest struct {
	GatewayOrderID string `json:"razorpay_order_id" validate:"required,max=64"`
	PaymentID      string `json:"razorpay_payment_id" validate:"required,max=64"`
	Signature      string `json:"razorpay_signature" validate:"required,max=256"`
}

type rateItemRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

type orderStatusRequest struct {
	Status entity.OrderStatus `json:"status" validate:"required,oneof=processing delivered cancelled"`
}

// OrderHandler serves checkout, payment verification and order history.
type OrderHandler struct {
	uc usecase.OrderUsecase
}

// NewOrderHandler is the constructor for OrderHandler, injected by Fx.
func NewOrderHandler(uc usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// CreateOrder prices the cart and opens a payment session.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	items := make([]usecase.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.OrderItemInput{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			Variant:   item.Variant,
		})
	}

	addr := req.ShippingAddress
	output, err := h.uc.CreateOrder(c.Request().Context(), userID, &usecase.CreateOrderInput{
		Items: items,
		ShippingAddress: entity.ShippingAddress{
			Name:       addr.Name,
			Email:      addr.Email,
			Phone:      addr.Phone,
			Street:     addr.Street,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
		},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toCheckoutResponse(output))
}

// VerifyPayment checks the gateway signature and marks the order paid.
func (h *OrderHandler) VerifyPayment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req verifyPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.uc.VerifyPayment(c.Request().Context(), userID, &usecase.VerifyPaymentInput{
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toOrderResponse(order))
}

// ListOrders returns the caller's orders, newest first.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orders, err := h.uc.ListOrders(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toOrderResponses(orders))
}

// GetOrder returns one of the caller's orders.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.uc.GetOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toOrderResponse(order))
}

// RateItem records a 1-5 rating on an item of a delivered order.
func (h *OrderHandler) RateItem(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req rateItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.uc.RateItem(c.Request().Context(), userID, orderID, &usecase.RateItemInput{
		ItemID: uuid.MustParse(req.ItemID),
		Rating: req.Rating,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toOrderResponse(order))
}

// UpdateOrderStatus moves an order into processing, delivered or cancelled.
func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req orderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.uc.UpdateOrderStatus(c.Request().Context(), orderID, req.Status)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toOrderResponse(order))
}

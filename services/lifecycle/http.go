package lifecycle

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	authapi "github.com/opengovern/og-util/pkg/api"
	"github.com/opengovern/og-util/pkg/httpserver"
	"go.uber.org/zap"

	"github.com/greenbasket/engine/pkg/utils"
	"github.com/greenbasket/engine/services/lifecycle/api"
	"github.com/greenbasket/engine/services/lifecycle/db"
	"github.com/greenbasket/engine/services/lifecycle/db/model"
	"github.com/greenbasket/engine/services/lifecycle/duedate"
)

type httpRoutes struct {
	logger *zap.Logger
	db     db.Database
}

func (r *httpRoutes) Register(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	v1.GET("/orders", httpserver.AuthorizeHandler(r.getOrders, authapi.ViewerRole))
	v1.GET("/orders/:id", httpserver.AuthorizeHandler(r.getOrder, authapi.ViewerRole))
	v1.POST("/orders/:id/cancel", httpserver.AuthorizeHandler(r.cancelOrder, authapi.EditorRole))

	v1.GET("/subscriptions", httpserver.AuthorizeHandler(r.getSubscriptions, authapi.ViewerRole))
	v1.POST("/subscriptions", httpserver.AuthorizeHandler(r.createSubscription, authapi.EditorRole))
	v1.GET("/subscriptions/:id/history", httpserver.AuthorizeHandler(r.getSubscriptionHistory, authapi.ViewerRole))
	v1.POST("/subscriptions/:id/cancel", httpserver.AuthorizeHandler(r.cancelSubscription, authapi.EditorRole))
	v1.POST("/subscriptions/:id/pause", httpserver.AuthorizeHandler(r.pauseSubscription, authapi.EditorRole))
	v1.POST("/subscriptions/:id/resume", httpserver.AuthorizeHandler(r.resumeSubscription, authapi.EditorRole))
}

func bindValidate(ctx echo.Context, i interface{}) error {
	if err := ctx.Bind(i); err != nil {
		return err
	}
	if err := ctx.Validate(i); err != nil {
		return err
	}
	return nil
}

func requestUserID(ctx echo.Context) (uuid.UUID, error) {
	return uuid.Parse(httpserver.GetUserID(ctx))
}

func toOrderResponse(order model.Order) api.Order {
	resp := api.Order{
		ID:          order.ID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		ShippingAddress: api.ShippingAddress{
			Street: order.ShipStreet,
			City:   order.ShipCity,
			Zip:    order.ShipZip,
		},
		SourceSubscriptionID: order.SourceSubscriptionID,
		DueDate:              order.DueDate,
		StatusUpdatedAt:      order.StatusUpdatedAt,
		Flagged:              order.Flagged,
		CreatedAt:            order.CreatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, api.OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return resp
}

func toSubscriptionResponse(sub model.Subscription) api.Subscription {
	resp := api.Subscription{
		ID:                sub.ID,
		Frequency:         string(sub.Frequency),
		Status:            string(sub.Status),
		DeliveryAddressID: sub.DeliveryAddressID,
		NextDeliveryDate:  sub.NextDeliveryDate,
		Flagged:           sub.Flagged,
		FlagReason:        sub.FlagReason,
		CreatedAt:         sub.CreatedAt,
	}
	for _, item := range sub.Items {
		resp.Items = append(resp.Items, api.SubscriptionItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return resp
}

func (r *httpRoutes) getOrders(ctx echo.Context) error {
	userID, err := requestUserID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, "invalid user")
	}
	offset, limit, err := utils.PageParams(ctx.QueryParam("page"), ctx.QueryParam("pageSize"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, err.Error())
	}

	orders, err := r.db.ListOrdersByUser(ctx.Request().Context(), userID, limit, offset)
	if err != nil {
		r.logger.Error("failed to list orders", zap.Error(err))
		return ctx.JSON(http.StatusInternalServerError, "failed to list orders")
	}

	resp := make([]api.Order, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (r *httpRoutes) getOrder(ctx echo.Context) error {
	userID, err := requestUserID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, "invalid user")
	}
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, "invalid order id")
	}

	order, err := r.db.GetOrder(ctx.Request().Context(), orderID)
	if err != nil {
		r.logger.Error("failed to get order", zap.Error(err))
		return ctx.JSON(http.StatusInternalServerError, "failed to get order")
	}
	if order == nil || order.UserID != userID {
		return ctx.JSON(http.StatusNotFound, "order not found")
	}
	return ctx.JSON(http.StatusOK, toOrderResponse(*order))
}

func (r *httpRoutes) cancelOrder(ctx echo.Context) error {
	userID, err := requestUserID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, "invalid user")
	}
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, "invalid order id")
	}

	order, err := r.db.GetOrder(ctx.Request().Context(), orderID)
	if err != nil {
		r.logger.Error("failed to get order", zap.Error(err))
		return ctx.JSON(http.StatusInternalServerError, "failed to cancel order")
	}
	if order == nil || order.UserID != userID {
		return ctx.JSON(http.StatusNotFound, "order not found")
	}

	ok, err := r.db.CancelOrder(ctx.Request().Context(), orderID, time.Now())
	if err != nil {
		r.logger.Error("failed to cancel order", zap.Error(err))
		return ctx.JSON(http.StatusInternalServerError, "failed to cancel order")
	}
	if !ok {
		return ctx.JSON(http.StatusConflict, "order already in a terminal state")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (r *httpRoutes) getSubscriptions(ctx echo.Context) error {
	userID, err := requestUserID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, "invalid user")
	}
	offset, limit, err := utils.PageParams(ctx.QueryParam("page"), ctx.QueryParam("pageSize"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, err.Error())
	}

	subs, err := r.db.ListSubscriptionsByUser(ctx.Request().Context(), userID, limit, offset)
	if err != nil {
		r.logger.Error("failed to list subscriptions", zap.Error(err))
		return ctx.JSON(http.StatusInternalServerError, "failed to list subscriptions")
	}

	resp := make([]api.Subscription, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, toSubscriptionResponse(sub))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (r *httpRoutes) createSubscription(ctx echo.Context) error {
	userID, err := requestUserID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, "invalid user")
	}
	var req api.CreateSubscriptionRequest
	if err := bindValidate(ctx, &req); err != nil {
		return ctx.JSON(http.StatusBadRequest, "invalid subscription request")
	}
	frequency := model.Frequency(req.Frequency)
	if !frequency.Valid() {
		return ctx.JSON(http.StatusBadRequest, "invalid frequency")
	}

	now := time.Now()
	sub := model.Subscription{
		ID:                uuid.New(),
		UserID:            userID,
		Frequency:         frequency,
		Status:            model.SubscriptionStatusActive,
		DeliveryAddressID: req.DeliveryAddressID,
		NextDeliveryDate:  duedate.Next(frequency, now),
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return ctx.JSON(http.StatusBadRequest, "item quantity must be positive")
		}
		sub.Items = append(sub.Items, model.SubscriptionItem{
			ID:             uuid.New(),
			SubscriptionID: sub.ID,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Quantity:       item.Quantity,
		})
	}

	if err := r.db.CreateSubscription(ctx.Request().Context(), &sub); err != nil {
		r.logger.Error("failed to create subscription", zap.Error(err))
		return ctx.JSON(http.StatusInternalServerError, "failed to create subscription")
	}
	return ctx.JSON(http.StatusCreated, toSubscriptionResponse(sub))
}

func (r *httpRoutes) getSubscriptionHistory(ctx echo.Context) error {
	userID, err := requestUserID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, "invalid user")
	}
	subID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, "invalid subscription id")
	}

	sub, err := r.db.GetSubscription(ctx.Request().Context(), subID)
	if err != nil {
		r.logger.Error("failed to get subscription", zap.Error(err))
		return ctx.JSON(http.StatusInternalServerError, "failed to get subscription history")
	}
	if sub == nil || sub.UserID != userID {
		return ctx.JSON(http.StatusNotFound, "subscription not found")
	}

	orders, err := r.db.ListOrdersBySubscription(ctx.Request().Context(), subID)
	if err != nil {
		r.logger.Error("failed to list subscription orders", zap.Error(err))
		return ctx.JSON(http.StatusInternalServerError, "failed to get subscription history")
	}

	resp := make([]api.Order, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	return ctx.JSON(http.StatusOK, resp)
}

// setSubscriptionStatus applies a user-initiated status flip with the usual
// ownership check. Transitions out of cancelled are rejected.
func (r *httpRoutes) setSubscriptionStatus(ctx echo.Context, from []model.SubscriptionStatus, to model.SubscriptionStatus) error {
	userID, err := requestUserID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, "invalid user")
	}
	subID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, "invalid subscription id")
	}

	sub, err := r.db.GetSubscription(ctx.Request().Context(), subID)
	if err != nil {
		r.logger.Error("failed to get subscription", zap.Error(err))
		return ctx.JSON(http.StatusInternalServerError, "failed to update subscription")
	}
	if sub == nil || sub.UserID != userID {
		return ctx.JSON(http.StatusNotFound, "subscription not found")
	}

	for _, f := range from {
		ok, err := r.db.UpdateSubscriptionStatus(ctx.Request().Context(), subID, f, to)
		if err != nil {
			r.logger.Error("failed to update subscription status", zap.Error(err))
			return ctx.JSON(http.StatusInternalServerError, "failed to update subscription")
		}
		if ok {
			return ctx.NoContent(http.StatusNoContent)
		}
	}
	return ctx.JSON(http.StatusConflict, "subscription is not in a valid state for this change")
}

func (r *httpRoutes) cancelSubscription(ctx echo.Context) error {
	return r.setSubscriptionStatus(ctx,
		[]model.SubscriptionStatus{model.SubscriptionStatusActive, model.SubscriptionStatusPaused},
		model.SubscriptionStatusCancelled)
}

func (r *httpRoutes) pauseSubscription(ctx echo.Context) error {
	return r.setSubscriptionStatus(ctx,
		[]model.SubscriptionStatus{model.SubscriptionStatusActive},
		model.SubscriptionStatusPaused)
}

func (r *httpRoutes) resumeSubscription(ctx echo.Context) error {
	return r.setSubscriptionStatus(ctx,
		[]model.SubscriptionStatus{model.SubscriptionStatusPaused},
		model.SubscriptionStatusActive)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/events"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/gateway"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrStaleCartItems    = errors.New("cart has stale items that must be refreshed before checkout")
	ErrOrderNotRefund    = errors.New("order payment is not in a refundable state")
	ErrRefundTooLarge    = errors.New("refund amount exceeds the remaining paid amount")
	ErrOrderNotCancel    = errors.New("order cannot be cancelled in its current state")
)

// OrderService turns carts into orders and drives the order lifecycle.
// Checkout re-validates stock, freezes commission per item, deducts
// inventory and closes the cart in a single transaction.
type OrderService struct {
	orders     repository.OrderRepository
	carts      *repository.CartsRepository
	products   *repository.ProductsRepository
	commission *CommissionService
	commRepo   repository.CommissionRepository
	gateways   *gateway.Registry
	publisher  *events.Publisher
	logger     *logrus.Entry
}

func NewOrderService(
	orders repository.OrderRepository,
	carts *repository.CartsRepository,
	products *repository.ProductsRepository,
	commission *CommissionService,
	commRepo repository.CommissionRepository,
	gateways *gateway.Registry,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *OrderService {
	return &OrderService{
		orders:     orders,
		carts:      carts,
		products:   products,
		commission: commission,
		commRepo:   commRepo,
		gateways:   gateways,
		publisher:  publisher,
		logger:     logger.WithField("service", "orders"),
	}
}

// generateOrderNumber builds the GC-YYYYMMDD-NNNN order number
func generateOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("GC-%s-%04d", day.Format("20060102"), seq)
}

// Checkout converts the customer's open cart into an order. Requests carrying
// an idempotency key that matches an existing order return that order
// unchanged.
func (s *OrderService) Checkout(ctx context.Context, customerID uuid.UUID, req *models.CheckoutRequest) (*models.Order, *gateway.PaymentIntentResult, error) {
	if req.IdempotencyKey != "" {
		existing, err := s.orders.GetOrderByIdempotencyKey(req.IdempotencyKey)
		if err == nil {
			s.logger.WithFields(logrus.Fields{
				"orderId":        existing.ID,
				"idempotencyKey": req.IdempotencyKey,
			}).Info("Returning existing order for idempotency key")
			return existing, nil, nil
		}
		if !repository.IsNotFound(err) {
			return nil, nil, err
		}
	}

	cart, err := s.carts.GetOpenCart(customerID)
	if err != nil {
		return nil, nil, err
	}
	if len(cart.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}
	for _, item := range cart.Items {
		if item.Stale {
			return nil, nil, ErrStaleCartItems
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	order := &models.Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		Status:        models.OrderStatusPlaced,
		PaymentStatus: models.PaymentStatusPending,
		Currency:      currency,
		Notes:         req.Notes,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		order.IdempotencyKey = &key
	}

	// On-hand quantities after the stock deduction, for the event publish
	remaining := make(map[uuid.UUID]int)

	err = s.orders.Transaction(func(tx *gorm.DB) error {
		subtotal := decimal.Zero
		commissionTotal := decimal.Zero

		for _, cartItem := range cart.Items {
			// Lock and re-check the product so concurrent checkouts cannot
			// oversell.
			var product models.Product
			if err := tx.Clauses(lockingClause()).
				Where("id = ?", cartItem.ProductID).
				First(&product).Error; err != nil {
				return fmt.Errorf("product %s unavailable: %w", cartItem.ProductID, err)
			}
			if product.Status != models.ProductStatusActive {
				return fmt.Errorf("%w: %s", ErrProductNotAvailable, product.Name)
			}
			if product.Quantity < cartItem.Quantity {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}

			unitPrice := decimal.NewFromFloat(cartItem.UnitPrice)
			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(cartItem.Quantity))).Round(2)
			subtotal = subtotal.Add(lineTotal)

			resolved, err := s.commission.Resolve(product.SupplierID, product.CategoryID)
			if err != nil {
				return err
			}
			lineTotalF, _ := lineTotal.Float64()
			commissionAmount := CalculateAmount(lineTotalF, resolved.Rate)
			commissionTotal = commissionTotal.Add(decimal.NewFromFloat(commissionAmount))

			orderItem := models.OrderItem{
				ID:               uuid.New(),
				OrderID:          order.ID,
				SupplierID:       product.SupplierID,
				ProductID:        product.ID,
				CategoryID:       product.CategoryID,
				ProductName:      cartItem.ProductName,
				SKU:              cartItem.SKU,
				Image:            cartItem.Image,
				Quantity:         cartItem.Quantity,
				UnitPrice:        cartItem.UnitPrice,
				TotalPrice:       lineTotalF,
				CommissionRate:   resolved.Rate,
				CommissionAmount: commissionAmount,
			}
			order.Items = append(order.Items, orderItem)

			record := &models.CommissionRecord{
				OrderID:          order.ID,
				OrderItemID:      orderItem.ID,
				SupplierID:       product.SupplierID,
				CategoryID:       product.CategoryID,
				SettingID:        resolved.SettingID,
				Scope:            resolved.Scope,
				Rate:             resolved.Rate,
				BaseAmount:       lineTotalF,
				CommissionAmount: commissionAmount,
				Status:           models.CommissionStatusPending,
			}
			if err := s.commRepo.CreateRecordTx(tx, record); err != nil {
				return fmt.Errorf("writing commission record: %w", err)
			}

			// Deduct stock
			newQty := product.Quantity - cartItem.Quantity
			invStatus := models.InventoryStatusInStock
			if newQty <= 0 {
				invStatus = models.InventoryStatusOutOfStock
			} else if product.LowStockThreshold != nil && newQty <= *product.LowStockThreshold {
				invStatus = models.InventoryStatusLowStock
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).
				Updates(map[string]interface{}{
					"quantity":         newQty,
					"inventory_status": invStatus,
					"updated_at":       time.Now(),
				}).Error; err != nil {
				return fmt.Errorf("deducting stock: %w", err)
			}
			remaining[product.ID] = newQty
		}

		shippingCost := decimal.NewFromFloat(req.Shipping.Cost)
		total := subtotal.Add(shippingCost).Round(2)

		order.Subtotal, _ = subtotal.Float64()
		order.ShippingCost, _ = shippingCost.Float64()
		order.Total, _ = total.Float64()
		order.CommissionTotal, _ = commissionTotal.Round(2).Float64()

		seq, err := s.orders.NextOrderSequence(time.Now())
		if err != nil {
			return err
		}
		order.OrderNumber = generateOrderNumber(time.Now(), seq)

		order.Customer = &models.OrderCustomer{
			OrderID:   order.ID,
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		}
		order.Shipping = &models.OrderShipping{
			OrderID:    order.ID,
			Method:     req.Shipping.Method,
			Carrier:    req.Shipping.Carrier,
			Cost:       req.Shipping.Cost,
			Street:     req.Shipping.Street,
			City:       req.Shipping.City,
			State:      req.Shipping.State,
			PostalCode: req.Shipping.PostalCode,
			Country:    req.Shipping.Country,
		}
		order.Payment = &models.OrderPayment{
			OrderID:  order.ID,
			Method:   req.Payment.Method,
			Gateway:  req.Payment.Gateway,
			Amount:   order.Total,
			Currency: currency,
		}
		order.Timeline = []models.OrderTimeline{{
			OrderID: order.ID,
			Status:  string(models.OrderStatusPlaced),
			Notes:   "Order placed",
		}}

		if err := s.orders.CreateOrderTx(tx, order); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		// Close the cart
		if err := tx.Model(&models.Cart{}).
			Where("id = ?", cart.ID).
			Updates(map[string]interface{}{
				"status":     models.CartStatusCheckedOut,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("closing cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// Initiate the payment after the order is durable. Payment failures leave
	// the order PLACED/PENDING for retry.
	var intent *gateway.PaymentIntentResult
	gw, err := s.gateways.Get(req.Payment.Gateway)
	if err != nil {
		s.logger.WithError(err).Warn("Checkout with unconfigured gateway")
	} else {
		intent, err = gw.CreatePayment(ctx, &gateway.CreatePaymentRequest{
			OrderID:        order.ID.String(),
			OrderNumber:    order.OrderNumber,
			Amount:         order.Total,
			Currency:       order.Currency,
			CustomerEmail:  req.Customer.Email,
			CustomerName:   fmt.Sprintf("%s %s", req.Customer.FirstName, req.Customer.LastName),
			CustomerPhone:  req.Customer.Phone,
			Description:    fmt.Sprintf("Order %s", order.OrderNumber),
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			s.logger.WithError(err).WithField("orderId", order.ID).Error("Payment initiation failed")
		} else {
			if err := s.orders.UpdateOrder(order.ID, map[string]interface{}{
				"payment_intent_id": intent.PaymentIntentID,
			}); err != nil {
				s.logger.WithError(err).Warn("Failed to store payment intent reference")
			}
			order.PaymentIntentID = &intent.PaymentIntentID
		}
	}

	if s.publisher != nil {
		s.publisher.PublishOrderPlaced(events.OrderEvent{
			OrderID:     order.ID.String(),
			OrderNumber: order.OrderNumber,
			CustomerID:  customerID.String(),
			Total:       order.Total,
		})
		for _, item := range order.Items {
			s.publisher.PublishProductStockChanged(item.ProductID.String(), remaining[item.ProductID])
		}
	}

	s.logger.WithFields(logrus.Fields{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"total":       order.Total,
	}).Info("Order placed")

	return order, intent, nil
}

// GetOrder loads an order aggregate
func (s *OrderService) GetOrder(orderID uuid.UUID) (*models.Order, error) {
	return s.orders.GetOrderByID(orderID)
}

// GetOrderByNumber loads an order by its public number
func (s *OrderService) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	return s.orders.GetOrderByNumber(orderNumber)
}

// GetOrders lists orders with the given filters
func (s *OrderService) GetOrders(filters repository.OrderFilters, page, limit int) ([]models.Order, int64, error) {
	return s.orders.GetOrders(filters, page, limit)
}

// UpdateStatus applies a validated order status transition. Cancelling
// restocks items and reverses pending commission.
func (s *OrderService) UpdateStatus(orderID uuid.UUID, newStatus models.OrderStatus, notes, actor string) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	if err := models.ValidateOrderStatusTransition(order.Status, newStatus); err != nil {
		return nil, err
	}

	if newStatus == models.OrderStatusCancelled {
		return s.cancel(order, notes, actor)
	}

	updates := map[string]interface{}{"status": newStatus}
	if err := s.orders.UpdateOrder(orderID, updates); err != nil {
		return nil, err
	}

	now := time.Now()
	switch newStatus {
	case models.OrderStatusShipped:
		if err := s.orders.UpdateShipping(orderID, map[string]interface{}{"shipped_at": now}); err != nil {
			s.logger.WithError(err).Warn("Failed to stamp shipped_at")
		}
	case models.OrderStatusDelivered:
		if err := s.orders.UpdateShipping(orderID, map[string]interface{}{"delivered_at": now}); err != nil {
			s.logger.WithError(err).Warn("Failed to stamp delivered_at")
		}
	case models.OrderStatusCompleted:
		// Completing the order settles its commission
		if err := s.commRepo.UpdateRecordStatusByOrder(orderID, models.CommissionStatusSettled); err != nil {
			s.logger.WithError(err).Warn("Failed to settle commission records")
		}
	}

	if err := s.orders.AddTimelineEntry(&models.OrderTimeline{
		OrderID:   orderID,
		Status:    string(newStatus),
		Notes:     notes,
		CreatedBy: &actor,
	}); err != nil {
		s.logger.WithError(err).Warn("Failed to add timeline entry")
	}

	if s.publisher != nil {
		s.publisher.PublishOrderStatusChanged(events.OrderEvent{
			OrderID:     orderID.String(),
			OrderNumber: order.OrderNumber,
			CustomerID:  order.CustomerID.String(),
			Status:      string(newStatus),
		})
	}

	return s.orders.GetOrderByID(orderID)
}

// cancel restocks items, reverses commission and marks the order cancelled
func (s *OrderService) cancel(order *models.Order, notes, actor string) (*models.Order, error) {
	err := s.orders.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := restockTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":     models.OrderStatusCancelled,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.commRepo.UpdateRecordStatusByOrder(order.ID, models.CommissionStatusReversed); err != nil {
		s.logger.WithError(err).Warn("Failed to reverse commission records")
	}

	if err := s.orders.AddTimelineEntry(&models.OrderTimeline{
		OrderID:   order.ID,
		Status:    string(models.OrderStatusCancelled),
		Notes:     notes,
		CreatedBy: &actor,
	}); err != nil {
		s.logger.WithError(err).Warn("Failed to add timeline entry")
	}

	if s.publisher != nil {
		s.publisher.PublishOrderStatusChanged(events.OrderEvent{
			OrderID:     order.ID.String(),
			OrderNumber: order.OrderNumber,
			CustomerID:  order.CustomerID.String(),
			Status:      string(models.OrderStatusCancelled),
		})
	}

	s.logger.WithField("orderId", order.ID).Info("Order cancelled")
	return s.orders.GetOrderByID(order.ID)
}

// restockTx returns an item's quantity to inventory inside a transaction
func restockTx(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	var product models.Product
	if err := tx.Clauses(lockingClause()).Where("id = ?", productID).First(&product).Error; err != nil {
		// Product may have been removed since; restocking is best effort
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	newQty := product.Quantity + quantity
	invStatus := models.InventoryStatusInStock
	if product.LowStockThreshold != nil && newQty <= *product.LowStockThreshold {
		invStatus = models.InventoryStatusLowStock
	}
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"quantity":         newQty,
			"inventory_status": invStatus,
			"updated_at":       time.Now(),
		}).Error
}

// MarkPaid records a successful payment, typically from a gateway webhook
func (s *OrderService) MarkPaid(orderID uuid.UUID, transactionID string) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	if err := models.ValidatePaymentStatusTransition(order.PaymentStatus, models.PaymentStatusPaid); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.orders.UpdateOrder(orderID, map[string]interface{}{
		"payment_status": models.PaymentStatusPaid,
	}); err != nil {
		return nil, err
	}
	if err := s.orders.UpdatePayment(orderID, map[string]interface{}{
		"transaction_id": transactionID,
		"paid_at":        now,
	}); err != nil {
		return nil, err
	}

	// Payment confirms the order
	if order.Status == models.OrderStatusPlaced {
		return s.UpdateStatus(orderID, models.OrderStatusConfirmed, "Payment received", "system")
	}
	return s.orders.GetOrderByID(orderID)
}

// MarkPaymentFailed records a failed payment attempt
func (s *OrderService) MarkPaymentFailed(orderID uuid.UUID, reason string) error {
	order, err := s.orders.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	if err := models.ValidatePaymentStatusTransition(order.PaymentStatus, models.PaymentStatusFailed); err != nil {
		return err
	}
	if err := s.orders.UpdateOrder(orderID, map[string]interface{}{
		"payment_status": models.PaymentStatusFailed,
	}); err != nil {
		return err
	}
	return s.orders.AddTimelineEntry(&models.OrderTimeline{
		OrderID: orderID,
		Status:  "PAYMENT_FAILED",
		Notes:   reason,
	})
}

// Refund refunds an order through its gateway. A full refund also cancels
// undelivered orders, restocks items and reverses commission.
func (s *OrderService) Refund(ctx context.Context, orderID uuid.UUID, req *models.RefundOrderRequest, actor string) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != models.PaymentStatusPaid && order.PaymentStatus != models.PaymentStatusPartiallyRefunded {
		return nil, ErrOrderNotRefund
	}
	if order.Payment == nil || order.PaymentIntentID == nil {
		return nil, ErrOrderNotRefund
	}

	remaining := decimal.NewFromFloat(order.Total).Sub(decimal.NewFromFloat(order.Payment.RefundAmount))
	amount := remaining
	if req.Amount != nil {
		amount = decimal.NewFromFloat(*req.Amount)
		if amount.GreaterThan(remaining) {
			return nil, ErrRefundTooLarge
		}
	}
	amountF, _ := amount.Round(2).Float64()

	gw, err := s.gateways.Get(order.Payment.Gateway)
	if err != nil {
		return nil, err
	}
	result, err := gw.CreateRefund(ctx, &gateway.RefundRequest{
		PaymentIntentID: *order.PaymentIntentID,
		OrderID:         order.ID.String(),
		Amount:          amountF,
		Currency:        order.Currency,
		Reason:          req.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway refund failed: %w", err)
	}

	fullRefund := amount.Equal(remaining)
	newPaymentStatus := models.PaymentStatusPartiallyRefunded
	if fullRefund {
		newPaymentStatus = models.PaymentStatusRefunded
	}

	now := time.Now()
	newRefundTotal, _ := decimal.NewFromFloat(order.Payment.RefundAmount).Add(amount).Round(2).Float64()
	if err := s.orders.UpdatePayment(orderID, map[string]interface{}{
		"refund_amount": newRefundTotal,
		"refunded_at":   now,
	}); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateOrder(orderID, map[string]interface{}{
		"payment_status": newPaymentStatus,
	}); err != nil {
		return nil, err
	}

	if err := s.orders.AddTimelineEntry(&models.OrderTimeline{
		OrderID:   orderID,
		Status:    string(newPaymentStatus),
		Notes:     fmt.Sprintf("Refunded %.2f %s (%s): %s", amountF, order.Currency, result.RefundID, req.Reason),
		CreatedBy: &actor,
	}); err != nil {
		s.logger.WithError(err).Warn("Failed to add timeline entry")
	}

	// Full refunds on undelivered orders also cancel and restock
	if fullRefund && models.CanTransitionOrderStatus(order.Status, models.OrderStatusCancelled) {
		if _, err := s.cancel(order, "Cancelled after full refund", actor); err != nil {
			s.logger.WithError(err).Warn("Failed to cancel order after full refund")
		}
	} else if fullRefund {
		if err := s.commRepo.UpdateRecordStatusByOrder(orderID, models.CommissionStatusReversed); err != nil {
			s.logger.WithError(err).Warn("Failed to reverse commission records")
		}
	}

	if s.publisher != nil {
		s.publisher.PublishOrderRefunded(events.OrderEvent{
			OrderID:     orderID.String(),
			OrderNumber: order.OrderNumber,
			CustomerID:  order.CustomerID.String(),
			Total:       amountF,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"orderId": orderID,
		"amount":  amountF,
		"full":    fullRefund,
	}).Info("Order refunded")

	return s.orders.GetOrderByID(orderID)
}

// HandleWebhook applies a verified gateway webhook event to its order
func (s *OrderService) HandleWebhook(event *gateway.WebhookEvent) error {
	var order *models.Order
	var err error

	if event.OrderID != "" {
		if id, parseErr := uuid.Parse(event.OrderID); parseErr == nil {
			order, err = s.orders.GetOrderByID(id)
		}
	}
	if order == nil && event.PaymentIntentID != "" {
		var orders []models.Order
		err = s.orders.DB().
			Where("payment_intent_id = ?", event.PaymentIntentID).
			Limit(1).Find(&orders).Error
		if err == nil && len(orders) > 0 {
			order, err = s.orders.GetOrderByID(orders[0].ID)
		}
	}
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("no order found for webhook event %s", event.EventID)
	}

	switch event.EventType {
	case gateway.WebhookPaymentSucceeded:
		_, err = s.MarkPaid(order.ID, event.PaymentIntentID)
	case gateway.WebhookPaymentFailed:
		err = s.MarkPaymentFailed(order.ID, event.FailureMessage)
	case gateway.WebhookRefundSucceeded:
		// Refunds initiated through the API are already recorded; gateway-side
		// refunds only get a timeline note.
		err = s.orders.AddTimelineEntry(&models.OrderTimeline{
			OrderID: order.ID,
			Status:  "REFUND_CONFIRMED",
			Notes:   fmt.Sprintf("Gateway confirmed refund of %.2f %s", event.Amount, event.Currency),
		})
	}
	return err
}

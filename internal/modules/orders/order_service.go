package orders

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"parts-and-service/internal/events"
	"parts-and-service/internal/models"
	"parts-and-service/internal/status"
)

// PaymentServiceInterface defines the contract for a payment processing service.
type PaymentServiceInterface interface {
	ProcessPayment(ctx context.Context, userID string, amount float64, paymentMethodID string) (string, error)
}

// TrackingInvalidator drops cached public tracking views after a write.
type TrackingInvalidator interface {
	Invalidate(ctx context.Context, codes ...string) error
}

// EmailSender delivers transactional mail. Failures are logged, never
// surfaced to the caller.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.Order, error)
	GetOrderDetails(ctx context.Context, orderID, userID, role string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error)
	ListAllOrders(ctx context.Context, page, limit int) ([]*models.Order, int, error)
	CancelOrder(ctx context.Context, orderID, userID string) error
	ConfirmAndPay(ctx context.Context, userID, orderID string, req models.PaymentRequest) (*models.Order, error)
	AdminUpdateOrder(ctx context.Context, adminID, orderID string, req models.AdminUpdateOrderRequest) (*models.Order, error)
}

// Service implements the order service logic.
type Service struct {
	repo           RepositoryInterface
	paymentService PaymentServiceInterface
	publisher      events.Publisher
	trackingCache  TrackingInvalidator
	email          EmailSender
}

// NewService creates a new order service.
func NewService(repo RepositoryInterface, paymentService PaymentServiceInterface, publisher events.Publisher, trackingCache TrackingInvalidator, email EmailSender) *Service {
	return &Service{
		repo:           repo,
		paymentService: paymentService,
		publisher:      publisher,
		trackingCache:  trackingCache,
		email:          email,
	}
}

// Checkout creates an order from the buyer's cart. Stock validation, stock
// decrement and the order insert happen in one repository transaction, so a
// failed line leaves nothing behind.
func (s *Service) Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.Order, error) {
	trackingID := uuid.NewString()

	order, err := s.repo.CreateWithItems(ctx, userID, trackingID, req)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishStatusChange(events.TopicOrderStatusChanged, events.StatusChanged{
		EntityID:  order.ID,
		Kind:      "ORDER",
		To:        order.Status,
		ChangedBy: userID,
	})
	return order, nil
}

// GetOrderDetails retrieves a single order's details.
func (s *Service) GetOrderDetails(ctx context.Context, orderID, userID, role string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Return NotFound rather than Forbidden to avoid leaking order ids.
	if order.UserID != userID && role != models.RoleAdmin {
		return nil, models.ErrNotFound
	}
	return order, nil
}

// ListUserOrders retrieves all orders for a specific user.
func (s *Service) ListUserOrders(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUserID(ctx, userID, page, limit)
}

// ListAllOrders lists all orders in the system (admin).
func (s *Service) ListAllOrders(ctx context.Context, page, limit int) ([]*models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.repo.ListAll(ctx, page, limit)
}

// CancelOrder cancels an order for a user and restores the reserved stock.
func (s *Service) CancelOrder(ctx context.Context, orderID, userID string) error {
	order, err := s.GetOrderDetails(ctx, orderID, userID, models.RoleBuyer)
	if err != nil {
		return err
	}

	if !status.CanTransitionOrder(order.Status, status.OrderCancelled) {
		return models.ErrOrderCannotBeCancelled
	}

	if err := s.repo.CancelAndRestock(ctx, order.ID, order.Status); err != nil {
		return err
	}

	s.afterStatusChange(ctx, order, order.Status, status.OrderCancelled, userID)
	return nil
}

// ConfirmAndPay charges the order total and moves it to PROCESSING.
func (s *Service) ConfirmAndPay(ctx context.Context, userID, orderID string, req models.PaymentRequest) (*models.Order, error) {
	order, err := s.GetOrderDetails(ctx, orderID, userID, models.RoleBuyer)
	if err != nil {
		return nil, err
	}

	if !status.CanTransitionOrder(order.Status, status.OrderProcessing) {
		return nil, models.ErrOrderCannotBePaid
	}

	_, err = s.paymentService.ProcessPayment(ctx, userID, order.Total, req.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("payment processing failed: %w", err)
	}

	updated, err := s.repo.UpdateStatus(ctx, order.ID, order.Status, status.OrderProcessing)
	if err != nil {
		// The payment went through but the status write failed. Flag loudly.
		log.Printf("CRITICAL: payment processed for order %s but status update failed: %v", order.ID, err)
		return nil, fmt.Errorf("failed to update order status after successful payment: %w", err)
	}

	s.afterStatusChange(ctx, updated, order.Status, updated.Status, userID)
	return updated, nil
}

// AdminUpdateOrder applies an admin status override. The override still has
// to be a legal transition; admins cannot resurrect a cancelled order.
func (s *Service) AdminUpdateOrder(ctx context.Context, adminID, orderID string, req models.AdminUpdateOrderRequest) (*models.Order, error) {
	if req.Status == nil {
		return s.repo.FindByID(ctx, orderID)
	}
	if !status.ValidOrderStatus(*req.Status) {
		return nil, models.ErrInvalidTransition
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !status.CanTransitionOrder(order.Status, *req.Status) {
		return nil, models.ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, order.ID, order.Status, *req.Status)
	if err != nil {
		return nil, err
	}

	s.afterStatusChange(ctx, updated, order.Status, updated.Status, adminID)

	if updated.Status == status.OrderShipped {
		s.notifyShipped(ctx, updated)
	}
	return updated, nil
}

func (s *Service) afterStatusChange(ctx context.Context, order *models.Order, from, to, actor string) {
	s.publisher.PublishStatusChange(events.TopicOrderStatusChanged, events.StatusChanged{
		EntityID:  order.ID,
		Kind:      "ORDER",
		From:      from,
		To:        to,
		ChangedBy: actor,
	})
	// The order is publicly trackable by both its id and its tracking id.
	if err := s.trackingCache.Invalidate(ctx, order.ID, order.TrackingID); err != nil {
		log.Printf("orders: tracking cache invalidate failed for %s: %v", order.ID, err)
	}
}

func (s *Service) notifyShipped(ctx context.Context, order *models.Order) {
	email, err := s.repo.OwnerEmail(ctx, order.ID)
	if err != nil {
		log.Printf("orders: owner email lookup failed for %s: %v", order.ID, err)
		return
	}
	body := fmt.Sprintf("Your order is on its way. Track it with code %s.", order.TrackingID)
	if err := s.email.Send(ctx, email, "Your order has shipped", body); err != nil {
		log.Printf("orders: shipped mail failed for %s: %v", order.ID, err)
	}
}

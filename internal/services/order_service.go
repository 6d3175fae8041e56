package services

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
)

// --- Order DTOs ---
type OrderItemRequest struct {
	ProductID int64   `json:"product_id" binding:"required,gt=0"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	Notes     *string `json:"notes"`
}

type CreateOrderRequest struct {
	SessionID    *int64             `json:"session_id"`
	MemberID     *int64             `json:"member_id"`
	CustomerName *string            `json:"customer_name" binding:"omitempty,max=100"`
	PromoCode    *string            `json:"promo_code"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type PayOrderRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(req CreateOrderRequest, userID int64) (*models.Order, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	PayOrder(orderID int64, req PayOrderRequest, userID int64) (*models.Order, error)
	CancelOrder(orderID int64, userID int64) (*models.Order, error)
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	sessionRepo repositories.SessionRepository
	memberRepo  repositories.MemberRepository
	promoRepo   repositories.PromoRepository
	settingRepo repositories.SettingRepository
	members     memberLedger
	stock       stockLedger
	db          *sql.DB
	loc         *time.Location
	now         Clock
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	pr repositories.ProductRepository,
	sr repositories.SessionRepository,
	mr repositories.MemberRepository,
	promoRepo repositories.PromoRepository,
	settingRepo repositories.SettingRepository,
	db *sql.DB,
	loc *time.Location,
	clock Clock,
) OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &orderService{
		orderRepo:   or,
		productRepo: pr,
		sessionRepo: sr,
		memberRepo:  mr,
		promoRepo:   promoRepo,
		settingRepo: settingRepo,
		members:     memberLedger{memberRepo: mr},
		stock:       stockLedger{productRepo: pr},
		db:          db,
		loc:         loc,
		now:         defaultClock(clock),
	}
}

// CreateOrder snapshots product name and price, decrements stock with a SALE
// adjustment per product and applies an optional promo, all in one transaction.
func (s *orderService) CreateOrder(req CreateOrderRequest, userID int64) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, NewValidationError("items", "at least one item is required")
	}
	quantities := make(map[int64]int, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
		quantities[item.ProductID] += item.Quantity
	}
	// Lock products in id order so concurrent orders cannot deadlock.
	productIDs := make([]int64, 0, len(quantities))
	for id := range quantities {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	order := &models.Order{
		MemberID:     req.MemberID,
		CustomerName: trimmedOrNil(req.CustomerName),
		Status:       models.OrderStatusPending,
		CreatedBy:    int64Ptr(userID),
	}

	if req.SessionID != nil {
		session, err := s.sessionRepo.GetSessionByID(*req.SessionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrSessionNotFound
			}
			return nil, fmt.Errorf("failed to get session %d: %w", *req.SessionID, err)
		}
		if session.Status == models.SessionStatusClosed {
			return nil, ErrSessionNotRunning
		}
		order.SessionID = req.SessionID
		if order.MemberID == nil {
			order.MemberID = session.MemberID
		}
		if order.CustomerName == nil {
			order.CustomerName = session.CustomerName
		}
	}

	err := withTx(s.db, func(tx *sql.Tx) error {
		if order.MemberID != nil {
			member, err := s.memberRepo.GetMemberByID(tx, *order.MemberID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return ErrMemberNotFound
				}
				return fmt.Errorf("failed to get member %d: %w", *order.MemberID, err)
			}
			if member.Status != models.MemberStatusActive {
				return ErrMemberInactive
			}
		}

		products := make(map[int64]*models.Product, len(productIDs))
		for _, id := range productIDs {
			product, err := s.productRepo.GetProductForUpdate(tx, id)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("%w: id %d", ErrProductNotFound, id)
				}
				return fmt.Errorf("failed to get product %d: %w", id, err)
			}
			if !product.IsActive {
				return fmt.Errorf("%w: %s", ErrProductInactive, product.Name)
			}
			if product.StockQty < quantities[id] {
				return fmt.Errorf("%w: %s (requested %d, available %d)",
					ErrInsufficientStock, product.Name, quantities[id], product.StockQty)
			}
			products[id] = product
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, itemReq := range req.Items {
			product := products[itemReq.ProductID]
			line := product.Price * int64(itemReq.Quantity)
			order.Subtotal += line
			items = append(items, models.OrderItem{
				ProductID:   int64Ptr(product.ID),
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    itemReq.Quantity,
				LineTotal:   line,
				Notes:       trimmedOrNil(itemReq.Notes),
			})
		}

		if req.PromoCode != nil && *req.PromoCode != "" {
			promo, err := lookupPromo(s.promoRepo, tx, *req.PromoCode)
			if err != nil {
				return err
			}
			discount, err := applyPromo(promo, order.Subtotal, s.now())
			if err != nil {
				return err
			}
			order.PromoID = int64Ptr(promo.ID)
			order.Discount = discount
		}
		order.Total = order.Subtotal - order.Discount

		if err := s.orderRepo.CreateOrder(tx, order); err != nil {
			return fmt.Errorf("failed to create order record: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := s.orderRepo.CreateOrderItem(tx, &items[i]); err != nil {
				return fmt.Errorf("failed to create order item (product %d): %w", *items[i].ProductID, err)
			}
		}
		order.Items = items

		reason := fmt.Sprintf("Order #%d", order.ID)
		for _, id := range productIDs {
			if _, err := s.stock.post(tx, stockEntry{
				ProductID: id,
				Type:      models.StockSale,
				Delta:     -quantities[id],
				Reason:    &reason,
				UserID:    int64Ptr(userID),
				OrderID:   int64Ptr(order.ID),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(nil, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}
	items, err := s.orderRepo.GetOrderItemsByOrderID(nil, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for order %d: %w", orderID, err)
	}
	order.Items = items
	return order, nil
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.Status != nil && *filters.Status != "" {
		switch models.OrderStatus(*filters.Status) {
		case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusCancelled:
		default:
			return nil, 0, NewValidationError("status", "must be PENDING, PAID or CANCELLED")
		}
	}
	if filters.Date != nil && *filters.Date != "" {
		if _, err := time.Parse(dateLayout, *filters.Date); err != nil {
			return nil, 0, NewValidationError("date", "must be YYYY-MM-DD")
		}
	}
	orders, total, err := s.orderRepo.GetOrders(filters, s.loc)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// PayOrder settles a PENDING order. Wallet payments debit the member's
// wallet; any member payment earns total / points_earn_unit points.
func (s *orderService) PayOrder(orderID int64, req PayOrderRequest, userID int64) (*models.Order, error) {
	method, ok := models.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return nil, NewValidationError("payment_method", "must be CASH, WALLET, CARD or QRIS")
	}
	now := s.now()

	var order *models.Order
	err := withTx(s.db, func(tx *sql.Tx) error {
		var err error
		order, err = s.orderRepo.GetOrderForUpdate(tx, orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order %d: %w", orderID, err)
		}
		if order.Status != models.OrderStatusPending {
			return ErrOrderNotPending
		}

		var member *models.Member
		if order.MemberID != nil {
			member, err = s.memberRepo.GetMemberForUpdate(tx, *order.MemberID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("failed to lock member %d: %w", *order.MemberID, err)
			}
		}

		if method == models.PaymentWallet {
			if member == nil {
				return NewValidationError("payment_method", "wallet payment requires a member on the order")
			}
			if member.Status != models.MemberStatusActive {
				return ErrMemberInactive
			}
			if member.WalletBalance < order.Total {
				return ErrInsufficientBalance
			}
			desc := fmt.Sprintf("Payment for order #%d", order.ID)
			if _, err := s.members.postWallet(tx, walletEntry{
				MemberID:    member.ID,
				Type:        models.WalletTxPayment,
				Amount:      -order.Total,
				OrderID:     int64Ptr(order.ID),
				Description: &desc,
				CreatedBy:   int64Ptr(userID),
			}); err != nil {
				return err
			}
		}

		if err := s.orderRepo.MarkOrderPaid(tx, order.ID, method, now); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotPending
			}
			return fmt.Errorf("failed to mark order %d paid: %w", order.ID, err)
		}
		order.Status = models.OrderStatusPaid
		order.PaymentMethod = &method
		order.PaidAt = &now

		if member != nil && member.Status == models.MemberStatusActive && order.Total > 0 {
			unit, err := pointsEarnUnit(s.settingRepo, tx)
			if err != nil {
				return err
			}
			if points := order.Total / unit; points > 0 {
				desc := fmt.Sprintf("Earned on order #%d", order.ID)
				if _, err := s.members.postPoints(tx, pointEntry{
					MemberID:    member.ID,
					Type:        models.PointTxEarn,
					Points:      points,
					OrderID:     int64Ptr(order.ID),
					Description: &desc,
					CreatedBy:   int64Ptr(userID),
				}); err != nil {
					return err
				}
			}
		}

		order.Items, err = s.orderRepo.GetOrderItemsByOrderID(tx, order.ID)
		if err != nil {
			return fmt.Errorf("failed to get items for order %d: %w", order.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder voids a PENDING order and puts its products back on the shelf.
func (s *orderService) CancelOrder(orderID int64, userID int64) (*models.Order, error) {
	var order *models.Order
	err := withTx(s.db, func(tx *sql.Tx) error {
		var err error
		order, err = s.orderRepo.GetOrderForUpdate(tx, orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order %d: %w", orderID, err)
		}
		if order.Status != models.OrderStatusPending {
			return ErrOrderNotPending
		}
		items, err := s.orderRepo.GetOrderItemsByOrderID(tx, order.ID)
		if err != nil {
			return fmt.Errorf("failed to get items for order %d: %w", order.ID, err)
		}
		if err := s.orderRepo.UpdateOrderStatus(tx, order.ID, models.OrderStatusPending, models.OrderStatusCancelled); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotPending
			}
			return fmt.Errorf("failed to cancel order %d: %w", order.ID, err)
		}

		returned := make(map[int64]int)
		var ids []int64
		for _, item := range items {
			if item.ProductID == nil {
				continue
			}
			if _, seen := returned[*item.ProductID]; !seen {
				ids = append(ids, *item.ProductID)
			}
			returned[*item.ProductID] += item.Quantity
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		reason := fmt.Sprintf("Order #%d cancelled", order.ID)
		for _, id := range ids {
			if _, err := s.stock.post(tx, stockEntry{
				ProductID: id,
				Type:      models.StockReturn,
				Delta:     returned[id],
				Reason:    &reason,
				UserID:    int64Ptr(userID),
				OrderID:   int64Ptr(order.ID),
			}); err != nil {
				return err
			}
		}

		order.Status = models.OrderStatusCancelled
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

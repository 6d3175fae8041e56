package services

import (
	"errors"
	"fmt"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
)

// memberLedger is the only path that moves wallet or points balances: each
// call mutates the denormalised balance and appends the ledger row on the same executor.
type memberLedger struct {
	memberRepo repositories.MemberRepository
}

type walletEntry struct {
	MemberID      int64
	Type          models.WalletTxType
	Amount        int64 // signed
	PaymentMethod *string
	OrderID       *int64
	Description   *string
	CreatedBy     *int64
}

func (l memberLedger) postWallet(exec repositories.SQLExecutor, e walletEntry) (*models.WalletTransaction, error) {
	balance, err := l.memberRepo.AddWalletBalance(exec, e.MemberID, e.Amount)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrCheckViolation) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}
	tx := &models.WalletTransaction{
		MemberID:      e.MemberID,
		Type:          e.Type,
		Amount:        e.Amount,
		BalanceAfter:  balance,
		PaymentMethod: e.PaymentMethod,
		OrderID:       e.OrderID,
		Description:   e.Description,
		CreatedBy:     e.CreatedBy,
	}
	if err := l.memberRepo.CreateWalletTransaction(exec, tx); err != nil {
		return nil, fmt.Errorf("failed to record wallet transaction: %w", err)
	}
	return tx, nil
}

type pointEntry struct {
	MemberID    int64
	Type        models.PointTxType
	Points      int64 // signed
	OrderID     *int64
	Description *string
	CreatedBy   *int64
}

func (l memberLedger) postPoints(exec repositories.SQLExecutor, e pointEntry) (*models.PointTransaction, error) {
	balance, err := l.memberRepo.AddPointsBalance(exec, e.MemberID, e.Points)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrCheckViolation) {
			return nil, ErrInsufficientPoints
		}
		return nil, fmt.Errorf("failed to update points balance: %w", err)
	}
	tx := &models.PointTransaction{
		MemberID:     e.MemberID,
		Type:         e.Type,
		Points:       e.Points,
		BalanceAfter: balance,
		OrderID:      e.OrderID,
		Description:  e.Description,
		CreatedBy:    e.CreatedBy,
	}
	if err := l.memberRepo.CreatePointTransaction(exec, tx); err != nil {
		return nil, fmt.Errorf("failed to record point transaction: %w", err)
	}
	return tx, nil
}

// stockLedger keeps products.stock_qty and stock_adjustments in step.
type stockLedger struct {
	productRepo repositories.ProductRepository
}

type stockEntry struct {
	ProductID int64
	Type      models.StockAdjustmentType
	Delta     int
	Reason    *string
	UserID    *int64
	OrderID   *int64
}

func (l stockLedger) post(exec repositories.SQLExecutor, e stockEntry) (*models.StockAdjustment, error) {
	newQty, err := l.productRepo.AddStock(exec, e.ProductID, e.Delta)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrCheckViolation) {
			return nil, fmt.Errorf("%w (product %d)", ErrInsufficientStock, e.ProductID)
		}
		return nil, fmt.Errorf("failed to update stock for product %d: %w", e.ProductID, err)
	}
	adj := &models.StockAdjustment{
		ProductID:      e.ProductID,
		Type:           e.Type,
		QuantityChange: e.Delta,
		PreviousQty:    newQty - e.Delta,
		NewQty:         newQty,
		Reason:         e.Reason,
		UserID:         e.UserID,
		OrderID:        e.OrderID,
	}
	if err := l.productRepo.CreateStockAdjustment(exec, adj); err != nil {
		return nil, fmt.Errorf("failed to record stock adjustment for product %d: %w", e.ProductID, err)
	}
	return adj, nil
}

package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"

	"github.com/skip2/go-qrcode"
)

// MinTopUpAmount is the smallest wallet top-up accepted.
const MinTopUpAmount int64 = 1000

const memberQRSize = 256

// --- Member DTOs ---
type CreateMemberRequest struct {
	Name      string             `json:"name" binding:"required,max=128"`
	Phone     string             `json:"phone" binding:"required,max=32"`
	Email     *string            `json:"email" binding:"omitempty,email"`
	Tier      *models.MemberTier `json:"tier"`
	ExpiresAt *time.Time         `json:"expires_at"`
}

type UpdateMemberRequest struct {
	Name      *string              `json:"name" binding:"omitempty,max=128"`
	Phone     *string              `json:"phone" binding:"omitempty,max=32"`
	Email     *string              `json:"email" binding:"omitempty,email"`
	Tier      *models.MemberTier   `json:"tier"`
	Status    *models.MemberStatus `json:"status"`
	ExpiresAt *time.Time           `json:"expires_at"`
}

type TopUpRequest struct {
	Amount        int64   `json:"amount" binding:"required"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	Description   *string `json:"description"`
}

type RedeemPointsRequest struct {
	Points      int64   `json:"points" binding:"required"`
	Description *string `json:"description"`
}

// WalletResult is the member after a balance change plus the ledger row that caused it.
type WalletResult struct {
	Member      *models.Member            `json:"member"`
	Transaction *models.WalletTransaction `json:"transaction"`
}

type PointsResult struct {
	Member      *models.Member           `json:"member"`
	Transaction *models.PointTransaction `json:"transaction"`
}

// --- MemberService Interface ---
type MemberService interface {
	CreateMember(req CreateMemberRequest) (*models.Member, error)
	GetMemberByID(memberID int64) (*models.Member, error)
	GetMembers(page, pageSize int, searchTerm *string) ([]models.Member, int, error)
	UpdateMember(memberID int64, req UpdateMemberRequest) (*models.Member, error)
	DeleteMember(memberID int64) error

	TopUp(memberID int64, req TopUpRequest, userID int64) (*WalletResult, error)
	RedeemPoints(memberID int64, req RedeemPointsRequest, userID int64) (*PointsResult, error)
	GetWalletTransactions(memberID int64, page, pageSize int) ([]models.WalletTransaction, int, error)
	GetPointTransactions(memberID int64, page, pageSize int) ([]models.PointTransaction, int, error)
	GetMemberQR(memberID int64) ([]byte, error)
}

type memberService struct {
	memberRepo repositories.MemberRepository
	ledger     memberLedger
	db         *sql.DB
}

// NewMemberService creates a new instance of MemberService.
func NewMemberService(mr repositories.MemberRepository, db *sql.DB) MemberService {
	return &memberService{memberRepo: mr, ledger: memberLedger{memberRepo: mr}, db: db}
}

func (s *memberService) CreateMember(req CreateMemberRequest) (*models.Member, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" {
		return nil, NewValidationError("name", "is required")
	}
	if phone == "" {
		return nil, NewValidationError("phone", "is required")
	}
	member := &models.Member{
		Name:      name,
		Phone:     phone,
		Email:     trimmedOrNil(req.Email),
		Tier:      models.MemberTierBronze,
		Status:    models.MemberStatusActive,
		ExpiresAt: req.ExpiresAt,
	}
	if req.Tier != nil {
		if !req.Tier.IsValid() {
			return nil, NewValidationError("tier", "must be BRONZE, SILVER or GOLD")
		}
		member.Tier = *req.Tier
	}

	err := withTx(s.db, func(tx *sql.Tx) error {
		code, err := s.memberRepo.NextMemberCode(tx)
		if err != nil {
			return fmt.Errorf("failed to allocate member code: %w", err)
		}
		member.MemberCode = code
		if err := s.memberRepo.CreateMember(tx, member); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return ErrMemberPhoneExists
			}
			return fmt.Errorf("failed to create member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberService) GetMemberByID(memberID int64) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(nil, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member %d: %w", memberID, err)
	}
	return member, nil
}

func (s *memberService) GetMembers(page, pageSize int, searchTerm *string) ([]models.Member, int, error) {
	members, total, err := s.memberRepo.GetMembers(page, pageSize, trimmedOrNil(searchTerm))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return members, total, nil
}

// UpdateMember edits the profile. Balances only move through the ledgers.
func (s *memberService) UpdateMember(memberID int64, req UpdateMemberRequest) (*models.Member, error) {
	member, err := s.GetMemberByID(memberID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewValidationError("name", "cannot be empty")
		}
		member.Name = name
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			return nil, NewValidationError("phone", "cannot be empty")
		}
		member.Phone = phone
	}
	if req.Email != nil {
		member.Email = trimmedOrNil(req.Email)
	}
	if req.Tier != nil {
		if !req.Tier.IsValid() {
			return nil, NewValidationError("tier", "must be BRONZE, SILVER or GOLD")
		}
		member.Tier = *req.Tier
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, NewValidationError("status", "must be ACTIVE, EXPIRED or BANNED")
		}
		member.Status = *req.Status
	}
	if req.ExpiresAt != nil {
		member.ExpiresAt = req.ExpiresAt
	}

	if err := s.memberRepo.UpdateMember(s.db, member); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrMemberPhoneExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to update member %d: %w", memberID, err)
	}
	return member, nil
}

func (s *memberService) DeleteMember(memberID int64) error {
	if err := s.memberRepo.DeleteMember(s.db, memberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMemberNotFound
		}
		if errors.Is(err, repositories.ErrForeignKey) {
			return ErrMemberInUse
		}
		return fmt.Errorf("failed to delete member %d: %w", memberID, err)
	}
	return nil
}

// TopUp credits the wallet. Amounts below MinTopUpAmount are rejected.
func (s *memberService) TopUp(memberID int64, req TopUpRequest, userID int64) (*WalletResult, error) {
	if req.Amount < MinTopUpAmount {
		return nil, NewValidationError("amount", fmt.Sprintf("minimum top-up is %d", MinTopUpAmount))
	}
	method, ok := models.ParsePaymentMethod(req.PaymentMethod)
	if !ok || method == models.PaymentWallet {
		return nil, NewValidationError("payment_method", "must be CASH, CARD or QRIS")
	}

	var result WalletResult
	err := withTx(s.db, func(tx *sql.Tx) error {
		member, err := s.lockActiveMember(tx, memberID)
		if err != nil {
			return err
		}
		methodName := string(method)
		entry, err := s.ledger.postWallet(tx, walletEntry{
			MemberID:      member.ID,
			Type:          models.WalletTxTopUp,
			Amount:        req.Amount,
			PaymentMethod: &methodName,
			Description:   trimmedOrNil(req.Description),
			CreatedBy:     int64Ptr(userID),
		})
		if err != nil {
			return err
		}
		member.WalletBalance = entry.BalanceAfter
		result = WalletResult{Member: member, Transaction: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *memberService) RedeemPoints(memberID int64, req RedeemPointsRequest, userID int64) (*PointsResult, error) {
	if req.Points <= 0 {
		return nil, NewValidationError("points", "must be positive")
	}

	var result PointsResult
	err := withTx(s.db, func(tx *sql.Tx) error {
		member, err := s.lockActiveMember(tx, memberID)
		if err != nil {
			return err
		}
		if member.PointsBalance < req.Points {
			return ErrInsufficientPoints
		}
		entry, err := s.ledger.postPoints(tx, pointEntry{
			MemberID:    member.ID,
			Type:        models.PointTxRedeem,
			Points:      -req.Points,
			Description: trimmedOrNil(req.Description),
			CreatedBy:   int64Ptr(userID),
		})
		if err != nil {
			return err
		}
		member.PointsBalance = entry.BalanceAfter
		result = PointsResult{Member: member, Transaction: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *memberService) lockActiveMember(tx *sql.Tx, memberID int64) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberForUpdate(tx, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to lock member %d: %w", memberID, err)
	}
	if member.Status != models.MemberStatusActive {
		return nil, ErrMemberInactive
	}
	return member, nil
}

func (s *memberService) GetWalletTransactions(memberID int64, page, pageSize int) ([]models.WalletTransaction, int, error) {
	if _, err := s.GetMemberByID(memberID); err != nil {
		return nil, 0, err
	}
	txs, total, err := s.memberRepo.GetWalletTransactions(memberID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return txs, total, nil
}

func (s *memberService) GetPointTransactions(memberID int64, page, pageSize int) ([]models.PointTransaction, int, error) {
	if _, err := s.GetMemberByID(memberID); err != nil {
		return nil, 0, err
	}
	txs, total, err := s.memberRepo.GetPointTransactions(memberID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list point transactions: %w", err)
	}
	return txs, total, nil
}

// GetMemberQR renders the member code as a PNG QR image for the member card.
func (s *memberService) GetMemberQR(memberID int64) ([]byte, error) {
	member, err := s.GetMemberByID(memberID)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(member.MemberCode, qrcode.Medium, memberQRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR for member %d: %w", memberID, err)
	}
	return png, nil
}

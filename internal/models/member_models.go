package models

import "time"

// MemberTier is the loyalty tier.
type MemberTier string

const (
	MemberTierBronze MemberTier = "BRONZE"
	MemberTierSilver MemberTier = "SILVER"
	MemberTierGold   MemberTier = "GOLD"
)

// IsValid reports whether t is a known tier.
func (t MemberTier) IsValid() bool {
	switch t {
	case MemberTierBronze, MemberTierSilver, MemberTierGold:
		return true
	}
	return false
}

// MemberStatus gates wallet and points operations.
type MemberStatus string

const (
	MemberStatusActive  MemberStatus = "ACTIVE"
	MemberStatusExpired MemberStatus = "EXPIRED"
	MemberStatusBanned  MemberStatus = "BANNED"
)

// IsValid reports whether s is a known member status.
func (s MemberStatus) IsValid() bool {
	switch s {
	case MemberStatusActive, MemberStatusExpired, MemberStatusBanned:
		return true
	}
	return false
}

// Member is a loyalty customer. WalletBalance and PointsBalance are kept
// equal to the sum of their ledgers.
type Member struct {
	ID            int64        `json:"id" db:"id"`
	MemberCode    string       `json:"member_code" db:"member_code"`
	Name          string       `json:"name" db:"name"`
	Phone         string       `json:"phone" db:"phone"`
	Email         *string      `json:"email,omitempty" db:"email"`
	Tier          MemberTier   `json:"tier" db:"tier"`
	Status        MemberStatus `json:"status" db:"status"`
	WalletBalance int64        `json:"wallet_balance" db:"wallet_balance"`
	PointsBalance int64        `json:"points_balance" db:"points_balance"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// WalletTxType classifies wallet ledger rows.
type WalletTxType string

const (
	WalletTxTopUp   WalletTxType = "TOPUP"
	WalletTxPayment WalletTxType = "PAYMENT"
	WalletTxRefund  WalletTxType = "REFUND"
)

// WalletTransaction is one append-only wallet ledger row. Amount is signed.
type WalletTransaction struct {
	ID            int64        `json:"id" db:"id"`
	MemberID      int64        `json:"member_id" db:"member_id"`
	Type          WalletTxType `json:"type" db:"type"`
	Amount        int64        `json:"amount" db:"amount"`
	BalanceAfter  int64        `json:"balance_after" db:"balance_after"`
	PaymentMethod *string      `json:"payment_method,omitempty" db:"payment_method"`
	OrderID       *int64       `json:"order_id,omitempty" db:"order_id"`
	Description   *string      `json:"description,omitempty" db:"description"`
	CreatedBy     *int64       `json:"created_by,omitempty" db:"created_by"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// PointTxType classifies points ledger rows.
type PointTxType string

const (
	PointTxEarn   PointTxType = "EARN"
	PointTxRedeem PointTxType = "REDEEM"
	PointTxAdjust PointTxType = "ADJUST"
)

// PointTransaction is one append-only points ledger row. Points is signed.
type PointTransaction struct {
	ID           int64       `json:"id" db:"id"`
	MemberID     int64       `json:"member_id" db:"member_id"`
	Type         PointTxType `json:"type" db:"type"`
	Points       int64       `json:"points" db:"points"`
	BalanceAfter int64       `json:"balance_after" db:"balance_after"`
	OrderID      *int64      `json:"order_id,omitempty" db:"order_id"`
	Description  *string     `json:"description,omitempty" db:"description"`
	CreatedBy    *int64      `json:"created_by,omitempty" db:"created_by"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

package services

import (
	"testing"

	"billiard_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopUpMinimum(t *testing.T) {
	members := newFakeMemberRepo(models.Member{ID: 1, Name: "Rina", Status: models.MemberStatusActive, WalletBalance: 500})
	db, mock := newMockDB(t)
	svc := NewMemberService(members, db)

	_, err := svc.TopUp(1, TopUpRequest{Amount: 999, PaymentMethod: "CASH"}, 4)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
	assert.Empty(t, members.walletTxs)

	mock.ExpectBegin()
	mock.ExpectCommit()
	result, err := svc.TopUp(1, TopUpRequest{Amount: 1000, PaymentMethod: "cash"}, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), result.Member.WalletBalance)
	assert.Equal(t, int64(1500), result.Transaction.BalanceAfter)
	assert.Equal(t, models.WalletTxTopUp, result.Transaction.Type)
	assert.Equal(t, int64(1000), result.Transaction.Amount)
	require.Len(t, members.walletTxs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTopUpRejectsWalletMethod(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewMemberService(newFakeMemberRepo(), db)

	_, err := svc.TopUp(1, TopUpRequest{Amount: 5000, PaymentMethod: "WALLET"}, 4)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTopUpInactiveMember(t *testing.T) {
	members := newFakeMemberRepo(models.Member{ID: 1, Status: models.MemberStatusExpired})
	db, mock := newMockDB(t)
	svc := NewMemberService(members, db)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.TopUp(1, TopUpRequest{Amount: 5000, PaymentMethod: "CARD"}, 4)
	assert.ErrorIs(t, err, ErrMemberInactive)
	assert.Equal(t, int64(0), members.members[1].WalletBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemPoints(t *testing.T) {
	members := newFakeMemberRepo(models.Member{ID: 1, Status: models.MemberStatusActive, PointsBalance: 40})
	db, mock := newMockDB(t)
	svc := NewMemberService(members, db)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.RedeemPoints(1, RedeemPointsRequest{Points: 50}, 4)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err = svc.RedeemPoints(1, RedeemPointsRequest{Points: 25}, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(15), members.members[1].PointsBalance)
	require.Len(t, members.pointTxs, 1)
	assert.Equal(t, int64(-25), members.pointTxs[0].Points)
	require.NoError(t, mock.ExpectationsWereMet())
}

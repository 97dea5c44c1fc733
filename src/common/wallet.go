package common

import (
	"errors"

	"kiteops/src/db"
	"kiteops/src/models"
	"kiteops/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecordTransactionInput struct {
	UserID        uint
	Amount        float64
	Currency      string
	Direction     types.WalletDirection
	Description   string
	Metadata      types.JSONB
	AllowNegative bool
}

func GetWalletBalance(userId uint, currency string) (float64, error) {
	db := db.GetDb()
	var account models.WalletAccount
	err := db.
		Model(&models.WalletAccount{}).
		Where(&models.WalletAccount{UserID: userId, Currency: currency}).
		First(&account).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return account.Balance, nil
}

func GetWalletTransactions(userId uint, currency string) ([]models.WalletTransaction, error) {
	db := db.GetDb()
	var txns []models.WalletTransaction
	q := db.
		Model(&models.WalletTransaction{}).
		Where(&models.WalletTransaction{UserID: userId})
	if currency != "" {
		q = q.Where("currency = ?", currency)
	}
	if err := q.Order("created_at desc").Limit(100).Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// RecordTransaction applies one atomic balance change inside the caller's
// transaction and appends the matching ledger row. Debits are guarded with a
// conditional update on the balance so two concurrent charges against the
// same account cannot both succeed past the available funds.
func RecordTransaction(tx *gorm.DB, input RecordTransactionInput) (*models.WalletTransaction, error) {
	if input.Amount <= 0 {
		return nil, types.NewValidationError("transaction amount must be positive")
	}
	account := models.WalletAccount{UserID: input.UserID, Currency: input.Currency}
	if err := tx.
		Where(&models.WalletAccount{UserID: input.UserID, Currency: input.Currency}).
		FirstOrCreate(&account).
		Error; err != nil {
		return nil, err
	}

	if input.Direction == types.WALLET_DEBIT && !input.AllowNegative {
		res := tx.
			Model(&models.WalletAccount{}).
			Where("id = ? AND balance >= ?", account.ID, input.Amount).
			Update("balance", gorm.Expr("balance - ?", input.Amount))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, types.ErrInsufficientFunds
		}
	} else {
		expr := gorm.Expr("balance + ?", input.Amount)
		if input.Direction == types.WALLET_DEBIT {
			expr = gorm.Expr("balance - ?", input.Amount)
		}
		if err := tx.
			Model(&models.WalletAccount{}).
			Where("id = ?", account.ID).
			Update("balance", expr).
			Error; err != nil {
			return nil, err
		}
	}

	wtxn := models.WalletTransaction{
		ID:              uuid.New(),
		WalletAccountID: account.ID,
		UserID:          input.UserID,
		Currency:        input.Currency,
		Amount:          input.Amount,
		Direction:       input.Direction,
		Description:     input.Description,
		Metadata:        input.Metadata,
	}
	if err := tx.Create(&wtxn).Error; err != nil {
		return nil, err
	}
	return &wtxn, nil
}

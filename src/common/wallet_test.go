package common

import (
	"fmt"
	"testing"

	"kiteops/src/db"
	"kiteops/src/models"
	"kiteops/src/types"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type WalletLedgerTestSuite struct {
	suite.Suite
	db  *gorm.DB
	seq int
}

func (s *WalletLedgerTestSuite) SetupSuite() {
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	s.Require().NoError(err)
	err = gdb.AutoMigrate(
		&models.User{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
	)
	s.Require().NoError(err)
	db.NewDB(gdb)
	s.db = gdb
}

func (s *WalletLedgerTestSuite) newUser() *models.User {
	s.seq++
	user := models.User{
		Name:  fmt.Sprintf("Wallet User %d", s.seq),
		Email: fmt.Sprintf("wallet%d@example.test", s.seq),
	}
	s.Require().NoError(s.db.Create(&user).Error)
	return &user
}

func (s *WalletLedgerTestSuite) record(input RecordTransactionInput) (*models.WalletTransaction, error) {
	var wtxn *models.WalletTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		wtxn, err = RecordTransaction(tx, input)
		return err
	})
	return wtxn, err
}

func (s *WalletLedgerTestSuite) TestCreditCreatesAccountAndLedgerRow() {
	user := s.newUser()
	wtxn, err := s.record(RecordTransactionInput{
		UserID:      user.ID,
		Amount:      100,
		Currency:    "EUR",
		Direction:   types.WALLET_CREDIT,
		Description: "top-up",
	})
	s.Require().NoError(err)
	s.NotEmpty(wtxn.ID)

	balance, err := GetWalletBalance(user.ID, "EUR")
	s.Require().NoError(err)
	s.EqualValues(100, balance)

	txns, err := GetWalletTransactions(user.ID, "EUR")
	s.Require().NoError(err)
	s.Len(txns, 1)
	s.Equal(types.WALLET_CREDIT, txns[0].Direction)
}

func (s *WalletLedgerTestSuite) TestDebitGuardedByBalance() {
	user := s.newUser()
	_, err := s.record(RecordTransactionInput{
		UserID:    user.ID,
		Amount:    50,
		Currency:  "EUR",
		Direction: types.WALLET_CREDIT,
	})
	s.Require().NoError(err)

	_, err = s.record(RecordTransactionInput{
		UserID:    user.ID,
		Amount:    80,
		Currency:  "EUR",
		Direction: types.WALLET_DEBIT,
	})
	s.Require().ErrorIs(err, types.ErrInsufficientFunds)

	// The rejected debit leaves neither a balance change nor a ledger row.
	balance, err := GetWalletBalance(user.ID, "EUR")
	s.Require().NoError(err)
	s.EqualValues(50, balance)
	txns, err := GetWalletTransactions(user.ID, "EUR")
	s.Require().NoError(err)
	s.Len(txns, 1)

	_, err = s.record(RecordTransactionInput{
		UserID:    user.ID,
		Amount:    50,
		Currency:  "EUR",
		Direction: types.WALLET_DEBIT,
	})
	s.Require().NoError(err)
	balance, _ = GetWalletBalance(user.ID, "EUR")
	s.EqualValues(0, balance)
}

func (s *WalletLedgerTestSuite) TestDebitAllowNegative() {
	user := s.newUser()
	_, err := s.record(RecordTransactionInput{
		UserID:        user.ID,
		Amount:        30,
		Currency:      "EUR",
		Direction:     types.WALLET_DEBIT,
		AllowNegative: true,
	})
	s.Require().NoError(err)

	balance, err := GetWalletBalance(user.ID, "EUR")
	s.Require().NoError(err)
	s.EqualValues(-30, balance)
}

func (s *WalletLedgerTestSuite) TestAmountMustBePositive() {
	user := s.newUser()
	_, err := s.record(RecordTransactionInput{
		UserID:    user.ID,
		Amount:    0,
		Currency:  "EUR",
		Direction: types.WALLET_CREDIT,
	})
	s.Require().Error(err)
	s.Equal(types.ERROR_VALIDATION, types.KindOf(err))
}

func (s *WalletLedgerTestSuite) TestCurrenciesAreSeparateAccounts() {
	user := s.newUser()
	_, err := s.record(RecordTransactionInput{
		UserID:    user.ID,
		Amount:    100,
		Currency:  "EUR",
		Direction: types.WALLET_CREDIT,
	})
	s.Require().NoError(err)
	_, err = s.record(RecordTransactionInput{
		UserID:    user.ID,
		Amount:    25,
		Currency:  "USD",
		Direction: types.WALLET_CREDIT,
	})
	s.Require().NoError(err)

	eur, _ := GetWalletBalance(user.ID, "EUR")
	usd, _ := GetWalletBalance(user.ID, "USD")
	s.EqualValues(100, eur)
	s.EqualValues(25, usd)

	// Debiting one currency never touches the other.
	_, err = s.record(RecordTransactionInput{
		UserID:    user.ID,
		Amount:    60,
		Currency:  "USD",
		Direction: types.WALLET_DEBIT,
	})
	s.Require().ErrorIs(err, types.ErrInsufficientFunds)
}

func (s *WalletLedgerTestSuite) TestUnknownAccountBalanceIsZero() {
	balance, err := GetWalletBalance(999999, "EUR")
	s.Require().NoError(err)
	s.EqualValues(0, balance)
}

func TestWalletLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(WalletLedgerTestSuite))
}

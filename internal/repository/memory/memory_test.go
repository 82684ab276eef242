package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/models"
	"github.com/mbhbank/account-service/shared/sentinel"
)

type StoreSuite struct {
	suite.Suite
	ctx          context.Context
	accounts     *AccountStore
	transactions *TransactionStore
	screening    *ScreeningStore
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.accounts = NewAccountStore()
	s.transactions = NewTransactionStore(s.accounts)
	s.screening = NewScreeningStore()
}

func (s *StoreSuite) createAccount(number, name string) models.Account {
	account := models.Account{AccountNumber: accountnumber.MustParse(number), AccountHolderName: name}
	s.Require().NoError(s.accounts.Create(s.ctx, &account))
	return account
}

func (s *StoreSuite) TestNextSequenceIsUniqueUnderConcurrency() {
	const n = 200
	seen := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.accounts.NextSequence(s.ctx)
			s.NoError(err)
			seen <- seq
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int64]bool{}
	for seq := range seen {
		unique[seq] = true
	}
	s.Len(unique, n)
}

func (s *StoreSuite) TestSoftDeleteKeepsRow() {
	a := s.createAccount("555555550000000000000001", "Ada")
	s.createAccount("555555550000000000000002", "Grace")

	deleted, err := s.accounts.SoftDelete(s.ctx, a.AccountNumber)
	s.Require().NoError(err)
	s.True(deleted.IsDeleted)

	again, err := s.accounts.SoftDelete(s.ctx, a.AccountNumber)
	s.Require().NoError(err)
	s.Equal(deleted, again)

	active, err := s.accounts.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 1)
	s.Equal("Grace", active[0].AccountHolderName)

	count, err := s.accounts.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	_, err = s.accounts.GetActive(s.ctx, a.AccountNumber)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.accounts.UpdateHolderName(s.ctx, a.AccountNumber, "Ada L")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestSoftDeleteUnknownAccount() {
	_, err := s.accounts.SoftDelete(s.ctx, accountnumber.MustParse("1"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestListActiveIsOrderedByNumber() {
	s.createAccount("555555550000000000000003", "C")
	s.createAccount("555555550000000000000001", "A")
	s.createAccount("555555550000000000000002", "B")

	active, err := s.accounts.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(active, 3)
	s.Equal([]string{"A", "B", "C"}, []string{active[0].AccountHolderName, active[1].AccountHolderName, active[2].AccountHolderName})
}

func (s *StoreSuite) TestTransactionsOfDeletedAccountsAreHidden() {
	a := s.createAccount("555555550000000000000001", "Ada")
	b := s.createAccount("555555550000000000000002", "Grace")
	now := time.Now().UTC()

	txA := models.Transaction{ID: uuid.New(), AccountNumber: a.AccountNumber, Type: models.Deposit, Amount: 10, Timestamp: now}
	txB := models.Transaction{ID: uuid.New(), AccountNumber: b.AccountNumber, Type: models.Deposit, Amount: 20, Timestamp: now}
	s.Require().NoError(s.transactions.Create(s.ctx, &txA))
	s.Require().NoError(s.transactions.Create(s.ctx, &txB))

	_, err := s.accounts.SoftDelete(s.ctx, a.AccountNumber)
	s.Require().NoError(err)

	listed, err := s.transactions.ListForActiveAccounts(s.ctx)
	s.Require().NoError(err)
	s.Equal([]models.Transaction{txB}, listed)

	byAccount, err := s.transactions.ListByAccountNumber(s.ctx, a.AccountNumber)
	s.Require().NoError(err)
	s.Equal([]models.Transaction{txA}, byAccount)
}

func (s *StoreSuite) TestTransactionUpdate() {
	a := s.createAccount("555555550000000000000001", "Ada")
	tx := models.Transaction{ID: uuid.New(), AccountNumber: a.AccountNumber, Type: models.Deposit, Amount: 10, Timestamp: time.Now().UTC()}
	s.Require().NoError(s.transactions.Create(s.ctx, &tx))

	tx.Type = models.Withdrawal
	tx.Amount = 3
	s.Require().NoError(s.transactions.Update(s.ctx, &tx))

	got, err := s.transactions.GetByID(s.ctx, tx.ID)
	s.Require().NoError(err)
	s.Equal(tx, *got)

	missing := models.Transaction{ID: uuid.New()}
	s.ErrorIs(s.transactions.Update(s.ctx, &missing), sentinel.ErrNotFound)
	_, err = s.transactions.Get(s.ctx, missing.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestScreeningResultLastWriteWins() {
	number := accountnumber.MustParse("555555550000000000000001")
	_, err := s.screening.FindResult(s.ctx, number)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.screening.UpsertResult(s.ctx, &models.ScreeningResult{AccountNumber: number, IsSecurityCheckSuccess: true}))
	s.Require().NoError(s.screening.UpsertResult(s.ctx, &models.ScreeningResult{AccountNumber: number, IsSecurityCheckSuccess: false}))

	result, err := s.screening.FindResult(s.ctx, number)
	s.Require().NoError(err)
	s.False(result.IsSecurityCheckSuccess)
}

func (s *StoreSuite) TestScreeningRequestLookup() {
	req := models.ScreeningRequest{
		CallbackToken:     uuid.New(),
		AccountNumber:     accountnumber.MustParse("555555550000000000000001"),
		AccountHolderName: "Ada",
	}
	s.Require().NoError(s.screening.SaveRequest(s.ctx, &req))
	s.Error(s.screening.SaveRequest(s.ctx, &req))

	got, err := s.screening.FindRequest(s.ctx, req.CallbackToken)
	s.Require().NoError(err)
	s.Equal(req, *got)

	_, err = s.screening.FindRequest(s.ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Len(s.screening.Requests(), 1)
}

func TestAuditLog(t *testing.T) {
	log := NewAuditLog()
	ctx := context.Background()

	first := models.AuditRecord{Type: "screening.rejected", Payload: []byte(`{}`)}
	second := models.AuditRecord{Type: "account.created", Payload: []byte(`{}`)}
	if err := log.Append(ctx, &first); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(ctx, &second); err != nil {
		t.Fatal(err)
	}

	rejected, err := log.ListByType(ctx, "screening.rejected")
	if err != nil {
		t.Fatal(err)
	}
	if len(rejected) != 1 || rejected[0].ID != 1 {
		t.Fatalf("unexpected records: %+v", rejected)
	}
	if second.ID != 2 {
		t.Errorf("expected id 2, got %d", second.ID)
	}
}

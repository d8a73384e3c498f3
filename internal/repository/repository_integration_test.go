//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
	"github.com/Shivanand-hulikatti/card-issuance/internal/repository"
)

type NotificationRepositorySuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	repo      *repository.NotificationRepository
}

func TestNotificationRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(NotificationRepositorySuite))
}

func (s *NotificationRepositorySuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("cardledger"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	pool, err := pgxpool.New(ctx, dsn)
	s.Require().NoError(err)
	s.pool = pool

	s.repo = repository.NewNotificationRepository(pool)
	s.Require().NoError(s.repo.EnsureSchema(ctx))
}

func (s *NotificationRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *NotificationRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE ledger_notifications")
	s.Require().NoError(err)
}

func (s *NotificationRepositorySuite) TestDeliverAndList() {
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	created := model.NewEditionCreated(model.Edition{ID: 1, Name: "Genesis", Capacity: 10}, base)
	reserved := model.NewBatchReserved(1, "alice", 1, 1, base.Add(time.Second))
	other := model.NewBatchReserved(2, "bob", 1, 1, base)

	for _, n := range []model.Notification{reserved, created, other} {
		s.Require().NoError(s.repo.Deliver(ctx, n))
	}

	notes, err := s.repo.ListByEdition(ctx, 1, 0)
	s.Require().NoError(err)
	s.Require().Len(notes, 2)
	s.Equal(created.ID, notes[0].ID)
	s.Equal("Genesis", notes[0].EditionCreated.Name)
	s.Equal(reserved.ID, notes[1].ID)
	s.Equal("alice", notes[1].BatchReserved.Purchaser)
}

func (s *NotificationRepositorySuite) TestRedeliveryIsIgnored() {
	ctx := context.Background()
	n := model.NewBatchReserved(3, "alice", 1, 1, time.Now().UTC())

	s.Require().NoError(s.repo.Deliver(ctx, n))
	s.Require().NoError(s.repo.Deliver(ctx, n))

	notes, err := s.repo.ListByEdition(ctx, 3, 10)
	s.Require().NoError(err)
	s.Len(notes, 1)
}

func (s *NotificationRepositorySuite) TestListRespectsLimit() {
	ctx := context.Background()
	now := time.Now().UTC()
	for i := range 5 {
		s.Require().NoError(s.repo.Deliver(ctx, model.NewBatchReserved(4, "alice", uint16(i+1), uint32(i+1), now.Add(time.Duration(i)*time.Second))))
	}

	notes, err := s.repo.ListByEdition(ctx, 4, 2)
	s.Require().NoError(err)
	s.Len(notes, 2)
	s.Equal(uint16(1), notes[0].BatchReserved.PurchaserCount)
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"meetpay/internal/entity"
	"meetpay/internal/pricing"
	"meetpay/internal/service"
	mock_service "meetpay/internal/service/mock"
	"meetpay/pkg/cache"
	"meetpay/pkg/logger"
	"meetpay/pkg/metric"
	"meetpay/pkg/storage/postgres"
	mock_transaction "meetpay/pkg/storage/postgres/transaction/mock"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type serviceMocks struct {
	paymentRepo *mock_service.MockPaymentRepository
	payoutRepo  *mock_service.MockPayoutRepository
	catalogRepo *mock_service.MockCatalogRepository
	txManager   *mock_transaction.MockManager
}

func newTestService(t *testing.T, ctrl *gomock.Controller) (*service.PaymentService, serviceMocks) {
	t.Helper()

	calculator, err := pricing.NewCalculator()
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	paymentRefs, err := pricing.NewReferenceGenerator(pricing.PaymentReferencePrefix)
	if err != nil {
		t.Fatalf("new payment reference generator: %v", err)
	}
	payoutRefs, err := pricing.NewReferenceGenerator(pricing.PayoutReferencePrefix)
	if err != nil {
		t.Fatalf("new payout reference generator: %v", err)
	}

	receiptCache, err := cache.NewLRUCache[uuid.UUID, *entity.Receipt](
		"receipt", 100, logger.NewNop(), metric.NewFactory().Cache(),
	)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	mocks := serviceMocks{
		paymentRepo: mock_service.NewMockPaymentRepository(ctrl),
		payoutRepo:  mock_service.NewMockPayoutRepository(ctrl),
		catalogRepo: mock_service.NewMockCatalogRepository(ctrl),
		txManager:   mock_transaction.NewMockManager(ctrl),
	}

	s := service.NewPaymentService(
		mocks.paymentRepo,
		mocks.payoutRepo,
		mocks.catalogRepo,
		mocks.txManager,
		calculator,
		paymentRefs,
		payoutRefs,
		logger.NewNop(),
		receiptCache,
		5*time.Minute,
		"USD",
		"CONNECTED_ACCOUNT",
	)
	return s, mocks
}

func fakeAmount() decimal.Decimal {
	return decimal.New(int64(gofakeit.IntRange(100, 1_000_000)), -2)
}

func fakeCreateInput() service.CreatePaymentInput {
	classID := uuid.New()
	last4 := "4242"
	return service.CreatePaymentInput{
		PayerID:       uuid.New(),
		GrossAmount:   fakeAmount(),
		ClassID:       &classID,
		PaymentMethod: "CARD",
		CardLast4:     &last4,
	}
}

var errPayoutWrite = errors.New("payouts table unavailable")

// passthroughTx makes the mocked transaction manager run the unit of work
// with a nil executer, so repo mocks observe the calls made inside it.
func passthroughTx(txManager *mock_transaction.MockManager) *gomock.Call {
	return txManager.EXPECT().
		ExecuteInTransaction(gomock.Any(), "CreatePayment", gomock.Any()).
		DoAndReturn(func(
			ctx context.Context,
			operation string,
			fn func(postgres.QueryExecuter) error,
		) error {
			return fn(nil)
		})
}

func TestPaymentService_CreatePayment(t *testing.T) {
	venueID := uuid.New()
	creatorID := uuid.New()

	testCases := []struct {
		desc  string
		setup func() service.CreatePaymentInput
		mocks func(m serviceMocks, in service.CreatePaymentInput)
		check func(t *testing.T, receipt *entity.Receipt, in service.CreatePaymentInput)
		err   error
	}{
		{
			desc:  "ClassPaysVenue",
			setup: fakeCreateInput,
			mocks: func(m serviceMocks, in service.CreatePaymentInput) {
				m.catalogRepo.EXPECT().GetClass(gomock.Any(), *in.ClassID).
					Return(&entity.Class{ID: *in.ClassID, VenueID: venueID}, nil).
					Times(1)

				passthroughTx(m.txManager).Times(1)

				m.paymentRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
					DoAndReturn(func(
						_ context.Context,
						_ postgres.QueryExecuter,
						payment *entity.Payment,
					) (*entity.Payment, error) {
						created := *payment
						created.ID = uuid.New()
						created.CreatedAt = time.Now().UTC()
						return &created, nil
					}).Times(1)

				m.payoutRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
					DoAndReturn(func(
						_ context.Context,
						_ postgres.QueryExecuter,
						payout *entity.Payout,
					) (*entity.Payout, error) {
						created := *payout
						created.ID = uuid.New()
						created.CreatedAt = time.Now().UTC()
						return &created, nil
					}).Times(1)
			},
			check: func(t *testing.T, receipt *entity.Receipt, in service.CreatePaymentInput) {
				if receipt.Payout.RecipientType != entity.RecipientTypeVenue {
					t.Errorf("recipient type: want VENUE, got %s", receipt.Payout.RecipientType)
				}
				if receipt.Payout.RecipientID != venueID {
					t.Errorf("recipient: want venue %s, got %s", venueID, receipt.Payout.RecipientID)
				}
				if receipt.Payment.Status != entity.PaymentStatusCompleted {
					t.Errorf("payment status: want COMPLETED, got %s", receipt.Payment.Status)
				}
				if receipt.Payment.PaidAt == nil {
					t.Error("paid_at must be set on a completed payment")
				}
				if receipt.Payout.Status != entity.PayoutStatusPending {
					t.Errorf("payout status: want PENDING, got %s", receipt.Payout.Status)
				}
				sum := receipt.Payment.PayoutAmount.Add(receipt.Payment.ProcessorFee)
				if !sum.Equal(in.GrossAmount) {
					t.Errorf("breakdown does not reconcile: %s + %s != %s",
						receipt.Payment.PayoutAmount, receipt.Payment.ProcessorFee, in.GrossAmount)
				}
				if !receipt.Payout.TotalAmount.Equal(receipt.Payment.PayoutAmount) {
					t.Error("payout total must equal the payment's payout amount")
				}
			},
		},
		{
			desc: "MeetupWithVenuePaysVenue",
			setup: func() service.CreatePaymentInput {
				in := fakeCreateInput()
				meetupID := uuid.New()
				in.ClassID = nil
				in.MeetupID = &meetupID
				return in
			},
			mocks: func(m serviceMocks, in service.CreatePaymentInput) {
				m.catalogRepo.EXPECT().GetMeetup(gomock.Any(), *in.MeetupID).
					Return(&entity.Meetup{
						ID:        *in.MeetupID,
						VenueID:   &venueID,
						CreatorID: creatorID,
					}, nil).Times(1)

				passthroughTx(m.txManager).Times(1)

				m.paymentRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
					DoAndReturn(func(
						_ context.Context,
						_ postgres.QueryExecuter,
						payment *entity.Payment,
					) (*entity.Payment, error) {
						created := *payment
						created.ID = uuid.New()
						return &created, nil
					}).Times(1)

				m.payoutRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
					DoAndReturn(func(
						_ context.Context,
						_ postgres.QueryExecuter,
						payout *entity.Payout,
					) (*entity.Payout, error) {
						created := *payout
						created.ID = uuid.New()
						return &created, nil
					}).Times(1)
			},
			check: func(t *testing.T, receipt *entity.Receipt, in service.CreatePaymentInput) {
				if receipt.Payout.RecipientType != entity.RecipientTypeVenue {
					t.Errorf("recipient type: want VENUE, got %s", receipt.Payout.RecipientType)
				}
				if receipt.Payout.RecipientID != venueID {
					t.Errorf("recipient: want venue %s, got %s", venueID, receipt.Payout.RecipientID)
				}
			},
		},
		{
			desc: "MeetupWithoutVenuePaysCreator",
			setup: func() service.CreatePaymentInput {
				in := fakeCreateInput()
				meetupID := uuid.New()
				in.ClassID = nil
				in.MeetupID = &meetupID
				return in
			},
			mocks: func(m serviceMocks, in service.CreatePaymentInput) {
				m.catalogRepo.EXPECT().GetMeetup(gomock.Any(), *in.MeetupID).
					Return(&entity.Meetup{
						ID:        *in.MeetupID,
						CreatorID: creatorID,
					}, nil).Times(1)

				passthroughTx(m.txManager).Times(1)

				m.paymentRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
					DoAndReturn(func(
						_ context.Context,
						_ postgres.QueryExecuter,
						payment *entity.Payment,
					) (*entity.Payment, error) {
						created := *payment
						created.ID = uuid.New()
						return &created, nil
					}).Times(1)

				m.payoutRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
					DoAndReturn(func(
						_ context.Context,
						_ postgres.QueryExecuter,
						payout *entity.Payout,
					) (*entity.Payout, error) {
						created := *payout
						created.ID = uuid.New()
						return &created, nil
					}).Times(1)
			},
			check: func(t *testing.T, receipt *entity.Receipt, in service.CreatePaymentInput) {
				if receipt.Payout.RecipientType != entity.RecipientTypeInstructor {
					t.Errorf("recipient type: want INSTRUCTOR, got %s", receipt.Payout.RecipientType)
				}
				if receipt.Payout.RecipientID != creatorID {
					t.Errorf("recipient: want creator %s, got %s", creatorID, receipt.Payout.RecipientID)
				}
			},
		},
		{
			desc: "AnonymousPayer",
			setup: func() service.CreatePaymentInput {
				in := fakeCreateInput()
				in.PayerID = uuid.Nil
				return in
			},
			mocks: func(m serviceMocks, in service.CreatePaymentInput) {},
			err:   entity.ErrUnauthorized,
		},
		{
			desc: "ZeroAmount",
			setup: func() service.CreatePaymentInput {
				in := fakeCreateInput()
				in.GrossAmount = decimal.Zero
				return in
			},
			mocks: func(m serviceMocks, in service.CreatePaymentInput) {},
			err:   entity.ErrInvalidAmount,
		},
		{
			desc: "NegativeAmount",
			setup: func() service.CreatePaymentInput {
				in := fakeCreateInput()
				in.GrossAmount = decimal.New(-500, -2)
				return in
			},
			mocks: func(m serviceMocks, in service.CreatePaymentInput) {},
			err:   entity.ErrInvalidAmount,
		},
		{
			desc: "NoTarget",
			setup: func() service.CreatePaymentInput {
				in := fakeCreateInput()
				in.ClassID = nil
				return in
			},
			mocks: func(m serviceMocks, in service.CreatePaymentInput) {},
			err:   entity.ErrMissingTarget,
		},
		{
			desc: "BothTargets",
			setup: func() service.CreatePaymentInput {
				in := fakeCreateInput()
				meetupID := uuid.New()
				in.MeetupID = &meetupID
				return in
			},
			mocks: func(m serviceMocks, in service.CreatePaymentInput) {},
			err:   entity.ErrAmbiguousTarget,
		},
		{
			desc:  "ClassNotFound",
			setup: fakeCreateInput,
			mocks: func(m serviceMocks, in service.CreatePaymentInput) {
				m.catalogRepo.EXPECT().GetClass(gomock.Any(), *in.ClassID).
					Return(nil, entity.ErrDataNotFound).Times(1)
			},
			err: entity.ErrDataNotFound,
		},
		{
			desc:  "PayoutWriteFailsInsideTransaction",
			setup: fakeCreateInput,
			mocks: func(m serviceMocks, in service.CreatePaymentInput) {
				m.catalogRepo.EXPECT().GetClass(gomock.Any(), *in.ClassID).
					Return(&entity.Class{ID: *in.ClassID, VenueID: uuid.New()}, nil).
					Times(1)

				// The manager surfaces whatever the unit of work returns,
				// exactly as a rolled back transaction would.
				passthroughTx(m.txManager).Times(1)

				m.paymentRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
					DoAndReturn(func(
						_ context.Context,
						_ postgres.QueryExecuter,
						payment *entity.Payment,
					) (*entity.Payment, error) {
						created := *payment
						created.ID = uuid.New()
						return &created, nil
					}).Times(1)

				m.payoutRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
					Return(nil, errPayoutWrite).Times(1)
			},
			err: errPayoutWrite,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mocks := newTestService(t, ctrl)

			in := tc.setup()
			tc.mocks(mocks, in)

			receipt, err := s.CreatePayment(context.Background(), in)

			if tc.err != nil {
				if err == nil {
					t.Fatalf("expected error %v, got nil", tc.err)
				}
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected error to contain %v, got %v", tc.err, err)
				}
				if receipt != nil {
					t.Error("expected nil receipt on error, got non-nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if receipt == nil {
				t.Fatal("expected non-nil receipt on success")
			}
			if tc.check != nil {
				tc.check(t, receipt, in)
			}
		})
	}
}

func TestPaymentService_CreatePayment_IdempotentReplay(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mocks := newTestService(t, ctrl)

	in := fakeCreateInput()
	key := uuid.NewString()
	in.IdempotencyKey = &key

	existing := &entity.Payment{
		ID:            uuid.New(),
		PaymentNumber: "PAY-20250101120000-00000001",
		UserID:        in.PayerID,
		Status:        entity.PaymentStatusCompleted,
	}
	existingPayout := &entity.Payout{
		ID:        uuid.New(),
		PaymentID: existing.ID,
	}

	mocks.paymentRepo.EXPECT().
		GetByIdempotencyKey(gomock.Any(), in.PayerID, key).
		Return(existing, nil).Times(1)
	mocks.payoutRepo.EXPECT().
		GetByPaymentID(gomock.Any(), existing.ID).
		Return(existingPayout, nil).Times(1)

	receipt, err := s.CreatePayment(context.Background(), in)
	if err != nil {
		t.Fatalf("expected replay, got error %v", err)
	}
	if receipt.Payment.ID != existing.ID {
		t.Errorf("replay must return the original payment, got %s", receipt.Payment.ID)
	}
	if receipt.Payout.ID != existingPayout.ID {
		t.Errorf("replay must return the original payout, got %s", receipt.Payout.ID)
	}
}

func TestPaymentService_CreatePayment_IdempotentRace(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mocks := newTestService(t, ctrl)

	in := fakeCreateInput()
	key := uuid.NewString()
	in.IdempotencyKey = &key

	winner := &entity.Payment{
		ID:     uuid.New(),
		UserID: in.PayerID,
		Status: entity.PaymentStatusCompleted,
	}
	winnerPayout := &entity.Payout{ID: uuid.New(), PaymentID: winner.ID}

	// First check sees nothing; the insert then loses the unique-index race
	// and the service re-reads the winner's receipt.
	first := mocks.paymentRepo.EXPECT().
		GetByIdempotencyKey(gomock.Any(), in.PayerID, key).
		Return(nil, entity.ErrDataNotFound).Times(1)
	mocks.paymentRepo.EXPECT().
		GetByIdempotencyKey(gomock.Any(), in.PayerID, key).
		Return(winner, nil).Times(1).After(first)
	mocks.payoutRepo.EXPECT().
		GetByPaymentID(gomock.Any(), winner.ID).
		Return(winnerPayout, nil).Times(1)

	mocks.catalogRepo.EXPECT().GetClass(gomock.Any(), *in.ClassID).
		Return(&entity.Class{ID: *in.ClassID, VenueID: uuid.New()}, nil).Times(1)

	mocks.txManager.EXPECT().
		ExecuteInTransaction(gomock.Any(), "CreatePayment", gomock.Any()).
		Return(entity.ErrConflictingData).Times(1)

	receipt, err := s.CreatePayment(context.Background(), in)
	if err != nil {
		t.Fatalf("expected race to resolve to a replay, got %v", err)
	}
	if receipt.Payment.ID != winner.ID {
		t.Errorf("expected the winner's payment, got %s", receipt.Payment.ID)
	}
}

func TestPaymentService_GetPayment(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	testCases := []struct {
		desc      string
		requester uuid.UUID
		role      entity.Role
		mocks     func(m serviceMocks, paymentID uuid.UUID)
		err       error
	}{
		{
			desc:      "OwnerReadsOwnPayment",
			requester: owner,
			role:      entity.RoleMember,
			mocks: func(m serviceMocks, paymentID uuid.UUID) {
				m.paymentRepo.EXPECT().GetByID(gomock.Any(), paymentID).
					Return(&entity.Payment{ID: paymentID, UserID: owner}, nil).Times(1)
				m.payoutRepo.EXPECT().GetByPaymentID(gomock.Any(), paymentID).
					Return(&entity.Payout{PaymentID: paymentID}, nil).Times(1)
			},
		},
		{
			desc:      "AdminReadsAnyPayment",
			requester: stranger,
			role:      entity.RoleAdmin,
			mocks: func(m serviceMocks, paymentID uuid.UUID) {
				m.paymentRepo.EXPECT().GetByID(gomock.Any(), paymentID).
					Return(&entity.Payment{ID: paymentID, UserID: owner}, nil).Times(1)
				m.payoutRepo.EXPECT().GetByPaymentID(gomock.Any(), paymentID).
					Return(&entity.Payout{PaymentID: paymentID}, nil).Times(1)
			},
		},
		{
			desc:      "StrangerForbidden",
			requester: stranger,
			role:      entity.RoleMember,
			mocks: func(m serviceMocks, paymentID uuid.UUID) {
				m.paymentRepo.EXPECT().GetByID(gomock.Any(), paymentID).
					Return(&entity.Payment{ID: paymentID, UserID: owner}, nil).Times(1)
				m.payoutRepo.EXPECT().GetByPaymentID(gomock.Any(), paymentID).
					Return(&entity.Payout{PaymentID: paymentID}, nil).Times(1)
			},
			err: entity.ErrForbidden,
		},
		{
			desc:      "NotFound",
			requester: owner,
			role:      entity.RoleMember,
			mocks: func(m serviceMocks, paymentID uuid.UUID) {
				m.paymentRepo.EXPECT().GetByID(gomock.Any(), paymentID).
					Return(nil, entity.ErrDataNotFound).Times(1)
				m.payoutRepo.EXPECT().GetByPaymentID(gomock.Any(), paymentID).
					Return(nil, entity.ErrDataNotFound).AnyTimes()
			},
			err: entity.ErrDataNotFound,
		},
		{
			desc:      "MissingPayoutTolerated",
			requester: owner,
			role:      entity.RoleMember,
			mocks: func(m serviceMocks, paymentID uuid.UUID) {
				m.paymentRepo.EXPECT().GetByID(gomock.Any(), paymentID).
					Return(&entity.Payment{ID: paymentID, UserID: owner}, nil).Times(1)
				m.payoutRepo.EXPECT().GetByPaymentID(gomock.Any(), paymentID).
					Return(nil, entity.ErrDataNotFound).Times(1)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mocks := newTestService(t, ctrl)

			paymentID := uuid.New()
			tc.mocks(mocks, paymentID)

			receipt, err := s.GetPayment(context.Background(), paymentID, tc.requester, tc.role)

			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				if receipt != nil {
					t.Error("expected nil receipt on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if receipt == nil || receipt.Payment == nil {
				t.Fatal("expected receipt with payment")
			}
		})
	}
}

func TestPaymentService_GetPayment_CacheHitStillAuthorized(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mocks := newTestService(t, ctrl)

	owner := uuid.New()
	paymentID := uuid.New()

	mocks.paymentRepo.EXPECT().GetByID(gomock.Any(), paymentID).
		Return(&entity.Payment{ID: paymentID, UserID: owner}, nil).Times(1)
	mocks.payoutRepo.EXPECT().GetByPaymentID(gomock.Any(), paymentID).
		Return(&entity.Payout{PaymentID: paymentID}, nil).Times(1)

	// First read populates the cache.
	if _, err := s.GetPayment(context.Background(), paymentID, owner, entity.RoleMember); err != nil {
		t.Fatalf("first read: %v", err)
	}

	// Second read is served from cache; no further repo expectations. A
	// stranger must still be rejected.
	if _, err := s.GetPayment(context.Background(), paymentID, uuid.New(), entity.RoleMember); !errors.Is(err, entity.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on cached read, got %v", err)
	}

	receipt, err := s.GetPayment(context.Background(), paymentID, owner, entity.RoleMember)
	if err != nil {
		t.Fatalf("owner cached read: %v", err)
	}
	if receipt.Payment.ID != paymentID {
		t.Errorf("expected cached payment %s, got %s", paymentID, receipt.Payment.ID)
	}
}

func TestPaymentService_ListUserPayments(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mocks := newTestService(t, ctrl)

	payerID := uuid.New()
	payments := []*entity.Payment{
		{ID: uuid.New(), UserID: payerID},
		{ID: uuid.New(), UserID: payerID},
		{ID: uuid.New(), UserID: payerID},
	}

	mocks.paymentRepo.EXPECT().ListByUser(gomock.Any(), payerID).
		Return(payments, nil).Times(1)
	for _, p := range payments {
		mocks.payoutRepo.EXPECT().GetByPaymentID(gomock.Any(), p.ID).
			Return(&entity.Payout{PaymentID: p.ID}, nil).Times(1)
	}

	receipts, err := s.ListUserPayments(context.Background(), payerID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(receipts) != len(payments) {
		t.Fatalf("expected %d receipts, got %d", len(payments), len(receipts))
	}
	for i, r := range receipts {
		if r.Payment.ID != payments[i].ID {
			t.Errorf("receipt %d out of order: want %s, got %s", i, payments[i].ID, r.Payment.ID)
		}
		if r.Payout == nil || r.Payout.PaymentID != payments[i].ID {
			t.Errorf("receipt %d has wrong payout pairing", i)
		}
	}
}

func TestPaymentService_ListUserPayments_AnonymousPayer(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, _ := newTestService(t, ctrl)

	_, err := s.ListUserPayments(context.Background(), uuid.Nil)
	if !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPaymentService_PlatformRevenue(t *testing.T) {
	now := time.Now().UTC()
	earlier := now.Add(-24 * time.Hour)

	testCases := []struct {
		desc       string
		role       entity.Role
		startDate  *time.Time
		endDate    *time.Time
		mocks      func(m serviceMocks)
		err        error
		paymentCnt int64
	}{
		{
			desc: "AdminGetsReport",
			role: entity.RoleAdmin,
			mocks: func(m serviceMocks) {
				m.paymentRepo.EXPECT().AggregateRevenue(gomock.Any(), nil, nil).
					Return(&entity.RevenueReport{PaymentCount: 7}, nil).Times(1)
			},
			paymentCnt: 7,
		},
		{
			desc:      "AdminGetsBoundedReport",
			role:      entity.RoleAdmin,
			startDate: &earlier,
			endDate:   &now,
			mocks: func(m serviceMocks) {
				m.paymentRepo.EXPECT().AggregateRevenue(gomock.Any(), &earlier, &now).
					Return(&entity.RevenueReport{PaymentCount: 3}, nil).Times(1)
			},
			paymentCnt: 3,
		},
		{
			desc:  "MemberForbidden",
			role:  entity.RoleMember,
			mocks: func(m serviceMocks) {},
			err:   entity.ErrForbidden,
		},
		{
			desc:      "InvertedRange",
			role:      entity.RoleAdmin,
			startDate: &now,
			endDate:   &earlier,
			mocks:     func(m serviceMocks) {},
			err:       entity.ErrInvalidData,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mocks := newTestService(t, ctrl)
			tc.mocks(mocks)

			report, err := s.PlatformRevenue(context.Background(), tc.role, tc.startDate, tc.endDate)

			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if report.PaymentCount != tc.paymentCnt {
				t.Errorf("payment count: want %d, got %d", tc.paymentCnt, report.PaymentCount)
			}
		})
	}
}

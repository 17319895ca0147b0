package linking

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tradelink/internal/domain"
	"tradelink/internal/testutil"
)

type fixture struct {
	svc      *Service
	db       *gorm.DB
	supplier *domain.Company
	consumer *domain.Company

	buyer      *domain.User
	seller     *domain.User
	otherBuyer *domain.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	f := &fixture{svc: NewService(db, zerolog.Nop()), db: db}
	f.supplier = testutil.Company(t, db, "Wholesale Co", domain.CompanySupplier)
	f.consumer = testutil.Company(t, db, "Deli", domain.CompanyConsumer)
	f.buyer = testutil.User(t, db, f.consumer.ID, domain.RoleStaff, "buyer")
	f.otherBuyer = testutil.User(t, db, f.consumer.ID, domain.RoleManager, "buyer2")
	f.seller = testutil.User(t, db, f.supplier.ID, domain.RoleStaff, "seller")
	return f
}

func TestRequest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	l, err := f.svc.Request(ctx, f.buyer.ID, f.supplier.ID, " weekly deliveries ")
	require.NoError(t, err)
	assert.Equal(t, domain.LinkingPending, l.Status)
	assert.Equal(t, f.buyer.ID, l.RequestedByUserID)
	assert.Equal(t, "weekly deliveries", l.Message)
	assert.Nil(t, l.AssignedSalesmanID)

	_, err = f.svc.Request(ctx, f.otherBuyer.ID, f.supplier.ID, "")
	assert.ErrorIs(t, err, ErrLinkingExists)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRequest_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Request(ctx, f.seller.ID, f.supplier.ID, "")
	assert.ErrorIs(t, err, ErrNotConsumer)

	_, err = f.svc.Request(ctx, f.buyer.ID, f.consumer.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Request(ctx, f.buyer.ID, 9999, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRespond_AcceptAssignsSalesman(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	l, err := f.svc.Request(ctx, f.buyer.ID, f.supplier.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, f.buyer.ID, l.ID, true)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	l, err = f.svc.Respond(ctx, f.seller.ID, l.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkingAccepted, l.Status)
	require.NotNil(t, l.AssignedSalesmanID)
	assert.Equal(t, f.seller.ID, *l.AssignedSalesmanID)

	var stored domain.Linking
	require.NoError(t, f.db.First(&stored, l.ID).Error)
	assert.True(t, stored.HasSalesman(f.seller.ID))
	require.NotNil(t, stored.RespondedByUserID)
	assert.Equal(t, f.seller.ID, *stored.RespondedByUserID)

	_, err = f.svc.Respond(ctx, f.seller.ID, l.ID, false)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRespond_RejectAllowsNewRequest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	l, err := f.svc.Request(ctx, f.buyer.ID, f.supplier.ID, "")
	require.NoError(t, err)
	l, err = f.svc.Respond(ctx, f.seller.ID, l.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkingRejected, l.Status)

	_, err = f.svc.Request(ctx, f.buyer.ID, f.supplier.ID, "second try")
	assert.NoError(t, err)
}

func TestRespond_SecondAcceptedPairConflicts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.svc.Request(ctx, f.buyer.ID, f.supplier.ID, "")
	require.NoError(t, err)
	// a duplicate pending request that slipped past the pre-check
	dup := &domain.Linking{
		ConsumerCompanyID: f.consumer.ID,
		SupplierCompanyID: f.supplier.ID,
		RequestedByUserID: f.otherBuyer.ID,
		Status:            domain.LinkingPending,
	}
	require.NoError(t, f.db.Create(dup).Error)

	_, err = f.svc.Respond(ctx, f.seller.ID, first.ID, true)
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, f.seller.ID, dup.ID, true)
	assert.ErrorIs(t, err, ErrAlreadyLinked)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGetAndList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	outsider := testutil.User(t, f.db, testutil.Company(t, f.db, "Other", domain.CompanyConsumer).ID, domain.RoleOwner, "other")

	l, err := f.svc.Request(ctx, f.buyer.ID, f.supplier.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.seller.ID, l.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, outsider.ID, l.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	list, err := f.svc.ListForCompany(ctx, f.otherBuyer.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = f.svc.ListForCompany(ctx, outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

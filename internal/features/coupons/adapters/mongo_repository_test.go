package adapters

import (
	"context"
	"testing"
	"time"

	"heroshop/internal/features/coupons/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const couponsNS = "heroshop.coupons"

func sampleCoupon() *domain.Coupon {
	limit := 5
	return &domain.Coupon{
		Code:            "SAVE10",
		DiscountType:    domain.DiscountTypePercentage,
		DiscountAmount:  decimal.NewFromInt(10),
		MinimumPurchase: decimal.RequireFromString("49.99"),
		StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		UsageLimit:      &limit,
		UsedCount:       2,
		IsActive:        true,
	}
}

// couponBSON renders a coupon the way it is stored, for use in mock server replies.
func couponBSON(t *testing.T, c *domain.Coupon) bson.D {
	t.Helper()
	doc, err := toDocument(c)
	require.NoError(t, err)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func TestMongoCouponRepository_FindByCode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, couponsNS, mtest.FirstBatch, couponBSON(mt.T, sampleCoupon())))

		got, err := repo.FindByCode(context.Background(), "SAVE10")
		require.NoError(mt, err)
		require.NotNil(mt, got)
		assert.Equal(mt, "SAVE10", got.Code)
		assert.Equal(mt, domain.DiscountTypePercentage, got.DiscountType)
		assert.True(mt, got.MinimumPurchase.Equal(decimal.RequireFromString("49.99")))
		require.NotNil(mt, got.UsageLimit)
		assert.Equal(mt, 5, *got.UsageLimit)
		assert.Equal(mt, 2, got.UsedCount)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, couponsNS, mtest.FirstBatch))

		got, err := repo.FindByCode(context.Background(), "NOPE")
		require.NoError(mt, err)
		assert.Nil(mt, got)
	})

	mt.Run("server error", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 1, Message: "boom"}))

		_, err := repo.FindByCode(context.Background(), "SAVE10")
		assert.Error(mt, err)
	})
}

func TestMongoCouponRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.Create(context.Background(), sampleCoupon()))
	})

	mt.Run("duplicate code", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.Create(context.Background(), sampleCoupon())
		assert.ErrorIs(mt, err, domain.ErrCouponExists)
	})
}

func TestMongoCouponRepository_UpdateAndDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("update matched", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, repo.Update(context.Background(), sampleCoupon()))
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.Update(context.Background(), sampleCoupon())
		assert.ErrorIs(mt, err, domain.ErrCouponNotFound)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(), "SAVE10")
		assert.ErrorIs(mt, err, domain.ErrCouponNotFound)
	})

	mt.Run("delete existing", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.Delete(context.Background(), "SAVE10"))
	})
}

func TestMongoCouponRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("two coupons", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		second := sampleCoupon()
		second.Code = "HERO50"
		second.DiscountType = domain.DiscountTypeFixed
		second.UsageLimit = nil

		mt.AddMockResponses(mtest.CreateCursorResponse(0, couponsNS, mtest.FirstBatch,
			couponBSON(mt.T, sampleCoupon()), couponBSON(mt.T, second)))

		coupons, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, coupons, 2)
		assert.Equal(mt, "HERO50", coupons[1].Code)
		assert.Nil(mt, coupons[1].UsageLimit)
	})
}

// TestMongoCouponRepository_Redeem verifies that a conditional update that matches nothing is reported as a declined coupon.
func TestMongoCouponRepository_Redeem(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mt.Run("redeemed", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, repo.Redeem(context.Background(), "SAVE10", now))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)

		filter := evt.Command.Lookup("updates", "0", "q").Document()
		assert.Equal(mt, "SAVE10", filter.Lookup("code").StringValue())
		assert.True(mt, filter.Lookup("is_active").Boolean())
		assert.True(mt, now.Equal(filter.Lookup("start_date", "$lte").Time()))
		assert.True(mt, now.Equal(filter.Lookup("end_date", "$gte").Time()))
		assert.Equal(mt, bsontype.Null, filter.Lookup("$or", "0", "usage_limit").Type)
		assert.Equal(mt, "$used_count", filter.Lookup("$or", "1", "$expr", "$lt", "0").StringValue())
		assert.Equal(mt, "$usage_limit", filter.Lookup("$or", "1", "$expr", "$lt", "1").StringValue())

		update := evt.Command.Lookup("updates", "0", "u").Document()
		assert.Equal(mt, int64(1), update.Lookup("$inc", "used_count").AsInt64())
		assert.True(mt, now.Equal(update.Lookup("$set", "updated_at").Time()))
	})

	mt.Run("limit reached or expired", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.Redeem(context.Background(), "SAVE10", now)
		assert.ErrorIs(mt, err, domain.ErrCouponExpiredOrInactive)
	})
}

func TestMongoCouponRepository_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("created", func(mt *mtest.T) {
		repo := NewMongoCouponRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}

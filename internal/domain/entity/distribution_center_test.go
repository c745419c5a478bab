package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/order-allocation/internal/domain/entity"
)

func TestIsLowStock_Umbral20PorCiento(t *testing.T) {
	cases := []struct {
		stock, initial int
		low            bool
	}{
		{20, 100, false},
		{19, 100, true},
		{18, 100, true},
		{0, 100, true},
		{100, 100, false},
		{10, 50, false},
		{9, 50, true},
		{1, 3, false}, // 1 < 0.6 es falso
		{0, 3, true},
	}
	for _, tc := range cases {
		c := &entity.DistributionCenter{CenterID: "C", Stock: tc.stock, InitialStock: tc.initial, ZipCode: "1"}
		assert.Equal(t, tc.low, c.IsLowStock(), "stock=%d initial=%d", tc.stock, tc.initial)
	}
}

func TestRemainingPercentage(t *testing.T) {
	c := &entity.DistributionCenter{Stock: 5, InitialStock: 15}
	assert.Equal(t, "33.33", c.RemainingPercentage().StringFixed(2))

	c = &entity.DistributionCenter{Stock: 100, InitialStock: 100}
	assert.Equal(t, "100.00", c.RemainingPercentage().StringFixed(2))

	c = &entity.DistributionCenter{Stock: 0, InitialStock: 0}
	assert.True(t, c.RemainingPercentage().IsZero())
}

func TestValidate(t *testing.T) {
	ok := &entity.DistributionCenter{CenterID: "C1", Stock: 10, InitialStock: 100, ZipCode: "10000"}
	assert.NoError(t, ok.Validate())

	bad := []*entity.DistributionCenter{
		{CenterID: "", Stock: 1, InitialStock: 1, ZipCode: "1"},
		{CenterID: "C", Stock: -1, InitialStock: 1, ZipCode: "1"},
		{CenterID: "C", Stock: 1, InitialStock: 0, ZipCode: "1"},
		{CenterID: "C", Stock: 1, InitialStock: 1, ZipCode: "10a"},
		{CenterID: "C", Stock: 1, InitialStock: 1, ZipCode: ""},
	}
	for _, c := range bad {
		assert.Error(t, c.Validate(), "%+v", c)
	}
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, entity.IsNumeric("0001"))
	assert.False(t, entity.IsNumeric(""))
	assert.False(t, entity.IsNumeric("-1"))
	assert.False(t, entity.IsNumeric("１２")) // dígitos no ASCII
}

func TestNewAlertRecord(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := &entity.DistributionCenter{CenterID: "C1", Stock: 18, InitialStock: 100}
	rec := entity.NewAlertRecord(c, now)

	assert.Equal(t, "C1", rec.CenterID)
	assert.Equal(t, 18, rec.StockRemaining)
	assert.Equal(t, 100, rec.InitialStock)
	assert.Equal(t, now, rec.Timestamp)
	assert.Equal(t, entity.LowStockMessage, rec.Message)
}

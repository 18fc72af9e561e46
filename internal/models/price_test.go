package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPriceJSONRendersTwoDecimals(t *testing.T) {
	body, err := json.Marshal(struct {
		Price Price `json:"price"`
	}{Price: MustPrice("3.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"3.50"}`, string(body))
}

func TestPriceJSONAcceptsStringAndNumber(t *testing.T) {
	var fromString, fromNumber struct {
		Price Price `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":"4.25"}`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`{"price":4.25}`), &fromNumber))
	assert.True(t, fromString.Price.Equal(fromNumber.Price.Decimal))
	assert.Equal(t, "4.25", fromString.Price.String())

	err := json.Unmarshal([]byte(`{"price":"abc"}`), &fromString)
	assert.Error(t, err)
}

func TestPriceBSONRoundTripAndLegacyDouble(t *testing.T) {
	type doc struct {
		Price Price `bson:"price"`
	}

	data, err := bson.Marshal(doc{Price: MustPrice("12.40")})
	require.NoError(t, err)
	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, "12.40", raw["price"])

	legacy, err := bson.Marshal(bson.M{"price": 7.5})
	require.NoError(t, err)
	var decoded doc
	require.NoError(t, bson.Unmarshal(legacy, &decoded))
	assert.Equal(t, "7.50", decoded.Price.String())
}

func TestPriceArithmetic(t *testing.T) {
	line := MustPrice("3.50").Mul(3)
	total := line.Add(MustPrice("0.99"))
	assert.Equal(t, "11.49", total.String())
	assert.Equal(t, int64(1149), total.MinorUnits())
}

func TestPriceScan(t *testing.T) {
	var p Price
	require.NoError(t, p.Scan(3.5))
	assert.Equal(t, "3.50", p.String())
	require.NoError(t, p.Scan("10.00"))
	assert.Equal(t, "10.00", p.String())
	require.NoError(t, p.Scan(int64(4)))
	assert.Equal(t, "4.00", p.String())
}

func TestProductUpdateApply(t *testing.T) {
	name := "Heirloom Tomatoes"
	inStock := false
	price := MustPrice("5.00")
	p := Product{Name: "Tomatoes", InStock: true, Price: MustPrice("3.50"), Unit: "lb"}

	upd := ProductUpdate{Name: &name, InStock: &inStock, Price: &price}
	assert.False(t, upd.IsEmpty())
	upd.Apply(&p)

	assert.Equal(t, "Heirloom Tomatoes", p.Name)
	assert.False(t, p.InStock)
	assert.Equal(t, "5.00", p.Price.String())
	assert.Equal(t, "lb", p.Unit)
	assert.True(t, ProductUpdate{}.IsEmpty())
}

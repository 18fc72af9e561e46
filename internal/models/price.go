package models

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Price is a monetary amount in major currency units. It renders as a
// two-decimal string in JSON ("3.50") and is stored as a string in BSON and
// numeric(12,2) in SQL so no value ever passes through a float.
type Price struct {
	decimal.Decimal
}

func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

// MustPrice parses s and panics on malformed input. Intended for fixtures and seeds.
func MustPrice(s string) Price {
	return Price{Decimal: decimal.RequireFromString(s)}
}

func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return Price{Decimal: d}, nil
}

func (p Price) Mul(quantity int) Price {
	return Price{Decimal: p.Decimal.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (p Price) Add(other Price) Price {
	return Price{Decimal: p.Decimal.Add(other.Decimal)}
}

// MinorUnits converts to integer cents, rounding half away from zero.
func (p Price) MinorUnits() int64 {
	return p.Decimal.Shift(2).Round(0).IntPart()
}

func (p Price) String() string {
	return p.Decimal.StringFixed(2)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted strings and bare numbers.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		p.Decimal = decimal.Zero
		return nil
	}
	parsed, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// UnmarshalBSONValue accepts strings, doubles, ints and decimal128 so documents
// written by other tools still decode.
func (p *Price) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null:
		p.Decimal = decimal.Zero
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		parsed, err := ParsePrice(value)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	case bsontype.Double:
		var value float64
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		p.Decimal = decimal.NewFromFloat(value)
		return nil
	case bsontype.Int32, bsontype.Int64:
		var value int64
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		p.Decimal = decimal.NewFromInt(value)
		return nil
	case bsontype.Decimal128:
		var value primitive.Decimal128
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		parsed, err := ParsePrice(value.String())
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Price", t)
	}
}

// MarshalBSONValue always stores the fixed two-decimal string.
func (p Price) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(p.String())
}

func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

func (p *Price) Scan(value interface{}) error {
	return p.Decimal.Scan(value)
}

func (Price) GormDataType() string {
	return "numeric(12,2)"
}

package relation_test

import (
	"testing"

	"tablediff/core/relation"

	"github.com/stretchr/testify/assert"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		name    string
		sqlType string
		want    relation.Kind
	}{
		{"Bigint", "bigint", relation.KindBigint},
		{"Int", "int", relation.KindInt},
		{"Integer", "integer", relation.KindInt},
		{"IntUnsigned", "int(11) unsigned", relation.KindInt},
		{"Double", "double", relation.KindDouble},
		{"DoublePrecision", "double precision", relation.KindDouble},
		{"Float", "float", relation.KindFloat},
		{"Real", "real", relation.KindDouble},
		{"Decimal", "decimal(38,0)", relation.KindDecimal},
		{"DecimalNoArgs", "decimal", relation.KindDecimal},
		{"Varchar", "varchar(255)", relation.KindString},
		{"Text", "text", relation.KindString},
		{"Char", "char(8)", relation.KindString},
		{"Date", "date", relation.KindDate},
		{"Timestamp", "timestamp", relation.KindTimestamp},
		{"Datetime", "datetime", relation.KindTimestamp},
		{"Bool", "boolean", relation.KindBool},
		{"Unknown", "geometry", relation.KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := relation.ParseType(tt.sqlType)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestParseType_DecimalPrecision(t *testing.T) {
	typ := relation.ParseType("decimal(38,2)")
	assert.Equal(t, relation.KindDecimal, typ.Kind)
	assert.Equal(t, 38, typ.Precision)
	assert.Equal(t, 2, typ.Scale)
}

func TestType_Numeric(t *testing.T) {
	assert.True(t, relation.TypeOf(relation.KindBigint).Numeric())
	assert.True(t, relation.TypeOf(relation.KindDouble).Numeric())
	assert.True(t, relation.TypeOf(relation.KindDecimal).Numeric())
	assert.False(t, relation.TypeOf(relation.KindString).Numeric())
	assert.False(t, relation.TypeOf(relation.KindBool).Numeric())
	assert.False(t, relation.TypeOf(relation.KindTimestamp).Numeric())
}

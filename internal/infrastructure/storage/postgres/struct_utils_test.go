package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"posledger/internal/core/entity"
	"posledger/internal/core/id"
)

type mockProduct struct {
	entity.Catalog
	SKU   string `db:"sku" json:"sku"`
	Price string `db:"price" json:"price"`
}

func TestExtractDBColumns_EmbeddedStructs(t *testing.T) {
	cols := ExtractDBColumns[mockProduct]()

	expectedCols := []string{
		"id", "company_id", "version", "created_at", "updated_at",
		"code", "name", "active", "sku", "price",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap_EmbeddedStructs(t *testing.T) {
	companyID := id.New()
	cat := mockProduct{
		Catalog: entity.NewCatalog(companyID, "P-001", "Espresso Beans 1kg"),
		SKU:     "ESP-1000",
		Price:   "18.50",
	}
	cat.Version = 5

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, companyID, m["company_id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "P-001", m["code"])
	assert.Equal(t, "Espresso Beans 1kg", m["name"])
	assert.Equal(t, true, m["active"])
	assert.Equal(t, "ESP-1000", m["sku"])
	assert.Equal(t, "18.50", m["price"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("text"))
}

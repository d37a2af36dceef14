package dto

import (
	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain"
	"posledger/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Code        string      `json:"code,omitempty"`
	Name        string      `json:"name" binding:"required"`
	SKU         string      `json:"sku" binding:"required"`
	Barcode     *string     `json:"barcode,omitempty"`
	Unit        string      `json:"unit,omitempty"`
	SalePrice   types.Money `json:"salePrice"`
	TaxRate     types.Money `json:"taxRate"`
	Description *string     `json:"description,omitempty"`
}

// ToEntity converts the request to a domain product.
func (r *CreateProductRequest) ToEntity(companyID id.ID) *product.Product {
	p := product.NewProduct(companyID, r.Code, r.Name, r.SKU)
	p.Barcode = r.Barcode
	p.SalePrice = r.SalePrice
	p.TaxRate = r.TaxRate
	p.Description = r.Description
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	return p
}

// UpdateProductRequest for updating products.
type UpdateProductRequest struct {
	Code        *string      `json:"code,omitempty"`
	Name        *string      `json:"name,omitempty"`
	SKU         *string      `json:"sku,omitempty"`
	Barcode     *string      `json:"barcode,omitempty"`
	Unit        *string      `json:"unit,omitempty"`
	SalePrice   *types.Money `json:"salePrice,omitempty"`
	TaxRate     *types.Money `json:"taxRate,omitempty"`
	Description *string      `json:"description,omitempty"`
	Active      *bool        `json:"active,omitempty"`
	Version     int          `json:"version" binding:"required,min=1"`
}

// ApplyTo overlays the request onto an existing product.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.SKU != nil {
		p.SKU = *r.SKU
	}
	if r.Barcode != nil {
		p.Barcode = r.Barcode
	}
	if r.Unit != nil {
		p.Unit = *r.Unit
	}
	if r.SalePrice != nil {
		p.SalePrice = *r.SalePrice
	}
	if r.TaxRate != nil {
		p.TaxRate = *r.TaxRate
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.Active != nil {
		p.Active = *r.Active
	}
	p.Version = r.Version
}

// CatalogListQuery filters catalog list queries.
type CatalogListQuery struct {
	Search     string   `form:"search"`
	IDs        []string `form:"ids"`
	ActiveOnly *bool    `form:"activeOnly"`
	OrderBy    string   `form:"orderBy"`
	PaginationRequest
}

// ToFilter converts query params to a domain filter.
func (q *CatalogListQuery) ToFilter() domain.ListFilter {
	q.Defaults()
	f := domain.ListFilter{
		Search:     q.Search,
		ActiveOnly: q.ActiveOnly,
		OrderBy:    q.OrderBy,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	for _, s := range q.IDs {
		if v, err := id.Parse(s); err == nil {
			f.IDs = append(f.IDs, v)
		}
	}
	return f
}

// --- Response DTOs ---

// ProductResponse contains product fields.
type ProductResponse struct {
	BaseResponse
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Active      bool        `json:"active"`
	SKU         string      `json:"sku"`
	Barcode     *string     `json:"barcode,omitempty"`
	Unit        string      `json:"unit"`
	SalePrice   types.Money `json:"salePrice"`
	TaxRate     types.Money `json:"taxRate"`
	Description *string     `json:"description,omitempty"`
}

// FromProduct converts a domain product to its response DTO.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		BaseResponse: FromBaseEntity(p.BaseEntity),
		Code:         p.Code,
		Name:         p.Name,
		Active:       p.Active,
		SKU:          p.SKU,
		Barcode:      p.Barcode,
		Unit:         p.Unit,
		SalePrice:    p.SalePrice,
		TaxRate:      p.TaxRate,
		Description:  p.Description,
	}
}

// FromProducts converts a slice of products.
func FromProducts(items []*product.Product) []*ProductResponse {
	out := make([]*ProductResponse, len(items))
	for i, p := range items {
		out[i] = FromProduct(p)
	}
	return out
}

package dto

import (
	"posledger/internal/core/id"
	"posledger/internal/domain/catalogs/location"
)

// --- Request DTOs ---

// CreateLocationRequest for creating locations.
type CreateLocationRequest struct {
	Code      string  `json:"code,omitempty"`
	Name      string  `json:"name" binding:"required"`
	Type      string  `json:"type" binding:"required"`
	Address   *string `json:"address,omitempty"`
	IsDefault bool    `json:"isDefault,omitempty"`
}

// ToEntity converts the request to a domain location.
func (r *CreateLocationRequest) ToEntity(companyID id.ID) *location.Location {
	l := location.NewLocation(companyID, r.Code, r.Name, location.LocationType(r.Type))
	l.Address = r.Address
	l.IsDefault = r.IsDefault
	return l
}

// UpdateLocationRequest for updating locations.
type UpdateLocationRequest struct {
	Code      *string `json:"code,omitempty"`
	Name      *string `json:"name,omitempty"`
	Type      *string `json:"type,omitempty"`
	Address   *string `json:"address,omitempty"`
	IsDefault *bool   `json:"isDefault,omitempty"`
	Active    *bool   `json:"active,omitempty"`
	Version   int     `json:"version" binding:"required,min=1"`
}

// ApplyTo overlays the request onto an existing location.
func (r *UpdateLocationRequest) ApplyTo(l *location.Location) {
	if r.Code != nil {
		l.Code = *r.Code
	}
	if r.Name != nil {
		l.Name = *r.Name
	}
	if r.Type != nil {
		l.Type = location.LocationType(*r.Type)
	}
	if r.Address != nil {
		l.Address = r.Address
	}
	if r.IsDefault != nil {
		l.IsDefault = *r.IsDefault
	}
	if r.Active != nil {
		l.Active = *r.Active
	}
	l.Version = r.Version
}

// --- Response DTOs ---

// LocationResponse contains location fields.
type LocationResponse struct {
	BaseResponse
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Active    bool    `json:"active"`
	Type      string  `json:"type"`
	Address   *string `json:"address,omitempty"`
	IsDefault bool    `json:"isDefault"`
}

// FromLocation converts a domain location to its response DTO.
func FromLocation(l *location.Location) *LocationResponse {
	return &LocationResponse{
		BaseResponse: FromBaseEntity(l.BaseEntity),
		Code:         l.Code,
		Name:         l.Name,
		Active:       l.Active,
		Type:         string(l.Type),
		Address:      l.Address,
		IsDefault:    l.IsDefault,
	}
}

// FromLocations converts a slice of locations.
func FromLocations(items []*location.Location) []*LocationResponse {
	out := make([]*LocationResponse, len(items))
	for i, l := range items {
		out[i] = FromLocation(l)
	}
	return out
}

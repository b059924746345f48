package model

import (
	"slices"
	"time"
)

const (
	AccountUser     = "user"
	AccountBusiness = "business"
)

type BusinessDetails struct {
	BusinessName  string   `json:"business_name" bson:"business_name" validate:"required,min=2,max=100"`
	Services      []string `json:"services" bson:"services" validate:"required,min=1,max=3,dive,oneof=flight train bus"`
	BusinessHours string   `json:"business_hours,omitempty" bson:"business_hours,omitempty" validate:"omitempty,max=100"`
	Location      string   `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	Website       string   `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
}

// Profile is keyed by the identity provider uid. Business is set exactly
// when AccountType is business.
type Profile struct {
	UID          string           `json:"uid" bson:"_id"`
	AccountType  string           `json:"account_type" bson:"account_type" validate:"required,oneof=user business"`
	Email        string           `json:"email" bson:"email" validate:"required,email"`
	Name         string           `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Phone        string           `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Address      string           `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=300"`
	Business     *BusinessDetails `json:"business,omitempty" bson:"business,omitempty"`
	RegisteredAt time.Time        `json:"registered_at" bson:"registered_at"`
	UpdatedAt    time.Time        `json:"updated_at" bson:"updated_at"`
}

func (p *Profile) IsBusiness() bool {
	return p.AccountType == AccountBusiness && p.Business != nil
}

// Offers reports whether a business profile lists the transport mode.
func (p *Profile) Offers(mode string) bool {
	return p.IsBusiness() && slices.Contains(p.Business.Services, mode)
}

type ProfileUpdate struct {
	AccountType string           `json:"account_type,omitempty" validate:"omitempty,oneof=user business"`
	Email       string           `json:"email,omitempty" validate:"omitempty,email"`
	Name        string           `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone       *string          `json:"phone,omitempty"`
	Address     *string          `json:"address,omitempty" validate:"omitempty,max=300"`
	Business    *BusinessDetails `json:"business,omitempty"`
}

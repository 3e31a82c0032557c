// Package model defines domain models and data structures.
package model

import "time"

// AccountType distinguishes individual and corporate accounts.
type AccountType string

const (
	// AccountTypeIndividual is a personal account.
	AccountTypeIndividual AccountType = "individual"
	// AccountTypeCorporate is a company account.
	AccountTypeCorporate AccountType = "corporate"
)

// Valid reports whether the account type is one of the known values.
func (t AccountType) Valid() bool {
	return t == AccountTypeIndividual || t == AccountTypeCorporate
}

// User represents a user entity. EcoPoints is the lifetime sum of
// points earned across all of the user's actions.
type User struct {
	ID              string      `json:"id"`
	Email           string      `json:"email"`
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	ProfileImageURL string      `json:"profileImageUrl"`
	AccountType     AccountType `json:"accountType"`
	CompanyName     string      `json:"companyName"`
	EcoPoints       int         `json:"ecoPoints"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// UpsertUserParams represents parameters for creating or updating a user.
// Nil pointer fields are left untouched on an existing row.
type UpsertUserParams struct {
	ID              string
	Email           *string
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
	AccountType     *AccountType
	CompanyName     *string
}

// Validate validates the upsert parameters.
func (p *UpsertUserParams) Validate() error {
	if p.ID == "" {
		return NewValidationError("id", "id is required")
	}

	if p.AccountType != nil && !p.AccountType.Valid() {
		return NewValidationError("accountType", "accountType must be individual or corporate")
	}

	return nil
}

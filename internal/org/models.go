package org

import "time"

// Organisation is a tenant that users belong to. Membership is the only
// relationship between users and organisations; an organisation never
// owns its members' lifecycle.
type Organisation struct {
	OrgID       string    `json:"orgId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"-"`
}

// CreateOrganisationInput holds the fields for creating an organisation.
type CreateOrganisationInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

package ens

import (
	"encoding/json"
	"strings"
)

// GraphQL documents for the two identifier schemes. Labelhash identifiers key
// the registrations entity, namehash identifiers key the domains entity.
// first: must equal domain.MaxBatchSize
const (
	registrationsQuery = `query getName($ids: [ID!]) {
  registrations(where: { id_in: $ids }, first: 1000) {
    id
    labelName
    expiryDate
    registrationDate
    domain { name }
  }
}`

	domainsQuery = `query getDomains($ids: [ID!]) {
  domains(where: { id_in: $ids }, first: 1000) {
    id
    name
    registration { registrationDate expiryDate }
  }
}`
)

type gqlRequest struct {
	Query     string       `json:"query"`
	Variables gqlVariables `json:"variables"`
}

type gqlVariables struct {
	IDs []string `json:"ids"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

type gqlError struct {
	Message string `json:"message"`
}

type registrationsData struct {
	Registrations []registration `json:"registrations"`
}

// registration timestamps arrive as decimal strings (BigInt scalars)
type registration struct {
	ID               string `json:"id"`
	LabelName        string `json:"labelName"`
	ExpiryDate       bigInt `json:"expiryDate"`
	RegistrationDate bigInt `json:"registrationDate"`
	Domain           *struct {
		Name string `json:"name"`
	} `json:"domain"`
}

type domainsData struct {
	Domains []domainEntity `json:"domains"`
}

type domainEntity struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Registration *struct {
		RegistrationDate bigInt `json:"registrationDate"`
		ExpiryDate       bigInt `json:"expiryDate"`
	} `json:"registration"`
}

// bigInt keeps a BigInt scalar verbatim whether it was sent quoted or bare,
// so a bad value surfaces per record instead of failing the whole decode
type bigInt string

// UnmarshalJSON implements json.Unmarshaler
func (b *bigInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*b = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = bigInt(v)
		return nil
	}
	*b = bigInt(s)
	return nil
}

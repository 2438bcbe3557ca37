package types

import (
	"fmt"
	"strings"
)

// AllCustomersKey selects every customer in the table.
const AllCustomersKey = "0"

// Customer is one FleetControl tenant the report can be run for.
type Customer struct {
	Key    string `json:"key" yaml:"key" validate:"required"`
	Name   string `json:"name" yaml:"name" validate:"required"`
	ID     string `json:"-" yaml:"id"`
	APIKey string `json:"-" yaml:"api_key"`

	// IncludeAllActionTypes puts every action of a matching event into the
	// patch report, not only the ones named "patch".
	IncludeAllActionTypes bool `json:"include_all_action_types" yaml:"include_all_action_types"`
	// ExtraActionTypes lists action types (case-insensitive) that are reported
	// alongside "patch" actions.
	ExtraActionTypes []string `json:"extra_action_types,omitempty" yaml:"extra_action_types"`
}

// HasCredentials reports whether both the customer ID and API key are set.
func (c Customer) HasCredentials() bool {
	return strings.TrimSpace(c.ID) != "" && strings.TrimSpace(c.APIKey) != ""
}

// IncludesActionType reports whether actions of the given type are reported
// for this customer in addition to "patch" actions.
func (c Customer) IncludesActionType(actionType string) bool {
	if c.IncludeAllActionTypes {
		return true
	}
	for _, t := range c.ExtraActionTypes {
		if strings.EqualFold(t, actionType) {
			return true
		}
	}
	return false
}

// CustomerTable is the ordered, read-only set of configured customers.
type CustomerTable struct {
	customers []Customer
}

// NewCustomerTable builds a table preserving the given order. Keys must be
// unique and must not collide with AllCustomersKey.
func NewCustomerTable(customers []Customer) (*CustomerTable, error) {
	seen := make(map[string]struct{}, len(customers))
	copied := make([]Customer, 0, len(customers))
	for _, c := range customers {
		if c.Key == "" || c.Key == AllCustomersKey {
			return nil, fmt.Errorf("customer %q: key %q is reserved or empty", c.Name, c.Key)
		}
		if _, dup := seen[c.Key]; dup {
			return nil, fmt.Errorf("duplicate customer key %q", c.Key)
		}
		seen[c.Key] = struct{}{}
		c.ExtraActionTypes = append([]string(nil), c.ExtraActionTypes...)
		copied = append(copied, c)
	}
	return &CustomerTable{customers: copied}, nil
}

// All returns a copy of every customer in table order.
func (t *CustomerTable) All() []Customer {
	return append([]Customer(nil), t.customers...)
}

// Lookup finds a single customer by key.
func (t *CustomerTable) Lookup(key string) (Customer, bool) {
	for _, c := range t.customers {
		if c.Key == key {
			return c, true
		}
	}
	return Customer{}, false
}

// Select resolves a selection key to the customers it covers. The
// AllCustomersKey sentinel yields the full table in order.
func (t *CustomerTable) Select(key string) ([]Customer, error) {
	key = strings.TrimSpace(key)
	if key == AllCustomersKey {
		return t.All(), nil
	}
	if c, ok := t.Lookup(key); ok {
		return []Customer{c}, nil
	}
	return nil, fmt.Errorf("%w: customer %q", ErrInvalidSelection, key)
}

// Scope is the filename prefix for a customer selection.
func (t *CustomerTable) Scope(key string) string {
	if strings.TrimSpace(key) == AllCustomersKey {
		return "ALL_CUSTOMERS"
	}
	if c, ok := t.Lookup(strings.TrimSpace(key)); ok {
		return c.Name
	}
	return key
}

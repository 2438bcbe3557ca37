package config

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

// DefaultCustomers is the built-in customer list. Credentials are never
// stored here; they come from FC_<NAME>_CUSTOMER_ID and FC_<NAME>_API_KEY.
func DefaultCustomers() []types.Customer {
	return []types.Customer{
		{Key: "1", Name: "Brother"},
		{Key: "2", Name: "Grohe"},
		{Key: "3", Name: "Heineken", IncludeAllActionTypes: true},
		{Key: "4", Name: "Neste"},
		{Key: "5", Name: "Sandvik"},
		{Key: "6", Name: "Thames"},
	}
}

type customersFile struct {
	Customers []types.Customer `yaml:"customers"`
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadCustomers builds the customer table from path (or the built-in list
// when path is empty) and fills credentials from the environment. Values in
// the environment win over values in the file.
func LoadCustomers(path string, lookup LookupFunc) (*types.CustomerTable, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	customers := DefaultCustomers()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read customers file: %w", err)
		}
		var file customersFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse customers file %s: %w", path, err)
		}
		if len(file.Customers) == 0 {
			return nil, fmt.Errorf("customers file %s lists no customers", path)
		}
		customers = file.Customers
	}

	for i := range customers {
		if err := validate.Struct(customers[i]); err != nil {
			return nil, fmt.Errorf("customer %d: %w", i+1, err)
		}
		prefix := "FC_" + EnvName(customers[i].Name)
		if v, ok := lookup(prefix + "_CUSTOMER_ID"); ok && strings.TrimSpace(v) != "" {
			customers[i].ID = strings.TrimSpace(v)
		}
		if v, ok := lookup(prefix + "_API_KEY"); ok && strings.TrimSpace(v) != "" {
			customers[i].APIKey = strings.TrimSpace(v)
		}
	}

	return types.NewCustomerTable(customers)
}

// EnvName upper-cases name and replaces anything that is not a letter or
// digit with an underscore: "Thames Water" -> "THAMES_WATER".
func EnvName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

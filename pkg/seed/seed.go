// Package seed provides the default settings a new association starts with:
// payment methods, income fields and expense fields.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PaymentMethod maps a label to the register it settles into.
type PaymentMethod struct {
	Name        string `yaml:"name"`
	NameAr      string `yaml:"name_ar"`
	AccountType string `yaml:"account_type"`
}

// Field is an income or expense category.
type Field struct {
	Name   string `yaml:"name"`
	NameAr string `yaml:"name_ar"`
}

// Account is a register account created with the association.
type Account struct {
	NameAr string `yaml:"name_ar"`
	Type   string `yaml:"type"`
}

// Defaults represents the complete seed configuration.
type Defaults struct {
	Accounts       []Account       `yaml:"accounts"`
	PaymentMethods []PaymentMethod `yaml:"payment_methods"`
	IncomeFields   []Field         `yaml:"income_fields"`
	ExpenseFields  []Field         `yaml:"expense_fields"`
}

// Builtin returns the defaults used when no seed file is configured.
func Builtin() *Defaults {
	return &Defaults{
		Accounts: []Account{
			{NameAr: "الصندوق الرئيسي", Type: "cash"},
			{NameAr: "الحساب البنكي", Type: "bank"},
		},
		PaymentMethods: []PaymentMethod{
			{Name: "Cash", NameAr: "نقداً", AccountType: "cash"},
			{Name: "Check", NameAr: "شيك", AccountType: "bank"},
			{Name: "Transfer", NameAr: "تحويل بنكي", AccountType: "bank"},
		},
		IncomeFields: []Field{
			{Name: "انخراطات", NameAr: "انخراطات"},
			{Name: "منح", NameAr: "منح"},
			{Name: "دعم", NameAr: "دعم"},
			{Name: "أنشطة", NameAr: "أنشطة"},
		},
		ExpenseFields: []Field{
			{Name: "تجهيزات", NameAr: "تجهيزات"},
			{Name: "ماء وكهرباء", NameAr: "ماء وكهرباء"},
			{Name: "تنقل", NameAr: "تنقل"},
			{Name: "صيانة", NameAr: "صيانة"},
			{Name: "مكتبية", NameAr: "مكتبية"},
		},
	}
}

// Load reads defaults from a YAML file. An empty path returns Builtin().
// Sections missing from the file fall back to the builtin ones.
func Load(path string) (*Defaults, error) {
	if path == "" {
		return Builtin(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	return Parse(data)
}

// Parse parses YAML seed data and validates it.
func Parse(data []byte) (*Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	builtin := Builtin()
	if len(d.Accounts) == 0 {
		d.Accounts = builtin.Accounts
	}
	if len(d.PaymentMethods) == 0 {
		d.PaymentMethods = builtin.PaymentMethods
	}
	if len(d.IncomeFields) == 0 {
		d.IncomeFields = builtin.IncomeFields
	}
	if len(d.ExpenseFields) == 0 {
		d.ExpenseFields = builtin.ExpenseFields
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks that every account and payment method names a known register.
func (d *Defaults) Validate() error {
	for _, a := range d.Accounts {
		if !isRegister(a.Type) {
			return fmt.Errorf("invalid account type %q for account %q", a.Type, a.NameAr)
		}
	}
	for _, m := range d.PaymentMethods {
		if !isRegister(m.AccountType) {
			return fmt.Errorf("invalid account type %q for payment method %q", m.AccountType, m.Name)
		}
	}
	return nil
}

func isRegister(t string) bool {
	return t == "cash" || t == "bank"
}

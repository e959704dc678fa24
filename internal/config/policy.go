package config

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Policy is the optional YAML file named by PAYROLL_POLICY_FILE. Amounts are
// read as strings so they keep their exact decimal value.
type Policy struct {
	Roles      map[string][]string `yaml:"roles"`
	Deductions *DeductionPolicy    `yaml:"deductions"`
}

type DeductionPolicy struct {
	ProvidentFundRate   *string    `yaml:"provident_fund_rate"`
	InsuranceRate       *string    `yaml:"insurance_rate"`
	OvertimeRatePerHour *string    `yaml:"overtime_rate_per_hour"`
	ProfessionalTax     *TaxPolicy `yaml:"professional_tax"`
}

type TaxPolicy struct {
	Mode       string       `yaml:"mode"`
	FlatAmount *string      `yaml:"flat_amount"`
	Slabs      []SlabPolicy `yaml:"slabs"`
}

type SlabPolicy struct {
	UpTo   *string `yaml:"up_to"`
	Amount string  `yaml:"amount"`
}

// LoadPolicy reads a policy file. An empty path yields an empty policy.
func LoadPolicy(path string) (*Policy, error) {
	policy := &Policy{}
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	return policy, nil
}

// RolePermissions returns the policy's role table, or the built-in table when
// the file defines none.
func (p *Policy) RolePermissions() map[user.Role][]user.Permission {
	if len(p.Roles) == 0 {
		return user.DefaultRolePermissions
	}

	roles := make(map[user.Role][]user.Permission, len(p.Roles))
	for role, perms := range p.Roles {
		list := make([]user.Permission, 0, len(perms))
		for _, perm := range perms {
			list = append(list, user.Permission(perm))
		}
		roles[user.Role(role)] = list
	}
	return roles
}

// ApplyDeductions overlays the policy's deduction rules onto base.
func (p *Policy) ApplyDeductions(base payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	d := p.Deductions
	if d == nil {
		return base, nil
	}

	out := base
	fields := []struct {
		name string
		src  *string
		dst  *decimal.Decimal
	}{
		{"provident_fund_rate", d.ProvidentFundRate, &out.ProvidentFundRate},
		{"insurance_rate", d.InsuranceRate, &out.InsuranceRate},
		{"overtime_rate_per_hour", d.OvertimeRatePerHour, &out.OvertimeRatePerHour},
	}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		v, err := decimal.NewFromString(*f.src)
		if err != nil {
			return base, fmt.Errorf("invalid deductions.%s: %w", f.name, err)
		}
		*f.dst = v
	}

	if d.ProfessionalTax != nil {
		tax, err := d.ProfessionalTax.toDomain()
		if err != nil {
			return base, err
		}
		if err := tax.Validate(); err != nil {
			return base, fmt.Errorf("invalid deductions.professional_tax: %w", err)
		}
		out.ProfessionalTax = tax
	}
	return out, nil
}

func (t TaxPolicy) toDomain() (payroll.ProfessionalTaxPolicy, error) {
	tax := payroll.ProfessionalTaxPolicy{Mode: payroll.TaxMode(t.Mode)}
	if t.FlatAmount != nil {
		v, err := decimal.NewFromString(*t.FlatAmount)
		if err != nil {
			return tax, fmt.Errorf("invalid deductions.professional_tax.flat_amount: %w", err)
		}
		tax.FlatAmount = v
	}
	for i, s := range t.Slabs {
		amount, err := decimal.NewFromString(s.Amount)
		if err != nil {
			return tax, fmt.Errorf("invalid deductions.professional_tax.slabs[%d].amount: %w", i, err)
		}
		slab := payroll.TaxSlab{Amount: amount}
		if s.UpTo != nil {
			upTo, err := decimal.NewFromString(*s.UpTo)
			if err != nil {
				return tax, fmt.Errorf("invalid deductions.professional_tax.slabs[%d].up_to: %w", i, err)
			}
			slab.UpTo = &upTo
		}
		tax.Slabs = append(tax.Slabs, slab)
	}
	return tax, nil
}

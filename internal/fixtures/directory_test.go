package fixtures

import (
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
)

func TestDemoDirectory(t *testing.T) {
	t.Parallel()

	employees := DemoDirectory()

	assert.Len(t, employees, len(demoEmployees))
	codes := make(map[string]bool)
	for _, e := range employees {
		assert.True(t, validator.IsValidUUID(e.ID), e.ID)
		assert.True(t, e.HasSalaryStructure(), e.EmployeeCode)
		assert.False(t, codes[e.EmployeeCode], "duplicate code %s", e.EmployeeCode)
		codes[e.EmployeeCode] = true
	}
}

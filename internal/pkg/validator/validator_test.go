package validator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"Engineering", false},
		{" hr ", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsEmpty(c.input), "IsEmpty(%q)", c.input)
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
		"123e4567-e89b-12d3-a456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"{0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b}",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"r1",
		"",
	}
	for _, s := range valid {
		assert.True(t, IsValidUUID(s), "IsValidUUID(%q)", s)
	}
	for _, s := range invalid {
		assert.False(t, IsValidUUID(s), "IsValidUUID(%q)", s)
	}
}

func TestIsValidDate(t *testing.T) {
	got, ok := IsValidDate("2024-02-29")
	require.True(t, ok)
	assert.Equal(t, 29, got.Day())

	for _, s := range []string{"2023-02-29", "2023-13-01", "2023/01/01", "01-01-2023", ""} {
		_, ok := IsValidDate(s)
		assert.False(t, ok, "IsValidDate(%q)", s)
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"asc", "desc"}
	assert.True(t, IsInSlice("asc", slice))
	assert.False(t, IsInSlice("ASC", slice))
	assert.False(t, IsInSlice("asc", nil))
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "period_month", Message: "must be between 1 and 12"},
		{Field: "status", Message: "required"},
	}
	assert.Equal(t, "period_month: must be between 1 and 12; status: required", errs.Error())
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "payment_date", Message: "is required when status is Paid"},
		{Field: "payment_mode", Message: "is required when status is Paid"},
		{Field: "payment_date", Message: "must be in YYYY-MM-DD format"},
	}
	got := errs.ToMap()
	assert.Len(t, got, 2)
	assert.Equal(t, "is required when status is Paid", got["payment_date"])
}

func TestAs(t *testing.T) {
	errs := ValidationErrors{{Field: "status", Message: "required"}}

	got, ok := As(fmt.Errorf("decode request: %w", errs))
	require.True(t, ok)
	assert.Equal(t, errs, got)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

package payroll

import (
	"context"
	"io"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== RECORD ACCESS TESTS =====

func TestGetPayrollRecord_Access(t *testing.T) {
	t.Parallel()

	f, r1, r2 := generatedPair(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		principal user.Principal
		id        string
		wantErr   error
	}{
		{"hr sees any record", hrPrincipal, r2.ID, nil},
		{"accountant sees any record", accountantPrincipal, r1.ID, nil},
		{"employee sees own record", employeePrincipal("eng-01"), r1.ID, nil},
		{"employee cannot see a colleague", employeePrincipal("eng-01"), r2.ID, user.ErrInsufficientPermissions},
		{"employee without link is denied", user.Principal{UserID: "u-x", Role: user.RoleEmployee}, r1.ID, user.ErrInsufficientPermissions},
		{"unknown role is denied", user.Principal{UserID: "u-x", Role: "guest"}, r1.ID, user.ErrInsufficientPermissions},
		{"malformed id", hrPrincipal, "nope", payroll.ErrPayrollRecordNotFound},
		{"unknown id", hrPrincipal, uuid.NewString(), payroll.ErrPayrollRecordNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := f.svc.GetPayrollRecord(ctx, tt.principal, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID)
		})
	}
}

func TestGetPayrollRecord_OwnEmployeeWithoutViewCapability(t *testing.T) {
	t.Parallel()

	f, r1, r2 := generatedPair(t)
	f.svc.gate = user.NewGate(map[user.Role][]user.Permission{
		user.RoleHR:       {user.PermissionPayrollGenerate},
		user.RoleEmployee: {},
	})
	ctx := context.Background()
	self := employeePrincipal("eng-01")

	got, err := f.svc.GetPayrollRecord(ctx, self, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, r1.ID, got.ID)

	file, err := f.svc.DownloadPayslip(ctx, self, r1.ID)
	require.NoError(t, err)
	defer file.Content.Close()

	_, err = f.svc.GetPayrollRecord(ctx, self, r2.ID)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

// ===== PAYSLIP TESTS =====

func TestDownloadPayslip_RendersAndCachesPerStatus(t *testing.T) {
	t.Parallel()

	f, r1, _ := generatedPair(t)
	ctx := context.Background()

	file, err := f.svc.DownloadPayslip(ctx, employeePrincipal("eng-01"), r1.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(file.Content)
	require.NoError(t, err)
	require.NoError(t, file.Content.Close())

	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "payslip-C-eng-01-2024-03.pdf", file.FileName)
	assert.Equal(t, "%PDF-", string(body[:5]))

	exists, err := f.files.Exists(ctx, "payslips/"+r1.ID+"/generated.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	cached, err := f.svc.DownloadPayslip(ctx, hrPrincipal, r1.ID)
	require.NoError(t, err)
	again, err := io.ReadAll(cached.Content)
	require.NoError(t, err)
	assert.Equal(t, body, again)

	_, err = f.svc.UpdateStatus(ctx, managerPrincipal, payroll.UpdateStatusRequest{ID: r1.ID, Status: "Approved"})
	require.NoError(t, err)
	_, err = f.svc.DownloadPayslip(ctx, hrPrincipal, r1.ID)
	require.NoError(t, err)

	exists, err = f.files.Exists(ctx, "payslips/"+r1.ID+"/approved.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	rec, err := f.records.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusApproved, rec.Status)
}

func TestDownloadPayslip_DeniedForColleague(t *testing.T) {
	t.Parallel()

	f, _, r2 := generatedPair(t)

	_, err := f.svc.DownloadPayslip(context.Background(), employeePrincipal("eng-01"), r2.ID)

	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	exists, err := f.files.Exists(context.Background(), "payslips/"+r2.ID+"/generated.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

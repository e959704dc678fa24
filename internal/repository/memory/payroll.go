package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

type periodKey struct {
	employeeID string
	month      int
	year       int
}

// PayrollRepository keeps payroll records and settings in memory. A single
// mutex serializes writes, which gives UpdateStatus the same one-winner
// behaviour as a row lock.
type PayrollRepository struct {
	mu        sync.Mutex
	records   map[string]payroll.PayrollRecord
	active    map[periodKey]string
	settings  *payroll.PayrollSettings
	employees *EmployeeRepository
	now       func() time.Time
}

// NewPayrollRepository joins employee fields from employees, which may be nil.
func NewPayrollRepository(employees *EmployeeRepository) *PayrollRepository {
	return &PayrollRepository{
		records:   make(map[string]payroll.PayrollRecord),
		active:    make(map[periodKey]string),
		employees: employees,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func keyOf(r payroll.PayrollRecord) periodKey {
	return periodKey{employeeID: r.EmployeeID, month: r.PeriodMonth, year: r.PeriodYear}
}

func (r *PayrollRepository) join(rec payroll.PayrollRecord) payroll.PayrollRecord {
	if r.employees == nil {
		return rec
	}
	e, ok := r.employees.lookup(rec.EmployeeID)
	if !ok {
		return rec
	}
	name, code, dept, desig := e.FullName, e.EmployeeCode, e.Department, e.Designation
	rec.EmployeeName = &name
	rec.EmployeeCode = &code
	rec.Department = &dept
	rec.Designation = &desig
	return rec
}

// ========== SETTINGS ==========

func (r *PayrollRepository) GetSettings(ctx context.Context) (payroll.PayrollSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settings == nil {
		return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
	}
	return *r.settings, nil
}

func (r *PayrollRepository) UpsertSettings(ctx context.Context, settings payroll.PayrollSettings) (payroll.PayrollSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	settings.CreatedAt = now
	if r.settings != nil {
		settings.CreatedAt = r.settings.CreatedAt
	}
	settings.UpdatedAt = now
	r.settings = &settings
	return settings, nil
}

// ========== RECORDS ==========

func (r *PayrollRepository) ListActiveByPeriod(ctx context.Context, period payroll.PayPeriod, employeeIDs []string) ([]payroll.PayrollRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var result []payroll.PayrollRecord
	if employeeIDs == nil {
		for key, id := range r.active {
			if key.month == period.Month && key.year == period.Year {
				result = append(result, r.join(r.records[id]))
			}
		}
	} else {
		for _, employeeID := range employeeIDs {
			id, ok := r.active[periodKey{employeeID: employeeID, month: period.Month, year: period.Year}]
			if ok {
				result = append(result, r.join(r.records[id]))
			}
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}

func (r *PayrollRepository) CreateRecord(ctx context.Context, record payroll.PayrollRecord, supersede bool) (payroll.PayrollRecord, error) {
	if err := ctx.Err(); err != nil {
		return payroll.PayrollRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	key := keyOf(record)

	if activeID, ok := r.active[key]; ok {
		current := r.records[activeID]
		if !supersede {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		if current.Status == payroll.StatusPaid {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyPaid
		}
		current.SupersededAt = &now
		current.SupersededBy = &record.ID
		current.UpdatedAt = now
		r.records[activeID] = current
	}

	version := 0
	for _, existing := range r.records {
		if keyOf(existing) == key && existing.Version > version {
			version = existing.Version
		}
	}

	record.Version = version + 1
	record.SupersededAt = nil
	record.SupersededBy = nil
	record.CreatedAt = now
	record.UpdatedAt = now
	r.records[record.ID] = record
	r.active[key] = record.ID

	return r.join(record), nil
}

func (r *PayrollRepository) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return r.join(rec), nil
}

func (r *PayrollRepository) UpdateStatus(ctx context.Context, id string, fn func(payroll.PayrollRecord) (payroll.PayrollRecord, error)) (payroll.PayrollRecord, error) {
	if err := ctx.Err(); err != nil {
		return payroll.PayrollRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}

	next, err := fn(r.join(current))
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	// Only lifecycle columns are writable here.
	current.Status = next.Status
	current.PaymentDate = next.PaymentDate
	current.PaymentMode = next.PaymentMode
	current.StatusUpdatedBy = next.StatusUpdatedBy
	current.StatusUpdatedAt = next.StatusUpdatedAt
	current.UpdatedAt = r.now()
	r.records[id] = current

	return r.join(current), nil
}

func (r *PayrollRepository) matching(filter payroll.PayrollFilter) []payroll.PayrollRecord {
	var result []payroll.PayrollRecord
	for _, rec := range r.records {
		if rec.IsSuperseded() && !filter.IncludeSuperseded {
			continue
		}
		if filter.PeriodMonth != nil && rec.PeriodMonth != *filter.PeriodMonth {
			continue
		}
		if filter.PeriodYear != nil && rec.PeriodYear != *filter.PeriodYear {
			continue
		}
		if filter.Status != nil && rec.Status != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		rec = r.join(rec)
		if filter.Department != nil && (rec.Department == nil || !strings.EqualFold(*rec.Department, *filter.Department)) {
			continue
		}
		result = append(result, rec)
	}
	return result
}

func (r *PayrollRepository) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	r.mu.Lock()
	records := r.matching(filter)
	r.mu.Unlock()

	desc := filter.SortOrder != "asc"
	compare := func(a, b payroll.PayrollRecord) int {
		switch filter.SortBy {
		case "period":
			if a.PeriodYear != b.PeriodYear {
				return a.PeriodYear - b.PeriodYear
			}
			return a.PeriodMonth - b.PeriodMonth
		case "employee_name":
			return strings.Compare(deref(a.EmployeeName), deref(b.EmployeeName))
		case "net_salary":
			return a.Summary.Net.Cmp(b.Summary.Net)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		c := compare(records[i], records[j])
		if c == 0 {
			return records[i].ID < records[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(records))
	page, limit := filter.Page, filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(records) {
		return []payroll.PayrollRecord{}, total, nil
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], total, nil
}

func (r *PayrollRepository) GetSummary(ctx context.Context, filter payroll.PayrollFilter) (payroll.PayrollSummaryResponse, error) {
	r.mu.Lock()
	records := r.matching(filter)
	r.mu.Unlock()

	var s payroll.PayrollSummaryResponse
	for _, rec := range records {
		s.TotalRecords++
		s.TotalGrossSalary = s.TotalGrossSalary.Add(rec.Summary.Gross)
		s.TotalDeductions = s.TotalDeductions.Add(rec.Summary.TotalDeductions)
		s.TotalNetSalary = s.TotalNetSalary.Add(rec.Summary.Net)
		switch rec.Status {
		case payroll.StatusGenerated:
			s.GeneratedCount++
		case payroll.StatusApproved:
			s.ApprovedCount++
		case payroll.StatusRejected:
			s.RejectedCount++
		case payroll.StatusPaid:
			s.PaidCount++
		}
	}
	return s, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

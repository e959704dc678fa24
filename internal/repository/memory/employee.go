package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
)

// EmployeeRepository is an in-process employee directory snapshot.
type EmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewEmployeeRepository(seed ...employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{employees: make(map[string]employee.Employee, len(seed))}
	for _, e := range seed {
		r.employees[e.ID] = e
	}
	return r
}

// Put inserts or replaces an employee.
func (r *EmployeeRepository) Put(e employee.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[e.ID] = e
}

func (r *EmployeeRepository) lookup(id string) (employee.Employee, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.employees[id]
	return e, ok
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := r.lookup(id)
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *EmployeeRepository) ListEligible(ctx context.Context, filter employee.EligibilityFilter) ([]employee.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids map[string]struct{}
	if filter.EmployeeIDs != nil {
		ids = make(map[string]struct{}, len(filter.EmployeeIDs))
		for _, id := range filter.EmployeeIDs {
			ids[id] = struct{}{}
		}
	}

	r.mu.RLock()
	result := make([]employee.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		if !e.IsActive() && !filter.IncludeInactive {
			continue
		}
		if filter.Department != nil && !strings.EqualFold(strings.TrimSpace(e.Department), strings.TrimSpace(*filter.Department)) {
			continue
		}
		if ids != nil {
			if _, ok := ids[e.ID]; !ok {
				continue
			}
		}
		result = append(result, e)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeCode != result[j].EmployeeCode {
			return result[i].EmployeeCode < result[j].EmployeeCode
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

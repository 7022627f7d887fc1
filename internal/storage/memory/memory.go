// Package memory provides an in-memory Store used by tests and for local
// development without a database file.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"contas/internal/core"
	"contas/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type tupleKey struct {
	participantID int64
	categoryID    int64
	period        core.Period
}

type Store struct {
	mu sync.Mutex

	participants map[int64]core.Participant
	categories   map[int64]core.Category
	expenses     map[int64]core.ExpenseEntry
	byTuple      map[tupleKey]int64
	templates    map[int64]core.RecurringTemplate
	profiles     map[int64]core.SalaryProfile // keyed by participant id
	deductions   map[int64]core.Deduction
	jobs         map[string]storage.ExtractionJob

	nextID int64
}

// New creates an empty store seeded with the standard two participants.
func New() *Store {
	s := &Store{
		participants: make(map[int64]core.Participant),
		categories:   make(map[int64]core.Category),
		expenses:     make(map[int64]core.ExpenseEntry),
		byTuple:      make(map[tupleKey]int64),
		templates:    make(map[int64]core.RecurringTemplate),
		profiles:     make(map[int64]core.SalaryProfile),
		deductions:   make(map[int64]core.Deduction),
		jobs:         make(map[string]storage.ExtractionJob),
	}
	s.participants[1] = core.Participant{ID: 1, Name: "Ana", Color: core.ColorPink, Income: core.IncomeVariable}
	s.participants[2] = core.Participant{ID: 2, Name: "Bruno", Color: core.ColorBlue, Income: core.IncomeFixed}
	return s
}

func (s *Store) next() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Close() error { return nil }

func (s *Store) GetParticipant(ctx context.Context, id int64) (core.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		return core.Participant{}, fmt.Errorf("participant %d: %w", id, core.ErrNotFound)
	}
	return p, nil
}

func (s *Store) ListParticipants(ctx context.Context) ([]core.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			return core.Category{}, fmt.Errorf("category %q: %w", name, core.ErrConflict)
		}
	}
	c := core.Category{ID: s.next(), Name: name}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CountExpensesByCategory(ctx context.Context, categoryID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.expenses {
		if e.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpsertExpense(ctx context.Context, entry core.ExpenseEntry) (core.ExpenseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tupleKey{entry.ParticipantID, entry.CategoryID, entry.Period}
	if id, ok := s.byTuple[key]; ok {
		existing := s.expenses[id]
		existing.Amount = entry.Amount
		existing.TemplateID = entry.TemplateID
		s.expenses[id] = existing
		return existing, nil
	}

	entry.ID = s.next()
	entry.CreatedAt = time.Now().UTC()
	s.expenses[entry.ID] = entry
	s.byTuple[key] = entry.ID
	return entry, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	delete(s.expenses, id)
	delete(s.byTuple, tupleKey{e.ParticipantID, e.CategoryID, e.Period})
	return nil
}

func (s *Store) DeleteExpenseByTuple(ctx context.Context, participantID, categoryID int64, period core.Period) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tupleKey{participantID, categoryID, period}
	id, ok := s.byTuple[key]
	if !ok {
		return false, nil
	}
	delete(s.expenses, id)
	delete(s.byTuple, key)
	return true, nil
}

func (s *Store) DeleteExpensesByTemplate(ctx context.Context, templateID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.expenses {
		if e.TemplateID == templateID {
			delete(s.expenses, id)
			delete(s.byTuple, tupleKey{e.ParticipantID, e.CategoryID, e.Period})
			n++
		}
	}
	return n, nil
}

func (s *Store) ListExpenses(ctx context.Context, year, month int) ([]core.ExpenseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ExpenseEntry
	for _, e := range s.expenses {
		if e.Period.Year != year {
			continue
		}
		if month > 0 && e.Period.Month != month {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListExpensesByCategory(ctx context.Context, categoryID int64) ([]core.ExpenseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ExpenseEntry
	for _, e := range s.expenses {
		if e.CategoryID == categoryID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateTemplate(ctx context.Context, tpl core.RecurringTemplate) (core.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl.ID = s.next()
	s.templates[tpl.ID] = tpl
	return tpl, nil
}

func (s *Store) GetTemplate(ctx context.Context, id int64) (core.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[id]
	if !ok {
		return core.RecurringTemplate{}, fmt.Errorf("template %d: %w", id, core.ErrNotFound)
	}
	return tpl, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringTemplate, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, tpl core.RecurringTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[tpl.ID]; !ok {
		return fmt.Errorf("template %d: %w", tpl.ID, core.ErrNotFound)
	}
	s.templates[tpl.ID] = tpl
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return fmt.Errorf("template %d: %w", id, core.ErrNotFound)
	}
	delete(s.templates, id)
	for eid, e := range s.expenses {
		if e.TemplateID == id {
			e.TemplateID = 0
			s.expenses[eid] = e
		}
	}
	return nil
}

func (s *Store) UpsertSalaryProfile(ctx context.Context, profile core.SalaryProfile) (core.SalaryProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.profiles[profile.ParticipantID]
	if ok {
		profile.ID = existing.ID
	} else {
		profile.ID = s.next()
	}
	profile.UpdatedAt = time.Now().UTC()
	s.profiles[profile.ParticipantID] = profile
	return profile, nil
}

func (s *Store) GetSalaryProfile(ctx context.Context, participantID int64) (core.SalaryProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[participantID]
	if !ok {
		return core.SalaryProfile{}, fmt.Errorf("salary profile for participant %d: %w", participantID, core.ErrNotFound)
	}
	return p, nil
}

func (s *Store) DeleteSalaryProfile(ctx context.Context, participantID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[participantID]; !ok {
		return fmt.Errorf("salary profile for participant %d: %w", participantID, core.ErrNotFound)
	}
	delete(s.profiles, participantID)
	return nil
}

func (s *Store) CreateDeduction(ctx context.Context, d core.Deduction) (core.Deduction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.next()
	d.CreatedAt = time.Now().UTC()
	s.deductions[d.ID] = d
	return d, nil
}

func (s *Store) ListDeductions(ctx context.Context, participantID int64, period core.Period) ([]core.Deduction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Deduction
	for _, d := range s.deductions {
		if d.ParticipantID == participantID && d.Period == period {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteDeduction(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deductions[id]; !ok {
		return fmt.Errorf("deduction %d: %w", id, core.ErrNotFound)
	}
	delete(s.deductions, id)
	return nil
}

func (s *Store) CreateExtractionJob(ctx context.Context, job storage.ExtractionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("extraction job %s: %w", job.ID, core.ErrConflict)
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *Store) GetExtractionJob(ctx context.Context, id string) (storage.ExtractionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return storage.ExtractionJob{}, fmt.Errorf("extraction job %s: %w", id, core.ErrNotFound)
	}
	return job, nil
}

func (s *Store) ListPendingExtractionJobs(ctx context.Context, limit int) ([]storage.ExtractionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []storage.ExtractionJob
	for _, job := range s.jobs {
		if job.Status == storage.JobPending {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt < jobs[j].CreatedAt })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (s *Store) UpdateExtractionJob(ctx context.Context, job storage.ExtractionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return fmt.Errorf("extraction job %s: %w", job.ID, core.ErrNotFound)
	}
	s.jobs[job.ID] = job
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"contas/internal/core"
)

// Ensure SQLiteRepository implements Store.
var _ Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Ping checks database connectivity, used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// wrapConstraint maps SQLite constraint violations onto the error taxonomy.
func wrapConstraint(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", core.ErrConflict, err)
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: %v", core.ErrNotFound, err)
	}
	return err
}

func (r *SQLiteRepository) GetParticipant(ctx context.Context, id int64) (core.Participant, error) {
	var p core.Participant
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, color, income_model FROM participants WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.Color, &p.Income)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Participant{}, fmt.Errorf("participant %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListParticipants(ctx context.Context) ([]core.Participant, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, color, income_model FROM participants ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []core.Participant
	for rows.Next() {
		var p core.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Income); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", wrapConstraint(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	return core.Category{ID: id, Name: name}, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", wrapConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CountExpensesByCategory(ctx context.Context, categoryID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses WHERE category_id = ?", categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count expenses by category: %w", err)
	}
	return n, nil
}

// UpsertExpense relies on the unique (participant, category, month, year)
// index so that concurrent upserts for the same tuple serialize to a single
// winning row instead of duplicating.
func (r *SQLiteRepository) UpsertExpense(ctx context.Context, entry core.ExpenseEntry) (core.ExpenseEntry, error) {
	var templateID sql.NullInt64
	if entry.TemplateID > 0 {
		templateID = sql.NullInt64{Int64: entry.TemplateID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (participant_id, category_id, amount_cents, month, year, template_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (participant_id, category_id, month, year)
		DO UPDATE SET amount_cents = excluded.amount_cents, template_id = excluded.template_id`,
		entry.ParticipantID, entry.CategoryID, entry.Amount.Cents,
		entry.Period.Month, entry.Period.Year, templateID,
	)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("upsert expense: %w", wrapConstraint(err))
	}

	stored, err := r.getExpenseByTuple(ctx, entry.ParticipantID, entry.CategoryID, entry.Period)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("read back upserted expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense upserted",
		"id", stored.ID,
		"participant_id", stored.ParticipantID,
		"category_id", stored.CategoryID,
		"amount_cents", stored.Amount.Cents,
		"period", stored.Period.String())

	return stored, nil
}

func (r *SQLiteRepository) getExpenseByTuple(ctx context.Context, participantID, categoryID int64, period core.Period) (core.ExpenseEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, participant_id, category_id, amount_cents, month, year, template_id, created_at
		FROM expenses
		WHERE participant_id = ? AND category_id = ? AND month = ? AND year = ?`,
		participantID, categoryID, period.Month, period.Year)
	return scanExpense(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// parseTimestamp handles the formats SQLite hands back for timestamp
// columns: CURRENT_TIMESTAMP text and RFC 3339 strings we wrote ourselves.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func scanExpense(row rowScanner) (core.ExpenseEntry, error) {
	var (
		e          core.ExpenseEntry
		templateID sql.NullInt64
		createdAt  string
	)
	err := row.Scan(&e.ID, &e.ParticipantID, &e.CategoryID, &e.Amount.Cents,
		&e.Period.Month, &e.Period.Year, &templateID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseEntry{}, core.ErrNotFound
	}
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	if templateID.Valid {
		e.TemplateID = templateID.Int64
	}
	e.CreatedAt = parseTimestamp(createdAt)
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpenseByTuple(ctx context.Context, participantID, categoryID int64, period core.Period) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE participant_id = ? AND category_id = ? AND month = ? AND year = ?",
		participantID, categoryID, period.Month, period.Year)
	if err != nil {
		return false, fmt.Errorf("delete expense by tuple: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete expense by tuple rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteExpensesByTemplate(ctx context.Context, templateID int64) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE template_id = ?", templateID)
	if err != nil {
		return 0, fmt.Errorf("delete expenses by template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expenses by template rows affected: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, year, month int) ([]core.ExpenseEntry, error) {
	query := `
		SELECT id, participant_id, category_id, amount_cents, month, year, template_id, created_at
		FROM expenses WHERE year = ?`
	args := []any{year}
	if month > 0 {
		query += " AND month = ?"
		args = append(args, month)
	}
	query += " ORDER BY month, participant_id, category_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseEntry
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListExpensesByCategory(ctx context.Context, categoryID int64) ([]core.ExpenseEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, participant_id, category_id, amount_cents, month, year, template_id, created_at
		FROM expenses WHERE category_id = ? ORDER BY year, month`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list expenses by category: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseEntry
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateTemplate(ctx context.Context, tpl core.RecurringTemplate) (core.RecurringTemplate, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_templates (participant_id, category_id, amount_cents, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)`,
		tpl.ParticipantID, tpl.CategoryID, tpl.MonthlyAmount.Cents,
		tpl.StartDate.Format("2006-01-02"), tpl.EndDate.Format("2006-01-02"))
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("create template: %w", wrapConstraint(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("template insert id: %w", err)
	}
	tpl.ID = id
	return tpl, nil
}

func (r *SQLiteRepository) GetTemplate(ctx context.Context, id int64) (core.RecurringTemplate, error) {
	var (
		tpl        core.RecurringTemplate
		start, end string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, participant_id, category_id, amount_cents, start_date, end_date
		FROM recurring_templates WHERE id = ?`, id,
	).Scan(&tpl.ID, &tpl.ParticipantID, &tpl.CategoryID, &tpl.MonthlyAmount.Cents, &start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringTemplate{}, fmt.Errorf("template %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("get template: %w", err)
	}
	if tpl.StartDate, err = core.ParseDate(start); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("template %d start date: %w", id, err)
	}
	if tpl.EndDate, err = core.ParseDate(end); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("template %d end date: %w", id, err)
	}
	return tpl, nil
}

func (r *SQLiteRepository) ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, participant_id, category_id, amount_cents, start_date, end_date
		FROM recurring_templates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTemplate
	for rows.Next() {
		var (
			tpl        core.RecurringTemplate
			start, end string
		)
		if err := rows.Scan(&tpl.ID, &tpl.ParticipantID, &tpl.CategoryID, &tpl.MonthlyAmount.Cents, &start, &end); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		if tpl.StartDate, err = core.ParseDate(start); err != nil {
			return nil, fmt.Errorf("template %d start date: %w", tpl.ID, err)
		}
		if tpl.EndDate, err = core.ParseDate(end); err != nil {
			return nil, fmt.Errorf("template %d end date: %w", tpl.ID, err)
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTemplate(ctx context.Context, tpl core.RecurringTemplate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_templates
		SET participant_id = ?, category_id = ?, amount_cents = ?, start_date = ?, end_date = ?
		WHERE id = ?`,
		tpl.ParticipantID, tpl.CategoryID, tpl.MonthlyAmount.Cents,
		tpl.StartDate.Format("2006-01-02"), tpl.EndDate.Format("2006-01-02"), tpl.ID)
	if err != nil {
		return fmt.Errorf("update template: %w", wrapConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update template rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("template %d: %w", tpl.ID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, id int64) error {
	// Materialized entries keep their tag via ON DELETE semantics handled by
	// the caller; here only the template row goes away.
	if _, err := r.db.ExecContext(ctx, "UPDATE expenses SET template_id = NULL WHERE template_id = ?", id); err != nil {
		return fmt.Errorf("untag template expenses: %w", err)
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM recurring_templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("template %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) UpsertSalaryProfile(ctx context.Context, profile core.SalaryProfile) (core.SalaryProfile, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO salary_profiles (participant_id, income_model, fixed_cents, hourly_rate_cents, currency, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (participant_id)
		DO UPDATE SET income_model = excluded.income_model,
			fixed_cents = excluded.fixed_cents,
			hourly_rate_cents = excluded.hourly_rate_cents,
			currency = excluded.currency,
			updated_at = excluded.updated_at`,
		profile.ParticipantID, profile.Income, profile.FixedAmount.Cents,
		profile.HourlyRate.Cents, profile.Currency, now)
	if err != nil {
		return core.SalaryProfile{}, fmt.Errorf("upsert salary profile: %w", wrapConstraint(err))
	}
	return r.GetSalaryProfile(ctx, profile.ParticipantID)
}

func (r *SQLiteRepository) GetSalaryProfile(ctx context.Context, participantID int64) (core.SalaryProfile, error) {
	var (
		p         core.SalaryProfile
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, participant_id, income_model, fixed_cents, hourly_rate_cents, currency, updated_at
		FROM salary_profiles WHERE participant_id = ?`, participantID,
	).Scan(&p.ID, &p.ParticipantID, &p.Income, &p.FixedAmount.Cents, &p.HourlyRate.Cents, &p.Currency, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SalaryProfile{}, fmt.Errorf("salary profile for participant %d: %w", participantID, core.ErrNotFound)
	}
	if err != nil {
		return core.SalaryProfile{}, fmt.Errorf("get salary profile: %w", err)
	}
	p.UpdatedAt = parseTimestamp(updatedAt)
	return p, nil
}

func (r *SQLiteRepository) DeleteSalaryProfile(ctx context.Context, participantID int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM salary_profiles WHERE participant_id = ?", participantID)
	if err != nil {
		return fmt.Errorf("delete salary profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete salary profile rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("salary profile for participant %d: %w", participantID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CreateDeduction(ctx context.Context, d core.Deduction) (core.Deduction, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO deductions (participant_id, description, amount_cents, due_date, month, year)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ParticipantID, d.Description, d.Amount.Cents,
		d.DueDate.Format("2006-01-02"), d.Period.Month, d.Period.Year)
	if err != nil {
		return core.Deduction{}, fmt.Errorf("create deduction: %w", wrapConstraint(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Deduction{}, fmt.Errorf("deduction insert id: %w", err)
	}
	d.ID = id
	return d, nil
}

func (r *SQLiteRepository) ListDeductions(ctx context.Context, participantID int64, period core.Period) ([]core.Deduction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, participant_id, description, amount_cents, due_date, month, year, created_at
		FROM deductions WHERE participant_id = ? AND month = ? AND year = ?
		ORDER BY due_date, id`,
		participantID, period.Month, period.Year)
	if err != nil {
		return nil, fmt.Errorf("list deductions: %w", err)
	}
	defer rows.Close()

	var out []core.Deduction
	for rows.Next() {
		var (
			d                  core.Deduction
			dueDate, createdAt string
		)
		if err := rows.Scan(&d.ID, &d.ParticipantID, &d.Description, &d.Amount.Cents,
			&dueDate, &d.Period.Month, &d.Period.Year, &createdAt); err != nil {
			return nil, fmt.Errorf("scan deduction: %w", err)
		}
		d.CreatedAt = parseTimestamp(createdAt)
		if d.DueDate, err = core.ParseDate(dueDate); err != nil {
			return nil, fmt.Errorf("deduction %d due date: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteDeduction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM deductions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete deduction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete deduction rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deduction %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CreateExtractionJob(ctx context.Context, job ExtractionJob) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO extraction_jobs (id, status, mime_type, document, candidates, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Status, job.MIMEType, job.Document, job.Candidates, job.Error, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create extraction job: %w", wrapConstraint(err))
	}
	return nil
}

func (r *SQLiteRepository) GetExtractionJob(ctx context.Context, id string) (ExtractionJob, error) {
	var job ExtractionJob
	err := r.db.QueryRowContext(ctx, `
		SELECT id, status, mime_type, document, candidates, error, created_at, updated_at
		FROM extraction_jobs WHERE id = ?`, id,
	).Scan(&job.ID, &job.Status, &job.MIMEType, &job.Document, &job.Candidates, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ExtractionJob{}, fmt.Errorf("extraction job %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return ExtractionJob{}, fmt.Errorf("get extraction job: %w", err)
	}
	return job, nil
}

func (r *SQLiteRepository) ListPendingExtractionJobs(ctx context.Context, limit int) ([]ExtractionJob, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, status, mime_type, document, candidates, error, created_at, updated_at
		FROM extraction_jobs WHERE status = ? ORDER BY created_at ASC LIMIT ?`,
		JobPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending extraction jobs: %w", err)
	}
	defer rows.Close()

	var jobs []ExtractionJob
	for rows.Next() {
		var job ExtractionJob
		if err := rows.Scan(&job.ID, &job.Status, &job.MIMEType, &job.Document, &job.Candidates, &job.Error, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan extraction job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *SQLiteRepository) UpdateExtractionJob(ctx context.Context, job ExtractionJob) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE extraction_jobs
		SET status = ?, candidates = ?, error = ?, updated_at = ?
		WHERE id = ?`,
		job.Status, job.Candidates, job.Error, job.UpdatedAt, job.ID)
	if err != nil {
		return fmt.Errorf("update extraction job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update extraction job rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("extraction job %s: %w", job.ID, core.ErrNotFound)
	}
	return nil
}

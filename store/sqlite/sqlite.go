/*
Package sqlite provides a SQLite-backed implementation of store.Store.

PURPOSE:
  Default backend of the review service. Persists employee baselines, the
  two request collections awaiting review, and the holiday calendar that
  approved holiday requests edit.

KEY TABLES:
  employees:               Baseline scalar fields (JSON) and photo
  employee_addresses:      One row per address, ordered by position
  employee_documents:      One row per document, ordered by position
  update_requests:         Profile edits with their raw change-set
  holiday_change_requests: Holiday calendar edits awaiting review
  holiday_change_entries:  ADD_HOLIDAY / REMOVE_HOLIDAY lines of a request
  holidays:                The calendar itself, unique on (date, name)

DECISIONS:
  Approve and reject are single conditional UPDATEs guarded by
  status = 'PENDING'. When no row changes, a follow-up lookup tells a
  missing request (ErrRequestNotFound) from a decided one (ErrNotPending).
  Approving a holiday request applies its entries in the same transaction.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In-memory databases are pinned to a
  single connection.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  s, err := sqlite.New("./data/profile-review.db")
  if err != nil {
      return err
  }
  defer s.Close()

SEE ALSO:
  - store/store.go: Store interface and submission helpers
  - store/postgres: PostgreSQL implementation
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		fields_json TEXT NOT NULL DEFAULT '{}',
		photo_url TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employee_addresses (
		id TEXT NOT NULL,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		address_type TEXT NOT NULL,
		house_no TEXT NOT NULL DEFAULT '',
		street_name TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		pincode TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (employee_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_addresses_employee
		ON employee_addresses(employee_id, position);

	CREATE TABLE IF NOT EXISTS employee_documents (
		id TEXT NOT NULL,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		doc_type TEXT NOT NULL DEFAULT '',
		file_url TEXT NOT NULL DEFAULT '',
		uploaded_at TEXT NOT NULL DEFAULT '',
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (employee_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_employee
		ON employee_documents(employee_id, position);

	-- Profile update requests. change_set keeps the submitted bytes, which
	-- may be a JSON object or a JSON string wrapping one.
	CREATE TABLE IF NOT EXISTS update_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		employee_name TEXT NOT NULL DEFAULT '',
		request_kind TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		admin_comment TEXT NOT NULL DEFAULT '',
		change_set TEXT,
		created_at TEXT NOT NULL,
		decided_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_update_requests_status
		ON update_requests(status, created_at);

	CREATE TABLE IF NOT EXISTS holiday_change_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		employee_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PENDING',
		admin_comment TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		decided_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_holiday_requests_status
		ON holiday_change_requests(status, created_at);

	CREATE TABLE IF NOT EXISTS holiday_change_entries (
		request_id TEXT NOT NULL REFERENCES holiday_change_requests(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		update_type TEXT NOT NULL,
		holiday_name TEXT NOT NULL DEFAULT '',
		holiday_date TEXT NOT NULL,
		PRIMARY KEY (request_id, position)
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(date, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a database transaction. Callers hold s.mu.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// PROFILES
// =============================================================================

// SaveProfile replaces the employee row and all of its addresses and
// documents.
func (s *Store) SaveProfile(ctx context.Context, b profile.Baseline) error {
	b, err := store.PrepareProfile(b)
	if err != nil {
		return err
	}
	fields, err := store.EncodeFields(b.Fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO employees (id, fields_json, photo_url, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				fields_json = excluded.fields_json,
				photo_url = excluded.photo_url,
				updated_at = excluded.updated_at
		`, b.EmployeeID, fields, b.PhotoURL, s.now().UTC().Format(time.RFC3339))
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM employee_addresses WHERE employee_id = ?", b.EmployeeID); err != nil {
			return err
		}
		for i, a := range b.Addresses {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO employee_addresses (id, employee_id, position, address_type,
					house_no, street_name, city, state, country, pincode)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, a.AddressID, b.EmployeeID, i, string(a.AddressType),
				a.HouseNo, a.StreetName, a.City, a.State, a.Country, a.Pincode)
			if err != nil {
				return fmt.Errorf("insert address %s: %w", a.AddressID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM employee_documents WHERE employee_id = ?", b.EmployeeID); err != nil {
			return err
		}
		for i, d := range b.Documents {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO employee_documents (id, employee_id, position, doc_type,
					file_url, uploaded_at, verified)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, d.DocumentID, b.EmployeeID, i, d.DocType, d.FileURL, d.UploadedAt, d.Verified)
			if err != nil {
				return fmt.Errorf("insert document %s: %w", d.DocumentID, err)
			}
		}
		return nil
	})
}

// FetchBaselineProfile loads the stored profile of an employee.
func (s *Store) FetchBaselineProfile(ctx context.Context, employeeID string) (*profile.Baseline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fieldsJSON string
	b := profile.Baseline{EmployeeID: employeeID}
	err := s.db.QueryRowContext(ctx,
		"SELECT fields_json, photo_url FROM employees WHERE id = ?", employeeID,
	).Scan(&fieldsJSON, &b.PhotoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", profile.ErrProfileNotFound, employeeID)
	}
	if err != nil {
		return nil, err
	}

	if b.Fields, err = store.DecodeFields([]byte(fieldsJSON)); err != nil {
		return nil, err
	}
	if b.Addresses, err = s.queryAddresses(ctx, employeeID); err != nil {
		return nil, err
	}
	if b.Documents, err = s.queryDocuments(ctx, employeeID); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) queryAddresses(ctx context.Context, employeeID string) ([]profile.AddressRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, address_type, house_no, street_name, city, state, country, pincode
		FROM employee_addresses
		WHERE employee_id = ?
		ORDER BY position ASC
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := []profile.AddressRecord{}
	for rows.Next() {
		var a profile.AddressRecord
		var addrType string
		if err := rows.Scan(&a.AddressID, &addrType, &a.HouseNo, &a.StreetName,
			&a.City, &a.State, &a.Country, &a.Pincode); err != nil {
			return nil, err
		}
		a.AddressType = profile.AddressType(addrType)
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (s *Store) queryDocuments(ctx context.Context, employeeID string) ([]profile.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc_type, file_url, uploaded_at, verified
		FROM employee_documents
		WHERE employee_id = ?
		ORDER BY position ASC
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []profile.DocumentRecord{}
	for rows.Next() {
		var d profile.DocumentRecord
		if err := rows.Scan(&d.DocumentID, &d.DocType, &d.FileURL, &d.UploadedAt, &d.Verified); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// =============================================================================
// UPDATE REQUESTS
// =============================================================================

// SubmitUpdateRequest stores a new PENDING update request.
func (s *Store) SubmitUpdateRequest(ctx context.Context, r profile.UpdateRequest) (profile.UpdateRequest, error) {
	r, err := store.PrepareUpdateRequest(r, s.now())
	if err != nil {
		return r, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO update_requests (id, employee_id, employee_name, request_kind,
			status, admin_comment, change_set, created_at)
		VALUES (?, ?, ?, ?, ?, '', ?, ?)
	`, r.RequestID, r.EmployeeID, r.EmployeeName, string(r.Kind), string(r.Status),
		store.ChangeSetColumn(r.ChangeSet), r.CreatedAt.Format(time.RFC3339))
	if isUniqueConstraintError(err) {
		return r, fmt.Errorf("%w: duplicate request id %s", store.ErrInvalidRequest, r.RequestID)
	}
	return r, err
}

const updateRequestColumns = `id, employee_id, employee_name, request_kind, status,
	admin_comment, change_set, created_at`

// GetUpdateRequest retrieves a request by ID in any status.
func (s *Store) GetUpdateRequest(ctx context.Context, id string) (*profile.UpdateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reqs, err := s.queryUpdateRequests(ctx,
		"SELECT "+updateRequestColumns+" FROM update_requests WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: %s", profile.ErrRequestNotFound, id)
	}
	return &reqs[0], nil
}

// ListPendingUpdateRequests returns PENDING requests, oldest first.
func (s *Store) ListPendingUpdateRequests(ctx context.Context) ([]profile.UpdateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryUpdateRequests(ctx, `
		SELECT `+updateRequestColumns+`
		FROM update_requests
		WHERE status = 'PENDING'
		ORDER BY created_at ASC, rowid ASC
	`)
}

func (s *Store) queryUpdateRequests(ctx context.Context, query string, args ...any) ([]profile.UpdateRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []profile.UpdateRequest{}
	for rows.Next() {
		var r profile.UpdateRequest
		var kind, status, createdAt string
		var changeSet *string
		if err := rows.Scan(&r.RequestID, &r.EmployeeID, &r.EmployeeName, &kind, &status,
			&r.AdminComment, &changeSet, &createdAt); err != nil {
			return nil, err
		}
		r.Kind = profile.RequestKind(kind)
		r.Status = profile.Status(status)
		r.ChangeSet = store.ChangeSetFromColumn(changeSet)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *Store) ApproveUpdateRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decide(ctx, s.db, "update_requests", id, profile.StatusApproved, "")
}

func (s *Store) RejectUpdateRequest(ctx context.Context, id, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decide(ctx, s.db, "update_requests", id, profile.StatusRejected, comment)
}

// decide moves a PENDING row of table to status. table is one of the two
// request tables, never caller input.
func (s *Store) decide(ctx context.Context, db execer, table, id string, to profile.Status, comment string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE `+table+`
		SET status = ?, admin_comment = ?, decided_at = ?
		WHERE id = ? AND status = 'PENDING'
	`, string(to), comment, s.now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return err
	}
	return store.DecisionError(id, exists > 0)
}

// =============================================================================
// HOLIDAY REQUESTS
// =============================================================================

// SubmitHolidayRequest stores a new PENDING holiday change request with its
// entries.
func (s *Store) SubmitHolidayRequest(ctx context.Context, r profile.HolidayChangeRequest) (profile.HolidayChangeRequest, error) {
	r, err := store.PrepareHolidayRequest(r, s.now())
	if err != nil {
		return r, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO holiday_change_requests (id, employee_id, employee_name, status,
				admin_comment, created_at)
			VALUES (?, ?, ?, ?, '', ?)
		`, r.RequestID, r.EmployeeID, r.EmployeeName, string(r.Status), r.CreatedAt.Format(time.RFC3339))
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: duplicate request id %s", store.ErrInvalidRequest, r.RequestID)
		}
		if err != nil {
			return err
		}
		for i, e := range r.Entries {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO holiday_change_entries (request_id, position, update_type,
					holiday_name, holiday_date)
				VALUES (?, ?, ?, ?, ?)
			`, r.RequestID, i, string(e.UpdateType), e.HolidayName, e.HolidayDate)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return r, err
}

const holidayRequestColumns = "id, employee_id, employee_name, status, admin_comment, created_at"

func (s *Store) GetHolidayRequest(ctx context.Context, id string) (*profile.HolidayChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reqs, err := s.queryHolidayRequests(ctx,
		"SELECT "+holidayRequestColumns+" FROM holiday_change_requests WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: %s", profile.ErrRequestNotFound, id)
	}
	return &reqs[0], nil
}

// ListPendingHolidayRequests returns PENDING holiday requests, oldest first.
func (s *Store) ListPendingHolidayRequests(ctx context.Context) ([]profile.HolidayChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryHolidayRequests(ctx, `
		SELECT `+holidayRequestColumns+`
		FROM holiday_change_requests
		WHERE status = 'PENDING'
		ORDER BY created_at ASC, rowid ASC
	`)
}

// queryHolidayRequests reads the request rows first and their entries second,
// so only one result set is open at a time.
func (s *Store) queryHolidayRequests(ctx context.Context, query string, args ...any) ([]profile.HolidayChangeRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	requests := []profile.HolidayChangeRequest{}
	for rows.Next() {
		var r profile.HolidayChangeRequest
		var status, createdAt string
		if err := rows.Scan(&r.RequestID, &r.EmployeeID, &r.EmployeeName, &status,
			&r.AdminComment, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		r.Status = profile.Status(status)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		requests = append(requests, r)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range requests {
		entries, err := queryHolidayEntries(ctx, s.db, requests[i].RequestID)
		if err != nil {
			return nil, err
		}
		requests[i].Entries = entries
	}
	return requests, nil
}

func queryHolidayEntries(ctx context.Context, db execer, requestID string) ([]profile.HolidayEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT update_type, holiday_name, holiday_date
		FROM holiday_change_entries
		WHERE request_id = ?
		ORDER BY position ASC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []profile.HolidayEntry{}
	for rows.Next() {
		var e profile.HolidayEntry
		var updateType string
		if err := rows.Scan(&updateType, &e.HolidayName, &e.HolidayDate); err != nil {
			return nil, err
		}
		e.UpdateType = profile.HolidayUpdateType(updateType)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ApproveHolidayRequest marks the request APPROVED and applies its entries to
// the holidays table in one transaction.
func (s *Store) ApproveHolidayRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.decide(ctx, tx, "holiday_change_requests", id, profile.StatusApproved, ""); err != nil {
			return err
		}
		entries, err := queryHolidayEntries(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := s.applyHolidayEntry(ctx, tx, e); err != nil {
				return fmt.Errorf("apply %s %s: %w", e.UpdateType, e.HolidayDate, err)
			}
		}
		return nil
	})
}

func (s *Store) applyHolidayEntry(ctx context.Context, db execer, e profile.HolidayEntry) error {
	switch e.UpdateType {
	case profile.HolidayAdd:
		h, err := store.PrepareHoliday(profile.Holiday{Date: e.HolidayDate, Name: e.HolidayName})
		if err != nil {
			return err
		}
		_, err = s.insertHoliday(ctx, db, h)
		return err
	case profile.HolidayRemove:
		_, err := db.ExecContext(ctx,
			"DELETE FROM holidays WHERE date = ? AND name = ?", e.HolidayDate, e.HolidayName)
		return err
	}
	return nil
}

func (s *Store) RejectHolidayRequest(ctx context.Context, id, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decide(ctx, s.db, "holiday_change_requests", id, profile.StatusRejected, comment)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// SaveHoliday inserts a holiday. Saving an existing (date, name) pair returns
// the stored row.
func (s *Store) SaveHoliday(ctx context.Context, h profile.Holiday) (profile.Holiday, error) {
	h, err := store.PrepareHoliday(h)
	if err != nil {
		return h, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertHoliday(ctx, s.db, h)
}

func (s *Store) insertHoliday(ctx context.Context, db execer, h profile.Holiday) (profile.Holiday, error) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date, name) DO NOTHING
	`, h.ID, h.Date, h.Name, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return h, err
	}
	err = db.QueryRowContext(ctx,
		"SELECT id FROM holidays WHERE date = ? AND name = ?", h.Date, h.Name,
	).Scan(&h.ID)
	return h, err
}

// ListHolidays returns the calendar ordered by date, then name.
func (s *Store) ListHolidays(ctx context.Context) ([]profile.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, date, name FROM holidays ORDER BY date ASC, name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := []profile.Holiday{}
	for rows.Next() {
		var h profile.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"holiday_change_entries", "holiday_change_requests", "update_requests",
		"employee_documents", "employee_addresses", "employees", "holidays",
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

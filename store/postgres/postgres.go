/*
Package postgres provides a PostgreSQL-backed implementation of store.Store.

PURPOSE:
  Optional backend for deployments that already run PostgreSQL. Same tables
  and decision semantics as store/sqlite; concurrency is left to the
  database instead of a process-level mutex.

TRANSACTIONS:
  Multi-statement writes run inside pgx.BeginFunc, which commits when the
  callback returns nil and rolls back otherwise.

SEE ALSO:
  - store/sqlite: default backend, same schema
  - store/storetest: behaviour shared by all backends
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/store"
)

// Store implements store.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// New connects to databaseURL and migrates the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	s := &Store{pool: pool, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id          TEXT PRIMARY KEY,
			fields_json TEXT NOT NULL DEFAULT '{}',
			photo_url   TEXT NOT NULL DEFAULT '',
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS employee_addresses (
			id           TEXT NOT NULL,
			employee_id  TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			position     INTEGER NOT NULL,
			address_type TEXT NOT NULL,
			house_no     TEXT NOT NULL DEFAULT '',
			street_name  TEXT NOT NULL DEFAULT '',
			city         TEXT NOT NULL DEFAULT '',
			state        TEXT NOT NULL DEFAULT '',
			country      TEXT NOT NULL DEFAULT '',
			pincode      TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (employee_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS employee_documents (
			id          TEXT NOT NULL,
			employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			position    INTEGER NOT NULL,
			doc_type    TEXT NOT NULL DEFAULT '',
			file_url    TEXT NOT NULL DEFAULT '',
			uploaded_at TEXT NOT NULL DEFAULT '',
			verified    BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (employee_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS update_requests (
			seq           BIGSERIAL,
			id            TEXT PRIMARY KEY,
			employee_id   TEXT NOT NULL,
			employee_name TEXT NOT NULL DEFAULT '',
			request_kind  TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'PENDING',
			admin_comment TEXT NOT NULL DEFAULT '',
			change_set    TEXT,
			created_at    TIMESTAMPTZ NOT NULL,
			decided_at    TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_update_requests_status
			ON update_requests(status, created_at)`,
		`CREATE TABLE IF NOT EXISTS holiday_change_requests (
			seq           BIGSERIAL,
			id            TEXT PRIMARY KEY,
			employee_id   TEXT NOT NULL,
			employee_name TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL DEFAULT 'PENDING',
			admin_comment TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL,
			decided_at    TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_holiday_requests_status
			ON holiday_change_requests(status, created_at)`,
		`CREATE TABLE IF NOT EXISTS holiday_change_entries (
			request_id   TEXT NOT NULL REFERENCES holiday_change_requests(id) ON DELETE CASCADE,
			position     INTEGER NOT NULL,
			update_type  TEXT NOT NULL,
			holiday_name TEXT NOT NULL DEFAULT '',
			holiday_date TEXT NOT NULL,
			PRIMARY KEY (request_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS holidays (
			id         TEXT PRIMARY KEY,
			date       TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (date, name)
		)`,
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, m := range migrations {
			if _, err := tx.Exec(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// =============================================================================
// PROFILES
// =============================================================================

func (s *Store) SaveProfile(ctx context.Context, b profile.Baseline) error {
	b, err := store.PrepareProfile(b)
	if err != nil {
		return err
	}
	fields, err := store.EncodeFields(b.Fields)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO employees (id, fields_json, photo_url, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				fields_json = EXCLUDED.fields_json,
				photo_url = EXCLUDED.photo_url,
				updated_at = EXCLUDED.updated_at
		`, b.EmployeeID, fields, b.PhotoURL, s.now().UTC())
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM employee_addresses WHERE employee_id = $1`, b.EmployeeID); err != nil {
			return err
		}
		for i, a := range b.Addresses {
			_, err := tx.Exec(ctx, `
				INSERT INTO employee_addresses (id, employee_id, position, address_type,
					house_no, street_name, city, state, country, pincode)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`, a.AddressID, b.EmployeeID, i, string(a.AddressType),
				a.HouseNo, a.StreetName, a.City, a.State, a.Country, a.Pincode)
			if err != nil {
				return fmt.Errorf("insert address %s: %w", a.AddressID, err)
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM employee_documents WHERE employee_id = $1`, b.EmployeeID); err != nil {
			return err
		}
		for i, d := range b.Documents {
			_, err := tx.Exec(ctx, `
				INSERT INTO employee_documents (id, employee_id, position, doc_type,
					file_url, uploaded_at, verified)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, d.DocumentID, b.EmployeeID, i, d.DocType, d.FileURL, d.UploadedAt, d.Verified)
			if err != nil {
				return fmt.Errorf("insert document %s: %w", d.DocumentID, err)
			}
		}
		return nil
	})
}

func (s *Store) FetchBaselineProfile(ctx context.Context, employeeID string) (*profile.Baseline, error) {
	var fieldsJSON string
	b := profile.Baseline{EmployeeID: employeeID}
	err := s.pool.QueryRow(ctx,
		`SELECT fields_json, photo_url FROM employees WHERE id = $1`, employeeID,
	).Scan(&fieldsJSON, &b.PhotoURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", profile.ErrProfileNotFound, employeeID)
	}
	if err != nil {
		return nil, err
	}
	if b.Fields, err = store.DecodeFields([]byte(fieldsJSON)); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, address_type, house_no, street_name, city, state, country, pincode
		FROM employee_addresses WHERE employee_id = $1 ORDER BY position
	`, employeeID)
	if err != nil {
		return nil, err
	}
	b.Addresses, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.AddressRecord, error) {
		var a profile.AddressRecord
		var addrType string
		err := row.Scan(&a.AddressID, &addrType, &a.HouseNo, &a.StreetName, &a.City, &a.State, &a.Country, &a.Pincode)
		a.AddressType = profile.AddressType(addrType)
		return a, err
	})
	if err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `
		SELECT id, doc_type, file_url, uploaded_at, verified
		FROM employee_documents WHERE employee_id = $1 ORDER BY position
	`, employeeID)
	if err != nil {
		return nil, err
	}
	b.Documents, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.DocumentRecord, error) {
		var d profile.DocumentRecord
		err := row.Scan(&d.DocumentID, &d.DocType, &d.FileURL, &d.UploadedAt, &d.Verified)
		return d, err
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// =============================================================================
// UPDATE REQUESTS
// =============================================================================

func (s *Store) SubmitUpdateRequest(ctx context.Context, r profile.UpdateRequest) (profile.UpdateRequest, error) {
	r, err := store.PrepareUpdateRequest(r, s.now())
	if err != nil {
		return r, err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO update_requests (id, employee_id, employee_name, request_kind,
			status, change_set, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.RequestID, r.EmployeeID, r.EmployeeName, string(r.Kind), string(r.Status),
		store.ChangeSetColumn(r.ChangeSet), r.CreatedAt)
	if isUniqueViolation(err) {
		return r, fmt.Errorf("%w: duplicate request id %s", store.ErrInvalidRequest, r.RequestID)
	}
	return r, err
}

const updateRequestColumns = `id, employee_id, employee_name, request_kind, status,
	admin_comment, change_set, created_at`

func (s *Store) GetUpdateRequest(ctx context.Context, id string) (*profile.UpdateRequest, error) {
	reqs, err := s.queryUpdateRequests(ctx,
		`SELECT `+updateRequestColumns+` FROM update_requests WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: %s", profile.ErrRequestNotFound, id)
	}
	return &reqs[0], nil
}

func (s *Store) ListPendingUpdateRequests(ctx context.Context) ([]profile.UpdateRequest, error) {
	return s.queryUpdateRequests(ctx, `
		SELECT `+updateRequestColumns+`
		FROM update_requests
		WHERE status = 'PENDING'
		ORDER BY created_at, seq
	`)
}

func (s *Store) queryUpdateRequests(ctx context.Context, query string, args ...any) ([]profile.UpdateRequest, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.UpdateRequest, error) {
		var r profile.UpdateRequest
		var kind, status string
		var changeSet *string
		err := row.Scan(&r.RequestID, &r.EmployeeID, &r.EmployeeName, &kind, &status,
			&r.AdminComment, &changeSet, &r.CreatedAt)
		r.Kind = profile.RequestKind(kind)
		r.Status = profile.Status(status)
		r.ChangeSet = store.ChangeSetFromColumn(changeSet)
		r.CreatedAt = r.CreatedAt.UTC()
		return r, err
	})
}

func (s *Store) ApproveUpdateRequest(ctx context.Context, id string) error {
	return s.decide(ctx, s.pool, "update_requests", id, profile.StatusApproved, "")
}

func (s *Store) RejectUpdateRequest(ctx context.Context, id, comment string) error {
	return s.decide(ctx, s.pool, "update_requests", id, profile.StatusRejected, comment)
}

// decide moves a PENDING row of table to status. table is one of the two
// request tables, never caller input.
func (s *Store) decide(ctx context.Context, q querier, table, id string, to profile.Status, comment string) error {
	tag, err := q.Exec(ctx, `
		UPDATE `+table+`
		SET status = $1, admin_comment = $2, decided_at = $3
		WHERE id = $4 AND status = 'PENDING'
	`, string(to), comment, s.now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	return store.DecisionError(id, exists)
}

// =============================================================================
// HOLIDAY REQUESTS
// =============================================================================

func (s *Store) SubmitHolidayRequest(ctx context.Context, r profile.HolidayChangeRequest) (profile.HolidayChangeRequest, error) {
	r, err := store.PrepareHolidayRequest(r, s.now())
	if err != nil {
		return r, err
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO holiday_change_requests (id, employee_id, employee_name, status, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, r.RequestID, r.EmployeeID, r.EmployeeName, string(r.Status), r.CreatedAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate request id %s", store.ErrInvalidRequest, r.RequestID)
		}
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, e := range r.Entries {
			batch.Queue(`
				INSERT INTO holiday_change_entries (request_id, position, update_type,
					holiday_name, holiday_date)
				VALUES ($1, $2, $3, $4, $5)
			`, r.RequestID, i, string(e.UpdateType), e.HolidayName, e.HolidayDate)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	return r, err
}

const holidayRequestColumns = `id, employee_id, employee_name, status, admin_comment, created_at`

func (s *Store) GetHolidayRequest(ctx context.Context, id string) (*profile.HolidayChangeRequest, error) {
	reqs, err := s.queryHolidayRequests(ctx,
		`SELECT `+holidayRequestColumns+` FROM holiday_change_requests WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: %s", profile.ErrRequestNotFound, id)
	}
	return &reqs[0], nil
}

func (s *Store) ListPendingHolidayRequests(ctx context.Context) ([]profile.HolidayChangeRequest, error) {
	return s.queryHolidayRequests(ctx, `
		SELECT `+holidayRequestColumns+`
		FROM holiday_change_requests
		WHERE status = 'PENDING'
		ORDER BY created_at, seq
	`)
}

func (s *Store) queryHolidayRequests(ctx context.Context, query string, args ...any) ([]profile.HolidayChangeRequest, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	requests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.HolidayChangeRequest, error) {
		var r profile.HolidayChangeRequest
		var status string
		err := row.Scan(&r.RequestID, &r.EmployeeID, &r.EmployeeName, &status, &r.AdminComment, &r.CreatedAt)
		r.Status = profile.Status(status)
		r.CreatedAt = r.CreatedAt.UTC()
		return r, err
	})
	if err != nil {
		return nil, err
	}

	for i := range requests {
		if requests[i].Entries, err = queryHolidayEntries(ctx, s.pool, requests[i].RequestID); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func queryHolidayEntries(ctx context.Context, q querier, requestID string) ([]profile.HolidayEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT update_type, holiday_name, holiday_date
		FROM holiday_change_entries
		WHERE request_id = $1
		ORDER BY position
	`, requestID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.HolidayEntry, error) {
		var e profile.HolidayEntry
		var updateType string
		err := row.Scan(&updateType, &e.HolidayName, &e.HolidayDate)
		e.UpdateType = profile.HolidayUpdateType(updateType)
		return e, err
	})
}

// ApproveHolidayRequest marks the request APPROVED and applies its entries to
// the holidays table in one transaction.
func (s *Store) ApproveHolidayRequest(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.decide(ctx, tx, "holiday_change_requests", id, profile.StatusApproved, ""); err != nil {
			return err
		}
		entries, err := queryHolidayEntries(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, e := range entries {
			switch e.UpdateType {
			case profile.HolidayAdd:
				h, err := store.PrepareHoliday(profile.Holiday{Date: e.HolidayDate, Name: e.HolidayName})
				if err != nil {
					return err
				}
				if _, err := insertHoliday(ctx, tx, h); err != nil {
					return fmt.Errorf("apply %s %s: %w", e.UpdateType, e.HolidayDate, err)
				}
			case profile.HolidayRemove:
				if _, err := tx.Exec(ctx, `DELETE FROM holidays WHERE date = $1 AND name = $2`,
					e.HolidayDate, e.HolidayName); err != nil {
					return fmt.Errorf("apply %s %s: %w", e.UpdateType, e.HolidayDate, err)
				}
			}
		}
		return nil
	})
}

func (s *Store) RejectHolidayRequest(ctx context.Context, id, comment string) error {
	return s.decide(ctx, s.pool, "holiday_change_requests", id, profile.StatusRejected, comment)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h profile.Holiday) (profile.Holiday, error) {
	h, err := store.PrepareHoliday(h)
	if err != nil {
		return h, err
	}
	return insertHoliday(ctx, s.pool, h)
}

// insertHoliday returns the stored row when (date, name) already exists.
func insertHoliday(ctx context.Context, q querier, h profile.Holiday) (profile.Holiday, error) {
	if _, err := q.Exec(ctx, `
		INSERT INTO holidays (id, date, name) VALUES ($1, $2, $3)
		ON CONFLICT (date, name) DO NOTHING
	`, h.ID, h.Date, h.Name); err != nil {
		return h, err
	}
	err := q.QueryRow(ctx, `SELECT id FROM holidays WHERE date = $1 AND name = $2`, h.Date, h.Name).Scan(&h.ID)
	return h, err
}

func (s *Store) ListHolidays(ctx context.Context) ([]profile.Holiday, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, date, name FROM holidays ORDER BY date, name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.Holiday, error) {
		var h profile.Holiday
		err := row.Scan(&h.ID, &h.Date, &h.Name)
		return h, err
	})
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE holiday_change_entries, holiday_change_requests,
		update_requests, employee_documents, employee_addresses, employees, holidays`)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

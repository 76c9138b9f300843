package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/CDLUC3/rslv-go/internal/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store wraps the catalog database and provides transactional CRUD for
// PidDefinition rows plus the piddef_meta bookkeeping singleton. All writes
// are serialized by an internal mutex; the underlying db.SetMaxOpenConns(1)
// already forces this at the driver level, but the mutex also covers the
// read-then-write sequences below (e.g. RefreshMetadata).
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore wraps an already-migrated database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func encodeProperties(props map[string]any) (string, error) {
	if props == nil {
		props = map[string]any{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeProperties(raw string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func validate(def model.PidDefinition) error {
	if def.Scheme == "" {
		return fmt.Errorf("%w: scheme is required", ErrValidation)
	}
	if strings.Contains(def.Scheme, ":") {
		return fmt.Errorf("%w: scheme must not contain ':'", ErrValidation)
	}
	if strings.Contains(def.Prefix, "/") {
		return fmt.Errorf("%w: prefix must not contain '/'", ErrValidation)
	}
	if def.HTTPCode != 0 && (def.HTTPCode < 301 || def.HTTPCode > 308) {
		return fmt.Errorf("%w: http_code %d out of range [301,308]", ErrValidation, def.HTTPCode)
	}
	return nil
}

// Add inserts a new PidDefinition. ErrDuplicate is returned if a row with
// the same (scheme, prefix, value) already exists.
func (s *Store) Add(def model.PidDefinition, nowUnixNs int64) error {
	if err := validate(def); err != nil {
		return err
	}
	if def.Canonical == "" {
		def.Canonical = "${pid}"
	}
	if def.HTTPCode == 0 {
		def.HTTPCode = 302
	}
	uniq := model.ComputeUniq(def.Scheme, def.Prefix, def.Value)
	propsJSON, err := encodeProperties(def.Properties)
	if err != nil {
		return fmt.Errorf("encode properties for %s: %w", uniq, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO piddef (scheme, prefix, value, uniq, target, canonical, http_code,
		                     synonym_for, properties, splitter, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, def.Scheme, def.Prefix, def.Value, uniq, def.Target, def.Canonical, def.HTTPCode,
		def.SynonymFor, propsJSON, def.Splitter, nowUnixNs, nowUnixNs)
	if err != nil {
		if isSQLiteUniqueConstraint(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, uniq)
		}
		return err
	}
	return nil
}

// revisionOf extracts a numeric properties.revision from def, reporting
// whether one was present. JSON numbers decode as float64 via
// encoding/json's default map[string]any handling.
func revisionOf(def model.PidDefinition) (float64, bool) {
	if def.Properties == nil {
		return 0, false
	}
	v, ok := def.Properties["revision"]
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

// Update overwrites an existing PidDefinition identified by its uniq key.
// ErrNotFound is returned if no such row exists. If the incoming
// properties.revision is numeric and less than the stored row's
// properties.revision, the update is refused with ErrStale: a caller's
// view of the definition is older than what is already persisted.
func (s *Store) Update(def model.PidDefinition, nowUnixNs int64) error {
	if err := validate(def); err != nil {
		return err
	}
	if def.Canonical == "" {
		def.Canonical = "${pid}"
	}
	if def.HTTPCode == 0 {
		def.HTTPCode = 302
	}
	uniq := model.ComputeUniq(def.Scheme, def.Prefix, def.Value)
	propsJSON, err := encodeProperties(def.Properties)
	if err != nil {
		return fmt.Errorf("encode properties for %s: %w", uniq, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if incoming, ok := revisionOf(def); ok {
		existing, err := s.getByUniqLocked(uniq)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if existing != nil {
			if stored, ok := revisionOf(*existing); ok && incoming < stored {
				return fmt.Errorf("%w: %s: incoming revision %v < stored revision %v", ErrStale, uniq, incoming, stored)
			}
		}
	}

	result, err := s.db.Exec(`
		UPDATE piddef SET
			target = ?, canonical = ?, http_code = ?, synonym_for = ?,
			properties = ?, splitter = ?, updated = ?
		WHERE uniq = ?
	`, def.Target, def.Canonical, def.HTTPCode, def.SynonymFor, propsJSON, def.Splitter,
		nowUnixNs, uniq)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, uniq)
	}
	return nil
}

// AddOrUpdate inserts def if it doesn't already exist by uniq, or replaces
// every mutable field in place otherwise.
func (s *Store) AddOrUpdate(def model.PidDefinition, nowUnixNs int64) error {
	if err := validate(def); err != nil {
		return err
	}
	if def.Canonical == "" {
		def.Canonical = "${pid}"
	}
	if def.HTTPCode == 0 {
		def.HTTPCode = 302
	}
	uniq := model.ComputeUniq(def.Scheme, def.Prefix, def.Value)
	propsJSON, err := encodeProperties(def.Properties)
	if err != nil {
		return fmt.Errorf("encode properties for %s: %w", uniq, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO piddef (scheme, prefix, value, uniq, target, canonical, http_code,
		                     synonym_for, properties, splitter, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uniq) DO UPDATE SET
			target      = excluded.target,
			canonical   = excluded.canonical,
			http_code   = excluded.http_code,
			synonym_for = excluded.synonym_for,
			properties  = excluded.properties,
			splitter    = excluded.splitter,
			updated     = excluded.updated
	`, def.Scheme, def.Prefix, def.Value, uniq, def.Target, def.Canonical, def.HTTPCode,
		def.SynonymFor, propsJSON, def.Splitter, nowUnixNs, nowUnixNs)
	return err
}

// Delete removes the PidDefinition identified by uniq.
func (s *Store) Delete(uniq string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("DELETE FROM piddef WHERE uniq = ?", uniq)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, uniq)
	}
	return nil
}

func scanPidDefinition(row interface{ Scan(...any) error }) (*model.PidDefinition, error) {
	var def model.PidDefinition
	var propsJSON string
	if err := row.Scan(&def.Scheme, &def.Prefix, &def.Value, &def.Uniq, &def.Target,
		&def.Canonical, &def.HTTPCode, &def.SynonymFor, &propsJSON, &def.Splitter); err != nil {
		return nil, err
	}
	props, err := decodeProperties(propsJSON)
	if err != nil {
		return nil, fmt.Errorf("decode properties for %s: %w", def.Uniq, err)
	}
	def.Properties = props
	return &def, nil
}

const selectColumns = `scheme, prefix, value, uniq, target, canonical, http_code, synonym_for, properties, splitter`

// GetByUniq fetches a single PidDefinition by its uniq key.
func (s *Store) GetByUniq(uniq string) (*model.PidDefinition, error) {
	return s.getByUniqLocked(uniq)
}

// getByUniqLocked is the same query as GetByUniq, named to make clear it is
// safe to call while s.mu is already held (a plain read, no locking of its
// own) from within Update's stale-revision check.
func (s *Store) getByUniqLocked(uniq string) (*model.PidDefinition, error) {
	row := s.db.QueryRow(`SELECT `+selectColumns+` FROM piddef WHERE uniq = ?`, uniq)
	def, err := scanPidDefinition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, uniq)
		}
		return nil, err
	}
	return def, nil
}

// ListSchemes returns every distinct scheme present in the catalog, sorted.
func (s *Store) ListSchemes() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT scheme FROM piddef ORDER BY scheme`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var scheme string
		if err := rows.Scan(&scheme); err != nil {
			return nil, err
		}
		out = append(out, scheme)
	}
	return out, rows.Err()
}

// ListValidSchemes returns every distinct scheme backed by at least one
// definition with a non-null target or a non-null synonym_for: a scheme a
// client could actually resolve or be redirected from, as opposed to a
// scheme present only as a bare catch-all placeholder. Used by /.info's
// valid=true (default) scheme listing.
func (s *Store) ListValidSchemes() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT scheme FROM piddef
		WHERE target IS NOT NULL OR synonym_for IS NOT NULL
		ORDER BY scheme`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var scheme string
		if err := rows.Scan(&scheme); err != nil {
			return nil, err
		}
		out = append(out, scheme)
	}
	return out, rows.Err()
}

// ListPrefixes returns every distinct non-empty prefix defined under scheme,
// sorted.
func (s *Store) ListPrefixes(scheme string) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT prefix FROM piddef WHERE scheme = ? AND prefix != '' ORDER BY prefix`, scheme)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var prefix string
		if err := rows.Scan(&prefix); err != nil {
			return nil, err
		}
		out = append(out, prefix)
	}
	return out, rows.Err()
}

// ListValues returns every distinct value defined under (scheme, prefix), sorted.
func (s *Store) ListValues(scheme, prefix string) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT value FROM piddef WHERE scheme = ? AND prefix = ? ORDER BY value`, scheme, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, rows.Err()
}

// ListUniqs returns every uniq key in the catalog, sorted.
func (s *Store) ListUniqs() ([]string, error) {
	rows, err := s.db.Query(`SELECT uniq FROM piddef ORDER BY uniq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var uniq string
		if err := rows.Scan(&uniq); err != nil {
			return nil, err
		}
		out = append(out, uniq)
	}
	return out, rows.Err()
}

// candidatesForLookup returns every piddef row under scheme whose prefix is
// either prefix or the empty (scheme-wide) prefix, whatever its value.
// Catalog.matchOne filters and ranks these by the longest-value-prefix rule.
func (s *Store) candidatesForLookup(scheme, prefix string) ([]model.PidDefinition, error) {
	rows, err := s.db.Query(`SELECT `+selectColumns+` FROM piddef
		WHERE scheme = ? AND (prefix = ? OR prefix = '')`, scheme, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PidDefinition
	for rows.Next() {
		def, err := scanPidDefinition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *def)
	}
	return out, rows.Err()
}

// Initialize sets the description on the (singleton) piddef_meta row,
// creating it if absent. It does not alter max_value_length; call
// RefreshMetadata afterward to recompute it from the current catalog.
func (s *Store) Initialize(description string, nowUnixNs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO piddef_meta (key, created, updated, description, max_value_length)
		VALUES (0, ?, ?, ?, 0)
		ON CONFLICT(key) DO UPDATE SET
			description = excluded.description,
			updated     = excluded.updated
	`, nowUnixNs, nowUnixNs, description)
	return err
}

// GetMetadata returns the piddef_meta singleton, or ErrNotFound if the
// catalog has never been initialized.
func (s *Store) GetMetadata() (*model.CatalogMetadata, error) {
	row := s.db.QueryRow(`SELECT created, updated, description, max_value_length FROM piddef_meta WHERE key = 0`)
	var m model.CatalogMetadata
	if err := row.Scan(&m.CreatedUnixNs, &m.UpdatedUnixNs, &m.Description, &m.MaxValueLength); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// RefreshMetadata recomputes max_value_length from the longest value
// currently stored in piddef and bumps updated. Called after bulk loads
// and on a periodic maintenance schedule.
func (s *Store) RefreshMetadata(nowUnixNs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxLen sql.NullInt64
	row := s.db.QueryRow(`SELECT MAX(LENGTH(value)) FROM piddef`)
	if err := row.Scan(&maxLen); err != nil {
		return fmt.Errorf("compute max_value_length: %w", err)
	}

	_, err := s.db.Exec(`
		UPDATE piddef_meta SET max_value_length = ?, updated = ? WHERE key = 0
	`, maxLen.Int64, nowUnixNs)
	return err
}

func isSQLiteUniqueConstraint(err error) bool {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	return sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

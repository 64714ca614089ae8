// Package keyring persists the account's validated armored keys and the
// vault gate metadata in SQLite. The keyring is plain storage: callers run
// the assertion layer before anything is stored.
package keyring

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("record not found")

// AccountKey is one stored key of the account keyring.
type AccountKey struct {
	Fingerprint string
	Armored     string
	Private     bool
	CreatedAt   time.Time
}

// KeyStore defines operations for storing and retrieving account keys.
type KeyStore interface {
	// StoreKey saves or updates a key by fingerprint.
	StoreKey(key AccountKey) error
	// LoadKey retrieves the key with the given fingerprint.
	LoadKey(fingerprint string) (AccountKey, error)
	// LoadPrivateKey retrieves the account's private key.
	LoadPrivateKey() (AccountKey, error)
	// ListFingerprints returns all stored key fingerprints.
	ListFingerprints() ([]string, error)
	// DeleteKey deletes the key with the given fingerprint.
	DeleteKey(fingerprint string) error
}

// MetadataStore defines operations for the vault gate metadata.
type MetadataStore interface {
	// GetGateSalt retrieves the PBKDF2 salt for deriving the gate key.
	GetGateSalt() ([]byte, error)
	// SetGateSalt stores or updates the PBKDF2 salt.
	SetGateSalt(salt []byte) error
	// GetVerifierToken retrieves the sealed passphrase verifier.
	GetVerifierToken() ([]byte, error)
	// SetVerifierToken stores or updates the sealed passphrase verifier.
	SetVerifierToken(token []byte) error
}

// SQLiteStore implements KeyStore and MetadataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const (
	metadataTable = "metadata"
	keysTable     = "account_keys"
	saltKey       = "gate_salt"
	verifierKey   = "gate_verifier"
)

// Open opens (or creates) the keyring database at the given DSN and ensures
// the schema exists.
func Open(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an existing database connection. The schema must
// already exist.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) ensureSchema() error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS account_keys (
			fingerprint TEXT PRIMARY KEY,
			armored     TEXT NOT NULL,
			private     BOOLEAN NOT NULL,
			created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) getMetadata(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(
		"SELECT value FROM "+metadataTable+" WHERE key = ?", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return value, err
}

func (s *SQLiteStore) setMetadata(key string, value []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO "+metadataTable+"(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// GetGateSalt retrieves the salt from the metadata table.
func (s *SQLiteStore) GetGateSalt() ([]byte, error) {
	return s.getMetadata(saltKey)
}

// SetGateSalt upserts the salt into the metadata table.
func (s *SQLiteStore) SetGateSalt(salt []byte) error {
	return s.setMetadata(saltKey, salt)
}

// GetVerifierToken retrieves the sealed verifier from the metadata table.
func (s *SQLiteStore) GetVerifierToken() ([]byte, error) {
	return s.getMetadata(verifierKey)
}

// SetVerifierToken upserts the sealed verifier into the metadata table.
func (s *SQLiteStore) SetVerifierToken(token []byte) error {
	return s.setMetadata(verifierKey, token)
}

// StoreKey saves or updates an account key by fingerprint.
func (s *SQLiteStore) StoreKey(key AccountKey) error {
	_, err := s.db.Exec(`
      INSERT INTO account_keys (fingerprint, armored, private)
           VALUES (?, ?, ?)
      ON CONFLICT(fingerprint) DO UPDATE
        SET armored = excluded.armored, private = excluded.private
    `, key.Fingerprint, key.Armored, key.Private)
	return err
}

// LoadKey retrieves the key with the given fingerprint.
func (s *SQLiteStore) LoadKey(fingerprint string) (AccountKey, error) {
	var key AccountKey
	err := s.db.QueryRow(`
      SELECT fingerprint, armored, private, created_at
        FROM account_keys
       WHERE fingerprint = ?
    `, fingerprint).Scan(&key.Fingerprint, &key.Armored, &key.Private, &key.CreatedAt)
	if err == sql.ErrNoRows {
		return AccountKey{}, ErrNotFound
	}
	return key, err
}

// LoadPrivateKey retrieves the account's private key. The keyring holds at
// most one; with several, the oldest wins.
func (s *SQLiteStore) LoadPrivateKey() (AccountKey, error) {
	var key AccountKey
	err := s.db.QueryRow(`
      SELECT fingerprint, armored, private, created_at
        FROM account_keys
       WHERE private = 1
    ORDER BY created_at
       LIMIT 1
    `).Scan(&key.Fingerprint, &key.Armored, &key.Private, &key.CreatedAt)
	if err == sql.ErrNoRows {
		return AccountKey{}, ErrNotFound
	}
	return key, err
}

// ListFingerprints returns all stored key fingerprints.
func (s *SQLiteStore) ListFingerprints() ([]string, error) {
	rows, err := s.db.Query(
		"SELECT fingerprint FROM " + keysTable + " ORDER BY created_at",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fingerprints []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		fingerprints = append(fingerprints, fp)
	}
	return fingerprints, rows.Err()
}

// DeleteKey deletes the key with the given fingerprint.
func (s *SQLiteStore) DeleteKey(fingerprint string) error {
	res, err := s.db.Exec(`DELETE FROM account_keys WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

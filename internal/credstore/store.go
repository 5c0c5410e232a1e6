package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uspizza/loyalty-cli/internal/domain"
)

// Storage keys, matching the names the mobile app uses in device storage.
const (
	KeyAuthToken    = "authToken"
	KeyCustomerData = "customerData"
)

var ErrNotFound = errors.New("credstore: key not found")

// Credential is the pair the receipt endpoint needs. Token may be empty:
// the caller still attempts the request and lets the server reject it.
type Credential struct {
	Token      string
	CustomerID string
}

// Store is a file-backed string-keyed store standing in for the app's
// device storage. Every Get re-reads the file, so a login or logout done
// by another process is picked up on the next invocation.
type Store struct {
	path string
}

func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, "storage.json")}
}

func (s *Store) Get(key string) (string, error) {
	m, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(key, value string) error {
	m, err := s.read()
	if err != nil {
		return err
	}
	m[key] = value
	return s.write(m)
}

func (s *Store) Delete(keys ...string) error {
	m, err := s.read()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(m, k)
	}
	return s.write(m)
}

// Resolve reads the bearer token and the customer id fresh from storage.
// Missing values resolve to empty strings rather than an error, so the
// fetch is always attempted and authorization stays a server concern.
func (s *Store) Resolve() (Credential, error) {
	var cred Credential

	if tok, err := s.Get(KeyAuthToken); err == nil {
		cred.Token = tok
	} else if !errors.Is(err, ErrNotFound) {
		return Credential{}, err
	}

	raw, err := s.Get(KeyCustomerData)
	if errors.Is(err, ErrNotFound) {
		return cred, nil
	}
	if err != nil {
		return Credential{}, err
	}

	var customer domain.Customer
	if err := json.Unmarshal([]byte(raw), &customer); err != nil {
		return Credential{}, fmt.Errorf("credstore: malformed %s: %w", KeyCustomerData, err)
	}
	cred.CustomerID = customer.ID
	return cred, nil
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := map[string]string{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("credstore: corrupt storage file: %w", err)
	}
	return m, nil
}

func (s *Store) write(m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

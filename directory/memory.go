package directory

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/jonwraymond/sessionauth/auth"
	"github.com/jonwraymond/sessionauth/session"
)

// UserEntry is one user in the directory file.
type UserEntry struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
	Hash     string `yaml:"hash"`
}

// Serves links a clinician to a patient they care for.
type Serves struct {
	Clinician int64 `yaml:"clinician"`
	Patient   int64 `yaml:"patient"`
}

// File is the YAML document backing a Memory directory.
type File struct {
	Users  []UserEntry `yaml:"users"`
	Serves []Serves    `yaml:"serves,omitempty"`
}

// Memory is an in-process user directory.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - VerifyCredentials returns (nil, nil) for an unknown name or a wrong
//     secret, and spends the same hashing work in both cases.
type Memory struct {
	mu     sync.RWMutex
	byID   map[int64]*user
	byName map[string]*user
	serves []Serves
	nextID int64
	decoy  *passwordHash
}

type user struct {
	record session.UserRecord
	hash   *passwordHash
	raw    string
}

var _ session.Directory = (*Memory)(nil)

// NewMemory builds a directory from f. Role names are the canonical names
// of auth.AllRoles.
func NewMemory(f File) (*Memory, error) {
	decoyHash, err := HashPassword("decoy")
	if err != nil {
		return nil, err
	}
	decoy, _ := parseHash(decoyHash)

	m := &Memory{
		byID:   make(map[int64]*user, len(f.Users)),
		byName: make(map[string]*user, len(f.Users)),
		decoy:  decoy,
	}
	for i, e := range f.Users {
		if err := m.insert(e); err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
	}
	for i, s := range f.Serves {
		if err := m.link(s); err != nil {
			return nil, fmt.Errorf("serves[%d]: %w", i, err)
		}
	}
	return m, nil
}

// Load reads a directory file.
func Load(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing directory file: %w", err)
	}
	m, err := NewMemory(f)
	if err != nil {
		return nil, fmt.Errorf("validating directory file: %w", err)
	}
	return m, nil
}

func parseRole(name string) (auth.Role, error) {
	r, ok := auth.DefaultRoles().Lookup(name)
	if !ok {
		return auth.RoleUnknown, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, name)
	}
	return r, nil
}

func (m *Memory) insert(e UserEntry) error {
	if e.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidUser)
	}
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidUser)
	}
	role, err := parseRole(e.Role)
	if err != nil {
		return err
	}
	h, err := parseHash(e.Hash)
	if err != nil {
		return fmt.Errorf("user %q: %w", e.Name, err)
	}
	if _, dup := m.byName[e.Name]; dup {
		return fmt.Errorf("%w: %q", ErrUserExists, e.Name)
	}
	if _, dup := m.byID[e.ID]; dup {
		return fmt.Errorf("%w: id %d", ErrUserExists, e.ID)
	}

	u := &user{
		record: session.UserRecord{ID: e.ID, Name: e.Name, FullName: e.FullName, Role: role},
		hash:   h,
		raw:    e.Hash,
	}
	m.byID[e.ID] = u
	m.byName[e.Name] = u
	m.nextID = max(m.nextID, e.ID)
	return nil
}

func (m *Memory) link(s Serves) error {
	c, ok := m.byID[s.Clinician]
	if !ok || c.record.Role != auth.RoleClinician {
		return fmt.Errorf("%w: %d is not a clinician", ErrInvalidUser, s.Clinician)
	}
	p, ok := m.byID[s.Patient]
	if !ok || p.record.Role != auth.RolePatient {
		return fmt.Errorf("%w: %d is not a patient", ErrInvalidUser, s.Patient)
	}
	if !slices.Contains(m.serves, s) {
		m.serves = append(m.serves, s)
	}
	return nil
}

// VerifyCredentials checks secret against the stored hash for name.
func (m *Memory) VerifyCredentials(ctx context.Context, name, secret string) (*session.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	u, ok := m.byName[name]
	m.mu.RUnlock()

	if !ok {
		m.decoy.matches(secret)
		return nil, nil
	}
	if !u.hash.matches(secret) {
		return nil, nil
	}
	rec := u.record
	return &rec, nil
}

// LookupRole returns the role assigned to subjectID.
func (m *Memory) LookupRole(_ context.Context, subjectID int64) (auth.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[subjectID]
	if !ok {
		return auth.RoleUnknown, fmt.Errorf("%w: id %d", ErrUserNotFound, subjectID)
	}
	return u.record.Role, nil
}

// Add registers a new user with a freshly hashed secret and returns the
// assigned id.
func (m *Memory) Add(_ context.Context, name, fullName string, role auth.Role, secret string) (*session.UserRecord, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: invalid role", ErrInvalidUser)
	}
	if secret == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidUser)
	}
	hash, err := HashPassword(secret)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := UserEntry{ID: m.nextID + 1, Name: name, FullName: fullName, Role: role.String(), Hash: hash}
	if err := m.insert(e); err != nil {
		return nil, err
	}
	rec := m.byID[e.ID].record
	return &rec, nil
}

// Link records that clinicianID cares for patientID.
func (m *Memory) Link(_ context.Context, clinicianID, patientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.link(Serves{Clinician: clinicianID, Patient: patientID})
}

// CliniciansOf returns the clinicians serving patientID, ordered by id.
func (m *Memory) CliniciansOf(_ context.Context, patientID int64) []session.UserRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []session.UserRecord
	for _, s := range m.serves {
		if s.Patient == patientID {
			out = append(out, m.byID[s.Clinician].record)
		}
	}
	sortByID(out)
	return out
}

// PatientsOf returns the patients served by clinicianID, ordered by id.
func (m *Memory) PatientsOf(_ context.Context, clinicianID int64) []session.UserRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []session.UserRecord
	for _, s := range m.serves {
		if s.Clinician == clinicianID {
			out = append(out, m.byID[s.Patient].record)
		}
	}
	sortByID(out)
	return out
}

// List returns every user with role, ordered by id.
func (m *Memory) List(role auth.Role) []session.UserRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []session.UserRecord
	for _, u := range m.byID {
		if u.record.Role == role {
			out = append(out, u.record)
		}
	}
	sortByID(out)
	return out
}

// Snapshot returns the directory as a File, suitable for Save.
func (m *Memory) Snapshot() File {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f := File{Users: make([]UserEntry, 0, len(m.byID))}
	for _, u := range m.byID {
		f.Users = append(f.Users, UserEntry{
			ID:       u.record.ID,
			Name:     u.record.Name,
			FullName: u.record.FullName,
			Role:     u.record.Role.String(),
			Hash:     u.raw,
		})
	}
	slices.SortFunc(f.Users, func(a, b UserEntry) int { return cmp.Compare(a.ID, b.ID) })
	f.Serves = slices.Clone(m.serves)
	return f
}

// Save writes the directory to path with mode 0600.
func (m *Memory) Save(path string) error {
	data, err := yaml.Marshal(m.Snapshot())
	if err != nil {
		return fmt.Errorf("encoding directory file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing directory file: %w", err)
	}
	return nil
}

func sortByID(recs []session.UserRecord) {
	slices.SortFunc(recs, func(a, b session.UserRecord) int { return cmp.Compare(a.ID, b.ID) })
}

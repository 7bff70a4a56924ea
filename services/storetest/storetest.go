// Package storetest provides in-memory implementations of the service
// store interfaces for tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"kyc-hub/models"
	"kyc-hub/services"
)

type Users struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.User
}

func NewUsers(users ...models.User) *Users {
	s := &Users{items: map[primitive.ObjectID]models.User{}}
	for _, u := range users {
		u := u
		_ = s.Create(context.Background(), &u)
	}
	return s
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.Email == u.Email {
			return services.ErrEmailTaken
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.items[u.ID] = *u
	return nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &u, nil
}

func (s *Users) update(id primitive.ObjectID, fn func(u *models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return services.ErrNotFound
	}
	fn(&u)
	s.items[id] = u
	return nil
}

func (s *Users) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	return s.update(id, func(u *models.User) { u.IsVerified = true })
}

func (s *Users) UpdateLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return s.update(id, func(u *models.User) { u.LastLogin = &at })
}

func (s *Users) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return s.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (s *Users) UpdateRole(_ context.Context, id primitive.ObjectID, role string) error {
	return s.update(id, func(u *models.User) { u.Role = role })
}

func (s *Users) List(_ context.Context, f services.UserFilter) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.items {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
				continue
			}
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if f.PerPage > 0 {
		start := (max(f.Page, 1) - 1) * f.PerPage
		if start > len(out) {
			start = len(out)
		}
		out = out[start:min(start+f.PerPage, len(out))]
	}
	return out, total, nil
}

func (s *Users) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.items)), nil
}

func (s *Users) DeleteUnverifiedBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, u := range s.items {
		if !u.IsVerified && u.CreatedAt.Before(before) {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

type Records struct {
	mu       sync.Mutex
	items    map[primitive.ObjectID]models.Record
	Archived []models.Record
}

func NewRecords(records ...models.Record) *Records {
	s := &Records{items: map[primitive.ObjectID]models.Record{}}
	for _, r := range records {
		r := r
		_ = s.Insert(context.Background(), &r)
	}
	return s
}

func (s *Records) Insert(_ context.Context, r *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.items[r.ID] = *r
	return nil
}

func (s *Records) FindByID(_ context.Context, id primitive.ObjectID) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &r, nil
}

func matchRecord(r models.Record, f services.RecordFilter) bool {
	if f.UserID != nil && r.UserID != *f.UserID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.DocumentType != "" && r.DocumentType != f.DocumentType {
		return false
	}
	if f.RiskCategory != "" && r.RiskCategory != f.RiskCategory {
		return false
	}
	if f.MinFraud > 0 && r.FraudScore < f.MinFraud {
		return false
	}
	if !f.Since.IsZero() && r.CreatedAt.Before(f.Since) {
		return false
	}
	if f.Keyword != "" {
		q := strings.ToLower(f.Keyword)
		hay := strings.ToLower(r.UserEnteredName + " " + r.OriginalFilename + " " + r.ExtractedFields["name"])
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

func (s *Records) List(_ context.Context, f services.RecordFilter) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Record{}
	for _, r := range s.items {
		if matchRecord(r, f) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.Oldest {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Records) Count(ctx context.Context, f services.RecordFilter) (int64, error) {
	f.Limit = 0
	out, err := s.List(ctx, f)
	return int64(len(out)), err
}

func (s *Records) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return services.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Records) Resubmit(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return services.ErrNotFound
	}
	r.Status = models.StatusPending
	r.AdminComment = ""
	r.ReviewedBy = nil
	r.ReviewedAt = nil
	r.UpdatedAt = at
	s.items[id] = r
	return nil
}

func (s *Records) Decide(_ context.Context, id primitive.ObjectID, d services.RecordDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return services.ErrNotFound
	}
	if r.Status != models.StatusPending {
		return services.ErrAlreadyDecided
	}
	r.Status = d.Status
	r.AdminComment = d.Comment
	r.ReviewedBy = &d.ReviewedBy
	r.ReviewedAt = &d.ReviewedAt
	r.UpdatedAt = d.ReviewedAt
	s.items[id] = r
	return nil
}

func (s *Records) FindByDocumentNumber(_ context.Context, docType, number string, excludeUser primitive.ObjectID) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Record
	for _, r := range s.items {
		if r.DocumentType == docType && r.UserID != excludeUser && r.DocumentNumber() == number {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Records) CountUsersWithAddress(_ context.Context, address string, excludeUser primitive.ObjectID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := map[primitive.ObjectID]bool{}
	for _, r := range s.items {
		if r.UserID != excludeUser && r.Address() == address {
			users[r.UserID] = true
		}
	}
	return len(users), nil
}

func (s *Records) Archive(_ context.Context, r *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Archived = append(s.Archived, *r)
	return nil
}

type Alerts struct {
	mu    sync.Mutex
	items []models.Alert
}

func NewAlerts(alerts ...models.Alert) *Alerts {
	s := &Alerts{}
	_ = s.InsertMany(context.Background(), alerts)
	return s
}

func (s *Alerts) InsertMany(_ context.Context, alerts []models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range alerts {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		s.items = append(s.items, a)
	}
	return nil
}

func (s *Alerts) List(_ context.Context, f services.AlertFilter) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Alert{}
	for i := len(s.items) - 1; i >= 0; i-- {
		a := s.items[i]
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Severity != "" && a.Severity != f.Severity {
			continue
		}
		if f.UserID != nil && a.UserID != *f.UserID {
			continue
		}
		if f.RecordID != nil && a.RecordID != *f.RecordID {
			continue
		}
		if !f.Since.IsZero() && a.CreatedAt.Before(f.Since) {
			continue
		}
		out = append(out, a)
		if f.Limit > 0 && int64(len(out)) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *Alerts) Count(ctx context.Context, f services.AlertFilter) (int64, error) {
	f.Limit = 0
	out, err := s.List(ctx, f)
	return int64(len(out)), err
}

func (s *Alerts) CountBySeverity(context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int64{}
	for _, a := range s.items {
		out[a.Severity]++
	}
	return out, nil
}

func (s *Alerts) Resolve(_ context.Context, id, by primitive.ObjectID, notes string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Status = models.AlertResolved
			s.items[i].ResolvedBy = &by
			s.items[i].ResolutionNotes = notes
			s.items[i].ResolvedAt = &at
			return nil
		}
	}
	return services.ErrNotFound
}

func (s *Alerts) SetStatusForRecord(_ context.Context, recordID primitive.ObjectID, status string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.items {
		if s.items[i].RecordID == recordID && s.items[i].Status != status {
			s.items[i].Status = status
			n++
		}
	}
	return n, nil
}

// All returns a copy of every stored alert in insertion order
func (s *Alerts) All() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Alert(nil), s.items...)
}

type Audit struct {
	mu      sync.Mutex
	Entries []models.AuditLog
}

func (s *Audit) Insert(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	s.Entries = append(s.Entries, *entry)
	return nil
}

func (s *Audit) List(_ context.Context, page, limit int) ([]models.AuditLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditLog, 0, len(s.Entries))
	for i := len(s.Entries) - 1; i >= 0; i-- {
		out = append(out, s.Entries[i])
	}
	total := int64(len(out))
	start := min((page-1)*limit, len(out))
	return out[start:min(start+limit, len(out))], total, nil
}

// Actions returns the recorded audit actions in order
func (s *Audit) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, e.Action)
	}
	return out
}

type Hashes struct {
	mu    sync.Mutex
	items []models.DocumentHash
}

func (s *Hashes) Insert(_ context.Context, h *models.DocumentHash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = primitive.NewObjectID()
	s.items = append(s.items, *h)
	return nil
}

func (s *Hashes) FindByHash(_ context.Context, hash string) ([]models.DocumentHash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DocumentHash
	for _, h := range s.items {
		if h.Hash == hash {
			out = append(out, h)
		}
	}
	return out, nil
}

type Blacklist struct {
	mu    sync.Mutex
	items []models.BlacklistEntry
}

func NewBlacklist(numbers ...string) *Blacklist {
	s := &Blacklist{}
	for _, n := range numbers {
		_ = s.Add(context.Background(), &models.BlacklistEntry{AadhaarNumber: n})
	}
	return s
}

func (s *Blacklist) Add(_ context.Context, e *models.BlacklistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = primitive.NewObjectID()
	s.items = append(s.items, *e)
	return nil
}

func (s *Blacklist) Remove(_ context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.AadhaarNumber == number {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return services.ErrNotFound
}

func (s *Blacklist) List(context.Context) ([]models.BlacklistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BlacklistEntry{}, s.items...), nil
}

var (
	_ services.UserStore      = (*Users)(nil)
	_ services.RecordStore    = (*Records)(nil)
	_ services.AlertStore     = (*Alerts)(nil)
	_ services.AuditStore     = (*Audit)(nil)
	_ services.HashStore      = (*Hashes)(nil)
	_ services.BlacklistStore = (*Blacklist)(nil)
)

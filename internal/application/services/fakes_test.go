package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"fileshare-api/internal/domain/delivery"
	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/share"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/metrics"
)

// memStore is an in-memory stand-in for the user, file, share and
// file_delivery repositories with the same gating rules as the SQL.
type memStore struct {
	mu         sync.Mutex
	now        func() time.Time
	users      map[uuid.UUID]*user.User
	files      map[uuid.UUID]*file.File
	shares     map[uuid.UUID]*share.Share
	deliveries map[uuid.UUID]*delivery.FileDelivery

	lookupErr map[string]error
	createErr map[uuid.UUID]error
	seq       int
}

func newMemStore() *memStore {
	return &memStore{
		now:        time.Now,
		users:      make(map[uuid.UUID]*user.User),
		files:      make(map[uuid.UUID]*file.File),
		shares:     make(map[uuid.UUID]*share.Share),
		deliveries: make(map[uuid.UUID]*delivery.FileDelivery),
		lookupErr:  make(map[string]error),
		createErr:  make(map[uuid.UUID]error),
	}
}

func (m *memStore) addUser(email, name string) user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := user.User{UUID: uuid.New(), Email: email, Name: name, Role: "user"}
	m.users[u.UUID] = &u
	return u
}

func (m *memStore) addFile(owner uuid.UUID, name string) *file.File {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := &file.File{UUID: uuid.New(), OwnerID: owner, FileName: name, StorageKey: "files/" + name}
	m.files[f.UUID] = f
	c := *f
	return &c
}

func (m *memStore) addShare(s share.Share) *share.Share {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	m.shares[s.UUID] = &s
	c := s
	return &c
}

func (m *memStore) addDelivery(fd delivery.FileDelivery) *delivery.FileDelivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fd.UUID == uuid.Nil {
		fd.UUID = uuid.New()
	}
	m.seq++
	fd.CreatedAt = time.Unix(int64(m.seq), 0)
	m.deliveries[fd.UUID] = &fd
	c := fd
	return &c
}

func (m *memStore) share(id uuid.UUID) share.Share {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.shares[id]
}

func (m *memStore) delivery(id uuid.UUID) delivery.FileDelivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.deliveries[id]
}

func (m *memStore) sharesFor(fileID uuid.UUID) share.Shares {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out share.Shares
	for _, s := range m.shares {
		if s.FileID == fileID {
			c := *s
			out = append(out, &c)
		}
	}
	return out
}

func (m *memStore) deliveriesFor(recipientID uuid.UUID) delivery.FileDeliveries {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out delivery.FileDeliveries
	for _, d := range m.deliveries {
		if d.RecipientID == recipientID {
			c := *d
			out = append(out, &c)
		}
	}
	return out
}

// user.Repository

func (m *memStore) FetchUserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) FetchUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.lookupErr[email]; err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateUser(_ context.Context, req user.User) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == req.Email {
			return nil, user.ErrEmailAlreadyExists
		}
	}
	req.UUID = uuid.New()
	m.users[req.UUID] = &req
	c := req
	return &c, nil
}

// file.Repository

func (m *memStore) FetchFile(_ context.Context, id uuid.UUID) (*file.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[id]; ok {
		c := *f
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) FetchOwnerFiles(_ context.Context, ownerID uuid.UUID, _ int) (file.Files, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out file.Files
	for _, f := range m.files {
		if f.OwnerID == ownerID {
			c := *f
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memStore) FetchReceivedFiles(_ context.Context, recipientID uuid.UUID, _ int) (file.Files, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out file.Files
	for _, s := range m.shares {
		if !s.IsRecipient(recipientID) || !s.Active(m.now()) || seen[s.FileID] {
			continue
		}
		seen[s.FileID] = true
		c := *m.files[s.FileID]
		out = append(out, &c)
	}
	return out, nil
}

func (m *memStore) CreateFile(_ context.Context, req *file.File) (*file.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *req
	c.UUID = uuid.New()
	m.files[c.UUID] = &c
	out := c
	return &out, nil
}

// share.Repository

func (m *memStore) CreateShare(_ context.Context, req *share.Share) (*share.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.RecipientID != nil {
		if err := m.createErr[*req.RecipientID]; err != nil {
			return nil, err
		}
		now := m.now()
		for _, s := range m.shares {
			if s.FileID != req.FileID || s.Revoked || s.RecipientID == nil || *s.RecipientID != *req.RecipientID {
				continue
			}
			if s.Active(now) {
				return nil, share.ErrAlreadyShared
			}
			s.Revoked = true
			s.RevokedAt = &now
		}
	}
	c := *req
	c.UUID = uuid.New()
	c.CreatedAt = m.now()
	m.shares[c.UUID] = &c
	out := c
	return &out, nil
}

func (m *memStore) FetchShare(_ context.Context, id uuid.UUID) (*share.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shares[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) RevokeShare(_ context.Context, id uuid.UUID) (*share.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shares[id]
	if !ok {
		return nil, share.ErrNotFound
	}
	s.Revoked = true
	if s.RevokedAt == nil {
		now := m.now()
		s.RevokedAt = &now
	}
	c := *s
	return &c, nil
}

func (m *memStore) RecordAccess(_ context.Context, id uuid.UUID, event share.AccessEvent) (*share.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shares[id]
	if !ok || !s.Active(m.now()) {
		return nil, share.ErrAccessDenied
	}
	s.AccessCount++
	switch event {
	case share.AccessView:
		s.ViewCount++
	case share.AccessDownload:
		s.DownloadCount++
	}
	now := m.now()
	s.LastAccessedAt = &now
	c := *s
	return &c, nil
}

func (m *memStore) FetchReceivedShares(_ context.Context, recipientID uuid.UUID, _ int) (share.Shares, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out share.Shares
	for _, s := range m.shares {
		if s.IsRecipient(recipientID) && !s.Revoked {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memStore) FetchSentShares(_ context.Context, creatorID uuid.UUID, _ int) (share.Shares, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out share.Shares
	for _, s := range m.shares {
		if s.CreatorID == creatorID {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

// delivery.Repository

func (m *memStore) CreateFileDelivery(_ context.Context, req *delivery.FileDelivery) (*delivery.FileDelivery, error) {
	fd := *req
	fd.Status = delivery.FileDeliveryPending
	return m.addDelivery(fd), nil
}

func (m *memStore) FetchRetryable(_ context.Context, recipientID uuid.UUID, maxRetries int) (delivery.FileDeliveries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out delivery.FileDeliveries
	for _, d := range m.deliveries {
		if d.RecipientID == recipientID && d.RetryEligible(m.now(), maxRetries) {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) FetchByRecipient(_ context.Context, recipientID uuid.UUID, _ int) (delivery.FileDeliveries, error) {
	return m.deliveriesFor(recipientID), nil
}

func (m *memStore) FetchByShare(_ context.Context, shareID uuid.UUID) (delivery.FileDeliveries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out delivery.FileDeliveries
	for _, d := range m.deliveries {
		if d.ShareID == shareID {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memStore) StartRetry(_ context.Context, id uuid.UUID, expectedAttempts int) (*delivery.FileDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok || d.DeliveryAttempts != expectedAttempts || d.Status == delivery.FileDeliveryDelivered {
		return nil, delivery.ErrConcurrentUpdate
	}
	now := m.now()
	d.DeliveryAttempts++
	d.Status = delivery.FileDeliveryPending
	d.LastRetryAt = &now
	c := *d
	return &c, nil
}

func (m *memStore) MarkDelivered(_ context.Context, id uuid.UUID) (*delivery.FileDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return nil, delivery.ErrNotFound
	}
	now := m.now()
	d.Status = delivery.FileDeliveryDelivered
	d.DeliveredAt = &now
	d.FailureReason = ""
	c := *d
	return &c, nil
}

func (m *memStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) (*delivery.FileDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok || d.Status == delivery.FileDeliveryDelivered {
		return nil, delivery.ErrNotFound
	}
	d.Status = delivery.FileDeliveryFailed
	d.FailureReason = reason
	c := *d
	return &c, nil
}

type emitted struct {
	Name        string
	RecipientID uuid.UUID
	Payload     any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
	err    error
	// runs before the event is recorded, outside the lock
	hook func(name string, payload any)
}

func (e *fakeEmitter) Emit(name string, recipientID uuid.UUID, payload any) error {
	if e.hook != nil {
		e.hook(name, payload)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, emitted{Name: name, RecipientID: recipientID, Payload: payload})
	return nil
}

func (e *fakeEmitter) named(name string) []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []emitted
	for _, ev := range e.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

type fakeS3 struct {
	put map[string]int64
	err error
}

func (f *fakeS3) PutObject(_ context.Context, key string, body io.Reader, size int64, _ string) error {
	if f.err != nil {
		return f.err
	}
	if f.put == nil {
		f.put = make(map[string]int64)
	}
	n, _ := io.Copy(io.Discard, body)
	if n != size {
		return errors.New("short body")
	}
	f.put[key] = n
	return nil
}

func (f *fakeS3) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeS3) GetPublicURL(key string) string { return "https://uploads.example/" + key }
func (f *fakeS3) GetBucket() string              { return "uploads" }

// stepClock returns a strictly increasing time on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(step)
		return cur
	}
}

func newTestCounter() *prometheus.CounterVec {
	return metrics.NewCounterWith(prometheus.NewRegistry())
}

func hashOf(t *testing.T, password string) *string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	h := string(b)
	return &h
}

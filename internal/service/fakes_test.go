package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/flamingo-app/flamingo-server/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// In-memory store fakes. They mirror the repository contracts, including the
// gorm.ErrRecordNotFound convention for missing rows.

type fakeUserStore struct {
	mu            sync.Mutex
	nextID        uint
	users         map[uint]*model.User
	verifications map[string]*model.EmailVerification
	nextVerifID   uint

	lastLogin chan uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:         make(map[uint]*model.User),
		verifications: make(map[string]*model.EmailVerification),
		lastLogin:     make(chan uint, 8),
	}
}

func (f *fakeUserStore) addUser(user *model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == 0 {
		f.nextID++
		user.ID = f.nextID
	} else if user.ID > f.nextID {
		f.nextID = user.ID
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) Create(ctx context.Context, user *model.User) (*model.User, error) {
	return f.addUser(user), nil
}

func (f *fakeUserStore) UpdateLastLogin(ctx context.Context, id uint) error {
	f.mu.Lock()
	if user, ok := f.users[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	f.mu.Unlock()

	select {
	case f.lastLogin <- id:
	default:
	}
	return nil
}

func (f *fakeUserStore) IncrementFailedAttempts(ctx context.Context, id uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	user.FailedAttempts++
	return user.FailedAttempts, nil
}

func (f *fakeUserStore) LockAccount(ctx context.Context, id uint, duration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	until := time.Now().Add(duration)
	user.LockedUntil = &until
	return nil
}

func (f *fakeUserStore) ResetLoginAttempts(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.FailedAttempts = 0
	user.LockedUntil = nil
	return nil
}

func (f *fakeUserStore) CreateVerification(ctx context.Context, userID uint, token string, expiresAt time.Time) (*model.EmailVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextVerifID++
	verification := &model.EmailVerification{
		ID:        f.nextVerifID,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	f.verifications[token] = verification
	return verification, nil
}

func (f *fakeUserStore) FindVerificationByToken(ctx context.Context, token string) (*model.EmailVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if verification, ok := f.verifications[token]; ok {
		return verification, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) ActivateVerifiedUser(ctx context.Context, userID, verificationID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	user.Status = model.UserStatusActive
	user.EmailVerified = true
	user.EmailVerifiedAt = &now
	for _, verification := range f.verifications {
		if verification.ID == verificationID {
			verification.VerifiedAt = &now
		}
	}
	return nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	nextID   int
	sessions []*model.Session

	evictions int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{}
}

func (f *fakeSessionStore) Create(ctx context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	session.ID = fmt.Sprintf("session-%d", f.nextID)
	session.CreatedAt = time.Now()
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeSessionStore) EnforceSessionLimit(ctx context.Context, userID uint, max int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owned []*model.Session
	for _, session := range f.sessions {
		if session.UserID == userID {
			owned = append(owned, session)
		}
	}
	if len(owned) < max {
		return nil
	}
	oldest := owned[0]
	for _, session := range owned[1:] {
		if session.CreatedAt.Before(oldest.CreatedAt) {
			oldest = session
		}
	}
	f.deleteLocked(oldest.ID)
	f.evictions++
	return nil
}

// FindByToken does not filter on expiry; expired sessions are surfaced so
// callers handle them.
func (f *fakeSessionStore) FindByToken(ctx context.Context, rawToken string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, session := range f.sessions {
		if compareSessionToken(session.RefreshTokenHash, rawToken) {
			return session, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func compareSessionToken(hash, rawToken string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawToken)) == nil
}

func (f *fakeSessionStore) DeleteByID(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteLocked(id)
	return nil
}

func (f *fakeSessionStore) deleteLocked(id string) {
	for i, session := range f.sessions {
		if session.ID == id {
			f.sessions = append(f.sessions[:i], f.sessions[i+1:]...)
			return
		}
	}
}

func (f *fakeSessionStore) count(userID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, session := range f.sessions {
		if session.UserID == userID {
			n++
		}
	}
	return n
}

type fakeProjectStore struct {
	mu       sync.Mutex
	projects map[string]*model.Project
	edges    *fakeCollaboratorStore
}

func newFakeProjectStore(edges *fakeCollaboratorStore) *fakeProjectStore {
	return &fakeProjectStore{
		projects: make(map[string]*model.Project),
		edges:    edges,
	}
}

func (f *fakeProjectStore) Create(ctx context.Context, name string, ownerID uint) (*model.Project, error) {
	f.mu.Lock()
	project := &model.Project{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}
	f.projects[project.ID] = project
	f.mu.Unlock()

	if f.edges != nil {
		_ = f.edges.Add(ctx, project.ID, ownerID, model.RoleOwner)
	}
	return project, nil
}

func (f *fakeProjectStore) FindByID(ctx context.Context, id string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	project, ok := f.projects[id]
	if !ok || project.DeletedAt != nil {
		return nil, gorm.ErrRecordNotFound
	}
	return project, nil
}

func (f *fakeProjectStore) FindByUserID(ctx context.Context, userID uint) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Project
	for _, project := range f.projects {
		if project.DeletedAt != nil {
			continue
		}
		if project.OwnerID == userID || (f.edges != nil && f.edges.has(project.ID, userID)) {
			result = append(result, *project)
		}
	}
	return result, nil
}

func (f *fakeProjectStore) UpdateName(ctx context.Context, id, name string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	project, ok := f.projects[id]
	if !ok || project.DeletedAt != nil {
		return nil, gorm.ErrRecordNotFound
	}
	project.Name = name
	return project, nil
}

func (f *fakeProjectStore) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	project, ok := f.projects[id]
	if !ok || project.DeletedAt != nil {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	project.DeletedAt = &now
	return nil
}

type fakeCollaboratorStore struct {
	mu    sync.Mutex
	roles map[string]string
	names map[uint]string
}

func newFakeCollaboratorStore() *fakeCollaboratorStore {
	return &fakeCollaboratorStore{
		roles: make(map[string]string),
		names: make(map[uint]string),
	}
}

func edgeKey(projectID string, userID uint) string {
	return fmt.Sprintf("%s/%d", projectID, userID)
}

func (f *fakeCollaboratorStore) has(projectID string, userID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.roles[edgeKey(projectID, userID)]
	return ok
}

func (f *fakeCollaboratorStore) Find(ctx context.Context, projectID string, userID uint) (*model.ProjectCollaborator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[edgeKey(projectID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.ProjectCollaborator{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}, nil
}

func (f *fakeCollaboratorStore) Add(ctx context.Context, projectID string, userID uint, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[edgeKey(projectID, userID)] = role
	return nil
}

func (f *fakeCollaboratorStore) ListByProject(ctx context.Context, projectID string) ([]repository.CollaboratorRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []repository.CollaboratorRow
	prefix := projectID + "/"
	for key, role := range f.roles {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		var id uint
		if _, err := fmt.Sscanf(key[len(prefix):], "%d", &id); err != nil {
			continue
		}
		rows = append(rows, repository.CollaboratorRow{
			UserID: id,
			Name:   f.names[id],
			Role:   role,
		})
	}
	return rows, nil
}

func (f *fakeCollaboratorStore) UpdateRole(ctx context.Context, projectID string, userID uint, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := edgeKey(projectID, userID)
	if _, ok := f.roles[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.roles[key] = role
	return nil
}

func (f *fakeCollaboratorStore) Remove(ctx context.Context, projectID string, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := edgeKey(projectID, userID)
	if _, ok := f.roles[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.roles, key)
	return nil
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	token string
}

func (f *fakeMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.sent = append(f.sent, to)
	f.token = token
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

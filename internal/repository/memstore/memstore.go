// Package memstore is an in-memory record store with the same contracts as the
// Postgres repositories. It backs tests and database-less local runs.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"chatdesk/internal/entities"

	"github.com/google/uuid"
)

type usageKey struct {
	company uuid.UUID
	day     string
}

type Store struct {
	mu sync.RWMutex

	companies map[uuid.UUID]entities.Company
	users     map[uuid.UUID]entities.User
	chats     map[uuid.UUID]entities.Chat
	messages  map[uuid.UUID]entities.Message
	configs   map[uuid.UUID]entities.AIConfiguration
	usage     map[usageKey]entities.DailyUsage
	seq       int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		companies: map[uuid.UUID]entities.Company{},
		users:     map[uuid.UUID]entities.User{},
		chats:     map[uuid.UUID]entities.Chat{},
		messages:  map[uuid.UUID]entities.Message{},
		configs:   map[uuid.UUID]entities.AIConfiguration{},
		usage:     map[usageKey]entities.DailyUsage{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Close() {}

func paginate[T any](all []T, req entities.PageRequest) entities.Page[T] {
	start := req.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + req.PageSize
	if end > len(all) || req.PageSize <= 0 {
		end = len(all)
	}
	return entities.NewPage(append([]T(nil), all[start:end]...), len(all), req)
}

// Companies

func (s *Store) CreateCompany(_ context.Context, c *entities.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if _, ok := s.companies[c.ID]; ok {
		return entities.ErrConflict
	}
	c.CreatedAt, c.UpdatedAt = s.now(), s.now()
	s.companies[c.ID] = *c
	return nil
}

func (s *Store) GetCompany(_ context.Context, id uuid.UUID) (*entities.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) ListCompanies(_ context.Context) ([]entities.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) RenameCompany(_ context.Context, id uuid.UUID, name string) (*entities.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, nil
	}
	c.Name = name
	c.UpdatedAt = s.now()
	s.companies[id] = c
	return &c, nil
}

// DeleteCompany cascades like the foreign keys of the SQL schema.
func (s *Store) DeleteCompany(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return false, nil
	}
	delete(s.companies, id)
	for uid, u := range s.users {
		if u.CompanyID == id {
			s.deleteUserLocked(uid)
		}
	}
	for cid, c := range s.configs {
		if c.CompanyID == id {
			delete(s.configs, cid)
		}
	}
	for k := range s.usage {
		if k.company == id {
			delete(s.usage, k)
		}
	}
	return true, nil
}

func (s *Store) GetStats(_ context.Context) (*entities.CompanyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &entities.CompanyStats{
		TotalCompanies: len(s.companies),
		TotalUsers:     len(s.users),
		TotalChats:     len(s.chats),
		TotalMessages:  len(s.messages),
	}
	for _, u := range s.users {
		if u.IsActive {
			stats.ActiveUsers++
		}
	}
	return stats, nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return entities.ErrConflict
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt, u.UpdatedAt = s.now(), s.now()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) ListUsers(_ context.Context, companyID *uuid.UUID) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []entities.User{}
	for _, u := range s.users {
		if companyID == nil || u.CompanyID == *companyID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, id uuid.UUID, patch entities.UserPatch) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if patch.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && strings.EqualFold(other.Email, *patch.Email) {
				return nil, entities.ErrConflict
			}
		}
		u.Email = *patch.Email
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	u.UpdatedAt = s.now()
	s.users[id] = u
	return &u, nil
}

func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	s.deleteUserLocked(id)
	return true, nil
}

func (s *Store) deleteUserLocked(id uuid.UUID) {
	delete(s.users, id)
	for cid, c := range s.chats {
		if c.UserID == id {
			s.deleteChatLocked(cid)
		}
	}
}

// Chats

func (s *Store) CreateChat(_ context.Context, c *entities.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt, c.UpdatedAt = s.now(), s.now()
	s.chats[c.ID] = *c
	return nil
}

func (s *Store) GetChat(_ context.Context, id uuid.UUID) (*entities.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) ListChatsByUser(_ context.Context, userID uuid.UUID, page entities.PageRequest) (entities.Page[entities.Chat], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := []entities.Chat{}
	for _, c := range s.chats {
		if c.UserID == userID {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, page), nil
}

func (s *Store) UpdateChat(_ context.Context, id uuid.UUID, patch entities.ChatPatch) (*entities.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.ClientDescription != nil {
		c.ClientDescription = patch.ClientDescription
	}
	if patch.SpecialInstructions != nil {
		c.SpecialInstructions = patch.SpecialInstructions
	}
	c.UpdatedAt = s.now()
	s.chats[id] = c
	return &c, nil
}

func (s *Store) DeleteChat(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return false, nil
	}
	s.deleteChatLocked(id)
	return true, nil
}

func (s *Store) deleteChatLocked(id uuid.UUID) {
	delete(s.chats, id)
	for mid, m := range s.messages {
		if m.ChatID == id {
			delete(s.messages, mid)
		}
	}
	for cid, c := range s.configs {
		if c.ChatID != nil && *c.ChatID == id {
			delete(s.configs, cid)
		}
	}
}

// Messages

func (s *Store) CreateMessage(_ context.Context, m *entities.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[m.ChatID]; !ok {
		return entities.ErrNotFound
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.seq++
	m.Seq = s.seq
	m.CreatedAt, m.UpdatedAt = s.now(), s.now()
	s.messages[m.ID] = *m
	return nil
}

func (s *Store) GetMessage(_ context.Context, id uuid.UUID) (*entities.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *Store) chatMessagesLocked(chatID uuid.UUID) []entities.Message {
	out := []entities.Message{}
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

func (s *Store) ListMessages(_ context.Context, chatID uuid.UUID) ([]entities.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatMessagesLocked(chatID), nil
}

func (s *Store) RecentMessages(_ context.Context, chatID uuid.UUID, limit int) ([]entities.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.chatMessagesLocked(chatID)
	if limit >= 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (s *Store) PageMessages(_ context.Context, chatID uuid.UUID, page entities.PageRequest) (entities.Page[entities.Message], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paginate(s.chatMessagesLocked(chatID), page), nil
}

func (s *Store) UpdateMessageContent(_ context.Context, id uuid.UUID, content string) (*entities.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, nil
	}
	m.Content = content
	m.UpdatedAt = s.now()
	s.messages[id] = m
	return &m, nil
}

func (s *Store) DeleteMessage(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return false, nil
	}
	delete(s.messages, id)
	return true, nil
}

// AI configurations

func sameChat(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Store) findConfigLocked(companyID uuid.UUID, chatID *uuid.UUID) (entities.AIConfiguration, bool) {
	for _, c := range s.configs {
		if c.CompanyID == companyID && sameChat(c.ChatID, chatID) {
			return c, true
		}
	}
	return entities.AIConfiguration{}, false
}

func (s *Store) GetAIConfig(_ context.Context, companyID uuid.UUID, chatID *uuid.UUID) (*entities.AIConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.findConfigLocked(companyID, chatID)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) InsertAIConfig(_ context.Context, c *entities.AIConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findConfigLocked(c.CompanyID, c.ChatID); ok {
		return entities.ErrConflict
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt, c.UpdatedAt = s.now(), s.now()
	s.configs[c.ID] = *c
	return nil
}

func (s *Store) UpsertAIConfig(_ context.Context, companyID uuid.UUID, chatID *uuid.UUID, patch entities.AIConfigPatch) (*entities.AIConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.findConfigLocked(companyID, chatID)
	if !ok {
		c = entities.AIConfiguration{
			ID:        uuid.New(),
			CompanyID: companyID,
			ChatID:    chatID,
			CreatedAt: s.now(),
		}
	}
	if patch.ClientDescription != nil {
		c.ClientDescription = patch.ClientDescription
	}
	if patch.SpecialInstructions != nil {
		c.SpecialInstructions = patch.SpecialInstructions
	}
	c.UpdatedAt = s.now()
	s.configs[c.ID] = c
	return &c, nil
}

func (s *Store) DeleteAIConfig(_ context.Context, companyID uuid.UUID, chatID *uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.findConfigLocked(companyID, chatID)
	if !ok {
		return false, nil
	}
	delete(s.configs, c.ID)
	return true, nil
}

// CountAIConfigs is a test helper reporting how many rows exist for a key.
func (s *Store) CountAIConfigs(companyID uuid.UUID, chatID *uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.configs {
		if c.CompanyID == companyID && sameChat(c.ChatID, chatID) {
			n++
		}
	}
	return n
}

// Usage

func (s *Store) RecordUsage(_ context.Context, ev entities.UsageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := ev.At.UTC().Format("2006-01-02")
	key := usageKey{company: ev.CompanyID, day: day}
	u, ok := s.usage[key]
	if !ok {
		date, _ := time.Parse("2006-01-02", day)
		u = entities.DailyUsage{Date: date}
	}
	switch {
	case ev.Failed:
		u.Failures++
	case ev.Kind == "revision":
		u.Revisions++
	default:
		u.Generations++
	}
	u.PromptTokens += ev.PromptTokens
	u.CompletionTokens += ev.CompletionTokens
	s.usage[key] = u
	return nil
}

func (s *Store) UsageHistory(_ context.Context, companyID uuid.UUID, since time.Time) ([]entities.DailyUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from := since.UTC().Format("2006-01-02")
	out := []entities.DailyUsage{}
	for k, u := range s.usage {
		if k.company == companyID && k.day >= from {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

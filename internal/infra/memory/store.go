// Package memory keeps every repository in process memory. It backs local
// runs without DATABASE_URL and the use case tests.
package memory

import (
	"sync"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

// Store holds all collections behind one mutex so that writes spanning a
// lead and its sale are atomic.
type Store struct {
	mu          sync.Mutex
	leads       map[string]*entity.Lead
	sales       map[string]*entity.Sale
	users       map[string]*entity.UserProfile
	credentials map[string]*entity.Credential
	adLinks     map[string]*entity.AdLink
}

func NewStore() *Store {
	return &Store{
		leads:       map[string]*entity.Lead{},
		sales:       map[string]*entity.Sale{},
		users:       map[string]*entity.UserProfile{},
		credentials: map[string]*entity.Credential{},
		adLinks:     map[string]*entity.AdLink{},
	}
}

func (s *Store) Leads() *LeadRepository             { return &LeadRepository{s} }
func (s *Store) Sales() *SaleRepository             { return &SaleRepository{s} }
func (s *Store) Users() *UserRepository             { return &UserRepository{s} }
func (s *Store) Credentials() *CredentialRepository { return &CredentialRepository{s} }
func (s *Store) AdLinks() *AdLinkRepository         { return &AdLinkRepository{s} }

func cloneLead(l *entity.Lead) *entity.Lead {
	c := *l
	c.StatusHistory = append([]entity.LeadHistoryEntry{}, l.StatusHistory...)
	if l.AgentData != nil {
		c.AgentData = append([]byte{}, l.AgentData...)
	}
	return &c
}

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	c.PaymentProofs = append([]entity.PaymentProof{}, s.PaymentProofs...)
	c.StatusHistory = append([]entity.SaleHistoryEntry{}, s.StatusHistory...)
	if s.AccessStartDate != nil {
		t := *s.AccessStartDate
		c.AccessStartDate = &t
	}
	if s.AccessEndDate != nil {
		t := *s.AccessEndDate
		c.AccessEndDate = &t
	}
	return &c
}

func cloneUser(u *entity.UserProfile) *entity.UserProfile {
	c := *u
	if u.Permissions != nil {
		c.Permissions = append([]entity.Permission{}, u.Permissions...)
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

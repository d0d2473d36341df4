// Package operator tracks who is using the back office and which report
// scope they have selected. The selection survives across requests until the
// operator signs out.
package operator

import (
	"sync"

	"github.com/parkops/backoffice/internal/filter"
)

// User identifies the signed-in back-office operator
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Provider exposes the current operator session
type Provider interface {
	CurrentUser() (User, bool)
	SelectedScope() filter.Scope
	SignIn(user User)
	Select(scope filter.Scope)
	SignOut()
}

// StaticProvider is an in-memory Provider safe for concurrent use
type StaticProvider struct {
	mu       sync.RWMutex
	user     User
	signedIn bool
	scope    filter.Scope
}

// NewStaticProvider creates an empty operator session
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// CurrentUser returns the signed-in operator, if any
func (p *StaticProvider) CurrentUser() (User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user, p.signedIn
}

// SelectedScope returns the operator's current report scope
func (p *StaticProvider) SelectedScope() filter.Scope {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scope
}

// SignIn records the operator identity and resets any previous selection
func (p *StaticProvider) SignIn(user User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = user
	p.signedIn = true
	p.scope = filter.Scope{}
}

// Select stores the operator's working scope
func (p *StaticProvider) Select(scope filter.Scope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scope = scope
}

// SignOut clears the session entirely
func (p *StaticProvider) SignOut() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = User{}
	p.signedIn = false
	p.scope = filter.Scope{}
}

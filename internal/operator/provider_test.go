package operator

import (
	"testing"

	"github.com/parkops/backoffice/internal/filter"
	"github.com/stretchr/testify/assert"
)

func TestStaticProvider(t *testing.T) {
	t.Run("empty_session", func(t *testing.T) {
		provider := NewStaticProvider()
		_, ok := provider.CurrentUser()
		assert.False(t, ok)
		assert.Equal(t, filter.Scope{}, provider.SelectedScope())
	})

	t.Run("sign_in_and_select", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SignIn(User{ID: "op-1", Name: "Ana", Role: "manager"})
		provider.Select(filter.Scope{City: "lisbon", Status: "delivered"})

		user, ok := provider.CurrentUser()
		assert.True(t, ok)
		assert.Equal(t, "Ana", user.Name)
		assert.Equal(t, "lisbon", provider.SelectedScope().City)
	})

	t.Run("sign_in_resets_selection", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SignIn(User{ID: "op-1"})
		provider.Select(filter.Scope{City: "porto"})
		provider.SignIn(User{ID: "op-2"})
		assert.Equal(t, filter.Scope{}, provider.SelectedScope())
	})

	t.Run("sign_out", func(t *testing.T) {
		provider := NewStaticProvider()
		provider.SignIn(User{ID: "op-1"})
		provider.Select(filter.Scope{City: "porto"})
		provider.SignOut()

		_, ok := provider.CurrentUser()
		assert.False(t, ok)
		assert.Equal(t, filter.Scope{}, provider.SelectedScope())
	})
}

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/models"
)

func TestPolicy_Check(t *testing.T) {
	owner := &models.Account{ID: 1}
	other := &models.Account{ID: 2}
	staff := &models.Account{ID: 3, IsStaff: true}

	tests := []struct {
		name      string
		action    Action
		requester *models.Account
		target    *models.Account
		want      error
	}{
		{name: "anonymous create", action: ActionCreate, want: nil},
		{name: "user create", action: ActionCreate, requester: other, want: nil},

		{name: "owner retrieves self", action: ActionRetrieve, requester: owner, target: owner, want: nil},
		{name: "user retrieves other", action: ActionRetrieve, requester: other, target: owner, want: common.ErrPermissionDenied},
		{name: "staff retrieves other", action: ActionRetrieve, requester: staff, target: owner, want: nil},
		{name: "anonymous retrieve", action: ActionRetrieve, target: owner, want: common.ErrorUnauthorized},

		{name: "owner updates self", action: ActionUpdate, requester: owner, target: owner, want: nil},
		{name: "user updates other", action: ActionUpdate, requester: other, target: owner, want: common.ErrPermissionDenied},
		{name: "owner patches self", action: ActionPartialUpdate, requester: owner, target: owner, want: nil},
		{name: "staff patches other", action: ActionPartialUpdate, requester: staff, target: owner, want: nil},

		{name: "user lists", action: ActionList, requester: owner, want: common.ErrPermissionDenied},
		{name: "staff lists", action: ActionList, requester: staff, want: nil},
		{name: "anonymous lists", action: ActionList, want: common.ErrorUnauthorized},

		{name: "owner destroys self", action: ActionDestroy, requester: owner, target: owner, want: common.ErrPermissionDenied},
		{name: "staff destroys", action: ActionDestroy, requester: staff, target: owner, want: nil},

		{name: "unknown action", action: Action("export"), requester: staff, want: common.ErrPermissionDenied},
	}

	p := NewPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Check(tt.action, tt.requester, tt.target))
		})
	}
}

func TestPolicy_Predicates(t *testing.T) {
	p := NewPolicy()
	for _, a := range []Action{ActionCreate, ActionList, ActionRetrieve, ActionUpdate, ActionPartialUpdate, ActionDestroy} {
		assert.Len(t, p.Predicates(a), 1, a)
	}
	assert.Nil(t, p.Predicates("unknown"))
}

func TestIsOwnerOrStaff_NilTarget(t *testing.T) {
	assert.False(t, IsOwnerOrStaff(&models.Account{ID: 1}, nil))
	assert.True(t, IsOwnerOrStaff(&models.Account{ID: 1, IsStaff: true}, nil))
}

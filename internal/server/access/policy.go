// Package access decides which account may perform which action on the
// user resource.
package access

import (
	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/models"
)

type Action string

const (
	ActionCreate        Action = "create"
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
)

// Predicate reports whether requester may act on target. requester is nil
// for anonymous callers, target is nil for collection actions.
type Predicate func(requester, target *models.Account) bool

func AllowAny(_, _ *models.Account) bool {
	return true
}

func IsStaff(requester, _ *models.Account) bool {
	return requester != nil && requester.IsStaff
}

func IsOwnerOrStaff(requester, target *models.Account) bool {
	if requester == nil {
		return false
	}
	if requester.IsStaff {
		return true
	}
	return target != nil && target.ID == requester.ID
}

var defaultTable = map[Action][]Predicate{
	ActionCreate:        {AllowAny},
	ActionRetrieve:      {IsOwnerOrStaff},
	ActionUpdate:        {IsOwnerOrStaff},
	ActionPartialUpdate: {IsOwnerOrStaff},
	ActionList:          {IsStaff},
	ActionDestroy:       {IsStaff},
}

type Policy struct {
	table map[Action][]Predicate
}

func NewPolicy() *Policy {
	return &Policy{table: defaultTable}
}

// Predicates returns the predicates guarding action, nil for unknown ones.
func (p *Policy) Predicates(action Action) []Predicate {
	return p.table[action]
}

// Check returns nil when every predicate for action holds. Anonymous callers
// get common.ErrorUnauthorized, authenticated ones common.ErrPermissionDenied.
func (p *Policy) Check(action Action, requester, target *models.Account) error {
	preds, ok := p.table[action]
	if !ok || len(preds) == 0 {
		return deny(requester)
	}
	for _, pred := range preds {
		if !pred(requester, target) {
			return deny(requester)
		}
	}
	return nil
}

func deny(requester *models.Account) error {
	if requester == nil {
		return common.ErrorUnauthorized
	}
	return common.ErrPermissionDenied
}

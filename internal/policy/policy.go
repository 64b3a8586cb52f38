// Package policy implements the access-control decision layer. Every
// resource operation is gated by a Rule combining two independent checks: a
// group gate (coarse role membership) and a permission gate (a boolean
// combinator tree over predicates evaluated against the requester and, for
// single-object operations, the resolved target object).
package policy

import (
	"errors"

	"github.com/kimbia-events/server/internal/domain/categories"
	"github.com/kimbia-events/server/internal/domain/marathons"
	"github.com/kimbia-events/server/internal/domain/payments"
	"github.com/kimbia-events/server/internal/domain/sponsors"
	"github.com/kimbia-events/server/internal/domain/users"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

// Context carries the requester and, for retrieve/update/delete, the target
// object. Object is nil for list and create; ownership predicates fail
// closed when it is absent.
type Context struct {
	Actor  *users.User
	Object any
}

// Expr is a node in the permission combinator tree.
type Expr interface {
	Eval(c Context) bool
}

type predicate struct {
	name string
	fn   func(c Context) bool
}

func (p predicate) Eval(c Context) bool { return p.fn(c) }

// Predicate wraps a named leaf check into an Expr.
func Predicate(name string, fn func(c Context) bool) Expr {
	return predicate{name: name, fn: fn}
}

type allExpr []Expr

func (e allExpr) Eval(c Context) bool {
	for _, sub := range e {
		if !sub.Eval(c) {
			return false
		}
	}
	return true
}

type anyExpr []Expr

func (e anyExpr) Eval(c Context) bool {
	for _, sub := range e {
		if sub.Eval(c) {
			return true
		}
	}
	return false
}

type notExpr struct{ inner Expr }

func (e notExpr) Eval(c Context) bool { return !e.inner.Eval(c) }

// All passes when every sub-expression passes (AND).
func All(exprs ...Expr) Expr { return allExpr(exprs) }

// Any passes when at least one sub-expression passes (OR).
func Any(exprs ...Expr) Expr { return anyExpr(exprs) }

// Not inverts an expression. Defined for completeness of the combinator
// algebra; the default ruleset only exercises All and Any.
func Not(expr Expr) Expr { return notExpr{inner: expr} }

// Predicate leaves. Ownership is either direct identity or being the
// organizer of the owning marathon.
var (
	IsAuthenticated = Predicate("is_authenticated", func(c Context) bool {
		return c.Actor != nil
	})

	IsAdmin = Predicate("is_admin", func(c Context) bool {
		return c.Actor.IsAdmin()
	})

	IsSelf = Predicate("is_self", func(c Context) bool {
		target, ok := c.Object.(*users.User)
		return ok && c.Actor != nil && target != nil && target.ID == c.Actor.ID
	})

	IsMarathonOwner = Predicate("is_marathon_owner", func(c Context) bool {
		target, ok := c.Object.(*marathons.Marathon)
		return ok && c.Actor != nil && target != nil && target.OrganizerID == c.Actor.ID
	})

	IsCategoryOwner = Predicate("is_category_owner", func(c Context) bool {
		target, ok := c.Object.(*categories.Category)
		return ok && c.Actor != nil && target != nil && target.OrganizerID == c.Actor.ID
	})

	IsSponsorOwner = Predicate("is_sponsor_owner", func(c Context) bool {
		target, ok := c.Object.(*sponsors.Sponsor)
		return ok && c.Actor != nil && target != nil && target.OrganizerID == c.Actor.ID
	})

	IsPaymentOwner = Predicate("is_payment_owner", func(c Context) bool {
		target, ok := c.Object.(*payments.Payment)
		if !ok || c.Actor == nil || target == nil {
			return false
		}
		return target.UserID == c.Actor.ID || target.OrganizerID == c.Actor.ID
	})
)

// Group is a coarse role tag used by the group gate. With role as the single
// source of truth a user's groups are exactly {role}, plus admin for staff
// accounts.
type Group string

const (
	GroupAdmin     Group = "admin"
	GroupOrganizer Group = "organizer"
	GroupClient    Group = "client"

	// GroupAll disables the group check for a rule.
	GroupAll Group = "__all__"
)

// Rule gates one (resource, action) pair. The request proceeds iff the actor
// belongs to at least one listed group AND the permission tree passes.
type Rule struct {
	Groups      []Group
	Permissions Expr
}

func memberOf(actor *users.User, group Group) bool {
	if group == GroupAll {
		return true
	}
	if actor == nil {
		return false
	}
	if group == GroupAdmin && actor.IsStaff {
		return true
	}
	return Group(actor.Role) == group
}

func (r Rule) groupGate(actor *users.User) bool {
	for _, group := range r.Groups {
		if memberOf(actor, group) {
			return true
		}
	}
	return false
}

type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

type Resource string

const (
	ResourceUsers      Resource = "users"
	ResourceMarathons  Resource = "marathons"
	ResourceCategories Resource = "categories"
	ResourceSponsors   Resource = "sponsors"
	ResourcePayments   Resource = "payments"
)

type Ruleset map[Resource]map[Action]Rule

// Authorize evaluates the rule for (resource, action) against c. A missing
// rule denies. Failures for anonymous requesters surface as
// ErrUnauthenticated so handlers can answer 401 instead of 403.
func (rs Ruleset) Authorize(c Context, resource Resource, action Action) error {
	actions, ok := rs[resource]
	if !ok {
		return deny(c)
	}
	rule, ok := actions[action]
	if !ok {
		return deny(c)
	}
	if !rule.groupGate(c.Actor) {
		return deny(c)
	}
	if rule.Permissions != nil && !rule.Permissions.Eval(c) {
		return deny(c)
	}
	return nil
}

func deny(c Context) error {
	if c.Actor == nil {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

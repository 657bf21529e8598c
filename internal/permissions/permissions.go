// Package permissions decides whether an actor may perform an action on a
// resource. Decisions are pure: no storage access and no side effects.
package permissions

import "net/http"

// Actor is the identity making the current request. The zero value is the
// anonymous actor.
type Actor struct {
	UserID   uint
	Username string
	IsAdmin  bool
}

// Anonymous reports whether the actor is unauthenticated
func (a Actor) Anonymous() bool {
	return a.UserID == 0
}

type Resource string

const (
	ResourcePost     Resource = "post"
	ResourceAnswer   Resource = "answer"
	ResourceTag      Resource = "tag"
	ResourceLiked    Resource = "liked"
	ResourceActivity Resource = "activity"
)

type Action string

const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
	ActionAnswer        Action = "answer"
	ActionSetRating     Action = "set_rating"
	ActionLike          Action = "like"
)

type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

// Request describes what the actor is trying to do. Owner is the user
// recorded as creator of the target, zero when no single target exists.
type Request struct {
	Resource Resource
	Action   Action
	Method   string
	Owner    uint
}

// Decide evaluates the per-action rules.
func Decide(actor Actor, req Request) Decision {
	if req.Resource == ResourceTag {
		return decideTag(actor, req)
	}

	switch req.Action {
	case ActionList, ActionRetrieve:
		if req.Resource == ResourceLiked || req.Resource == ResourceActivity {
			return authenticated(actor)
		}
		return Allow
	case ActionAnswer:
		if req.Method == http.MethodDelete {
			return owner(actor, req.Owner)
		}
		return authenticated(actor)
	case ActionCreate, ActionSetRating, ActionLike:
		return authenticated(actor)
	case ActionDestroy, ActionUpdate, ActionPartialUpdate:
		return owner(actor, req.Owner)
	}
	return Deny
}

func decideTag(actor Actor, req Request) Decision {
	switch req.Action {
	case ActionList, ActionRetrieve:
		return Allow
	case ActionCreate:
		return authenticated(actor)
	case ActionDestroy:
		return Decision(!actor.Anonymous() && actor.IsAdmin)
	}
	return Deny
}

func authenticated(actor Actor) Decision {
	return Decision(!actor.Anonymous())
}

func owner(actor Actor, ownerID uint) Decision {
	return Decision(!actor.Anonymous() && ownerID != 0 && actor.UserID == ownerID)
}

// Package permission implements the authorization rules as pure functions
// over an explicit (caller, action, ownership) tuple. The caller is nil
// for anonymous requests. No request or framework state is consulted.
package permission

import "github.com/PaulSssar/yamdb-final/internal/model"

// Action is what the caller is trying to do to a resource.
type Action int

// Actions, in increasing order of required privilege for most rules.
const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// IsWrite reports whether the action mutates state.
func (a Action) IsWrite() bool {
	return a != ActionRead
}

// Decision is the outcome of a permission rule. Reason is a static
// human-readable explanation set only on denial.
type Decision struct {
	Allowed bool
	Reason  string
}

// Static denial reasons, one per rule.
const (
	ReasonAdminRequired = "admin or superuser rights required"
	ReasonNoAccess      = "you do not have access to this resource"
	ReasonAuthRequired  = "authentication required"
)

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Catalog gates categories, genres and titles: reads are public, writes
// require an effective admin.
func Catalog(caller *model.User, action Action) Decision {
	if !action.IsWrite() {
		return allow()
	}
	if caller == nil {
		return deny(ReasonAuthRequired)
	}
	if !caller.IsAdmin() {
		return deny(ReasonAdminRequired)
	}
	return allow()
}

// ReviewContent gates reviews and comments: reads are public, create
// requires authentication, update/delete require the author, a moderator
// or an effective admin. ownerID is the author of the target object and
// is ignored for read/create.
func ReviewContent(caller *model.User, action Action, ownerID int64) Decision {
	if !action.IsWrite() {
		return allow()
	}
	if caller == nil {
		return deny(ReasonAuthRequired)
	}
	if action == ActionCreate {
		return allow()
	}
	if caller.ID == ownerID || caller.IsModerator() || caller.IsAdmin() {
		return allow()
	}
	return deny(ReasonNoAccess)
}

// UserAdmin gates the /users collection: every operation, including
// reads, requires an effective admin.
func UserAdmin(caller *model.User) Decision {
	if caller == nil {
		return deny(ReasonAuthRequired)
	}
	if !caller.IsAdmin() {
		return deny(ReasonAdminRequired)
	}
	return allow()
}

// Me gates the /users/me endpoint: any authenticated caller may read and
// edit their own profile. The role field is preserved by the handler, not
// by this rule.
func Me(caller *model.User) Decision {
	if caller == nil {
		return deny(ReasonAuthRequired)
	}
	return allow()
}

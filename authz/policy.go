// Package authz gates every operation by caller role and ownership.
// The Decide switch is the single source of truth for the access table;
// handlers translate verdicts to HTTP statuses and must not add their
// own role conditionals.
package authz

// Identity is the caller resolved from the request credentials.
// A nil *Identity means unauthenticated.
type Identity struct {
	UserID  uint
	IsStaff bool
}

type Action uint8

const (
	_ Action = iota
	ActionRegister
	ActionUserManage  // list/create/get/update/delete arbitrary accounts
	ActionSelfProfile // get/update own record
	ActionQuotaRead
	ActionQuotaWrite
	ActionResourceList
	ActionResourceRead
	ActionResourceCreate
	ActionResourceDelete
)

// Target is the entity an action operates on. OwnerID is the owning
// user for resource targets, zero when not applicable.
type Target struct {
	OwnerID uint
}

type Verdict uint8

const (
	Allow        Verdict = iota
	Unauthorized         // no identity at all (401)
	Deny                 // identity resolved, role/ownership forbids (403)
	Hide                 // present but masked as not-found (404)
)

// Decide returns the verdict for caller performing action on target.
// Cross-owner access to a single resource is masked as not-found so a
// non-owner cannot learn that the id exists; quota and user management
// deliberately answer with a plain denial instead.
func Decide(caller *Identity, action Action, target Target) Verdict {
	if action == ActionRegister {
		if caller == nil {
			return Allow
		}
		return Deny
	}

	if caller == nil {
		return Unauthorized
	}

	switch action {
	case ActionSelfProfile, ActionResourceList, ActionResourceCreate:
		return Allow

	case ActionUserManage, ActionQuotaRead, ActionQuotaWrite:
		if caller.IsStaff {
			return Allow
		}
		return Deny

	case ActionResourceRead, ActionResourceDelete:
		if caller.IsStaff || caller.UserID == target.OwnerID {
			return Allow
		}
		return Hide
	}

	return Deny
}

// CreateOwner resolves the owner of a new resource. Non-staff callers
// always own what they create, whatever owner hint the request carried.
// Staff may assign an explicit owner; it defaults to themselves.
func CreateOwner(caller *Identity, requested *uint) uint {
	if caller.IsStaff && requested != nil {
		return *requested
	}
	return caller.UserID
}

// ListScope narrows a resource listing. restricted reports whether the
// listing must be filtered down to ownerID.
func ListScope(caller *Identity) (ownerID uint, restricted bool) {
	if caller.IsStaff {
		return 0, false
	}
	return caller.UserID, true
}

/*
policy.go - Role-to-operation access policy and caller context

PURPOSE:
  Maps a caller's role to the set of operations permitted. The table is
  static; there is no per-resource ACL. Caller identity arrives as
  request metadata that the surrounding service has already accepted,
  so AuthContext is treated as untrusted input and re-checked by the
  gateway on every command.

POLICY TABLE:
  purchase, transfer  -> admin, logistics
  assign, expend      -> admin, commander
  dashboard, history  -> any authenticated role

BASE SCOPING:
  Commanders and logistics officers are implicitly scoped to their own
  base on reads: whatever base they ask for, they get their own.
*/
package ledger

// Operation names a gated action.
type Operation string

const (
	OpPurchase  Operation = "purchase"
	OpTransfer  Operation = "transfer"
	OpAssign    Operation = "assign"
	OpExpend    Operation = "expend"
	OpDashboard Operation = "dashboard"
	OpHistory   Operation = "history"
)

var permitted = map[Operation][]Role{
	OpPurchase:  {RoleAdmin, RoleLogistics},
	OpTransfer:  {RoleAdmin, RoleLogistics},
	OpAssign:    {RoleAdmin, RoleCommander},
	OpExpend:    {RoleAdmin, RoleCommander},
	OpDashboard: {RoleAdmin, RoleCommander, RoleLogistics},
	OpHistory:   {RoleAdmin, RoleCommander, RoleLogistics},
}

// Authorize reports whether the role may perform the operation.
// Unknown roles and unknown operations are both denied.
func Authorize(role Role, op Operation) bool {
	for _, r := range permitted[op] {
		if r == role {
			return true
		}
	}
	return false
}

// =============================================================================
// AUTH CONTEXT - Caller identity as an explicit value
// =============================================================================

// AuthContext carries the caller's declared identity through the gateway
// and the movement engine. It is established by the transport layer and
// passed explicitly; the engine never reaches into ambient request state.
type AuthContext struct {
	UserID UserID
	Role   Role
	BaseID *BaseID
}

// Authenticated reports whether any identity was declared at all.
func (a AuthContext) Authenticated() bool {
	switch a.Role {
	case RoleAdmin, RoleCommander, RoleLogistics:
		return true
	}
	return false
}

// ScopeBase resolves the base a read operation may see. Admins see the
// base they asked for (or all bases); everyone else is pinned to their
// own base regardless of what was requested.
//
// A non-admin caller whose identity carries no home base falls through
// to the requested scope. Identity arrives as trusted metadata, so this
// is a provisioning gap rather than an escalation path; callers minted
// by the seed always carry a base.
func (a AuthContext) ScopeBase(requested *BaseID) *BaseID {
	if a.Role == RoleAdmin {
		return requested
	}
	if a.BaseID != nil {
		return a.BaseID
	}
	return requested
}

// require returns an UnauthorizedError unless the role may perform op.
func (a AuthContext) require(op Operation) error {
	if !Authorize(a.Role, op) {
		return &UnauthorizedError{Role: a.Role, Operation: op}
	}
	return nil
}

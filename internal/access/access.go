// Package access maps internal roles to named capability grants. Role checks
// elsewhere in the codebase go through Role.Can so that the approval set and
// the pending-notification recipient set cannot drift apart silently; the two
// sets are deliberately distinct configuration, see DefaultPendingRecipientRoles.
package access

import "strings"

type Role string

const (
	RoleUnderhall      Role = "underhall"
	RoleSupervisor     Role = "supervisor"
	RoleSuperintendent Role = "superintendent"
	RoleAdmin          Role = "admin"
	RoleArbetsledare   Role = "arbetsledare"
)

type Capability string

const (
	// CapSubmit allows creating assessments and reading one's own records.
	CapSubmit Capability = "submit"
	// CapApprove allows approving or rejecting a pending assessment.
	CapApprove Capability = "approve"
	// CapViewAll allows reading every record and the analytics surfaces.
	CapViewAll Capability = "view_all"
	// CapAdmin allows archive and delete.
	CapAdmin Capability = "admin"
)

var grants = map[Role][]Capability{
	RoleUnderhall:      {CapSubmit},
	RoleArbetsledare:   {CapSubmit, CapApprove, CapViewAll},
	RoleSupervisor:     {CapSubmit, CapApprove, CapViewAll},
	RoleSuperintendent: {CapSubmit, CapApprove, CapViewAll},
	RoleAdmin:          {CapSubmit, CapApprove, CapViewAll, CapAdmin},
}

func Valid(r Role) bool {
	_, ok := grants[r]
	return ok
}

func (r Role) Can(c Capability) bool {
	for _, g := range grants[r] {
		if g == c {
			return true
		}
	}
	return false
}

// ApproverRoles is the set of roles holding CapApprove.
func ApproverRoles() []Role {
	out := make([]Role, 0, len(grants))
	for _, r := range []Role{RoleSupervisor, RoleSuperintendent, RoleAdmin, RoleArbetsledare} {
		out = append(out, r)
	}
	return out
}

// DefaultPendingRecipientRoles is who gets paged when a new assessment lands.
// This is narrower than ApproverRoles on purpose: only the arbetsledare role
// is notified by default, matching established site practice. Operators can
// widen it via PENDING_RECIPIENT_ROLES.
func DefaultPendingRecipientRoles() []Role {
	return []Role{RoleArbetsledare}
}

// ParseRoles parses a comma-separated role list, dropping unknown entries.
func ParseRoles(csv string) []Role {
	var out []Role
	for _, part := range strings.Split(csv, ",") {
		r := Role(strings.ToLower(strings.TrimSpace(part)))
		if Valid(r) {
			out = append(out, r)
		}
	}
	return out
}

func RoleStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

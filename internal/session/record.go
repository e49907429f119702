// internal/session/record.go
//
// Session Record model.
//
// Context
// -------
// A Session Record binds an opaque bearer token to exactly one principal,
// either an Admin or a User.  Admin and User sessions never share cookies or
// tokens; each principal type gets its own Store (see store.go).  The record
// is the single source of truth for "who is logged in" on this browser, and
// everything else (the user_data role-flag cookie the guard reads, the
// derived IsStudent/IsAffiliate flags) is a projection of it.
//
// Notes
// -----
//   - Role flags are 0/1 ints, mirroring the backend wire format, not bools.
//   - Sub-objects on User (Affiliate, Wallet, Stats) are optional and kept
//     opaque; the edge never interprets them, it only round-trips them.
//   - Oxford commas, two spaces after periods.

package session

import "encoding/json"

//
// Principals
//

// Admin is the back-office principal returned by the admin login endpoint.
type Admin struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

// User is the student/affiliate principal returned by the user endpoints.
//
// IsStudent and IsAffiliate gate the /dashboard and /affiliate route
// prefixes respectively.  The nested blobs are persisted verbatim so a
// refresh from /users/me never loses backend-owned detail.
type User struct {
	ID            int64           `json:"id"`
	FullName      string          `json:"full_name"`
	Email         string          `json:"email"`
	IsStudent     int             `json:"is_student"`
	IsAffiliate   int             `json:"is_affiliate"`
	ProfilePicURL string          `json:"profile_pic_url,omitempty"`
	Affiliate     json.RawMessage `json:"affiliate,omitempty"`
	Wallet        json.RawMessage `json:"wallet,omitempty"`
	Stats         json.RawMessage `json:"stats,omitempty"`
}

//
// Record
//

// Record is one authenticated session: a token plus exactly one principal.
// The zero Record means "not logged in".
type Record struct {
	Token string `json:"token"`
	Admin *Admin `json:"admin,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// Authenticated reports whether the record carries both a token and a
// principal.  A token without a principal (or vice versa) is treated as
// unauthenticated, matching the guard's fail-closed posture.
func (r Record) Authenticated() bool {
	return r.Token != "" && (r.Admin != nil || r.User != nil)
}

// IsStudent reports the student role flag of a User session.
func (r Record) IsStudent() bool { return r.User != nil && r.User.IsStudent == 1 }

// IsAffiliate reports the affiliate role flag of a User session.
func (r Record) IsAffiliate() bool { return r.User != nil && r.User.IsAffiliate == 1 }

// Role returns the admin role string, or "" for non-admin sessions.
func (r Record) Role() string {
	if r.Admin == nil {
		return ""
	}
	return r.Admin.Role
}

//
// Guard projection
//

// RoleFlags is the denormalized projection of a User record written into the
// plain user_data cookie.  The guard middleware cannot read the structured
// store, so it decides from this cookie alone.
type RoleFlags struct {
	ID          int64 `json:"id"`
	IsStudent   int   `json:"is_student"`
	IsAffiliate int   `json:"is_affiliate"`
}

// ParseRoleFlags decodes a user_data cookie payload.  Any decode failure is
// returned to the caller, which must treat it exactly like a missing cookie.
func ParseRoleFlags(raw string) (RoleFlags, error) {
	var f RoleFlags
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return RoleFlags{}, err
	}
	return f, nil
}

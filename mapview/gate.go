package mapview

import (
	"errors"
	"strings"
)

// ErrUnauthorized is returned by a Backend when the server rejects the
// admin secret or an admin-only request.
var ErrUnauthorized = errors.New("mapview: unauthorized")

// Gate holds the admin capability and the edit-mode toggle.
// Admin stays false until the status check resolves true.
//
// Seq increases with every status check, login and logout. A result is
// applied only while its Seq is still current, so a late answer to an
// older request cannot overturn a newer one.
type Gate struct {
	Seq       uint64
	Checked   bool
	Resolved  bool
	Admin     bool
	Editing   bool
	LoggingIn bool
	LoginErr  string
}

// CanEdit reports whether mutation affordances are enabled.
func (g Gate) CanEdit() bool { return g.Admin && g.Editing }

// Mount issues the status check once per session.
func (g Gate) Mount() (Gate, []Effect) {
	if g.Checked {
		return g, nil
	}
	g.Checked = true
	g.Seq++
	return g, []Effect{CheckAdminStatus{Seq: g.Seq}}
}

// StatusResolved applies the result of status check seq. Any failure means
// no capability. A login or logout issued after the check supersedes it.
func (g Gate) StatusResolved(seq uint64, authenticated bool, err error) Gate {
	g.Resolved = true
	if seq != g.Seq {
		return g
	}
	g.Admin = authenticated && err == nil
	if !g.Admin {
		g.Editing = false
	}
	return g
}

// Login submits secret.
func (g Gate) Login(secret string) (Gate, []Effect) {
	if g.Admin || g.LoggingIn {
		return g, nil
	}
	if strings.TrimSpace(secret) == "" {
		g.LoginErr = "Password is required."
		return g, nil
	}
	g.LoggingIn = true
	g.LoginErr = ""
	g.Seq++
	return g, []Effect{SubmitLogin{Seq: g.Seq, Password: secret}}
}

// LoginResolved applies the result of login seq. Success grants the
// capability and nothing else; edit mode stays off until requested. A
// login overtaken by a logout is dropped.
func (g Gate) LoginResolved(seq uint64, err error) Gate {
	if !g.LoggingIn || seq != g.Seq {
		return g
	}
	g.LoggingIn = false
	switch {
	case err == nil:
		g.Admin = true
		g.LoginErr = ""
	case errors.Is(err, ErrUnauthorized):
		g.LoginErr = "Incorrect password."
	default:
		g.LoginErr = "Login failed: " + err.Error()
	}
	return g
}

// Logout drops the capability and forces edit mode off.
func (g Gate) Logout() (Gate, []Effect) {
	g.Admin = false
	g.Editing = false
	g.LoggingIn = false
	g.LoginErr = ""
	g.Seq++
	return g, []Effect{SubmitLogout{}}
}

// SetEditing toggles edit mode; it can only be turned on by an admin.
func (g Gate) SetEditing(on bool) Gate {
	g.Editing = on && g.Admin
	return g
}

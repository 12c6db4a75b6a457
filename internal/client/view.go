package client

import (
	"net/url"
	"strings"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type View string

const (
	ViewLanding   View = "landing"
	ViewDashboard View = "dashboard"
	ViewAdmin     View = "admin"
	ViewProfile   View = "profile"
	ViewVerify    View = "verify"
)

// Route is a resolved URL fragment. Token is set for the verify view only.
type Route struct {
	View  View
	Token string
	// Fragment is the canonical fragment for View, e.g. "#/admin"
	Fragment string
}

// ResolveView maps a URL fragment and the signed-in user to the view to render.
// The admin view is reserved for admins; a user falls back to the dashboard and an admin
// to the admin view.
func ResolveView(fragment string, user *domain.User) Route {
	if strings.HasPrefix(fragment, "#/verify") {
		return Route{View: ViewVerify, Token: verifyToken(fragment), Fragment: "#/verify"}
	}
	if user == nil {
		return Route{View: ViewLanding, Fragment: "#/"}
	}

	switch {
	case fragment == "#/admin" && user.IsAdmin():
		return Route{View: ViewAdmin, Fragment: "#/admin"}
	case fragment == "#/profile":
		return Route{View: ViewProfile, Fragment: "#/profile"}
	case fragment == "#/dashboard" || !user.IsAdmin():
		return Route{View: ViewDashboard, Fragment: "#/dashboard"}
	}
	return Route{View: ViewAdmin, Fragment: "#/admin"}
}

// HomeFragment is where a fresh login lands.
func HomeFragment(user *domain.User) string {
	if user.IsAdmin() {
		return "#/admin"
	}
	return "#/dashboard"
}

func verifyToken(fragment string) string {
	_, query, ok := strings.Cut(fragment, "?")
	if !ok {
		return ""
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return ""
	}
	return values.Get("token")
}

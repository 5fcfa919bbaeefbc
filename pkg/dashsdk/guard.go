package dashsdk

// SignInPath is where unauthenticated navigation lands.
const SignInPath = "/signin"

// Decision is the route guard's verdict: admit, or navigate elsewhere.
type Decision struct {
	Admitted bool
	Redirect string // set when not admitted
}

func admit() Decision            { return Decision{Admitted: true} }
func redirect(p string) Decision { return Decision{Redirect: p} }

// Admit decides whether a held session may enter an area requiring the given
// role. It is pure: every protected route runs the same decision against the
// loaded record, keeping authorization out of any particular UI framework.
//
// No session, or an unauthenticated one, goes to sign-in. A role mismatch
// redirects to the actual role's own dashboard root rather than an error
// page, so a client who follows an admin link lands somewhere useful.
func Admit(rec *SessionRecord, required Role) Decision {
	if rec == nil || !rec.IsAuthenticated {
		return redirect(SignInPath)
	}

	if rec.Role != required {
		return redirect(rec.Role.DashboardPath())
	}

	return admit()
}

/*
Package dashsdk is the client SDK for the backdesk authorization service.

# Overview

The package covers the three client-side pieces a dashboard needs:

  - Client: HTTP access to the service (signup, login, OTP verification,
    profile, admin listing), carrying the session token as a bearer header.
  - SessionStore / SessionRecord: the locally held session state, written to
    an ephemeral or persistent tier depending on the "remember me" choice.
  - Admit: the pure route-guard decision applied before rendering any
    protected area.

# Typical flow

	client := dashsdk.NewClient("https://auth.example.com")

	challengeID, err := client.Login(ctx, email, password)
	// user receives the code out-of-band
	session, err := client.VerifyOTP(ctx, challengeID, code, remember)

	store.Save(session, remember)

	switch d := dashsdk.Admit(store.Load(), dashsdk.RoleAdmin); {
	case d.Admitted:
		// render
	default:
		// navigate to d.Redirect
	}

The guard is advisory: the service re-verifies the token on every request, so
a tampered local record can never widen access.
*/
package dashsdk

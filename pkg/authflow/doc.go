// Package authflow wires the Webflow provider into HTTP endpoints.
//
// Routes returns a chi router with three endpoints:
//
//	GET  /login     set a signed state cookie and redirect to Webflow
//	GET  /callback  verify state, exchange the code, resolve the user
//	POST /revoke    revoke the request's bearer token
//
// Mount it under a prefix that matches the redirect URL registered with Webflow:
//
//	flow, err := authflow.New(provider, os.Getenv("STATE_SECRET"),
//		authflow.WithOnSuccess(func(w http.ResponseWriter, r *http.Request, owner *oauth.ResourceOwner, token *oauth2.Token) error {
//			// persist the token, start a session
//			return nil
//		}),
//	)
//	r.Mount("/auth/webflow", flow.Routes())
//
// Tokens are never stored by this package.
package authflow

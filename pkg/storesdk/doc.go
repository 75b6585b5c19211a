// Package storesdk is a client for the storefront REST API.
//
// A Client holds one session. Every call attaches the current access
// token; when the server answers with the stale token status the client
// refreshes the token once, using the refresh cookie in its jar, and
// replays the call. Calls that hit the stale status while a refresh is
// running wait for it instead of starting another, so a burst of expired
// requests costs exactly one refresh. If the refresh fails the session is
// dropped and every waiting call fails with KindUnauthenticated.
//
//	c := storesdk.NewClient("http://localhost:8080")
//	if _, err := c.Login(ctx, email, password); err != nil {
//		return err
//	}
//	cart, err := c.AddToCart(ctx, 42, 1)
//
// All failures are *APIError values classified by Kind. Order creation
// conflicts are not errors: see CreateOrderResult.
package storesdk

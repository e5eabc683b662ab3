// Package redirect signs the return-to destination carried through login
// redirects as a short-lived HS256 token, preventing open-redirect and
// destination tampering through the query string.
package redirect

// Package api exposes the rewards engine over HTTP. Handlers decode and
// validate requests, call the habit, wallet, recommendation and profile
// services for the authenticated user, and map service errors to status
// codes through HandleAPIError.
package api

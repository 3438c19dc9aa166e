package handler

// APIV1Prefix is the canonical base path for public HTTP API v1.
// Keep a single source of truth to avoid path drift across handlers and tests.
const APIV1Prefix = "/api/v1"

// Header and context keys shared by middleware and handlers.
const (
	HeaderRequestID = "X-Request-ID"

	ctxRequestID   = "request_id"
	ctxCurrentUser = "current_user"
)

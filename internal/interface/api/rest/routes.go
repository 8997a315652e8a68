package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// auth
	RouteAuth     = RouteApiV1 + "/auth"
	RouteLogin    = RouteAuth + "/login"
	RouteRegister = RouteAuth + "/register"

	RouteUsers          = RouteApiV1 + "/users"
	RouteUser           = RouteUsers + "/:user_id"
	RouteUserDeliveries = RouteUser + "/deliveries"

	// files
	RouteFiles         = RouteApiV1 + "/files"
	RouteFilesReceived = RouteFiles + "/received"

	// shares
	RouteShares         = RouteApiV1 + "/shares"
	RouteSharesReceived = RouteShares + "/received"
	RouteSharesSent     = RouteShares + "/sent"
	RouteShare          = RouteShares + "/:share_id"
	RouteShareRevoke    = RouteShare + "/revoke"
	RouteShareAccess    = RouteShare + "/access"

	// deliveries
	RouteDeliveries       = RouteApiV1 + "/deliveries"
	RouteDeliveryActions  = RouteDeliveries + "/actions"
	RouteDeliveriesStatus = RouteDeliveries + "/status"

	// realtime
	RoutePresence = RouteApiV1 + "/presence"
	RouteEvents   = RouteApiV1 + "/events"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)

package contracts

import "github.com/julienschmidt/httprouter"

// Handler splits route registration by trust boundary: webhook routes sit
// behind the signature/idempotency stack, store routes behind customer auth.
type Handler interface {
	RegisterWebhookRoutes(*httprouter.Router)
	RegisterStoreRoutes(*httprouter.Router)
}

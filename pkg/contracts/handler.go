package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Handlers registers several handlers on one router, in order.
func Handlers(handlers ...Handler) Handler {
	return handlerGroup(handlers)
}

type handlerGroup []Handler

func (g handlerGroup) RegisterRoutes(router *httprouter.Router) {
	for _, h := range g {
		h.RegisterRoutes(router)
	}
}

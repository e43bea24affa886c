package middleware

import (
	"github.com/gin-gonic/gin"

	midsec "github.com/GitSid-glitch/cobuild/middleware/security"
)

type RouteOpt struct {
	IsAuth bool
}

var authOpts midsec.Options

// SetAuthOptions wires the JWT options used by authenticated routes;
// call once during startup.
func SetAuthOptions(o midsec.Options) { authOpts = o }

func POST(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.POST(path, midsec.Middleware(authOpts), handler)
	} else {
		r.POST(path, handler)
	}
}

func GET(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.GET(path, midsec.Middleware(authOpts), handler)
	} else {
		r.GET(path, handler)
	}
}

func PUT(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.PUT(path, midsec.Middleware(authOpts), handler)
	} else {
		r.PUT(path, handler)
	}
}

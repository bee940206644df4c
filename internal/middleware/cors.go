package middleware

import (
	"strings"

	"github.com/AdhityaRamadhanus/fasthttpcors"
	"github.com/valyala/fasthttp"
)

var (
	corsAllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
)

// CORS decorates responses for the allowed origins and answers preflight
// requests. An empty list or "*" allows every origin. Preflights from an
// origin outside the list are refused with 403.
func CORS(allowed []string) Middleware {
	allowAll := len(allowed) == 0
	origins := make(map[string]struct{}, len(allowed))
	var list []string
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			allowAll = true
		}
		origins[o] = struct{}{}
		list = append(list, o)
	}
	if allowAll {
		list = nil
	}

	cors := fasthttpcors.NewCorsHandler(fasthttpcors.Options{
		AllowedOrigins: list,
		AllowedMethods: corsAllowMethods,
		AllowedHeaders: corsAllowHeaders,
		AllowMaxAge:    600,
	})

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		handler := cors.CorsMiddleware(next)
		return func(ctx *fasthttp.RequestCtx) {
			if ctx.IsOptions() && !allowAll {
				origin := string(ctx.Request.Header.Peek("Origin"))
				if _, ok := origins[origin]; origin != "" && !ok {
					ctx.SetStatusCode(fasthttp.StatusForbidden)
					return
				}
			}
			handler(ctx)
			if len(ctx.Response.Header.Peek("Access-Control-Allow-Origin")) > 0 {
				ctx.Response.Header.Set("Access-Control-Expose-Headers", "X-Request-ID")
			}
		}
	}
}

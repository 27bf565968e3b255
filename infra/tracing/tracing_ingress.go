package tracing

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// TracingIngress opens one server span per request, continuing an upstream
// trace when the request carries propagation headers.
func TracingIngress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tracer := opentracing.GlobalTracer()
		upstream, _ := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(ctx.Request.Header))

		name := ctx.Request.Method + " " + ctx.FullPath()
		if ctx.FullPath() == "" {
			name = ctx.Request.Method + " " + ctx.Request.URL.Path
		}
		span := tracer.StartSpan(name, ext.RPCServerOption(upstream))
		defer span.Finish()

		ctx.Request = ctx.Request.WithContext(opentracing.ContextWithSpan(ctx.Request.Context(), span))
		ctx.Next()

		ext.HTTPStatusCode.Set(span, uint16(ctx.Writer.Status()))
		if ctx.Writer.Status() >= 500 {
			ext.Error.Set(span, true)
		}
	}
}

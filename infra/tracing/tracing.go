package tracing

import (
	"io"

	"stackrent/misc"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegermetrics "github.com/uber/jaeger-lib/metrics"
)

// Bootstrap installs the global tracer from JAEGER_* environment variables.
// A broken tracing setup never blocks service start.
func Bootstrap() io.Closer {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		logrus.Errorf("tracing disabled, bad configuration: %v", err)
		return nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = misc.GetServiceName()
	}

	tracer, closer, err := cfg.NewTracer(jaegercfg.Metrics(jaegermetrics.NullFactory))
	if err != nil {
		logrus.Errorf("tracing disabled, tracer init failed: %v", err)
		return nil
	}
	opentracing.SetGlobalTracer(tracer)
	return closer
}

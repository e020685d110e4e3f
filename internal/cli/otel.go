package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	goGate "github.com/MrEthical07/goGate"
	gateotel "github.com/MrEthical07/goGate/metrics/export/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const otelScope = "github.com/MrEthical07/goGate"

// newOTelHandler exposes the engine through an OpenTelemetry meter backed by
// a manual reader. Each GET collects once and answers the ResourceMetrics
// as JSON. The returned func shuts the provider down.
func newOTelHandler(engine *goGate.Engine) (http.Handler, func(), error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	exp, err := gateotel.NewOTelExporter(provider.Meter(otelScope), engine)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, nil, err
	}

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(r.Context(), &rm); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rm)
	})

	shutdown := func() {
		_ = exp.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(ctx)
	}
	return h, shutdown, nil
}

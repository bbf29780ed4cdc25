// Package prometheus exports clustering metrics through
// github.com/prometheus/client_golang.
//
// # Usage
//
//	reg := prometheus.NewRegistry()
//	collector, err := kmprom.NewCollector(reg, kmprom.WithNamespace("batch"))
//	if err != nil {
//	    return err
//	}
//	engine, err := kmeans.New(k, n, d, maxIter, kmeans.WithMetricsCollector(collector))
//
// Short-lived jobs can push the registry to a Pushgateway with Push.
package prometheus

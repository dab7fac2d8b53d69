package health_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/wxshell/health"
	"github.com/jonwraymond/wxshell/store"
)

func ExampleNewPingChecker() {
	agg := health.NewAggregator(0)
	agg.Register(health.NewPingChecker("store", store.NewMemoryStore()))
	agg.Register(health.NewStateChecker("worker", func() (string, bool) {
		return "activating", false
	}))

	results := agg.CheckAll(context.Background())
	fmt.Println(results["store"].Status)
	fmt.Println(results["worker"].Status)
	fmt.Println(health.OverallStatus(results))
	// Output:
	// healthy
	// degraded
	// degraded
}

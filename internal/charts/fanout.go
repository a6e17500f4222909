package charts

import (
	"context"
	"errors"

	"prediction-dashboard-service/internal/analytics"
)

// Fanout returns a handle that replaces the series on every non-nil handle.
// All handles are called; their errors are joined.
func Fanout(handles ...analytics.ChartHandle) analytics.ChartHandle {
	var live []analytics.ChartHandle
	for _, h := range handles {
		if h != nil {
			live = append(live, h)
		}
	}
	if len(live) == 1 {
		return live[0]
	}
	return analytics.ChartHandleFunc(func(ctx context.Context, s analytics.Series) error {
		var errs []error
		for _, h := range live {
			if err := h.ReplaceSeries(ctx, s); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// HandleFactory produces the handle a sink uses for one chart.
type HandleFactory func(name analytics.ChartName) analytics.ChartHandle

// NewRegistry builds a registry for the displayed charts, fanning each chart
// out to every factory. Unknown chart names are returned separately.
func NewRegistry(displayed []analytics.ChartName, factories ...HandleFactory) (analytics.Registry, []analytics.ChartName) {
	reg := analytics.Registry{}
	var unknown []analytics.ChartName
	for _, name := range displayed {
		if !name.Known() {
			unknown = append(unknown, name)
			continue
		}
		handles := make([]analytics.ChartHandle, 0, len(factories))
		for _, f := range factories {
			handles = append(handles, f(name))
		}
		reg[name] = Fanout(handles...)
	}
	return reg, unknown
}

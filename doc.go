// Package hostguest runs cooperative guest tasks inside a foreign host's
// event loop, such as that of a GUI toolkit.
//
// The host owns the thread. The guest scheduler (see package guest) only runs
// from within callbacks the host invokes, requested via [Reenter] events
// posted using the host's thread-safe [host.Host.PostEvent]. A [Runner]
// wires the two together, wrapping the application's [EntryFunc] in a
// single [CancelScope], and reconciling the host loop's exit status with the
// entry function's result, see [Outcomes].
//
// Host event sources (signals) may be consumed by guest tasks as a stream of
// [Emission] values, see [OpenEmissions], or waited on directly, see
// [WaitForNextEmission] and [WaitFiredAround].
//
// Basic usage:
//
//	outcomes, err := hostguest.Run(ctx, func(ctx context.Context, args ...any) (any, error) {
//	    if err := guest.Sleep(ctx, time.Second); err != nil {
//	        return nil, err
//	    }
//	    return "done", nil
//	})
//	if err != nil {
//	    // failed to start or execute
//	}
//	value, err := outcomes.Unwrap()
package hostguest

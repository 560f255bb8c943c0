// Package dynamo provides the runtime primitives shared by the fluid solver
// and its drivers.
//
//   - [ParallelFor]: chunked fan-out over an index range with a full barrier
//   - sentinel errors ([ErrGridTooSmall], [ErrParameterBounds], ...)
//   - [SimulationError]: wraps a failure with the frame it occurred on
//
// # Thread Safety
//
// [ParallelFor] hands each worker a disjoint [start, end) range. Callers must
// only write to slots inside their own range; reads of shared data are safe
// as long as nothing mutates it until ParallelFor returns.
package dynamo

// Package gate bounds how many operations run at once.
//
// A Gate hands out a fixed number of slots. Callers that arrive while every
// slot is taken wait in a queue and are admitted strictly in arrival order as
// slots are released. The limit can be changed at any time; lowering it never
// interrupts callers that already hold a slot.
//
// # Usage
//
//	g := gate.New(10)
//
//	err := g.Do(ctx, func() error {
//		return callUpstream(ctx)
//	})
//
// Acquire and Release can also be used directly; pair them with defer so a
// failing call never keeps its slot:
//
//	if err := g.Acquire(ctx); err != nil {
//		return err
//	}
//	defer g.Release()
package gate

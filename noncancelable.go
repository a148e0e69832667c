package framecoro

// NonCancelable wraps f so that stopping the coroutine running it does
// not unwind it immediately: [Wait] calls made while a stop is pending
// return normally instead of panicking, so cleanup code can still
// suspend (for example to flush something asynchronously) while it runs.
// The pending stop is applied — the coroutine still ends up [Stopped] —
// the moment f itself returns, discarding whatever it returned.
//
// Nesting NonCancelable scopes is supported: the stop is only applied
// once the outermost one returns.
func NonCancelable[T any](f CoroutineFunc[T]) CoroutineFunc[T] {
	return func(c *Coroutine[T]) (T, error) {
		b := c.base()
		b.nonCancel++
		outermost := b.nonCancel == 1
		result, err := f(c)
		b.nonCancel--
		if outermost && b.cancelPending {
			panic(cancelSignal{})
		}
		return result, err
	}
}

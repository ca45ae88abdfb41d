// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

import "context"

// Func is a generic operation that accepts an input and returns a result.
//
// The [*Connector] builds its dial pipeline by composing Func stages
// ([*ConnectFunc], [*ObserveConnFunc], [*CancelWatchFunc]) with [Compose2]
// and [Compose3]. The compiler checks that each stage's output matches the
// next stage's input.
//
// Resource cleanup contract: when a Func receives a closeable resource as input
// and returns an error, it is responsible for closing that resource before returning.
type Func[A, B any] interface {
	Call(ctx context.Context, input A) (B, error)
}

// FuncAdapter wraps a function as a [Func] implementation.
type FuncAdapter[A, B any] func(ctx context.Context, input A) (B, error)

// Call implements [Func].
func (f FuncAdapter[A, B]) Call(ctx context.Context, input A) (B, error) {
	return f(ctx, input)
}

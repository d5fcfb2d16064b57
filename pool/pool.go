// Package pool holds reusable objects for the stage driver's workers.
package pool

// Pool hands out and takes back objects of type T.
type Pool[T any] interface {
	// Get returns an object from the pool, creating one when allowed.
	Get() T

	// Put returns an object to the pool.
	Put(T)
}

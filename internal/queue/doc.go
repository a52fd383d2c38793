// Package queue runs a function over a fixed set of items with a fixed
// number of concurrent workers.
//
// The queue is loaded with every item before any worker starts. Each worker
// takes one item at a time, processes it, marks it done and takes the next;
// a worker that finds the queue empty exits. [Run] returns once every item
// has been taken and marked done.
//
// The queue knows nothing about success or failure. Processing functions
// report failure through their own side effects, which keeps the queue
// reusable; judging the outcome is left to the caller.
//
//	err := queue.Run(ctx, paths, 8, func(ctx context.Context, p string) {
//	    download(ctx, p)
//	}, queue.Options{})
package queue

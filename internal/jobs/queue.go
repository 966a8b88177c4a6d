package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueGeneration queues a run for a workspace that has already been
	// reserved. It fails instead of blocking when the queue is full.
	EnqueueGeneration() error
}

package jobs

import (
	"github.com/vytor/flashcardhelper/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	generationPool *worker.Pool
	runner         worker.GenerationRunner
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(generationPool *worker.Pool, runner worker.GenerationRunner) JobQueue {
	return &WorkerQueue{
		generationPool: generationPool,
		runner:         runner,
	}
}

func (q *WorkerQueue) EnqueueGeneration() error {
	return q.generationPool.TrySubmit(&worker.GenerateCardsJob{Runner: q.runner})
}

package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. The HTTP layer uses it to enqueue on-demand work next to
// the interval-driven refreshes.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

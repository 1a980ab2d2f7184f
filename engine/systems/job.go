package systems

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/anvil/engine/core"
)

// JobTask is one unit of work. OnComplete or OnFailure runs on the worker right after
// OnStart returns.
type JobTask struct {
	Name       string
	OnStart    func() error
	OnComplete func()
	OnFailure  func(err error)
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan queuedJob
	wg         sync.WaitGroup
	closed     bool
	mu         sync.Mutex
}

type queuedJob struct {
	task JobTask
	done func(error)
}

var ErrNoWorkers = errors.New("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = errors.New("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan queuedJob, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				err := job.task.OnStart()
				if err != nil {
					core.LogError("job %s: %s", job.task.Name, err)
					if job.task.OnFailure != nil {
						job.task.OnFailure(err)
					}
				} else if job.task.OnComplete != nil {
					job.task.OnComplete()
				}
				if job.done != nil {
					job.done(err)
				}
			}
		}()
	}
}

/**
 * @brief Shuts the job system down. Jobs already queued still run.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	defer js.mu.Unlock()
	if js.closed {
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	return js.submit(queuedJob{task: jt})
}

func (js *JobSystem) submit(job queuedJob) error {
	js.mu.Lock()
	defer js.mu.Unlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.jobQueue <- job
	return nil
}

// Run executes every task on the pool and waits for all of them. The failures are combined
// into the returned error.
func (js *JobSystem) Run(tasks ...JobTask) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for _, task := range tasks {
		wg.Add(1)
		name := task.Name
		err := js.submit(queuedJob{task: task, done: func(err error) {
			defer wg.Done()
			if err != nil {
				mu.Lock()
				errs = errors.CombineErrors(errs, errors.Wrapf(err, "job %s", name))
				mu.Unlock()
			}
		}})
		if err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()
	return errs
}

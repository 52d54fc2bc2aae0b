package utils

import (
	"sync"
)

// Task is a unit of work that can be executed in parallel
type Task func() error

// RunParallelTasks executes tasks concurrently and returns their errors in
// task order.
func RunParallelTasks(tasks []Task) []error {
	var wg sync.WaitGroup
	errs := make([]error, len(tasks))

	wg.Add(len(tasks))
	for i, task := range tasks {
		go func(index int, t Task) {
			defer wg.Done()
			errs[index] = t()
		}(i, task)
	}

	wg.Wait()
	return errs
}

// FirstError returns the first non-nil error, if any.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

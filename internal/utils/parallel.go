package utils

import "sync"

// Task is a unit of work executed concurrently with others.
type Task func() error

// RunParallel runs all tasks concurrently and returns their errors
// aligned by index (nil where a task succeeded).
func RunParallel(tasks ...Task) []error {
	var wg sync.WaitGroup
	errs := make([]error, len(tasks))

	wg.Add(len(tasks))
	for i, task := range tasks {
		go func(i int, t Task) {
			defer wg.Done()
			errs[i] = t()
		}(i, task)
	}
	wg.Wait()
	return errs
}

// FirstError returns the first non-nil error from a RunParallel result.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

package helpers

import (
	"strings"
	"sync"

	"github.com/juju/errors"
)

func FoldErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	ss := make([]string, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			ss = append(ss, e.Error())
		}
	}
	if len(ss) == 0 {
		return nil
	}
	return errors.Errorf(strings.Join(ss, "\n"))
}

// FoldErrChan drains a closed channel into one error.
func FoldErrChan(ch <-chan error) error {
	errs := make([]error, 0, cap(ch))
	for e := range ch {
		errs = append(errs, e)
	}
	return FoldErrors(errs)
}

// WrapErrChan runs f, sends non-nil result to ch, marks wg done.
// Use with FoldErrChan to run init tasks concurrently.
func WrapErrChan(wg *sync.WaitGroup, ch chan<- error, f func() error) {
	defer wg.Done()
	if err := f(); err != nil {
		ch <- err
	}
}

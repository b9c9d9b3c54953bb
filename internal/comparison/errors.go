package comparison

import "fmt"

// ConfigError reports a benchmark group that could not be set up: a rate
// outside the family set, a rejected parameter set or an input the adapters
// refused. Nothing has been timed when it is returned.
type ConfigError struct {
	Family  string
	Backend string
	Rate    int
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("configure %s rate %d: %v", e.Family, e.Rate, e.Err)
	}
	return fmt.Sprintf("configure %s rate %d backend %s: %v", e.Family, e.Rate, e.Backend, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InvocationError reports a trial whose backend call failed.
type InvocationError struct {
	Group string
	Trial string
	Err   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Group, e.Trial, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

package enrich

// TransientError marks an error as retryable.
//
// Generators wrap rate limits, overloaded upstreams and network hiccups in it;
// the Client retries those once before giving up.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

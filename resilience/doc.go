// Package resilience bounds calls to external collaborators.
//
// The service makes every fallible external call exactly once, so the only
// pattern provided is a deadline. Callers that need a fallback handle the
// returned error themselves.
//
//	info, err := resilience.Do(ctx, resilience.NewTimeout(resilience.TimeoutConfig{
//	    Timeout: 2 * time.Second,
//	}), fetchTask)
//	if err != nil {
//	    return fallback
//	}
package resilience

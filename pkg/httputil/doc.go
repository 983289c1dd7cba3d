// Package httputil provides the HTTP plumbing shared by remote simulator
// clients.
//
// # Overview
//
//   - [NewClient]: an [http.Client] with a request timeout suited to slow
//     simulator round trips
//   - [Retry]: automatic retry with exponential backoff
//
// # Retry
//
// [Retry] only retries errors wrapped in [RetryableError]. Callers decide
// what is transient; the remote simulator client wraps network errors and
// 5xx responses and leaves 4xx responses alone:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// Cancelling ctx stops the backoff wait and returns ctx.Err().
package httputil

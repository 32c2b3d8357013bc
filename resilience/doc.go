// Package resilience retries operations that may fail transiently, such as
// opening a file-backed source at the start of a traversal.
//
//	open := sample.RetryingOpener(sample.OpenFile(path), resilience.DefaultRetryConfig())
//	users := sample.ReadUsers(open)
package resilience

// Package storage reads query source documents from pluggable object stores.
//
// Sources such as the CSV readers in internal/sample open one object per
// traversal through Storage.Download, so a pipeline built over a stored
// document re-reads it every time it is enumerated.
//
// # Backends
//
//   - storage/local: a directory on the local filesystem
//   - storage/s3: Amazon S3 and S3-compatible services
//
// A backend registers itself when its package is imported:
//
//	import _ "github.com/kbukum/lazyq/storage/s3"
//
// # Configuration
//
//	storage:
//	  enabled: true
//	  provider: "s3"
//	  bucket: "lazyq-data"
//	  region: "eu-west-1"
//
// Missing objects are reported with an error matching fs.ErrNotExist on
// every backend.
package storage

// Package objectstore is the gateway to the S3-compatible bucket the file
// manager works on.
//
// It wraps aws-sdk-go-v2 with the handful of calls the rest of the client
// needs: prefix listing, folder markers, delete, existence checks, the
// three-phase multipart protocol (create, presigned part URLs, complete or
// abort) and presigned read URLs for download and preview.
//
// Every call is a single attempt. Retrying is the caller's business; the
// upload package retries part transfers, nothing else is retried.
//
// Failures come back as *Error values carrying the operation, bucket and
// key; they unwrap to the SDK error.
package objectstore

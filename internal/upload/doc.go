// Package upload drives chunked multipart uploads into the object store.
//
// A file is split into fixed-size parts (Split), a multipart session is
// opened and one presigned URL is minted per part (Negotiator), parts are
// PUT in sequential waves of concurrent transfers with per-attempt
// deadlines and a bounded constant-delay retry (Worker, Scheduler), and the
// session is completed with the receipts in ascending part order.
// Coordinator runs many files at once and keeps the set of files that still
// need attention.
//
// Cancellation is cooperative. RequestAbort sets a per-file flag and aborts
// the store session; no part attempt starts after the flag is seen, but
// transfers already on the wire run to their end and their results are
// thrown away.
package upload

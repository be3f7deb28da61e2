// Package client assembles the client-side building blocks of the file
// manager.
//
// New connects the object-store gateway, opens the local SQLite upload
// journal (InitDatabase applies the embedded goose migrations) and wires
// the upload coordinator to both. The resulting Client exposes the object
// and upload services the CLI drives.
package client

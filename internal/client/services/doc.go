// Package services contains the application services behind the CLI:
// browsing and managing objects (ObjectService) and running uploads from
// local files (UploadService).
package services

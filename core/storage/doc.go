// Package storage archives merge reports and profile snapshots to object storage.
//
// It wraps the MinIO Go client, which talks to both AWS S3 and self-hosted
// MinIO instances.
//
// # Client Interface
//
// The Client interface narrows the MinIO client to the calls the archiver makes,
// so tests can substitute core/storage/mocks.
//
// # Archiver
//
// Archiver.Save encodes a value as JSON and stores it under
// <prefix>/<yyyy>/<mm>/<dd>/<hhmmss>-<name>.json. A nil *Archiver is valid and
// discards everything, which is what FromConfig returns when archiving is off.
//
// # Usage
//
//	archiver, err := storage.FromConfig(cfg.Storage)
//	key, err := archiver.Save(ctx, "rebuild-report", report)
package storage

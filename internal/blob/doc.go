// Package blob stores the raw bytes of uploaded files behind an opaque ref.
//
// Two backends implement the Store interface: DiskStore keeps objects as
// flat files under a data directory, MinioStore keeps them in a MinIO/S3
// bucket. The registry never inspects refs; it records them at creation and
// hands them back for download and best-effort deletion.
package blob

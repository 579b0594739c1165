// Package minio stores index snapshots in MinIO or any S3-compatible bucket.
package minio

// Package blob opens clustering input stored in object stores.
//
// # Locations
//
//	s3://bucket/path/to/points.txt.zst
//	minio://play.min.io:9000/bucket/path/to/points.txt
//
// S3 credentials and region come from the default AWS configuration chain
// (environment, shared config, IMDS). MinIO credentials come from
// MINIO_ACCESS_KEY / MINIO_SECRET_KEY (or MINIO_ROOT_USER /
// MINIO_ROOT_PASSWORD); set MINIO_INSECURE=1 to use plain HTTP.
//
// # Usage
//
//	loc, err := blob.ParseLocation("s3://datasets/kdd/points.txt")
//	src, err := blob.NewS3SourceFromConfig(ctx, loc.Bucket)
//	rc, err := src.Open(ctx, loc.Key)
//	defer rc.Close()
package blob

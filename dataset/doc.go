// Package dataset is the I/O boundary of the clustering CLI.
//
// # Input
//
// Input is a stream of whitespace-separated tokens:
//
//	total_points total_values K max_iterations has_name
//	v(1,1) ... v(1,total_values) [name]
//	...
//
// A name token follows each record's values when has_name is non-zero.
// Line breaks carry no meaning.
//
// Open accepts "-" (stdin), a local path, s3://bucket/key or
// minio://endpoint/bucket/key, and decompresses .gz, .zst and .lz4 input by
// suffix.
//
// # Output
//
// WriteText prints the iteration at which refinement stopped, one line per
// centroid and four timing figures in microseconds. WriteJSON emits the same
// data plus per-point assignments through a codec.Codec.
package dataset

// Package z5d implements the calibrated prime-location estimator: an
// extended-precision prime-count approximation and its inverse, the
// predicted position of the k-th prime. The estimates steer the candidate
// search toward prime-dense territory; they carry no correctness weight
// of their own.
package z5d

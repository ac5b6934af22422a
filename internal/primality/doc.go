// Package primality decides candidate primality with a hybrid
// Miller-Rabin tester whose first witness batch is derived from the
// generation seed. Derived witnesses keep the schedule deterministic per
// seed; the standard small-prime bases that follow do not depend on the
// seed at all.
package primality

// Package utils provides small helpers shared across the customer-merger
// packages: string conversion of SQL function arguments, two-decimal
// rounding for profile averages, time min/max and slice chunking for batched
// store writes.
package utils

// Package bulk rebuilds the whole customer table from the source records.
//
// A rebuild pages every reservation by id, feeds each page and its guests
// into a fresh merge.Resolver, and plans a full replacement of the stored
// profiles. Applying the plan first archives the current table to object
// storage so a bad rebuild can be inspected and restored.
package bulk

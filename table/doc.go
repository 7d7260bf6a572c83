// Package table holds decoded factor tables: ordered, named, typed numeric columns
// sharing one row count.
//
// A Table is produced by Assemble from a parsed header and one Column per
// descriptor. Columns are either borrowed (byte views into a memory-mapped file,
// released by Table.Close) or owned (element-aligned slices allocated by
// ReadColumn). Both kinds expose the same accessors:
//
//	prices, err := table.Values[float64](t.Column("price"))
//	qty, err := t.Column("qty").Int32s()
//	row, err := t.Row(0) // every column's value at row 0 as float64
//
// Typed views of owned columns never allocate. Typed views of borrowed columns
// reinterpret the mapping in place when the host is little-endian and the block
// is aligned to its element size; otherwise the values are decoded into a fresh
// slice and the mapping is left untouched.
//
// Tables are immutable after assembly and safe for concurrent readers. Close must
// not race with readers of a borrowed table.
package table

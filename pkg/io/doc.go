// Package io provides the serialization boundary of modhouse: house-type
// files in, house snapshots out.
//
// # House Types
//
// A house type is an ordered DNA sequence within one building system. It
// can be written as JSON:
//
//	{
//	  "system": "skylark",
//	  "name": "Two storey",
//	  "dnas": ["W4-END-F-A1", "W4-MID-F-B1", "W4-END-F-A1"]
//	}
//
// or as TOML:
//
//	system = "skylark"
//	name = "Two storey"
//	dnas = ["W4-END-F-A1", "W4-MID-F-B1", "W4-END-F-A1"]
//
// YAML (.yaml, .yml) uses the same keys.
//
// Use [ImportHouseType] to read a file (the format follows the extension)
// or [ReadHouseType] to read from any io.Reader. Both validate the system
// identifier and every DNA.
//
// # Snapshots
//
// A [Snapshot] is a read-only JSON view of a house: its active layout,
// preview, clip planes, stretch engine states and cut statistics. Use
// [WriteSnapshot] or [ExportSnapshot] to write one, [ReadSnapshot] to read
// it back, for example from a cache.
package io

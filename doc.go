// Package gorecord provides the base entity type of an object-relational
// mapping layer.
//
// A record tracks its lifecycle state (new, managed, detached, deleted,
// locked), lazily materializes fields and associations, records the minimal
// changeset needed to synchronize back to a relational store, and round-trips
// through a compact binary snapshot.
//
// The module is organized into three packages:
//
//   - [github.com/CaliLuke/go-record/record] — entity core: lifecycle state, field and reference store, changeset builder, serialization
//   - [github.com/CaliLuke/go-record/schema] — class descriptors, registry, and the schema definition language
//   - [github.com/CaliLuke/go-record/conn] — connection abstraction: sqlite backend and connection pool
//
// The record and schema packages have no database dependency; only the conn
// package links the sqlite driver.
package gorecord

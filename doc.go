// Package measgo provides an embedded measurement record engine for Go.
//
// Measgo ingests delimited measurement frames from a serial device or a
// recorded stream, validates them against a typed schema, and appends them
// to an in-memory append-only ledger. Snapshots of the ledger feed numeric
// matrix and vector views, delimited text export, and a durable XML
// interchange format.
//
// # Quick Start
//
// Live capture:
//
//	ctx := context.Background()
//	s := schema.MustParse("temp:number,status:string")
//	eng, _ := measgo.New(s)
//	src, _ := link.NewSerialSource("/dev/ttyUSB0")
//	eng.Run(ctx, src)
//
// Replaying a recorded stream:
//
//	src, _ := link.NewReplaySource(strings.NewReader("23.5,ok\n24.1,warn\n"))
//	eng.Run(ctx, src)
//
// # Analysis
//
// Views are pure functions of the current snapshot:
//
//	m, _ := eng.Project("temp")                      // 2-D matrix view
//	v, _ := eng.Summarize(matrix.Mean, "temp")       // per-field reduction
//	eng.WriteText(os.Stdout, ",")                    // delimited text
//
// # Durability Model
//
// The ledger is in-memory; durability comes from explicit exports:
//
//	eng.ExportFile("session.xml")        // atomic write, .zst/.lz4 compress
//	res, _ := measgo.LoadFile("session.xml")
//
// Imports are total-or-nothing: a corrupt document never yields a partial
// ledger.
//
// # Key Features
//
//   - Typed schema with per-field filter predicates and transforms
//   - Append-only ledger with immutable snapshots
//   - gonum-backed matrix/vector projections with validity tracking
//   - XML interchange with optional zstd/lz4 compression
//   - Serial and replay frame sources with CRC-checked marker framing
//   - Artifact archiving for text logs and session documents
package measgo

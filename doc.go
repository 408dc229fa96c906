// Package refresher provides a concurrent account item refresh engine.
//
// A refresh fans one slow remote call per item out onto a shared worker
// budget, detached from the call that triggered it, and records a single
// aggregate outcome against a transaction. The engine is built from
// pluggable service layers:
//
//   - tracker – transaction lifecycle (pending → done | failed)
//   - source / auth – synchronous per-account lookups before fan-out
//   - remote  – the per-item update client
//   - persist – local application of refresh responses
//   - runner  – background workers executing the fan-out
//
// The engine is designed to be embedded in host applications.  End-users
// typically interact with it via the high-level Service façade exposed by
// the root package:
//
//	srv, _ := refresher.New(refresher.WithRemoteClient(client),
//		refresher.WithItemSource(items), refresher.WithAuthLookup(auths))
//	_ = srv.Start(ctx)
//	id, _ := srv.InitiateRefresh(ctx, "account-1")
//	trans, _ := srv.Transaction(ctx, id) // pending until the fan-out joins
//
// For more details see the individual sub-packages.
package refresher

// Package events correlates mined receipts with the contracts that emitted
// their logs.
//
// A Registry maps addresses to interface descriptors. It is seeded once from
// a deployment snapshot and grows at runtime as entity-creating events reveal
// new addresses. A Correlator decodes each log against the emitter's
// descriptor and groups the results by event name, keeping every occurrence
// in emission order. Logs from unknown emitters or with mismatched layouts are
// skipped and reported, so a receipt that touches library or unrelated
// contracts still decodes.
package events

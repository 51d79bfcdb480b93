// Package observability provides event logging, metrics calculation, and
// alerting for quadro. Mutations are journaled as JSON Lines (JSONL);
// metrics are derived on-demand from the journal, while alerts are
// evaluated against the current task snapshot.
package observability

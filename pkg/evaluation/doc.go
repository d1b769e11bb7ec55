// Package evaluation scores inferred relation sets against curated ground
// truth to drive inference threshold tuning.
//
// Relations compare by their canonical key (from|to|type). Metrics are
// precision, recall and F1, computed overall and broken down by inference
// stage and by relation type so a degraded overall score can be
// attributed to the stage that caused it. The Runner sweeps inference
// configurations over a fixed object set and writes per-run metrics to a
// sink; completed runs are cached so re-running a sweep is idempotent.
package evaluation

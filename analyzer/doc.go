// Package analyzer turns the raw rows of a supplier price list into a
// normalized, role-tagged table.
//
// # Pipeline
//
// [Analyzer.Analyze] runs a fixed sequence of stages. Later stages assume the
// column indices produced by earlier ones, so the order matters:
//
//  1. Locate the header/data boundary ([LocateBoundary])
//  2. Build padded data rows
//  3. Prune empty columns ([PruneEmptyColumns])
//  4. Normalize the header through the multilingual alias table ([NormalizeHeader])
//  5. Identify roles from the header ([IdentifyByHeader])
//  6. Identify remaining roles from cell content ([IdentifyByContent])
//  7. Insert missing essential columns ([EnsureMandatory])
//  8. Drop total and subtotal rows ([FilterSummaryRows])
//  9. Score confidence and collect diagnostics ([Score])
//
// # Roles
//
// Columns are tagged with one of a closed set of [Role] values. barcode,
// productName and purchasePrice are essential: the pipeline guarantees a
// column for each, inserting an empty one when the source has none.
//
// Heuristic misses are not errors. They lower [Metrics.Confidence] and are
// reported in [Metrics.Issues].
package analyzer

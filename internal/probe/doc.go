// Package probe implements sampling and column type inference.
//
// The probe package is responsible for:
//   - Normalizing raw CSV fields (edge whitespace, one layer of outer quotes)
//   - Collecting a bounded Sample Set per column
//   - Classifying each column into a SemanticType with a fixed precedence
//   - Profiling samples (non-empty and distinct counts) for the probe report
//
// Design constraints:
//   - Sampling is bounded by a row limit; memory never grows with input size.
//   - Inference never fails: ambiguity is resolved by precedence, and Text is
//     the universal fallback.
//
// The package is side-effect free and has no knowledge of SQL dialects.
package probe

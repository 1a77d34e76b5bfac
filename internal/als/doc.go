// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package als implements Alternating Least Squares for implicit feedback.
// Reference: "Collaborative Filtering for Implicit Feedback Datasets" (Hu, Koren, Volinsky, 2008)
//
// The factorizer minimizes
//
//	sum_{u,i} c_ui * (p_ui - x_u' * y_i)^2 + lambda * (sum ||x_u||^2 + sum ||y_i||^2)
//
// where p_ui = 1 if user u watched item i, 0 otherwise, and
// c_ui = 1 + alpha * r_ui with r_ui the summed watch duration.
//
// Unobserved pairs contribute only through the Gram matrix Y'Y, which is
// computed once per half-iteration, so each row solve costs
// O(f^2 * nnz_row + f^3) instead of O(f^2 * n).
//
// # Concurrency
//
// Within a half-iteration every user (or item) is solved independently on a
// bounded errgroup worker pool. Each worker writes only the rows it owns.
// The item half starts after every user row of the same iteration is written.
//
// # Determinism
//
// Initialization draws from a PCG source seeded by Config.Seed, and every
// reduction runs in a fixed order, so the same input, config and seed give
// bit-identical factors regardless of worker count.
//
// # Debug builds
//
// Building with -tags alsdebug makes the Cholesky solver panic on a
// non-positive pivot instead of clamping it.
package als

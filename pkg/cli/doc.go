// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package cli builds the geomail command tree: serve runs the relay,
// version prints build metadata.
package cli

// SPDX-License-Identifier: GPL-3.0-or-later

package evhttp

// Unit is a type not containing any value (analogous to an
// explicit `void` type in C and C++).
//
// Events without a payload (resolve, read-complete, close) are
// delivered to subscribers as Unit values internally.
type Unit struct{}

// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package pp

// The PP checksum is a plain additive sum of the uncompressed bytes, wrapped
// modulo 2^16. Collisions are trivial to construct; it detects accidental
// corruption only and provides no authentication.

// updateChecksum returns the result of adding the bytes in buf to sum.
func updateChecksum(sum uint16, buf []byte) uint16 {
	for _, c := range buf {
		sum += uint16(c)
	}
	return sum
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gputex

package dds

const maxInt32 = int(^uint32(0) >> 1)

// intFromU32 converts a header dimension to int, rejecting values above int32.
func intFromU32(n uint32) (int, error) {
	if uint64(n) > uint64(maxInt32) {
		return 0, ErrSizeOverflow
	}

	return int(n), nil
}

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base, level int) int {
	result := base >> level
	if result < 1 {
		return 1
	}

	return result
}

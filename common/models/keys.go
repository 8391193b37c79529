package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Key handlers shared by every record owned by a Farcaster account.
func FidPK(fid int64) string {
	return fmt.Sprintf("FID#%d", fid)
}

func ExtractFid(pk string) (int64, error) {
	if !strings.HasPrefix(pk, "FID#") {
		return 0, fmt.Errorf("invalid fid PK format: %s", pk)
	}
	return strconv.ParseInt(pk[4:], 10, 64)
}

// RankSK orders items lexicographically by score, so a descending GSI query
// returns the highest scores first. Negative scores rank as zero.
func RankSK(score int64, fid int64) string {
	if score < 0 {
		score = 0
	}
	return fmt.Sprintf("%019d#%012d", score, fid)
}

// NormalizeAddress lowercases a hex wallet address so lookups are
// case-insensitive.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func TimestampSK(prefix string, unixMilli int64, id string) string {
	if id == "" {
		return fmt.Sprintf("%s#%013d", prefix, unixMilli)
	}
	return fmt.Sprintf("%s#%013d#%s", prefix, unixMilli, id)
}

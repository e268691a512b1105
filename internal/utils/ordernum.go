package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const alphanum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNumber returns a unique human-readable order number,
// e.g. ORD-1724832000123-X4K9A. Generated once per order, never reissued.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), randSuffix(5))
}

// GenerateSKU returns a catalog SKU for products created without one.
func GenerateSKU() string {
	return fmt.Sprintf("DAV-%d-%s", time.Now().UnixMilli(), randSuffix(5))
}

func randSuffix(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphanum))))
		if err != nil {
			// fallback: time-based entropy
			idx = big.NewInt(time.Now().UnixNano() % int64(len(alphanum)))
		}
		b.WriteByte(alphanum[idx.Int64()])
	}
	return b.String()
}

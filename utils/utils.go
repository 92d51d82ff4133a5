package utils

import (
	// Go Internal Packages
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

const alnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomAlnum returns n random characters from [A-Z0-9].
func RandomAlnum(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alnum)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand never fails on supported platforms
			idx = big.NewInt(int64(i) % int64(len(alnum)))
		}
		out[i] = alnum[idx.Int64()]
	}
	return string(out)
}

// NewGatewayTxnID mints a gateway transaction id. Assigned once per sale
// and never reassigned.
func NewGatewayTxnID() string {
	return fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), RandomAlnum(5))
}

// NewAuthCode returns the 6-character authorization code sent with a sale.
func NewAuthCode() string {
	return RandomAlnum(6)
}

// NewBearerToken returns an opaque 64-hex-character terminal token.
func NewBearerToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

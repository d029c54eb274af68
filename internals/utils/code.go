package utils

import (
	"crypto/rand"
	"math/big"
)

// no 0/O or 1/I so codes can be read aloud at the counter
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func RandomCode(n int) (string, error) {
	out := make([]byte, n)
	base := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[idx.Int64()]
	}
	return string(out), nil
}

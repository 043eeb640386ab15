package identifier

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Width is the digit count of generated display identifiers.
const Width = 10

var modulus = new(big.Int).Exp(big.NewInt(10), big.NewInt(Width), nil)

// New produces a zero-padded numeric display identifier by hashing a
// random 128-bit value and reducing it modulo 10^Width.
//
// Uniqueness is probabilistic only: the database unique index on
// processos.identificador is the correctness backstop, and the save path
// regenerates and retries on a duplicate-key error.
func New() string {
	sum := sha256.Sum256([]byte(uuid.New().String()))
	n := new(big.Int).SetBytes(sum[:])
	n.Mod(n, modulus)
	return fmt.Sprintf("%0*d", Width, n)
}

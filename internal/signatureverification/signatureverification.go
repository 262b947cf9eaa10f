// There are many cryptographic curves and they have different security/convenience trade-offs.
// The one that Bitcoin uses is secp256k1. It is a relatively simple curve and p is very close to 2^256.
// So most numbers under 2^256 are in the prime field.
// Any point on the curve has x and y coordinates that are expressible in 256 bits each.
// n is also very close to 2^256, so any scalar multiple can also be expressed in 256 bits.
// 2^256 is a huge number, but can still be stored in 32 bytes, so the private key can be stored easily.

package signatureverification

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ohallgren/btcconsensus/internal/secp256k1"
	"github.com/ohallgren/btcconsensus/internal/utils"
)

// ErrMalformedSignature is returned when a DER-encoded signature
// cannot be parsed.
var ErrMalformedSignature = errors.New("malformed signature")

type Signature struct {
	R *big.Int
	S *big.Int
}

func NewSignature(r, s *big.Int) *Signature {
	return &Signature{R: new(big.Int).Set(r), S: new(big.Int).Set(s)}
}

func (sig *Signature) String() string {
	return fmt.Sprintf("Signature(%x,%x)", sig.R, sig.S)
}

func (sig *Signature) Serialize() []byte {
	rSerialized := utils.SerializeInt(sig.R)
	sSerialized := utils.SerializeInt(sig.S)

	result := append([]byte{0x02, byte(len(rSerialized))}, rSerialized...)
	result = append(result, []byte{0x02, byte(len(sSerialized))}...)
	result = append(result, sSerialized...)

	return append([]byte{0x30, byte(len(result))}, result...)
}

func ParseDER(data []byte) (*Signature, error) {
	reader := bytes.NewReader(data)

	compound, err := reader.ReadByte()
	if err != nil || compound != 0x30 {
		return nil, fmt.Errorf("%w: missing compound marker", ErrMalformedSignature)
	}

	length, err := reader.ReadByte()
	if err != nil || length+2 != byte(len(data)) {
		return nil, fmt.Errorf("%w: incorrect signature length", ErrMalformedSignature)
	}

	r, err := parseBigInt(reader)
	if err != nil {
		return nil, err
	}

	s, err := parseBigInt(reader)
	if err != nil {
		return nil, err
	}

	if length != 6+byte(r.BitLen()/8+s.BitLen()/8) {
		return nil, fmt.Errorf("%w: signature too long", ErrMalformedSignature)
	}

	return NewSignature(r, s), nil
}

func parseBigInt(reader *bytes.Reader) (*big.Int, error) {
	marker, err := reader.ReadByte()
	if err != nil || marker != 0x02 {
		return nil, fmt.Errorf("%w: missing integer marker", ErrMalformedSignature)
	}

	valLength, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: missing integer length", ErrMalformedSignature)
	}

	valBytes := make([]byte, valLength)
	_, err = io.ReadFull(reader, valBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated integer", ErrMalformedSignature)
	}

	return new(big.Int).SetBytes(valBytes), nil
}

// Verify checks that (r,s), over message hash z, was produced by the
// private key behind the public point:
// 1. u = z/s, v = r/s
// 2. R = uG + vP
// 3. the signature is valid iff R's x-coordinate equals r
func Verify(p256 *secp256k1.Point, z *big.Int, sig *Signature) bool {
	sInv := new(big.Int).ModInverse(sig.S, secp256k1.N)
	if sInv == nil {
		return false
	}

	u := new(big.Int).Mod(new(big.Int).Mul(z, sInv), secp256k1.N)
	v := new(big.Int).Mod(new(big.Int).Mul(sig.R, sInv), secp256k1.N)

	uG, err := secp256k1.G.ScalarMultiplication(u)
	if err != nil {
		return false
	}

	vPoint, err := p256.ScalarMultiplication(v)
	if err != nil {
		return false
	}

	sumPoint, err := uG.Add(vPoint)
	if err != nil {
		return false
	}

	return sumPoint.X.Value.Cmp(sig.R) == 0
}

// The Standards for Efficient Cryptography are rules for writing down ECDSA public keys.
// There are two ways to serialize elliptic curve points: compressed and uncompressed.
//
// Uncompressed
// Starts with x04, then Px[bytes], and Py[bytes].
//
// Compressed
// In elliptic curve cryptography, for each x on the curve, there are at most two possible y values because of the curve's equation.
// This is also true for finite fields.
// If a point (x, y) satisfies the curve's equation y^2 = x^3 + ax + b, then (x, -y) will work too.
// Also, in a finite field, -y % p = p-y % p. This means if (x, y) satisfies the equation, then (x, p-y) also works.
// Thus for each x, there are only two possible y points: y or p-y.
// Since p is a prime number bigger than 2 and odd, y and p-y will always be one even and one odd.
// We use this fact in the compressed SEC format. Instead of writing the whole y value, we just say if it's even or odd, and give the x value.
// So, the compressed SEC format is shorter because it turns the y value into just one byte that tells us if it's even or odd.
func Hash160(p256 *secp256k1.Point, compressed bool) []byte {
	return utils.Hash160(p256.SerializeSEC(compressed))
}

func Address(p256 *secp256k1.Point, compressed, testnet bool) string {
	h160 := Hash160(p256, compressed)
	if testnet {
		prefix := []byte{byte(0x6f)}
		return utils.EncodeBase58Checksum(append(prefix, h160...))
	}
	prefix := []byte{byte(0x00)}
	return utils.EncodeBase58Checksum(append(prefix, h160...))
}

type PrivateKey struct {
	Secret *big.Int
	Point  *secp256k1.Point
}

func NewPrivateKey(secret *big.Int) (*PrivateKey, error) {
	point, err := secp256k1.G.ScalarMultiplication(secret)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{secret, point}, nil
}

// The signing procedure is as follows:
// 1. We are given signature hash z and and know private key e such that eG = P;
// 2. Choose a deterministic k (RFC 6979);
// 3. Calculate R = kG. r is the x-coordinate of R;
// 4. Calculate s = (z + re)/k;
// 5. Normalize s to its low form (s > N/2 => s = N - s), since (r, s)
//    and (r, N-s) are both valid and nodes relay only the low one;
// 6. Signature is (r,s);
func (e *PrivateKey) Sign(z *big.Int) (*Signature, error) {
	if z == nil {
		return nil, fmt.Errorf("one or more signature inputs were invalid")
	}

	k := e.GetDeterministicK(z)

	R, err := secp256k1.G.ScalarMultiplication(k)
	if err != nil {
		return nil, err
	}

	r := R.X.Value

	re := new(big.Int).Mul(r, e.Secret)
	rePlusZ := new(big.Int).Add(re, z)

	kInv := new(big.Int).ModInverse(k, secp256k1.N)
	product := new(big.Int).Mul(rePlusZ, kInv)

	s := new(big.Int).Mod(product, secp256k1.N)

	halfN := new(big.Int).Rsh(secp256k1.N, 1)
	if s.Cmp(halfN) > 0 {
		s = new(big.Int).Sub(secp256k1.N, s)
	}

	return NewSignature(r, s), nil
}

// Deterministic k generation standard that uses the secret and z to create a unique, deterministic k every time.
// Specification is in RFC 6979
// If our secret is e and we are reusing k to sign z1 and z2:
// kG = (r,y)
// s1 = (z1 + re)/k, s2 = (z2 + re)/k
// s1/s2 = (z1 + re) / (z2 + re)
// s1(z2 + re) = s2(z1 +re)
// s1z2 + s1re = s2z1 + s2re
// s1re - s2re = s2z1 - s1z2
// e = (s2z1 - s1z2) / (s1r - s2r)
func (e *PrivateKey) GetDeterministicK(z *big.Int) *big.Int {
	zCopy := new(big.Int).Set(z)
	if zCopy.Cmp(secp256k1.N) > 0 {
		zCopy.Sub(zCopy, secp256k1.N)
	}

	k := make([]byte, 32)
	v := bytes.Repeat([]byte{0x01}, 32)
	zBytes := zCopy.FillBytes(make([]byte, 32))
	secretBytes := e.Secret.FillBytes(make([]byte, 32))

	k = utils.HmacSHA256(k, append(append(v, 0x00), append(secretBytes, zBytes...)...))
	v = utils.HmacSHA256(k, v)
	k = utils.HmacSHA256(k, append(append(v, 0x01), append(secretBytes, zBytes...)...))
	v = utils.HmacSHA256(k, v)

	candidate := new(big.Int)
	for {
		v = utils.HmacSHA256(k, v)
		candidate.SetBytes(v)

		if candidate.Cmp(big.NewInt(1)) >= 0 && candidate.Cmp(secp256k1.N) < 0 {
			return candidate
		}

		k = utils.HmacSHA256(k, append(v, 0x00))
		v = utils.HmacSHA256(k, v)
	}
}

func (e *PrivateKey) Serialize(compressed bool, testnet bool) string {
	secretBytes := e.Secret.FillBytes(make([]byte, 32))

	if compressed {
		secretBytes = append(secretBytes, byte(0x01))
	}

	var prefix []byte
	if testnet {
		prefix = []byte{0xef}
	} else {
		prefix = []byte{0x80}
	}

	payload := append(prefix, secretBytes...)

	return utils.EncodeBase58Checksum(payload)
}

package script

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"reflect"

	"github.com/rs/zerolog/log"

	"github.com/ohallgren/btcconsensus/internal/utils"
)

// ErrScriptTooLong is returned when rawSerialize is asked to push an
// element longer than the 520-byte consensus limit.
var ErrScriptTooLong = fmt.Errorf("script element exceeds 520 bytes")

type Script [][]byte

// NewScript parses a length-prefixed command stream into a Script.
// It is an alias of ParseScript kept for callers that prefer the
// constructor-style name.
func NewScript(reader *bufio.Reader) (Script, error) {
	return ParseScript(reader)
}

// ParseScript reads a varint length prefix and then that many bytes of
// script from reader, and parses them into a Script.
// OP_PUSHDATA1/2/4 can be used to group data in a []byte.
func ParseScript(reader *bufio.Reader) (Script, error) {
	length, err := utils.ReadVarint(reader)

	if err != nil {
		return nil, fmt.Errorf("no uvarint could be read from reader: %v", err)
	}

	buf := make([]byte, length)
	_, err = io.ReadFull(reader, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read script data: %v", err)
	}

	script := make(Script, 0)
	count := 0

	for count < int(length) {
		currentByte := buf[count]
		count++

		switch {
		case currentByte >= 1 && currentByte <= 75:
			// For a number between 1 and 75 inclusive, the next n bytes are an element.
			n := int(currentByte)
			script = append(script, buf[count:count+n])
			count += n
		case currentByte == 76:
			// 76 is OP_PUSHDATA1, so the next byte tells us how many bytes to read.
			bufLength := int(buf[count])
			count++
			script = append(script, buf[count:count+bufLength])
			count += bufLength
		case currentByte == 77:
			// 77 is OP_PUSHDATA2, so the next two bytes tell us how many bytes to read.
			bufLength := binary.LittleEndian.Uint16(buf[count : count+2])
			count += 2
			script = append(script, buf[count:count+int(bufLength)])
			count += int(bufLength)
		case currentByte == 78:
			// 78 is OP_PUSHDATA4, so the next four bytes tell us how many bytes to read.
			bufLength := binary.LittleEndian.Uint32(buf[count : count+4])
			count += 4
			script = append(script, buf[count:count+int(bufLength)])
			count += int(bufLength)
		default:
			script = append(script, []byte{currentByte})
		}
	}

	if count != len(buf) {
		return nil, fmt.Errorf("parsing script failed")
	}

	return script, nil
}

func (s *Script) String() string {
	var result []string
	for _, cmd := range *s {
		if len(cmd) == 1 {
			opCode := int(cmd[0])
			name, ok := opCodeNames[opCode]
			if !ok {
				result = append(result, fmt.Sprintf("OP_[%d]", opCode))
				continue
			}
			result = append(result, name)
			continue
		}
		result = append(result, fmt.Sprintf("%x", cmd))
	}
	return " " + fmt.Sprintf("%v", result)
}

// Add concatenates two scripts into a new Script, leaving both
// operands untouched.
func (s *Script) Add(otherScript Script) Script {
	result := make(Script, 0, len(*s)+len(otherScript))
	result = append(result, *s...)
	result = append(result, otherScript...)
	return result
}

func (s *Script) Parse(reader *bufio.Reader) error {
	script, err := ParseScript(reader)
	if err != nil {
		return err
	}
	*s = script
	return nil
}

func (s *Script) rawSerialize() ([]byte, error) {
	var result []byte

	for _, cmd := range *s {
		length := len(cmd)
		switch {
		case len(cmd) == 1:
			// if the command is an integer, we know it's an op code
			result = append(result, cmd...)
		case length <= 75:
			// if the length is between 1 and 75, we encode the length as a single byte
			result = append(result, byte(length))
			result = append(result, cmd...)
		case length > 75 && length <= 0xff:
			// For any element with length 76 to 255, we put OP_PUSHDATA1 first, then encode the length as a single byte, followed by the element.
			result = append(result, 76)
			result = append(result, byte(length))
			result = append(result, cmd...)
		case length > 0xff && length <= 520:
			// For any element with length 256 to 520, we put OP_PUSHDATA2 first, then encode the length as two bytes, followed by the element.
			lengthBytes := make([]byte, 2)
			binary.LittleEndian.PutUint16(lengthBytes, uint16(length))
			result = append(result, 77)
			result = append(result, lengthBytes...)
			result = append(result, cmd...)
		default:
			return nil, ErrScriptTooLong
		}
	}
	return result, nil
}

// Serialize serializes the Script and adds the total length prefix.
func (s *Script) Serialize() ([]byte, error) {
	rawResult, err := s.rawSerialize()
	if err != nil {
		return nil, err
	}

	// Get the varint bytes
	varint, err := utils.EncodeVarint(uint64(len(rawResult)))
	if err != nil {
		return nil, err
	}

	// Append the varint and the serialized script
	result := append(varint, rawResult...)

	return result, nil
}

// Evaluate runs the script against signature hash z, returning the
// boolean verdict per §4.4: non-empty stack with a non-zero top
// element after the command queue empties. lockTime/sequence/version
// are only consulted by OP_CHECKLOCKTIMEVERIFY/OP_CHECKSEQUENCEVERIFY;
// pass the containing transaction's locktime, the spending input's
// sequence, and the transaction's version when evaluating a real
// input, or zero values for scripts known not to use those opcodes.
func (s *Script) Evaluate(z *big.Int, lockTime, sequence, version uint32) bool {
	cmds := make(Script, len(*s))
	copy(cmds, *s)

	var stack Stack
	var altStack Stack

	for len(cmds) > 0 {
		cmd := cmds[0]
		cmds = cmds[1:]

		if len(cmd) == 1 {
			opCode := int(cmd[0])

			operation, ok := OpCodeFunctions[opCode]
			opName := opCodeNames[opCode]
			if !ok {
				log.Debug().Int("opcode", opCode).Msg("evaluate: unrecognized opcode")
				return false
			}

			switch opCode {
			case 99, 100:
				ok, err := callOperation(operation, &stack, &cmds)
				if !ok || err != nil {
					log.Debug().Str("op", opName).Err(err).Msg("evaluate: operation failed")
					return false
				}
			case 107, 108:
				ok, err := callOperation(operation, &stack, &altStack)
				if !ok || err != nil {
					log.Debug().Str("op", opName).Err(err).Msg("evaluate: operation failed")
					return false
				}
			case 172, 173, 174, 175:
				ok, err := callOperation(operation, &stack, z)
				if !ok || err != nil {
					log.Debug().Str("op", opName).Err(err).Msg("evaluate: operation failed")
					return false
				}
			case 177:
				ok, err := callOperation(operation, &stack, int(lockTime), int(sequence))
				if !ok || err != nil {
					log.Debug().Str("op", opName).Err(err).Msg("evaluate: operation failed")
					return false
				}
			case 178:
				ok, err := callOperation(operation, &stack, int(version), int(sequence))
				if !ok || err != nil {
					log.Debug().Str("op", opName).Err(err).Msg("evaluate: operation failed")
					return false
				}
			default:
				ok, err := callOperation(operation, &stack)
				if !ok || err != nil {
					log.Debug().Str("op", opName).Err(err).Msg("evaluate: operation failed")
					return false
				}
			}
		} else {
			stack.push(cmd)

			if !expandP2SH(&stack, &cmds, cmd) {
				return false
			}
		}
	}

	if len(stack) == 0 || string((stack)[len(stack)-1]) == "" {
		return false
	}

	return true
}

// expandP2SH implements the BIP-16 redeem-script expansion. It is
// called after every data push with the bytes just pushed; if the
// remaining queue is exactly [OP_HASH160, <20-byte push>, OP_EQUAL] it
// consumes those three commands, checks the pushed data hashes to the
// embedded 20-byte hash, and splices the parsed redeem script's
// commands onto the front of the queue. Returns false if the pattern
// matches but the hash check fails.
func expandP2SH(stack *Stack, cmds *Script, pushed []byte) bool {
	rest := *cmds
	if len(rest) != 3 {
		return true
	}
	if len(rest[0]) != 1 || rest[0][0] != 169 {
		return true
	}
	if len(rest[1]) != 20 {
		return true
	}
	if len(rest[2]) != 1 || rest[2][0] != 135 {
		return true
	}

	h160 := rest[1]
	*cmds = Script{}

	if ok, err := opHash160(stack); err != nil || !ok {
		return false
	}
	stack.push(h160)
	if ok, err := opEqual(stack); err != nil || !ok {
		return false
	}
	if ok, err := opVerify(stack); err != nil || !ok {
		return false
	}

	varint, err := utils.EncodeVarint(uint64(len(pushed)))
	if err != nil {
		return false
	}
	redeemScript, err := ParseScript(bufio.NewReader(bytes.NewReader(append(varint, pushed...))))
	if err != nil {
		return false
	}

	*cmds = redeemScript.Add(*cmds)
	return true
}

func callOperation(fn interface{}, args ...interface{}) (bool, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return false, fmt.Errorf("not a function")
	}

	// Prepare the arguments
	var input []reflect.Value
	for _, arg := range args {
		input = append(input, reflect.ValueOf(arg))
	}

	// Call the function
	result := v.Call(input)

	// Extract the return values
	if len(result) != 2 {
		// Assuming the first return value is bool and the second is error
		return false, fmt.Errorf("function did not return expected values")
	}

	if result[1].Interface() != nil {
		return result[0].Bool(), result[1].Interface().(error)
	}

	return result[0].Bool(), nil
}

func (s *Script) TranslateToOps() []string {
	ops := make([]string, len(*s))
	for i, cmd := range *s {
		ops[i] = opCodeNames[int(cmd[0])]
	}
	return ops
}

// Takes a hash160 and returns the p2pkh ScriptPubKey
func CreateP2pkhScript(h160 []byte) Script {
	return Script{[]byte{0x76}, []byte{0xa9}, h160, []byte{0x88}, []byte{0xac}}
}

// IsP2PKHScriptPubKey reports whether the script matches the
// standard pay-to-pubkey-hash pattern:
// OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG.
func (s *Script) IsP2PKHScriptPubKey() bool {
	cmds := *s
	return len(cmds) == 5 &&
		len(cmds[0]) == 1 && cmds[0][0] == 118 &&
		len(cmds[1]) == 1 && cmds[1][0] == 169 &&
		len(cmds[2]) == 20 &&
		len(cmds[3]) == 1 && cmds[3][0] == 136 &&
		len(cmds[4]) == 1 && cmds[4][0] == 172
}

// IsP2SHScriptPubKey reports whether the script matches the
// standard pay-to-script-hash pattern: OP_HASH160 <20 bytes> OP_EQUAL.
func (s *Script) IsP2SHScriptPubKey() bool {
	cmds := *s
	return len(cmds) == 3 &&
		len(cmds[0]) == 1 && cmds[0][0] == 169 &&
		len(cmds[1]) == 20 &&
		len(cmds[2]) == 1 && cmds[2][0] == 135
}

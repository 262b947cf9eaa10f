// Package network implements the thin wire-framing layer around
// Bitcoin's peer-to-peer protocol: the envelope every message travels
// in and the version handshake message exchanged on connect.
package network

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ohallgren/btcconsensus/internal/utils"
)

var (
	// NetworkMagic is the 4-byte prefix of every mainnet envelope.
	NetworkMagic = [4]byte{0xf9, 0xbe, 0xb4, 0xd9}
	// TestnetNetworkMagic is the 4-byte prefix of every testnet envelope.
	TestnetNetworkMagic = [4]byte{0x0b, 0x11, 0x09, 0x07}
)

// ErrCommandTooLong is returned when a command exceeds the 12-byte field.
var ErrCommandTooLong = errors.New("command is too long")

// ErrInvalidMagic is returned when a parsed envelope's magic bytes
// don't match the expected network.
var ErrInvalidMagic = errors.New("invalid network magic")

// ErrChecksumMismatch is returned when a parsed envelope's checksum
// doesn't match hash256 of its payload.
var ErrChecksumMismatch = errors.New("checksum does not match")

// NetworkEnvelope is the outer wrapper every Bitcoin P2P message
// travels in: magic, a zero-padded ASCII command, and a payload whose
// integrity is checked with a 4-byte hash256 checksum.
type NetworkEnvelope struct {
	Command []byte
	Payload []byte
	Testnet bool
}

// NewNetworkEnvelope constructs an envelope, rejecting commands longer
// than the 12-byte wire field.
func NewNetworkEnvelope(command, payload []byte, testnet bool) (*NetworkEnvelope, error) {
	if len(command) > 12 {
		return nil, ErrCommandTooLong
	}
	return &NetworkEnvelope{Command: command, Payload: payload, Testnet: testnet}, nil
}

// Magic returns this envelope's 4-byte network magic.
func (e *NetworkEnvelope) Magic() [4]byte {
	if e.Testnet {
		return TestnetNetworkMagic
	}
	return NetworkMagic
}

func (e *NetworkEnvelope) String() string {
	return fmt.Sprintf("%s: %x", e.Command, e.Payload)
}

// ParseNetworkEnvelope reads a NetworkEnvelope off the wire, validating
// the magic bytes and the payload checksum.
func ParseNetworkEnvelope(reader *bufio.Reader, testnet bool) (*NetworkEnvelope, error) {
	var magic [4]byte
	if _, err := io.ReadFull(reader, magic[:]); err != nil {
		return nil, fmt.Errorf("connection reset: %w", err)
	}

	expectedMagic := NetworkMagic
	if testnet {
		expectedMagic = TestnetNetworkMagic
	}
	if magic != expectedMagic {
		return nil, ErrInvalidMagic
	}

	rawCommand := make([]byte, 12)
	if _, err := io.ReadFull(reader, rawCommand); err != nil {
		return nil, fmt.Errorf("failed to read command: %w", err)
	}
	command := bytes.TrimRight(rawCommand, "\x00")

	var payloadLength uint32
	if err := binary.Read(reader, binary.LittleEndian, &payloadLength); err != nil {
		return nil, fmt.Errorf("failed to read payload length: %w", err)
	}

	checksum := make([]byte, 4)
	if _, err := io.ReadFull(reader, checksum); err != nil {
		return nil, fmt.Errorf("failed to read checksum: %w", err)
	}

	payload := make([]byte, payloadLength)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	computedChecksum := utils.Hash256(payload)[:4]
	if !bytes.Equal(computedChecksum, checksum) {
		return nil, ErrChecksumMismatch
	}

	return &NetworkEnvelope{Command: command, Payload: payload, Testnet: testnet}, nil
}

// Serialize writes the envelope in wire format: magic, the
// null-padded command, the little-endian payload length, the
// checksum, then the payload itself.
func (e *NetworkEnvelope) Serialize() []byte {
	magic := e.Magic()
	result := make([]byte, 0, 24+len(e.Payload))
	result = append(result, magic[:]...)

	paddedCommand := make([]byte, 12)
	copy(paddedCommand, e.Command)
	result = append(result, paddedCommand...)

	payloadLength := make([]byte, 4)
	binary.LittleEndian.PutUint32(payloadLength, uint32(len(e.Payload)))
	result = append(result, payloadLength...)

	checksum := utils.Hash256(e.Payload)[:4]
	result = append(result, checksum...)
	result = append(result, e.Payload...)

	return result
}

// VersionMessage is the handshake message a peer sends immediately
// after connecting, announcing its protocol version and capabilities.
type VersionMessage struct {
	Version          uint32
	Services         uint64
	Timestamp        uint64
	ReceiverServices uint64
	ReceiverIP       [4]byte
	ReceiverPort     uint16
	SenderServices   uint64
	SenderIP         [4]byte
	SenderPort       uint16
	Nonce            [8]byte
	UserAgent        []byte
	LatestBlock      uint32
	Relay            bool
}

// VersionCommand is the 7-byte ASCII command string for version messages.
var VersionCommand = []byte("version")

// NewVersionMessage builds a VersionMessage with the protocol's
// conventional defaults (version 70015, no declared services, port
// 8333, user agent "/btcconsensus:0.1/"), stamped with the current
// time and a fresh random nonce.
func NewVersionMessage() (*VersionMessage, error) {
	nonce, err := randomNonce()
	if err != nil {
		return nil, err
	}
	return &VersionMessage{
		Version:      70015,
		Timestamp:    uint64(time.Now().Unix()),
		ReceiverPort: 8333,
		SenderPort:   8333,
		Nonce:        nonce,
		UserAgent:    []byte("/btcconsensus:0.1/"),
		LatestBlock:  0,
		Relay:        false,
	}, nil
}

// Serialize writes the version message in wire format per §6 of the
// protocol's external interface: fixed-width fields for version,
// services, timestamp, receiver/sender network addresses (IPv4-mapped
// within the 16-byte IPv6 address field), nonce, then a varint-length
// user agent string, the last seen block height, and the relay flag.
func (v *VersionMessage) Serialize() ([]byte, error) {
	var result []byte

	versionBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(versionBytes, v.Version)
	result = append(result, versionBytes...)

	servicesBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(servicesBytes, v.Services)
	result = append(result, servicesBytes...)

	timestampBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(timestampBytes, v.Timestamp)
	result = append(result, timestampBytes...)

	result = append(result, serializeNetAddr(v.ReceiverServices, v.ReceiverIP, v.ReceiverPort)...)
	result = append(result, serializeNetAddr(v.SenderServices, v.SenderIP, v.SenderPort)...)

	result = append(result, v.Nonce[:]...)

	userAgentLen, err := utils.EncodeVarint(uint64(len(v.UserAgent)))
	if err != nil {
		return nil, err
	}
	result = append(result, userAgentLen...)
	result = append(result, v.UserAgent...)

	latestBlockBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(latestBlockBytes, v.LatestBlock)
	result = append(result, latestBlockBytes...)

	if v.Relay {
		result = append(result, 0x01)
	} else {
		result = append(result, 0x00)
	}

	return result, nil
}

// serializeNetAddr writes a peer address field: 8-byte services,
// the 10 zero bytes and 2 0xff bytes that mark an IPv4-mapped
// address, the 4-byte IPv4 address, and the 2-byte big-endian port.
func serializeNetAddr(services uint64, ip [4]byte, port uint16) []byte {
	result := make([]byte, 0, 26)

	servicesBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(servicesBytes, services)
	result = append(result, servicesBytes...)

	result = append(result, bytes.Repeat([]byte{0x00}, 10)...)
	result = append(result, 0xff, 0xff)
	result = append(result, ip[:]...)

	portBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(portBytes, port)
	result = append(result, portBytes...)

	return result
}

func randomNonce() ([8]byte, error) {
	var nonce [8]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nonce, err
	}
	return nonce, nil
}
